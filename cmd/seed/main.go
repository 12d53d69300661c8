package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/AnshRaj112/datapath-backend/internal/config"
	"github.com/AnshRaj112/datapath-backend/internal/database"
	"github.com/AnshRaj112/datapath-backend/internal/logging"
	"github.com/AnshRaj112/datapath-backend/internal/repository"
	"github.com/AnshRaj112/datapath-backend/internal/seed"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	logger.Info(ctx, "Connecting to MongoDB...", "uri", database.MaskURI(cfg.MongoURI), "db", cfg.DBName)
	mongo, err := database.Connect(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongo.Disconnect()

	if err := repository.EnsureIndexes(ctx, mongo.DB); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	res, err := seed.Run(ctx, repository.NewTopicRepository(mongo.DB), repository.NewProjectRepository(mongo.DB), logger)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("✅ Seeded %d topics and %d projects", res.Topics, res.Projects)
}
