package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/AnshRaj112/datapath-backend/internal/config"
	"github.com/AnshRaj112/datapath-backend/internal/database"
	"github.com/AnshRaj112/datapath-backend/internal/handlers"
	"github.com/AnshRaj112/datapath-backend/internal/identity"
	"github.com/AnshRaj112/datapath-backend/internal/logging"
	"github.com/AnshRaj112/datapath-backend/internal/middleware"
	"github.com/AnshRaj112/datapath-backend/internal/repository"
	"github.com/AnshRaj112/datapath-backend/internal/routes"
	"github.com/AnshRaj112/datapath-backend/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	logger.Info(ctx, "Connecting to MongoDB...", "uri", database.MaskURI(cfg.MongoURI), "db", cfg.DBName)
	mongo, err := database.Connect(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		logger.Error(ctx, "Failed to connect to MongoDB. Check the connection string, credentials and network access.")
		return err
	}
	defer func() {
		if err := mongo.Disconnect(); err != nil {
			logger.Warn(ctx, "MongoDB disconnect failed", "error", err)
		}
	}()
	logger.Info(ctx, "Connected to MongoDB")

	if err := repository.EnsureIndexes(ctx, mongo.DB); err != nil {
		return err
	}
	logger.Info(ctx, "MongoDB indexes ensured")

	users := repository.NewUserRepository(mongo.DB)
	sessionRows := repository.NewSessionRepository(mongo.DB)
	progressRows := repository.NewProgressRepository(mongo.DB)
	topics := repository.NewTopicRepository(mongo.DB)
	projects := repository.NewProjectRepository(mongo.DB)

	var storeOpts []services.SessionStoreOption
	router := chi.NewRouter()
	router.Use(chimw.RequestID, middleware.RequestLogger(logger), chimw.Recoverer)
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	if cfg.RedisEnabled() {
		logger.Info(ctx, "Connecting to Redis...")
		rdb, err := database.ConnectRedis(ctx, cfg.RedisURI)
		if err != nil {
			return err
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Warn(ctx, "Redis close failed", "error", err)
			}
		}()
		logger.Info(ctx, "Connected to Redis")
		storeOpts = append(storeOpts, services.WithSessionCache(services.NewRedisSessionCache(rdb), cfg.SessionCacheTTL))

		if !cfg.IsProduction() {
			limiter := middleware.NewRedisRateLimiter(rdb, middleware.RateLimitMaxRequests, middleware.RateLimitWindow, cfg.TrustProxy, logger)
			router.Use(limiter.Middleware(middleware.IsLoginPath))
		}
	} else {
		logger.Warn(ctx, "REDIS_URI not set. Session cache and shared rate limiting are disabled")
	}

	// Production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit
	if cfg.IsProduction() {
		router.Use(middleware.ProductionSecurity(cfg.AllowedHost, cfg.TrustProxy)...)
		logger.Info(ctx, "Production security enabled", "allowed_host", cfg.AllowedHost)
	}
	router.Use(chimw.Timeout(cfg.RequestTimeout))

	if cfg.FirebaseProjectID == "" {
		logger.Warn(ctx, "FIREBASE_PROJECT_ID not set. Firebase sign-in will reject every token")
	}

	store := services.NewSessionStore(sessionRows, users, logger, storeOpts...)
	h := &handlers.Handler{
		Emergent: identity.NewEmergentVerifier(cfg.EmergentSessionURL, cfg.IdentityTimeout),
		Firebase: identity.NewFirebaseVerifier(cfg.FirebaseProjectID, cfg.FirebaseCertsURL, cfg.IdentityTimeout),
		Users:    services.NewUserDirectory(users, logger),
		Sessions: store,
		Progress: services.NewProgressTracker(progressRows, logger),
		Stats:    services.NewStatsService(topics, projects, progressRows),
		Catalog:  services.NewCatalog(topics, projects),
		Log:      logger,
	}
	routes.SetupRoutes(router, h, services.NewAuthGate(store), logger)

	for _, route := range routes.Routes(router) {
		logger.Debug(ctx, "route registered", "route", route)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: cfg.RequestTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "DataPath backend running", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
