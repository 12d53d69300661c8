// Package seed replaces the catalog with the embedded starter data.
package seed

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/AnshRaj112/datapath-backend/internal/logging"
	"github.com/AnshRaj112/datapath-backend/internal/models"
)

//go:embed data/topics.json data/projects.json
var data embed.FS

type TopicStore interface {
	DeleteAll(ctx context.Context) error
	Insert(ctx context.Context, t *models.Topic) error
}

type ProjectStore interface {
	DeleteAll(ctx context.Context) error
	Insert(ctx context.Context, p *models.Project) error
}

// Result counts what a run inserted.
type Result struct {
	Topics   int
	Projects int
}

// Load decodes the embedded catalog and assigns fresh ids.
func Load() ([]models.Topic, []models.Project, error) {
	var topics []models.Topic
	if err := decode("data/topics.json", &topics); err != nil {
		return nil, nil, err
	}
	var projects []models.Project
	if err := decode("data/projects.json", &projects); err != nil {
		return nil, nil, err
	}

	for i := range topics {
		topics[i].ID = uuid.NewString()
		if topics[i].Prerequisites == nil {
			topics[i].Prerequisites = []string{}
		}
	}
	for i := range projects {
		projects[i].ID = uuid.NewString()
		if projects[i].EstimatedTime == "" {
			projects[i].EstimatedTime = models.DefaultEstimatedTime
		}
	}
	return topics, projects, nil
}

func decode(name string, dst any) error {
	raw, err := data.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// Run deletes every topic and project, then inserts the embedded catalog.
// Running it twice leaves the same catalog with new ids.
func Run(ctx context.Context, topics TopicStore, projects ProjectStore, log logging.Logger) (Result, error) {
	topicRows, projectRows, err := Load()
	if err != nil {
		return Result{}, err
	}

	log.Info(ctx, "Starting database seeding...")
	if err := topics.DeleteAll(ctx); err != nil {
		return Result{}, fmt.Errorf("clear topics: %w", err)
	}
	if err := projects.DeleteAll(ctx); err != nil {
		return Result{}, fmt.Errorf("clear projects: %w", err)
	}

	var res Result
	for i := range topicRows {
		if err := topics.Insert(ctx, &topicRows[i]); err != nil {
			return res, fmt.Errorf("insert topic %q: %w", topicRows[i].Title, err)
		}
		res.Topics++
	}
	for i := range projectRows {
		if err := projects.Insert(ctx, &projectRows[i]); err != nil {
			return res, fmt.Errorf("insert project %q: %w", projectRows[i].Title, err)
		}
		res.Projects++
	}

	log.Info(ctx, "Database seeding completed", "topics", res.Topics, "projects", res.Projects)
	return res, nil
}
