package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/AnshRaj112/datapath-backend/internal/apperr"
	"github.com/AnshRaj112/datapath-backend/internal/models"
	"github.com/AnshRaj112/datapath-backend/internal/repository"
)

// SearchLimit caps each kind of search result.
const SearchLimit = 50

type TopicRecords interface {
	List(ctx context.Context, f models.CatalogFilter) ([]models.Topic, error)
	Search(ctx context.Context, q string, limit int64) ([]models.Topic, error)
	Get(ctx context.Context, id string) (*models.Topic, error)
	Insert(ctx context.Context, t *models.Topic) error
	Replace(ctx context.Context, t *models.Topic) (*models.Topic, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type ProjectRecords interface {
	List(ctx context.Context, f models.CatalogFilter) ([]models.Project, error)
	Search(ctx context.Context, q string, limit int64) ([]models.Project, error)
	Get(ctx context.Context, id string) (*models.Project, error)
	Insert(ctx context.Context, p *models.Project) error
	Replace(ctx context.Context, p *models.Project) (*models.Project, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// Catalog is the topics and projects store behind the public listing
// endpoints and the authenticated editing ones.
type Catalog struct {
	topics   TopicRecords
	projects ProjectRecords
}

func NewCatalog(topics TopicRecords, projects ProjectRecords) *Catalog {
	return &Catalog{topics: topics, projects: projects}
}

func (c *Catalog) ListTopics(ctx context.Context, f models.CatalogFilter) ([]models.Topic, error) {
	topics, err := c.topics.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal("list topics", err)
	}
	return topics, nil
}

func (c *Catalog) GetTopic(ctx context.Context, id string) (*models.Topic, error) {
	topic, err := c.topics.Get(ctx, id)
	if err != nil {
		return nil, catalogErr(err, "Topic not found", "load topic")
	}
	return topic, nil
}

func (c *Catalog) CreateTopic(ctx context.Context, in models.TopicInput) (*models.Topic, error) {
	topic := newTopic(uuid.NewString(), in)
	if err := c.topics.Insert(ctx, topic); err != nil {
		return nil, apperr.Internal("create topic", err)
	}
	return topic, nil
}

// UpdateTopic replaces every field of topic id with in.
func (c *Catalog) UpdateTopic(ctx context.Context, id string, in models.TopicInput) (*models.Topic, error) {
	topic, err := c.topics.Replace(ctx, newTopic(id, in))
	if err != nil {
		return nil, catalogErr(err, "Topic not found", "update topic")
	}
	return topic, nil
}

func (c *Catalog) DeleteTopic(ctx context.Context, id string) error {
	if err := c.topics.Delete(ctx, id); err != nil {
		return catalogErr(err, "Topic not found", "delete topic")
	}
	return nil
}

func (c *Catalog) ListProjects(ctx context.Context, f models.CatalogFilter) ([]models.Project, error) {
	projects, err := c.projects.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal("list projects", err)
	}
	return projects, nil
}

func (c *Catalog) GetProject(ctx context.Context, id string) (*models.Project, error) {
	project, err := c.projects.Get(ctx, id)
	if err != nil {
		return nil, catalogErr(err, "Project not found", "load project")
	}
	return project, nil
}

func (c *Catalog) CreateProject(ctx context.Context, in models.ProjectInput) (*models.Project, error) {
	project := newProject(uuid.NewString(), in)
	if err := c.projects.Insert(ctx, project); err != nil {
		return nil, apperr.Internal("create project", err)
	}
	return project, nil
}

func (c *Catalog) UpdateProject(ctx context.Context, id string, in models.ProjectInput) (*models.Project, error) {
	project, err := c.projects.Replace(ctx, newProject(id, in))
	if err != nil {
		return nil, catalogErr(err, "Project not found", "update project")
	}
	return project, nil
}

// Search matches q as a literal, case-insensitive substring of titles and
// descriptions.
func (c *Catalog) Search(ctx context.Context, q string) (*models.SearchResult, error) {
	if strings.TrimSpace(q) == "" {
		return nil, apperr.Validation("Query required")
	}

	topics, err := c.topics.Search(ctx, q, SearchLimit)
	if err != nil {
		return nil, apperr.Internal("search topics", err)
	}
	projects, err := c.projects.Search(ctx, q, SearchLimit)
	if err != nil {
		return nil, apperr.Internal("search projects", err)
	}
	return &models.SearchResult{Topics: topics, Projects: projects}, nil
}

func catalogErr(err error, notFound, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(notFound)
	}
	return apperr.Internal(op, err)
}

func newTopic(id string, in models.TopicInput) *models.Topic {
	return &models.Topic{
		ID:            id,
		Title:         in.Title,
		Description:   in.Description,
		Difficulty:    in.Difficulty,
		Duration:      in.Duration,
		Prerequisites: nonNil(in.Prerequisites),
		CareerPaths:   nonNil(in.CareerPaths),
		Resources:     nonNil(in.Resources),
		Order:         in.Order,
	}
}

func newProject(id string, in models.ProjectInput) *models.Project {
	estimated := in.EstimatedTime
	if estimated == "" {
		estimated = models.DefaultEstimatedTime
	}
	return &models.Project{
		ID:            id,
		Title:         in.Title,
		Description:   in.Description,
		Difficulty:    in.Difficulty,
		Skills:        nonNil(in.Skills),
		Resources:     nonNil(in.Resources),
		GithubLink:    in.GithubLink,
		EstimatedTime: estimated,
		CareerPaths:   nonNil(in.CareerPaths),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
