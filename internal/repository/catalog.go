package repository

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/datapath-backend/internal/models"
)

const maxCatalogRows = 1000

// documents holds the collection plumbing shared by topics and projects.
type documents[T any] struct {
	col  *mongo.Collection
	sort bson.D
}

func (d documents[T]) list(ctx context.Context, f models.CatalogFilter) ([]T, error) {
	filter := bson.M{}
	if f.Difficulty != "" {
		filter["difficulty"] = f.Difficulty
	}
	if f.CareerPath != "" {
		filter["career_paths"] = f.CareerPath
	}

	opts := options.Find().SetLimit(maxCatalogRows)
	if d.sort != nil {
		opts.SetSort(d.sort)
	}
	return d.find(ctx, filter, opts)
}

func (d documents[T]) search(ctx context.Context, q string, limit int64) ([]T, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"title": pattern},
		bson.M{"description": pattern},
	}}
	return d.find(ctx, filter, options.Find().SetLimit(limit))
}

func (d documents[T]) find(ctx context.Context, filter any, opts *options.FindOptions) ([]T, error) {
	cur, err := d.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (d documents[T]) get(ctx context.Context, id string) (*T, error) {
	var doc T
	if err := d.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, mapFindErr(err)
	}
	return &doc, nil
}

func (d documents[T]) insert(ctx context.Context, doc *T) error {
	_, err := d.col.InsertOne(ctx, doc)
	return mapWriteErr(err)
}

func (d documents[T]) replace(ctx context.Context, id string, doc *T) (*T, error) {
	opts := options.FindOneAndReplace().SetReturnDocument(options.After)
	var out T
	if err := d.col.FindOneAndReplace(ctx, bson.M{"_id": id}, doc, opts).Decode(&out); err != nil {
		return nil, mapFindErr(err)
	}
	return &out, nil
}

func (d documents[T]) delete(ctx context.Context, id string) error {
	res, err := d.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (d documents[T]) count(ctx context.Context) (int64, error) {
	return d.col.CountDocuments(ctx, bson.M{})
}

func (d documents[T]) deleteAll(ctx context.Context) error {
	_, err := d.col.DeleteMany(ctx, bson.M{})
	return err
}

type TopicRepository struct {
	docs documents[models.Topic]
}

func NewTopicRepository(db *mongo.Database) *TopicRepository {
	return &TopicRepository{docs: documents[models.Topic]{
		col:  db.Collection(TopicsCollection),
		sort: bson.D{{Key: "order", Value: 1}},
	}}
}

// List returns topics sorted by their curriculum order.
func (r *TopicRepository) List(ctx context.Context, f models.CatalogFilter) ([]models.Topic, error) {
	return r.docs.list(ctx, f)
}

func (r *TopicRepository) Search(ctx context.Context, q string, limit int64) ([]models.Topic, error) {
	return r.docs.search(ctx, q, limit)
}

func (r *TopicRepository) Get(ctx context.Context, id string) (*models.Topic, error) {
	return r.docs.get(ctx, id)
}

func (r *TopicRepository) Insert(ctx context.Context, t *models.Topic) error {
	return r.docs.insert(ctx, t)
}

func (r *TopicRepository) Replace(ctx context.Context, t *models.Topic) (*models.Topic, error) {
	return r.docs.replace(ctx, t.ID, t)
}

func (r *TopicRepository) Delete(ctx context.Context, id string) error {
	return r.docs.delete(ctx, id)
}

func (r *TopicRepository) Count(ctx context.Context) (int64, error) {
	return r.docs.count(ctx)
}

func (r *TopicRepository) DeleteAll(ctx context.Context) error {
	return r.docs.deleteAll(ctx)
}

type ProjectRepository struct {
	docs documents[models.Project]
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{docs: documents[models.Project]{col: db.Collection(ProjectsCollection)}}
}

func (r *ProjectRepository) List(ctx context.Context, f models.CatalogFilter) ([]models.Project, error) {
	return r.docs.list(ctx, f)
}

func (r *ProjectRepository) Search(ctx context.Context, q string, limit int64) ([]models.Project, error) {
	return r.docs.search(ctx, q, limit)
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (*models.Project, error) {
	return r.docs.get(ctx, id)
}

func (r *ProjectRepository) Insert(ctx context.Context, p *models.Project) error {
	return r.docs.insert(ctx, p)
}

func (r *ProjectRepository) Replace(ctx context.Context, p *models.Project) (*models.Project, error) {
	return r.docs.replace(ctx, p.ID, p)
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	return r.docs.delete(ctx, id)
}

func (r *ProjectRepository) Count(ctx context.Context) (int64, error) {
	return r.docs.count(ctx)
}

func (r *ProjectRepository) DeleteAll(ctx context.Context) error {
	return r.docs.deleteAll(ctx)
}
