package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"visage/models"
	"visage/services"
)

type PostStore struct {
	parentStore
}

func NewPostStore(db *mongo.Database) *PostStore {
	return &PostStore{parentStore{likeSet{db.Collection(PostsCollection)}}}
}

// postRow is a post with its author joined in by authorStages.
type postRow struct {
	models.Post `bson:",inline"`
	Author      *models.Author `bson:"author"`
}

func (s *PostStore) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]*models.Post, error) {
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	rows, err := decodeAll[postRow](ctx, cur)
	if err != nil {
		return nil, err
	}
	posts := make([]*models.Post, len(rows))
	for i := range rows {
		p := rows[i].Post
		p.SetAuthor(rows[i].Author)
		posts[i] = &p
	}
	return posts, nil
}

func (s *PostStore) Create(ctx context.Context, p *models.Post) error {
	_, err := s.coll.InsertOne(ctx, p)
	return translate(err)
}

func (s *PostStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	posts, err := s.aggregate(ctx, ListPipeline(bson.M{"_id": id}, 1))
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, services.ErrNotFound
	}
	return posts[0], nil
}

func (s *PostStore) ListByAuthors(ctx context.Context, authors []primitive.ObjectID, limit int) ([]*models.Post, error) {
	return s.aggregate(ctx, ListPipeline(bson.M{"user": bson.M{"$in": authors}}, limit))
}

func (s *PostStore) ListByHashtag(ctx context.Context, tag string) ([]*models.Post, error) {
	return s.aggregate(ctx, ListPipeline(bson.M{"hashtags": tag}, 0))
}

func (s *PostStore) Explore(ctx context.Context, limit int) ([]*models.Post, error) {
	return s.aggregate(ctx, ExplorePipeline(limit))
}

func (s *PostStore) UpdateContent(ctx context.Context, p *models.Post) error {
	return updateByID(ctx, s.coll, p.ID, bson.M{"$set": bson.M{
		"caption":   p.Caption,
		"location":  p.Location,
		"hashtags":  p.Hashtags,
		"updatedAt": p.UpdatedAt,
	}})
}

func (s *PostStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.coll, id)
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}
