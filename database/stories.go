package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"visage/models"
	"visage/services"
)

type StoryStore struct {
	parentStore
}

func NewStoryStore(db *mongo.Database) *StoryStore {
	return &StoryStore{parentStore{likeSet{db.Collection(StoriesCollection)}}}
}

type storyRow struct {
	models.Story `bson:",inline"`
	Author       *models.Author `bson:"author"`
}

func (s *StoryStore) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]*models.Story, error) {
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	rows, err := decodeAll[storyRow](ctx, cur)
	if err != nil {
		return nil, err
	}
	stories := make([]*models.Story, len(rows))
	for i := range rows {
		st := rows[i].Story
		st.SetAuthor(rows[i].Author)
		stories[i] = &st
	}
	return stories, nil
}

func (s *StoryStore) Create(ctx context.Context, st *models.Story) error {
	_, err := s.coll.InsertOne(ctx, st)
	return translate(err)
}

func (s *StoryStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Story, error) {
	stories, err := s.aggregate(ctx, ListPipeline(bson.M{"_id": id}, 1))
	if err != nil {
		return nil, err
	}
	if len(stories) == 0 {
		return nil, services.ErrNotFound
	}
	return stories[0], nil
}

func (s *StoryStore) ListActive(ctx context.Context, authors []primitive.ObjectID, now time.Time) ([]*models.Story, error) {
	return s.aggregate(ctx, ListPipeline(ActiveStoriesFilter(authors, now), 0))
}

func (s *StoryStore) ListByType(ctx context.Context, storyType models.StoryType, limit int) ([]*models.Story, error) {
	return s.aggregate(ctx, ListPipeline(bson.M{"storyType": storyType}, limit))
}

func (s *StoryStore) AddView(ctx context.Context, id, userID primitive.ObjectID) error {
	return addMember(ctx, s.coll, id, "views", userID)
}

func (s *StoryStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.coll, id)
}
