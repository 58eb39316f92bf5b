package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"visage/models"
	"visage/services"
)

type CommentStore struct {
	likeSet
	users *mongo.Collection
}

func NewCommentStore(db *mongo.Database) *CommentStore {
	return &CommentStore{
		likeSet: likeSet{db.Collection(CommentsCollection)},
		users:   db.Collection(UsersCollection),
	}
}

func (s *CommentStore) Create(ctx context.Context, c *models.Comment) error {
	_, err := s.coll.InsertOne(ctx, c)
	return translate(err)
}

func (s *CommentStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var c models.Comment
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	if err := s.populate(ctx, []*models.Comment{&c}); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CommentStore) ListByParent(ctx context.Context, kind models.ParentKind, parentID primitive.ObjectID) ([]*models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.M{string(kind): parentID}, opts)
	if err != nil {
		return nil, err
	}
	comments, err := decodeAll[*models.Comment](ctx, cur)
	if err != nil {
		return nil, err
	}
	if err := s.populate(ctx, comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// populate loads the authors of comments and their replies in one query.
func (s *CommentStore) populate(ctx context.Context, comments []*models.Comment) error {
	seen := map[primitive.ObjectID]bool{}
	ids := []primitive.ObjectID{}
	for _, c := range comments {
		for _, id := range c.AuthorIDs() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	opts := options.Find().SetProjection(bson.M{"username": 1, "profilePicture": 1})
	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return err
	}
	authors, err := decodeAll[*models.Author](ctx, cur)
	if err != nil {
		return err
	}
	byID := make(map[primitive.ObjectID]*models.Author, len(authors))
	for _, a := range authors {
		byID[a.ID] = a
	}
	for _, c := range comments {
		c.Populate(byID)
	}
	return nil
}

func (s *CommentStore) AddReply(ctx context.Context, id primitive.ObjectID, r models.Reply) error {
	return updateByID(ctx, s.coll, id, bson.M{
		"$push": bson.M{"replies": r},
		"$set":  bson.M{"updatedAt": r.CreatedAt},
	})
}

func (s *CommentStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.coll, id)
}

func (s *CommentStore) Refs(ctx context.Context) ([]services.CommentRef, error) {
	opts := options.Find().SetProjection(bson.M{"post": 1, "story": 1})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	docs, err := decodeAll[models.Comment](ctx, cur)
	if err != nil {
		return nil, err
	}
	refs := make([]services.CommentRef, 0, len(docs))
	for i := range docs {
		kind, parent := docs[i].Parent()
		if kind == "" {
			continue
		}
		refs = append(refs, services.CommentRef{ID: docs[i].ID, Kind: kind, Parent: parent})
	}
	return refs, nil
}
