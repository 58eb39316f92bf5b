package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"visage/services"
)

// addMember appends member to the array field of document id unless it is
// already present. The check and the write are one conditional update, so
// concurrent callers cannot both succeed.
func addMember(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, field string, member primitive.ObjectID) error {
	res, err := coll.UpdateOne(ctx, AbsentFilter(id, field, member), bson.M{"$push": bson.M{field: member}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	return missingOr(ctx, coll, id, services.ErrAlreadyMember)
}

// removeMember pulls member from the array field of document id, failing
// with ErrNotMember when it is not there.
func removeMember(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, field string, member primitive.ObjectID) error {
	res, err := coll.UpdateOne(ctx, PresentFilter(id, field, member), bson.M{"$pull": bson.M{field: member}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	return missingOr(ctx, coll, id, services.ErrNotMember)
}

// addToSet and pull are the idempotent forms used for the secondary side
// of a two-document write.
func addToSet(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, field string, member primitive.ObjectID) error {
	return updateByID(ctx, coll, id, bson.M{"$addToSet": bson.M{field: member}})
}

func pull(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, field string, member primitive.ObjectID) error {
	return updateByID(ctx, coll, id, bson.M{"$pull": bson.M{field: member}})
}

func updateByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, update bson.M) error {
	res, err := coll.UpdateByID(ctx, id, update)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}

// missingOr tells a missing document apart from a failed membership
// condition after a conditional update matched nothing.
func missingOr(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, err error) error {
	n, cerr := coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if cerr != nil {
		return translate(cerr)
	}
	if n == 0 {
		return services.ErrNotFound
	}
	return err
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]T, error) {
	defer cur.Close(ctx)
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// likeSet implements services.LikeStore for a collection with a likes array.
type likeSet struct {
	coll *mongo.Collection
}

func (s likeSet) AddLike(ctx context.Context, id, userID primitive.ObjectID) error {
	return addMember(ctx, s.coll, id, "likes", userID)
}

func (s likeSet) RemoveLike(ctx context.Context, id, userID primitive.ObjectID) error {
	return removeMember(ctx, s.coll, id, "likes", userID)
}

// parentStore implements services.CommentParentStore for posts and stories.
type parentStore struct {
	likeSet
}

func (s parentStore) AuthorOf(ctx context.Context, id primitive.ObjectID) (primitive.ObjectID, error) {
	var doc struct {
		UserID primitive.ObjectID `bson:"user"`
	}
	opts := options.FindOne().SetProjection(bson.M{"user": 1})
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&doc); err != nil {
		return primitive.NilObjectID, translate(err)
	}
	return doc.UserID, nil
}

func (s parentStore) AddComment(ctx context.Context, id, commentID primitive.ObjectID) error {
	return addToSet(ctx, s.coll, id, "comments", commentID)
}

func (s parentStore) RemoveComment(ctx context.Context, id, commentID primitive.ObjectID) error {
	return pull(ctx, s.coll, id, "comments", commentID)
}

func (s parentStore) CommentLists(ctx context.Context) (map[primitive.ObjectID][]primitive.ObjectID, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"comments": 1}))
	if err != nil {
		return nil, err
	}
	docs, err := decodeAll[struct {
		ID       primitive.ObjectID   `bson:"_id"`
		Comments []primitive.ObjectID `bson:"comments"`
	}](ctx, cur)
	if err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID][]primitive.ObjectID, len(docs))
	for _, d := range docs {
		out[d.ID] = d.Comments
	}
	return out, nil
}
