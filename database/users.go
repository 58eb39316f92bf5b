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

// SearchLimit caps user search results.
const SearchLimit = 20

type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(UsersCollection)}
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	_, err := s.coll.InsertOne(ctx, u)
	return translate(err)
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *UserStore) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	filter := bson.M{"$or": bson.A{bson.M{"email": email}, bson.M{"username": username}}}
	n, err := s.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateProfile writes the editable fields of u. Follow lists are left alone.
func (s *UserStore) UpdateProfile(ctx context.Context, u *models.User) error {
	return updateByID(ctx, s.coll, u.ID, bson.M{"$set": bson.M{
		"username":       u.Username,
		"email":          u.Email,
		"password":       u.Password,
		"fullName":       u.FullName,
		"bio":            u.Bio,
		"website":        u.Website,
		"profilePicture": u.ProfilePicture,
		"isPrivate":      u.IsPrivate,
		"updatedAt":      u.UpdatedAt,
	}})
}

func (s *UserStore) Search(ctx context.Context, query string) ([]*models.User, error) {
	opts := options.Find().
		SetProjection(privateUserFields).
		SetSort(bson.D{{Key: "username", Value: 1}}).
		SetLimit(SearchLimit)
	cur, err := s.coll.Find(ctx, SearchFilter(query), opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[*models.User](ctx, cur)
}

func (s *UserStore) Suggested(ctx context.Context, exclude []primitive.ObjectID, limit int) ([]*models.User, error) {
	cur, err := s.coll.Aggregate(ctx, SuggestionPipeline(exclude, limit))
	if err != nil {
		return nil, err
	}
	return decodeAll[*models.User](ctx, cur)
}

func (s *UserStore) AddFollowing(ctx context.Context, userID, target primitive.ObjectID) error {
	return addMember(ctx, s.coll, userID, "following", target)
}

func (s *UserStore) RemoveFollowing(ctx context.Context, userID, target primitive.ObjectID) error {
	return removeMember(ctx, s.coll, userID, "following", target)
}

func (s *UserStore) AddFollower(ctx context.Context, userID, follower primitive.ObjectID) error {
	return addToSet(ctx, s.coll, userID, "followers", follower)
}

func (s *UserStore) RemoveFollower(ctx context.Context, userID, follower primitive.ObjectID) error {
	return pull(ctx, s.coll, userID, "followers", follower)
}

func (s *UserStore) FollowLinks(ctx context.Context) ([]services.FollowLinks, error) {
	opts := options.Find().SetProjection(bson.M{"followers": 1, "following": 1})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[services.FollowLinks](ctx, cur)
}

func (s *UserStore) IsFollowing(ctx context.Context, userID, target primitive.ObjectID) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, PresentFilter(userID, "following", target), options.Count().SetLimit(1))
	if err != nil {
		return false, translate(err)
	}
	return n == 1, nil
}
