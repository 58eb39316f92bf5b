package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"visage/services"
)

// Collection names.
const (
	UsersCollection         = "users"
	PostsCollection         = "posts"
	StoriesCollection       = "stories"
	CommentsCollection      = "comments"
	NotificationsCollection = "notifications"
)

// DB holds the client and the application database.
type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
	log      *zap.Logger
}

// Connect dials uri, pings the server and retries up to attempts times.
func Connect(ctx context.Context, uri, dbName string, attempts int, log *zap.Logger) (*DB, error) {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 1; i <= attempts; i++ {
		client, err := dial(ctx, uri)
		if err == nil {
			log.Info("connected to MongoDB", zap.String("database", dbName))
			return &DB{Client: client, Database: client.Database(dbName), log: log}, nil
		}
		lastErr = err
		log.Warn("MongoDB connection attempt failed", zap.Int("attempt", i), zap.Error(err))

		if i < attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}
	}
	return nil, fmt.Errorf("connect to MongoDB: %w", lastErr)
}

func dial(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, nil)
}

func (db *DB) Disconnect(ctx context.Context) error {
	if db == nil || db.Client == nil {
		return nil
	}
	if err := db.Client.Disconnect(ctx); err != nil {
		return err
	}
	db.log.Info("disconnected from MongoDB")
	return nil
}

// IndexSpecs lists the indexes EnsureIndexes creates, keyed by collection.
func IndexSpecs() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		PostsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "hashtags", Value: 1}}},
		},
		StoriesCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "storyType", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		CommentsCollection: {
			{Keys: bson.D{{Key: "post", Value: 1}}},
			{Keys: bson.D{{Key: "story", Value: 1}}},
		},
		NotificationsCollection: {
			{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
}

// EnsureIndexes creates every index in IndexSpecs. It is safe to run on
// every start.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	for name, models := range IndexSpecs() {
		if _, err := db.Database.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// Stores bundles the Mongo implementations of the service stores.
type Stores struct {
	Users         *UserStore
	Posts         *PostStore
	Stories       *StoryStore
	Comments      *CommentStore
	Notifications *NotificationStore
}

func (db *DB) Stores() *Stores {
	return &Stores{
		Users:         NewUserStore(db.Database),
		Posts:         NewPostStore(db.Database),
		Stories:       NewStoryStore(db.Database),
		Comments:      NewCommentStore(db.Database),
		Notifications: NewNotificationStore(db.Database),
	}
}

// translate maps driver errors onto the service sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return services.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", services.ErrDuplicate, err)
	}
	return err
}
