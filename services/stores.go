package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"visage/media"
	"visage/models"
)

// Stores report missing documents with ErrNotFound, unique index
// violations with ErrDuplicate and set-membership conflicts with
// ErrAlreadyMember / ErrNotMember. Each set mutation is a single
// conditional document update.

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	UpdateProfile(ctx context.Context, u *models.User) error
	Search(ctx context.Context, query string) ([]*models.User, error)
	Suggested(ctx context.Context, exclude []primitive.ObjectID, limit int) ([]*models.User, error)

	// AddFollowing fails with ErrAlreadyMember when target is already followed.
	AddFollowing(ctx context.Context, userID, target primitive.ObjectID) error
	// RemoveFollowing fails with ErrNotMember when target is not followed.
	RemoveFollowing(ctx context.Context, userID, target primitive.ObjectID) error
	AddFollower(ctx context.Context, userID, follower primitive.ObjectID) error
	RemoveFollower(ctx context.Context, userID, follower primitive.ObjectID) error

	// IsFollowing reads the current following list of userID.
	IsFollowing(ctx context.Context, userID, target primitive.ObjectID) (bool, error)
	FollowLinks(ctx context.Context) ([]FollowLinks, error)
}

// FollowLinks is the follow state of one account.
type FollowLinks struct {
	UserID    primitive.ObjectID   `bson:"_id"`
	Followers []primitive.ObjectID `bson:"followers"`
	Following []primitive.ObjectID `bson:"following"`
}

// LikeStore is shared by every likeable document.
type LikeStore interface {
	AddLike(ctx context.Context, id, userID primitive.ObjectID) error
	RemoveLike(ctx context.Context, id, userID primitive.ObjectID) error
}

// CommentParentStore is implemented by posts and stories, the two things a
// comment can hang off.
type CommentParentStore interface {
	// AuthorOf returns the author of the parent, or ErrNotFound.
	AuthorOf(ctx context.Context, id primitive.ObjectID) (primitive.ObjectID, error)
	AddComment(ctx context.Context, id, commentID primitive.ObjectID) error
	RemoveComment(ctx context.Context, id, commentID primitive.ObjectID) error
	CommentLists(ctx context.Context) (map[primitive.ObjectID][]primitive.ObjectID, error)
}

type PostStore interface {
	LikeStore
	CommentParentStore

	Create(ctx context.Context, p *models.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	ListByAuthors(ctx context.Context, authors []primitive.ObjectID, limit int) ([]*models.Post, error)
	ListByHashtag(ctx context.Context, tag string) ([]*models.Post, error)
	Explore(ctx context.Context, limit int) ([]*models.Post, error)
	UpdateContent(ctx context.Context, p *models.Post) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type StoryStore interface {
	LikeStore
	CommentParentStore

	Create(ctx context.Context, s *models.Story) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Story, error)
	// ListActive returns stories by authors that have no expiry or expire after now.
	ListActive(ctx context.Context, authors []primitive.ObjectID, now time.Time) ([]*models.Story, error)
	ListByType(ctx context.Context, storyType models.StoryType, limit int) ([]*models.Story, error)
	// AddView fails with ErrAlreadyMember when userID has already viewed the story.
	AddView(ctx context.Context, id, userID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CommentRef locates a comment's parent without loading its body.
type CommentRef struct {
	ID     primitive.ObjectID
	Kind   models.ParentKind
	Parent primitive.ObjectID
}

type CommentStore interface {
	LikeStore

	Create(ctx context.Context, c *models.Comment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	ListByParent(ctx context.Context, kind models.ParentKind, parentID primitive.ObjectID) ([]*models.Comment, error)
	AddReply(ctx context.Context, id primitive.ObjectID, r models.Reply) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Refs(ctx context.Context) ([]CommentRef, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForRecipient(ctx context.Context, recipient primitive.ObjectID, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id, recipient primitive.ObjectID, at time.Time) error
	MarkAllRead(ctx context.Context, recipient primitive.ObjectID, at time.Time) (int64, error)
}

// MediaUploader is the subset of media.Store the services upload through.
type MediaUploader interface {
	Upload(ctx context.Context, src media.Source, target media.Target) (*media.Result, error)
}

// MediaCleaner removes media that no longer backs any document. It may do
// so asynchronously; callers treat failures as non-fatal.
type MediaCleaner interface {
	Cleanup(ctx context.Context, mediaURL, folder string) error
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Notifier records activity for a recipient. Implementations must not fail
// the calling operation.
type Notifier interface {
	Notify(ctx context.Context, n *models.Notification)
}
