// Package handlers adapts the HTTP surface onto the services.
package handlers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"visage/models"
	"visage/services"
)

type UserAPI interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.Session, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	Profile(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	ByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, in services.ProfileUpdate) (*services.Session, error)
	Follow(ctx context.Context, actor, target primitive.ObjectID) error
	Unfollow(ctx context.Context, actor, target primitive.ObjectID) error
	Search(ctx context.Context, query string) ([]*models.User, error)
	Suggested(ctx context.Context, actor primitive.ObjectID) ([]*models.User, error)
}

type PostAPI interface {
	Create(ctx context.Context, actor primitive.ObjectID, in services.CreatePostInput) (*models.Post, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	ByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Post, error)
	Feed(ctx context.Context, actor primitive.ObjectID) ([]*models.Post, error)
	Like(ctx context.Context, actor, id primitive.ObjectID) error
	Unlike(ctx context.Context, actor, id primitive.ObjectID) error
	Update(ctx context.Context, actor, id primitive.ObjectID, in services.UpdatePostInput) (*models.Post, error)
	Delete(ctx context.Context, actor, id primitive.ObjectID) error
	ByHashtag(ctx context.Context, tag string) ([]*models.Post, error)
	Explore(ctx context.Context) ([]*models.Post, error)
}

type StoryAPI interface {
	Create(ctx context.Context, actor primitive.ObjectID, in services.CreateStoryInput) (*models.Story, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Story, error)
	Feed(ctx context.Context, actor primitive.ObjectID) ([]*models.Story, error)
	ByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Story, error)
	Like(ctx context.Context, actor, id primitive.ObjectID) error
	Unlike(ctx context.Context, actor, id primitive.ObjectID) error
	View(ctx context.Context, actor, id primitive.ObjectID) (bool, error)
	Delete(ctx context.Context, actor, id primitive.ObjectID) error
	ByType(ctx context.Context, storyType models.StoryType) ([]*models.Story, error)
}

type CommentAPI interface {
	Create(ctx context.Context, actor primitive.ObjectID, kind models.ParentKind, parentID primitive.ObjectID, text string) (*models.Comment, error)
	ForPost(ctx context.Context, postID primitive.ObjectID) ([]*models.Comment, error)
	ForStory(ctx context.Context, storyID primitive.ObjectID) ([]*models.Comment, error)
	Delete(ctx context.Context, actor, id primitive.ObjectID) error
	Like(ctx context.Context, actor, id primitive.ObjectID) error
	Unlike(ctx context.Context, actor, id primitive.ObjectID) error
	Reply(ctx context.Context, actor, id primitive.ObjectID, text string) (*models.Comment, error)
}

type NotificationAPI interface {
	List(ctx context.Context, recipient primitive.ObjectID) ([]*models.Notification, error)
	MarkRead(ctx context.Context, recipient, id primitive.ObjectID) error
	MarkAllRead(ctx context.Context, recipient primitive.ObjectID) (int64, error)
}

type Handler struct {
	users         UserAPI
	posts         PostAPI
	stories       StoryAPI
	comments      CommentAPI
	notifications NotificationAPI
	maxUpload     int64
	log           *zap.Logger
}

type Services struct {
	Users         UserAPI
	Posts         PostAPI
	Stories       StoryAPI
	Comments      CommentAPI
	Notifications NotificationAPI
}

func New(svc Services, maxUpload int64, log *zap.Logger) *Handler {
	return &Handler{
		users:         svc.Users,
		posts:         svc.Posts,
		stories:       svc.Stories,
		comments:      svc.Comments,
		notifications: svc.Notifications,
		maxUpload:     maxUpload,
		log:           log,
	}
}
