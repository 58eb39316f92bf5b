package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"visage/models"
	"visage/services"
)

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Register(ctx context.Context, in services.RegisterInput) (*services.Session, error) {
	args := m.Called(ctx, in)
	s, _ := args.Get(0).(*services.Session)
	return s, args.Error(1)
}

func (m *mockUsers) Login(ctx context.Context, email, password string) (*services.Session, error) {
	args := m.Called(ctx, email, password)
	s, _ := args.Get(0).(*services.Session)
	return s, args.Error(1)
}

func (m *mockUsers) Profile(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUsers) ByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUsers) UpdateProfile(ctx context.Context, id primitive.ObjectID, in services.ProfileUpdate) (*services.Session, error) {
	args := m.Called(ctx, id, in)
	s, _ := args.Get(0).(*services.Session)
	return s, args.Error(1)
}

func (m *mockUsers) Follow(ctx context.Context, actor, target primitive.ObjectID) error {
	return m.Called(ctx, actor, target).Error(0)
}

func (m *mockUsers) Unfollow(ctx context.Context, actor, target primitive.ObjectID) error {
	return m.Called(ctx, actor, target).Error(0)
}

func (m *mockUsers) Search(ctx context.Context, query string) ([]*models.User, error) {
	args := m.Called(ctx, query)
	u, _ := args.Get(0).([]*models.User)
	return u, args.Error(1)
}

func (m *mockUsers) Suggested(ctx context.Context, actor primitive.ObjectID) ([]*models.User, error) {
	args := m.Called(ctx, actor)
	u, _ := args.Get(0).([]*models.User)
	return u, args.Error(1)
}

type mockPosts struct{ mock.Mock }

func (m *mockPosts) Create(ctx context.Context, actor primitive.ObjectID, in services.CreatePostInput) (*models.Post, error) {
	args := m.Called(ctx, actor, in)
	p, _ := args.Get(0).(*models.Post)
	return p, args.Error(1)
}

func (m *mockPosts) Get(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Post)
	return p, args.Error(1)
}

func (m *mockPosts) ByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Post, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).([]*models.Post)
	return p, args.Error(1)
}

func (m *mockPosts) Feed(ctx context.Context, actor primitive.ObjectID) ([]*models.Post, error) {
	args := m.Called(ctx, actor)
	p, _ := args.Get(0).([]*models.Post)
	return p, args.Error(1)
}

func (m *mockPosts) Like(ctx context.Context, actor, id primitive.ObjectID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *mockPosts) Unlike(ctx context.Context, actor, id primitive.ObjectID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *mockPosts) Update(ctx context.Context, actor, id primitive.ObjectID, in services.UpdatePostInput) (*models.Post, error) {
	args := m.Called(ctx, actor, id, in)
	p, _ := args.Get(0).(*models.Post)
	return p, args.Error(1)
}

func (m *mockPosts) Delete(ctx context.Context, actor, id primitive.ObjectID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *mockPosts) ByHashtag(ctx context.Context, tag string) ([]*models.Post, error) {
	args := m.Called(ctx, tag)
	p, _ := args.Get(0).([]*models.Post)
	return p, args.Error(1)
}

func (m *mockPosts) Explore(ctx context.Context) ([]*models.Post, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).([]*models.Post)
	return p, args.Error(1)
}

type mockStories struct{ mock.Mock }

func (m *mockStories) Create(ctx context.Context, actor primitive.ObjectID, in services.CreateStoryInput) (*models.Story, error) {
	args := m.Called(ctx, actor, in)
	s, _ := args.Get(0).(*models.Story)
	return s, args.Error(1)
}

func (m *mockStories) Get(ctx context.Context, id primitive.ObjectID) (*models.Story, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*models.Story)
	return s, args.Error(1)
}

func (m *mockStories) Feed(ctx context.Context, actor primitive.ObjectID) ([]*models.Story, error) {
	args := m.Called(ctx, actor)
	s, _ := args.Get(0).([]*models.Story)
	return s, args.Error(1)
}

func (m *mockStories) ByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Story, error) {
	args := m.Called(ctx, userID)
	s, _ := args.Get(0).([]*models.Story)
	return s, args.Error(1)
}

func (m *mockStories) Like(ctx context.Context, actor, id primitive.ObjectID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *mockStories) Unlike(ctx context.Context, actor, id primitive.ObjectID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *mockStories) View(ctx context.Context, actor, id primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, actor, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockStories) Delete(ctx context.Context, actor, id primitive.ObjectID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *mockStories) ByType(ctx context.Context, storyType models.StoryType) ([]*models.Story, error) {
	args := m.Called(ctx, storyType)
	s, _ := args.Get(0).([]*models.Story)
	return s, args.Error(1)
}

type mockComments struct{ mock.Mock }

func (m *mockComments) Create(ctx context.Context, actor primitive.ObjectID, kind models.ParentKind, parentID primitive.ObjectID, text string) (*models.Comment, error) {
	args := m.Called(ctx, actor, kind, parentID, text)
	c, _ := args.Get(0).(*models.Comment)
	return c, args.Error(1)
}

func (m *mockComments) ForPost(ctx context.Context, postID primitive.ObjectID) ([]*models.Comment, error) {
	args := m.Called(ctx, postID)
	c, _ := args.Get(0).([]*models.Comment)
	return c, args.Error(1)
}

func (m *mockComments) ForStory(ctx context.Context, storyID primitive.ObjectID) ([]*models.Comment, error) {
	args := m.Called(ctx, storyID)
	c, _ := args.Get(0).([]*models.Comment)
	return c, args.Error(1)
}

func (m *mockComments) Delete(ctx context.Context, actor, id primitive.ObjectID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *mockComments) Like(ctx context.Context, actor, id primitive.ObjectID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *mockComments) Unlike(ctx context.Context, actor, id primitive.ObjectID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *mockComments) Reply(ctx context.Context, actor, id primitive.ObjectID, text string) (*models.Comment, error) {
	args := m.Called(ctx, actor, id, text)
	c, _ := args.Get(0).(*models.Comment)
	return c, args.Error(1)
}

type mockNotifications struct{ mock.Mock }

func (m *mockNotifications) List(ctx context.Context, recipient primitive.ObjectID) ([]*models.Notification, error) {
	args := m.Called(ctx, recipient)
	n, _ := args.Get(0).([]*models.Notification)
	return n, args.Error(1)
}

func (m *mockNotifications) MarkRead(ctx context.Context, recipient, id primitive.ObjectID) error {
	return m.Called(ctx, recipient, id).Error(0)
}

func (m *mockNotifications) MarkAllRead(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, recipient)
	return args.Get(0).(int64), args.Error(1)
}
