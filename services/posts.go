package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"visage/media"
	"visage/models"
)

type CreatePostInput struct {
	Caption  string
	Location string
	Media    media.Source
}

// UpdatePostInput replaces the caption when non-empty and the location when
// non-nil. Hashtags always follow the resulting caption.
type UpdatePostInput struct {
	Caption  *string `json:"caption"`
	Location *string `json:"location"`
}

type PostService struct {
	posts     PostStore
	users     UserStore
	uploader  MediaUploader
	cleaner   MediaCleaner
	notifier  Notifier
	maxUpload int64
	log       *zap.Logger
	now       func() time.Time
}

func NewPostService(posts PostStore, users UserStore, uploader MediaUploader, cleaner MediaCleaner, notifier Notifier, maxUpload int64, log *zap.Logger) *PostService {
	return &PostService{
		posts:     posts,
		users:     users,
		uploader:  uploader,
		cleaner:   cleaner,
		notifier:  notifier,
		maxUpload: maxUpload,
		log:       log,
		now:       now,
	}
}

// EngagementScore ranks posts on the explore page.
func EngagementScore(p *models.Post) int {
	return len(p.Likes) + 2*len(p.Comments)
}

func (s *PostService) Create(ctx context.Context, actor primitive.ObjectID, in CreatePostInput) (*models.Post, error) {
	if in.Media.Empty() {
		return nil, Validation("Please upload an image or video")
	}
	if err := checkUpload(in.Media, s.maxUpload); err != nil {
		return nil, err
	}

	res, err := upload(ctx, s.uploader, in.Media, media.Target{Folder: media.FolderPosts})
	if err != nil {
		return nil, err
	}

	ts := s.now()
	post := &models.Post{
		ID:        primitive.NewObjectID(),
		UserID:    actor,
		Caption:   in.Caption,
		MediaURL:  res.URL,
		MediaType: res.Type,
		Location:  strings.TrimSpace(in.Location),
		Hashtags:  ExtractHashtags(in.Caption),
		Likes:     emptyIDs(),
		Comments:  emptyIDs(),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		cleanupMedia(ctx, s.cleaner, s.log, res.URL, media.FolderPosts)
		return nil, Internal("create post", err)
	}
	return s.Get(ctx, post.ID)
}

func (s *PostService) Get(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Post not found", "find post")
	}
	return post, nil
}

func (s *PostService) ByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Post, error) {
	posts, err := s.posts.ListByAuthors(ctx, []primitive.ObjectID{userID}, 0)
	if err != nil {
		return nil, Internal("list user posts", err)
	}
	return posts, nil
}

// Feed returns the newest posts by the actor and everyone they follow.
func (s *PostService) Feed(ctx context.Context, actor primitive.ObjectID) ([]*models.Post, error) {
	user, err := s.users.FindByID(ctx, actor)
	if err != nil {
		return nil, storeErr(err, "User not found", "find user")
	}
	authors := append([]primitive.ObjectID{actor}, user.Following...)
	posts, err := s.posts.ListByAuthors(ctx, authors, FeedLimit)
	if err != nil {
		return nil, Internal("list feed posts", err)
	}
	return posts, nil
}

func (s *PostService) Like(ctx context.Context, actor, id primitive.ObjectID) error {
	if err := toggleLike(ctx, s.posts, id, actor, true, "Post"); err != nil {
		return err
	}
	if author, err := s.posts.AuthorOf(ctx, id); err == nil {
		notify(ctx, s.notifier, author, actor, models.NotifyLike, func(n *models.Notification) {
			n.PostID = &id
		})
	}
	return nil
}

func (s *PostService) Unlike(ctx context.Context, actor, id primitive.ObjectID) error {
	return toggleLike(ctx, s.posts, id, actor, false, "Post")
}

func (s *PostService) Update(ctx context.Context, actor, id primitive.ObjectID, in UpdatePostInput) (*models.Post, error) {
	post, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if in.Caption != nil && *in.Caption != "" {
		post.Caption = *in.Caption
	}
	if in.Location != nil {
		post.Location = strings.TrimSpace(*in.Location)
	}
	post.Hashtags = ExtractHashtags(post.Caption)
	post.UpdatedAt = s.now()

	if err := s.posts.UpdateContent(ctx, post); err != nil {
		return nil, storeErr(err, "Post not found", "update post")
	}
	return s.Get(ctx, id)
}

// Delete removes the post and then schedules its media for removal. A
// failed media cleanup does not fail the delete.
func (s *PostService) Delete(ctx context.Context, actor, id primitive.ObjectID) error {
	post, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return storeErr(err, "Post not found", "delete post")
	}
	cleanupMedia(ctx, s.cleaner, s.log, post.MediaURL, media.FolderPosts)
	return nil
}

func (s *PostService) ByHashtag(ctx context.Context, tag string) ([]*models.Post, error) {
	normalized := NormalizeHashtag(tag)
	if normalized == "#" {
		return nil, Validation("Hashtag is required")
	}
	posts, err := s.posts.ListByHashtag(ctx, normalized)
	if err != nil {
		return nil, Internal("list hashtag posts", err)
	}
	return posts, nil
}

// Explore returns the highest scoring posts, best first.
func (s *PostService) Explore(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.posts.Explore(ctx, ExploreLimit)
	if err != nil {
		return nil, Internal("explore posts", err)
	}
	for _, p := range posts {
		p.EngagementScore = EngagementScore(p)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].EngagementScore > posts[j].EngagementScore
	})
	return posts, nil
}

func (s *PostService) owned(ctx context.Context, actor, id primitive.ObjectID) (*models.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.UserID != actor {
		return nil, Forbidden("User not authorized")
	}
	return post, nil
}
