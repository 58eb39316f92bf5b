package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"visage/media"
	"visage/models"
)

type CreateStoryInput struct {
	Content   string
	StoryType string
	Media     media.Source
}

type StoryService struct {
	stories   StoryStore
	users     UserStore
	uploader  MediaUploader
	cleaner   MediaCleaner
	notifier  Notifier
	maxUpload int64
	log       *zap.Logger
	now       func() time.Time
}

func NewStoryService(stories StoryStore, users UserStore, uploader MediaUploader, cleaner MediaCleaner, notifier Notifier, maxUpload int64, log *zap.Logger) *StoryService {
	return &StoryService{
		stories:   stories,
		users:     users,
		uploader:  uploader,
		cleaner:   cleaner,
		notifier:  notifier,
		maxUpload: maxUpload,
		log:       log,
		now:       now,
	}
}

// Create stores a new story. Ephemeral stories expire exactly
// EphemeralLifetime after creation; other types never expire.
func (s *StoryService) Create(ctx context.Context, actor primitive.ObjectID, in CreateStoryInput) (*models.Story, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, Validation("Content is required")
	}
	storyType := models.StoryType(strings.ToLower(strings.TrimSpace(in.StoryType)))
	if storyType == "" {
		return nil, Validation("Story type is required")
	}
	if !storyType.Valid() {
		return nil, Validation("Story type must be one of ephemeral, poetry, thought")
	}
	if err := checkUpload(in.Media, s.maxUpload); err != nil {
		return nil, err
	}

	mediaURL, mediaType := "", models.MediaText
	if !in.Media.Empty() {
		res, err := upload(ctx, s.uploader, in.Media, media.Target{Folder: media.FolderStories})
		if err != nil {
			return nil, err
		}
		mediaURL, mediaType = res.URL, res.Type
	}

	ts := s.now()
	story := &models.Story{
		ID:        primitive.NewObjectID(),
		UserID:    actor,
		Content:   in.Content,
		MediaURL:  mediaURL,
		MediaType: mediaType,
		StoryType: storyType,
		Likes:     emptyIDs(),
		Comments:  emptyIDs(),
		Views:     emptyIDs(),
		Hashtags:  ExtractHashtags(in.Content),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if storyType == models.StoryEphemeral {
		expireAt := ts.Add(models.EphemeralLifetime)
		story.ExpireAt = &expireAt
	}

	if err := s.stories.Create(ctx, story); err != nil {
		cleanupMedia(ctx, s.cleaner, s.log, mediaURL, media.FolderStories)
		return nil, Internal("create story", err)
	}
	return s.Get(ctx, story.ID)
}

func (s *StoryService) Get(ctx context.Context, id primitive.ObjectID) (*models.Story, error) {
	story, err := s.stories.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Story not found", "find story")
	}
	return story, nil
}

// Feed returns unexpired stories by the actor and everyone they follow.
func (s *StoryService) Feed(ctx context.Context, actor primitive.ObjectID) ([]*models.Story, error) {
	user, err := s.users.FindByID(ctx, actor)
	if err != nil {
		return nil, storeErr(err, "User not found", "find user")
	}
	authors := append([]primitive.ObjectID{actor}, user.Following...)
	stories, err := s.stories.ListActive(ctx, authors, s.now())
	if err != nil {
		return nil, Internal("list feed stories", err)
	}
	return stories, nil
}

func (s *StoryService) ByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Story, error) {
	stories, err := s.stories.ListActive(ctx, []primitive.ObjectID{userID}, s.now())
	if err != nil {
		return nil, Internal("list user stories", err)
	}
	return stories, nil
}

func (s *StoryService) Like(ctx context.Context, actor, id primitive.ObjectID) error {
	if err := toggleLike(ctx, s.stories, id, actor, true, "Story"); err != nil {
		return err
	}
	if author, err := s.stories.AuthorOf(ctx, id); err == nil {
		notify(ctx, s.notifier, author, actor, models.NotifyLike, func(n *models.Notification) {
			n.StoryID = &id
		})
	}
	return nil
}

func (s *StoryService) Unlike(ctx context.Context, actor, id primitive.ObjectID) error {
	return toggleLike(ctx, s.stories, id, actor, false, "Story")
}

// View records that actor opened the story. It reports false when the view
// was already recorded.
func (s *StoryService) View(ctx context.Context, actor, id primitive.ObjectID) (bool, error) {
	err := s.stories.AddView(ctx, id, actor)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrAlreadyMember):
		return false, nil
	}
	return false, storeErr(err, "Story not found", "add story view")
}

func (s *StoryService) Delete(ctx context.Context, actor, id primitive.ObjectID) error {
	story, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if story.UserID != actor {
		return Forbidden("User not authorized")
	}
	if err := s.stories.Delete(ctx, id); err != nil {
		return storeErr(err, "Story not found", "delete story")
	}
	cleanupMedia(ctx, s.cleaner, s.log, story.MediaURL, media.FolderStories)
	return nil
}

// ByType lists the newest poetry or thought stories with no repeated ids.
func (s *StoryService) ByType(ctx context.Context, storyType models.StoryType) ([]*models.Story, error) {
	if storyType != models.StoryPoetry && storyType != models.StoryThought {
		return nil, Validation("Story type must be poetry or thought")
	}
	stories, err := s.stories.ListByType(ctx, storyType, StoryTypeLimit)
	if err != nil {
		return nil, Internal("list stories by type", err)
	}
	return dedupeStories(stories), nil
}

func dedupeStories(stories []*models.Story) []*models.Story {
	seen := make(map[primitive.ObjectID]bool, len(stories))
	out := make([]*models.Story, 0, len(stories))
	for _, st := range stories {
		if seen[st.ID] {
			continue
		}
		seen[st.ID] = true
		out = append(out, st)
	}
	return out
}
