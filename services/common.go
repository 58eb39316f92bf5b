package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"visage/media"
	"visage/models"
)

// Result caps.
const (
	FeedLimit       = 50
	ExploreLimit    = 30
	StoryTypeLimit  = 30
	SuggestionLimit = 5
)

// now returns the current time at the precision the document store keeps.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// storeErr turns a store failure into a service error, mapping a missing
// document to notFoundMsg.
func storeErr(err error, notFoundMsg, op string) error {
	if errors.Is(err, ErrNotFound) {
		return NotFound(notFoundMsg)
	}
	return Internal(op, err)
}

func toggleLike(ctx context.Context, store LikeStore, id, userID primitive.ObjectID, like bool, noun string) error {
	var err error
	if like {
		err = store.AddLike(ctx, id, userID)
	} else {
		err = store.RemoveLike(ctx, id, userID)
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return NotFound(noun + " not found")
	case errors.Is(err, ErrAlreadyMember):
		return Conflict(noun + " already liked")
	case errors.Is(err, ErrNotMember):
		return Conflict(noun + " not liked yet")
	}
	return Internal("toggle like on "+noun, err)
}

func upload(ctx context.Context, up MediaUploader, src media.Source, target media.Target) (*media.Result, error) {
	res, err := up.Upload(ctx, src, target)
	if err == nil {
		return res, nil
	}
	if media.IsClientError(err) {
		return nil, Validation(err.Error())
	}
	return nil, Internal("media upload", err)
}

func notify(ctx context.Context, n Notifier, recipient, sender primitive.ObjectID, typ models.NotificationType, set func(*models.Notification)) {
	if n == nil || recipient == sender {
		return
	}
	note := &models.Notification{RecipientID: recipient, SenderID: sender, Type: typ}
	if set != nil {
		set(note)
	}
	n.Notify(ctx, note)
}

func emptyIDs() []primitive.ObjectID { return []primitive.ObjectID{} }

// checkUpload applies the upload filter to multipart files. Inline payloads
// are checked by the media host.
func checkUpload(src media.Source, max int64) error {
	if src.Reader == nil {
		return nil
	}
	if err := media.ValidateUpload(src.Filename, src.Size, max); err != nil {
		return Validation(err.Error())
	}
	return nil
}

// cleanupMedia schedules removal of mediaURL after its document is gone.
// It never fails the caller.
func cleanupMedia(ctx context.Context, c MediaCleaner, log *zap.Logger, mediaURL, folder string) {
	if c == nil || mediaURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := c.Cleanup(ctx, mediaURL, folder); err != nil {
		log.Warn("media cleanup not scheduled",
			zap.String("url", mediaURL),
			zap.String("folder", folder),
			zap.Error(err))
	}
}
