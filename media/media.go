// Package media uploads user media to an external host and removes it again.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"go.uber.org/zap"

	"visage/models"
)

// Folders used on the media host.
const (
	FolderPosts           = "visage_posts"
	FolderStories         = "visage_stories"
	FolderProfilePictures = "visage_profile_pictures"
)

// AvatarTransformation limits profile pictures to a 400px square.
const AvatarTransformation = "c_limit,w_400,h_400,q_auto"

var (
	ErrUnsupportedType   = errors.New("only images (jpeg, jpg, png, gif) and videos (mp4, mov) are allowed")
	ErrTooLarge          = errors.New("file exceeds the maximum upload size")
	ErrUnsupportedSource = errors.New("media source is not supported by this host")
	ErrUnavailable       = errors.New("media host temporarily unavailable")
	ErrEmptySource       = errors.New("no media provided")
)

// Source is either an uploaded file (Reader) or an inline payload (Data),
// which may be a base64 data URI or a remote URL.
type Source struct {
	Reader   io.Reader
	Filename string
	Size     int64
	Data     string
}

func (s Source) Empty() bool {
	return s.Reader == nil && strings.TrimSpace(s.Data) == ""
}

// Target says where an upload should land.
type Target struct {
	Folder         string
	PublicID       string
	Transformation string
}

type Result struct {
	URL      string
	PublicID string
	Type     models.MediaType
}

type Store interface {
	Upload(ctx context.Context, src Source, target Target) (*Result, error)
	Delete(ctx context.Context, mediaURL, folder string) error
}

// PublicID derives the host-side identifier of mediaURL: the folder joined
// with the last path segment stripped of its extension.
func PublicID(mediaURL, folder string) string {
	if i := strings.IndexAny(mediaURL, "?#"); i >= 0 {
		mediaURL = mediaURL[:i]
	}
	name := path.Base(mediaURL)
	if name == "." || name == "/" {
		return ""
	}
	name = strings.TrimSuffix(name, path.Ext(name))
	if folder == "" {
		return name
	}
	return folder + "/" + name
}

// TypeFromExtension guesses the media type of a stored file by extension.
func TypeFromExtension(name string) models.MediaType {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(name), ".")) {
	case "mp4", "mov", "webm":
		return models.MediaVideo
	default:
		return models.MediaImage
	}
}

// Config selects and configures the media host.
type Config struct {
	Provider      string
	CloudinaryURL string
	S3Region      string
	S3Bucket      string
	MaxUploadSize int64
	RPS           float64
}

// NewStore builds the configured host behind a rate limiter and circuit
// breaker.
func NewStore(cfg Config, log *zap.Logger) (Store, error) {
	var (
		next Store
		err  error
	)
	switch cfg.Provider {
	case "s3":
		next, err = NewS3(cfg.S3Region, cfg.S3Bucket, cfg.MaxUploadSize)
	case "cloudinary", "":
		next, err = NewCloudinary(cfg.CloudinaryURL)
	default:
		return nil, fmt.Errorf("unknown media provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return NewGuarded(next, cfg.RPS, log), nil
}
