package media

import (
	"context"

	"go.uber.org/zap"
)

// InlineCleaner removes media synchronously. It is used when no job queue
// is configured; failures are logged and reported but never retried.
type InlineCleaner struct {
	store Store
	log   *zap.Logger
}

func NewInlineCleaner(store Store, log *zap.Logger) *InlineCleaner {
	return &InlineCleaner{store: store, log: log}
}

func (c *InlineCleaner) Cleanup(ctx context.Context, mediaURL, folder string) error {
	if mediaURL == "" {
		return nil
	}
	if err := c.store.Delete(ctx, mediaURL, folder); err != nil {
		c.log.Warn("media cleanup failed",
			zap.String("url", mediaURL),
			zap.String("folder", folder),
			zap.Error(err))
		return err
	}
	return nil
}
