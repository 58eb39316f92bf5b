package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Deleter is the part of media.Store the worker needs.
type Deleter interface {
	Delete(ctx context.Context, mediaURL, folder string) error
}

type Processor struct {
	media Deleter
	log   *zap.Logger
}

func NewProcessor(media Deleter, log *zap.Logger) *Processor {
	return &Processor{media: media, log: log}
}

// Register mounts every handler on mux.
func (p *Processor) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeMediaDelete, p.HandleMediaDelete)
}

func (p *Processor) HandleMediaDelete(ctx context.Context, t *asynq.Task) error {
	var payload MediaDeletePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal %s payload: %v: %w", TypeMediaDelete, err, asynq.SkipRetry)
	}
	if payload.URL == "" {
		return fmt.Errorf("%s without url: %w", TypeMediaDelete, asynq.SkipRetry)
	}

	if err := p.media.Delete(ctx, payload.URL, payload.Folder); err != nil {
		p.log.Warn("media delete failed",
			zap.String("url", payload.URL),
			zap.String("folder", payload.Folder),
			zap.Error(err))
		return err
	}
	p.log.Info("media deleted", zap.String("url", payload.URL))
	return nil
}

// ServerConfig is the asynq server setup shared by the worker binary.
func ServerConfig(concurrency int, log *zap.Logger) asynq.Config {
	return asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			QueueDefault: 3,
			QueueLow:     1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error("task failed", zap.String("type", task.Type()), zap.Error(err))
		}),
	}
}
