// Package queue moves media removal off the request path onto an asynq
// worker.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	TypeMediaDelete = "media:delete"

	QueueDefault = "default"
	QueueLow     = "low"
)

type MediaDeletePayload struct {
	URL    string `json:"url"`
	Folder string `json:"folder"`
}

func NewMediaDeleteTask(mediaURL, folder string) (*asynq.Task, error) {
	payload, err := json.Marshal(MediaDeletePayload{URL: mediaURL, Folder: folder})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(
		TypeMediaDelete,
		payload,
		asynq.MaxRetry(5),
		asynq.Timeout(time.Minute),
		asynq.Queue(QueueLow),
	), nil
}

// RedisOpt converts go-redis options into the form asynq connects with.
func RedisOpt(opt *redis.Options) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Network:   opt.Network,
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}
}

// Enqueuer is the part of *asynq.Client the cleaner needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Cleaner schedules media removal on the worker.
type Cleaner struct {
	enq Enqueuer
	log *zap.Logger
}

func NewCleaner(enq Enqueuer, log *zap.Logger) *Cleaner {
	return &Cleaner{enq: enq, log: log}
}

func (c *Cleaner) Cleanup(ctx context.Context, mediaURL, folder string) error {
	if mediaURL == "" {
		return nil
	}
	task, err := NewMediaDeleteTask(mediaURL, folder)
	if err != nil {
		return err
	}
	info, err := c.enq.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", TypeMediaDelete, err)
	}
	c.log.Debug("media delete enqueued", zap.String("task_id", info.ID), zap.String("url", mediaURL))
	return nil
}
