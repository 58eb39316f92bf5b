// Command worker processes background tasks queued by the API, currently
// removal of media whose post or story was deleted.
package main

import (
	"errors"
	"log"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"visage/config"
	"visage/logger"
	"visage/media"
	"visage/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("worker exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	if !cfg.RedisEnabled() {
		return errors.New("REDIS_URL must be set to run the worker")
	}
	opt, err := cfg.RedisOptions()
	if err != nil {
		return err
	}

	store, err := media.NewStore(media.Config{
		Provider:      cfg.MediaProvider,
		CloudinaryURL: cfg.CloudinaryURL,
		S3Region:      cfg.S3Region,
		S3Bucket:      cfg.S3Bucket,
		MaxUploadSize: cfg.MaxUploadSize,
		RPS:           cfg.MediaRPS,
	}, zlog)
	if err != nil {
		return err
	}

	srv := asynq.NewServer(queue.RedisOpt(opt), queue.ServerConfig(cfg.WorkerConcurrency, zlog))
	mux := asynq.NewServeMux()
	queue.NewProcessor(store, zlog).Register(mux)

	zlog.Info("worker started", zap.Int("concurrency", cfg.WorkerConcurrency))
	// Run blocks until SIGTERM or SIGINT.
	return srv.Run(mux)
}
