package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"visage/auth"
	"visage/config"
	"visage/database"
	"visage/handlers"
	"visage/jobs"
	"visage/logger"
	"visage/media"
	"visage/middleware"
	"visage/queue"
	"visage/routes"
	"visage/services"
	"visage/telemetry"
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
		zlog.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	zlog.Info("starting visage api", zap.String("port", cfg.Port), zap.String("mode", cfg.GinMode))

	ctx := context.Background()

	if cfg.OTELEnabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.ServiceName, cfg.OTELEndpoint, zlog)
		if err != nil {
			zlog.Warn("tracing disabled", zap.Error(err))
			cfg.OTELEnabled = false
		} else {
			defer shutdown(context.Background())
		}
	}

	db, err := database.Connect(ctx, cfg.MongoURI, cfg.DBName, 3, zlog)
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Disconnect(dctx); err != nil {
			zlog.Warn("mongo disconnect failed", zap.Error(err))
		}
	}()

	ictx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = db.EnsureIndexes(ictx)
	cancel()
	if err != nil {
		return err
	}

	mediaStore, err := media.NewStore(media.Config{
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

	scheduler := jobs.NewScheduler(zlog)

	var (
		rdb     *redis.Client
		cleaner services.MediaCleaner = media.NewInlineCleaner(mediaStore, zlog)
		limiter gin.HandlerFunc
	)
	if cfg.RedisEnabled() {
		rdb, err = config.NewRedisClient(ctx, cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()

		opt, err := cfg.RedisOptions()
		if err != nil {
			return err
		}
		client := asynq.NewClient(queue.RedisOpt(opt))
		defer client.Close()

		cleaner = queue.NewCleaner(client, zlog)
		limiter = middleware.RedisRateLimit(rdb, cfg.RateLimitReqs, cfg.RateLimitWindow, zlog)
		zlog.Info("redis enabled: shared rate limiting and queued media cleanup")
	} else {
		ipLimiter := middleware.NewIPRateLimiter(cfg.RateLimitReqs, cfg.RateLimitWindow)
		limiter = middleware.IPRateLimit(ipLimiter)
		err := scheduler.ScheduleInterval(jobs.RateLimitSweepTag, cfg.RateLimitWindow, func(context.Context) error {
			ipLimiter.Sweep()
			return nil
		})
		if err != nil {
			return err
		}
	}

	stores := db.Stores()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresIn)

	notifications := services.NewNotificationService(stores.Notifications, zlog)
	users := services.NewUserService(stores.Users, tokens, mediaStore, notifications, cfg.BcryptCost, zlog)
	posts := services.NewPostService(stores.Posts, stores.Users, mediaStore, cleaner, notifications, cfg.MaxUploadSize, zlog)
	stories := services.NewStoryService(stores.Stories, stores.Users, mediaStore, cleaner, notifications, cfg.MaxUploadSize, zlog)
	comments := services.NewCommentService(stores.Comments, stores.Posts, stores.Stories, notifications, zlog)

	if cfg.ReconcileInterval > 0 {
		reconciler := services.NewReconciler(stores.Users, stores.Comments, stores.Posts, stores.Stories, zlog)
		if err := scheduler.ScheduleReconcile(reconciler, cfg.ReconcileInterval); err != nil {
			return err
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	h := handlers.New(handlers.Services{
		Users:         users,
		Posts:         posts,
		Stories:       stories,
		Comments:      comments,
		Notifications: notifications,
	}, cfg.MaxUploadSize, zlog)

	router := routes.SetupRouter(routes.Options{
		ServiceName: cfg.ServiceName,
		CORSOrigins: cfg.CORSOrigins,
		Tracing:     cfg.OTELEnabled,
		Handler:     h,
		Auth:        middleware.NewAuth(tokens, users, zlog),
		RateLimit:   limiter,
		Health:      db.Ping,
		Log:         zlog,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		zlog.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return err
	case sig := <-quit:
		zlog.Info("shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error("forced shutdown", zap.Error(err))
	}

	zlog.Info("server stopped gracefully")
	return nil
}
