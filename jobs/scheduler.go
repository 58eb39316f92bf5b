// Package jobs runs periodic maintenance inside the API process.
package jobs

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"visage/services"
)

const (
	ReconcileTag      = "reconcile"
	RateLimitSweepTag = "ratelimit-sweep"
)

// Reconciler is satisfied by *services.Reconciler.
type Reconciler interface {
	Run(ctx context.Context) (services.ReconcileReport, error)
}

type Scheduler struct {
	scheduler *gocron.Scheduler
	ctx       context.Context
	cancel    context.CancelFunc
	log       *zap.Logger
}

func NewScheduler(log *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()
	return &Scheduler{scheduler: s, ctx: ctx, cancel: cancel, log: log}
}

// ScheduleInterval runs job every interval, first after one interval has
// passed. Runs of the same job never overlap; each run gets a context
// bounded by the interval.
func (s *Scheduler) ScheduleInterval(tag string, interval time.Duration, job func(ctx context.Context) error) error {
	_, err := s.scheduler.Every(interval).
		Tag(tag).
		SingletonMode().
		WaitForSchedule().
		Do(func() { s.run(tag, interval, job) })
	return err
}

func (s *Scheduler) run(tag string, timeout time.Duration, job func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	start := time.Now()
	if err := job(ctx); err != nil {
		s.log.Error("scheduled job failed", zap.String("job", tag), zap.Error(err))
		return
	}
	s.log.Debug("scheduled job finished", zap.String("job", tag), zap.Duration("took", time.Since(start)))
}

// ScheduleReconcile registers r to run every interval.
func (s *Scheduler) ScheduleReconcile(r Reconciler, interval time.Duration) error {
	return s.ScheduleInterval(ReconcileTag, interval, func(ctx context.Context) error {
		_, err := r.Run(ctx)
		return err
	})
}

func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop cancels running jobs and stops scheduling new ones.
func (s *Scheduler) Stop() {
	s.cancel()
	s.scheduler.Stop()
}

func (s *Scheduler) Jobs() []*gocron.Job {
	return s.scheduler.Jobs()
}
