// Package scheduler runs the periodic maintenance jobs on cron schedules.
package scheduler

import (
	"context"

	"github.com/mapmarket/reaction-service/internal/platform/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Job func(ctx context.Context) error

type Scheduler struct {
	cron   *cron.Cron
	logger *logger.Logger
}

func New(log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: log.Named("Scheduler"),
	}
}

// Add registers a job on a standard five-field cron spec. Job errors are
// logged, not propagated; the schedule keeps running.
func (s *Scheduler) Add(spec, name string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.logger.Info("Scheduled job starting", zap.String("job", name))
		if err := job(context.Background()); err != nil {
			s.logger.Error("Scheduled job failed", zap.String("job", name), zap.Error(err))
			return
		}
		s.logger.Info("Scheduled job finished", zap.String("job", name))
	})
	if err != nil {
		return err
	}
	s.logger.Info("Scheduled job registered", zap.String("job", name), zap.String("spec", spec))
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for any running job to complete.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
