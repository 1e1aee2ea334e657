package rounds

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/joefazee/toto/internal/logger"
)

// Scheduler drives the round lifecycle on a cron cadence: closing rounds
// past cutoff, requesting resolutions, falling back on timed-out requests,
// and sweeping settled rounds once the claim window lapses.
type Scheduler struct {
	cron    *cron.Cron
	service Service
	logger  logger.Logger
	config  *Config
}

func NewScheduler(service Service, log logger.Logger, config *Config) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		service: service,
		logger:  log,
		config:  config,
	}
}

// Start registers the lifecycle jobs and begins the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.config.SchedulerSpec, s.tick)
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("round scheduler started", map[string]interface{}{
		"spec": s.config.SchedulerSpec,
	})
	return nil
}

// Stop halts the cron loop, waiting for a running tick to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) tick() {
	ctx := context.Background()

	closed := s.service.CloseDueRounds(ctx)
	requested := s.service.RequestDueResolutions(ctx)
	fallen := s.service.ResolveTimedOutRounds(ctx)
	swept := s.service.SweepDueRounds(ctx)

	if closed+requested+fallen+swept > 0 {
		s.logger.Info("round scheduler tick", map[string]interface{}{
			"closed":    closed,
			"requested": requested,
			"fallback":  fallen,
			"swept":     swept,
		})
	}
}
