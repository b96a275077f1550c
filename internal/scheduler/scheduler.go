// Package scheduler fires the two time-based refresh triggers: aviation
// weather on a short cadence, waypoint weather on a longer one, matching
// the real-world refresh rates of the underlying data.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/motorwaylabs/travel-weather-service/internal/observability"
	"github.com/motorwaylabs/travel-weather-service/internal/refresh"
)

// Scheduler owns the periodic refresh jobs.
type Scheduler struct {
	scheduler        *gocron.Scheduler
	refresher        *refresh.Refresher
	metarInterval    time.Duration
	waypointInterval time.Duration
	jobTimeout       time.Duration
	logger           *zap.Logger
}

// New creates a Scheduler. jobTimeout bounds each run's context; the pause
// budget of the waypoint job must fit inside it.
func New(refresher *refresh.Refresher, metarInterval, waypointInterval, jobTimeout time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		scheduler:        gocron.NewScheduler(time.UTC),
		refresher:        refresher,
		metarInterval:    metarInterval,
		waypointInterval: waypointInterval,
		jobTimeout:       jobTimeout,
		logger:           logger,
	}
}

// Start registers both jobs and starts the underlying scheduler asynchronously.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.metarInterval).Do(func() {
		observability.RefreshRunsTotal.WithLabelValues("aviation", "scheduled").Inc()
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()
		outcome := s.refresher.RefreshAviation(ctx)
		s.logger.Info("scheduled aviation refresh finished",
			zap.Int("succeeded", outcome.Succeeded),
			zap.Int("failed", outcome.Failed))
	})
	if err != nil {
		return err
	}

	_, err = s.scheduler.Every(s.waypointInterval).Do(func() {
		observability.RefreshRunsTotal.WithLabelValues("waypoint", "scheduled").Inc()
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()
		outcome := s.refresher.RefreshWaypoints(ctx)
		s.logger.Info("scheduled waypoint refresh finished",
			zap.Int("succeeded", outcome.Succeeded),
			zap.Int("failed", outcome.Failed))
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs. Running jobs finish.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
