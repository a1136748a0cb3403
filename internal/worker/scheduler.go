package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StatsRefresher recomputes cached dashboard stats.
type StatsRefresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler runs periodic background jobs.
type Scheduler struct {
	cron    *cron.Cron
	stats   StatsRefresher
	spec    string
	timeout time.Duration
	logger  *zap.Logger
}

// NewScheduler builds a scheduler. spec uses the six-field cron format with seconds.
func NewScheduler(spec string, stats StatsRefresher, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		stats:   stats,
		spec:    spec,
		timeout: 30 * time.Second,
		logger:  logger,
	}
}

// Start registers the jobs and starts the cron loop. An empty spec disables the refresh.
func (s *Scheduler) Start() error {
	if s.stats == nil || s.spec == "" {
		return nil
	}
	if _, err := s.cron.AddFunc(s.spec, s.refreshStats); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("stats_refresh", s.spec))
	return nil
}

// Stop halts scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}

func (s *Scheduler) refreshStats() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.stats.Refresh(ctx); err != nil {
		s.logger.Error("stats refresh failed", zap.Error(err))
		return
	}
	s.logger.Debug("stats refreshed", zap.Duration("took", time.Since(start)))
}
