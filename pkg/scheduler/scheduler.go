package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"lending-service/internal/models"
)

// Sweeper runs the daily collections sweep
type Sweeper interface {
	RunDailySweep(ctx context.Context) (*models.SweepReport, error)
}

// Scheduler triggers the collections sweep on a cron schedule
type Scheduler struct {
	sweeper Sweeper
	logger  *logrus.Logger
	cron    *cron.Cron
	timeout time.Duration
}

// NewScheduler creates a new Scheduler
func NewScheduler(sweeper Sweeper, logger *logrus.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(logger)
	return &Scheduler{
		sweeper: sweeper,
		logger:  logger,
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		timeout: 30 * time.Minute,
	}
}

// Start registers the sweep under spec (e.g. "@daily") and starts the cron runner
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runSweep); err != nil {
		return fmt.Errorf("failed to schedule collections sweep: %w", err)
	}

	s.cron.Start()
	s.logger.Infof("Collections scheduler started with spec %q", spec)
	return nil
}

// Stop stops the cron runner and waits for a running sweep to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Collections scheduler stopped")
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	report, err := s.sweeper.RunDailySweep(ctx)
	if err != nil {
		s.logger.Warnf("Collections sweep failed: %v", err)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"loans_checked":   report.LoansChecked,
		"fees_assessed":   report.FeesAssessed.String(),
		"items_charged":   report.ItemsCharged,
		"defaulted":       report.Defaulted,
		"legal_ready":     report.LegalReady,
		"reminders":       report.Reminders,
		"overdue_notices": report.OverdueNotice,
		"errors":          report.Errors,
		"duration":        time.Since(start).String(),
	}).Info("Collections sweep completed")
}
