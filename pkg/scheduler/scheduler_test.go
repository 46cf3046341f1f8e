package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"lending-service/internal/models"
)

type fakeSweeper struct {
	calls int
	err   error
}

func (f *fakeSweeper) RunDailySweep(ctx context.Context) (*models.SweepReport, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &models.SweepReport{LoansChecked: 3}, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestRunSweep(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := NewScheduler(sweeper, quietLogger())

	s.runSweep()
	if sweeper.calls != 1 {
		t.Errorf("Expected 1 sweep, got %d", sweeper.calls)
	}

	sweeper.err = errors.New("database unavailable")
	s.runSweep()
	if sweeper.calls != 2 {
		t.Errorf("Expected failed sweep to be attempted, got %d calls", sweeper.calls)
	}
}

func TestStart_InvalidSpec(t *testing.T) {
	s := NewScheduler(&fakeSweeper{}, quietLogger())

	if err := s.Start("every now and then"); err == nil {
		t.Error("Expected error for an invalid cron spec")
	}
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(&fakeSweeper{}, quietLogger())

	if err := s.Start("@daily"); err != nil {
		t.Fatalf("Failed to start scheduler: %v", err)
	}
	s.Stop()
}
