package alerts

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	apperrors "github.com/ducminhle1904/stock-insight/internal/errors"
)

// DefaultSchedule evaluates alerts every 15 minutes (six-field cron spec,
// seconds first).
const DefaultSchedule = "0 */15 * * * *"

// passTimeout bounds one evaluation pass.
const passTimeout = 2 * time.Minute

// Scheduler runs the evaluator on a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	evaluator *Evaluator
	schedule  string
	logger    *slog.Logger
}

func NewScheduler(evaluator *Evaluator, schedule string, logger *slog.Logger) *Scheduler {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		evaluator: evaluator,
		schedule:  schedule,
		logger:    logger,
	}
}

// Start registers the evaluation job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runPass); err != nil {
		return apperrors.NewConfigurationError("alerts", "start scheduler",
			"invalid alert schedule "+s.schedule+": "+err.Error())
	}
	s.cron.Start()
	s.logger.Info("alert scheduler started", "schedule", s.schedule)
	return nil
}

// Stop halts the cron loop and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("alert scheduler stopped")
}

// RunNow triggers one evaluation pass outside the schedule.
func (s *Scheduler) RunNow(ctx context.Context) ([]Trigger, error) {
	return s.evaluator.EvaluateAll(ctx)
}

func (s *Scheduler) runPass() {
	ctx, cancel := context.WithTimeout(context.Background(), passTimeout)
	defer cancel()

	triggers, err := s.evaluator.EvaluateAll(ctx)
	if err != nil {
		s.logger.Error("alert evaluation pass failed", "error", err)
		return
	}
	if len(triggers) > 0 {
		s.logger.Info("alert evaluation pass finished", "triggered", len(triggers))
	}
}
