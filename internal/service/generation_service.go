package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tasknotes/internal/recurrence"
)

// GenerationService drives the materialization engine from the API and the
// scheduled job.
type GenerationService struct {
	engine   *recurrence.Engine
	loc      *time.Location
	notifier *Notifier
	log      *zap.SugaredLogger
}

func NewGenerationService(engine *recurrence.Engine, loc *time.Location, notifier *Notifier, log *zap.SugaredLogger) *GenerationService {
	return &GenerationService{engine: engine, loc: loc, notifier: notifier, log: log}
}

// GenerateForUser runs a materialization pass over one user's templates.
func (s *GenerationService) GenerateForUser(ctx context.Context, userID string) (*recurrence.Report, error) {
	return s.engine.RunForUser(ctx, userID, time.Now().In(s.loc))
}

// RunBatch runs a materialization pass over all users' templates.
func (s *GenerationService) RunBatch(ctx context.Context) (*recurrence.Report, error) {
	return s.engine.Run(ctx, time.Now().In(s.loc))
}

// RunScheduled is the cron entry point: a full batch run plus the optional
// Telegram report. Errors are logged, never propagated; the next run
// self-heals since watermarks only advance on success.
func (s *GenerationService) RunScheduled(ctx context.Context) {
	report, err := s.RunBatch(ctx)
	if err != nil {
		s.log.Errorw("scheduled generation failed", "error", err)
		return
	}
	s.log.Infow("scheduled generation complete",
		"generated", len(report.Generated), "failures", len(report.Failures))
	if s.notifier != nil {
		if err := s.notifier.SendGenerationReport(report); err != nil {
			s.log.Warnw("send generation report", "error", err)
		}
	}
}
