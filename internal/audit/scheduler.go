package audit

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/portfolio-builder/portfolio-backend/internal/logging"
)

// Scheduler runs the username audit on a cron schedule (with seconds).
type Scheduler struct {
	cron    *cron.Cron
	lister  Lister
	logger  *zap.Logger
	timeout time.Duration
}

func NewScheduler(lister Lister, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		lister:  lister,
		logger:  logger,
		timeout: 2 * time.Minute,
	}
}

// Start registers the audit job and starts the cron loop.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return err
	}

	s.logger.Info("audit scheduler started", zap.String("schedule", spec))
	s.cron.Start()
	return nil
}

// Stop waits for a running audit to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	ctx = logging.WithContext(ctx, s.logger.With(zap.String("job", "username_audit")))

	if _, err := Usernames(ctx, s.lister); err != nil {
		s.logger.Error("username audit failed", zap.Error(err))
	}
}
