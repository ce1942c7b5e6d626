package refresh

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/flipscope/flipscope/pkg/logger"
)

// Scheduler periodically reloads the dataset store in serve mode. The
// reload func owns the swap; the scheduler only drives the cadence.
type Scheduler struct {
	cron   *cron.Cron
	logger *logger.Logger
}

// New creates a scheduler.
func New(log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: log,
	}
}

// Schedule registers the reload job under a cron spec.
func (s *Scheduler) Schedule(spec string, reload func() error) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.logger.Info("Dataset refresh started")
		if err := reload(); err != nil {
			s.logger.WithError(err).Error("Dataset refresh failed, keeping previous datasets")
			return
		}
		s.logger.Info("Dataset refresh completed")
	})
	if err != nil {
		return fmt.Errorf("invalid refresh cron spec %q: %w", spec, err)
	}
	return nil
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
