// Package scheduler triggers periodic background work on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// PendingEnqueuer queues a sweep over words waiting for dictionary data.
type PendingEnqueuer interface {
	EnqueuePendingEnrichment(limit int) (string, error)
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule checks a five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// EnrichmentScheduler periodically enqueues enrichment of pending words.
type EnrichmentScheduler struct {
	enqueuer PendingEnqueuer
	schedule string
	limit    int
	logger   *zap.Logger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewEnrichmentScheduler creates a scheduler; limit caps each sweep (0 = all).
func NewEnrichmentScheduler(enqueuer PendingEnqueuer, schedule string, limit int, logger *zap.Logger) *EnrichmentScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrichmentScheduler{
		enqueuer: enqueuer,
		schedule: schedule,
		limit:    limit,
		logger:   logger.Named("scheduler"),
		cron:     cron.New(cron.WithParser(cronParser)),
	}
}

// Start begins the scheduler. It stops when ctx is cancelled or Stop is called.
func (s *EnrichmentScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunNow(); err != nil {
			s.logger.Error("scheduled enrichment failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule enrichment job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	s.logger.Info("enrichment scheduler started", zap.String("schedule", s.schedule))

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job and stops the scheduler.
func (s *EnrichmentScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	s.logger.Info("enrichment scheduler stopped")
}

// RunNow enqueues a sweep immediately.
func (s *EnrichmentScheduler) RunNow() error {
	taskID, err := s.enqueuer.EnqueuePendingEnrichment(s.limit)
	if err != nil {
		return err
	}
	s.logger.Info("enrichment sweep enqueued", zap.String("task_id", taskID))
	return nil
}

// IsRunning returns whether the scheduler is active
func (s *EnrichmentScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next sweep will be enqueued.
func (s *EnrichmentScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}
