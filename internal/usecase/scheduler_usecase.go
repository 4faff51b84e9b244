package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/avezhnov/scholarwatch/internal/domain"
	"go.uber.org/zap"
)

// AlertProcessor is the slice of AlertService the scheduler drives.
type AlertProcessor interface {
	DueAlerts(ctx context.Context) ([]domain.Alert, error)
	Process(ctx context.Context, alert *domain.Alert) *domain.Notification
}

// SchedulerOptions tune the polling loop; zero values fall back to the
// defaults below.
type SchedulerOptions struct {
	CheckInterval time.Duration
	BatchSize     int
	BatchPause    time.Duration
	StopTimeout   time.Duration
}

const (
	defaultCheckInterval = 5 * time.Minute
	defaultBatchSize     = 5
	defaultBatchPause    = time.Second
	defaultStopTimeout   = 10 * time.Second
)

// Scheduler periodically collects due alerts and processes them in
// fixed-size concurrent batches. One worker loop runs per instance.
type Scheduler struct {
	processor AlertProcessor
	opts      SchedulerOptions
	logger    *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(processor AlertProcessor, opts SchedulerOptions, logger *zap.Logger) *Scheduler {
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = defaultCheckInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.BatchPause <= 0 {
		opts.BatchPause = defaultBatchPause
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = defaultStopTimeout
	}
	return &Scheduler{processor: processor, opts: opts, logger: logger}
}

// Start launches the background loop. Starting an already-running scheduler
// is a logged no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		s.logger.Warn("alert scheduler is already running")
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go func() {
		defer close(done)
		s.run(loopCtx)
	}()

	s.logger.Info("alert scheduler started", zap.Duration("check_interval", s.opts.CheckInterval))
}

// Stop signals the loop to exit and waits for it with a bounded timeout.
// In-flight batch work is allowed to finish. Stopping a stopped scheduler
// is a logged no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	done, cancel := s.done, s.cancel
	s.done, s.cancel = nil, nil
	s.mu.Unlock()

	if done == nil {
		s.logger.Warn("alert scheduler is not running")
		return
	}

	cancel()
	select {
	case <-done:
		s.logger.Info("alert scheduler stopped")
	case <-time.After(s.opts.StopTimeout):
		s.logger.Warn("timeout waiting for alert scheduler to stop")
	}
}

// RunNow performs one synchronous due-alert cycle, independent of the timer.
func (s *Scheduler) RunNow(ctx context.Context) {
	s.runCycle(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.CheckInterval)
	defer ticker.Stop()

	s.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// runCycle is the loop body. Nothing inside it may take the worker down: a
// panic is recovered and logged, and per-alert failures are already absorbed
// by Process.
func (s *Scheduler) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("alert cycle panicked", zap.Any("panic", r))
		}
	}()

	due, err := s.processor.DueAlerts(ctx)
	if err != nil {
		s.logger.Error("failed to collect due alerts", zap.Error(err))
		return
	}
	if len(due) == 0 {
		s.logger.Debug("no alerts due")
		return
	}

	s.logger.Info("processing due alerts", zap.Int("count", len(due)))
	for start := 0; start < len(due); start += s.opts.BatchSize {
		end := min(start+s.opts.BatchSize, len(due))
		s.runBatch(ctx, due[start:end])

		if end < len(due) {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.opts.BatchPause):
			}
		}
	}
	s.logger.Info("completed due alert cycle", zap.Int("count", len(due)))
}

// runBatch fans out one batch and waits for every member, so peak load on
// the similarity engine stays bounded by the batch size.
func (s *Scheduler) runBatch(ctx context.Context, batch []domain.Alert) {
	var wg sync.WaitGroup
	for i := range batch {
		alert := batch[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("alert processing panicked", zap.String("alert_id", alert.ID), zap.Any("panic", r))
				}
			}()
			if notification := s.processor.Process(ctx, &alert); notification != nil {
				s.logger.Info("alert produced notification",
					zap.String("alert_id", alert.ID),
					zap.Int("matches", len(notification.Matches)),
				)
			}
		}()
	}
	wg.Wait()
}
