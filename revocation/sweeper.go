package revocation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/KOMKZ/yogan-sessionguard/logger"
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Sweeper periodically removes expired entries. The job runs in singleton
// mode, so a slow sweep is never overlapped by the next one. Correctness
// does not depend on it: stores ignore expired entries on lookup.
type Sweeper struct {
	registry  *Registry
	interval  time.Duration
	logger    *logger.CtxZapLogger
	scheduler gocron.Scheduler

	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool
}

func NewSweeper(registry *Registry, interval time.Duration, log *logger.CtxZapLogger) *Sweeper {
	if log == nil {
		log = logger.GetLogger("revocation")
	}
	return &Sweeper{
		registry: registry,
		interval: interval,
		logger:   log,
	}
}

// Start schedules the sweep. It returns immediately.
func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.interval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", s.interval)
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	_, err = scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() { s.runOnce(ctx) }),
		gocron.WithName("revocation-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		cancel()
		_ = scheduler.Shutdown()
		return fmt.Errorf("schedule sweep: %w", err)
	}

	scheduler.Start()
	s.scheduler = scheduler
	s.cancel = cancel
	s.started = true
	s.logger.Info("revocation sweeper started", zap.Duration("interval", s.interval))
	return nil
}

func (s *Sweeper) runOnce(ctx context.Context) {
	if _, err := s.registry.Sweep(ctx); err != nil {
		s.logger.WarnCtx(ctx, "revocation sweep failed", zap.Error(err))
	}
}

// Stop cancels a running sweep and waits for the scheduler to exit.
func (s *Sweeper) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.cancel()
	err := s.scheduler.Shutdown()
	s.started = false
	s.logger.Info("revocation sweeper stopped")
	return err
}
