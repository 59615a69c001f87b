package health

import (
	"context"
	"sync"
	"time"

	"github.com/KOMKZ/yogan-sessionguard/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Aggregator runs every registered checker concurrently under one timeout.
type Aggregator struct {
	timeout time.Duration
	logger  *logger.CtxZapLogger

	mu       sync.RWMutex
	checkers []Checker
}

func NewAggregator(timeout time.Duration, log *logger.CtxZapLogger) *Aggregator {
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	if log == nil {
		log = logger.GetLogger("health")
	}
	return &Aggregator{timeout: timeout, logger: log}
}

func (a *Aggregator) Register(checkers ...Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checkers = append(a.checkers, checkers...)
}

// Check never fails itself; a failing checker only marks the response
// unhealthy.
func (a *Aggregator) Check(ctx context.Context) *Response {
	start := time.Now()

	a.mu.RLock()
	checkers := make([]Checker, len(a.checkers))
	copy(checkers, a.checkers)
	a.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	results := make([]CheckResult, len(checkers))
	var g errgroup.Group
	for i, checker := range checkers {
		g.Go(func() error {
			results[i] = a.checkOne(ctx, checker)
			return nil
		})
	}
	_ = g.Wait()

	resp := &Response{
		Status:    StatusHealthy,
		Timestamp: start,
		Checks:    make(map[string]CheckResult, len(results)),
	}
	for _, r := range results {
		resp.Checks[r.Name] = r
		if r.Status != StatusHealthy {
			resp.Status = StatusUnhealthy
		}
	}
	resp.Duration = time.Since(start)
	return resp
}

func (a *Aggregator) checkOne(ctx context.Context, checker Checker) CheckResult {
	start := time.Now()
	result := CheckResult{Name: checker.Name(), Status: StatusHealthy}

	if err := checker.Check(ctx); err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
		a.logger.WarnCtx(ctx, "health check failed", zap.String("check", result.Name), zap.Error(err))
	}
	result.Duration = time.Since(start)
	return result
}
