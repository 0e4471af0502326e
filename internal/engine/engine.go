// File: internal/engine/engine.go
package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/formflood/internal/config"
)

// Result is one attempt's outcome as seen by the pool.
type Result struct {
	Succeeded bool
	Err       error
}

// AttemptFunc runs one complete, isolated submission attempt. It must never
// panic in normal operation; the pool treats a panic as a failed attempt.
type AttemptFunc func(ctx context.Context) Result

// Summary is the finalized outcome of a batch.
type Summary struct {
	TargetURL string        `json:"target_url"`
	Requested int           `json:"requested"`
	Attempted int64         `json:"attempted"`
	Succeeded int64         `json:"succeeded"`
	Failed    int64         `json:"failed"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	// Rate is successful submissions per second over the whole batch.
	Rate float64 `json:"rate_per_second"`
	// Interrupted is true when dispatch stopped early on cancellation.
	Interrupted bool `json:"interrupted"`
}

// Engine dispatches N independent submission attempts into a pool bounded at
// W concurrent sessions and aggregates their results.
type Engine struct {
	cfg     *config.Config
	logger  *zap.Logger
	attempt AttemptFunc
	limiter *rate.Limiter
}

// New creates an Engine around the given attempt function.
func New(cfg *config.Config, logger *zap.Logger, attempt AttemptFunc) *Engine {
	var limiter *rate.Limiter
	if cfg.Engine.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Engine.RatePerSecond), 1)
	}
	return &Engine{
		cfg:     cfg,
		logger:  logger.Named("engine"),
		attempt: attempt,
		limiter: limiter,
	}
}

// ResolveWorkers computes the pool size: the override when positive,
// otherwise half the logical cores (at least one), always capped at the
// attempt count. Half the cores is deliberate; every worker drives a full
// browser process.
func ResolveWorkers(override, attempts int) int {
	if attempts <= 0 {
		return 0
	}
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	if override > 0 {
		workers = override
	}
	if workers > attempts {
		workers = attempts
	}
	return workers
}

// batch aggregates shared counters across attempt goroutines. Counters are
// only ever touched through atomic operations.
type batch struct {
	attempted atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	start     time.Time
}

// Run executes count attempts against targetURL and blocks until every
// dispatched attempt has completed. Cancellation stops dispatch of further
// attempts; in-flight attempts finish or are abandoned by their contexts.
// The returned Summary is valid even when err is non-nil.
func (e *Engine) Run(ctx context.Context, targetURL string, count int) (Summary, error) {
	if count <= 0 {
		return Summary{TargetURL: targetURL}, fmt.Errorf("submission count must be positive, got %d", count)
	}

	workers := ResolveWorkers(e.cfg.Engine.Workers, count)
	e.logger.Info("Starting submission batch",
		zap.String("url", targetURL),
		zap.Int("count", count),
		zap.Int("workers", workers),
		zap.Int("cpus", runtime.NumCPU()),
	)

	b := &batch{start: time.Now()}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup

	interrupted := false
	for i := 0; i < count; i++ {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				interrupted = true
				break
			}
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			interrupted = true
			break
		}

		b.attempted.Add(1)
		wg.Add(1)
		go func(attempt int) {
			defer wg.Done()
			defer sem.Release(1)
			e.record(b, count, e.runOne(ctx, attempt))
		}(i + 1)
	}

	if interrupted {
		e.logger.Info("Dispatch interrupted, waiting for in-flight attempts",
			zap.Int64("dispatched", b.attempted.Load()))
	}
	wg.Wait()

	summary := e.finalize(b, targetURL, count, interrupted)
	e.logSummary(summary)

	if interrupted {
		return summary, context.Cause(ctx)
	}
	return summary, nil
}

// runOne executes a single attempt, converting a panic into a failure so
// one broken attempt never aborts its siblings.
func (e *Engine) runOne(ctx context.Context, attempt int) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Attempt panicked",
				zap.Int("attempt", attempt),
				zap.Any("panic", r))
			res = Result{Err: fmt.Errorf("attempt %d panicked: %v", attempt, r)}
		}
	}()
	return e.attempt(ctx)
}

// record folds one result into the batch counters and emits periodic
// progress in completion order.
func (e *Engine) record(b *batch, count int, res Result) {
	if res.Succeeded {
		b.succeeded.Add(1)
	} else {
		b.failed.Add(1)
	}

	succeeded := b.succeeded.Load()
	failed := b.failed.Load()
	completed := succeeded + failed

	interval := e.cfg.Engine.ProgressInterval
	if interval <= 0 {
		interval = 10
	}
	if completed%int64(interval) == 0 || completed == int64(count) {
		elapsed := time.Since(b.start).Seconds()
		var throughput float64
		if elapsed > 0 {
			throughput = float64(completed) / elapsed
		}
		e.logger.Info("Progress",
			zap.Int64("completed", completed),
			zap.Int("requested", count),
			zap.Int64("succeeded", succeeded),
			zap.Int64("failed", failed),
			zap.Float64("rate_per_sec", throughput),
		)
	}
}

func (e *Engine) finalize(b *batch, targetURL string, count int, interrupted bool) Summary {
	elapsed := time.Since(b.start)
	succeeded := b.succeeded.Load()

	var avgRate float64
	if secs := elapsed.Seconds(); secs > 0 {
		avgRate = float64(succeeded) / secs
	}

	return Summary{
		TargetURL:   targetURL,
		Requested:   count,
		Attempted:   b.attempted.Load(),
		Succeeded:   succeeded,
		Failed:      b.failed.Load(),
		Elapsed:     elapsed,
		Rate:        avgRate,
		Interrupted: interrupted,
	}
}

func (e *Engine) logSummary(s Summary) {
	e.logger.Info("Submission batch finished",
		zap.String("url", s.TargetURL),
		zap.Int64("attempted", s.Attempted),
		zap.Int64("succeeded", s.Succeeded),
		zap.Int64("failed", s.Failed),
		zap.Duration("elapsed", s.Elapsed),
		zap.Float64("avg_rate_per_sec", s.Rate),
	)
}
