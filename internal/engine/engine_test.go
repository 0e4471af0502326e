// File: internal/engine/engine_test.go
package engine_test

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/xkilldash9x/formflood/internal/config"
	"github.com/xkilldash9x/formflood/internal/engine"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newEngineConfig(workers int) *config.Config {
	cfg := config.NewDefault()
	cfg.Engine.Workers = workers
	return cfg
}

func TestEngine_AllSucceed(t *testing.T) {
	cfg := newEngineConfig(4)
	e := engine.New(cfg, zap.NewNop(), func(ctx context.Context) engine.Result {
		return engine.Result{Succeeded: true}
	})

	summary, err := e.Run(context.Background(), "https://example.com/form", 10)
	require.NoError(t, err)

	assert.Equal(t, int64(10), summary.Attempted)
	assert.Equal(t, int64(10), summary.Succeeded)
	assert.Equal(t, int64(0), summary.Failed)
	assert.Equal(t, summary.Attempted, summary.Succeeded+summary.Failed)
	assert.Greater(t, summary.Rate, 0.0)
	assert.False(t, summary.Interrupted)
}

func TestEngine_AllFail(t *testing.T) {
	cfg := newEngineConfig(4)
	e := engine.New(cfg, zap.NewNop(), func(ctx context.Context) engine.Result {
		return engine.Result{Err: errors.New("submit control not found")}
	})

	summary, err := e.Run(context.Background(), "https://example.com/form", 10)
	require.NoError(t, err, "per-attempt failures never fail the batch")

	assert.Equal(t, int64(10), summary.Attempted)
	assert.Equal(t, int64(0), summary.Succeeded)
	assert.Equal(t, int64(10), summary.Failed)
}

func TestEngine_MixedResults(t *testing.T) {
	cfg := newEngineConfig(3)
	var n atomic.Int64
	e := engine.New(cfg, zap.NewNop(), func(ctx context.Context) engine.Result {
		if n.Add(1)%2 == 0 {
			return engine.Result{Err: errors.New("boom")}
		}
		return engine.Result{Succeeded: true}
	})

	summary, err := e.Run(context.Background(), "https://example.com/form", 20)
	require.NoError(t, err)

	assert.Equal(t, int64(20), summary.Attempted)
	assert.Equal(t, int64(10), summary.Succeeded)
	assert.Equal(t, int64(10), summary.Failed)
}

func TestEngine_ConcurrencyBound(t *testing.T) {
	const workers = 3
	cfg := newEngineConfig(workers)

	var current, peak atomic.Int64
	var mu sync.Mutex
	e := engine.New(cfg, zap.NewNop(), func(ctx context.Context) engine.Result {
		cur := current.Add(1)
		mu.Lock()
		if cur > peak.Load() {
			peak.Store(cur)
		}
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		current.Add(-1)
		return engine.Result{Succeeded: true}
	})

	summary, err := e.Run(context.Background(), "https://example.com/form", 12)
	require.NoError(t, err)

	assert.Equal(t, int64(12), summary.Attempted)
	assert.LessOrEqual(t, peak.Load(), int64(workers),
		"no more than W sessions may run concurrently")
}

func TestEngine_PanicCountsAsFailure(t *testing.T) {
	cfg := newEngineConfig(2)
	var n atomic.Int64
	e := engine.New(cfg, zap.NewNop(), func(ctx context.Context) engine.Result {
		if n.Add(1) == 3 {
			panic("browser exploded")
		}
		return engine.Result{Succeeded: true}
	})

	summary, err := e.Run(context.Background(), "https://example.com/form", 6)
	require.NoError(t, err, "a panicking attempt must not abort the batch")

	assert.Equal(t, int64(6), summary.Attempted)
	assert.Equal(t, int64(5), summary.Succeeded)
	assert.Equal(t, int64(1), summary.Failed)
}

func TestEngine_CancellationStopsDispatch(t *testing.T) {
	cfg := newEngineConfig(1)
	ctx, cancel := context.WithCancel(context.Background())

	var started atomic.Int64
	e := engine.New(cfg, zap.NewNop(), func(ctx context.Context) engine.Result {
		if started.Add(1) == 2 {
			cancel()
		}
		time.Sleep(5 * time.Millisecond)
		return engine.Result{Succeeded: true}
	})

	summary, err := e.Run(ctx, "https://example.com/form", 100)
	cancel()

	require.Error(t, err)
	assert.True(t, summary.Interrupted)
	assert.Less(t, summary.Attempted, int64(100))
	assert.Equal(t, summary.Attempted, summary.Succeeded+summary.Failed,
		"every dispatched attempt must be accounted for")
}

func TestEngine_RejectsNonPositiveCount(t *testing.T) {
	e := engine.New(newEngineConfig(1), zap.NewNop(), func(ctx context.Context) engine.Result {
		return engine.Result{Succeeded: true}
	})

	for _, count := range []int{0, -5} {
		_, err := e.Run(context.Background(), "https://example.com/form", count)
		assert.Error(t, err)
	}
}

func TestEngine_RateLimiterThrottlesDispatch(t *testing.T) {
	cfg := newEngineConfig(4)
	cfg.Engine.RatePerSecond = 50 // 20ms between attempt starts

	e := engine.New(cfg, zap.NewNop(), func(ctx context.Context) engine.Result {
		return engine.Result{Succeeded: true}
	})

	start := time.Now()
	summary, err := e.Run(context.Background(), "https://example.com/form", 5)
	require.NoError(t, err)

	assert.Equal(t, int64(5), summary.Attempted)
	// 5 starts at 50/sec take at least ~80ms after the initial token.
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestResolveWorkers(t *testing.T) {
	def := runtime.NumCPU() / 2
	if def < 1 {
		def = 1
	}

	tests := []struct {
		name     string
		override int
		attempts int
		want     int
	}{
		{name: "default capped at attempts", override: 0, attempts: 1, want: 1},
		{name: "explicit override", override: 7, attempts: 100, want: 7},
		{name: "override capped at attempts", override: 7, attempts: 3, want: 3},
		{name: "zero attempts", override: 4, attempts: 0, want: 0},
		{name: "default for large batch", override: 0, attempts: 10000, want: def},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.ResolveWorkers(tt.override, tt.attempts))
		})
	}
}
