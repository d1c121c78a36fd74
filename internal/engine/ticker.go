package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MRamiBalles/LogosOmega/server/internal/platform/logger"
	"github.com/MRamiBalles/LogosOmega/server/internal/platform/metrics"
)

// Ticker drives the Scheduler on a fixed interval.
// It knows nothing about rules or money, only cadence.
type Ticker struct {
	scheduler *Scheduler
	logger    *logger.Logger
	interval  time.Duration
	tickCount int64
	stopChan  chan struct{}
	stopOnce  sync.Once
}

// NewTicker creates the periodic driver of the audit cycle.
func NewTicker(scheduler *Scheduler, log *logger.Logger, interval time.Duration) *Ticker {
	return &Ticker{
		scheduler: scheduler,
		logger:    log,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the audit loop. Call in a goroutine.
func (t *Ticker) Start(ctx context.Context) {
	t.logger.Info(fmt.Sprintf("Audit ticker started, one cycle every %s.", t.interval))

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Audit ticker stopped by context.")
			return
		case <-t.stopChan:
			t.logger.Info("Audit ticker stopped manually.")
			return
		case <-ticker.C:
			t.tick()
		}
	}
}

// Stop gracefully stops the ticker. Safe to call more than once.
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() { close(t.stopChan) })
}

// TickCount returns the number of completed cycles.
func (t *Ticker) TickCount() int64 {
	return atomic.LoadInt64(&t.tickCount)
}

// tick runs a single audit cycle and records its latency.
func (t *Ticker) tick() {
	started := time.Now()
	t.scheduler.RunOnce(started)
	atomic.AddInt64(&t.tickCount, 1)
	metrics.Get().RecordTick(time.Since(started))
}
