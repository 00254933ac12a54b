package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweeper releases holds whose deadline is at or before now.
// reservation.Engine satisfies it.
type Sweeper interface {
	ExpireHolds(ctx context.Context, now time.Time) (int, error)
}

type ExpiryWorkerConfig struct {
	// ScanInterval is the time between two sweeps
	ScanInterval time.Duration
}

func DefaultExpiryWorkerConfig() *ExpiryWorkerConfig {
	return &ExpiryWorkerConfig{
		ScanInterval: 5 * time.Second,
	}
}

// ExpiryWorker runs the hold sweep on a ticker.
type ExpiryWorker struct {
	sweeper Sweeper
	config  *ExpiryWorkerConfig
	log     *zap.Logger
	now     func() time.Time
	stopCh  chan struct{}
	wg      sync.WaitGroup

	mu               sync.Mutex
	running          bool
	totalExpired     int64
	totalScans       int64
	failedScans      int64
	lastScanTime     time.Time
	lastExpiredCount int
	lastError        string
}

func NewExpiryWorker(sweeper Sweeper, config *ExpiryWorkerConfig, log *zap.Logger) *ExpiryWorker {
	if config == nil || config.ScanInterval <= 0 {
		config = DefaultExpiryWorkerConfig()
	}

	return &ExpiryWorker{
		sweeper: sweeper,
		config:  config,
		log:     log.With(zap.String("worker", "expiry")),
		now:     time.Now,
	}
}

func (w *ExpiryWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("expiry worker already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	w.log.Info("Starting expiry worker", zap.Duration("interval", w.config.ScanInterval))

	w.wg.Add(1)
	go w.loop(ctx, stopCh)

	return nil
}

// Stop waits for an in-flight sweep to finish. Safe to call more than once.
func (w *ExpiryWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stopCh := w.stopCh
	w.mu.Unlock()

	w.log.Info("Stopping expiry worker")
	close(stopCh)
	w.wg.Wait()
	w.log.Info("Expiry worker stopped")
}

func (w *ExpiryWorker) loop(ctx context.Context, stopCh <-chan struct{}) {
	defer w.wg.Done()
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	ticker := time.NewTicker(w.config.ScanInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep and records its outcome.
func (w *ExpiryWorker) RunOnce(ctx context.Context) int {
	now := w.now()
	expired, err := w.sweeper.ExpireHolds(ctx, now)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.totalScans++
	w.lastScanTime = now
	w.lastExpiredCount = expired
	w.totalExpired += int64(expired)
	w.lastError = ""

	if err != nil {
		w.failedScans++
		w.lastError = err.Error()
		w.log.Error("Expiry sweep failed", zap.Error(err), zap.Int("expired", expired))
		return expired
	}
	if expired > 0 {
		w.log.Info("Expiry sweep released holds", zap.Int("expired", expired))
	}
	return expired
}

func (w *ExpiryWorker) GetStats() *ExpiryWorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &ExpiryWorkerStats{
		IsRunning:        w.running,
		Interval:         w.config.ScanInterval.String(),
		TotalScans:       w.totalScans,
		FailedScans:      w.failedScans,
		TotalExpired:     w.totalExpired,
		LastScanTime:     w.lastScanTime,
		LastExpiredCount: w.lastExpiredCount,
		LastError:        w.lastError,
	}
}

type ExpiryWorkerStats struct {
	IsRunning        bool      `json:"is_running"`
	Interval         string    `json:"interval"`
	TotalScans       int64     `json:"total_scans"`
	FailedScans      int64     `json:"failed_scans"`
	TotalExpired     int64     `json:"total_expired"`
	LastScanTime     time.Time `json:"last_scan_time"`
	LastExpiredCount int       `json:"last_expired_count"`
	LastError        string    `json:"last_error,omitempty"`
}
