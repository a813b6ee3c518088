package core

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/coregx/sqldialect/internal/logger"
)

const healthPingTimeout = 5 * time.Second

// healthChecker pings the pool at a fixed interval so a dead server shows up
// before the next statement.
type healthChecker struct {
	db       *sql.DB
	logger   logger.Logger
	interval time.Duration
	stop     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup

	mu       sync.RWMutex
	lastErr  error
	lastPing time.Time
}

func newHealthChecker(db *sql.DB, log logger.Logger, interval time.Duration) *healthChecker {
	return &healthChecker{
		db:       db,
		logger:   log,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (h *healthChecker) start() {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				h.ping()
			case <-h.stop:
				return
			}
		}
	}()
}

func (h *healthChecker) ping() {
	ctx, cancel := context.WithTimeout(context.Background(), healthPingTimeout)
	defer cancel()

	err := h.db.PingContext(ctx)

	h.mu.Lock()
	h.lastErr = err
	h.lastPing = time.Now()
	h.mu.Unlock()

	if err != nil {
		h.logger.Warn("health check failed", "error", err, "interval", h.interval)
		return
	}
	h.logger.Debug("health check passed", "interval", h.interval)
}

// shutdown is safe to call more than once.
func (h *healthChecker) shutdown() {
	h.once.Do(func() { close(h.stop) })
	h.wg.Wait()
}

func (h *healthChecker) isHealthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastErr == nil
}

func (h *healthChecker) lastCheck() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastPing
}
