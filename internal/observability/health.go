package observability

import (
	"context"
	"sync"
	"time"
)

// CheckFunc probes one dependency. It must respect ctx cancellation.
type CheckFunc func(ctx context.Context) error

// HealthChecker aggregates readiness probes for process dependencies.
type HealthChecker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{checks: make(map[string]CheckFunc)}
}

// Register adds a named readiness probe.
func (h *HealthChecker) Register(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Ready runs every registered probe with a per-probe timeout and
// returns the per-dependency errors. An empty map means ready.
func (h *HealthChecker) Ready(ctx context.Context) map[string]error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	failures := make(map[string]error)
	for name, check := range h.checks {
		probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := check(probeCtx); err != nil {
			failures[name] = err
		}
		cancel()
	}
	return failures
}
