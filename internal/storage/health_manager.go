package storage

import (
	"context"
	"sync"
	"time"
)

// Pinger is implemented by stores that can verify their connection
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthData is the last observed health of the record store
type HealthData struct {
	LastCheck time.Time `json:"last_check"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Error     string    `json:"error,omitempty"`
}

// HealthManager caches the outcome of periodic store health checks
type HealthManager struct {
	mu     sync.RWMutex
	health HealthData
	store  RecordStore
}

// NewHealthManager creates a health manager for store
func NewHealthManager(store RecordStore) *HealthManager {
	return &HealthManager{
		store:  store,
		health: HealthData{Status: "unknown", Message: "no health check has run yet"},
	}
}

// Check pings the store and records the result
func (hm *HealthManager) Check(ctx context.Context) HealthData {
	health := HealthData{
		LastCheck: time.Now(),
		Status:    "healthy",
		Message:   "record store reachable",
	}

	target := hm.store
	if b, ok := target.(*BreakerStore); ok {
		target = b.Unwrap()
	}

	if p, ok := target.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Message = "record store ping failed"
			health.Error = err.Error()
		}
	} else {
		health.Message = "record store does not support health checks"
	}

	hm.mu.Lock()
	hm.health = health
	hm.mu.Unlock()

	return health
}

// Start runs Check immediately and then on every interval until ctx is done
func (hm *HealthManager) Start(ctx context.Context, interval time.Duration) {
	go func() {
		hm.Check(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hm.Check(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// GetHealth returns a copy of the last recorded health
func (hm *HealthManager) GetHealth() HealthData {
	hm.mu.RLock()
	defer hm.mu.RUnlock()
	return hm.health
}

// IsHealthy reports whether the last check succeeded and is newer than maxAge
func (hm *HealthManager) IsHealthy(maxAge time.Duration) bool {
	h := hm.GetHealth()
	if time.Since(h.LastCheck) > maxAge {
		return false
	}
	return h.Status == "healthy"
}
