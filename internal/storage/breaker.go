package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/chrissnell/wxreport/internal/types"
)

// BreakerSettings tunes the circuit breakers guarding a store
type BreakerSettings struct {
	MaxFailures uint32
	Timeout     time.Duration
}

// BreakerStore guards every (parameter, station) pair of an underlying store
// with its own circuit breaker. A pair that keeps failing fails fast without
// touching the breakers of any other pair.
type BreakerStore struct {
	next     RecordStore
	settings BreakerSettings
	logger   *zap.SugaredLogger

	mu       sync.Mutex
	breakers map[breakerKey]*gobreaker.CircuitBreaker
}

type breakerKey struct {
	parameter types.ParameterKey
	station   string
}

// NewBreakerStore wraps next
func NewBreakerStore(next RecordStore, settings BreakerSettings, logger *zap.SugaredLogger) *BreakerStore {
	if settings.MaxFailures == 0 {
		settings.MaxFailures = 5
	}
	if settings.Timeout == 0 {
		settings.Timeout = 30 * time.Second
	}
	return &BreakerStore{
		next:     next,
		settings: settings,
		logger:   logger,
		breakers: make(map[breakerKey]*gobreaker.CircuitBreaker),
	}
}

func (b *BreakerStore) breaker(parameter types.ParameterKey, station string) *gobreaker.CircuitBreaker {
	key := breakerKey{parameter: parameter, station: station}

	b.mu.Lock()
	defer b.mu.Unlock()

	cb, ok := b.breakers[key]
	if !ok {
		maxFailures := b.settings.MaxFailures
		cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    string(parameter) + "/" + station,
			Timeout: b.settings.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			IsSuccessful: isBreakerSuccess,
			OnStateChange: func(name string, from, to gobreaker.State) {
				b.logger.Warnw("record store breaker changed state", "pair", name, "from", from.String(), "to", to.String())
			},
		})
		b.breakers[key] = cb
	}
	return cb
}

// isBreakerSuccess keeps caller cancellation from counting against the store
func isBreakerSuccess(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// MonthlyRecords forwards to the wrapped store through the pair's breaker
func (b *BreakerStore) MonthlyRecords(ctx context.Context, parameter types.Parameter, station string) ([]types.RawMonthlyRecord, error) {
	res, err := b.breaker(parameter.Key, station).Execute(func() (interface{}, error) {
		return b.next.MonthlyRecords(ctx, parameter, station)
	})
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", parameter.Key, station, err)
	}
	return res.([]types.RawMonthlyRecord), nil
}

// Unwrap returns the guarded store
func (b *BreakerStore) Unwrap() RecordStore {
	return b.next
}
