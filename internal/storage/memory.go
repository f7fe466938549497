package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/chrissnell/wxreport/internal/types"
)

// MemoryStore is an in-process record store, used for demos and tests
type MemoryStore struct {
	mu      sync.RWMutex
	records map[types.ParameterKey]map[string][]types.RawMonthlyRecord
	fail    map[string]error
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[types.ParameterKey]map[string][]types.RawMonthlyRecord),
		fail:    make(map[string]error),
	}
}

// Add stores records for a parameter
func (m *MemoryStore) Add(parameter types.ParameterKey, recs ...types.RawMonthlyRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stations, ok := m.records[parameter]
	if !ok {
		stations = make(map[string][]types.RawMonthlyRecord)
		m.records[parameter] = stations
	}
	for _, r := range recs {
		stations[r.Station] = append(stations[r.Station], r)
	}
}

// FailStation makes every lookup for station return err
func (m *MemoryStore) FailStation(station string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[station] = err
}

// MonthlyRecords returns a copy of the stored records ordered by year and month
func (m *MemoryStore) MonthlyRecords(ctx context.Context, parameter types.Parameter, station string) ([]types.RawMonthlyRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.fail[station]; ok {
		return nil, fmt.Errorf("station %s: %w", station, err)
	}

	recs := append([]types.RawMonthlyRecord(nil), m.records[parameter.Key][station]...)
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Year != recs[j].Year {
			return recs[i].Year < recs[j].Year
		}
		return recs[i].Month < recs[j].Month
	})
	return recs, nil
}

// Ping always succeeds
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
