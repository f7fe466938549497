// Package storage defines the read-only record store consulted by the report
// pipeline, plus store decorators shared by every backend.
package storage

import (
	"context"

	"github.com/chrissnell/wxreport/internal/types"
)

// RecordStore retrieves the monthly records of one station for one parameter.
// Records are returned ordered by year and month.
type RecordStore interface {
	MonthlyRecords(ctx context.Context, parameter types.Parameter, station string) ([]types.RawMonthlyRecord, error)
}

// Closer is implemented by stores that hold connections
type Closer interface {
	Close() error
}
