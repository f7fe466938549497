// Package pgxstore reads monthly records from PostgreSQL with a pgx connection pool.
package pgxstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chrissnell/wxreport/internal/database"
	"github.com/chrissnell/wxreport/internal/types"
)

// Store is a pgxpool backed record store
type Store struct {
	pool *pgxpool.Pool
}

// New connects a pool to connStr
func New(ctx context.Context, connStr string) (*Store, error) {
	pool, err := database.OpenPool(ctx, connStr)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// MonthlyRecords returns the station's rows from the parameter's monthly table
func (s *Store) MonthlyRecords(ctx context.Context, parameter types.Parameter, station string) ([]types.RawMonthlyRecord, error) {
	rows, err := s.pool.Query(ctx, database.MonthlySelectSQL(parameter.Table, "$1"), station)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query on %s: %w", parameter.Table, err)
	}
	defer rows.Close()

	var records []types.RawMonthlyRecord
	for rows.Next() {
		rec := types.RawMonthlyRecord{}
		dest := []any{&rec.Station, &rec.Year, &rec.Month}
		for i := range rec.Days {
			dest = append(dest, &rec.Days[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// Ping verifies the pool can reach the server
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the pool
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
