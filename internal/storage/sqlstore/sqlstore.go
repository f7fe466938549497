// Package sqlstore reads monthly records through database/sql. It speaks both
// SQLite (modernc.org/sqlite) and PostgreSQL (lib/pq).
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/chrissnell/wxreport/internal/database"
	"github.com/chrissnell/wxreport/internal/types"
)

// Store is a database/sql backed record store
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects using driver ("sqlite" or "postgres") and dsn
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	db, err := database.OpenSQL(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, driver: driver}, nil
}

// New wraps an already opened handle
func New(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

// placeholder returns the n-th (1-based) bind parameter of the store's dialect
func (s *Store) placeholder(n int) string {
	if s.driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// MonthlyRecords returns the station's rows from the parameter's monthly table
func (s *Store) MonthlyRecords(ctx context.Context, parameter types.Parameter, station string) ([]types.RawMonthlyRecord, error) {
	rows, err := s.db.QueryContext(ctx, database.MonthlySelectSQL(parameter.Table, s.placeholder(1)), station)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", parameter.Table, err)
	}
	defer rows.Close()

	var records []types.RawMonthlyRecord
	for rows.Next() {
		var (
			st          string
			year, month int
			days        = make([]sql.NullFloat64, types.DaysPerRecord)
		)
		dest := []any{&st, &year, &month}
		for i := range days {
			dest = append(dest, &days[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", parameter.Table, err)
		}
		records = append(records, database.RecordFromNulls(st, year, month, days))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// EnsureSchema creates the monthly table of every given parameter if missing
func (s *Store) EnsureSchema(ctx context.Context, parameters []types.Parameter) error {
	colType := "REAL"
	if s.driver == "postgres" {
		colType = "DOUBLE PRECISION"
	}

	dayCols := make([]string, 0, types.DaysPerRecord)
	for _, c := range database.DayColumns() {
		dayCols = append(dayCols, c+" "+colType)
	}

	for _, p := range parameters {
		stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			station TEXT NOT NULL,
			year INTEGER NOT NULL,
			month INTEGER NOT NULL,
			%s,
			PRIMARY KEY (station, year, month)
		)`, p.Table, strings.Join(dayCols, ",\n\t\t\t"))
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table %s: %w", p.Table, err)
		}
	}
	return nil
}

// UpsertRecord inserts or replaces one monthly row
func (s *Store) UpsertRecord(ctx context.Context, parameter types.Parameter, rec types.RawMonthlyRecord) error {
	cols := append([]string{"station", "year", "month"}, database.DayColumns()...)

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = s.placeholder(i + 1)
	}

	updates := make([]string, 0, types.DaysPerRecord)
	for _, c := range database.DayColumns() {
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", c, c))
	}

	stmt := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (station, year, month) DO UPDATE SET %s",
		parameter.Table, strings.Join(cols, ", "), strings.Join(placeholders, ", "), strings.Join(updates, ", "),
	)

	args := []any{rec.Station, rec.Year, rec.Month}
	for _, v := range rec.Days {
		if v == nil {
			args = append(args, nil)
		} else {
			args = append(args, *v)
		}
	}

	if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to upsert %s row for %s %04d-%02d: %w", parameter.Table, rec.Station, rec.Year, rec.Month, err)
	}
	return nil
}

// Ping verifies the underlying connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle
func (s *Store) Close() error {
	return s.db.Close()
}
