// Package gormstore reads monthly records from PostgreSQL through GORM.
package gormstore

import (
	"context"
	"fmt"

	"github.com/chrissnell/wxreport/internal/database"
	"github.com/chrissnell/wxreport/internal/types"
	"gorm.io/gorm"
)

// Store holds the GORM handle for a PostgreSQL record store
type Store struct {
	DB *gorm.DB
}

// New connects to PostgreSQL and returns a record store
func New(connectionString string) (*Store, error) {
	db, err := database.CreateConnection(connectionString)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// MonthlyRecords returns the station's rows from the parameter's monthly table
func (s *Store) MonthlyRecords(ctx context.Context, parameter types.Parameter, station string) ([]types.RawMonthlyRecord, error) {
	var rows []database.MonthlyRow

	err := s.DB.WithContext(ctx).
		Table(parameter.Table).
		Where("station = ?", station).
		Order("year, month").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error querying %s for station %s: %w", parameter.Table, station, err)
	}

	records := make([]types.RawMonthlyRecord, len(rows))
	for i, r := range rows {
		records[i] = r.Record()
	}
	return records, nil
}

// Ping verifies the underlying connection
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database connection: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
