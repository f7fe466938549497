package managers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/chrissnell/wxreport/internal/storage"
	"github.com/chrissnell/wxreport/internal/storage/gormstore"
	"github.com/chrissnell/wxreport/internal/storage/pgxstore"
	"github.com/chrissnell/wxreport/internal/storage/sqlstore"
	"github.com/chrissnell/wxreport/pkg/config"
)

// StorageManager holds the configured record store and its health monitor
type StorageManager struct {
	Store  storage.RecordStore
	Health *storage.HealthManager

	backend storage.RecordStore
}

// NewStorageManager opens the configured backend and wraps it in circuit breakers
func NewStorageManager(ctx context.Context, c config.StorageData, logger *zap.SugaredLogger) (*StorageManager, error) {
	backend, err := openBackend(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("could not open %s record store: %w", c.Backend, err)
	}
	logger.Infof("record store backend %q ready", c.Backend)

	guarded := storage.NewBreakerStore(backend, storage.BreakerSettings{
		MaxFailures: c.Breaker.MaxFailures,
		Timeout:     c.Breaker.Timeout,
	}, logger)

	return &StorageManager{
		Store:   guarded,
		Health:  storage.NewHealthManager(guarded),
		backend: backend,
	}, nil
}

// Backend returns the unguarded store, e.g. for seeding
func (s *StorageManager) Backend() storage.RecordStore {
	return s.backend
}

// Close closes the backend if it holds connections
func (s *StorageManager) Close() error {
	if c, ok := s.backend.(storage.Closer); ok {
		return c.Close()
	}
	return nil
}

func openBackend(ctx context.Context, c config.StorageData) (storage.RecordStore, error) {
	switch c.Backend {
	case config.BackendGORM:
		return gormstore.New(c.ConnectionString)
	case config.BackendSQL:
		return sqlstore.Open(ctx, c.Driver, c.ConnectionString)
	case config.BackendPGX:
		return pgxstore.New(ctx, c.ConnectionString)
	case config.BackendMemory, "":
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", c.Backend)
	}
}
