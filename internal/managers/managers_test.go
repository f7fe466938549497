package managers

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/wxreport/internal/controllers/restserver"
	"github.com/chrissnell/wxreport/internal/report"
	"github.com/chrissnell/wxreport/internal/storage"
	"github.com/chrissnell/wxreport/internal/storage/sqlstore"
	"github.com/chrissnell/wxreport/internal/types"
	"github.com/chrissnell/wxreport/pkg/config"
)

func TestNewStorageManager(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StorageData
		wantErr bool
		check   func(t *testing.T, backend storage.RecordStore)
	}{
		{
			name: "memory",
			cfg:  config.StorageData{Backend: config.BackendMemory},
			check: func(t *testing.T, backend storage.RecordStore) {
				if _, ok := backend.(*storage.MemoryStore); !ok {
					t.Errorf("expected a memory store, got %T", backend)
				}
			},
		},
		{
			name: "sqlite",
			cfg:  config.StorageData{Backend: config.BackendSQL, Driver: "sqlite", ConnectionString: ":memory:"},
			check: func(t *testing.T, backend storage.RecordStore) {
				if _, ok := backend.(*sqlstore.Store); !ok {
					t.Errorf("expected a sql store, got %T", backend)
				}
			},
		},
		{name: "unknown backend", cfg: config.StorageData{Backend: "influx"}, wantErr: true},
		{name: "unknown sql driver", cfg: config.StorageData{Backend: config.BackendSQL, Driver: "mysql", ConnectionString: "x"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm, err := NewStorageManager(context.Background(), tt.cfg, zap.NewNop().Sugar())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewStorageManager error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer sm.Close()

			if _, ok := sm.Store.(*storage.BreakerStore); !ok {
				t.Errorf("expected the store to be guarded by a breaker, got %T", sm.Store)
			}
			if h := sm.Health.Check(context.Background()); h.Status != "healthy" {
				t.Errorf("expected a healthy store, got %+v", h)
			}
			tt.check(t, sm.Backend())
		})
	}
}

type nopRunner struct{}

func (nopRunner) Run(ctx context.Context, req types.RequestSpec) (*report.Job, error) {
	return nil, report.ErrNoDataAvailable
}

func (nopRunner) Cleanup(workspace string) error { return nil }

func TestNewControllerManager(t *testing.T) {
	logger := zap.NewNop().Sugar()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := NewControllerManager(ctx, &sync.WaitGroup{}, ControllerDeps{}, logger); err == nil {
		t.Error("expected an error without a report runner")
	}

	cm, err := NewControllerManager(ctx, &sync.WaitGroup{}, ControllerDeps{
		Runner: nopRunner{},
		Health: storage.NewHealthManager(storage.NewMemoryStore()),
	}, logger)
	if err != nil {
		t.Fatalf("NewControllerManager: %v", err)
	}
	if len(cm.controllers) != 2 {
		t.Errorf("expected the health monitor and REST server, got %d controllers", len(cm.controllers))
	}

	tests := []struct {
		name     string
		interval time.Duration
		want     time.Duration
	}{
		{name: "default interval", interval: 0, want: restserver.DefaultHealthMaxAge},
		{name: "slow interval", interval: 5 * time.Minute, want: 15 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm, err := NewControllerManager(ctx, &sync.WaitGroup{}, ControllerDeps{
				Runner:         nopRunner{},
				Health:         storage.NewHealthManager(storage.NewMemoryStore()),
				HealthInterval: tt.interval,
			}, logger)
			if err != nil {
				t.Fatalf("NewControllerManager: %v", err)
			}
			rest, ok := cm.controllers[len(cm.controllers)-1].(*restserver.Controller)
			if !ok {
				t.Fatalf("expected the REST controller last, got %T", cm.controllers[len(cm.controllers)-1])
			}
			if rest.HealthMaxAge != tt.want {
				t.Errorf("expected health max age %s, got %s", tt.want, rest.HealthMaxAge)
			}
		})
	}
}
