package managers

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/wxreport/internal/controllers/restserver"
	"github.com/chrissnell/wxreport/internal/storage"
	"github.com/chrissnell/wxreport/pkg/config"
)

// Controller is an interface that provides standard methods for long-running services
type Controller interface {
	StartController() error
}

// ControllerDeps is what the controllers need from the report stack
type ControllerDeps struct {
	Server         config.ServerData
	Runner         restserver.ReportRunner
	Health         *storage.HealthManager
	HealthInterval time.Duration
	Metrics        http.Handler
}

// ControllerManager starts the REST server and the record store health monitor
type ControllerManager struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	logger      *zap.SugaredLogger
	controllers []Controller
}

// NewControllerManager creates a new controller manager
func NewControllerManager(ctx context.Context, wg *sync.WaitGroup, deps ControllerDeps, logger *zap.SugaredLogger) (*ControllerManager, error) {
	cm := &ControllerManager{
		ctx:    ctx,
		wg:     wg,
		logger: logger,
	}

	interval := deps.HealthInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if deps.Health != nil {
		cm.controllers = append(cm.controllers, &healthController{ctx: ctx, health: deps.Health, interval: interval})
	}

	var health restserver.HealthReporter
	if deps.Health != nil {
		health = deps.Health
	}
	rest, err := restserver.NewController(ctx, wg, deps.Server, deps.Runner, health, deps.Metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating controller: %v", err)
	}
	// a check may be missed once before the endpoint reports stale health
	if maxAge := 3 * interval; maxAge > rest.HealthMaxAge {
		rest.HealthMaxAge = maxAge
	}
	cm.controllers = append(cm.controllers, rest)

	return cm, nil
}

// StartControllers starts every controller in order
func (c *ControllerManager) StartControllers() error {
	c.logger.Info("Starting controller manager...")

	for _, controller := range c.controllers {
		err := controller.StartController()
		if err != nil {
			return fmt.Errorf("error starting controller: %v", err)
		}
	}

	c.logger.Infof("Started %d controllers successfully", len(c.controllers))
	return nil
}

// healthController runs the periodic record store health check
type healthController struct {
	ctx      context.Context
	health   *storage.HealthManager
	interval time.Duration
}

func (h *healthController) StartController() error {
	h.health.Start(h.ctx, h.interval)
	return nil
}
