package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chrissnell/wxreport/internal/report"
	"github.com/chrissnell/wxreport/internal/storage"
	"github.com/chrissnell/wxreport/internal/types"
	"github.com/chrissnell/wxreport/pkg/config"
)

// ReportRunner runs report jobs and removes their workspaces
type ReportRunner interface {
	Run(ctx context.Context, req types.RequestSpec) (*report.Job, error)
	Cleanup(workspace string) error
}

// HealthReporter exposes the last record store health check
type HealthReporter interface {
	GetHealth() storage.HealthData
	IsHealthy(maxAge time.Duration) bool
}

// DefaultHealthMaxAge is how old a passing health check may be before /healthz fails
const DefaultHealthMaxAge = 2 * time.Minute

// Controller represents the REST server controller
type Controller struct {
	ctx    context.Context
	wg     *sync.WaitGroup
	Server http.Server
	// HealthMaxAge bounds the age of a passing health check
	HealthMaxAge time.Duration
	runner       ReportRunner
	health       HealthReporter
	metrics      http.Handler
	logger       *zap.SugaredLogger
	handlers     *Handlers
}

// NewController creates a new REST server controller. metricsHandler may be nil, in
// which case /metrics is not served.
func NewController(ctx context.Context, wg *sync.WaitGroup, sc config.ServerData, runner ReportRunner, health HealthReporter, metricsHandler http.Handler, logger *zap.SugaredLogger) (*Controller, error) {
	if runner == nil {
		return nil, fmt.Errorf("REST server requires a report runner")
	}

	ctrl := &Controller{
		ctx:          ctx,
		wg:           wg,
		HealthMaxAge: DefaultHealthMaxAge,
		runner:       runner,
		health:       health,
		metrics:      metricsHandler,
		logger:       logger,
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if sc.ListenAddr == "" {
		logger.Info("server.listen-addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		sc.ListenAddr = "0.0.0.0"
	}

	if sc.Port == 0 {
		logger.Info("server.port not provided; defaulting to 8080")
		sc.Port = 8080
	}

	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", sc.ListenAddr, sc.Port)
	ctrl.Server.Handler = ctrl.setupRouter()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	c.logger.Infof("Starting REST server on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
			c.logger.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		c.logger.Info("Shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(c.loggingMiddleware)

	router.HandleFunc("/reports", c.handlers.CreateReport).Methods(http.MethodPost)
	router.HandleFunc("/parameters", c.handlers.GetParameters).Methods(http.MethodGet)
	router.HandleFunc("/healthz", c.handlers.GetHealth).Methods(http.MethodGet)

	if c.metrics != nil {
		router.Handle("/metrics", c.metrics).Methods(http.MethodGet)
	}

	return router
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// loggingMiddleware logs one line per request
func (c *Controller) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, req)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		c.logger.Infow("http request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"remote", req.RemoteAddr,
			"duration", time.Since(start))
	})
}
