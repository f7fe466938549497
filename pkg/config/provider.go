package config

import "time"

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetStorageConfig() (*StorageData, error)
	GetRendererConfig() (*RendererData, error)
	GetPipelineConfig() (*PipelineData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Storage  StorageData  `json:"storage"`
	Renderer RendererData `json:"renderer"`
	Pipeline PipelineData `json:"pipeline"`
	Server   ServerData   `json:"server"`
	Logging  LoggingData  `json:"logging"`
}

// StorageData selects and configures the record store backend
type StorageData struct {
	Backend          string      `json:"backend"`
	Driver           string      `json:"driver,omitempty"`
	ConnectionString string      `json:"connection_string,omitempty"`
	Breaker          BreakerData `json:"breaker"`
}

// BreakerData configures the per-parameter circuit breakers
type BreakerData struct {
	MaxFailures uint32        `json:"max_failures"`
	Timeout     time.Duration `json:"timeout"`
}

// RendererData configures chart rendering
type RendererData struct {
	Engine           string        `json:"engine"`
	ChromePath       string        `json:"chrome_path,omitempty"`
	EChartsAsset     string        `json:"echarts_asset,omitempty"`
	Width            int           `json:"width"`
	Height           int           `json:"height"`
	RenderTimeout    time.Duration `json:"render_timeout"`
	DebugScreenshots bool          `json:"debug_screenshots,omitempty"`
}

// PipelineData configures report jobs
type PipelineData struct {
	Workers       int           `json:"workers"`
	JobTimeout    time.Duration `json:"job_timeout"`
	WorkspaceRoot string        `json:"workspace_root,omitempty"`
	Precision     int           `json:"precision"`
}

// ServerData configures the HTTP API
type ServerData struct {
	ListenAddr string `json:"listen_addr,omitempty"`
	Port       int    `json:"port"`
}

// LoggingData configures the optional rotated log file
type LoggingData struct {
	File       string `json:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
}

// Storage backends
const (
	BackendGORM   = "gorm"
	BackendSQL    = "sql"
	BackendPGX    = "pgx"
	BackendMemory = "memory"
)

// Renderer engines
const (
	EngineBrowser = "browser"
	EngineStatic  = "static"
)

// ApplyDefaults fills every unset field with its default value
func (c *ConfigData) ApplyDefaults() {
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendMemory
	}
	if c.Storage.Backend == BackendSQL && c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.Breaker.MaxFailures == 0 {
		c.Storage.Breaker.MaxFailures = 5
	}
	if c.Storage.Breaker.Timeout == 0 {
		c.Storage.Breaker.Timeout = 30 * time.Second
	}

	if c.Renderer.Engine == "" {
		c.Renderer.Engine = EngineBrowser
	}
	if c.Renderer.Width == 0 {
		c.Renderer.Width = 1200
	}
	if c.Renderer.Height == 0 {
		c.Renderer.Height = 600
	}
	if c.Renderer.RenderTimeout == 0 {
		c.Renderer.RenderTimeout = 30 * time.Second
	}

	if c.Pipeline.Workers == 0 {
		c.Pipeline.Workers = 8
	}
	if c.Pipeline.JobTimeout == 0 {
		c.Pipeline.JobTimeout = 5 * time.Minute
	}
	if c.Pipeline.Precision == 0 {
		c.Pipeline.Precision = 2
	}

	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}

	if c.Logging.File != "" {
		if c.Logging.MaxSizeMB == 0 {
			c.Logging.MaxSizeMB = 100
		}
		if c.Logging.MaxBackups == 0 {
			c.Logging.MaxBackups = 3
		}
	}
}

// Validate checks for combinations that cannot work
func (c *ConfigData) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendGORM, BackendPGX:
		if c.Storage.ConnectionString == "" {
			return errMissing("storage.connection-string", c.Storage.Backend)
		}
	case BackendSQL:
		if c.Storage.ConnectionString == "" {
			return errMissing("storage.connection-string", c.Storage.Backend)
		}
		if c.Storage.Driver != "sqlite" && c.Storage.Driver != "postgres" {
			return errInvalid("storage.driver", c.Storage.Driver)
		}
	default:
		return errInvalid("storage.backend", c.Storage.Backend)
	}

	if c.Renderer.Engine != EngineBrowser && c.Renderer.Engine != EngineStatic {
		return errInvalid("renderer.engine", c.Renderer.Engine)
	}
	if c.Pipeline.Workers < 0 {
		return errInvalid("pipeline.workers", c.Pipeline.Workers)
	}
	if c.Pipeline.Precision < 0 || c.Pipeline.Precision > 10 {
		return errInvalid("pipeline.precision", c.Pipeline.Precision)
	}
	return nil
}
