package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from the YAML file, applies
// environment overrides and defaults, and validates the result
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseYAML(cfgFile)
	if err != nil {
		return nil, err
	}

	if err := ApplyEnvOverrides(config); err != nil {
		return nil, err
	}
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	y.config = config
	return config, nil
}

// ParseYAML converts YAML configuration bytes into ConfigData without applying defaults
func ParseYAML(data []byte) (*ConfigData, error) {
	var yamlConfig ConfigYAML
	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return nil, err
	}

	config := &ConfigData{
		Storage: StorageData{
			Backend:          yamlConfig.Storage.Backend,
			Driver:           yamlConfig.Storage.Driver,
			ConnectionString: yamlConfig.Storage.ConnectionString,
			Breaker: BreakerData{
				MaxFailures: yamlConfig.Storage.Breaker.MaxFailures,
			},
		},
		Renderer: RendererData{
			Engine:           yamlConfig.Renderer.Engine,
			ChromePath:       yamlConfig.Renderer.ChromePath,
			EChartsAsset:     yamlConfig.Renderer.EChartsAsset,
			Width:            yamlConfig.Renderer.Width,
			Height:           yamlConfig.Renderer.Height,
			DebugScreenshots: yamlConfig.Renderer.DebugScreenshots,
		},
		Pipeline: PipelineData{
			Workers:       yamlConfig.Pipeline.Workers,
			WorkspaceRoot: yamlConfig.Pipeline.WorkspaceRoot,
			Precision:     yamlConfig.Pipeline.Precision,
		},
		Server: ServerData{
			ListenAddr: yamlConfig.Server.ListenAddr,
			Port:       yamlConfig.Server.Port,
		},
		Logging: LoggingData{
			File:       yamlConfig.Logging.File,
			MaxSizeMB:  yamlConfig.Logging.MaxSizeMB,
			MaxBackups: yamlConfig.Logging.MaxBackups,
		},
	}

	var err error
	if config.Storage.Breaker.Timeout, err = parseDuration("storage.breaker.timeout", yamlConfig.Storage.Breaker.Timeout); err != nil {
		return nil, err
	}
	if config.Renderer.RenderTimeout, err = parseDuration("renderer.render-timeout", yamlConfig.Renderer.RenderTimeout); err != nil {
		return nil, err
	}
	if config.Pipeline.JobTimeout, err = parseDuration("pipeline.job-timeout", yamlConfig.Pipeline.JobTimeout); err != nil {
		return nil, err
	}

	return config, nil
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	return d, nil
}

// GetStorageConfig returns storage configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	if err := y.ensureLoaded(); err != nil {
		return nil, err
	}
	return &y.config.Storage, nil
}

// GetRendererConfig returns renderer configuration
func (y *YAMLProvider) GetRendererConfig() (*RendererData, error) {
	if err := y.ensureLoaded(); err != nil {
		return nil, err
	}
	return &y.config.Renderer, nil
}

// GetPipelineConfig returns pipeline configuration
func (y *YAMLProvider) GetPipelineConfig() (*PipelineData, error) {
	if err := y.ensureLoaded(); err != nil {
		return nil, err
	}
	return &y.config.Pipeline, nil
}

func (y *YAMLProvider) ensureLoaded() error {
	if y.config == nil {
		_, err := y.LoadConfig()
		return err
	}
	return nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with kebab-case tags
type ConfigYAML struct {
	Storage  StorageYAML  `yaml:"storage"`
	Renderer RendererYAML `yaml:"renderer"`
	Pipeline PipelineYAML `yaml:"pipeline"`
	Server   ServerYAML   `yaml:"server"`
	Logging  LoggingYAML  `yaml:"logging"`
}

type StorageYAML struct {
	Backend          string      `yaml:"backend"`
	Driver           string      `yaml:"driver,omitempty"`
	ConnectionString string      `yaml:"connection-string,omitempty"`
	Breaker          BreakerYAML `yaml:"breaker,omitempty"`
}

type BreakerYAML struct {
	MaxFailures uint32 `yaml:"max-failures,omitempty"`
	Timeout     string `yaml:"timeout,omitempty"`
}

type RendererYAML struct {
	Engine           string `yaml:"engine,omitempty"`
	ChromePath       string `yaml:"chrome-path,omitempty"`
	EChartsAsset     string `yaml:"echarts-asset,omitempty"`
	Width            int    `yaml:"width,omitempty"`
	Height           int    `yaml:"height,omitempty"`
	RenderTimeout    string `yaml:"render-timeout,omitempty"`
	DebugScreenshots bool   `yaml:"debug-screenshots,omitempty"`
}

type PipelineYAML struct {
	Workers       int    `yaml:"workers,omitempty"`
	JobTimeout    string `yaml:"job-timeout,omitempty"`
	WorkspaceRoot string `yaml:"workspace-root,omitempty"`
	Precision     int    `yaml:"precision,omitempty"`
}

type ServerYAML struct {
	ListenAddr string `yaml:"listen-addr,omitempty"`
	Port       int    `yaml:"port,omitempty"`
}

type LoggingYAML struct {
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max-size-mb,omitempty"`
	MaxBackups int    `yaml:"max-backups,omitempty"`
}
