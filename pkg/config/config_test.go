package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
storage:
  backend: sql
  driver: sqlite
  connection-string: /var/lib/wxreport/records.db
  breaker:
    max-failures: 3
    timeout: 10s
renderer:
  engine: static
  width: 800
  render-timeout: 5s
pipeline:
  workers: 4
  job-timeout: 2m
server:
  port: 9090
logging:
  file: /var/log/wxreport.log
`

func TestYAMLProviderLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewYAMLProvider(path).LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"backend", cfg.Storage.Backend, BackendSQL},
		{"driver", cfg.Storage.Driver, "sqlite"},
		{"breaker failures", cfg.Storage.Breaker.MaxFailures, uint32(3)},
		{"breaker timeout", cfg.Storage.Breaker.Timeout, 10 * time.Second},
		{"engine", cfg.Renderer.Engine, EngineStatic},
		{"width", cfg.Renderer.Width, 800},
		{"default height", cfg.Renderer.Height, 600},
		{"render timeout", cfg.Renderer.RenderTimeout, 5 * time.Second},
		{"workers", cfg.Pipeline.Workers, 4},
		{"job timeout", cfg.Pipeline.JobTimeout, 2 * time.Minute},
		{"default precision", cfg.Pipeline.Precision, 2},
		{"port", cfg.Server.Port, 9090},
		{"default listen addr", cfg.Server.ListenAddr, "0.0.0.0"},
		{"default log size", cfg.Logging.MaxSizeMB, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvConnectionString, "postgres://override")
	t.Setenv(EnvStorageBackend, BackendPGX)
	t.Setenv(EnvPort, "7070")

	cfg := &ConfigData{}
	if err := ApplyEnvOverrides(cfg); err != nil {
		t.Fatalf("ApplyEnvOverrides: %v", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Storage.ConnectionString != "postgres://override" || cfg.Storage.Backend != BackendPGX || cfg.Server.Port != 7070 {
		t.Errorf("overrides not applied: %+v", cfg)
	}

	t.Setenv(EnvPort, "not-a-port")
	if err := ApplyEnvOverrides(cfg); err == nil {
		t.Error("expected an error for a non-numeric port")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ConfigData
		wantErr bool
	}{
		{name: "defaults are valid", cfg: ConfigData{}},
		{name: "gorm needs a connection string", cfg: ConfigData{Storage: StorageData{Backend: BackendGORM}}, wantErr: true},
		{name: "unknown backend", cfg: ConfigData{Storage: StorageData{Backend: "influx"}}, wantErr: true},
		{name: "unknown sql driver", cfg: ConfigData{Storage: StorageData{Backend: BackendSQL, Driver: "mysql", ConnectionString: "x"}}, wantErr: true},
		{name: "unknown engine", cfg: ConfigData{Renderer: RendererData{Engine: "gpu"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.ApplyDefaults()
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseYAMLRejectsBadDuration(t *testing.T) {
	if _, err := ParseYAML([]byte("pipeline:\n  job-timeout: soon\n")); err == nil {
		t.Fatal("expected an error for an unparseable duration")
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("expected a missing .env to be ignored, got %v", err)
	}
}
