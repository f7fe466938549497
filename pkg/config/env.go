package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override file configuration
const (
	EnvConnectionString = "WXREPORT_CONNECTION_STRING"
	EnvStorageBackend   = "WXREPORT_STORAGE_BACKEND"
	EnvChromePath       = "WXREPORT_CHROME_PATH"
	EnvPort             = "WXREPORT_PORT"
	EnvWorkspaceRoot    = "WXREPORT_WORKSPACE_ROOT"
)

// LoadDotEnv loads a .env file into the process environment if one exists.
// Variables already set in the environment win.
func LoadDotEnv(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}

// ApplyEnvOverrides copies WXREPORT_* variables over the file configuration
func ApplyEnvOverrides(c *ConfigData) error {
	if v := os.Getenv(EnvConnectionString); v != "" {
		c.Storage.ConnectionString = v
	}
	if v := os.Getenv(EnvStorageBackend); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv(EnvChromePath); v != "" {
		c.Renderer.ChromePath = v
	}
	if v := os.Getenv(EnvWorkspaceRoot); v != "" {
		c.Pipeline.WorkspaceRoot = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.Server.Port = port
	}
	return nil
}
