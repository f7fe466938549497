package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/wxreport/internal/managers"
	"github.com/chrissnell/wxreport/pkg/config"
)

func main() {
	var (
		yamlFile = flag.String("yaml", "", "Path to YAML configuration file")
		envFile  = flag.String("env", "", "Optional .env file with WXREPORT_* overrides")
		probe    = flag.Bool("probe", false, "Open the configured record store and ping it")
	)
	flag.Parse()

	if *yamlFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml> [-env <file>] [-probe]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("Configuration Test")
	fmt.Println("==================")

	if *envFile != "" {
		fmt.Printf("Loading environment overrides: %s\n", *envFile)
		if err := config.LoadDotEnv(*envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading env file: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Loading YAML configuration: %s\n", *yamlFile)
	cfg, err := config.NewYAMLProvider(*yamlFile).LoadConfig()
	if err != nil {
		fmt.Printf("✗ Configuration invalid: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Configuration parsed and validated")

	printStorage(cfg.Storage)
	printRenderer(cfg.Renderer)
	printPipeline(cfg.Pipeline)

	fmt.Printf("\nServer: %s:%d\n", cfg.Server.ListenAddr, cfg.Server.Port)
	if cfg.Logging.File != "" {
		fmt.Printf("Log file: %s (%d MB x %d backups)\n", cfg.Logging.File, cfg.Logging.MaxSizeMB, cfg.Logging.MaxBackups)
	}

	if *probe {
		if !probeStorage(cfg.Storage) {
			os.Exit(1)
		}
	}

	fmt.Println("\nTest completed!")
}

func printStorage(s config.StorageData) {
	fmt.Println("\nStorage Configuration:")
	fmt.Printf("  Backend: %s\n", s.Backend)
	if s.Driver != "" {
		fmt.Printf("  Driver: %s\n", s.Driver)
	}
	if s.ConnectionString != "" {
		fmt.Println("  Connection string: set")
	}
	fmt.Printf("  Breaker: trips after %d failures, resets after %s\n", s.Breaker.MaxFailures, s.Breaker.Timeout)
}

func printRenderer(r config.RendererData) {
	fmt.Println("\nRenderer Configuration:")
	fmt.Printf("  Engine: %s\n", r.Engine)
	fmt.Printf("  Size: %dx%d, timeout %s\n", r.Width, r.Height, r.RenderTimeout)
	if r.Engine != config.EngineBrowser {
		return
	}

	if r.ChromePath != "" {
		if _, err := os.Stat(r.ChromePath); err != nil {
			fmt.Printf("✗ Chrome binary %s: %v\n", r.ChromePath, err)
		} else {
			fmt.Printf("✓ Chrome binary %s found\n", r.ChromePath)
		}
	} else {
		fmt.Println("  Chrome binary: discovered at runtime")
	}

	if r.EChartsAsset != "" {
		if _, err := os.Stat(r.EChartsAsset); err != nil {
			fmt.Printf("✗ ECharts asset %s: %v\n", r.EChartsAsset, err)
		} else {
			fmt.Printf("✓ ECharts asset %s found\n", r.EChartsAsset)
		}
	} else {
		fmt.Println("  ECharts asset: loaded from CDN")
	}
}

func printPipeline(p config.PipelineData) {
	fmt.Println("\nPipeline Configuration:")
	fmt.Printf("  Workers: %d\n", p.Workers)
	fmt.Printf("  Job timeout: %s\n", p.JobTimeout)
	fmt.Printf("  Precision: %d decimals\n", p.Precision)

	root := p.WorkspaceRoot
	if root == "" {
		root = os.TempDir()
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		fmt.Printf("✗ Workspace root %s is not a directory\n", root)
	} else {
		fmt.Printf("✓ Workspace root %s\n", root)
	}
}

func probeStorage(s config.StorageData) bool {
	fmt.Println("\nStorage Probe:")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sm, err := managers.NewStorageManager(ctx, s, zap.NewNop().Sugar())
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		return false
	}
	defer sm.Close()

	health := sm.Health.Check(ctx)
	if health.Status != "healthy" {
		fmt.Printf("✗ %s: %s\n", health.Message, health.Error)
		return false
	}
	fmt.Printf("✓ %s\n", health.Message)
	return true
}
