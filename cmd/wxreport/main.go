package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chrissnell/wxreport/internal/app"
	"github.com/chrissnell/wxreport/internal/constants"
	"github.com/chrissnell/wxreport/internal/log"
	"github.com/chrissnell/wxreport/internal/report"
	"github.com/chrissnell/wxreport/internal/types"
	"github.com/chrissnell/wxreport/pkg/config"
)

// Exit codes for one-shot runs
const (
	exitOK             = 0
	exitError          = 1
	exitInvalidRequest = 2
	exitNoData         = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := flag.NewFlagSet(constants.AppName, flag.ContinueOnError)
	cfgFile := flags.String("config", "config.yaml", "Path to YAML configuration file")
	envFile := flags.String("env", ".env", "Optional .env file with WXREPORT_* overrides")
	debug := flags.Bool("debug", false, "Turn on debugging output")
	showVersion := flags.Bool("version", false, "Show version and exit")
	serve := flags.Bool("serve", false, "Serve the HTTP API instead of running a single report")

	stations := flags.String("stations", "", "Comma-separated station IDs")
	parameters := flags.String("parameters", "", "Comma-separated parameter keys (e.g. rainfall,humidity)")
	rangePreset := flags.String("range", "1Y", "Range preset: 1D, 1W, 1M, 3M, 6M, 1Y, 5Y, 10Y, 20Y, 30Y, 50Y or All")
	start := flags.String("start", "", "Custom range start (YYYY-MM-DD); overrides -range together with -end")
	end := flags.String("end", "", "Custom range end (YYYY-MM-DD)")
	average := flags.String("average", "None", "Averaging preset: None, 1W, 1M, 3M, 6M, 1Y, 5Y, 10Y, 20Y or 30Y")
	images := flags.Bool("images", true, "Render charts")
	tables := flags.Bool("tables", true, "Export CSV tables")
	outDir := flags.String("out", "report", "Directory that receives the report files")

	seedDemo := flags.Bool("seed-demo", false, "Seed demo records for -stations before running")
	seedFrom := flags.Int("seed-from", time.Now().Year()-2, "First year of demo records")
	seedTo := flags.Int("seed-to", time.Now().Year()-1, "Last year of demo records")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitInvalidRequest
	}

	if *showVersion {
		fmt.Printf("%s %s\n", constants.AppName, constants.Version)
		return exitOK
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		return exitError
	}
	defer log.Sync()

	if err := config.LoadDotEnv(*envFile); err != nil {
		log.Errorf("%v", err)
		return exitError
	}

	filename, _ := filepath.Abs(*cfgFile)
	provider := config.NewYAMLProvider(filename)

	cfgData, err := provider.LoadConfig()
	if err != nil {
		log.Errorf("error reading config file. Did you pass the -config flag? Run with -h for help: %v", err)
		return exitError
	}

	if cfgData.Logging.File != "" {
		if err := log.InitWithFile(*debug, log.FileOptions{
			Path:       cfgData.Logging.File,
			MaxSizeMB:  cfgData.Logging.MaxSizeMB,
			MaxBackups: cfgData.Logging.MaxBackups,
		}); err != nil {
			log.Errorf("Failed to initialize log file: %v", err)
			return exitError
		}
	}

	application := app.New(provider, log.GetSugaredLogger())

	if *serve {
		if err := application.Run(context.Background()); err != nil {
			log.Errorf("Application error: %v", err)
			return exitError
		}
		return exitOK
	}

	req := types.RequestSpec{
		Stations:   splitList(*stations),
		Parameters: parameterKeys(splitList(*parameters)),
		RangeMode:  types.RangeModePreset,
		Preset:     types.RangePreset(*rangePreset),
		Averaging:  types.AveragingPreset(*average),
		Images:     *images,
		Tables:     *tables,
	}
	if *start != "" || *end != "" {
		req.RangeMode = types.RangeModeCustom
		req.Preset = ""
		req.CustomStart = *start
		req.CustomEnd = *end
	}

	ctx := context.Background()
	svc, err := application.Build(ctx)
	if err != nil {
		log.Errorf("Application error: %v", err)
		return exitError
	}
	defer svc.Close()

	if *seedDemo {
		if err := application.SeedDemo(ctx, svc, req.Stations, *seedFrom, *seedTo); err != nil {
			log.Errorf("Could not seed demo data: %v", err)
			return exitError
		}
	}

	manifest, err := application.RunOnce(ctx, svc, req, *outDir)
	if err != nil {
		return exitCode(err)
	}

	log.Infow("report written",
		"dir", *outDir,
		"images", manifest.Stats.ImagesGenerated,
		"tables", manifest.Stats.TablesGenerated,
		"points", manifest.Stats.TotalPoints)
	return exitOK
}

// exitCode logs a failed one-shot report and maps it to the process exit code
func exitCode(err error) int {
	switch {
	case errors.Is(err, report.ErrInvalidRequest):
		log.Errorf("%v", err)
		return exitInvalidRequest
	case errors.Is(err, report.ErrNoDataAvailable):
		log.Warn("no data available for the requested stations, parameters and range")
		return exitNoData
	default:
		log.Errorf("Report failed: %v", err)
		return exitError
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parameterKeys(keys []string) []types.ParameterKey {
	out := make([]types.ParameterKey, len(keys))
	for i, k := range keys {
		out[i] = types.ParameterKey(k)
	}
	return out
}
