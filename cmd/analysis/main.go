package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/config"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/infrastructure"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/pipeline"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/pkg/contracts"
)

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// cliFlags holds command line overrides; only flags the user set are applied
type cliFlags struct {
	configFile string
	dataDir    string
	input      string
	horizon    int
	baseYear   int
	quiet      bool
	trace      bool
	noWorkbook bool
	noChart    bool
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, map[string]bool, error) {
	f := &cliFlags{}
	fs := flag.NewFlagSet("analysis", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&f.configFile, "config", "", "path to a YAML config file (defaults to analysis.yaml if present)")
	fs.StringVar(&f.dataDir, "data-dir", "", "directory holding the input and output files")
	fs.StringVar(&f.input, "input", "", "input CSV file name, relative to the data directory")
	fs.IntVar(&f.horizon, "horizon", config.DefaultHorizon, "number of future years to project")
	fs.IntVar(&f.baseYear, "base-year", 0, "year the forecast starts after (0 = last observed year)")
	fs.BoolVar(&f.quiet, "quiet", false, "suppress progress output")
	fs.BoolVar(&f.trace, "trace", false, "write an OpenTelemetry trace file next to the results")
	fs.BoolVar(&f.noWorkbook, "no-workbook", false, "skip the XLSX workbook")
	fs.BoolVar(&f.noChart, "no-chart", false, "skip the PNG trend chart")
	fs.BoolVar(&f.version, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() > 0 {
		return nil, nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return f, set, nil
}

// apply overlays the flags that were set onto cfg
func (f *cliFlags) apply(cfg *config.Config, set map[string]bool) {
	if set["data-dir"] {
		cfg.Paths.DataDir = f.dataDir
	}
	if set["input"] {
		cfg.Paths.InputFile = f.input
	}
	if set["horizon"] {
		cfg.Analysis.Horizon = f.horizon
	}
	if set["base-year"] {
		cfg.Analysis.BaseYear = f.baseYear
	}
	if set["trace"] {
		cfg.Telemetry.TracingEnabled = f.trace
	}
	if f.noWorkbook {
		cfg.Analysis.WriteWorkbook = false
	}
	if f.noChart {
		cfg.Analysis.WriteChart = false
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags, set, err := parseFlags(args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	if flags.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return exitOK
	}

	cfg, err := config.Load(flags.configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	flags.apply(cfg, set)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: invalid configuration: %v\n", err)
		return exitUsage
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize logger: %v\n", err)
		return exitError
	}
	defer infrastructure.CloseLogFile()

	paths, err := config.GetPaths(cfg)
	if err != nil {
		logger.Error("Failed to initialize paths", slog.String("error", err.Error()))
		return exitUsage
	}

	var traceWriter io.Writer
	if cfg.Telemetry.TracingEnabled && paths.TraceFile != "" {
		traceFile, err := createTraceFile(paths.TraceFile)
		if err != nil {
			logger.Error("Failed to create trace file",
				slog.String("path", paths.TraceFile),
				slog.String("error", err.Error()))
			return exitError
		}
		defer traceFile.Close()
		traceWriter = traceFile
	}

	telemetry, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry, traceWriter), logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		return exitError
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	logger.Debug("Configuration loaded",
		slog.String("data_dir", paths.DataDir),
		slog.String("input", paths.InputCSV),
		slog.Int("horizon", cfg.Analysis.Horizon),
		slog.Int("base_year", cfg.Analysis.BaseYear),
		slog.Bool("tracing", traceWriter != nil))

	p, err := pipeline.New(pipeline.Options{
		Paths:     paths,
		Analysis:  cfg.Analysis,
		Logger:    logger,
		Console:   stdout,
		Quiet:     flags.quiet,
		Telemetry: telemetry,
	})
	if err != nil {
		logger.Error("Failed to create pipeline", slog.String("error", err.Error()))
		return exitError
	}

	if _, err := p.Run(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}

func createTraceFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.Create(path)
}
