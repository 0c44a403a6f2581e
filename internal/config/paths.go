package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains every file location used by one analysis run.
// It is the single source of truth for input and output paths.
type Paths struct {
	DataDir     string
	InputCSV    string
	ResultsCSV  string
	ResultsJSON string
	ResultsXLSX string
	ChartPNG    string
	TraceFile   string
	MetricsFile string
	LogFile     string
}

// GetPaths resolves the configured file names against the data directory.
// Absolute names are kept as they are; an empty optional name stays empty.
func GetPaths(cfg *Config) (*Paths, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Paths.DataDir == "" {
		return nil, fmt.Errorf("data directory is not configured")
	}
	dataDir := filepath.Clean(cfg.Paths.DataDir)

	resolve := func(name string) string {
		if name == "" {
			return ""
		}
		if filepath.IsAbs(name) {
			return name
		}
		return filepath.Join(dataDir, name)
	}

	return &Paths{
		DataDir:     dataDir,
		InputCSV:    resolve(cfg.Paths.InputFile),
		ResultsCSV:  resolve(cfg.Paths.ResultsCSV),
		ResultsJSON: resolve(cfg.Paths.ResultsJSON),
		ResultsXLSX: resolve(cfg.Paths.ResultsXLSX),
		ChartPNG:    resolve(cfg.Paths.ChartFile),
		TraceFile:   resolve(cfg.Telemetry.TraceFile),
		MetricsFile: resolve(cfg.Telemetry.MetricsFile),
		LogFile:     cfg.Logging.FilePath,
	}, nil
}

// EnsureDirectories creates the parent directories of every output file
func (p *Paths) EnsureDirectories() error {
	logger := slog.Default()

	seen := make(map[string]bool)
	for _, file := range p.Outputs() {
		dir := filepath.Dir(file)
		if seen[dir] {
			continue
		}
		seen[dir] = true

		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// Outputs lists the configured output files in write order, skipping empty ones
func (p *Paths) Outputs() []string {
	var out []string
	for _, f := range []string{p.ResultsCSV, p.ResultsJSON, p.ResultsXLSX, p.ChartPNG, p.TraceFile, p.MetricsFile} {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
