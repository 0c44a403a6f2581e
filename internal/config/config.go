package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load
const EnvPrefix = "AIM"

// Config represents the complete application configuration
type Config struct {
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// AnalysisConfig controls the trend fit and forecast.
// BaseYear 0 means "last observed year".
//
// Defaults live in Default(); struct tags only name the variables.
type AnalysisConfig struct {
	Horizon       int  `yaml:"horizon" envconfig:"HORIZON" validate:"min=1,max=100"`
	BaseYear      int  `yaml:"base_year" envconfig:"BASE_YEAR" validate:"omitempty,min=1900,max=3000"`
	PreviewRows   int  `yaml:"preview_rows" envconfig:"PREVIEW_ROWS" validate:"min=0"`
	WriteWorkbook bool `yaml:"write_workbook" envconfig:"WRITE_WORKBOOK"`
	WriteChart    bool `yaml:"write_chart" envconfig:"WRITE_CHART"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration.
// File names are relative to DataDir unless absolute.
type PathsConfig struct {
	DataDir     string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	InputFile   string `yaml:"input_file" envconfig:"INPUT_FILE" validate:"required"`
	ResultsCSV  string `yaml:"results_csv" envconfig:"RESULTS_CSV" validate:"required"`
	ResultsJSON string `yaml:"results_json" envconfig:"RESULTS_JSON" validate:"required"`
	ResultsXLSX string `yaml:"results_xlsx" envconfig:"RESULTS_XLSX"`
	ChartFile   string `yaml:"chart_file" envconfig:"CHART_FILE"`
}

// TelemetryConfig controls the trace and metrics files written next to the results
type TelemetryConfig struct {
	TracingEnabled bool    `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED"`
	TraceFile      string  `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsEnabled bool    `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	MetricsFile    string  `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"min=0,max=1"`
}

var validate = validator.New()

// Load builds the configuration from defaults, an optional YAML file and
// AIM_* environment variables, in increasing order of precedence.
// An empty configFile falls back to the well-known locations.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Only variables that are present override; fields carry no default tags
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the keys present in a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging file path is required for output %q", c.Logging.Output)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	// Check for config file in common locations
	locations := []string{
		"analysis.yaml",
		"configs/analysis.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Horizon:       DefaultHorizon,
			BaseYear:      0,
			PreviewRows:   DefaultPreviewRows,
			WriteWorkbook: true,
			WriteChart:    true,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/analysis.log",
		},
		Paths: PathsConfig{
			DataDir:     DefaultDataDir,
			InputFile:   DefaultInputFile,
			ResultsCSV:  DefaultResultsCSV,
			ResultsJSON: DefaultResultsJSON,
			ResultsXLSX: DefaultResultsXLSX,
			ChartFile:   DefaultChartFile,
		},
		Telemetry: TelemetryConfig{
			TracingEnabled: false,
			TraceFile:      DefaultTraceFile,
			MetricsEnabled: true,
			MetricsFile:    DefaultMetricsFile,
			SampleRatio:    1.0,
		},
	}
}
