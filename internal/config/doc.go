// Package config provides centralized configuration management for the AI market
// analysis pipeline. It handles loading configuration from multiple sources,
// validation, and resolving every input and output path of a run.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Command-line flags, applied by cmd/analysis (highest priority)
//	2. Environment variables
//	3. Configuration file (YAML, analysis.yaml or configs/analysis.yaml)
//	4. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern AIM_<SECTION>_<FIELD>:
//
//	AIM_ANALYSIS_HORIZON=5
//	AIM_ANALYSIS_BASE_YEAR=2024
//	AIM_PATHS_DATA_DIR=data
//	AIM_LOGGING_LEVEL=debug
//	AIM_TELEMETRY_TRACING_ENABLED=true
//
// # Path Management
//
// File names are resolved against the data directory by GetPaths:
//
//	paths, err := config.GetPaths(cfg)
//	input := paths.InputCSV       // data/ai_market.csv
//	results := paths.ResultsJSON  // data/ai_analysis_results.json
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Testing
//
// Use config.Default() for a configuration that needs no environment.
package config
