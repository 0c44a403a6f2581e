package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/config"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/exporter"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/pkg/contracts"
)

const sampleCSV = "Year,MarketSize,AdoptionRate\n2020,100,10\n2021,150,15\n2022,200,20\n"

func writeInput(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultInputFile), []byte(content), 0644))
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantSet []string
		wantErr bool
	}{
		{name: "no flags", args: nil},
		{name: "overrides", args: []string{"-data-dir", "/tmp/x", "-horizon", "3", "-quiet"}, wantSet: []string{"data-dir", "horizon", "quiet"}},
		{name: "unknown flag", args: []string{"-bogus"}, wantErr: true},
		{name: "positional argument", args: []string{"extra"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, set, err := parseFlags(tt.args, &bytes.Buffer{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, f)
			assert.Len(t, set, len(tt.wantSet))
			for _, name := range tt.wantSet {
				assert.True(t, set[name], name)
			}
		})
	}
}

func TestCLIFlags_Apply(t *testing.T) {
	cfg := config.Default()
	cfg.Analysis.Horizon = 7

	f, set, err := parseFlags([]string{"-base-year", "2030", "-input", "other.csv", "-no-chart", "-trace"}, &bytes.Buffer{})
	require.NoError(t, err)
	f.apply(cfg, set)

	assert.Equal(t, 7, cfg.Analysis.Horizon, "unset flags keep the configured value")
	assert.Equal(t, 2030, cfg.Analysis.BaseYear)
	assert.Equal(t, "other.csv", cfg.Paths.InputFile)
	assert.False(t, cfg.Analysis.WriteChart)
	assert.True(t, cfg.Analysis.WriteWorkbook)
	assert.True(t, cfg.Telemetry.TracingEnabled)
}

func TestRun_Success(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, dir, sampleCSV)

	code, stdout, _ := runCLI(t, "-data-dir", dir, "-horizon", "3")
	require.Equal(t, exitOK, code)

	assert.Contains(t, stdout, "Market Size Model R² Score: 1.0000")
	assert.Contains(t, stdout, "Files generated:")

	report, err := exporter.ReadReport(filepath.Join(dir, config.DefaultResultsJSON))
	require.NoError(t, err)
	require.Len(t, report.Predictions, 3)
	assert.Equal(t, 2023, report.Predictions[0].Year)
	assert.Equal(t, 250.0, report.Predictions[0].PredictedMarketSize)

	for _, name := range []string{config.DefaultResultsCSV, config.DefaultResultsXLSX, config.DefaultChartFile, config.DefaultMetricsFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	assert.NoFileExists(t, filepath.Join(dir, config.DefaultTraceFile))
}

func TestRun_MissingInput(t *testing.T) {
	dir := t.TempDir()

	code, stdout, _ := runCLI(t, "-data-dir", dir, "-quiet")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "Error: input file not found: "+filepath.Join(dir, config.DefaultInputFile))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		args     []string
		wantCode int
	}{
		{name: "malformed value", input: "Year,MarketSize,AdoptionRate\n2020,abc,1\n", wantCode: exitError},
		{name: "missing column", input: "Year,MarketSize\n2020,1\n", wantCode: exitError},
		{name: "invalid horizon", input: sampleCSV, args: []string{"-horizon", "0"}, wantCode: exitUsage},
		{name: "bad flag", input: sampleCSV, args: []string{"-nope"}, wantCode: exitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeInput(t, dir, tt.input)

			code, _, stderr := runCLI(t, append([]string{"-data-dir", dir, "-quiet"}, tt.args...)...)
			assert.Equal(t, tt.wantCode, code)
			assert.NotEmpty(t, stderr)
			assert.NoFileExists(t, filepath.Join(dir, config.DefaultResultsCSV))
		})
	}
}

func TestRun_ConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, dir, sampleCSV)

	cfgPath := filepath.Join(t.TempDir(), "analysis.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"analysis:\n  horizon: 4\n  write_workbook: false\npaths:\n  data_dir: "+dir+"\n"), 0644))

	t.Run("file", func(t *testing.T) {
		code, _, _ := runCLI(t, "-config", cfgPath, "-quiet")
		require.Equal(t, exitOK, code)

		report, err := exporter.ReadReport(filepath.Join(dir, config.DefaultResultsJSON))
		require.NoError(t, err)
		assert.Len(t, report.Predictions, 4)
		assert.NoFileExists(t, filepath.Join(dir, config.DefaultResultsXLSX))
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("AIM_ANALYSIS_HORIZON", "2")

		code, _, _ := runCLI(t, "-config", cfgPath, "-quiet")
		require.Equal(t, exitOK, code)

		report, err := exporter.ReadReport(filepath.Join(dir, config.DefaultResultsJSON))
		require.NoError(t, err)
		assert.Len(t, report.Predictions, 2)
	})

	t.Run("flag overrides env", func(t *testing.T) {
		t.Setenv("AIM_ANALYSIS_HORIZON", "2")

		code, _, _ := runCLI(t, "-config", cfgPath, "-quiet", "-horizon", "6")
		require.Equal(t, exitOK, code)

		report, err := exporter.ReadReport(filepath.Join(dir, config.DefaultResultsJSON))
		require.NoError(t, err)
		assert.Len(t, report.Predictions, 6)
	})
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, "-version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, contracts.GetVersionString())
}

func TestRun_Trace(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, dir, sampleCSV)

	code, _, _ := runCLI(t, "-data-dir", dir, "-quiet", "-trace")
	require.Equal(t, exitOK, code)

	data, err := os.ReadFile(filepath.Join(dir, config.DefaultTraceFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "analysis.run")
	assert.Contains(t, string(data), "analysis.write")
}
