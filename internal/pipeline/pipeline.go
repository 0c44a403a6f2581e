package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/config"
	apperrors "github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/errors"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/exporter"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/forecast"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/infrastructure"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/loader"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/trend"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/pkg/contracts/domain"
)

// Run outcomes recorded in the runs counter
const (
	OutcomeSuccess = "success"
	OutcomeAborted = "aborted"
	OutcomeFailed  = "failed"
)

// Options configures one analysis run
type Options struct {
	Paths     *config.Paths
	Analysis  config.AnalysisConfig
	Logger    *slog.Logger
	Console   io.Writer // progress text; nil means stdout
	Quiet     bool
	Telemetry *infrastructure.OTelProviders // nil disables tracing and metrics
}

// Result is everything a run produced
type Result struct {
	RunID       string
	Aborted     bool
	Dataset     domain.Dataset
	Market      *trend.Model
	Adoption    *trend.Model
	BaseYear    int
	Predictions []domain.ForecastRecord
	Report      *domain.AnalysisReport
	Files       []string
	Stages      []*StageState
}

// Stage returns the state of the named stage
func (r *Result) Stage(stage Stage) *StageState {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return s
		}
	}
	return nil
}

// Pipeline runs LOAD, FIT, FORECAST and WRITE in order on a single goroutine
type Pipeline struct {
	opts      Options
	logger    *slog.Logger
	console   *Console
	telemetry *infrastructure.OTelProviders
	loader    *loader.Loader
	results   *exporter.ResultsExporter
	workbook  *exporter.WorkbookExporter
	chart     *exporter.ChartExporter
}

// New validates the options and wires the stage components
func New(opts Options) (*Pipeline, error) {
	if opts.Paths == nil {
		return nil, apperrors.NewConfigError("paths are required", nil)
	}
	if opts.Paths.InputCSV == "" || opts.Paths.ResultsCSV == "" || opts.Paths.ResultsJSON == "" {
		return nil, apperrors.NewConfigError("input, results CSV and results JSON paths are required", nil)
	}
	if opts.Analysis.Horizon <= 0 {
		return nil, apperrors.NewAppValidationError(
			fmt.Sprintf("forecast horizon must be positive, got %d", opts.Analysis.Horizon))
	}

	logger := opts.Logger
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	telemetry := opts.Telemetry
	if telemetry == nil {
		var err error
		telemetry, err = infrastructure.InitializeOTel(nil, logger)
		if err != nil {
			return nil, err
		}
	}

	consoleWriter := opts.Console
	if consoleWriter == nil {
		consoleWriter = os.Stdout
	}

	return &Pipeline{
		opts:      opts,
		logger:    infrastructure.WithComponent(logger, "pipeline"),
		console:   NewConsole(consoleWriter, opts.Quiet),
		telemetry: telemetry,
		loader:    loader.New(logger),
		results:   exporter.NewResultsExporter(logger),
		workbook:  exporter.NewWorkbookExporter(logger),
		chart:     exporter.NewChartExporter(logger),
	}, nil
}

// Run executes the analysis. A missing input file aborts the run with a
// "file not found" message, no output files and a nil error.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	started := time.Now()

	ctx, span := p.telemetry.Tracer.Start(ctx, "analysis.run",
		trace.WithAttributes(attribute.String("run_id", infrastructure.GetRunID(ctx))))
	defer span.End()

	result := &Result{RunID: infrastructure.GetRunID(ctx)}
	states := make(map[Stage]*StageState, len(Stages))
	for _, s := range Stages {
		st := NewStageState(s)
		states[s] = st
		result.Stages = append(result.Stages, st)
	}

	p.logger.InfoContext(ctx, "analysis started",
		slog.String("input", p.opts.Paths.InputCSV),
		slog.Int("horizon", p.opts.Analysis.Horizon))
	p.console.Printf("=== %s Started ===\n", config.AppName)

	err := p.execute(ctx, result, states)

	switch {
	case err == nil:
		p.finish(ctx, result, OutcomeSuccess, started)
		return result, nil
	case apperrors.IsNotFound(err):
		result.Aborted = true
		skipRemaining(states, "input file not found")
		p.console.Errorf("Error: input file not found: %s\n", p.opts.Paths.InputCSV)
		p.logger.WarnContext(ctx, "analysis aborted, input file not found",
			slog.String("input", p.opts.Paths.InputCSV))
		p.finish(ctx, result, OutcomeAborted, started)
		return result, nil
	default:
		skipRemaining(states, "previous stage failed")
		infrastructure.RecordError(ctx, err)
		infrastructure.WithError(p.logger, err).ErrorContext(ctx, "analysis failed",
			slog.String("error_type", string(apperrors.TypeOf(err))))
		p.finish(ctx, result, OutcomeFailed, started)
		return result, err
	}
}

func (p *Pipeline) execute(ctx context.Context, result *Result, states map[Stage]*StageState) error {
	if err := p.runStage(ctx, states[StageLoad], func(ctx context.Context) (string, error) {
		return p.load(ctx, result)
	}); err != nil {
		return err
	}

	if err := p.runStage(ctx, states[StageFit], func(ctx context.Context) (string, error) {
		return p.fit(ctx, result)
	}); err != nil {
		return err
	}

	if err := p.runStage(ctx, states[StageForecast], func(ctx context.Context) (string, error) {
		return p.forecast(ctx, result)
	}); err != nil {
		return err
	}

	return p.runStage(ctx, states[StageWrite], func(ctx context.Context) (string, error) {
		return p.write(ctx, result)
	})
}

// runStage wraps fn in a span, a stage state transition and a duration metric.
// The context is checked for cancellation before the stage starts.
func (p *Pipeline) runStage(ctx context.Context, state *StageState, fn func(context.Context) (string, error)) error {
	if err := ctx.Err(); err != nil {
		state.Fail(err)
		return err
	}

	ctx, span := p.telemetry.Tracer.Start(ctx, "analysis."+string(state.Stage))
	defer span.End()

	state.Start()
	message, err := fn(ctx)

	switch {
	case err == nil:
		state.Complete(message)
	case apperrors.IsNotFound(err):
		state.Fail(err)
		span.SetAttributes(attribute.Bool("aborted", true))
	default:
		state.Fail(err)
		infrastructure.RecordError(ctx, err)
	}

	p.telemetry.Metrics.RecordStage(ctx, string(state.Stage), state.Duration(), err)
	p.logger.DebugContext(ctx, "stage finished",
		slog.String("stage", string(state.Stage)),
		slog.String("status", string(state.GetStatus())),
		slog.Duration("duration", state.Duration()))

	return err
}

func (p *Pipeline) load(ctx context.Context, result *Result) (string, error) {
	ds, err := p.loader.LoadFile(ctx, p.opts.Paths.InputCSV)
	if err != nil {
		return "", err
	}
	result.Dataset = ds
	p.telemetry.Metrics.RecordsLoaded.Record(ctx, int64(ds.Len()))

	p.console.Printf("Loaded %d records from %s\n", ds.Len(), p.opts.Paths.InputCSV)
	if err := p.console.DatasetOverview(ds, p.opts.Analysis.PreviewRows); err != nil {
		p.logger.WarnContext(ctx, "failed to render dataset overview", slog.String("error", err.Error()))
	}

	return fmt.Sprintf("loaded %d records", ds.Len()), nil
}

func (p *Pipeline) fit(ctx context.Context, result *Result) (string, error) {
	p.console.Section("Performing Linear Regression")

	market, adoption, err := trend.FitDataset(result.Dataset)
	if err != nil {
		return "", err
	}
	result.Market = market
	result.Adoption = adoption

	xs := result.Dataset.Years()
	for _, fitted := range []struct {
		model *trend.Model
		ys    []float64
	}{
		{market, result.Dataset.MarketSizes()},
		{adoption, result.Dataset.AdoptionRates()},
	} {
		summary := fitted.model.Summarize(xs, fitted.ys)
		p.telemetry.Metrics.RecordModel(ctx, fitted.model.Target, fitted.model.R2)
		p.logger.InfoContext(ctx, "trend model fitted",
			slog.Any("model", fitted.model),
			slog.Float64("rmse", summary.RMSE),
			slog.Float64("max_abs_residual", summary.MaxAbsResidual))
	}

	p.console.ModelScores(market.R2, adoption.R2)
	return fmt.Sprintf("market R² %.4f, adoption R² %.4f", market.R2, adoption.R2), nil
}

func (p *Pipeline) forecast(ctx context.Context, result *Result) (string, error) {
	p.console.Section("Generating Future Predictions")

	lastYear := result.Dataset.LastYear()
	result.BaseYear = p.opts.Analysis.BaseYear
	if result.BaseYear == 0 {
		result.BaseYear = lastYear
	}
	// Predicted years must all fall after the observed ones
	if result.BaseYear < lastYear {
		return "", apperrors.NewAppValidationError(
			fmt.Sprintf("base year %d is before the last observed year %d", result.BaseYear, lastYear)).
			WithContext("base_year", result.BaseYear).
			WithContext("last_year", lastYear)
	}

	preds, err := forecast.Forecast(result.Market, result.Adoption, result.BaseYear, p.opts.Analysis.Horizon)
	if err != nil {
		return "", err
	}
	result.Predictions = preds
	p.telemetry.Metrics.ForecastYears.Record(ctx, int64(len(preds)))

	if err := p.console.Predictions(preds); err != nil {
		p.logger.WarnContext(ctx, "failed to render predictions", slog.String("error", err.Error()))
	}

	p.logger.InfoContext(ctx, "forecast generated",
		slog.Int("base_year", result.BaseYear),
		slog.Int("first_year", preds[0].Year),
		slog.Int("last_year", preds[len(preds)-1].Year))

	return fmt.Sprintf("projected %d years after %d", len(preds), result.BaseYear), nil
}

func (p *Pipeline) write(ctx context.Context, result *Result) (string, error) {
	p.console.Section("Saving Results")
	paths := p.opts.Paths

	if err := paths.EnsureDirectories(); err != nil {
		return "", apperrors.NewStorageError("failed to create output directories", err)
	}

	rows := exporter.MergeRows(result.Dataset, result.Predictions)
	if err := p.results.ExportCSV(paths.ResultsCSV, rows); err != nil {
		return "", err
	}
	p.recordFile(ctx, result, paths.ResultsCSV)
	p.console.Printf("Results saved to %s\n", paths.ResultsCSV)

	report := exporter.BuildReport(result.Dataset, result.Market.R2, result.Adoption.R2, result.Predictions)
	if err := p.results.ExportJSON(paths.ResultsJSON, report); err != nil {
		return "", err
	}
	result.Report = &report
	p.recordFile(ctx, result, paths.ResultsJSON)
	p.console.Printf("JSON results saved to %s\n", paths.ResultsJSON)

	if p.opts.Analysis.WriteWorkbook && paths.ResultsXLSX != "" {
		if err := p.workbook.Export(paths.ResultsXLSX, result.Dataset, result.Predictions, modelSummaries(result)); err != nil {
			return "", err
		}
		p.recordFile(ctx, result, paths.ResultsXLSX)
		p.console.Printf("Workbook saved to %s\n", paths.ResultsXLSX)
	}

	if p.opts.Analysis.WriteChart && paths.ChartPNG != "" {
		if err := p.chart.Export(paths.ChartPNG, result.Dataset, result.Predictions, result.Market, result.Adoption); err != nil {
			return "", err
		}
		p.recordFile(ctx, result, paths.ChartPNG)
		p.console.Printf("Trend chart saved to %s\n", paths.ChartPNG)
	}

	return fmt.Sprintf("wrote %d files", len(result.Files)), nil
}

func (p *Pipeline) recordFile(ctx context.Context, result *Result, path string) {
	result.Files = append(result.Files, path)
	p.telemetry.Metrics.FilesGenerated.Add(ctx, 1)
}

// finish records the run outcome and prints the closing summary
func (p *Pipeline) finish(ctx context.Context, result *Result, outcome string, started time.Time) {
	p.telemetry.Metrics.RecordRun(ctx, outcome)

	if runtimeMetrics, err := infrastructure.NewRuntimeMetrics(p.telemetry.Meter); err == nil {
		stats := runtimeMetrics.Collect(ctx, started)
		p.logger.DebugContext(ctx, "runtime stats", slog.Any("runtime", stats))
	}

	if outcome != OutcomeSuccess {
		return
	}

	if p.telemetry.Registry != nil && p.opts.Paths.MetricsFile != "" {
		if err := p.telemetry.WriteMetricsFile(p.opts.Paths.MetricsFile); err != nil {
			infrastructure.WithError(p.logger, err).WarnContext(ctx, "failed to write metrics file",
				slog.String("path", p.opts.Paths.MetricsFile))
		} else {
			result.Files = append(result.Files, p.opts.Paths.MetricsFile)
		}
	}

	p.console.Section("Analysis Complete")
	p.console.FilesGenerated(result.Files)

	p.logger.InfoContext(ctx, "analysis completed",
		slog.Int("files", len(result.Files)),
		slog.Duration("duration", time.Since(started)))
}

func skipRemaining(states map[Stage]*StageState, reason string) {
	for _, s := range Stages {
		if states[s].GetStatus() == StageStatusPending {
			states[s].Skip(reason)
		}
	}
}

func modelSummaries(result *Result) []exporter.ModelSummary {
	xs := result.Dataset.Years()
	out := make([]exporter.ModelSummary, 0, 2)
	for _, m := range []struct {
		model *trend.Model
		ys    []float64
	}{
		{result.Market, result.Dataset.MarketSizes()},
		{result.Adoption, result.Dataset.AdoptionRates()},
	} {
		s := m.model.Summarize(xs, m.ys)
		out = append(out, exporter.ModelSummary{
			Target:         m.model.Target,
			Slope:          m.model.Slope,
			Intercept:      m.model.Intercept,
			R2:             m.model.R2,
			N:              m.model.N,
			RMSE:           s.RMSE,
			MaxAbsResidual: s.MaxAbsResidual,
		})
	}
	return out
}
