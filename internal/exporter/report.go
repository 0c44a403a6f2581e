package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/config"
	apperrors "github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/errors"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/pkg/contracts/domain"
)

// BuildReport assembles the dashboard report. R² scores and predictions are
// rounded for display; historical values are copied unchanged.
func BuildReport(ds domain.Dataset, marketR2, adoptionR2 float64, preds []domain.ForecastRecord) domain.AnalysisReport {
	historical := make([]domain.MarketRecord, len(ds))
	copy(historical, ds)

	predictions := make([]domain.ForecastRecord, len(preds))
	for i, p := range preds {
		predictions[i] = domain.ForecastRecord{
			Year:                  p.Year,
			PredictedMarketSize:   Round(p.PredictedMarketSize, config.PredictionPrecision),
			PredictedAdoptionRate: Round(p.PredictedAdoptionRate, config.PredictionPrecision),
		}
	}

	return domain.AnalysisReport{
		ModelPerformance: domain.ModelPerformance{
			MarketR2:   Round(marketR2, config.R2Precision),
			AdoptionR2: Round(adoptionR2, config.R2Precision),
		},
		HistoricalData: historical,
		Predictions:    predictions,
	}
}

// ExportJSON writes the report as indented JSON
func (e *ResultsExporter) ExportJSON(path string, report domain.AnalysisReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return apperrors.NewStorageError("failed to encode report", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err).WithContext("path", path)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return apperrors.NewStorageError("failed to write report", err).WithContext("path", path)
	}

	e.logger.Info("Results JSON written",
		slog.String("path", path),
		slog.Int("historical", len(report.HistoricalData)),
		slog.Int("predictions", len(report.Predictions)))
	return nil
}

// ReadReport loads a report written by ExportJSON
func ReadReport(path string) (*domain.AnalysisReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read report", err).WithContext("path", path)
	}

	var report domain.AnalysisReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("invalid report %s", filepath.Base(path)), err)
	}
	return &report, nil
}
