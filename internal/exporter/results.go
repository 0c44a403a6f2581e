package exporter

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/config"
	apperrors "github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/errors"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/infrastructure"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/pkg/contracts/domain"
)

// ResultsExporter writes the combined historical and predicted rows
type ResultsExporter struct {
	csvWriter *CSVWriter
	logger    *slog.Logger
}

// NewResultsExporter creates a new results exporter
func NewResultsExporter(logger *slog.Logger) *ResultsExporter {
	return &ResultsExporter{
		csvWriter: NewCSVWriter(logger),
		logger:    infrastructure.WithComponent(logger, "results_exporter"),
	}
}

// MergeRows lists the historical records in dataset order followed by the
// predictions. Historical rows carry no predicted values and vice versa.
func MergeRows(ds domain.Dataset, preds []domain.ForecastRecord) []domain.ResultRow {
	rows := make([]domain.ResultRow, 0, len(ds)+len(preds))

	for _, r := range ds {
		rows = append(rows, domain.ResultRow{
			Year:         r.Year,
			MarketSize:   ptr(r.MarketSize),
			AdoptionRate: ptr(r.AdoptionRate),
			Type:         domain.RowTypeHistorical,
		})
	}

	for _, p := range preds {
		rows = append(rows, domain.ResultRow{
			Year:                  p.Year,
			PredictedMarketSize:   ptr(p.PredictedMarketSize),
			PredictedAdoptionRate: ptr(p.PredictedAdoptionRate),
			Type:                  domain.RowTypePredicted,
		})
	}

	return rows
}

// ExportCSV writes rows to path, creating parent directories and truncating
func (e *ResultsExporter) ExportCSV(path string, rows []domain.ResultRow) error {
	records := make([][]string, len(rows))
	for i, row := range rows {
		records[i] = resultRowToCSV(row)
	}

	if err := e.csvWriter.WriteSimpleCSV(path, config.ResultColumns, records); err != nil {
		return apperrors.NewStorageError("failed to write results CSV", err).WithContext("path", path)
	}

	e.logger.Info("Results CSV written",
		slog.String("path", path),
		slog.Int("rows", len(rows)))
	return nil
}

func resultRowToCSV(row domain.ResultRow) []string {
	return []string{
		formatInt(row.Year),
		formatOptional(row.MarketSize),
		formatOptional(row.AdoptionRate),
		formatOptional(row.PredictedMarketSize),
		formatOptional(row.PredictedAdoptionRate),
		string(row.Type),
	}
}

// ReadResultsCSV loads a file written by ExportCSV
func ReadResultsCSV(path string) ([]domain.ResultRow, error) {
	records, err := ReadCSV(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read results CSV", err).WithContext("path", path)
	}
	if len(records) == 0 {
		return nil, apperrors.NewSchemaError("results CSV has no header").WithContext("path", path)
	}

	header := records[0]
	if strings.Join(header, ",") != strings.Join(config.ResultColumns, ",") {
		return nil, apperrors.NewSchemaError(
			fmt.Sprintf("unexpected results header %q", strings.Join(header, ","))).WithContext("path", path)
	}

	rows := make([]domain.ResultRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		row, err := csvToResultRow(rec)
		if err != nil {
			return nil, apperrors.NewParsingError("invalid results row", err).
				WithContext("path", path).
				WithContext("line", i+2)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func csvToResultRow(rec []string) (domain.ResultRow, error) {
	var row domain.ResultRow
	if len(rec) != len(config.ResultColumns) {
		return row, fmt.Errorf("expected %d fields, got %d", len(config.ResultColumns), len(rec))
	}

	year, err := strconv.Atoi(rec[0])
	if err != nil {
		return row, fmt.Errorf("year: %w", err)
	}
	row.Year = year

	targets := []**float64{&row.MarketSize, &row.AdoptionRate, &row.PredictedMarketSize, &row.PredictedAdoptionRate}
	for i, target := range targets {
		v, err := parseOptional(rec[i+1])
		if err != nil {
			return row, fmt.Errorf("%s: %w", config.ResultColumns[i+1], err)
		}
		*target = v
	}

	switch t := domain.RowType(rec[5]); t {
	case domain.RowTypeHistorical, domain.RowTypePredicted:
		row.Type = t
	default:
		return row, fmt.Errorf("unknown row type %q", rec[5])
	}

	return row, nil
}

// HistoricalDataset rebuilds the dataset from the historical rows
func HistoricalDataset(rows []domain.ResultRow) domain.Dataset {
	var ds domain.Dataset
	for _, row := range rows {
		if !row.IsHistorical() || row.MarketSize == nil || row.AdoptionRate == nil {
			continue
		}
		ds = append(ds, domain.MarketRecord{
			Year:         row.Year,
			MarketSize:   *row.MarketSize,
			AdoptionRate: *row.AdoptionRate,
		})
	}
	return ds
}
