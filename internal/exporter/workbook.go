package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/config"
	apperrors "github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/errors"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/infrastructure"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/pkg/contracts/domain"
)

// Workbook sheet names
const (
	SheetHistorical  = "Historical"
	SheetPredictions = "Predictions"
	SheetModel       = "Model"
)

// ModelSummary is one row of the Model sheet
type ModelSummary struct {
	Target         string
	Slope          float64
	Intercept      float64
	R2             float64
	N              int
	RMSE           float64
	MaxAbsResidual float64
}

// WorkbookExporter writes the analysis as an XLSX workbook
type WorkbookExporter struct {
	logger *slog.Logger
}

// NewWorkbookExporter creates a new workbook exporter
func NewWorkbookExporter(logger *slog.Logger) *WorkbookExporter {
	return &WorkbookExporter{logger: infrastructure.WithComponent(logger, "workbook_exporter")}
}

// Export writes the Historical, Predictions and Model sheets to path
func (w *WorkbookExporter) Export(path string, ds domain.Dataset, preds []domain.ForecastRecord, models []ModelSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetHistorical); err != nil {
		return apperrors.NewStorageError("failed to name workbook sheet", err)
	}
	for _, name := range []string{SheetPredictions, SheetModel} {
		if _, err := f.NewSheet(name); err != nil {
			return apperrors.NewStorageError("failed to add workbook sheet", err).WithContext("sheet", name)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
	})
	if err != nil {
		return apperrors.NewStorageError("failed to create header style", err)
	}

	historical := make([][]interface{}, len(ds))
	for i, r := range ds {
		historical[i] = []interface{}{r.Year, r.MarketSize, r.AdoptionRate}
	}

	predictions := make([][]interface{}, len(preds))
	for i, p := range preds {
		predictions[i] = []interface{}{
			p.Year,
			Round(p.PredictedMarketSize, config.PredictionPrecision),
			Round(p.PredictedAdoptionRate, config.PredictionPrecision),
		}
	}

	modelRows := make([][]interface{}, len(models))
	for i, m := range models {
		modelRows[i] = []interface{}{
			m.Target, m.Slope, m.Intercept, Round(m.R2, config.R2Precision), m.N, m.RMSE, m.MaxAbsResidual,
		}
	}

	sheets := []struct {
		name    string
		headers []interface{}
		rows    [][]interface{}
	}{
		{SheetHistorical, []interface{}{config.ColumnYear, config.ColumnMarketSize, config.ColumnAdoptionRate}, historical},
		{SheetPredictions, []interface{}{config.ColumnYear, config.ColumnPredictedMarketSize, config.ColumnPredictedAdoptionRate}, predictions},
		{SheetModel, []interface{}{"Target", "Slope", "Intercept", "R2", "N", "RMSE", "MaxAbsResidual"}, modelRows},
	}

	for _, sheet := range sheets {
		if err := writeSheet(f, sheet.name, sheet.headers, sheet.rows, headerStyle); err != nil {
			return apperrors.NewStorageError("failed to write workbook sheet", err).WithContext("sheet", sheet.name)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err).WithContext("path", path)
	}
	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError("failed to save workbook", err).WithContext("path", path)
	}

	w.logger.Info("Workbook written",
		slog.String("path", path),
		slog.Int("historical", len(ds)),
		slog.Int("predictions", len(preds)))
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []interface{}, rows [][]interface{}, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 22); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	return nil
}
