package exporter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/errors"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/pkg/contracts/domain"
)

func sampleDataset() domain.Dataset {
	return domain.Dataset{
		{Year: 2020, MarketSize: 100, AdoptionRate: 10},
		{Year: 2021, MarketSize: 150.123456789, AdoptionRate: 15.1},
		{Year: 2022, MarketSize: 1.0 / 3.0, AdoptionRate: 0.1 + 0.2},
	}
}

func samplePredictions() []domain.ForecastRecord {
	return []domain.ForecastRecord{
		{Year: 2023, PredictedMarketSize: 250.004999, PredictedAdoptionRate: 25.125},
		{Year: 2024, PredictedMarketSize: 300, PredictedAdoptionRate: 30},
	}
}

func TestMergeRows(t *testing.T) {
	rows := MergeRows(sampleDataset(), samplePredictions())
	require.Len(t, rows, 5)

	for i, row := range rows[:3] {
		assert.Equal(t, domain.RowTypeHistorical, row.Type)
		assert.Equal(t, sampleDataset()[i].Year, row.Year)
		require.NotNil(t, row.MarketSize)
		assert.Equal(t, sampleDataset()[i].MarketSize, *row.MarketSize)
		assert.Nil(t, row.PredictedMarketSize)
		assert.Nil(t, row.PredictedAdoptionRate)
	}

	for i, row := range rows[3:] {
		assert.Equal(t, domain.RowTypePredicted, row.Type)
		assert.Equal(t, samplePredictions()[i].Year, row.Year)
		require.NotNil(t, row.PredictedAdoptionRate)
		assert.Equal(t, samplePredictions()[i].PredictedAdoptionRate, *row.PredictedAdoptionRate)
		assert.Nil(t, row.MarketSize)
		assert.Nil(t, row.AdoptionRate)
	}

	assert.Empty(t, MergeRows(nil, nil))
}

func TestResultsExporter_ExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "ai_analysis_results.csv")
	e := NewResultsExporter(discardLogger())

	require.NoError(t, e.ExportCSV(path, MergeRows(sampleDataset()[:1], samplePredictions()[:1])))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	assert.Equal(t, []string{
		"Year,MarketSize,AdoptionRate,PredictedMarketSize,PredictedAdoptionRate,Type",
		"2020,100,10,,,Historical",
		"2023,,,250.004999,25.125,Predicted",
	}, lines)
}

func TestResultsCSV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	e := NewResultsExporter(discardLogger())

	ds := sampleDataset()
	rows := MergeRows(ds, samplePredictions())
	require.NoError(t, e.ExportCSV(path, rows))

	reloaded, err := ReadResultsCSV(path)
	require.NoError(t, err)
	assert.Equal(t, rows, reloaded)

	// Filtering the historical rows reproduces the dataset bit for bit
	assert.Equal(t, ds, HistoricalDataset(reloaded))
}

func TestReadResultsCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errType apperrors.ErrorType
	}{
		{name: "empty file", content: "", errType: apperrors.ErrTypeSchema},
		{name: "wrong header", content: "Year,Value\n2020,1\n", errType: apperrors.ErrTypeSchema},
		{
			name:    "bad number",
			content: "Year,MarketSize,AdoptionRate,PredictedMarketSize,PredictedAdoptionRate,Type\n2020,x,1,,,Historical\n",
			errType: apperrors.ErrTypeParsing,
		},
		{
			name:    "unknown type",
			content: "Year,MarketSize,AdoptionRate,PredictedMarketSize,PredictedAdoptionRate,Type\n2020,1,1,,,Actual\n",
			errType: apperrors.ErrTypeParsing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "results.csv")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := ReadResultsCSV(path)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.errType), "got %v", err)
		})
	}

	_, err := ReadResultsCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestResultsExporter_ExportCSV_StorageError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := NewResultsExporter(discardLogger()).ExportCSV(filepath.Join(blocker, "out.csv"), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}
