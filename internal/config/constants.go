package config

// Application constants
const (
	// Application Info
	AppName = "AI Market Analysis"

	// Input schema columns
	ColumnYear         = "Year"
	ColumnMarketSize   = "MarketSize"
	ColumnAdoptionRate = "AdoptionRate"

	// Output-only columns
	ColumnPredictedMarketSize   = "PredictedMarketSize"
	ColumnPredictedAdoptionRate = "PredictedAdoptionRate"
	ColumnType                  = "Type"

	// Trend model targets
	TargetMarketSize   = "market_size"
	TargetAdoptionRate = "adoption_rate"

	// Report rounding, in decimal places
	R2Precision         = 4
	PredictionPrecision = 2

	// Analysis defaults
	DefaultHorizon     = 5
	DefaultPreviewRows = 5

	// File Paths (relative to the working directory)
	DefaultDataDir     = "data"
	DefaultInputFile   = "ai_market.csv"
	DefaultResultsCSV  = "ai_analysis_results.csv"
	DefaultResultsJSON = "ai_analysis_results.json"
	DefaultResultsXLSX = "ai_analysis_results.xlsx"
	DefaultChartFile   = "ai_analysis_trend.png"
	DefaultTraceFile   = "ai_analysis_trace.json"
	DefaultMetricsFile = "ai_analysis.prom"

	// Record bounds enforced at load time
	MinYear            = 1900
	MaxYear            = 3000
	MaxAdoptionPercent = 100
)

// InputColumns is the schema contract of the input CSV
var InputColumns = []string{ColumnYear, ColumnMarketSize, ColumnAdoptionRate}

// ResultColumns is the header of the combined results CSV
var ResultColumns = []string{
	ColumnYear,
	ColumnMarketSize,
	ColumnAdoptionRate,
	ColumnPredictedMarketSize,
	ColumnPredictedAdoptionRate,
	ColumnType,
}
