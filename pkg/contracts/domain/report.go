package domain

// ForecastRecord holds the projected values for a single future year.
type ForecastRecord struct {
	Year                  int     `json:"year"`
	PredictedMarketSize   float64 `json:"predicted_market_size"`
	PredictedAdoptionRate float64 `json:"predicted_adoption_rate"`
}

// ModelPerformance reports the in-sample coefficient of determination of both trend models.
type ModelPerformance struct {
	MarketR2   float64 `json:"market_r2_score"`
	AdoptionR2 float64 `json:"adoption_r2_score"`
}

// AnalysisReport is the structured artifact consumed by the dashboard.
// It is written once per run.
type AnalysisReport struct {
	ModelPerformance ModelPerformance `json:"model_performance"`
	HistoricalData   []MarketRecord   `json:"historical_data"`
	Predictions      []ForecastRecord `json:"predictions"`
}

// RowType tags a merged result row as observed or projected
type RowType string

const (
	RowTypeHistorical RowType = "Historical"
	RowTypePredicted  RowType = "Predicted"
)

// ResultRow is one row of the combined historical/predicted table.
// Fields that do not apply to the row type are nil.
type ResultRow struct {
	Year                  int
	MarketSize            *float64
	AdoptionRate          *float64
	PredictedMarketSize   *float64
	PredictedAdoptionRate *float64
	Type                  RowType
}

// IsHistorical reports whether the row carries observed values
func (r ResultRow) IsHistorical() bool {
	return r.Type == RowTypeHistorical
}
