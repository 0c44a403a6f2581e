package trend

import (
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/config"
	apperrors "github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/errors"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/pkg/contracts/domain"
)

// closedForm is the textbook OLS solution used to cross-check Fit
func closedForm(xs, ys []float64) (slope, intercept float64) {
	n := float64(len(xs))
	var sumX, sumY, sumXY, sumX2 float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumX2 += xs[i] * xs[i]
	}
	slope = (n*sumXY - sumX*sumY) / (n*sumX2 - sumX*sumX)
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

func scenario() domain.Dataset {
	return domain.Dataset{
		{Year: 2020, MarketSize: 100, AdoptionRate: 10},
		{Year: 2021, MarketSize: 150, AdoptionRate: 15},
		{Year: 2022, MarketSize: 200, AdoptionRate: 20},
	}
}

func TestFit_Scenario(t *testing.T) {
	ds := scenario()
	m, err := Fit(config.TargetMarketSize, ds.Years(), ds.MarketSizes())
	require.NoError(t, err)

	wantSlope, wantIntercept := closedForm(ds.Years(), ds.MarketSizes())
	assert.InDelta(t, wantSlope, m.Slope, 1e-9)
	assert.InDelta(t, wantIntercept, m.Intercept, 1e-6)
	assert.InDelta(t, 50.0, m.Slope, 1e-9)
	assert.InDelta(t, -100900.0, m.Intercept, 1e-6)
	assert.InDelta(t, 250.0, m.Predict(2023), 1e-6)
	assert.InDelta(t, 1.0, m.R2, 1e-12)
	assert.Equal(t, 3, m.N)
	assert.Equal(t, config.TargetMarketSize, m.Target)
}

func TestFit_NormalEquations(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		ys   []float64
	}{
		{
			name: "noisy growth",
			xs:   []float64{2015, 2016, 2017, 2018, 2019, 2020, 2021, 2022},
			ys:   []float64{20.1, 27.5, 35.2, 47.9, 58.3, 62.4, 93.5, 142.3},
		},
		{
			name: "gapped years",
			xs:   []float64{2010, 2013, 2014, 2019},
			ys:   []float64{3, 9.5, 11, 30.25},
		},
		{
			name: "declining",
			xs:   []float64{1, 2, 3, 4, 5},
			ys:   []float64{10, 8.2, 7.1, 3.3, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Fit("y", tt.xs, tt.ys)
			require.NoError(t, err)

			wantSlope, wantIntercept := closedForm(tt.xs, tt.ys)
			assert.InEpsilon(t, wantSlope, m.Slope, 1e-6)
			assert.InDelta(t, wantIntercept, m.Intercept, math.Abs(wantIntercept)*1e-6)

			var sumR, sumRX, scale float64
			for i, r := range m.Residuals(tt.xs, tt.ys) {
				sumR += r
				sumRX += r * tt.xs[i]
				scale += math.Abs(tt.ys[i] * tt.xs[i])
			}
			assert.LessOrEqual(t, math.Abs(sumR), 1e-6*floatsSumAbs(tt.ys))
			assert.LessOrEqual(t, math.Abs(sumRX), 1e-6*scale)

			assert.GreaterOrEqual(t, m.R2, 0.0)
			assert.LessOrEqual(t, m.R2, 1.0)
		})
	}
}

func floatsSumAbs(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += math.Abs(x)
	}
	return s
}

func TestFit_ExactLines(t *testing.T) {
	tests := []struct {
		name             string
		slope, intercept float64
	}{
		{name: "rising", slope: 3.5, intercept: -7000},
		{name: "falling", slope: -0.25, intercept: 600},
		{name: "constant", slope: 0, intercept: 42},
	}

	xs := []float64{2018, 2019, 2020, 2021, 2022}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ys := make([]float64, len(xs))
			for i, x := range xs {
				ys[i] = tt.slope*x + tt.intercept
			}

			m, err := Fit("y", xs, ys)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, m.R2, 1e-9)
			assert.InDelta(t, tt.slope, m.Slope, 1e-9)
		})
	}
}

func TestFit_Errors(t *testing.T) {
	tests := []struct {
		name    string
		xs, ys  []float64
		wantMsg string
	}{
		{name: "length mismatch", xs: []float64{1, 2}, ys: []float64{1}, wantMsg: "lengths differ"},
		{name: "no points", xs: nil, ys: nil, wantMsg: "at least 2 points"},
		{name: "one point", xs: []float64{2020}, ys: []float64{1}, wantMsg: "at least 2 points"},
		{name: "single distinct year", xs: []float64{2020, 2020}, ys: []float64{1, 2}, wantMsg: "single distinct year"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Fit("y", tt.xs, tt.ys)
			require.Error(t, err)
			assert.Nil(t, m)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeModel))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestModel_Summarize(t *testing.T) {
	m := &Model{Slope: 1, Intercept: 0}
	s := m.Summarize([]float64{1, 2, 3, 4}, []float64{1, 3, 3, 3})

	// residuals 0, 1, 0, -1
	assert.InDelta(t, 1.0, s.MaxAbsResidual, 1e-12)
	assert.InDelta(t, math.Sqrt(0.5), s.RMSE, 1e-12)
	assert.Equal(t, ResidualSummary{}, m.Summarize(nil, nil))
}

func TestModel_Fitted(t *testing.T) {
	m := &Model{Slope: 2, Intercept: 1}
	assert.Equal(t, []float64{1, 3, 5}, m.Fitted([]float64{0, 1, 2}))
	assert.Equal(t, slog.KindGroup, m.LogValue().Kind())
}

func TestFitDataset(t *testing.T) {
	market, adoption, err := FitDataset(scenario())
	require.NoError(t, err)

	assert.Equal(t, config.TargetMarketSize, market.Target)
	assert.Equal(t, config.TargetAdoptionRate, adoption.Target)
	assert.InDelta(t, 25.0, adoption.Predict(2023), 1e-6)

	_, _, err = FitDataset(domain.Dataset{{Year: 2020, MarketSize: 1, AdoptionRate: 1}})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeModel))
}
