package trend

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/config"
	apperrors "github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/errors"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/pkg/contracts/domain"
)

// Model is a fitted single-feature linear trend y = Slope*x + Intercept.
// It is created by Fit and never mutated afterwards.
type Model struct {
	Target    string
	Slope     float64
	Intercept float64
	R2        float64
	N         int
}

// ResidualSummary describes the in-sample error of a fitted model
type ResidualSummary struct {
	RMSE           float64
	MaxAbsResidual float64
}

// Fit computes the ordinary least squares line through (xs, ys) and its
// in-sample coefficient of determination.
func Fit(target string, xs, ys []float64) (*Model, error) {
	if len(xs) != len(ys) {
		return nil, apperrors.NewModelError(
			fmt.Sprintf("%s: feature and target lengths differ (%d != %d)", target, len(xs), len(ys))).
			WithContext("target", target)
	}
	if len(xs) < 2 {
		return nil, apperrors.NewModelError(
			fmt.Sprintf("%s: at least 2 points are required, got %d", target, len(xs))).
			WithContext("target", target)
	}
	if floats.Min(xs) == floats.Max(xs) {
		return nil, apperrors.NewModelError(
			fmt.Sprintf("%s: cannot fit a trend to a single distinct year", target)).
			WithContext("target", target)
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)

	m := &Model{
		Target:    target,
		Slope:     slope,
		Intercept: intercept,
		N:         len(xs),
	}
	m.R2 = m.rSquared(xs, ys)

	return m, nil
}

// rSquared is 1 - SSres/SStot. A constant target is scored 1 when the
// line reproduces it exactly and 0 otherwise.
func (m *Model) rSquared(xs, ys []float64) float64 {
	mean := stat.Mean(ys, nil)
	var ssTot, ssRes float64
	for i, y := range ys {
		d := y - mean
		ssTot += d * d
		r := y - m.Predict(xs[i])
		ssRes += r * r
	}

	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}

	return stat.RSquaredFrom(m.Fitted(xs), ys, nil)
}

// Predict evaluates the fitted line at x
func (m *Model) Predict(x float64) float64 {
	return m.Slope*x + m.Intercept
}

// Fitted evaluates the line at every x
func (m *Model) Fitted(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = m.Predict(x)
	}
	return out
}

// Residuals returns y - Predict(x) for each observation
func (m *Model) Residuals(xs, ys []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = ys[i] - m.Predict(x)
	}
	return out
}

// Summarize computes the residual summary on the training data
func (m *Model) Summarize(xs, ys []float64) ResidualSummary {
	res := m.Residuals(xs, ys)
	if len(res) == 0 {
		return ResidualSummary{}
	}

	var maxAbs float64
	for _, r := range res {
		maxAbs = math.Max(maxAbs, math.Abs(r))
	}

	return ResidualSummary{
		RMSE:           floats.Norm(res, 2) / math.Sqrt(float64(len(res))),
		MaxAbsResidual: maxAbs,
	}
}

// LogValue implements slog.LogValuer
func (m *Model) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("target", m.Target),
		slog.Float64("slope", m.Slope),
		slog.Float64("intercept", m.Intercept),
		slog.Float64("r2", m.R2),
		slog.Int("n", m.N),
	)
}

// FitDataset fits the market size and adoption rate trends on the year feature
func FitDataset(ds domain.Dataset) (market, adoption *Model, err error) {
	years := ds.Years()

	market, err = Fit(config.TargetMarketSize, years, ds.MarketSizes())
	if err != nil {
		return nil, nil, err
	}

	adoption, err = Fit(config.TargetAdoptionRate, years, ds.AdoptionRates())
	if err != nil {
		return nil, nil, err
	}

	return market, adoption, nil
}
