package forecast

import (
	"fmt"

	apperrors "github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/errors"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/pkg/contracts/domain"
)

// Predictor evaluates a fitted trend at a year
type Predictor interface {
	Predict(x float64) float64
}

// Years returns anchor+1 through anchor+horizon
func Years(anchor, horizon int) []int {
	if horizon <= 0 {
		return nil
	}
	years := make([]int, horizon)
	for i := range years {
		years[i] = anchor + i + 1
	}
	return years
}

// Forecast projects both trends over the years following anchor.
// The result depends only on its arguments.
func Forecast(market, adoption Predictor, anchor, horizon int) ([]domain.ForecastRecord, error) {
	if horizon <= 0 {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("forecast horizon must be positive, got %d", horizon)).
			WithContext("horizon", horizon)
	}
	if market == nil || adoption == nil {
		return nil, apperrors.NewAppValidationError("both trend models are required")
	}

	years := Years(anchor, horizon)
	records := make([]domain.ForecastRecord, len(years))
	for i, year := range years {
		x := float64(year)
		records[i] = domain.ForecastRecord{
			Year:                  year,
			PredictedMarketSize:   market.Predict(x),
			PredictedAdoptionRate: adoption.Predict(x),
		}
	}

	return records, nil
}
