package calculator

import (
	"errors"
	"math"

	"github.com/markcheno/go-talib"
)

// RollingSMA returns the trailing simple moving average of values at every index.
// Entries before the first full window are NaN.
func RollingSMA(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(values) < period {
		return out, nil
	}
	sma := talib.Sma(values, period)
	for i := period - 1; i < len(values); i++ {
		out[i] = sma[i]
	}
	return out, nil
}
