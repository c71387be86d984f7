package train

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/odens-ab/pricing-cli/internal/model"
)

// RMSE is the root mean squared error between predictions and truth.
func RMSE(pred, truth []float64) float64 {
	if len(pred) == 0 {
		return math.NaN()
	}
	s := 0.0
	for i := range pred {
		d := pred[i] - truth[i]
		s += d * d
	}
	return math.Sqrt(s / float64(len(pred)))
}

// R2 is the coefficient of determination. It can go negative when the model
// underperforms the constant-mean predictor on this sample.
func R2(pred, truth []float64) float64 {
	mean := stat.Mean(truth, nil)
	ssRes, ssTot := 0.0, 0.0
	for i := range truth {
		r := truth[i] - pred[i]
		t := truth[i] - mean
		ssRes += r * r
		ssTot += t * t
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// MAPE is the mean absolute percentage error, expressed as a fraction.
func MAPE(pred, truth []float64) float64 {
	if len(pred) == 0 {
		return math.NaN()
	}
	s := make([]float64, len(pred))
	for i := range pred {
		s[i] = math.Abs(pred[i]-truth[i]) / math.Abs(truth[i])
	}
	return floats.Sum(s) / float64(len(s))
}

// ComputeMetrics bundles the three reporting metrics, rounded to 4 decimals.
func ComputeMetrics(pred, truth []float64) model.Metrics {
	return model.Metrics{
		RMSE: round4(RMSE(pred, truth)),
		R2:   round4(R2(pred, truth)),
		MAPE: round4(MAPE(pred, truth)),
	}
}

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
