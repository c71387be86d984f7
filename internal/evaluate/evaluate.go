// Package evaluate replays an independent quote set through a trained model
// and reports its error metrics. No retraining happens here.
package evaluate

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/odens-ab/pricing-cli/internal/boost"
	"github.com/odens-ab/pricing-cli/internal/feature"
	"github.com/odens-ab/pricing-cli/internal/model"
	"github.com/odens-ab/pricing-cli/internal/train"
)

// Report is the outcome of one evaluation run.
type Report struct {
	Metrics   model.Metrics
	Evaluated int // rows that survived validation and projection
	Dropped   int // rows rejected by validation or missing predictive fields
}

// Run validates each quote, encodes the survivors against the metadata's
// feature contract, predicts, and computes RMSE, R² and MAPE. Invalid rows
// are dropped and counted, never aborting the batch.
func Run(r *boost.Regressor, md model.Metadata, quotes []model.Quote) (*Report, error) {
	valid := make([]model.Quote, 0, len(quotes))
	dropped := 0
	for i := range quotes {
		if err := quotes[i].Validate(); err != nil {
			dropped++
			zap.L().Warn("evaluate: dropping invalid quote",
				zap.String("quote_id", quotes[i].QuoteID),
				zap.Error(err),
			)
			continue
		}
		valid = append(valid, quotes[i])
	}

	rows, incomplete := feature.RowsFromQuotes(valid)
	dropped += incomplete
	if len(rows) == 0 {
		return nil, eris.New("evaluate: no evaluable quotes after validation")
	}

	m, err := feature.Apply(rows, md.FeaturesUsed)
	if err != nil {
		return nil, err
	}

	pred, err := r.PredictBatch(m.Rows)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Metrics:   train.ComputeMetrics(pred, m.Target),
		Evaluated: len(rows),
		Dropped:   dropped,
	}
	zap.L().Info("evaluate: complete",
		zap.Int("evaluated", report.Evaluated),
		zap.Int("dropped", report.Dropped),
		zap.Float64("rmse", report.Metrics.RMSE),
		zap.Float64("r2", report.Metrics.R2),
		zap.Float64("mape", report.Metrics.MAPE),
	)
	return report, nil
}
