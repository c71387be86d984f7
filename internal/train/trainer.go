// Package train runs hyperparameter search, fits the final pricing model and
// assembles its metadata contract.
package train

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/odens-ab/pricing-cli/internal/boost"
	"github.com/odens-ab/pricing-cli/internal/config"
	"github.com/odens-ab/pricing-cli/internal/feature"
	"github.com/odens-ab/pricing-cli/internal/model"
)

// Trainer tunes and fits a pricing model for one tenant.
type Trainer struct {
	cfg      config.TrainConfig
	strategy SearchStrategy
	tenant   string
	now      func() time.Time
}

// Result is a fitted model plus its immutable metadata.
type Result struct {
	Model    *boost.Regressor
	Metadata model.Metadata
}

// New creates a Trainer. A nil strategy defaults to random search seeded from
// the fold seed.
func New(cfg config.TrainConfig, strategy SearchStrategy, tenant string) *Trainer {
	if strategy == nil {
		strategy = NewRandomSearch(cfg.FoldSeed)
	}
	return &Trainer{cfg: cfg, strategy: strategy, tenant: tenant, now: time.Now}
}

// Train searches hyperparameters by cross-validated RMSE, fits the final
// model on the full matrix, and scores it with a second independent k-fold
// pass. The matrix's column list becomes the metadata feature contract.
func (t *Trainer) Train(ctx context.Context, m *feature.Matrix) (*Result, error) {
	if len(m.Rows) < 2*t.cfg.Folds {
		return nil, eris.Errorf("train: %d rows is too few for %d-fold cross-validation", len(m.Rows), t.cfg.Folds)
	}

	objective := func(ctx context.Context, p boost.Params) (float64, error) {
		return t.crossValRMSE(ctx, m, p)
	}

	zap.L().Info("train: starting hyperparameter search",
		zap.Int("trials", t.cfg.Trials),
		zap.Int("rows", len(m.Rows)),
		zap.Int("features", len(m.Columns)),
	)
	best, bestScore, err := t.strategy.Search(ctx, objective, DefaultSpace(), t.cfg.Trials)
	if err != nil {
		return nil, err
	}
	zap.L().Info("train: search complete", zap.Float64("cv_rmse", bestScore))

	final, err := boost.Fit(m.Rows, m.Target, best, t.cfg.FoldSeed)
	if err != nil {
		return nil, eris.Wrap(err, "train: final fit")
	}

	metrics, err := t.crossValMetrics(ctx, m, best)
	if err != nil {
		return nil, err
	}
	zap.L().Info("train: model evaluated",
		zap.Float64("rmse", metrics.RMSE),
		zap.Float64("r2", metrics.R2),
		zap.Float64("mape", metrics.MAPE),
	)

	return &Result{
		Model: final,
		Metadata: model.Metadata{
			ModelType:       boost.ModelType,
			TrainedOn:       t.now().Format("2006-01-02 15:04"),
			Metrics:         metrics,
			FeaturesUsed:    append([]string{}, m.Columns...),
			Hyperparameters: best.Map(),
			User:            t.tenant,
			Version:         model.SchemaVersion,
		},
	}, nil
}

// crossValRMSE is the search objective: mean held-out RMSE across the folds.
func (t *Trainer) crossValRMSE(ctx context.Context, m *feature.Matrix, p boost.Params) (float64, error) {
	pred, truth, err := t.crossValPredict(ctx, m, p)
	if err != nil {
		return 0, err
	}
	return RMSE(pred, truth), nil
}

// crossValMetrics pools held-out predictions from a fresh k-fold pass and
// computes the reporting metrics, mirroring how the model card is produced.
func (t *Trainer) crossValMetrics(ctx context.Context, m *feature.Matrix, p boost.Params) (model.Metrics, error) {
	pred, truth, err := t.crossValPredict(ctx, m, p)
	if err != nil {
		return model.Metrics{}, eris.Wrap(err, "train: evaluation pass")
	}
	return ComputeMetrics(pred, truth), nil
}

func (t *Trainer) crossValPredict(ctx context.Context, m *feature.Matrix, p boost.Params) (pred, truth []float64, err error) {
	folds := kfold(len(m.Rows), t.cfg.Folds, t.cfg.FoldSeed)

	for f := range folds {
		if err := ctx.Err(); err != nil {
			return nil, nil, eris.Wrap(err, "train: cross-validation cancelled")
		}

		trainIdx := splitFold(folds, f)
		x := make([][]float64, len(trainIdx))
		y := make([]float64, len(trainIdx))
		for i, idx := range trainIdx {
			x[i] = m.Rows[idx]
			y[i] = m.Target[idx]
		}

		fitted, err := boost.Fit(x, y, p, t.cfg.FoldSeed)
		if err != nil {
			return nil, nil, err
		}
		for _, idx := range folds[f] {
			v, err := fitted.Predict(m.Rows[idx])
			if err != nil {
				return nil, nil, err
			}
			pred = append(pred, v)
			truth = append(truth, m.Target[idx])
		}
	}
	return pred, truth, nil
}
