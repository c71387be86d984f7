package boost

import "github.com/rotisserie/eris"

// Params are the gradient-boosting hyperparameters searched by the trainer.
type Params struct {
	LearningRate    float64 `json:"learning_rate"`
	MaxDepth        int     `json:"max_depth"`
	NEstimators     int     `json:"n_estimators"`
	Subsample       float64 `json:"subsample"`
	ColsampleByTree float64 `json:"colsample_bytree"`
	RegAlpha        float64 `json:"reg_alpha"`  // L1 regularization on leaf values
	RegLambda       float64 `json:"reg_lambda"` // L2 regularization on leaf values
}

// DefaultParams returns a reasonable untuned configuration.
func DefaultParams() Params {
	return Params{
		LearningRate:    0.1,
		MaxDepth:        4,
		NEstimators:     100,
		Subsample:       1.0,
		ColsampleByTree: 1.0,
	}
}

// Validate rejects degenerate hyperparameters before fitting.
func (p Params) Validate() error {
	switch {
	case p.LearningRate <= 0:
		return eris.New("boost: learning_rate must be positive")
	case p.MaxDepth < 1:
		return eris.New("boost: max_depth must be at least 1")
	case p.NEstimators < 1:
		return eris.New("boost: n_estimators must be at least 1")
	case p.Subsample <= 0 || p.Subsample > 1:
		return eris.New("boost: subsample must be in (0, 1]")
	case p.ColsampleByTree <= 0 || p.ColsampleByTree > 1:
		return eris.New("boost: colsample_bytree must be in (0, 1]")
	case p.RegAlpha < 0 || p.RegLambda < 0:
		return eris.New("boost: regularization strengths must be non-negative")
	}
	return nil
}

// Map flattens Params for the persisted metadata's hyperparameters object.
func (p Params) Map() map[string]float64 {
	return map[string]float64{
		"learning_rate":    p.LearningRate,
		"max_depth":        float64(p.MaxDepth),
		"n_estimators":     float64(p.NEstimators),
		"subsample":        p.Subsample,
		"colsample_bytree": p.ColsampleByTree,
		"reg_alpha":        p.RegAlpha,
		"reg_lambda":       p.RegLambda,
	}
}
