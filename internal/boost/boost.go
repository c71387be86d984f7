// Package boost implements least-squares gradient boosting over depth-limited
// regression trees, with a JSON-serializable model artifact.
package boost

import (
	"encoding/json"
	"math/rand"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"
)

// ModelType tags persisted model artifacts.
const ModelType = "gbtree"

// Regressor is a fitted gradient-boosted tree ensemble.
type Regressor struct {
	ModelType    string  `json:"model_type"`
	Base         float64 `json:"base_score"`
	LearningRate float64 `json:"learning_rate"`
	Trees        []*node `json:"trees"`
	NumFeatures  int     `json:"num_features"`
}

// Fit trains an ensemble on the feature matrix x and target y. The seed
// drives row and column subsampling, so a fixed seed reproduces the model.
func Fit(x [][]float64, y []float64, p Params, seed int64) (*Regressor, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(x) == 0 {
		return nil, eris.New("boost: empty training matrix")
	}
	if len(x) != len(y) {
		return nil, eris.Errorf("boost: %d rows but %d targets", len(x), len(y))
	}
	width := len(x[0])
	if width == 0 {
		return nil, eris.New("boost: zero-width training matrix")
	}
	for i, row := range x {
		if len(row) != width {
			return nil, eris.Errorf("boost: row %d has %d columns, want %d", i, len(row), width)
		}
	}

	rng := rand.New(rand.NewSource(seed))

	r := &Regressor{
		ModelType:    ModelType,
		Base:         stat.Mean(y, nil),
		LearningRate: p.LearningRate,
		NumFeatures:  width,
	}

	// Current ensemble prediction per row; trees fit the residual.
	pred := make([]float64, len(y))
	for i := range pred {
		pred[i] = r.Base
	}
	grad := make([]float64, len(y))

	rowCount := max(1, int(p.Subsample*float64(len(x))))
	colCount := max(1, int(p.ColsampleByTree*float64(width)))

	for t := 0; t < p.NEstimators; t++ {
		for i := range grad {
			grad[i] = y[i] - pred[i]
		}

		b := &treeBuilder{
			x:        x,
			grad:     grad,
			features: sampleInts(rng, width, colCount),
			maxDepth: p.MaxDepth,
			alpha:    p.RegAlpha,
			lambda:   p.RegLambda,
		}
		tree := b.build(sampleInts(rng, len(x), rowCount), 0)
		r.Trees = append(r.Trees, tree)

		for i, row := range x {
			pred[i] += p.LearningRate * tree.predict(row)
		}
	}

	return r, nil
}

// Predict returns the prediction for one encoded row.
func (r *Regressor) Predict(row []float64) (float64, error) {
	if len(row) != r.NumFeatures {
		return 0, eris.Errorf("boost: row has %d features, model expects %d", len(row), r.NumFeatures)
	}
	v := r.Base
	for _, tree := range r.Trees {
		v += r.LearningRate * tree.predict(row)
	}
	return v, nil
}

// PredictBatch predicts every row of an encoded matrix.
func (r *Regressor) PredictBatch(x [][]float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, row := range x {
		v, err := r.Predict(row)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Marshal serializes the model to its JSON artifact form.
func (r *Regressor) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	return data, eris.Wrap(err, "boost: marshal model")
}

// Unmarshal loads a model from its JSON artifact form.
func Unmarshal(data []byte) (*Regressor, error) {
	var r Regressor
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, eris.Wrap(err, "boost: unmarshal model")
	}
	if r.NumFeatures == 0 || len(r.Trees) == 0 {
		return nil, eris.New("boost: model artifact is incomplete")
	}
	return &r, nil
}

// sampleInts draws k distinct ints from [0, n) in random order (all of them,
// shuffled, when k >= n).
func sampleInts(rng *rand.Rand, n, k int) []int {
	perm := rng.Perm(n)
	if k > n {
		k = n
	}
	return perm[:k]
}
