package train

import (
	"context"
	"math"
	"math/rand"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/odens-ab/pricing-cli/internal/boost"
)

// Space bounds the hyperparameter search, [min, max] per knob.
type Space struct {
	LearningRate    [2]float64
	MaxDepth        [2]int
	NEstimators     [2]int
	Subsample       [2]float64
	ColsampleByTree [2]float64
	RegAlpha        [2]float64
	RegLambda       [2]float64
}

// DefaultSpace is the recalibrated search space used for pricing models.
func DefaultSpace() Space {
	return Space{
		LearningRate:    [2]float64{0.005, 1.0},
		MaxDepth:        [2]int{3, 10},
		NEstimators:     [2]int{50, 400},
		Subsample:       [2]float64{0.6, 1.0},
		ColsampleByTree: [2]float64{0.6, 1.0},
		RegAlpha:        [2]float64{0.0, 10.0},
		RegLambda:       [2]float64{0.0, 10.0},
	}
}

// Objective scores one hyperparameter candidate; lower is better.
type Objective func(ctx context.Context, p boost.Params) (float64, error)

// SearchStrategy finds good hyperparameters within a trial budget. Any local
// or distributed optimizer satisfying this contract is substitutable.
type SearchStrategy interface {
	Search(ctx context.Context, objective Objective, space Space, trials int) (boost.Params, float64, error)
}

// RandomSearch samples the space uniformly at random. A trial whose fit fails
// is scored as the worst possible value and excluded from best-trial
// selection rather than aborting the search.
type RandomSearch struct {
	rng *rand.Rand
}

// NewRandomSearch creates a RandomSearch with the given sampling seed.
func NewRandomSearch(seed int64) *RandomSearch {
	return &RandomSearch{rng: rand.New(rand.NewSource(seed))}
}

// Search implements SearchStrategy.
func (s *RandomSearch) Search(ctx context.Context, objective Objective, space Space, trials int) (boost.Params, float64, error) {
	var best boost.Params
	bestScore := math.Inf(1)

	for trial := 0; trial < trials; trial++ {
		if err := ctx.Err(); err != nil {
			return boost.Params{}, 0, eris.Wrap(err, "train: search cancelled")
		}

		p := s.sample(space)
		score, err := objective(ctx, p)
		if err != nil {
			zap.L().Warn("train: trial failed", zap.Int("trial", trial), zap.Error(err))
			continue
		}

		zap.L().Debug("train: trial scored",
			zap.Int("trial", trial),
			zap.Float64("rmse", score),
			zap.Float64("learning_rate", p.LearningRate),
			zap.Int("max_depth", p.MaxDepth),
			zap.Int("n_estimators", p.NEstimators),
		)

		if score < bestScore {
			bestScore = score
			best = p
		}
	}

	if math.IsInf(bestScore, 1) {
		return boost.Params{}, 0, eris.New("train: no successful trials")
	}
	return best, bestScore, nil
}

func (s *RandomSearch) sample(space Space) boost.Params {
	return boost.Params{
		LearningRate:    s.uniform(space.LearningRate),
		MaxDepth:        s.uniformInt(space.MaxDepth),
		NEstimators:     s.uniformInt(space.NEstimators),
		Subsample:       s.uniform(space.Subsample),
		ColsampleByTree: s.uniform(space.ColsampleByTree),
		RegAlpha:        s.uniform(space.RegAlpha),
		RegLambda:       s.uniform(space.RegLambda),
	}
}

func (s *RandomSearch) uniform(bounds [2]float64) float64 {
	return bounds[0] + s.rng.Float64()*(bounds[1]-bounds[0])
}

func (s *RandomSearch) uniformInt(bounds [2]int) int {
	return bounds[0] + s.rng.Intn(bounds[1]-bounds[0]+1)
}
