package train

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odens-ab/pricing-cli/internal/boost"
)

func TestRandomSearchFindsBest(t *testing.T) {
	s := NewRandomSearch(1)

	calls := 0
	// Score by distance of learning_rate to 0.3, so the best trial is the
	// sampled candidate closest to it.
	objective := func(_ context.Context, p boost.Params) (float64, error) {
		calls++
		d := p.LearningRate - 0.3
		if d < 0 {
			d = -d
		}
		return d, nil
	}

	best, score, err := s.Search(context.Background(), objective, DefaultSpace(), 20)
	require.NoError(t, err)
	assert.Equal(t, 20, calls)
	assert.InDelta(t, 0.3, best.LearningRate, 0.3)
	assert.GreaterOrEqual(t, score, 0.0)
}

func TestRandomSearchSamplesWithinSpace(t *testing.T) {
	s := NewRandomSearch(2)
	space := DefaultSpace()

	objective := func(_ context.Context, p boost.Params) (float64, error) {
		assert.GreaterOrEqual(t, p.LearningRate, space.LearningRate[0])
		assert.LessOrEqual(t, p.LearningRate, space.LearningRate[1])
		assert.GreaterOrEqual(t, p.MaxDepth, space.MaxDepth[0])
		assert.LessOrEqual(t, p.MaxDepth, space.MaxDepth[1])
		assert.GreaterOrEqual(t, p.NEstimators, space.NEstimators[0])
		assert.LessOrEqual(t, p.NEstimators, space.NEstimators[1])
		assert.NoError(t, p.Validate())
		return 1.0, nil
	}

	_, _, err := s.Search(context.Background(), objective, space, 50)
	require.NoError(t, err)
}

func TestRandomSearchSkipsFailedTrials(t *testing.T) {
	s := NewRandomSearch(3)

	calls := 0
	objective := func(_ context.Context, p boost.Params) (float64, error) {
		calls++
		if calls%2 == 1 {
			return 0, eris.New("degenerate fit")
		}
		return float64(calls), nil
	}

	best, score, err := s.Search(context.Background(), objective, DefaultSpace(), 10)
	require.NoError(t, err)
	// The first successful trial (call 2) has the lowest score.
	assert.Equal(t, 2.0, score)
	assert.NoError(t, best.Validate())
}

func TestRandomSearchAllTrialsFail(t *testing.T) {
	s := NewRandomSearch(4)

	objective := func(_ context.Context, p boost.Params) (float64, error) {
		return 0, eris.New("always fails")
	}

	_, _, err := s.Search(context.Background(), objective, DefaultSpace(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no successful trials")
}

func TestRandomSearchCancellation(t *testing.T) {
	s := NewRandomSearch(5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	objective := func(_ context.Context, p boost.Params) (float64, error) {
		return 1.0, nil
	}

	_, _, err := s.Search(ctx, objective, DefaultSpace(), 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
