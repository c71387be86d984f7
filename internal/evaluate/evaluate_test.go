package evaluate

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odens-ab/pricing-cli/internal/augment"
	"github.com/odens-ab/pricing-cli/internal/boost"
	"github.com/odens-ab/pricing-cli/internal/config"
	"github.com/odens-ab/pricing-cli/internal/feature"
	"github.com/odens-ab/pricing-cli/internal/model"
	"github.com/odens-ab/pricing-cli/internal/train"
)

func trainedModel(t *testing.T) (*boost.Regressor, model.Metadata, *augment.Generator) {
	t.Helper()

	g, err := augment.NewGenerator("company_alpha",
		map[string]float64{"Glaskil": 2.44, "Fönsterbänk": 3.10},
		rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	rows, dropped := feature.RowsFromQuotes(g.Run(120))
	require.Zero(t, dropped)
	m := feature.Fit(rows)

	tr := train.New(config.TrainConfig{Trials: 2, Folds: 5, FoldSeed: 42},
		train.NewRandomSearch(42), "company_alpha")
	result, err := tr.Train(context.Background(), m)
	require.NoError(t, err)
	return result.Model, result.Metadata, g
}

func TestRunDropsInvalidAndScoresRest(t *testing.T) {
	r, md, g := trainedModel(t)

	quotes := g.Run(9)
	bad := quotes[0]
	bad.QuotedPriceSEK = -1 // fails validation
	quotes = append(quotes, bad)
	require.Len(t, quotes, 10)

	report, err := Run(r, md, quotes)
	require.NoError(t, err)

	assert.Equal(t, 9, report.Evaluated)
	assert.Equal(t, 1, report.Dropped)
	assert.Positive(t, report.Metrics.RMSE)
	assert.GreaterOrEqual(t, report.Metrics.MAPE, 0.0)
}

func TestRunUnseenCategoryStillPredicts(t *testing.T) {
	r, md, g := trainedModel(t)

	quotes := g.Run(5)
	// A profile the model never saw: its dummy is ignored in apply mode.
	quotes[0].ProfileRef = "Okänd-profil"

	report, err := Run(r, md, quotes)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Evaluated)
	assert.Zero(t, report.Dropped)
}

func TestRunAllInvalid(t *testing.T) {
	r, md, g := trainedModel(t)

	quotes := g.Run(3)
	for i := range quotes {
		quotes[i].QuoteDate = ""
	}

	_, err := Run(r, md, quotes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no evaluable quotes")
}
