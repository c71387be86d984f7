// Package augment generates synthetic, statistically plausible quotes from a
// small table of per-profile base prices.
package augment

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/odens-ab/pricing-cli/internal/model"
)

// Generator draws synthetic quotes. The random source is injected so tests
// can seed it and assert deterministic sequences.
type Generator struct {
	tenant     string
	basePrices map[string]float64
	profiles   []string // sorted keys of basePrices, for deterministic choice order
	alloys     []string
	surfaces   []string
	rng        *rand.Rand
	now        func() time.Time
}

// NewGenerator creates a Generator for the given tenant and base-price table.
func NewGenerator(tenant string, basePrices map[string]float64, rng *rand.Rand) (*Generator, error) {
	if len(basePrices) == 0 {
		return nil, eris.New("augment: base-price table is empty")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{
		tenant:     tenant,
		basePrices: basePrices,
		profiles:   sortedKeys(basePrices),
		alloys:     sortedKeys(Alloys),
		surfaces:   sortedKeys(SurfaceTreatments),
		rng:        rng,
		now:        time.Now,
	}, nil
}

// Run generates exactly n valid synthetic quotes. Draws that fail schema
// validation are logged and retried; they do not count toward n.
func (g *Generator) Run(n int) []model.Quote {
	quotes := make([]model.Quote, 0, n)
	for len(quotes) < n {
		q := g.generate()
		if err := q.Validate(); err != nil {
			zap.L().Warn("augment: rejecting draw", zap.String("quote_id", q.QuoteID), zap.Error(err))
			continue
		}
		quotes = append(quotes, *q)
	}
	return quotes
}

// generate draws one candidate quote.
func (g *Generator) generate() *model.Quote {
	profile := g.profiles[g.rng.Intn(len(g.profiles))]
	basePrice := g.basePrices[profile]

	quantity := (20 + g.rng.Intn(181)) * 1000 // multiples of 1000 in [20000, 200000]
	weight := round3(g.rng.NormFloat64()*0.2 + 1.2)
	length := round2(g.rng.NormFloat64()*2 + 24)

	alloy := g.alloys[g.rng.Intn(len(g.alloys))]
	surface := g.surfaces[g.rng.Intn(len(g.surfaces))]
	rawPrice := round2(g.rng.NormFloat64()*0.1 + EURPerKgBase)

	price := basePrice
	price *= Alloys[alloy]
	price *= SurfaceTreatments[surface]
	price = VolumeDiscount(price, quantity)
	price = round2(price + g.rng.NormFloat64()*0.01)

	q := &model.Quote{
		UserID:                g.tenant,
		QuoteID:               uuid.NewString(),
		QuoteDate:             g.randomWeekday().Format("2006-01-02"),
		SourceFile:            "augmented",
		ProfileRef:            profile,
		WeightKgM:             weight,
		LengthM:               length,
		Quantity:              quantity,
		SurfaceTreatment:      model.Ptr(surface),
		Alloy:                 alloy,
		RawMaterialPriceEURKg: model.Ptr(rawPrice),
		QuotedPriceSEK:        price,
	}
	q.Normalize()
	return q
}

// randomWeekday draws a Monday-Friday date within the prior 120 days.
func (g *Generator) randomWeekday() time.Time {
	today := g.now()
	for {
		d := today.AddDate(0, 0, -g.rng.Intn(121))
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			return d
		}
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
