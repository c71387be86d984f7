package boost

import (
	"math"
	"sort"
)

// node is one node of a regression tree. Leaves carry a value; internal
// nodes split on x[Feature] < Threshold.
type node struct {
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      *node   `json:"left,omitempty"`
	Right     *node   `json:"right,omitempty"`
	Leaf      bool    `json:"leaf,omitempty"`
	Value     float64 `json:"value,omitempty"`
}

// minLeafSize is the smallest sample count a split may leave on either side.
const minLeafSize = 2

// treeBuilder grows one depth-limited CART tree on the current residuals.
type treeBuilder struct {
	x        [][]float64
	grad     []float64 // residuals the tree regresses on
	features []int     // column subsample for this tree
	maxDepth int
	alpha    float64
	lambda   float64
}

func (b *treeBuilder) build(indices []int, depth int) *node {
	if depth >= b.maxDepth || len(indices) < 2*minLeafSize {
		return &node{Leaf: true, Value: b.leafValue(indices)}
	}

	feature, threshold, ok := b.bestSplit(indices)
	if !ok {
		return &node{Leaf: true, Value: b.leafValue(indices)}
	}

	var left, right []int
	for _, i := range indices {
		if b.x[i][feature] < threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &node{
		Feature:   feature,
		Threshold: threshold,
		Left:      b.build(left, depth+1),
		Right:     b.build(right, depth+1),
	}
}

// bestSplit scans every candidate feature for the split minimizing the sum of
// squared errors of the two children.
func (b *treeBuilder) bestSplit(indices []int) (feature int, threshold float64, ok bool) {
	bestSSE := math.Inf(1)

	order := make([]int, len(indices))
	for _, f := range b.features {
		copy(order, indices)
		sort.Slice(order, func(i, j int) bool { return b.x[order[i]][f] < b.x[order[j]][f] })

		// Prefix sums over the sorted residuals allow O(1) SSE per split point.
		n := len(order)
		sum, sumSq := 0.0, 0.0
		prefix := make([]float64, n+1)
		prefixSq := make([]float64, n+1)
		for i, idx := range order {
			sum += b.grad[idx]
			sumSq += b.grad[idx] * b.grad[idx]
			prefix[i+1] = sum
			prefixSq[i+1] = sumSq
		}

		for i := minLeafSize; i <= n-minLeafSize; i++ {
			lo, hi := b.x[order[i-1]][f], b.x[order[i]][f]
			if lo == hi {
				continue // cannot separate identical values
			}
			leftSSE := prefixSq[i] - prefix[i]*prefix[i]/float64(i)
			rightN := float64(n - i)
			rightSum := sum - prefix[i]
			rightSSE := (sumSq - prefixSq[i]) - rightSum*rightSum/rightN
			if sse := leftSSE + rightSSE; sse < bestSSE {
				bestSSE = sse
				feature = f
				threshold = (lo + hi) / 2
				ok = true
			}
		}
	}

	return feature, threshold, ok
}

// leafValue is the regularized mean residual: L2 shrinks the denominator,
// L1 soft-thresholds the numerator.
func (b *treeBuilder) leafValue(indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range indices {
		sum += b.grad[i]
	}
	mag := math.Max(math.Abs(sum)-b.alpha, 0)
	return math.Copysign(mag, sum) / (float64(len(indices)) + b.lambda)
}

// predict walks the tree for one encoded row.
func (n *node) predict(row []float64) float64 {
	for !n.Leaf {
		if row[n.Feature] < n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}
