package train

import "math/rand"

// kfold splits row indices [0, n) into k shuffled folds. The seed fixes the
// shuffle so cross-validation scores are reproducible across runs.
func kfold(n, k int, seed int64) [][]int {
	if k > n {
		k = n
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)

	folds := make([][]int, k)
	for i, idx := range perm {
		folds[i%k] = append(folds[i%k], idx)
	}
	return folds
}

// splitFold returns the train indices complementing the given test fold.
func splitFold(folds [][]int, test int) (train []int) {
	for i, fold := range folds {
		if i == test {
			continue
		}
		train = append(train, fold...)
	}
	return train
}
