package model

import (
	"fmt"
	"math/rand"
	"sort"

	randomforest "github.com/malaschitz/randomForest"
)

// Classifier is the bagged-tree ensemble over the encoded features. Votes
// are weighted by inverse class frequency, which offsets the label
// imbalance -- leavers are a small minority.
type Classifier struct {
	forest   randomforest.Forest
	features []string
}

// TrainForest fits bagged trees on x and the binary labels y.
func TrainForest(x [][]float64, y []int, featureNames []string, trees int) (*Classifier, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("no training rows")
	}

	if len(x) != len(y) {
		return nil, fmt.Errorf("feature rows %d, labels %d", len(x), len(y))
	}

	if len(x[0]) != len(featureNames) {
		return nil, fmt.Errorf("row width %d, %d feature names", len(x[0]), len(featureNames))
	}

	if trees <= 0 {
		return nil, fmt.Errorf("tree count must be positive, got %d", trees)
	}

	cl := &Classifier{features: featureNames}
	cl.forest.Data = randomforest.ForestData{X: x, Class: y}
	cl.forest.Train(trees)

	return cl, nil
}

// Predict returns the weighted-vote class for one feature row.
func (cl *Classifier) Predict(row []float64) int {
	votes := cl.forest.WeightVote(row)

	best := 0
	for ind, v := range votes {
		if v > votes[best] {
			best = ind
		}
	}

	return best
}

// PredictAll classifies every row.
func (cl *Classifier) PredictAll(x [][]float64) []int {
	out := make([]int, len(x))
	for ind, row := range x {
		out[ind] = cl.Predict(row)
	}

	return out
}

// Importance ranks features by permutation importance on held-out data:
// the drop in accuracy when one feature's column is shuffled. The shuffle
// is seeded, so the ranking is reproducible.
func (cl *Classifier) Importance(x [][]float64, y []int, seed int64) []Ranked {
	base := Accuracy(y, cl.PredictAll(x))
	rng := rand.New(rand.NewSource(seed))

	ranking := make([]Ranked, len(cl.features))
	col := make([]float64, len(x))
	row := make([]float64, 0)
	for j, name := range cl.features {
		for i := range x {
			col[i] = x[i][j]
		}

		perm := rng.Perm(len(x))

		pred := make([]int, len(x))
		for i := range x {
			row = append(row[:0], x[i]...)
			row[j] = col[perm[i]]
			pred[i] = cl.Predict(row)
		}

		ranking[j] = Ranked{Feature: name, Score: base - Accuracy(y, pred)}
	}

	sort.SliceStable(ranking, func(i, j int) bool { return ranking[i].Score > ranking[j].Score })

	return ranking
}
