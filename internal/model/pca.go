// Package model wraps the two exploratory estimators. Both are stock
// implementations; the interesting work happened upstream in the feature
// pipeline.
package model

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Ranked is one feature with a score, ordered by descending score.
type Ranked struct {
	Feature string
	Score   float64
}

// PCAResult holds the variance decomposition and the first-component
// loading ranking.
type PCAResult struct {
	// CumVar[k] is the share of total variance explained by the first
	// k+1 components.
	CumVar []float64

	// Ranking orders features by |loading| on the first component.
	Ranking []Ranked
}

// PCA fits principal components on the full feature matrix, no truncation.
func PCA(x *mat.Dense, featureNames []string) (*PCAResult, error) {
	_, c := x.Dims()
	if c != len(featureNames) {
		return nil, fmt.Errorf("matrix has %d columns, %d feature names", c, len(featureNames))
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, fmt.Errorf("pca failed to converge")
	}

	vars := pc.VarsTo(nil)
	total := 0.0
	for _, v := range vars {
		total += v
	}

	if total == 0.0 {
		return nil, fmt.Errorf("zero total variance in pca")
	}

	cum := make([]float64, len(vars))
	run := 0.0
	for ind, v := range vars {
		run += v
		cum[ind] = run / total
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	ranking := make([]Ranked, len(featureNames))
	for ind, name := range featureNames {
		ranking[ind] = Ranked{Feature: name, Score: math.Abs(vecs.At(ind, 0))}
	}

	sort.SliceStable(ranking, func(i, j int) bool { return ranking[i].Score > ranking[j].Score })

	return &PCAResult{CumVar: cum, Ranking: ranking}, nil
}

// TopN returns the first n feature names of a ranking, fewer if the
// ranking is shorter.
func TopN(ranking []Ranked, n int) []string {
	if n > len(ranking) {
		n = len(ranking)
	}

	var names []string
	for _, r := range ranking[:n] {
		names = append(names, r.Feature)
	}

	return names
}

// Overlap returns the names present in both lists, in the order of the
// first.
func Overlap(a, b []string) []string {
	inB := make(map[string]bool)
	for _, name := range b {
		inB[name] = true
	}

	var out []string
	for _, name := range a {
		if inB[name] {
			out = append(out, name)
		}
	}

	return out
}
