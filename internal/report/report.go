package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"leavers/internal/model"
)

// Summary collects everything the run reports.
type Summary struct {
	RawRows      int
	EligibleRows int
	SampleRows   int
	TrainRows    int
	TestRows     int
	LeaverShare  float64

	PCA       *model.PCAResult
	Confusion *model.Confusion
	Forest    []model.Ranked

	// TopOverlap is the intersection of the two top-10 lists.
	TopOverlap []string
}

const topN = 10

// chart dimensions, pixels
const (
	chartWidth  = 900.0
	chartHeight = 500.0
)

// Compare fills TopOverlap from the two rankings.
func (s *Summary) Compare() {
	s.TopOverlap = model.Overlap(model.TopN(s.PCA.Ranking, topN), model.TopN(s.Forest, topN))
}

// Write prints the summary tables.
func (s *Summary) Write(w io.Writer) error {
	fmt.Fprintf(w, "rows fetched:   %d\n", s.RawRows)
	fmt.Fprintf(w, "rows eligible:  %d\n", s.EligibleRows)
	fmt.Fprintf(w, "rows sampled:   %d (train %d / test %d)\n", s.SampleRows, s.TrainRows, s.TestRows)
	fmt.Fprintf(w, "leaver share:   %.4f\n\n", s.LeaverShare)

	fmt.Fprintln(w, "cumulative explained variance:")
	for ind, v := range s.PCA.CumVar {
		fmt.Fprintf(w, "  pc%-3d %.4f\n", ind+1, v)
	}

	fmt.Fprintln(w, "\nconfusion matrix (test):")
	fmt.Fprintln(w, s.Confusion)
	fmt.Fprintf(w, "accuracy:  %.4f\n", s.Confusion.Accuracy())
	fmt.Fprintf(w, "precision: %.4f\n", s.Confusion.Precision())
	fmt.Fprintf(w, "recall:    %.4f\n", s.Confusion.Recall())
	fmt.Fprintf(w, "f1:        %.4f\n\n", s.Confusion.F1())

	fmt.Fprintf(w, "top %d by pca loading:      %s\n", topN, strings.Join(model.TopN(s.PCA.Ranking, topN), ", "))
	fmt.Fprintf(w, "top %d by forest importance: %s\n", topN, strings.Join(model.TopN(s.Forest, topN), ", "))
	fmt.Fprintf(w, "overlap: %s\n", strings.Join(s.TopOverlap, ", "))

	return nil
}

// Plots writes the three charts under outDir.
func (s *Summary) Plots(outDir string) error {
	if e := os.MkdirAll(outDir, 0o755); e != nil {
		return fmt.Errorf("creating output dir: %w", e)
	}

	x := make([]float64, len(s.PCA.CumVar))
	for ind := range x {
		x[ind] = float64(ind + 1)
	}

	p := NewPlot(WithTitle("cumulative explained variance"),
		WithWidth(chartWidth), WithHeight(chartHeight),
		WithXlabel("component"), WithYlabel("share of variance"))
	p.Line(x, s.PCA.CumVar, "cumulative", "steelblue")
	if e := p.Save(filepath.Join(outDir, "variance.html")); e != nil {
		return e
	}

	if e := rankedBar(s.PCA.Ranking, "pca loadings (first component)", "|loading|",
		filepath.Join(outDir, "loadings.html")); e != nil {
		return e
	}

	return rankedBar(s.Forest, "forest permutation importance", "accuracy drop",
		filepath.Join(outDir, "importance.html"))
}

func rankedBar(ranking []model.Ranked, title, ylabel, fileName string) error {
	var (
		labels []string
		vals   []float64
	)
	for _, r := range ranking {
		labels = append(labels, r.Feature)
		vals = append(vals, r.Score)
	}

	p := NewPlot(WithTitle(title), WithWidth(chartWidth), WithHeight(chartHeight),
		WithYlabel(ylabel))
	p.Bar(labels, vals, "")

	return p.Save(fileName)
}
