// Package pipeline assembles the model table: column selection, one-hot
// encoding, the seeded sample, scaling and the train/test split.
package pipeline

import (
	"fmt"

	"leavers/internal/features"
	"leavers/internal/fetch"
	"leavers/internal/frame"
)

// yearCategory is the name of the categorical rendering of the survey year.
const yearCategory = "yr"

// categoricals one-hot encoded for the model, reference category dropped.
var categoricals = []string{
	features.ColEduc,
	features.ColRace,
	features.ColCitizen,
	features.ColClassWkr,
	features.ColOcc,
	yearCategory,
}

// binaries enter the model as they are.
var binaries = []string{
	features.ColMale,
	features.ColHispanic,
	features.ColParttime,
	features.ColDisabled,
	features.ColMarried,
	features.ColKids,
}

// continuous columns are standardized on the sample.
var continuous = []string{
	features.VarAge,
	features.ColLogInc,
}

// Encode restricts the derived table to the model columns and one-hot
// encodes the categoricals.
func Encode(df *frame.DF) (*frame.DF, error) {
	yearCol, e := df.Column(fetch.YearColumn)
	if e != nil {
		return nil, e
	}

	yrs := make([]string, yearCol.Len())
	for row, y := range yearCol.AsInt() {
		yrs[row] = fmt.Sprintf("y%d", y)
	}

	yrCol, e := frame.NewCol(yearCategory, yrs)
	if e != nil {
		return nil, e
	}

	keep := []string{features.VarWeight, features.ColLeaver}
	keep = append(keep, continuous...)
	keep = append(keep, binaries...)
	keep = append(keep, categoricals[:len(categoricals)-1]...)

	dfOut, e := df.KeepColumns(keep...)
	if e != nil {
		return nil, e
	}

	dfOut = dfOut.Copy()
	if e = dfOut.AppendColumn(yrCol); e != nil {
		return nil, e
	}

	for _, cName := range categoricals {
		if dfOut, e = dfOut.OneHot(cName); e != nil {
			return nil, e
		}
	}

	return dfOut, nil
}

// ModelSet is the sampled, scaled, split data handed to the estimators.
type ModelSet struct {
	// Sample is the scaled sample before the split; the variance
	// decomposition runs on all of it.
	Sample *frame.DF

	Train *frame.DF
	Test  *frame.DF

	// Features is every model column except the weight and the label, in
	// table order.
	Features []string
}

// Prepare draws the seeded sample from the encoded table, standardizes the
// continuous columns on the sample and splits train/test. A sample size
// larger than the table is an error, not a clamp.
func Prepare(df *frame.DF, sampleSize int, seed int64, testFrac float64) (*ModelSet, error) {
	sample, e := df.Sample(sampleSize, seed)
	if e != nil {
		return nil, e
	}

	if sample, e = sample.Standardize(continuous...); e != nil {
		return nil, e
	}

	train, test, e := sample.Split(testFrac, seed)
	if e != nil {
		return nil, e
	}

	var feats []string
	for _, name := range sample.ColumnNames() {
		if name == features.VarWeight || name == features.ColLeaver {
			continue
		}

		feats = append(feats, name)
	}

	return &ModelSet{Sample: sample, Train: train, Test: test, Features: feats}, nil
}

// XY extracts the feature rows and labels of one side of the split.
func (ms *ModelSet) XY(df *frame.DF) (x [][]float64, y []int, err error) {
	if x, err = df.Rows(ms.Features...); err != nil {
		return nil, nil, err
	}

	lbl, err := df.Column(features.ColLeaver)
	if err != nil {
		return nil, nil, err
	}

	return x, lbl.AsInt(), nil
}
