package frame

import (
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Where returns a new DF holding the rows for which keep returns true.
// The test sees the row index of the receiver.
func (df *DF) Where(keep func(row int) bool) *DF {
	var rows []int
	for row := 0; row < df.RowCount(); row++ {
		if keep(row) {
			rows = append(rows, row)
		}
	}

	return df.Subset(rows)
}

// Join adds the non-key columns of lookup to a copy of df, matching on the
// int column key. Every key value of lookup must be unique and every row of
// df must find a match -- a miss is an error, not a dropped row.
func (df *DF) Join(lookup *DF, key string) (*DF, error) {
	var (
		leftKey, rightKey *Col
		e                 error
	)
	if leftKey, e = df.Column(key); e != nil {
		return nil, e
	}

	if rightKey, e = lookup.Column(key); e != nil {
		return nil, e
	}

	if leftKey.VectorType() != DTint || rightKey.VectorType() != DTint {
		return nil, fmt.Errorf("join key %s must be int", key)
	}

	rowOf := make(map[int]int)
	for row := 0; row < rightKey.Len(); row++ {
		k := rightKey.ElementInt(row)
		if _, ok := rowOf[k]; ok {
			return nil, fmt.Errorf("duplicate key value %d in lookup table", k)
		}

		rowOf[k] = row
	}

	rows := make([]int, leftKey.Len())
	for row := 0; row < leftKey.Len(); row++ {
		var ok bool
		if rows[row], ok = rowOf[leftKey.ElementInt(row)]; !ok {
			return nil, fmt.Errorf("no match in %s lookup for key value %d", key, leftKey.ElementInt(row))
		}
	}

	dfOut := df.Copy()
	for _, name := range lookup.ColumnNames() {
		if name == key {
			continue
		}

		c, _ := lookup.Column(name)
		cOut, _ := NewColVector(name, c.Vector.Subset(rows))
		if e = dfOut.AppendColumn(cOut); e != nil {
			return nil, e
		}
	}

	return dfOut, nil
}

// OneHot replaces the string column colName with k-1 int indicator columns
// named colName<category>. Categories are taken in sorted order and the
// first is the dropped reference.
func (df *DF) OneHot(colName string) (*DF, error) {
	var (
		c *Col
		e error
	)
	if c, e = df.Column(colName); e != nil {
		return nil, e
	}

	if c.VectorType() != DTstring {
		return nil, fmt.Errorf("one-hot column %s must be string", colName)
	}

	seen := make(map[string]bool)
	var cats []string
	for _, v := range c.AsString() {
		if !seen[v] {
			seen[v] = true
			cats = append(cats, v)
		}
	}

	sort.Strings(cats)

	if len(cats) == 0 {
		return nil, fmt.Errorf("one-hot column %s has no categories", colName)
	}

	dfOut := df.Copy()
	if e = dfOut.DropColumns(colName); e != nil {
		return nil, e
	}

	// cats[0] is the reference category
	for _, cat := range cats[1:] {
		ind := make([]int, c.Len())
		for row, v := range c.AsString() {
			if v == cat {
				ind[row] = 1
			}
		}

		var cNew *Col
		if cNew, e = NewCol(colName+cat, ind); e != nil {
			return nil, e
		}

		if e = dfOut.AppendColumn(cNew); e != nil {
			return nil, e
		}
	}

	return dfOut, nil
}

// Sample draws n rows uniformly without replacement. The draw is a pure
// function of seed. n greater than the row count is an error.
func (df *DF) Sample(n int, seed int64) (*DF, error) {
	if n <= 0 {
		return nil, fmt.Errorf("sample size must be positive, got %d", n)
	}

	if n > df.RowCount() {
		return nil, fmt.Errorf("sample size %d exceeds row count %d", n, df.RowCount())
	}

	rng := rand.New(rand.NewSource(seed))
	rows := rng.Perm(df.RowCount())[:n]
	sort.Ints(rows)

	return df.Subset(rows), nil
}

// Split shuffles the rows with seed and partitions them so that the test
// table holds ceil(testFrac * rows) rows.
func (df *DF) Split(testFrac float64, seed int64) (train, test *DF, err error) {
	if testFrac <= 0.0 || testFrac >= 1.0 {
		return nil, nil, fmt.Errorf("test fraction must be in (0,1), got %v", testFrac)
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(df.RowCount())

	nTest := int(float64(df.RowCount())*testFrac + 0.5)
	if nTest == 0 || nTest == df.RowCount() {
		return nil, nil, fmt.Errorf("degenerate split: %d test rows of %d", nTest, df.RowCount())
	}

	return df.Subset(perm[nTest:]), df.Subset(perm[:nTest]), nil
}

// Standardize returns a copy of df with each listed column replaced by a
// float column with zero mean and unit variance, fit on the receiver.
func (df *DF) Standardize(colNames ...string) (*DF, error) {
	dfOut := df.Copy()
	for _, cName := range colNames {
		var (
			c *Col
			e error
		)
		if c, e = dfOut.Column(cName); e != nil {
			return nil, e
		}

		x := c.AsFloat()
		mean, sd := stat.MeanStdDev(x, nil)
		if sd == 0.0 {
			return nil, fmt.Errorf("column %s is constant, cannot standardize", cName)
		}

		z := make([]float64, len(x))
		for ind, xx := range x {
			z[ind] = (xx - mean) / sd
		}

		var cNew *Col
		if cNew, e = NewCol(cName, z); e != nil {
			return nil, e
		}

		pos := 0
		for ind, cc := range dfOut.cols {
			if cc.Name() == cName {
				pos = ind
			}
		}

		dfOut.cols[pos] = cNew
	}

	return dfOut, nil
}

// Matrix builds a gonum dense matrix from the listed columns, coercing ints
// to floats. Rows of the matrix are rows of the table.
func (df *DF) Matrix(colNames ...string) (*mat.Dense, error) {
	if len(colNames) == 0 {
		colNames = df.ColumnNames()
	}

	m := mat.NewDense(df.RowCount(), len(colNames), nil)
	for j, cName := range colNames {
		var (
			c *Col
			e error
		)
		if c, e = df.Column(cName); e != nil {
			return nil, e
		}

		if c.VectorType() == DTstring {
			return nil, fmt.Errorf("column %s is string, cannot place in matrix", cName)
		}

		for i, v := range c.AsFloat() {
			m.Set(i, j, v)
		}
	}

	return m, nil
}

// Rows extracts the listed columns row-wise, for estimators that want
// [][]float64 rather than a matrix.
func (df *DF) Rows(colNames ...string) ([][]float64, error) {
	var (
		m *mat.Dense
		e error
	)
	if m, e = df.Matrix(colNames...); e != nil {
		return nil, e
	}

	r, c := m.Dims()
	out := make([][]float64, r)
	for i := 0; i < r; i++ {
		out[i] = make([]float64, c)
		copy(out[i], m.RawRowView(i))
	}

	return out, nil
}
