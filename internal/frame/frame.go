package frame

import (
	"fmt"
	"strings"
)

// DF is an ordered collection of equal-length named columns.
type DF struct {
	cols []*Col
}

func NewDF(cols ...*Col) (*DF, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("no columns in NewDF")
	}

	df := &DF{}
	for ind := 0; ind < len(cols); ind++ {
		if e := df.AppendColumn(cols[ind]); e != nil {
			return nil, e
		}
	}

	return df, nil
}

func (df *DF) RowCount() int {
	return df.cols[0].Len()
}

func (df *DF) ColumnCount() int {
	return len(df.cols)
}

func (df *DF) ColumnNames() []string {
	var names []string
	for _, c := range df.cols {
		names = append(names, c.Name())
	}

	return names
}

func (df *DF) Column(colName string) (*Col, error) {
	for _, c := range df.cols {
		if c.Name() == colName {
			return c, nil
		}
	}

	return nil, fmt.Errorf("column %s not found", colName)
}

func (df *DF) HasColumn(colName string) bool {
	_, e := df.Column(colName)

	return e == nil
}

func (df *DF) AppendColumn(col *Col) error {
	if df.HasColumn(col.Name()) {
		return fmt.Errorf("duplicate column name: %s", col.Name())
	}

	if len(df.cols) > 0 && col.Len() != df.RowCount() {
		return fmt.Errorf("length mismatch: df - %d, append col %s - %d", df.RowCount(), col.Name(), col.Len())
	}

	df.cols = append(df.cols, col)

	return nil
}

func (df *DF) DropColumns(colNames ...string) error {
	for _, cName := range colNames {
		if !df.HasColumn(cName) {
			return fmt.Errorf("column %s not found", cName)
		}

		var keep []*Col
		for _, c := range df.cols {
			if c.Name() != cName {
				keep = append(keep, c)
			}
		}

		if len(keep) == 0 {
			return fmt.Errorf("no columns left")
		}

		df.cols = keep
	}

	return nil
}

// KeepColumns returns a new DF holding only colNames, in that order. The
// column data is shared, not copied.
func (df *DF) KeepColumns(colNames ...string) (*DF, error) {
	var cols []*Col
	for _, cName := range colNames {
		var (
			c *Col
			e error
		)
		if c, e = df.Column(cName); e != nil {
			return nil, e
		}

		cols = append(cols, c)
	}

	return NewDF(cols...)
}

func (df *DF) Copy() *DF {
	var cols []*Col
	for _, c := range df.cols {
		cols = append(cols, c.Copy())
	}

	dfOut, _ := NewDF(cols...)

	return dfOut
}

// AppendRows appends the rows of dfAdd. Both tables must have identical
// column names and types, though not necessarily in the same order.
func (df *DF) AppendRows(dfAdd *DF) error {
	if df.ColumnCount() != dfAdd.ColumnCount() {
		return fmt.Errorf("column count mismatch: %d and %d", df.ColumnCount(), dfAdd.ColumnCount())
	}

	for _, c := range df.cols {
		var (
			cAdd *Col
			e    error
		)
		if cAdd, e = dfAdd.Column(c.Name()); e != nil {
			return e
		}

		if e = c.AppendVector(cAdd.Vector); e != nil {
			return fmt.Errorf("column %s: %w", c.Name(), e)
		}
	}

	return nil
}

// Subset returns a new DF holding the listed rows, in order.
func (df *DF) Subset(rows []int) *DF {
	var cols []*Col
	for _, c := range df.cols {
		cOut, _ := NewColVector(c.Name(), c.Vector.Subset(rows))
		cols = append(cols, cOut)
	}

	dfOut, _ := NewDF(cols...)

	return dfOut
}

func (df *DF) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "rows: %d\n", df.RowCount())
	for _, c := range df.cols {
		fmt.Fprintf(&b, "  %s (%s)\n", c.Name(), c.VectorType())
	}

	return b.String()
}
