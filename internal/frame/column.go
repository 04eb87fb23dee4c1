package frame

import (
	"fmt"
	"strings"
)

// Col is a named Vector.
type Col struct {
	name string

	*Vector
}

func NewCol(name string, data any) (*Col, error) {
	if e := validName(name); e != nil {
		return nil, e
	}

	var (
		v *Vector
		e error
	)
	if v, e = NewVector(data); e != nil {
		return nil, fmt.Errorf("column %s: %w", name, e)
	}

	return &Col{name: name, Vector: v}, nil
}

// NewColVector wraps an existing Vector without copying it.
func NewColVector(name string, v *Vector) (*Col, error) {
	if e := validName(name); e != nil {
		return nil, e
	}

	return &Col{name: name, Vector: v}, nil
}

func (c *Col) Name() string {
	return c.name
}

func (c *Col) Rename(newName string) error {
	if e := validName(newName); e != nil {
		return e
	}

	c.name = newName

	return nil
}

func (c *Col) Copy() *Col {
	return &Col{name: c.name, Vector: c.Vector.Copy()}
}

func (c *Col) String() string {
	return fmt.Sprintf("column: %s\ntype: %s\nrows: %d", c.name, c.VectorType(), c.Len())
}

func validName(name string) error {
	const illegal = "!@#$%^&*()=+-;:'`/.,>< ~ " + `"`

	if name == "" {
		return fmt.Errorf("empty column name")
	}

	if strings.ContainsAny(name, illegal) {
		return fmt.Errorf("illegal character in column name %s", name)
	}

	return nil
}
