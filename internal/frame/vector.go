// Package frame implements the columnar tables the analysis runs on.
// A Vector wraps a typed slice, a Col is a named Vector and a DF is an
// ordered set of equal-length columns. Stages of the pipeline take a DF
// and return a new DF rather than mutating in place.
package frame

import (
	"fmt"
)

// DataTypes are the element types a Vector supports.
type DataTypes uint8

const (
	DTunknown DataTypes = iota
	DTfloat
	DTint
	DTstring
)

func (dt DataTypes) String() string {
	switch dt {
	case DTfloat:
		return "float"
	case DTint:
		return "int"
	case DTstring:
		return "string"
	default:
		return "unknown"
	}
}

// Vector holds a slice of float64, int or string. Accessors panic on type
// or bounds violations -- vectors sit below the error-returning table API.
type Vector struct {
	dt DataTypes

	data any
}

func NewVector(data any) (*Vector, error) {
	switch data.(type) {
	case []float64:
		return &Vector{dt: DTfloat, data: data}, nil
	case []int:
		return &Vector{dt: DTint, data: data}, nil
	case []string:
		return &Vector{dt: DTstring, data: data}, nil
	default:
		return nil, fmt.Errorf("unsupported data type %T in NewVector", data)
	}
}

func MakeVector(dt DataTypes, n int) *Vector {
	switch dt {
	case DTfloat:
		return &Vector{dt: dt, data: make([]float64, n)}
	case DTint:
		return &Vector{dt: dt, data: make([]int, n)}
	case DTstring:
		return &Vector{dt: dt, data: make([]string, n)}
	default:
		panic(fmt.Errorf("cannot make Vector with data type %s", dt))
	}
}

func (v *Vector) VectorType() DataTypes {
	return v.dt
}

func (v *Vector) Len() int {
	switch v.dt {
	case DTfloat:
		return len(v.data.([]float64))
	case DTint:
		return len(v.data.([]int))
	case DTstring:
		return len(v.data.([]string))
	default:
		panic(fmt.Errorf("unexpected error in Vector.Len"))
	}
}

func (v *Vector) check(dt DataTypes, indx int) {
	if v.dt != dt {
		panic(fmt.Errorf("vector isn't %s", dt))
	}

	if indx < 0 || indx >= v.Len() {
		panic(fmt.Errorf("index out of range"))
	}
}

func (v *Vector) SetFloat(val float64, indx int) {
	v.check(DTfloat, indx)
	v.data.([]float64)[indx] = val
}

func (v *Vector) SetInt(val, indx int) {
	v.check(DTint, indx)
	v.data.([]int)[indx] = val
}

func (v *Vector) SetString(val string, indx int) {
	v.check(DTstring, indx)
	v.data.([]string)[indx] = val
}

// AsFloat returns the data as []float64, coercing ints. The slice is shared
// when no coercion is needed.
func (v *Vector) AsFloat() []float64 {
	switch v.dt {
	case DTfloat:
		return v.data.([]float64)
	case DTint:
		xOut := make([]float64, v.Len())
		for ind, xx := range v.data.([]int) {
			xOut[ind] = float64(xx)
		}

		return xOut
	default:
		panic(fmt.Errorf("cannot convert %s vector in AsFloat", v.dt))
	}
}

func (v *Vector) AsInt() []int {
	switch v.dt {
	case DTint:
		return v.data.([]int)
	case DTfloat:
		xOut := make([]int, v.Len())
		for ind, xx := range v.data.([]float64) {
			xOut[ind] = int(xx)
		}

		return xOut
	default:
		panic(fmt.Errorf("cannot convert %s vector in AsInt", v.dt))
	}
}

func (v *Vector) AsString() []string {
	if v.dt == DTstring {
		return v.data.([]string)
	}

	xOut := make([]string, v.Len())
	for ind := 0; ind < v.Len(); ind++ {
		xOut[ind] = fmt.Sprintf("%v", v.Element(ind))
	}

	return xOut
}

func (v *Vector) Element(indx int) any {
	if indx < 0 || indx >= v.Len() {
		panic(fmt.Errorf("index out of range"))
	}

	switch v.dt {
	case DTfloat:
		return v.data.([]float64)[indx]
	case DTint:
		return v.data.([]int)[indx]
	case DTstring:
		return v.data.([]string)[indx]
	default:
		panic(fmt.Errorf("unexpected error in Element"))
	}
}

func (v *Vector) ElementFloat(indx int) float64 {
	if v.dt == DTint {
		return float64(v.data.([]int)[indx])
	}

	v.check(DTfloat, indx)

	return v.data.([]float64)[indx]
}

func (v *Vector) ElementInt(indx int) int {
	v.check(DTint, indx)

	return v.data.([]int)[indx]
}

func (v *Vector) ElementString(indx int) string {
	v.check(DTstring, indx)

	return v.data.([]string)[indx]
}

func (v *Vector) Append(val any) {
	switch v.dt {
	case DTfloat:
		x, ok := val.(float64)
		if !ok {
			panic(fmt.Errorf("cannot append %T to float vector", val))
		}

		v.data = append(v.data.([]float64), x)
	case DTint:
		x, ok := val.(int)
		if !ok {
			panic(fmt.Errorf("cannot append %T to int vector", val))
		}

		v.data = append(v.data.([]int), x)
	case DTstring:
		x, ok := val.(string)
		if !ok {
			panic(fmt.Errorf("cannot append %T to string vector", val))
		}

		v.data = append(v.data.([]string), x)
	}
}

func (v *Vector) AppendVector(vAdd *Vector) error {
	if v.dt != vAdd.dt {
		return fmt.Errorf("appending %s vector to %s vector", vAdd.dt, v.dt)
	}

	switch v.dt {
	case DTfloat:
		v.data = append(v.data.([]float64), vAdd.data.([]float64)...)
	case DTint:
		v.data = append(v.data.([]int), vAdd.data.([]int)...)
	case DTstring:
		v.data = append(v.data.([]string), vAdd.data.([]string)...)
	}

	return nil
}

func (v *Vector) Copy() *Vector {
	vCopy := MakeVector(v.dt, v.Len())
	switch v.dt {
	case DTfloat:
		copy(vCopy.data.([]float64), v.data.([]float64))
	case DTint:
		copy(vCopy.data.([]int), v.data.([]int))
	case DTstring:
		copy(vCopy.data.([]string), v.data.([]string))
	}

	return vCopy
}

// Subset returns a new Vector holding the elements at rows, in order.
func (v *Vector) Subset(rows []int) *Vector {
	vOut := MakeVector(v.dt, len(rows))
	for ind, row := range rows {
		switch v.dt {
		case DTfloat:
			vOut.SetFloat(v.data.([]float64)[row], ind)
		case DTint:
			vOut.SetInt(v.data.([]int)[row], ind)
		case DTstring:
			vOut.SetString(v.data.([]string)[row], ind)
		}
	}

	return vOut
}
