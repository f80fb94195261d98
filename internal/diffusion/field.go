package diffusion

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Field is a dense Nr × Nz array of pressure values indexed [i][j], i
// radial and j vertical. Storage is one contiguous row-major block.
type Field struct {
	m *mat.Dense
}

// NewField allocates a field for g with every cell set to value.
func NewField(g Grid, value float64) *Field {
	f := &Field{m: mat.NewDense(g.Nr, g.Nz, nil)}
	if value != 0 {
		f.Fill(value)
	}
	return f
}

// FieldFromRows builds a field from rows[i][j]. All rows must have the
// same length.
func FieldFromRows(rows [][]float64) (*Field, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty field", ErrDimensionMismatch)
	}
	nz := len(rows[0])
	data := make([]float64, 0, len(rows)*nz)
	for i, row := range rows {
		if len(row) != nz {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrDimensionMismatch, i, len(row), nz)
		}
		data = append(data, row...)
	}
	return &Field{m: mat.NewDense(len(rows), nz, data)}, nil
}

// InitFields allocates the two stepping buffers: current uniform at
// initial, next all zero.
func InitFields(g Grid, initial float64) (current, next *Field) {
	return NewField(g, initial), NewField(g, 0)
}

// Dims returns (Nr, Nz).
func (f *Field) Dims() (nr, nz int) { return f.m.Dims() }

func (f *Field) At(i, j int) float64 { return f.m.At(i, j) }

func (f *Field) Set(i, j int, v float64) { f.m.Set(i, j, v) }

// Row returns the backing slice for radial index i. Writes go through to
// the field.
func (f *Field) Row(i int) []float64 { return f.m.RawRowView(i) }

// Fill sets every cell to v.
func (f *Field) Fill(v float64) {
	data := f.m.RawMatrix().Data
	for k := range data {
		data[k] = v
	}
}

// CopyFrom overwrites f with src. Shapes must match.
func (f *Field) CopyFrom(src *Field) error {
	if !f.SameShape(src) {
		return ErrDimensionMismatch
	}
	f.m.Copy(src.m)
	return nil
}

func (f *Field) Clone() *Field {
	return &Field{m: mat.DenseCopyOf(f.m)}
}

// SameShape reports whether f and o have equal dimensions.
func (f *Field) SameShape(o *Field) bool {
	r1, c1 := f.Dims()
	r2, c2 := o.Dims()
	return r1 == r2 && c1 == c2
}

// Equal reports exact element-wise equality.
func (f *Field) Equal(o *Field) bool {
	return f.SameShape(o) && mat.Equal(f.m, o.m)
}

// EqualApprox reports element-wise equality within tol.
func (f *Field) EqualApprox(o *Field, tol float64) bool {
	return f.SameShape(o) && mat.EqualApprox(f.m, o.m, tol)
}

func (f *Field) Min() float64 { return mat.Min(f.m) }

func (f *Field) Max() float64 { return mat.Max(f.m) }

// Mean returns the average over all cells.
func (f *Field) Mean() float64 {
	nr, nz := f.Dims()
	return mat.Sum(f.m) / float64(nr*nz)
}

// IsFinite reports whether no cell is NaN or ±Inf.
func (f *Field) IsFinite() bool {
	for _, v := range f.m.RawMatrix().Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Rows returns a copy of the field as rows[i][j].
func (f *Field) Rows() [][]float64 {
	nr, _ := f.Dims()
	rows := make([][]float64, nr)
	for i := range rows {
		rows[i] = append([]float64(nil), f.Row(i)...)
	}
	return rows
}

// Matrix exposes the field as a read-only gonum matrix.
func (f *Field) Matrix() mat.Matrix { return f.m }
