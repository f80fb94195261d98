package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/presdiff/internal/diffusion"
)

// RadialProfile returns p[i][j] for every radial index i.
func RadialProfile(f *diffusion.Field, j int) ([]float64, error) {
	nr, nz := f.Dims()
	if j < 0 || j >= nz {
		return nil, fmt.Errorf("vertical index %d out of range [0, %d)", j, nz)
	}
	out := make([]float64, nr)
	for i := range out {
		out[i] = f.At(i, j)
	}
	return out, nil
}

// VerticalProfile returns p[i][j] for every vertical index j.
func VerticalProfile(f *diffusion.Field, i int) ([]float64, error) {
	nr, _ := f.Dims()
	if i < 0 || i >= nr {
		return nil, fmt.Errorf("radial index %d out of range [0, %d)", i, nr)
	}
	return append([]float64(nil), f.Row(i)...), nil
}

// NearestIndex returns the index of the coordinate closest to x.
func NearestIndex(coords []float64, x float64) int {
	best, bestDist := 0, math.Inf(1)
	for k, c := range coords {
		if d := math.Abs(c - x); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}

type Summary struct {
	Min, Max  float64
	Mean, Std float64
	// Interior statistics exclude the radial boundary rows and the
	// vertical edges.
	InteriorMean, InteriorStd float64
}

func Summarize(f *diffusion.Field) Summary {
	nr, nz := f.Dims()
	all := make([]float64, 0, nr*nz)
	interior := make([]float64, 0, max(0, (nr-2)*(nz-2)))
	for i := 0; i < nr; i++ {
		row := f.Row(i)
		all = append(all, row...)
		if i > 0 && i < nr-1 && nz > 2 {
			interior = append(interior, row[1:nz-1]...)
		}
	}

	s := Summary{Min: f.Min(), Max: f.Max()}
	s.Mean, s.Std = stat.MeanStdDev(all, nil)
	if len(interior) > 1 {
		s.InteriorMean, s.InteriorStd = stat.MeanStdDev(interior, nil)
	} else if len(interior) == 1 {
		s.InteriorMean = interior[0]
	}
	return s
}
