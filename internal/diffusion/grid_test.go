package diffusion

import (
	"errors"
	"math"
	"testing"
)

func TestNewGrid_NodeCounts(t *testing.T) {
	tests := []struct {
		name           string
		rMin, rMax     float64
		zMin, zMax     float64
		dr, dz         float64
		wantNr, wantNz int
	}{
		{"unit half steps", 0, 1, 0, 1, 0.5, 0.5, 3, 3},
		{"reference", 0, 100, 0, 50, 0.05, 0.05, 2001, 1001},
		{"uneven step truncates", 0, 1, 0, 1, 0.3, 0.4, 4, 3},
		{"offset bounds", 2, 4, -1, 1, 0.25, 0.5, 9, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGrid(tt.rMin, tt.rMax, tt.zMin, tt.zMax, tt.dr, tt.dz)
			if err != nil {
				t.Fatalf("NewGrid failed: %v", err)
			}
			wantNr := int(math.Floor((tt.rMax-tt.rMin)/tt.dr)) + 1
			wantNz := int(math.Floor((tt.zMax-tt.zMin)/tt.dz)) + 1
			if g.Nr != wantNr || g.Nz != wantNz {
				t.Errorf("got %dx%d, floor formula gives %dx%d", g.Nr, g.Nz, wantNr, wantNz)
			}
			if g.Nr != tt.wantNr || g.Nz != tt.wantNz {
				t.Errorf("got %dx%d, want %dx%d", g.Nr, g.Nz, tt.wantNr, tt.wantNz)
			}
		})
	}
}

func TestNewGrid_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args [6]float64
	}{
		{"zero dr", [6]float64{0, 1, 0, 1, 0, 0.5}},
		{"negative dz", [6]float64{0, 1, 0, 1, 0.5, -0.5}},
		{"inverted r", [6]float64{1, 0, 0, 1, 0.5, 0.5}},
		{"inverted z", [6]float64{0, 1, 1, 1, 0.5, 0.5}},
		{"step larger than domain", [6]float64{0, 1, 0, 1, 2, 0.5}},
		{"no interior", [6]float64{0, 1, 0, 1, 1, 0.5}},
		{"nan", [6]float64{0, math.NaN(), 0, 1, 0.5, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.args
			_, err := NewGrid(a[0], a[1], a[2], a[3], a[4], a[5])
			if !errors.Is(err, ErrInvalidGrid) {
				t.Errorf("expected ErrInvalidGrid, got %v", err)
			}
		})
	}
}

func TestStepCount(t *testing.T) {
	tests := []struct {
		tMax, dt float64
		want     int
	}{
		{10, 0.0005, 20000},
		{1, 0.3, 3},
		{1, 0, 0},
		{0, 0.1, 0},
		{-1, 0.1, 0},
	}
	for _, tt := range tests {
		if got := StepCount(tt.tMax, tt.dt); got != tt.want {
			t.Errorf("StepCount(%g, %g) = %d, want %d", tt.tMax, tt.dt, got, tt.want)
		}
	}
}

func TestGrid_Radii(t *testing.T) {
	g, err := NewGrid(0, 1, 0, 2, 0.25, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	r := g.Radii()
	if len(r) != g.Nr {
		t.Fatalf("expected %d radii, got %d", g.Nr, len(r))
	}
	if r[0] != 0 || r[len(r)-1] != 1 {
		t.Errorf("radii should span [0, 1], got [%g, %g]", r[0], r[len(r)-1])
	}
	for i := 1; i < len(r); i++ {
		if math.Abs(r[i]-r[i-1]-0.25) > 1e-12 {
			t.Errorf("uneven spacing at %d: %v", i, r)
		}
	}

	z := g.Heights()
	if len(z) != g.Nz || z[len(z)-1] != 2 {
		t.Errorf("unexpected heights %v", z)
	}
	if g.Interior() != (g.Nr-2)*(g.Nz-2) {
		t.Errorf("interior count %d", g.Interior())
	}
}
