package metrics

import (
	"math"

	"github.com/san-kum/presdiff/internal/diffusion"
	"github.com/san-kum/presdiff/internal/sim"
)

// PeakPressure tracks the largest value seen in any observed field.
type PeakPressure struct {
	peak    float64
	samples int
}

func NewPeakPressure() *PeakPressure { return &PeakPressure{} }

func (p *PeakPressure) Name() string { return "peak_pressure" }

func (p *PeakPressure) Observe(f *diffusion.Field, step int, t float64) {
	m := f.Max()
	if p.samples == 0 || m > p.peak {
		p.peak = m
	}
	p.samples++
}

func (p *PeakPressure) Value() float64 { return p.peak }

func (p *PeakPressure) Reset() {
	p.peak = 0
	p.samples = 0
}

// MeanPressure reports the mean of the most recently observed field.
type MeanPressure struct {
	last float64
}

func NewMeanPressure() *MeanPressure { return &MeanPressure{} }

func (m *MeanPressure) Name() string { return "mean_pressure" }

func (m *MeanPressure) Observe(f *diffusion.Field, step int, t float64) {
	m.last = f.Mean()
}

func (m *MeanPressure) Value() float64 { return m.last }

func (m *MeanPressure) Reset() { m.last = 0 }

// Residual is the largest interior change per unit time between the last
// two observations. It falls towards zero as the field approaches steady
// state.
type Residual struct {
	prev     *diffusion.Field
	prevTime float64
	value    float64
}

func NewResidual() *Residual { return &Residual{} }

func (r *Residual) Name() string { return "residual" }

func (r *Residual) Observe(f *diffusion.Field, step int, t float64) {
	if r.prev == nil || !r.prev.SameShape(f) {
		r.prev = f.Clone()
		r.prevTime = t
		return
	}

	dt := t - r.prevTime
	nr, nz := f.Dims()
	maxDiff := 0.0
	for i := 1; i < nr-1; i++ {
		cur, old := f.Row(i), r.prev.Row(i)
		for j := 1; j < nz-1; j++ {
			maxDiff = math.Max(maxDiff, math.Abs(cur[j]-old[j]))
		}
	}
	if dt > 0 {
		r.value = maxDiff / dt
	} else {
		r.value = maxDiff
	}

	if err := r.prev.CopyFrom(f); err == nil {
		r.prevTime = t
	}
}

func (r *Residual) Value() float64 { return r.value }

func (r *Residual) Reset() {
	r.prev = nil
	r.prevTime = 0
	r.value = 0
}

// Defaults returns the metrics the CLI attaches to every run.
func Defaults(threshold float64) []sim.Metric {
	return []sim.Metric{
		NewStability(threshold),
		NewPeakPressure(),
		NewMeanPressure(),
		NewResidual(),
	}
}
