package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/presdiff/internal/diffusion"
)

type ExportData struct {
	ID      string             `json:"id"`
	RMin    float64            `json:"r_min"`
	RMax    float64            `json:"r_max"`
	ZMin    float64            `json:"z_min"`
	ZMax    float64            `json:"z_max"`
	Nr      int                `json:"nr"`
	Nz      int                `json:"nz"`
	Steps   int                `json:"steps"`
	Time    float64            `json:"time"`
	Radii   []float64          `json:"radii"`
	Heights []float64          `json:"heights"`
	Field   [][]float64        `json:"field"`
	Metrics map[string]float64 `json:"metrics"`
}

// NewExportData packs a field and its bounds for JSON consumers.
func NewExportData(id string, g diffusion.Grid, f *diffusion.Field, steps int, t float64, metrics map[string]float64) ExportData {
	return ExportData{
		ID:      id,
		RMin:    g.RMin,
		RMax:    g.RMax,
		ZMin:    g.ZMin,
		ZMax:    g.ZMax,
		Nr:      g.Nr,
		Nz:      g.Nz,
		Steps:   steps,
		Time:    t,
		Radii:   g.Radii(),
		Heights: g.Heights(),
		Field:   f.Rows(),
		Metrics: metrics,
	}
}

func ExportJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportJSONStdout loads a stored run and writes it as JSON to stdout.
func (s *Store) ExportJSONStdout(runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	f, g, err := s.LoadField(runID)
	if err != nil {
		return err
	}
	return ExportJSON(os.Stdout, NewExportData(meta.ID, g, f, meta.Steps, meta.Time, meta.Metrics))
}

// WriteFieldCSV writes one line per radial node: the radius followed by
// the pressure at every vertical node. The header carries the heights.
func WriteFieldCSV(w io.Writer, g diffusion.Grid, f *diffusion.Field) error {
	cw := csv.NewWriter(w)

	header := []string{"r"}
	for _, z := range g.Heights() {
		header = append(header, "z="+strconv.FormatFloat(z, 'g', -1, 64))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	nr, nz := f.Dims()
	if nr != g.Nr || nz != g.Nz {
		return fmt.Errorf("csv export: %w", diffusion.ErrDimensionMismatch)
	}
	radii := g.Radii()
	for i := 0; i < nr; i++ {
		row := make([]string, 0, nz+1)
		row = append(row, strconv.FormatFloat(radii[i], 'g', -1, 64))
		for _, v := range f.Row(i) {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
