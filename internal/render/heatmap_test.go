package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/presdiff/internal/diffusion"
)

func steppedField(t *testing.T, dr float64, steps int) (*diffusion.Field, diffusion.Grid) {
	t.Helper()
	g, err := diffusion.NewGrid(0, 1, 0, 0.5, dr, dr)
	if err != nil {
		t.Fatal(err)
	}
	s := diffusion.NewStepper(g, diffusion.Params{Alpha: 0.1, Dt: 0.001, Initial: 10, InnerBoundary: 50, OuterBoundary: 10})
	s.Run(steps)
	return s.Current(), g
}

func TestHeatmap_PNG(t *testing.T) {
	f, g := steppedField(t, 0.05, 10)
	path := filepath.Join(t.TempDir(), "field.png")
	if err := SaveField(path, f, g); err != nil {
		t.Fatalf("SaveField: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("output is not a PNG")
	}
}

func TestHeatmap_SVGHasLabels(t *testing.T) {
	f, g := steppedField(t, 0.1, 5)
	im, err := Heatmap(f, g, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := im.WriteTo(&buf, "svg"); err != nil {
		t.Fatalf("WriteTo svg: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") {
		t.Fatal("expected svg document")
	}
	for _, want := range []string{DefaultTitle, DefaultXLabel, DefaultYLabel, DefaultLegend} {
		if !strings.Contains(out, want) {
			t.Errorf("svg missing %q", want)
		}
	}
}

func TestHeatmap_RasterizedLargeGrid(t *testing.T) {
	f, g := steppedField(t, 0.004, 1)
	if g.Cells() <= rasterThreshold {
		t.Fatalf("expected a grid above the raster threshold, got %d cells", g.Cells())
	}
	im, err := Heatmap(f, g, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := im.WriteTo(&buf, "png"); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Error("empty png")
	}
}

func TestHeatmap_UniformField(t *testing.T) {
	g, err := diffusion.NewGrid(0, 1, 0, 1, 0.25, 0.25)
	if err != nil {
		t.Fatal(err)
	}
	im, err := Heatmap(diffusion.NewField(g, 7), g, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err := im.WriteTo(&bytes.Buffer{}, "png"); err != nil {
		t.Errorf("uniform field failed to render: %v", err)
	}
}

func TestHeatmap_Errors(t *testing.T) {
	f, g := steppedField(t, 0.1, 1)

	opts := DefaultOptions()
	opts.Palette = "rainbow"
	if _, err := Heatmap(f, g, opts); err == nil {
		t.Error("expected error for unknown palette")
	}

	other, err := diffusion.NewGrid(0, 1, 0, 1, 0.5, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Heatmap(f, other, DefaultOptions()); err == nil {
		t.Error("expected dimension mismatch error")
	}

	im, err := Heatmap(f, g, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err := im.WriteTo(&bytes.Buffer{}, "bmp"); err == nil {
		t.Error("expected error for unsupported format")
	}
	if err := im.Save(filepath.Join(t.TempDir(), "noext")); err == nil {
		t.Error("expected error for missing extension")
	}
}
