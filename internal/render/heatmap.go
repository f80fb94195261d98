// Package render draws a pressure field as a colour-mapped heatmap with a
// colour bar, axis labels and a title, using gonum/plot.
package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/san-kum/presdiff/internal/diffusion"
)

const (
	DefaultTitle  = "Pressure Field at Final Time"
	DefaultXLabel = "Radial direction (m)"
	DefaultYLabel = "Vertical direction (m)"
	DefaultLegend = "Pressure"

	// Grids above this many cells are drawn as a raster image instead of
	// one rectangle per cell.
	rasterThreshold = 10000
)

type Options struct {
	Title   string
	XLabel  string
	YLabel  string
	Legend  string
	Width   vg.Length
	Height  vg.Length
	Colors  int
	Palette string // kindlmann, blackbody or bluered
}

func DefaultOptions() Options {
	return Options{
		Title:   DefaultTitle,
		XLabel:  DefaultXLabel,
		YLabel:  DefaultYLabel,
		Legend:  DefaultLegend,
		Width:   8 * vg.Inch,
		Height:  5 * vg.Inch,
		Colors:  255,
		Palette: "kindlmann",
	}
}

// fieldGrid adapts a Field to plotter.GridXYZ: columns run along r, rows
// along z.
type fieldGrid struct {
	f    *diffusion.Field
	r, z []float64
}

func (g fieldGrid) Dims() (c, r int)   { return g.f.Dims() }
func (g fieldGrid) Z(c, r int) float64 { return g.f.At(c, r) }
func (g fieldGrid) X(c int) float64    { return g.r[c] }
func (g fieldGrid) Y(r int) float64    { return g.z[r] }

func colorMap(name string) (palette.ColorMap, error) {
	switch strings.ToLower(name) {
	case "", "kindlmann":
		return moreland.Kindlmann(), nil
	case "blackbody":
		return moreland.ExtendedBlackBody(), nil
	case "bluered":
		return moreland.SmoothBlueRed(), nil
	}
	return nil, fmt.Errorf("render: unknown palette %q", name)
}

// Image is a rendered heatmap ready to be written in any supported format.
type Image struct {
	heat   *plot.Plot
	bar    *plot.Plot
	width  vg.Length
	height vg.Length
}

// Heatmap builds the figure for f over the bounds of g.
func Heatmap(f *diffusion.Field, g diffusion.Grid, opts Options) (*Image, error) {
	nr, nz := f.Dims()
	if nr != g.Nr || nz != g.Nz {
		return nil, fmt.Errorf("render: %w", diffusion.ErrDimensionMismatch)
	}
	if opts.Colors <= 1 {
		opts.Colors = 255
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 8*vg.Inch, 5*vg.Inch
	}

	cm, err := colorMap(opts.Palette)
	if err != nil {
		return nil, err
	}
	lo, hi := f.Min(), f.Max()
	if hi <= lo {
		hi = lo + 1
	}
	cm.SetMin(lo)
	cm.SetMax(hi)

	hm := plotter.NewHeatMap(fieldGrid{f: f, r: g.Radii(), z: g.Heights()}, cm.Palette(opts.Colors))
	hm.Min, hm.Max = lo, hi
	hm.Rasterized = g.Cells() > rasterThreshold

	heat := plot.New()
	heat.Title.Text = opts.Title
	heat.X.Label.Text = opts.XLabel
	heat.Y.Label.Text = opts.YLabel
	heat.X.Min, heat.X.Max = g.RMin, g.RMax
	heat.Y.Min, heat.Y.Max = g.ZMin, g.ZMax
	heat.Add(hm)

	bar := plot.New()
	// Blank title keeps the bar aligned with the heatmap's plot area.
	bar.Title.Text = " "
	bar.HideX()
	bar.Y.Label.Text = opts.Legend
	bar.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true, Colors: opts.Colors})

	return &Image{heat: heat, bar: bar, width: opts.Width, height: opts.Height}, nil
}

func (im *Image) draw(c vg.Canvas) {
	dc := draw.NewCanvas(c, im.width, im.height)
	barWidth := im.width / 6
	im.heat.Draw(draw.Crop(dc, 0, -barWidth, 0, 0))
	im.bar.Draw(draw.Crop(dc, im.width-barWidth, 0, 0, 0))
}

// WriteTo encodes the figure as png, jpg, svg or pdf.
func (im *Image) WriteTo(w io.Writer, format string) error {
	var out io.WriterTo
	switch strings.ToLower(format) {
	case "png":
		c := vgimg.New(im.width, im.height)
		im.draw(c)
		out = vgimg.PngCanvas{Canvas: c}
	case "jpg", "jpeg":
		c := vgimg.New(im.width, im.height)
		im.draw(c)
		out = vgimg.JpegCanvas{Canvas: c}
	case "svg":
		c := vgsvg.New(im.width, im.height)
		im.draw(c)
		out = c
	case "pdf":
		c := vgpdf.New(im.width, im.height)
		im.draw(c)
		out = c
	default:
		return fmt.Errorf("render: unsupported format %q", format)
	}
	_, err := out.WriteTo(w)
	return err
}

// Save writes the figure to path, choosing the format from the extension.
func (im *Image) Save(path string) (err error) {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if format == "" {
		return fmt.Errorf("render: %s has no file extension", path)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return im.WriteTo(file, format)
}

// SaveField renders f with default options and writes it to path.
func SaveField(path string, f *diffusion.Field, g diffusion.Grid) error {
	im, err := Heatmap(f, g, DefaultOptions())
	if err != nil {
		return err
	}
	return im.Save(path)
}
