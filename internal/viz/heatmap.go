package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/presdiff/internal/diffusion"
)

// plainRamp runs from low to high pressure.
const plainRamp = " .:-=+*#%@"

// sample reduces f to a height × width grid by nearest-node lookup. Row 0
// is the top of the domain (largest z); column 0 is the innermost radius.
func sample(f *diffusion.Field, width, height int) [][]float64 {
	nr, nz := f.Dims()
	if width > nr {
		width = nr
	}
	if height > nz {
		height = nz
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	out := make([][]float64, height)
	for y := range out {
		j := nz - 1
		if height > 1 {
			j = (nz - 1) - y*(nz-1)/(height-1)
		}
		out[y] = make([]float64, width)
		for x := range out[y] {
			i := 0
			if width > 1 {
				i = x * (nr - 1) / (width - 1)
			}
			out[y][x] = f.At(i, j)
		}
	}
	return out
}

func normalise(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	t := (v - lo) / (hi - lo)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// RenderFieldPlain draws f with an ASCII character ramp followed by a
// legend line.
func RenderFieldPlain(f *diffusion.Field, width, height int) string {
	lo, hi := f.Min(), f.Max()
	var b strings.Builder
	for _, row := range sample(f, width, height) {
		for _, v := range row {
			idx := int(normalise(v, lo, hi) * float64(len(plainRamp)-1))
			b.WriteByte(plainRamp[idx])
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "'%c' %.4g  ..  '%c' %.4g\n", plainRamp[0], lo, plainRamp[len(plainRamp)-1], hi)
	return b.String()
}

// RenderField draws f as coloured blocks using the theme's Cold→Hot
// gradient, followed by a colour legend.
func RenderField(f *diffusion.Field, width, height int, theme Theme) string {
	lo, hi := f.Min(), f.Max()
	styles := make(map[lipgloss.Color]lipgloss.Style)
	cell := func(t float64) string {
		c := lerpColor(theme.Cold, theme.Hot, t)
		st, ok := styles[c]
		if !ok {
			st = lipgloss.NewStyle().Background(c)
			styles[c] = st
		}
		return st.Render(" ")
	}

	var b strings.Builder
	for _, row := range sample(f, width, height) {
		for _, v := range row {
			b.WriteString(cell(normalise(v, lo, hi)))
		}
		b.WriteByte('\n')
	}

	muted := lipgloss.NewStyle().Foreground(theme.Muted)
	b.WriteString(muted.Render(fmt.Sprintf("%.4g ", lo)))
	const legendWidth = 20
	for k := 0; k < legendWidth; k++ {
		b.WriteString(cell(float64(k) / float64(legendWidth-1)))
	}
	b.WriteString(muted.Render(fmt.Sprintf(" %.4g", hi)))
	b.WriteByte('\n')
	return b.String()
}
