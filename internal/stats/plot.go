package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// Series is a named run of 0-100 values.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight = 10
	minPlotWidth      = 10
	fallbackWidth     = 80
	axisLabelTop      = "100%"
	axisLabelMid      = "50%"
	axisLabelBottom   = "0%"
	axisSeparator     = " │ "
	percentNote       = "Scale: 0-100%."
	colorReset        = "\x1b[0m"
)

// dash patterns per series: a dot at column x is drawn when x%period < on.
var seriesDashes = []struct {
	label  string
	period int
	on     int
}{
	{"solid", 1, 1},
	{"dashed", 6, 3},
	{"dotted", 4, 1},
}

var seriesColors = []string{"\x1b[36m", "\x1b[35m", "\x1b[33m"}

// brailleBits[col][row] is the dot bit inside one braille cell (2x4 dots).
var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

type brailleCanvas struct {
	cells [][]uint8
}

func newBrailleCanvas(width, height int) *brailleCanvas {
	cells := make([][]uint8, height)
	for i := range cells {
		cells[i] = make([]uint8, width)
	}
	return &brailleCanvas{cells: cells}
}

func (c *brailleCanvas) dot(x, y int) {
	row, col := y/4, x/2
	if x < 0 || y < 0 || row >= len(c.cells) || col >= len(c.cells[row]) {
		return
	}
	c.cells[row][col] |= brailleBits[x%2][y%4]
}

// line draws a Bresenham segment, keeping only columns accepted by keep.
func (c *brailleCanvas) line(x0, y0, x1, y1 int, keep func(x int) bool) {
	dx, dy := absInt(x1-x0), -absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		if keep(x0) {
			c.dot(x0, y0)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// PlotPercent draws series of 0-100 values as a braille line chart.
// Series without values are skipped; nothing is written when none remain.
func PlotPercent(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	var drawn []Series
	for _, s := range series {
		if len(s.Values) > 0 {
			drawn = append(drawn, s)
		}
	}
	if len(drawn) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	width = max(width, minPlotWidth)

	canvases := make([]*brailleCanvas, len(drawn))
	for i, s := range drawn {
		canvases[i] = newBrailleCanvas(width, height)
		dash := seriesDashes[i%len(seriesDashes)]
		keep := func(x int) bool { return x%dash.period < dash.on }
		prevX, prevY := -1, -1
		for x, v := range fitToWidth(s.Values, width) {
			px, py := 2*x, percentToDotRow(v, 4*height)
			if prevX < 0 {
				prevX, prevY = px, py
			}
			canvases[i].line(prevX, prevY, px, py, keep)
			prevX, prevY = px, py
		}
	}

	useColor := shouldUseColor(w, forceColor)
	var b strings.Builder
	if title != "" {
		b.WriteString(title + "\n")
	}
	b.WriteString(percentNote + "\n")
	for y := 0; y < height; y++ {
		fmt.Fprintf(&b, "%*s%s", len(axisLabelTop), axisLabel(y, height), axisSeparator)
		for x := 0; x < width; x++ {
			var bits uint8
			owner := -1
			for i, c := range canvases {
				if c.cells[y][x] != 0 && owner < 0 {
					owner = i
				}
				bits |= c.cells[y][x]
			}
			cell := string(rune(0x2800 + int(bits)))
			if useColor && owner >= 0 {
				cell = seriesColors[owner%len(seriesColors)] + cell + colorReset
			}
			b.WriteString(cell)
		}
		b.WriteString("\n")
	}
	b.WriteString(legend(drawn, useColor) + "\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// PlotWidthFor returns the plot columns left after the axis within totalWidth.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	axis := utf8.RuneCountInString(axisLabelTop) + utf8.RuneCountInString(axisSeparator)
	return max(totalWidth-axis, minPlotWidth)
}

func axisLabel(row, height int) string {
	switch {
	case row == 0:
		return axisLabelTop
	case height > 1 && row == height-1:
		return axisLabelBottom
	case height > 2 && row == height/2:
		return axisLabelMid
	}
	return ""
}

func percentToDotRow(v float64, dotRows int) int {
	v = math.Min(100, math.Max(0, v))
	return int(math.Round((100 - v) / 100 * float64(dotRows-1)))
}

// fitToWidth averages buckets when there are more values than columns and
// interpolates linearly when there are fewer.
func fitToWidth(values []float64, width int) []float64 {
	n := len(values)
	out := make([]float64, width)
	switch {
	case n == width:
		copy(out, values)
	case n > width:
		for i := range out {
			lo := i * n / width
			hi := max((i+1)*n/width, lo+1)
			var sum float64
			for _, v := range values[lo:hi] {
				sum += v
			}
			out[i] = sum / float64(hi-lo)
		}
	case n == 1 || width == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		for i := range out {
			pos := float64(i) * float64(n-1) / float64(width-1)
			lo := int(pos)
			if lo >= n-1 {
				out[i] = values[n-1]
				continue
			}
			frac := pos - float64(lo)
			out[i] = values[lo] + (values[lo+1]-values[lo])*frac
		}
	}
	return out
}

func legend(series []Series, useColor bool) string {
	parts := make([]string, len(series))
	for i, s := range series {
		label := fmt.Sprintf("⠁ %s (%s)", s.Name, seriesDashes[i%len(seriesDashes)].label)
		if useColor {
			label = seriesColors[i%len(seriesColors)] + label + colorReset
		}
		parts[i] = label
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackWidth
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
