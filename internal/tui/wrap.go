package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/kanadrill/internal/quiz"
)

const pendingMark = "·"

type styledCell struct {
	s       string
	width   int
	isSpace bool
}

// buildHistoryCells renders answered symbols by verdict followed by one
// pending mark per remaining symbol, separated by spaces.
func buildHistoryCells(history []quiz.HistoryEntry, remaining int) []styledCell {
	out := make([]styledCell, 0, 2*(len(history)+remaining))
	add := func(text string, style lipgloss.Style) {
		if len(out) > 0 {
			out = append(out, styledCell{s: " ", width: 1, isSpace: true})
		}
		out = append(out, styledCell{
			s:     style.Render(text),
			width: runewidth.StringWidth(text),
		})
	}
	for _, h := range history {
		if h.IsCorrect {
			add(h.Symbol, correctStyle)
		} else {
			add(h.Symbol, incorrectStyle)
		}
	}
	for i := 0; i < remaining; i++ {
		add(pendingMark, pendingStyle)
	}
	return out
}

func renderStyledCells(cells []styledCell) string {
	var b strings.Builder
	for _, item := range cells {
		b.WriteString(item.s)
	}
	return b.String()
}

func wrapStyledCells(cells []styledCell, width int) string {
	if width <= 0 {
		return renderStyledCells(cells)
	}
	var out strings.Builder
	line := make([]styledCell, 0, len(cells))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(cells); {
		item := cells[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledCells(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledCell{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledCells(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledCells(line))
	return out.String()
}

func lineWidthOf(line []styledCell) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledCell) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
