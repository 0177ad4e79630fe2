// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/kanadrill/internal/model"
	"github.com/verte-zerg/kanadrill/internal/quiz"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes answers per minute and accuracy for a session.
func SessionMetrics(correct, incorrect int, durationMs int64) (perMinute float64, accuracy int) {
	accuracy = quiz.Accuracy(correct, incorrect)
	if durationMs <= 0 {
		return 0, accuracy
	}
	minutes := float64(durationMs) / 60000.0
	perMinute = float64(correct+incorrect) / minutes
	return perMinute, accuracy
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// IntsToFloats converts an accuracy log to plot values.
func IntsToFloats(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

// Summary aggregates finished passes.
type Summary struct {
	Sessions     int
	Answers      int
	AvgAccuracy  float64
	BestAccuracy int
	LastAccuracy int
	AvgPerMinute float64
}

// Summarize aggregates the accuracy log and stored sessions.
// Accuracy figures come from the log; pace needs stored sessions.
func Summarize(accuracyLog []int, sessions []model.SessionAggregate) Summary {
	sum := Summary{Sessions: len(accuracyLog)}
	if len(accuracyLog) > 0 {
		total := 0
		for _, acc := range accuracyLog {
			total += acc
			if acc > sum.BestAccuracy {
				sum.BestAccuracy = acc
			}
		}
		sum.AvgAccuracy = float64(total) / float64(len(accuracyLog))
		sum.LastAccuracy = accuracyLog[len(accuracyLog)-1]
	}
	if len(sessions) > 0 {
		var totalPace float64
		for _, s := range sessions {
			pace, _ := SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
			totalPace += pace
			sum.Answers += s.Correct + s.Incorrect
		}
		sum.AvgPerMinute = totalPace / float64(len(sessions))
	}
	return sum
}

// RenderSummary prints a summary of finished passes.
func RenderSummary(w io.Writer, accuracyLog []int, sessions []model.SessionAggregate) error {
	if len(accuracyLog) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	sum := Summarize(accuracyLog, sessions)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", sum.Sessions),
		fmt.Sprintf("Avg Accuracy: %.1f%%", sum.AvgAccuracy),
		fmt.Sprintf("Best Accuracy: %d%%", sum.BestAccuracy),
		fmt.Sprintf("Last Accuracy: %d%%", sum.LastAccuracy),
	}
	if len(sessions) > 0 {
		lines = append(lines,
			fmt.Sprintf("Answers: %d", sum.Answers),
			fmt.Sprintf("Avg Pace: %.1f kana/min", sum.AvgPerMinute),
		)
	}
	lines = append(lines, fmt.Sprintf("Trend: %s", Sparkline(IntsToFloats(accuracyLog))), "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints the per-session accuracy chart.
func RenderCurves(w io.Writer, accuracyLog []int, window int) error {
	return RenderCurvesWithSize(w, accuracyLog, window, 0, 10, false)
}

// RenderCurvesWithSize prints the accuracy chart sized to a given total width.
// A window above 1 adds a moving-average series.
func RenderCurvesWithSize(w io.Writer, accuracyLog []int, window, totalWidth, height int, useColor bool) error {
	if len(accuracyLog) == 0 {
		return nil
	}
	values := IntsToFloats(accuracyLog)
	series := []Series{{Name: "Accuracy", Values: values}}
	if window > 1 {
		series = append(series, Series{
			Name:   fmt.Sprintf("Avg(%d)", window),
			Values: MovingAverage(values, window),
		})
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotPercent(w, "Accuracy per Session", series, width, height, useColor)
}

// KanaRow is a display row for per-kana aggregates.
type KanaRow struct {
	Symbol    string
	Expected  string
	Accuracy  int
	Correct   int
	Incorrect int
}

// KanaRows converts aggregates to rows sorted by lowest accuracy.
func KanaRows(aggs []model.KanaAggregate) []KanaRow {
	rows := make([]KanaRow, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, KanaRow{
			Symbol:    agg.Symbol,
			Expected:  agg.Expected,
			Accuracy:  quiz.Accuracy(agg.Correct, agg.Incorrect),
			Correct:   agg.Correct,
			Incorrect: agg.Incorrect,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Accuracy == rows[j].Accuracy {
			return rows[i].Symbol < rows[j].Symbol
		}
		return rows[i].Accuracy < rows[j].Accuracy
	})
	return rows
}

// RenderKanaTable prints per-kana aggregates.
func RenderKanaTable(w io.Writer, aggs []model.KanaAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No kana stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Kana (Windowed)"); err != nil {
		return err
	}

	headers := []string{"Kana", "Romaji", "Accuracy", "Correct", "Incorrect"}
	tableRows := make([][]string, 0, len(aggs))
	for _, r := range KanaRows(aggs) {
		tableRows = append(tableRows, []string{
			r.Symbol,
			r.Expected,
			fmt.Sprintf("%d%%", r.Accuracy),
			fmt.Sprintf("%d", r.Correct),
			fmt.Sprintf("%d", r.Incorrect),
		})
	}
	rightAlign := map[int]bool{2: true, 3: true, 4: true}
	lines := formatTable(headers, tableRows, rightAlign)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}
