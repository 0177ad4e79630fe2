// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/kanadrill/internal/model"
	"github.com/verte-zerg/kanadrill/internal/stats"
	"github.com/verte-zerg/kanadrill/internal/store"
)

const (
	tabOverview = iota
	tabKanaTable
	tabMissed
)

const (
	plotHeight  = 10
	missedLimit = 10
	missedBar   = 30
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	missedBarStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store *store.Store
	cfg   model.StatsConfig

	report stats.Report
	errMsg string

	activeTab int
	viewports [len(tabNames)]viewport.Model
	kanaTable table.Model

	width  int
	height int

	filterMode  bool
	fields      [fieldCount]textinput.Model
	filterIndex int
	filterError string
}

var tabNames = [...]string{"Overview", "Kana Table", "Most Missed"}

// Settings form fields, in tab order.
const (
	fieldSet = iota
	fieldSince
	fieldLast
	fieldWindow
	fieldCount
)

var fieldPrompts = [fieldCount]string{
	fieldSet:    "Set: ",
	fieldSince:  "Since (YYYY-MM-DD): ",
	fieldLast:   "Last: ",
	fieldWindow: "Curve window: ",
}

const (
	helpLine       = "Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Quit: q"
	filterHelpLine = "tab/shift+tab: next field  enter: apply  esc: cancel  quit: q"
	dateLayout     = "2006-01-02"
)

// NewModel constructs a stats UI model.
func NewModel(st *store.Store, cfg model.StatsConfig) *Model {
	m := &Model{store: st, cfg: cfg}
	for i := range m.fields {
		in := textinput.New()
		in.Prompt = fieldPrompts[i]
		in.Cursor.SetMode(cursor.CursorBlink)
		m.fields[i] = in
	}
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	cols, _ := buildKanaTableData(nil)
	m.kanaTable = table.New(table.WithColumns(cols), table.WithHeight(1))
	m.kanaTable.SetStyles(kanaTableStyles())
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	onTable := m.activeTab == tabKanaTable
	switch msg.String() {
	case "left", "h":
		m.moveTab(-1)
		return m, tea.ClearScreen
	case "right", "l":
		m.moveTab(1)
		return m, tea.ClearScreen
	case "=", "-":
		if msg.String() == "=" {
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
		} else {
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
		}
		m.refreshReport()
		return m, nil
	case "/":
		return m, m.startFilter()
	case "g", "home":
		if onTable {
			m.kanaTable.GotoTop()
		} else {
			m.viewports[m.activeTab].GotoTop()
		}
		return m, nil
	case "G", "end":
		if onTable {
			m.kanaTable.GotoBottom()
		} else {
			m.viewports[m.activeTab].GotoBottom()
		}
		return m, nil
	}
	var cmd tea.Cmd
	if onTable {
		m.kanaTable, cmd = m.kanaTable.Update(msg)
	} else {
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := m.renderHeader()
	footer := m.renderFooter()
	return strings.Join([]string{
		frame(header, m.width, lipgloss.Height(header)),
		frame(m.renderBody(), m.width, m.bodyHeight()),
		frame(footer, m.width, lipgloss.Height(footer)),
	}, "\n")
}

// bodyHeight is what remains of the window once header and footer are drawn.
func (m *Model) bodyHeight() int {
	return max(1, m.height-lipgloss.Height(m.renderHeader())-lipgloss.Height(m.renderFooter()))
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	height := m.bodyHeight()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = height
	}
	m.kanaTable.SetWidth(m.width)
	// The table height includes its header row and rule.
	m.kanaTable.SetHeight(height)
	for i := range m.fields {
		m.fields[i].Width = max(10, m.width-lipgloss.Width(m.fields[i].Prompt)-2)
	}
}

func (m *Model) moveTab(delta int) {
	n := len(tabNames)
	m.activeTab = ((m.activeTab+delta)%n + n) % n
	if m.activeTab == tabKanaTable {
		m.kanaTable.Focus()
	} else {
		m.kanaTable.Blur()
	}
}

func (m *Model) renderHeader() string {
	parts := make([]string, len(tabNames))
	for i, name := range tabNames {
		style := inactiveNavStyle
		if i == m.activeTab {
			style = activeNavStyle
		}
		parts[i] = style.Render(name)
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	return bar + "\n" + headerStyle.Render(truncate(m.filterSummary(), m.width))
}

func (m *Model) filterSummary() string {
	set, since, last := "any", "any", "all"
	if m.cfg.Set != "" {
		set = m.cfg.Set
	}
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format(dateLayout)
	}
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	return fmt.Sprintf("Settings: set=%s  since=%s  last=%s  window=%d", set, since, last, m.cfg.CurveWindow)
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render(filterHelpLine)
	}
	footer := headerStyle.Render(helpLine)
	if m.errMsg != "" {
		footer += "\n" + errorStyle.Render(m.errMsg)
	}
	return footer
}

func (m *Model) renderBody() string {
	if m.filterMode {
		lines := []string{"Settings (enter to apply, esc to cancel)"}
		for _, in := range m.fields {
			lines = append(lines, in.View())
		}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		return strings.Join(lines, "\n")
	}
	if m.activeTab != tabKanaTable {
		return m.viewports[m.activeTab].View()
	}
	switch {
	case len(m.report.Sessions) == 0:
		return "No sessions found."
	case len(m.report.KanaAggsWindow) == 0:
		return "No kana stats found."
	}
	return tableMutedStyle.Render(m.kanaTable.View())
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
	} else {
		m.errMsg = ""
		m.report = report
		cols, rows := buildKanaTableData(report.KanaAggsWindow)
		m.kanaTable.SetColumns(cols)
		m.kanaTable.SetRows(rows)
	}
	m.resize()
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if m.errMsg != "" {
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report.AccuracyLog, m.report.Sessions, m.cfg.CurveWindow, width))
	m.viewports[tabMissed].SetContent(renderMissed(m.report.KanaAggsAll, missedLimit))
}

func renderOverview(accuracyLog []int, sessions []model.SessionAggregate, window, width int) string {
	if len(accuracyLog) == 0 {
		return "No sessions found."
	}
	summary := renderSummaryCards(accuracyLog, sessions, width)
	curves := renderCurves(accuracyLog, window, width)
	return strings.TrimRight(summary+"\n\n"+curves, "\n")
}

func renderSummaryCards(accuracyLog []int, sessions []model.SessionAggregate, width int) string {
	if len(accuracyLog) == 0 {
		return "No sessions found."
	}
	sum := stats.Summarize(accuracyLog, sessions)
	cards := []string{
		metricCard("Sessions", fmt.Sprintf("%d", sum.Sessions)),
		metricCard("Avg Acc", fmt.Sprintf("%.1f%%", sum.AvgAccuracy)),
		metricCard("Best Acc", fmt.Sprintf("%d%%", sum.BestAccuracy)),
		metricCard("Last Acc", fmt.Sprintf("%d%%", sum.LastAccuracy)),
		metricCard("Avg Pace", fmt.Sprintf("%.1f/min", sum.AvgPerMinute)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderCurves(accuracyLog []int, window, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderCurvesWithSize(&buf, accuracyLog, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderMissed(aggs []model.KanaAggregate, limit int) string {
	top := stats.TopKanaByMisses(aggs, limit)
	if len(top) == 0 {
		return "No missed kana yet."
	}
	bySymbol := make(map[string]model.KanaAggregate, len(aggs))
	maxMisses := 0
	for _, agg := range aggs {
		bySymbol[agg.Symbol] = agg
		if agg.Incorrect > maxMisses {
			maxMisses = agg.Incorrect
		}
	}
	lines := []string{headerStyle.Render(fmt.Sprintf("Top %d missed kana", len(top)))}
	for _, symbol := range top {
		agg := bySymbol[symbol]
		barLen := max(1, agg.Incorrect*missedBar/max(1, maxMisses))
		lines = append(lines, fmt.Sprintf("%s  %-4s %s %d",
			symbol,
			agg.Expected,
			missedBarStyle.Render(strings.Repeat("█", barLen)),
			agg.Incorrect,
		))
	}
	return strings.Join(lines, "\n")
}

func kanaTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func buildKanaTableData(aggs []model.KanaAggregate) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Kana", Width: 4},
		{Title: "Romaji", Width: 6},
		{Title: "Accuracy", Width: 9},
		{Title: "Correct", Width: 7},
		{Title: "Incorrect", Width: 9},
		{Title: "Total", Width: 6},
	}
	rows := make([]table.Row, 0, len(aggs))
	for _, r := range stats.KanaRows(aggs) {
		rows = append(rows, table.Row{
			r.Symbol,
			r.Expected,
			fmt.Sprintf("%d%%", r.Accuracy),
			fmt.Sprintf("%d", r.Correct),
			fmt.Sprintf("%d", r.Incorrect),
			fmt.Sprintf("%d", r.Correct+r.Incorrect),
		})
	}
	return columns, rows
}

func (m *Model) startFilter() tea.Cmd {
	m.filterMode = true
	m.filterError = ""
	m.fields[fieldSet].SetValue(m.cfg.Set)
	m.fields[fieldSince].SetValue("")
	if m.cfg.Since != nil {
		m.fields[fieldSince].SetValue(m.cfg.Since.Format(dateLayout))
	}
	m.fields[fieldLast].SetValue("")
	if m.cfg.Last > 0 {
		m.fields[fieldLast].SetValue(strconv.Itoa(m.cfg.Last))
	}
	m.fields[fieldWindow].SetValue(strconv.Itoa(m.cfg.CurveWindow))
	return m.focusField(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.refreshReport()
		return m, nil
	case tea.KeyTab:
		return m, m.focusField(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.focusField(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.fields[m.filterIndex], cmd = m.fields[m.filterIndex].Update(msg)
	return m, cmd
}

// focusField focuses field idx, wrapping around both ends of the form.
func (m *Model) focusField(idx int) tea.Cmd {
	m.filterIndex = (idx%fieldCount + fieldCount) % fieldCount
	var cmd tea.Cmd
	for i := range m.fields {
		if i == m.filterIndex {
			cmd = m.fields[i].Focus()
		} else {
			m.fields[i].Blur()
		}
	}
	return cmd
}

// applyFilter parses the settings form into m.cfg; m.cfg is untouched on error.
func (m *Model) applyFilter() error {
	value := func(i int) string { return strings.TrimSpace(m.fields[i].Value()) }

	cfg := model.StatsConfig{Set: strings.ToLower(value(fieldSet))}
	if v := value(fieldSince); v != "" {
		since, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			return fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		cfg.Since = &since
	}
	if v := value(fieldLast); v != "" {
		last, err := strconv.Atoi(v)
		if err != nil || last < 0 {
			return fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		cfg.Last = last
	}
	if v := value(fieldWindow); v != "" {
		window, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid curve window (use integer)")
		}
		if window < 1 {
			return fmt.Errorf("invalid curve window (use integer >= 1)")
		}
		cfg.CurveWindow = window
	}
	m.cfg = cfg
	return nil
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	if n%5 == 0 {
		return n + 5
	}
	return ((n / 5) + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

// frame pads each line to width and crops or pads to exactly height lines.
func frame(s string, width, height int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w < width {
			lines[i] = line + strings.Repeat(" ", width-w)
		}
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
