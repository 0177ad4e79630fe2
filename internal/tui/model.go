// Package tui provides the Bubble Tea drill interface.
package tui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/kanadrill/internal/model"
	"github.com/verte-zerg/kanadrill/internal/quiz"
	statsPkg "github.com/verte-zerg/kanadrill/internal/stats"
	"github.com/verte-zerg/kanadrill/internal/vocab"
)

const (
	doneSentinel = "Done!"
	chartHeight  = 8
	maxContent   = 90
)

// Recorder persists finished passes and serves weak-kana aggregates.
type Recorder interface {
	InsertSession(ctx context.Context, stats model.SessionStats, answers []model.AnswerRecord) (int64, error)
	GetWeakKana(ctx context.Context, window int, set string) ([]model.KanaAggregate, error)
}

// Deps bundles what the drill UI needs to run passes.
type Deps struct {
	Config   model.Config
	Vocab    *vocab.Vocabulary
	Order    quiz.Order
	Log      quiz.AccuracyLog
	Recorder Recorder
}

// Model implements the Bubble Tea drill UI.
type Model struct {
	config   model.Config
	vocab    *vocab.Vocabulary
	order    quiz.Order
	log      quiz.AccuracyLog
	recorder Recorder

	session           *quiz.Session
	input             textinput.Model
	weakNoticePrinted bool

	width  int
	height int

	started   bool
	startedAt time.Time
	errMsg    string
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	subtitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	symbolStyle    = lipgloss.NewStyle().Bold(true).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#6E6E6E")).Padding(1, 4)
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a drill TUI model and starts the first pass.
func NewModel(deps Deps) (*Model, error) {
	if deps.Vocab == nil {
		return nil, fmt.Errorf("vocabulary is nil")
	}
	in := textinput.New()
	in.Placeholder = "romaji"
	in.Prompt = "> "
	in.CharLimit = 16
	in.Width = 16

	m := &Model{
		config:   deps.Config,
		vocab:    deps.Vocab,
		order:    deps.Order,
		log:      deps.Log,
		recorder: deps.Recorder,
		input:    in,
	}
	session, err := m.newSession()
	if err != nil {
		return nil, err
	}
	m.session = session
	m.resetPass()
	return m, nil
}

// Session exposes the current drill session.
func (m *Model) Session() *quiz.Session {
	return m.session
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		}
		if m.session.Phase() == quiz.PhaseCompleted {
			return m.updateCompleted(msg)
		}
		if msg.Type == tea.KeyEnter {
			m.submit()
			return m, nil
		}
		if !m.started && msg.Type == tea.KeyRunes {
			m.started = true
			m.startedAt = time.Now()
		}
		return m, m.updateInput(msg)
	default:
		return m, m.updateInput(msg)
	}
}

// updateInput feeds msg to the answer field and mirrors its value into the
// session buffer. Pastes arrive as non-key messages, so every path syncs.
func (m *Model) updateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.session.SetInput(m.input.Value())
	return cmd
}

func (m *Model) updateCompleted(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type != tea.KeyRunes {
		return m, nil
	}
	switch string(msg.Runes) {
	case "q":
		return m, tea.Quit
	case "r":
		m.restart()
		return m, textinput.Blink
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	contentWidth := m.contentWidth()
	parts := []string{
		titleStyle.Render("Hiragana Trainer"),
		subtitleStyle.Render("Type the romaji for each kana and press Enter"),
		"",
		m.renderStatus(),
		"",
		symbolStyle.Render(m.activeText()),
	}
	if verdict := m.renderVerdict(); verdict != "" {
		parts = append(parts, verdict)
	}
	if m.session.Phase() == quiz.PhaseInProgress {
		parts = append(parts, m.input.View())
	} else {
		parts = append(parts, footerStyle.Render("r new pass · q quit"))
	}
	if m.errMsg != "" {
		parts = append(parts, incorrectStyle.Render(m.errMsg))
	}
	parts = append(parts, "", wrapStyledCells(buildHistoryCells(m.session.History(), len(m.session.Remaining())), contentWidth))
	parts = append(parts, "", m.renderChart(contentWidth))

	content := lipgloss.JoinVertical(lipgloss.Center, parts...)
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return maxContent
	}
	width := int(float64(m.width) * 0.80)
	if width > maxContent {
		width = maxContent
	}
	if width < 1 {
		width = 1
	}
	return width
}

func (m *Model) activeText() string {
	if symbol, ok := m.session.Active(); ok {
		return symbol
	}
	return doneSentinel
}

func (m *Model) renderStatus() string {
	total := m.session.Total()
	left := len(m.session.Remaining())
	segments := []string{
		fmt.Sprintf("Set %s", m.session.VocabularyName()),
		fmt.Sprintf("Correct %d", m.session.Correct()),
		fmt.Sprintf("Wrong %d", m.session.Incorrect()),
		fmt.Sprintf("Left %d/%d", left, total),
		fmt.Sprintf("Accuracy %d%%", m.session.Accuracy()),
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) renderVerdict() string {
	res, ok := m.session.LastResult()
	if !ok {
		return ""
	}
	if res.IsCorrect {
		return correctStyle.Render(res.Message)
	}
	return incorrectStyle.Render(res.Message)
}

func (m *Model) renderChart(width int) string {
	log := m.session.AccuracyLog()
	if len(log) == 0 {
		return pendingStyle.Render("No finished passes yet.")
	}
	var buf bytes.Buffer
	if err := statsPkg.RenderCurvesWithSize(&buf, log, 0, width, chartHeight, true); err != nil {
		return incorrectStyle.Render(fmt.Sprintf("chart unavailable: %v", err))
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) submit() {
	m.session.SetInput(m.input.Value())
	raw := m.session.Input()
	if strings.TrimSpace(raw) == "" {
		return
	}
	res, err := m.session.Submit(raw)
	if errors.Is(err, quiz.ErrSessionComplete) {
		return
	}
	m.errMsg = ""
	if err != nil {
		m.errMsg = err.Error()
		logErrf("%v\n", err)
	}
	m.input.SetValue(m.session.Input())
	if res.Complete {
		m.input.Blur()
		m.finishSession()
	}
}

func (m *Model) restart() {
	if m.config.FocusWeak {
		session, err := m.newSession()
		if err != nil {
			logErrf("failed to start session: %v\n", err)
			m.session.Restart()
		} else {
			m.session = session
		}
	} else {
		m.session.Restart()
	}
	m.resetPass()
}

func (m *Model) resetPass() {
	m.started = false
	m.startedAt = time.Time{}
	m.errMsg = ""
	m.input.SetValue("")
	if m.session.Phase() == quiz.PhaseInProgress {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m *Model) newSession() (*quiz.Session, error) {
	v := m.vocab
	if m.config.FocusWeak {
		v = m.weakVocabulary()
	}
	session, err := quiz.New(v, m.order, m.log)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	return session, nil
}

func (m *Model) weakVocabulary() *vocab.Vocabulary {
	if m.recorder == nil {
		return m.vocab
	}
	ctx := context.Background()
	aggs, err := m.recorder.GetWeakKana(ctx, m.config.WeakWindow, m.vocab.Name)
	if err != nil {
		logErrf("failed to load weak kana: %v\n", err)
		return m.vocab
	}
	weak := statsPkg.SelectWeakKana(aggs, m.config.WeakTop)
	subset := vocab.Subset(m.vocab, weak)
	if subset.Len() == 0 {
		if !m.weakNoticePrinted {
			logErrln("no missed kana recorded yet; drilling the full set")
			m.weakNoticePrinted = true
		}
		return m.vocab
	}
	return subset
}

func (m *Model) finishSession() {
	if m.recorder == nil {
		return
	}
	endedAt := time.Now()
	startedAt := m.startedAt
	if !m.started {
		startedAt = endedAt
	}
	history := m.session.History()
	stats := model.SessionStats{
		StartedAt:  startedAt,
		EndedAt:    endedAt,
		VocabSet:   m.vocab.Name,
		Total:      len(history),
		Correct:    m.session.Correct(),
		Incorrect:  m.session.Incorrect(),
		Accuracy:   m.session.Accuracy(),
		DurationMs: endedAt.Sub(startedAt).Milliseconds(),
	}
	answers := make([]model.AnswerRecord, 0, len(history))
	for i, h := range history {
		answers = append(answers, model.AnswerRecord{
			Seq:       i,
			Symbol:    h.Symbol,
			Input:     h.Input,
			Expected:  h.Expected,
			IsCorrect: h.IsCorrect,
		})
	}

	ctx := context.Background()
	if _, err := m.recorder.InsertSession(ctx, stats, answers); err != nil {
		logErrf("failed to save session: %v\n", err)
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
