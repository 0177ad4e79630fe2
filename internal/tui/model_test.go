package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/kanadrill/internal/model"
	"github.com/verte-zerg/kanadrill/internal/quiz"
	"github.com/verte-zerg/kanadrill/internal/store"
	"github.com/verte-zerg/kanadrill/internal/vocab"
)

var _ Recorder = (*store.Store)(nil)

type reverseOrder struct{}

func (reverseOrder) Shuffle(entries []vocab.Entry) []vocab.Entry {
	out := make([]vocab.Entry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}

type fakeRecorder struct {
	sessions []model.SessionStats
	answers  [][]model.AnswerRecord
	weak     []model.KanaAggregate
	err      error
}

func (f *fakeRecorder) InsertSession(_ context.Context, stats model.SessionStats, answers []model.AnswerRecord) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.sessions = append(f.sessions, stats)
	f.answers = append(f.answers, answers)
	return int64(len(f.sessions)), nil
}

func (f *fakeRecorder) GetWeakKana(_ context.Context, _ int, _ string) ([]model.KanaAggregate, error) {
	return f.weak, nil
}

func newTestModel(t *testing.T, cfg model.Config, rec *fakeRecorder) *Model {
	t.Helper()
	v, err := vocab.New("test", []string{"あ", "い"}, []string{"a", "i"})
	if err != nil {
		t.Fatalf("vocab.New failed: %v", err)
	}
	m, err := NewModel(Deps{
		Config:   cfg,
		Vocab:    v,
		Order:    reverseOrder{},
		Log:      quiz.NewMemoryLog(),
		Recorder: rec,
	})
	if err != nil {
		t.Fatalf("NewModel failed: %v", err)
	}
	return m
}

func typeText(m *Model, text string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func pressEnter(m *Model) {
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

func TestModelDrillsAndRecordsPass(t *testing.T) {
	rec := &fakeRecorder{}
	m := newTestModel(t, model.Config{}, rec)

	if symbol, ok := m.Session().Active(); !ok || symbol != "い" {
		t.Fatalf("expected い active, got %q", symbol)
	}
	typeText(m, "I")
	if m.Session().Input() != "I" {
		t.Fatalf("expected input mirrored into session, got %q", m.Session().Input())
	}
	pressEnter(m)
	if m.Session().Correct() != 1 {
		t.Fatalf("expected 1 correct, got %d", m.Session().Correct())
	}
	if m.input.Value() != "" {
		t.Fatalf("expected input cleared after submit")
	}

	typeText(m, "o")
	pressEnter(m)
	if m.Session().Phase() != quiz.PhaseCompleted {
		t.Fatalf("expected completed phase")
	}
	if m.input.Focused() {
		t.Fatalf("expected input blurred on completion")
	}
	if len(rec.sessions) != 1 {
		t.Fatalf("expected 1 recorded session, got %d", len(rec.sessions))
	}
	got := rec.sessions[0]
	if got.Correct != 1 || got.Incorrect != 1 || got.Accuracy != 50 || got.Total != 2 || got.VocabSet != "test" {
		t.Fatalf("unexpected session stats: %+v", got)
	}
	answers := rec.answers[0]
	if len(answers) != 2 || answers[1].Symbol != "あ" || answers[1].Input != "o" || answers[1].IsCorrect {
		t.Fatalf("unexpected answers: %+v", answers)
	}
	if log := m.Session().AccuracyLog(); len(log) != 1 || log[0] != 50 {
		t.Fatalf("unexpected accuracy log: %v", log)
	}
}

func TestModelIgnoresBlankSubmit(t *testing.T) {
	m := newTestModel(t, model.Config{}, &fakeRecorder{})
	pressEnter(m)
	typeText(m, "   ")
	pressEnter(m)
	if len(m.Session().History()) != 0 {
		t.Fatalf("expected blank submit to be ignored")
	}
}

type tickMsg struct{}

func TestModelSubmitsValueSetOutsideKeyPath(t *testing.T) {
	m := newTestModel(t, model.Config{}, &fakeRecorder{})

	// Pasted text lands in the field without a KeyMsg.
	m.input.SetValue("i")
	m.Update(tickMsg{})
	if got := m.Session().Input(); got != "i" {
		t.Fatalf("expected non-key update to sync input, got %q", got)
	}
	pressEnter(m)
	if m.Session().Correct() != 1 {
		t.Fatalf("expected synced input to be judged correct, got %d", m.Session().Correct())
	}

	m.input.SetValue("a")
	pressEnter(m)
	if m.Session().Correct() != 2 || m.Session().Phase() != quiz.PhaseCompleted {
		t.Fatalf("expected Enter to read the field value, correct=%d", m.Session().Correct())
	}
}

func TestModelRestartAfterCompletion(t *testing.T) {
	m := newTestModel(t, model.Config{}, &fakeRecorder{})
	typeText(m, "i")
	pressEnter(m)
	typeText(m, "a")
	pressEnter(m)

	typeText(m, "x")
	if m.Session().Input() != "" {
		t.Fatalf("expected keys other than r and q to be ignored when complete")
	}
	typeText(m, "r")
	if m.Session().Phase() != quiz.PhaseInProgress {
		t.Fatalf("expected a new pass after r")
	}
	if !m.input.Focused() {
		t.Fatalf("expected input focused for new pass")
	}
	if log := m.Session().AccuracyLog(); len(log) != 1 || log[0] != 100 {
		t.Fatalf("expected accuracy log kept across passes, got %v", log)
	}
}

func TestModelQuitKeys(t *testing.T) {
	m := newTestModel(t, model.Config{}, &fakeRecorder{})
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc}); cmd == nil {
		t.Fatalf("expected quit command on esc")
	}
	typeText(m, "q")
	if m.Session().Input() != "q" {
		t.Fatalf("expected q typed as input during a pass, got %q", m.Session().Input())
	}
}

func TestModelRecorderFailureDoesNotCrash(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	m := newTestModel(t, model.Config{}, rec)
	typeText(m, "i")
	pressEnter(m)
	typeText(m, "a")
	pressEnter(m)
	if m.Session().Phase() != quiz.PhaseCompleted {
		t.Fatalf("expected completed phase despite recorder failure")
	}
}

func TestModelFocusWeakUsesMissedKana(t *testing.T) {
	rec := &fakeRecorder{weak: []model.KanaAggregate{
		{Symbol: "あ", Expected: "a", Correct: 1, Incorrect: 2},
		{Symbol: "い", Expected: "i", Correct: 3, Incorrect: 0},
	}}
	m := newTestModel(t, model.Config{FocusWeak: true, WeakTop: 5, WeakWindow: 10}, rec)
	if m.Session().Total() != 1 {
		t.Fatalf("expected weak subset of 1 kana, got %d", m.Session().Total())
	}
	if symbol, _ := m.Session().Active(); symbol != "あ" {
		t.Fatalf("expected あ active, got %q", symbol)
	}
}

func TestModelFocusWeakFallsBackToFullSet(t *testing.T) {
	m := newTestModel(t, model.Config{FocusWeak: true, WeakTop: 5, WeakWindow: 10}, &fakeRecorder{})
	if m.Session().Total() != 2 {
		t.Fatalf("expected full set without history, got %d", m.Session().Total())
	}
}

func TestViewShowsDoneAndStatus(t *testing.T) {
	m := newTestModel(t, model.Config{}, &fakeRecorder{})
	view := m.View()
	if !containsAll(view, []string{"い", "Correct 0", "Left 2/2", "Accuracy 0%", "No finished passes yet."}) {
		t.Fatalf("view missing expected segments:\n%s", view)
	}
	typeText(m, "i")
	pressEnter(m)
	if !strings.Contains(m.View(), "Correct! Answer: i") {
		t.Fatalf("expected verdict banner in view")
	}
	typeText(m, "u")
	pressEnter(m)
	view = m.View()
	if !containsAll(view, []string{doneSentinel, "Wrong! The correct answer: a", "Accuracy 50%", "r new pass"}) {
		t.Fatalf("completed view missing expected segments:\n%s", view)
	}
	if strings.Contains(view, "No finished passes yet.") {
		t.Fatalf("expected accuracy chart after a finished pass")
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
