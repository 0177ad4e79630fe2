// Package quiz implements the drill session state machine and scoring.
package quiz

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/verte-zerg/kanadrill/internal/vocab"
)

// ErrSessionComplete is returned by Submit once every symbol has been answered.
var ErrSessionComplete = errors.New("session is complete")

// Phase is the lifecycle state of a session.
type Phase int

const (
	PhaseInProgress Phase = iota // at least one symbol remains
	PhaseCompleted               // remaining is empty; Submit is rejected
)

func (p Phase) String() string {
	switch p {
	case PhaseInProgress:
		return "in-progress"
	case PhaseCompleted:
		return "completed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Order permutes entries at the start of a pass.
type Order interface {
	Shuffle(entries []vocab.Entry) []vocab.Entry
}

// HistoryEntry is a snapshot taken after each submitted answer.
type HistoryEntry struct {
	Symbol    string
	Input     string
	Expected  string
	IsCorrect bool
	Correct   int
	Incorrect int
	Accuracy  int
}

// Result describes the verdict of one Submit call.
type Result struct {
	IsCorrect bool
	Symbol    string
	Expected  string
	Correct   int
	Incorrect int
	Accuracy  int
	Complete  bool
	Message   string
}

// Session owns the state of one drill pass over a vocabulary.
type Session struct {
	vocab *vocab.Vocabulary
	order Order
	log   AccuracyLog

	phase     Phase
	remaining []string
	cursor    int
	correct   int
	incorrect int
	missed    []string
	history   []HistoryEntry
	input     string
	last      *Result

	accuracyLog []int
}

// New loads the accuracy log and starts the first pass.
func New(v *vocab.Vocabulary, order Order, log AccuracyLog) (*Session, error) {
	if v == nil {
		return nil, fmt.Errorf("vocabulary is nil")
	}
	if order == nil {
		return nil, fmt.Errorf("order is nil")
	}
	if log == nil {
		log = NewMemoryLog()
	}
	values, err := log.Load(AccuracyKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load accuracy log: %w", err)
	}
	s := &Session{
		vocab:       v,
		order:       order,
		log:         log,
		accuracyLog: append([]int{}, values...),
	}
	s.Restart()
	return s, nil
}

// Restart begins a fresh pass: reshuffles and resets counters.
// The accuracy log is kept.
func (s *Session) Restart() {
	shuffled := s.order.Shuffle(s.vocab.Entries())
	s.remaining = make([]string, len(shuffled))
	for i, e := range shuffled {
		s.remaining[i] = e.Symbol
	}
	s.cursor = 0
	s.correct = 0
	s.incorrect = 0
	s.missed = nil
	s.history = nil
	s.input = ""
	s.last = nil
	s.phase = PhaseInProgress
	if len(s.remaining) == 0 {
		s.phase = PhaseCompleted
	}
}

// Submit judges raw against the active symbol and advances the pass.
// When the pass completes, the final accuracy is appended to the log and
// saved; a save failure is returned after the transition is committed.
func (s *Session) Submit(raw string) (Result, error) {
	if s.phase == PhaseCompleted {
		return Result{}, ErrSessionComplete
	}

	symbol := s.remaining[s.cursor]
	// remaining is drawn from s.vocab, so the lookup cannot miss.
	expected, _ := s.vocab.AnswerFor(symbol)
	isCorrect := normalizeAnswer(raw) == expected

	if isCorrect {
		s.correct++
	} else {
		s.incorrect++
		s.missed = append(s.missed, symbol)
	}

	acc := Accuracy(s.correct, s.incorrect)
	s.history = append(s.history, HistoryEntry{
		Symbol:    symbol,
		Input:     raw,
		Expected:  expected,
		IsCorrect: isCorrect,
		Correct:   s.correct,
		Incorrect: s.incorrect,
		Accuracy:  acc,
	})

	s.remaining = append(s.remaining[:s.cursor], s.remaining[s.cursor+1:]...)

	var saveErr error
	if len(s.remaining) == 0 {
		s.phase = PhaseCompleted
		s.accuracyLog = append(s.accuracyLog, acc)
		if err := s.log.Save(AccuracyKey, append([]int{}, s.accuracyLog...)); err != nil {
			saveErr = fmt.Errorf("failed to save accuracy log: %w", err)
		}
	}

	s.cursor = max(0, s.cursor-1)
	s.input = ""

	res := Result{
		IsCorrect: isCorrect,
		Symbol:    symbol,
		Expected:  expected,
		Correct:   s.correct,
		Incorrect: s.incorrect,
		Accuracy:  acc,
		Complete:  s.phase == PhaseCompleted,
		Message:   verdictMessage(isCorrect, expected),
	}
	s.last = &res
	return res, saveErr
}

// Accuracy returns round(100*correct/(correct+incorrect)), or 0 with no answers.
func Accuracy(correct, incorrect int) int {
	total := correct + incorrect
	if total <= 0 {
		return 0
	}
	// Halves round up.
	return int(math.Floor(float64(correct)/float64(total)*100 + 0.5))
}

func normalizeAnswer(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func verdictMessage(isCorrect bool, expected string) string {
	if isCorrect {
		return fmt.Sprintf("Correct! Answer: %s", expected)
	}
	return fmt.Sprintf("Wrong! The correct answer: %s", expected)
}

// Phase returns the current lifecycle state.
func (s *Session) Phase() Phase {
	return s.phase
}

// Active returns the symbol under the cursor; false once the pass is complete.
func (s *Session) Active() (string, bool) {
	if s.phase == PhaseCompleted || len(s.remaining) == 0 {
		return "", false
	}
	return s.remaining[s.cursor], true
}

// Cursor returns the index of the active symbol in Remaining.
func (s *Session) Cursor() int {
	return s.cursor
}

// Remaining returns the symbols not yet answered in this pass.
func (s *Session) Remaining() []string {
	return append([]string{}, s.remaining...)
}

// Correct returns the number of correct answers in this pass.
func (s *Session) Correct() int {
	return s.correct
}

// Incorrect returns the number of incorrect answers in this pass.
func (s *Session) Incorrect() int {
	return s.incorrect
}

// Accuracy returns the overall accuracy of the pass so far.
func (s *Session) Accuracy() int {
	return Accuracy(s.correct, s.incorrect)
}

// Missed returns symbols answered incorrectly, in answer order.
func (s *Session) Missed() []string {
	return append([]string{}, s.missed...)
}

// History returns one snapshot per submitted answer.
func (s *Session) History() []HistoryEntry {
	return append([]HistoryEntry{}, s.history...)
}

// AccuracyLog returns the accuracies of all finished passes.
func (s *Session) AccuracyLog() []int {
	return append([]int{}, s.accuracyLog...)
}

// Total returns the vocabulary size.
func (s *Session) Total() int {
	return s.vocab.Len()
}

// VocabularyName returns the name of the drilled vocabulary.
func (s *Session) VocabularyName() string {
	return s.vocab.Name
}

// LastResult returns the verdict of the most recent Submit in this pass.
func (s *Session) LastResult() (Result, bool) {
	if s.last == nil {
		return Result{}, false
	}
	return *s.last, true
}

// Input returns the transient input buffer.
func (s *Session) Input() string {
	return s.input
}

// SetInput replaces the transient input buffer.
func (s *Session) SetInput(value string) {
	s.input = value
}
