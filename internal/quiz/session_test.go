package quiz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/kanadrill/internal/shuffle"
	"github.com/verte-zerg/kanadrill/internal/vocab"
)

// reverseOrder returns entries last-to-first.
type reverseOrder struct{}

func (reverseOrder) Shuffle(entries []vocab.Entry) []vocab.Entry {
	out := make([]vocab.Entry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}

type failingLog struct {
	loadErr error
	saveErr error
	saved   [][]int
}

func (f *failingLog) Load(string) ([]int, error) {
	return nil, f.loadErr
}

func (f *failingLog) Save(_ string, values []int) error {
	f.saved = append(f.saved, values)
	return f.saveErr
}

func twoKana(t *testing.T) *vocab.Vocabulary {
	t.Helper()
	v, err := vocab.New("test", []string{"あ", "い"}, []string{"a", "i"})
	require.NoError(t, err)
	return v
}

func TestSubmitAllCorrectCompletesAndPersists(t *testing.T) {
	log := NewMemoryLog()
	s, err := New(twoKana(t), reverseOrder{}, log)
	require.NoError(t, err)
	require.Equal(t, []string{"い", "あ"}, s.Remaining())

	res, err := s.Submit("i")
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 1, res.Correct)
	assert.Equal(t, 100, res.Accuracy)
	assert.False(t, res.Complete)
	assert.Equal(t, []string{"あ"}, s.Remaining())
	assert.Equal(t, "Correct! Answer: i", res.Message)

	res, err = s.Submit("A")
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 2, res.Correct)
	assert.Equal(t, 100, res.Accuracy)
	assert.True(t, res.Complete)
	assert.Empty(t, s.Remaining())
	assert.Equal(t, PhaseCompleted, s.Phase())

	stored, err := log.Load(AccuracyKey)
	require.NoError(t, err)
	assert.Equal(t, []int{100}, stored)
	assert.Equal(t, []int{100}, s.AccuracyLog())

	_, ok := s.Active()
	assert.False(t, ok)
}

func TestSubmitWrongAnswer(t *testing.T) {
	s, err := New(twoKana(t), reverseOrder{}, NewMemoryLog())
	require.NoError(t, err)

	res, err := s.Submit("wrong")
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, "i", res.Expected)
	assert.Equal(t, 1, s.Incorrect())
	assert.Equal(t, []string{"い"}, s.Missed())
	assert.Equal(t, 0, res.Accuracy)
	assert.Equal(t, []string{"あ"}, s.Remaining())
	assert.Equal(t, 0, s.Cursor())
	assert.Equal(t, "Wrong! The correct answer: i", res.Message)

	active, ok := s.Active()
	require.True(t, ok)
	assert.Equal(t, "あ", active)
}

func TestSubmitNormalizesInput(t *testing.T) {
	s, err := New(twoKana(t), reverseOrder{}, NewMemoryLog())
	require.NoError(t, err)

	res, err := s.Submit(" I  ")
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
}

func TestSubmitEmptyInputIsWrong(t *testing.T) {
	s, err := New(twoKana(t), reverseOrder{}, NewMemoryLog())
	require.NoError(t, err)

	res, err := s.Submit("")
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
}

func TestEmptyVocabularyStartsCompleted(t *testing.T) {
	v, err := vocab.New("empty", nil, nil)
	require.NoError(t, err)
	log := NewMemoryLog()
	s, err := New(v, reverseOrder{}, log)
	require.NoError(t, err)

	assert.Equal(t, PhaseCompleted, s.Phase())
	assert.Equal(t, 0, s.Accuracy())
	assert.Empty(t, s.History())

	_, err = s.Submit("a")
	assert.ErrorIs(t, err, ErrSessionComplete)

	stored, err := log.Load(AccuracyKey)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestSubmitAfterCompleteIsRejectedWithoutMutation(t *testing.T) {
	s, err := New(twoKana(t), reverseOrder{}, NewMemoryLog())
	require.NoError(t, err)
	_, err = s.Submit("i")
	require.NoError(t, err)
	_, err = s.Submit("x")
	require.NoError(t, err)

	before := s.History()
	_, err = s.Submit("a")
	require.True(t, errors.Is(err, ErrSessionComplete))
	assert.Equal(t, before, s.History())
	assert.Equal(t, 1, s.Correct())
	assert.Equal(t, 1, s.Incorrect())
	assert.Equal(t, []int{50}, s.AccuracyLog())
}

func TestNewLoadsExistingLog(t *testing.T) {
	log := NewMemoryLog()
	require.NoError(t, log.Save(AccuracyKey, []int{40, 80}))

	s, err := New(twoKana(t), reverseOrder{}, log)
	require.NoError(t, err)
	assert.Equal(t, []int{40, 80}, s.AccuracyLog())

	_, _ = s.Submit("i")
	_, _ = s.Submit("a")
	stored, err := log.Load(AccuracyKey)
	require.NoError(t, err)
	assert.Equal(t, []int{40, 80, 100}, stored)
}

func TestNewFailsWhenLogCannotLoad(t *testing.T) {
	_, err := New(twoKana(t), reverseOrder{}, &failingLog{loadErr: errors.New("disk gone")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestSaveFailureStillCompletes(t *testing.T) {
	log := &failingLog{saveErr: errors.New("read-only")}
	s, err := New(twoKana(t), reverseOrder{}, log)
	require.NoError(t, err)

	_, err = s.Submit("i")
	require.NoError(t, err)
	res, err := s.Submit("a")
	require.Error(t, err)
	assert.True(t, res.Complete)
	assert.Equal(t, PhaseCompleted, s.Phase())
	assert.Equal(t, [][]int{{100}}, log.saved)
}

func TestRestartKeepsAccuracyLog(t *testing.T) {
	s, err := New(twoKana(t), reverseOrder{}, NewMemoryLog())
	require.NoError(t, err)
	_, _ = s.Submit("x")
	_, _ = s.Submit("a")
	require.Equal(t, PhaseCompleted, s.Phase())

	s.Restart()
	assert.Equal(t, PhaseInProgress, s.Phase())
	assert.Equal(t, 0, s.Correct())
	assert.Equal(t, 0, s.Incorrect())
	assert.Empty(t, s.Missed())
	assert.Empty(t, s.History())
	assert.Len(t, s.Remaining(), 2)
	assert.Equal(t, []int{50}, s.AccuracyLog())
	_, ok := s.LastResult()
	assert.False(t, ok)
}

func TestDuplicateSymbolResolvesToFirstAnswer(t *testing.T) {
	v, err := vocab.New("dup", []string{"あ", "あ"}, []string{"a", "x"})
	require.NoError(t, err)
	s, err := New(v, reverseOrder{}, NewMemoryLog())
	require.NoError(t, err)

	first, err := s.Submit("a")
	require.NoError(t, err)
	assert.True(t, first.IsCorrect)

	second, err := s.Submit("x")
	require.NoError(t, err)
	assert.False(t, second.IsCorrect)
	assert.Equal(t, "a", second.Expected)
}

func TestRemainingSymbolsAlwaysResolveInVocabulary(t *testing.T) {
	v, err := vocab.Builtin("all")
	require.NoError(t, err)
	s, err := New(v, shuffle.NewSeeded(11), NewMemoryLog())
	require.NoError(t, err)

	for s.Phase() == PhaseInProgress {
		active, _ := s.Active()
		want, ok := v.AnswerFor(active)
		require.True(t, ok, "symbol %q not in vocabulary", active)
		res, err := s.Submit("?")
		require.NoError(t, err)
		assert.Equal(t, want, res.Expected)
	}
}

func TestSubmitClearsInputBuffer(t *testing.T) {
	s, err := New(twoKana(t), reverseOrder{}, NewMemoryLog())
	require.NoError(t, err)
	s.SetInput("i")
	_, err = s.Submit(s.Input())
	require.NoError(t, err)
	assert.Equal(t, "", s.Input())
}

func TestInvariantsHoldAcrossFullPass(t *testing.T) {
	v, err := vocab.Builtin("all")
	require.NoError(t, err)
	s, err := New(v, shuffle.NewSeeded(3), NewMemoryLog())
	require.NoError(t, err)

	assert.Equal(t, 0, s.Accuracy())
	for i := 0; s.Phase() == PhaseInProgress; i++ {
		active, ok := s.Active()
		require.True(t, ok)
		answer, _ := v.AnswerFor(active)
		if i%3 == 0 {
			answer = "nope"
		}
		res, err := s.Submit(answer)
		require.NoError(t, err)

		history := s.History()
		assert.Equal(t, v.Len(), len(s.Remaining())+len(history))
		assert.Equal(t, len(history), s.Correct()+s.Incorrect())
		assert.GreaterOrEqual(t, s.Accuracy(), 0)
		assert.LessOrEqual(t, s.Accuracy(), 100)
		assert.Equal(t, res.Accuracy, s.Accuracy())
		assert.Equal(t, history[len(history)-1].Accuracy, s.Accuracy())
		if len(s.Remaining()) > 0 {
			assert.Less(t, s.Cursor(), len(s.Remaining()))
		}
	}
	assert.Len(t, s.History(), v.Len())
	assert.Len(t, s.Missed(), (v.Len()+2)/3)
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		correct, incorrect, want int
	}{
		{0, 0, 0},
		{1, 0, 100},
		{0, 3, 0},
		{1, 1, 50},
		{2, 1, 67},
		{1, 2, 33},
		{1, 7, 13},
		{5, 3, 63},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Accuracy(tt.correct, tt.incorrect), "%d/%d", tt.correct, tt.incorrect)
	}
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "in-progress", PhaseInProgress.String())
	assert.Equal(t, "completed", PhaseCompleted.String())
}
