package vocab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnpairedSequences(t *testing.T) {
	_, err := New("broken", []string{"あ", "い"}, []string{"a"})
	require.Error(t, err)
}

func TestAnswerForUsesFirstOccurrence(t *testing.T) {
	v, err := New("dup", []string{"あ", "い", "あ"}, []string{"a", "i", "x"})
	require.NoError(t, err)

	answer, ok := v.AnswerFor("あ")
	require.True(t, ok)
	assert.Equal(t, "a", answer)

	_, ok = v.AnswerFor("ん")
	assert.False(t, ok)
}

func TestBuiltinSets(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"basic", 46},
		{"dakuten", 25},
		{"all", 71},
		{" Basic ", 46},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Builtin(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Len())
			assert.Len(t, v.Answers, tt.want)
		})
	}

	_, err := Builtin("katakana")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "basic")
}

func TestBuiltinHepburnSpellings(t *testing.T) {
	v, err := Builtin("basic")
	require.NoError(t, err)
	for symbol, want := range map[string]string{"し": "shi", "ち": "chi", "つ": "tsu", "ふ": "fu", "を": "wo", "ん": "n"} {
		got, ok := v.AnswerFor(symbol)
		require.True(t, ok, symbol)
		assert.Equal(t, want, got, symbol)
	}
}

func TestSetNamesSorted(t *testing.T) {
	assert.Equal(t, []string{"all", "basic", "dakuten"}, SetNames())
}

func TestSubsetKeepsOrder(t *testing.T) {
	v, err := Builtin("basic")
	require.NoError(t, err)
	sub := Subset(v, map[string]struct{}{"く": {}, "あ": {}, "ゑ": {}})
	assert.Equal(t, []string{"あ", "く"}, sub.Symbols)
	assert.Equal(t, []string{"a", "ku"}, sub.Answers)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mini.txt")
	content := "# my kana\nあ a\n\nい\tI\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mini", v.Name)
	assert.Equal(t, []Entry{{Symbol: "あ", Answer: "a"}, {Symbol: "い", Answer: "i"}}, v.Entries())
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("# nothing\n"), 0o644))
	_, err := Load(empty)
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("あ a\nい\n"), 0o644))
	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ":2:")

	nonLatin := filepath.Join(dir, "kana-answer.txt")
	require.NoError(t, os.WriteFile(nonLatin, []byte("あ あ\n"), 0o644))
	_, err = Load(nonLatin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ":1:")

	_, err = Load(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
}

func TestBuiltinAnswersAreRomaji(t *testing.T) {
	v, err := Builtin("all")
	require.NoError(t, err)
	for _, e := range v.Entries() {
		assert.True(t, isRomaji(e.Answer), "answer %q for %s", e.Answer, e.Symbol)
	}
}
