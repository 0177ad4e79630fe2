// Package vocab provides kana vocabularies: built-in sets and file loading.
package vocab

import (
	"fmt"
	"sort"
	"strings"
)

// Entry pairs a symbol with its expected romanized answer.
type Entry struct {
	Symbol string
	Answer string
}

// Vocabulary holds two parallel sequences paired by index.
type Vocabulary struct {
	Name    string
	Symbols []string
	Answers []string
}

// New builds a vocabulary from parallel symbol and answer sequences.
func New(name string, symbols, answers []string) (*Vocabulary, error) {
	if len(symbols) != len(answers) {
		return nil, fmt.Errorf("vocabulary %q: %d symbols but %d answers", name, len(symbols), len(answers))
	}
	return &Vocabulary{
		Name:    name,
		Symbols: append([]string(nil), symbols...),
		Answers: append([]string(nil), answers...),
	}, nil
}

// FromEntries builds a vocabulary from paired entries.
func FromEntries(name string, entries []Entry) *Vocabulary {
	v := &Vocabulary{
		Name:    name,
		Symbols: make([]string, len(entries)),
		Answers: make([]string, len(entries)),
	}
	for i, e := range entries {
		v.Symbols[i] = e.Symbol
		v.Answers[i] = e.Answer
	}
	return v
}

// Len returns the number of entries.
func (v *Vocabulary) Len() int {
	return len(v.Symbols)
}

// Entries returns the paired entries in vocabulary order.
func (v *Vocabulary) Entries() []Entry {
	out := make([]Entry, len(v.Symbols))
	for i, s := range v.Symbols {
		out[i] = Entry{Symbol: s, Answer: v.Answers[i]}
	}
	return out
}

// AnswerFor returns the answer paired with the first occurrence of symbol.
// A symbol that repeats resolves to its first answer.
func (v *Vocabulary) AnswerFor(symbol string) (string, bool) {
	for i, s := range v.Symbols {
		if s == symbol {
			return v.Answers[i], true
		}
	}
	return "", false
}

// Subset keeps entries whose symbol is in keep, preserving vocabulary order.
func Subset(v *Vocabulary, keep map[string]struct{}) *Vocabulary {
	entries := make([]Entry, 0, len(keep))
	for _, e := range v.Entries() {
		if _, ok := keep[e.Symbol]; ok {
			entries = append(entries, e)
		}
	}
	return FromEntries(v.Name, entries)
}

var builtinSets = map[string]func() []Entry{
	"basic":   basicEntries,
	"dakuten": dakutenEntries,
	"all": func() []Entry {
		return append(basicEntries(), dakutenEntries()...)
	},
}

// Builtin returns a built-in vocabulary by name.
func Builtin(name string) (*Vocabulary, error) {
	build, ok := builtinSets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown set %q (available: %s)", name, strings.Join(SetNames(), ", "))
	}
	return FromEntries(strings.ToLower(strings.TrimSpace(name)), build()), nil
}

// SetNames lists the built-in set names.
func SetNames() []string {
	names := make([]string, 0, len(builtinSets))
	for name := range builtinSets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
