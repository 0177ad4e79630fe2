// Package shuffle randomizes vocabulary order for a drill pass.
package shuffle

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/kanadrill/internal/vocab"
)

// Shuffler produces random permutations of vocabulary entries.
type Shuffler struct {
	rnd *rand.Rand
}

// New returns a Shuffler seeded with the current time.
func New() *Shuffler {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Shuffler with a fixed seed.
func NewSeeded(seed int64) *Shuffler {
	return &Shuffler{rnd: rand.New(rand.NewSource(seed))}
}

// Shuffle returns a uniformly random permutation of entries.
// The input slice is left untouched.
func (s *Shuffler) Shuffle(entries []vocab.Entry) []vocab.Entry {
	out := make([]vocab.Entry, len(entries))
	copy(out, entries)
	for i := len(out) - 1; i > 0; i-- {
		j := s.rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
