package quiz

// AccuracyKey identifies the per-session accuracy log in the backing store.
const AccuracyKey = "hiraganaAccuracy"

// AccuracyLog persists the ordered list of finished-pass accuracies.
// Load reports a missing key as an empty slice and a nil error.
type AccuracyLog interface {
	Load(key string) ([]int, error)
	Save(key string, values []int) error
}

// MemoryLog is an in-memory AccuracyLog.
type MemoryLog struct {
	values map[string][]int
}

// NewMemoryLog returns an empty MemoryLog.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{values: map[string][]int{}}
}

// Load implements AccuracyLog.
func (m *MemoryLog) Load(key string) ([]int, error) {
	return append([]int{}, m.values[key]...), nil
}

// Save implements AccuracyLog.
func (m *MemoryLog) Save(key string, values []int) error {
	if m.values == nil {
		m.values = map[string][]int{}
	}
	m.values[key] = append([]int{}, values...)
	return nil
}
