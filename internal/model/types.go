// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	Set        string
	VocabFile  string
	FocusWeak  bool
	WeakTop    int
	WeakWindow int
	Seed       int64
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Set         string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// SessionStats captures a completed drill pass.
type SessionStats struct {
	StartedAt  time.Time
	EndedAt    time.Time
	VocabSet   string
	Total      int
	Correct    int
	Incorrect  int
	Accuracy   int
	DurationMs int64
}

// AnswerRecord stores one submitted answer of a pass.
type AnswerRecord struct {
	Seq       int
	Symbol    string
	Input     string
	Expected  string
	IsCorrect bool
}

// KanaAggregate aggregates answers for one symbol across sessions.
type KanaAggregate struct {
	Symbol    string
	Expected  string
	Correct   int
	Incorrect int
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID  int64
	EndedAt    time.Time
	VocabSet   string
	Correct    int
	Incorrect  int
	Accuracy   int
	DurationMs int64
}
