package stats

import (
	"context"

	"github.com/verte-zerg/kanadrill/internal/model"
	"github.com/verte-zerg/kanadrill/internal/quiz"
	"github.com/verte-zerg/kanadrill/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	AccuracyLog      []int
	Sessions         []model.SessionAggregate
	WindowSessionIDs []int64
	KanaAggsAll      []model.KanaAggregate
	KanaAggsWindow   []model.KanaAggregate
}

// BuildReport loads and prepares data for stats rendering.
// Without a set or since filter the accuracy series is the stored log;
// with one it is rebuilt from the matching sessions.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	accuracyLog, err := st.Load(quiz.AccuracyKey)
	if err != nil {
		return Report{}, err
	}
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	// The kv log spans every set; filtered views chart the matching passes.
	if cfg.Set != "" || cfg.Since != nil {
		accuracyLog = make([]int, len(sessions))
		for i, s := range sessions {
			accuracyLog[i] = s.Accuracy
		}
	}
	if cfg.Last > 0 {
		if len(sessions) > cfg.Last {
			sessions = sessions[len(sessions)-cfg.Last:]
		}
		if len(accuracyLog) > cfg.Last {
			accuracyLog = accuracyLog[len(accuracyLog)-cfg.Last:]
		}
	}

	allIDs := sessionIDs(sessions)
	windowIDs := lastSessionIDs(sessions, cfg.CurveWindow)
	kanaAggsAll, err := st.ListKanaAggregatesForSessions(ctx, allIDs)
	if err != nil {
		return Report{}, err
	}
	kanaAggsWindow, err := st.ListKanaAggregatesForSessions(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}

	return Report{
		AccuracyLog:      accuracyLog,
		Sessions:         sessions,
		WindowSessionIDs: windowIDs,
		KanaAggsAll:      kanaAggsAll,
		KanaAggsWindow:   kanaAggsWindow,
	}, nil
}

func sessionIDs(sessions []model.SessionAggregate) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}

func lastSessionIDs(sessions []model.SessionAggregate, window int) []int64 {
	if window <= 0 || len(sessions) <= window {
		return sessionIDs(sessions)
	}
	return sessionIDs(sessions[len(sessions)-window:])
}
