package focus

import (
	"github.com/Dbangs20/focusFLow/internal/db"
)

const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

type ActivityResult struct {
	FocusScore int    `json:"focusScore"`
	Trend      string `json:"trend"`
}

// FocusStateView is the dashboard read: the per-user state row with
// the derived trend, baseline-valued when no row exists yet.
type FocusStateView struct {
	db.FocusState
	Trend string `json:"trend"`
}

// RecordActivity applies one activity ping. Idle time is measured
// server-side since the previous ping; the delta punishes idleness on
// a stepped scale and rewards recent activity, with an extra point
// for an explicit focus event. Every ping appends a score-log entry
// so the trend window has data.
func (s *Service) RecordActivity(userID, kind string) (*ActivityResult, error) {
	if kind != "activity" && kind != "focus" {
		return nil, validation("type must be 'activity' or 'focus'")
	}

	now := s.clock.Now()
	current := BaselineFocusScore
	var idleSeconds int64
	if state, err := db.GetFocusState(userID); err != nil {
		return nil, err
	} else if state != nil {
		current = state.FocusScore
		if state.LastActivityAt != nil {
			idleSeconds = flooredSeconds(now.Sub(*state.LastActivityAt))
		}
	}

	var delta int
	switch {
	case idleSeconds > 600:
		delta = -8
	case idleSeconds > 300:
		delta = -4
	case idleSeconds > 120:
		delta = -2
	default:
		delta = 1
	}
	if kind == "focus" {
		delta++
	}

	score := clampScore(current + delta)
	if err := db.UpsertActivityScore(userID, score, now); err != nil {
		return nil, err
	}
	if err := db.InsertScoreLog(userID, score, now); err != nil {
		return nil, err
	}

	trend, err := s.Trend(userID)
	if err != nil {
		return nil, err
	}
	return &ActivityResult{FocusScore: score, Trend: trend}, nil
}

// Trend compares the oldest and newest entries in the recent score
// window. Fewer than two entries reads as stable.
func (s *Service) Trend(userID string) (string, error) {
	scores, err := db.RecentScores(userID, TrendWindow)
	if err != nil {
		return "", err
	}
	if len(scores) < 2 {
		return TrendStable, nil
	}
	first, last := scores[0], scores[len(scores)-1]
	switch {
	case last > first:
		return TrendUp, nil
	case last < first:
		return TrendDown, nil
	default:
		return TrendStable, nil
	}
}

// FocusState returns the viewer's scores and trend.
func (s *Service) FocusState(userID string) (*FocusStateView, error) {
	state, err := db.GetFocusState(userID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = &db.FocusState{
			UserID:           userID,
			FocusScore:       BaselineFocusScore,
			ReliabilityScore: BaselineReliability,
		}
	}
	trend, err := s.Trend(userID)
	if err != nil {
		return nil, err
	}
	return &FocusStateView{FocusState: *state, Trend: trend}, nil
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
