package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Per-user focus state. All writes are single-statement upserts with
// defaults (focus 80, reliability 100) merged against the existing
// row, and both scores stay clamped to [0,100] inside the statement.

func GetFocusState(userID string) (*FocusState, error) {
	var s FocusState
	err := DB.QueryRow(
		`SELECT user_id, last_activity_at, focus_score, reliability_score, overdue_count, last_overdue_at
		 FROM user_focus_state WHERE user_id = ?`, userID,
	).Scan(&s.UserID, &s.LastActivityAt, &s.FocusScore, &s.ReliabilityScore, &s.OverdueCount, &s.LastOverdueAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query focus state: %w", err)
	}
	return &s, nil
}

// ApplyReturnBonus grants the return-from-break score bonus: +2 focus
// always, +3 reliability only for an on-time return.
func ApplyReturnBonus(userID string, clean bool, now time.Time) error {
	_, err := DB.Exec(
		`INSERT INTO user_focus_state (user_id, last_activity_at, focus_score, reliability_score, overdue_count, updated_at)
		 VALUES (?, ?, 82, 100, 0, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   last_activity_at = excluded.last_activity_at,
		   focus_score = MIN(100, user_focus_state.focus_score + 2),
		   reliability_score = CASE WHEN ?
		     THEN MIN(100, user_focus_state.reliability_score + 3)
		     ELSE user_focus_state.reliability_score END,
		   updated_at = excluded.updated_at`,
		userID, now, now, clean,
	)
	if err != nil {
		return fmt.Errorf("apply return bonus: %w", err)
	}
	return nil
}

// ApplyEscalationPenalty applies the one-time overdue penalty.
func ApplyEscalationPenalty(userID string, now time.Time) error {
	_, err := DB.Exec(
		`INSERT INTO user_focus_state (user_id, last_activity_at, focus_score, reliability_score, overdue_count, last_overdue_at, updated_at)
		 VALUES (?, ?, 75, 90, 1, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   focus_score = MAX(0, user_focus_state.focus_score - 5),
		   reliability_score = MAX(0, user_focus_state.reliability_score - 10),
		   overdue_count = user_focus_state.overdue_count + 1,
		   last_overdue_at = excluded.last_overdue_at,
		   updated_at = excluded.updated_at`,
		userID, now, now, now,
	)
	if err != nil {
		return fmt.Errorf("apply escalation penalty: %w", err)
	}
	return nil
}

func UpsertActivityScore(userID string, score int, now time.Time) error {
	_, err := DB.Exec(
		`INSERT INTO user_focus_state (user_id, last_activity_at, focus_score, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   last_activity_at = excluded.last_activity_at,
		   focus_score = excluded.focus_score,
		   updated_at = excluded.updated_at`,
		userID, now, score, now,
	)
	if err != nil {
		return fmt.Errorf("upsert activity score: %w", err)
	}
	return nil
}

func InsertScoreLog(userID string, score int, now time.Time) error {
	_, err := DB.Exec(
		"INSERT INTO focus_score_log (id, user_id, score, created_at) VALUES (?, ?, ?, ?)",
		uuid.NewString(), userID, score, now,
	)
	if err != nil {
		return fmt.Errorf("insert score log: %w", err)
	}
	return nil
}

// RecentScores returns up to limit score-log entries in chronological
// order, oldest first.
func RecentScores(userID string, limit int) ([]int, error) {
	rows, err := DB.Query(
		`SELECT score FROM focus_score_log
		 WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query score log: %w", err)
	}
	defer rows.Close()

	var scores []int
	for rows.Next() {
		var s int
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(scores)-1; i < j; i, j = i+1, j-1 {
		scores[i], scores[j] = scores[j], scores[i]
	}
	return scores, nil
}

// Gamification

func GetGamification(userID string) (*Gamification, error) {
	var g Gamification
	err := DB.QueryRow(
		`SELECT total_points, current_streak, longest_streak, last_session_date
		 FROM user_gamification WHERE user_id = ?`, userID,
	).Scan(&g.TotalPoints, &g.CurrentStreak, &g.LongestStreak, &g.LastSessionDate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query gamification: %w", err)
	}
	return &g, nil
}

func UpsertGamification(userID string, g Gamification, now time.Time) error {
	_, err := DB.Exec(
		`INSERT INTO user_gamification (user_id, total_points, current_streak, longest_streak, last_session_date, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   total_points = excluded.total_points,
		   current_streak = excluded.current_streak,
		   longest_streak = excluded.longest_streak,
		   last_session_date = excluded.last_session_date,
		   updated_at = excluded.updated_at`,
		userID, g.TotalPoints, g.CurrentStreak, g.LongestStreak, g.LastSessionDate, now,
	)
	if err != nil {
		return fmt.Errorf("upsert gamification: %w", err)
	}
	return nil
}
