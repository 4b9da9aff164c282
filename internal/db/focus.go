package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Focus sessions

func InsertTeamSession(id string) error {
	_, err := DB.Exec(
		"INSERT INTO team_focus_sessions (id) VALUES (?) ON CONFLICT(id) DO NOTHING", id,
	)
	if err != nil {
		return fmt.Errorf("insert team session: %w", err)
	}
	return nil
}

func InsertFocusSession(fs *FocusSession) error {
	_, err := DB.Exec(
		`INSERT INTO focus_sessions (id, name, admin_user_id, duration_seconds, team_session_id, created_at, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fs.ID, fs.Name, fs.AdminUserID, fs.DurationSeconds, fs.TeamSessionID, fs.CreatedAt, fs.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("insert focus session: %w", err)
	}
	return nil
}

// GetFocusSession returns nil without error when the session does not
// exist; callers decide whether that is a NotFound.
func GetFocusSession(id string) (*FocusSession, error) {
	var fs FocusSession
	err := DB.QueryRow(
		`SELECT id, name, admin_user_id, duration_seconds, goal, recap, team_session_id, created_at, started_at, ended_at
		 FROM focus_sessions WHERE id = ?`, id,
	).Scan(&fs.ID, &fs.Name, &fs.AdminUserID, &fs.DurationSeconds, &fs.Goal, &fs.Recap,
		&fs.TeamSessionID, &fs.CreatedAt, &fs.StartedAt, &fs.EndedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query focus session: %w", err)
	}
	return &fs, nil
}

// ListVisibleSessions returns the 30 most recent sessions the viewer
// has not hidden, newest activity first.
func ListVisibleSessions(viewerID string) ([]SessionSummary, error) {
	rows, err := DB.Query(
		`SELECT
			fs.id, fs.name, fs.admin_user_id, fs.created_at, fs.started_at, fs.ended_at, fs.duration_seconds,
			COUNT(sp.id) AS participant_count
		 FROM focus_sessions fs
		 LEFT JOIN session_participants sp ON sp.focus_session_id = fs.id
		 LEFT JOIN hidden_sessions hs ON hs.session_id = fs.id AND hs.user_id = ?
		 WHERE hs.id IS NULL
		 GROUP BY fs.id
		 ORDER BY COALESCE(fs.started_at, fs.created_at) DESC
		 LIMIT 30`,
		viewerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionSummary
	for rows.Next() {
		var s SessionSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.AdminUserID, &s.CreatedAt, &s.StartedAt,
			&s.EndedAt, &s.DurationSeconds, &s.ParticipantCount); err != nil {
			return nil, err
		}
		s.IsAdmin = s.AdminUserID != nil && *s.AdminUserID == viewerID
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func HideSession(userID, sessionID string) error {
	_, err := DB.Exec(
		`INSERT INTO hidden_sessions (id, user_id, session_id)
		 VALUES (?, ?, ?)
		 ON CONFLICT(user_id, session_id) DO NOTHING`,
		uuid.NewString(), userID, sessionID,
	)
	if err != nil {
		return fmt.Errorf("hide session: %w", err)
	}
	return nil
}

// MarkSessionJoined records the side effects of a join: the first
// joiner starts the clock and becomes admin. COALESCE keeps every
// field set-at-most-once.
func MarkSessionJoined(sessionID, joinerID, goal string, teamSessionID *string, now time.Time) error {
	_, err := DB.Exec(
		`UPDATE focus_sessions
		 SET started_at = COALESCE(started_at, ?),
		     goal = COALESCE(goal, ?),
		     admin_user_id = COALESCE(admin_user_id, ?),
		     team_session_id = COALESCE(team_session_id, ?)
		 WHERE id = ?`,
		now, goal, joinerID, teamSessionID, sessionID,
	)
	if err != nil {
		return fmt.Errorf("mark session joined: %w", err)
	}
	return nil
}

func EndSession(sessionID string, now time.Time) error {
	_, err := DB.Exec(
		"UPDATE focus_sessions SET ended_at = COALESCE(ended_at, ?) WHERE id = ?",
		now, sessionID,
	)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// SetSessionRecap writes the legacy session-level recap and ends the
// session's clock in the same statement.
func SetSessionRecap(sessionID, recap string, now time.Time) error {
	_, err := DB.Exec(
		"UPDATE focus_sessions SET recap = ?, ended_at = COALESCE(ended_at, ?) WHERE id = ?",
		recap, now, sessionID,
	)
	if err != nil {
		return fmt.Errorf("set session recap: %w", err)
	}
	return nil
}

// Participants

func GetParticipant(sessionID, userID string) (*Participant, error) {
	var p Participant
	err := DB.QueryRow(
		`SELECT id, focus_session_id, user_id, user_name, goal, recap,
		        break_active, break_started_at, break_ends_at,
		        break_relaxations_used, break_paused_seconds, break_escalated_at
		 FROM session_participants
		 WHERE focus_session_id = ? AND user_id = ?`,
		sessionID, userID,
	).Scan(&p.ID, &p.FocusSessionID, &p.UserID, &p.UserName, &p.Goal, &p.Recap,
		&p.BreakActive, &p.BreakStartedAt, &p.BreakEndsAt,
		&p.BreakRelaxationsUsed, &p.BreakPausedSeconds, &p.BreakEscalatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query participant: %w", err)
	}
	return &p, nil
}

func InsertParticipant(p *Participant) error {
	_, err := DB.Exec(
		`INSERT INTO session_participants (id, focus_session_id, user_id, user_name, goal)
		 VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.FocusSessionID, p.UserID, p.UserName, p.Goal,
	)
	if err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func UpdateParticipantGoal(participantID, goal string) error {
	_, err := DB.Exec("UPDATE session_participants SET goal = ? WHERE id = ?", goal, participantID)
	if err != nil {
		return fmt.Errorf("update participant goal: %w", err)
	}
	return nil
}

func SetParticipantRecap(participantID, recap string) error {
	_, err := DB.Exec("UPDATE session_participants SET recap = ? WHERE id = ?", recap, participantID)
	if err != nil {
		return fmt.Errorf("set participant recap: %w", err)
	}
	return nil
}

func ListParticipants(sessionID string) ([]Participant, error) {
	rows, err := DB.Query(
		`SELECT id, focus_session_id, user_id, user_name, goal, recap,
		        break_active, break_started_at, break_ends_at,
		        break_relaxations_used, break_paused_seconds, break_escalated_at
		 FROM session_participants
		 WHERE focus_session_id = ?
		 ORDER BY rowid ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	var participants []Participant
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.ID, &p.FocusSessionID, &p.UserID, &p.UserName, &p.Goal, &p.Recap,
			&p.BreakActive, &p.BreakStartedAt, &p.BreakEndsAt,
			&p.BreakRelaxationsUsed, &p.BreakPausedSeconds, &p.BreakEscalatedAt); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// Break transitions. Each is a single conditional UPDATE; the bool
// result reports whether the row was in a state that allowed it, so
// concurrent attempts cannot both win.

func StartBreak(participantID string, startedAt, endsAt time.Time) (bool, error) {
	res, err := DB.Exec(
		`UPDATE session_participants
		 SET break_active = 1,
		     break_started_at = ?,
		     break_ends_at = ?,
		     break_relaxations_used = 0,
		     break_escalated_at = NULL
		 WHERE id = ? AND break_active = 0`,
		startedAt, endsAt, participantID,
	)
	if err != nil {
		return false, fmt.Errorf("start break: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func ExtendBreak(participantID string, newEndsAt time.Time, maxRelaxations int) (bool, error) {
	res, err := DB.Exec(
		`UPDATE session_participants
		 SET break_ends_at = ?,
		     break_relaxations_used = break_relaxations_used + 1,
		     break_escalated_at = NULL
		 WHERE id = ? AND break_active = 1 AND break_relaxations_used < ?`,
		newEndsAt, participantID, maxRelaxations,
	)
	if err != nil {
		return false, fmt.Errorf("extend break: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func FinishBreak(participantID string, pausedSeconds int64) (bool, error) {
	res, err := DB.Exec(
		`UPDATE session_participants
		 SET break_active = 0,
		     break_started_at = NULL,
		     break_ends_at = NULL,
		     break_paused_seconds = break_paused_seconds + ?,
		     break_escalated_at = NULL
		 WHERE id = ? AND break_active = 1`,
		pausedSeconds, participantID,
	)
	if err != nil {
		return false, fmt.Errorf("finish break: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ClaimEscalation marks the overdue episode escalated. At most one
// caller wins per episode; extensions and returns clear the claim.
func ClaimEscalation(participantID string, now time.Time) (bool, error) {
	res, err := DB.Exec(
		`UPDATE session_participants
		 SET break_escalated_at = ?
		 WHERE id = ? AND break_active = 1 AND break_escalated_at IS NULL`,
		now, participantID,
	)
	if err != nil {
		return false, fmt.Errorf("claim escalation: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListEscalationCandidates returns active, unescalated breaks in
// unended sessions. Overdue filtering against the clock happens in the
// caller.
func ListEscalationCandidates() ([]OverdueBreak, error) {
	rows, err := DB.Query(
		`SELECT sp.id, sp.focus_session_id, sp.user_id, sp.break_ends_at
		 FROM session_participants sp
		 INNER JOIN focus_sessions fs ON fs.id = sp.focus_session_id
		 WHERE sp.break_active = 1
		   AND sp.break_escalated_at IS NULL
		   AND sp.break_ends_at IS NOT NULL
		   AND sp.user_id IS NOT NULL
		   AND fs.ended_at IS NULL`,
	)
	if err != nil {
		return nil, fmt.Errorf("query escalation candidates: %w", err)
	}
	defer rows.Close()

	var candidates []OverdueBreak
	for rows.Next() {
		var c OverdueBreak
		if err := rows.Scan(&c.ParticipantID, &c.FocusSessionID, &c.UserID, &c.BreakEndsAt); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}
