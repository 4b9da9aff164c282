package db

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type FocusSession struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	AdminUserID     *string    `json:"adminUserId"`
	DurationSeconds *int64     `json:"durationSeconds"`
	Goal            *string    `json:"goal"`
	Recap           *string    `json:"recap"`
	TeamSessionID   *string    `json:"teamSessionId"`
	CreatedAt       time.Time  `json:"createdAt"`
	StartedAt       *time.Time `json:"startedAt"`
	EndedAt         *time.Time `json:"endedAt"`
}

// SessionSummary is one row of the session list, with the viewer's
// relationship to it already resolved.
type SessionSummary struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	AdminUserID      *string    `json:"adminUserId"`
	CreatedAt        time.Time  `json:"createdAt"`
	StartedAt        *time.Time `json:"startedAt"`
	EndedAt          *time.Time `json:"endedAt"`
	DurationSeconds  *int64     `json:"durationSeconds"`
	ParticipantCount int        `json:"participantCount"`
	IsAdmin          bool       `json:"isAdmin"`
}

type Participant struct {
	ID                   string     `json:"id"`
	FocusSessionID       string     `json:"focusSessionId"`
	UserID               *string    `json:"userId"`
	UserName             string     `json:"userName"`
	Goal                 string     `json:"goal"`
	Recap                *string    `json:"recap"`
	BreakActive          bool       `json:"breakActive"`
	BreakStartedAt       *time.Time `json:"breakStartedAt"`
	BreakEndsAt          *time.Time `json:"breakEndsAt"`
	BreakRelaxationsUsed int        `json:"breakRelaxationsUsed"`
	BreakPausedSeconds   int64      `json:"breakPausedSeconds"`
	BreakEscalatedAt     *time.Time `json:"breakEscalatedAt"`
}

type FocusState struct {
	UserID           string     `json:"userId"`
	LastActivityAt   *time.Time `json:"lastActivityAt"`
	FocusScore       int        `json:"focusScore"`
	ReliabilityScore int        `json:"reliabilityScore"`
	OverdueCount     int        `json:"overdueCount"`
	LastOverdueAt    *time.Time `json:"lastOverdueAt"`
}

type Gamification struct {
	TotalPoints     int        `json:"totalPoints"`
	CurrentStreak   int        `json:"currentStreak"`
	LongestStreak   int        `json:"longestStreak"`
	LastSessionDate *time.Time `json:"lastSessionDate"`
}

type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// OverdueBreak is one sweep candidate: an active break whose deadline
// has passed without an escalation claim.
type OverdueBreak struct {
	ParticipantID  string
	FocusSessionID string
	UserID         string
	BreakEndsAt    time.Time
}
