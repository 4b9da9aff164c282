package focus

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Dbangs20/focusFLow/internal/db"
	"github.com/Dbangs20/focusFLow/internal/logging"
)

// Break state machine. Per participant the cycle is NoBreak -> OnBreak
// -> NoBreak, with OnBreak flagged overdue once break_ends_at passes.
// Every transition is gated on the session being break-eligible
// (>= 3h duration), started, and not ended, and on a prior join.
// Transitions commit as single conditional updates, so concurrent
// attempts on the same participant cannot double-apply.

type ReturnResult struct {
	Returned        bool  `json:"returned"`
	RecoveryApplied bool  `json:"recoveryApplied"`
	OverdueSeconds  int64 `json:"overdueSeconds"`
}

type EscalateResult struct {
	Escalated       bool   `json:"escalated"`
	Reason          string `json:"reason,omitempty"`
	EmailSent       bool   `json:"emailSent"`
	GroupAlertsSent int    `json:"groupAlertsSent"`
}

// Escalate skip reasons, returned as non-errors so clients can poll.
const (
	SkipBreakNotActive  = "break_not_active"
	SkipBreakNotOverdue = "break_not_overdue"
	SkipAlreadyEscalated = "already_escalated"
)

func (s *Service) breakGate(sessionID string) (*db.FocusSession, error) {
	session, err := db.GetFocusSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, notFound("Session not found.")
	}
	if session.EndedAt != nil {
		return nil, invalidState("Session already ended.")
	}
	if session.StartedAt == nil {
		return nil, invalidState("Session has not started yet.")
	}
	if session.DurationSeconds == nil || *session.DurationSeconds < MinBreakEligibleSeconds {
		return nil, invalidState("Break mode is available only for sessions of 3 hours or longer.")
	}
	return session, nil
}

func (s *Service) participantGate(sessionID, userID string) (*db.Participant, error) {
	participant, err := db.GetParticipant(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if participant == nil {
		return nil, invalidState("Join the session first.")
	}
	return participant, nil
}

// StartBreak begins a break of the requested length. Before the
// unlock delay it rejects with the remaining countdown instead.
func (s *Service) StartBreak(userID, sessionID string, durationMinutes int) error {
	if durationMinutes < 1 || durationMinutes > MaxBreakMinutes {
		return validation("durationMinutes must be between 1 and 240")
	}

	session, err := s.breakGate(sessionID)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	unlockAt := session.StartedAt.Add(BreakUnlockDelaySeconds * time.Second)
	if remaining := unlockAt.Sub(now); remaining > 0 {
		return &BreakLockedError{UnlockInSeconds: int64((remaining + time.Second - 1) / time.Second)}
	}

	participant, err := s.participantGate(sessionID, userID)
	if err != nil {
		return err
	}
	if participant.BreakActive {
		return invalidState("Break is already active.")
	}

	endsAt := now.Add(time.Duration(durationMinutes) * time.Minute)
	ok, err := db.StartBreak(participant.ID, now, endsAt)
	if err != nil {
		return err
	}
	if !ok {
		return invalidState("Break is already active.")
	}
	return nil
}

// ExtendBreak grants one fixed 5-minute relaxation, up to the cap of
// 3 per break. An extension un-escalates the current episode.
func (s *Service) ExtendBreak(userID, sessionID string) error {
	if _, err := s.breakGate(sessionID); err != nil {
		return err
	}

	participant, err := s.participantGate(sessionID, userID)
	if err != nil {
		return err
	}
	if !participant.BreakActive {
		return invalidState("No active break to extend.")
	}
	if participant.BreakRelaxationsUsed >= MaxRelaxations {
		return invalidState("Relaxation limit reached.")
	}

	now := s.clock.Now()
	base := now
	if participant.BreakEndsAt != nil && participant.BreakEndsAt.After(now) {
		base = *participant.BreakEndsAt
	}
	newEndsAt := base.Add(ExtensionMinutes * time.Minute)

	ok, err := db.ExtendBreak(participant.ID, newEndsAt, MaxRelaxations)
	if err != nil {
		return err
	}
	if !ok {
		// Lost the conditional update: budget spent or break gone.
		return invalidState("Relaxation limit reached.")
	}
	return nil
}

// ReturnFromBreak ends the break. An overdue return is a recovery
// return and must state the next action; scoring depends on which
// kind it was.
func (s *Service) ReturnFromBreak(userID, sessionID, recoveryAction string) (*ReturnResult, error) {
	if _, err := s.breakGate(sessionID); err != nil {
		return nil, err
	}

	participant, err := s.participantGate(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if !participant.BreakActive {
		return nil, invalidState("No active break to return from.")
	}

	now := s.clock.Now()
	var pausedSeconds, overdueSeconds int64
	if participant.BreakStartedAt != nil {
		pausedSeconds = flooredSeconds(now.Sub(*participant.BreakStartedAt))
	}
	if participant.BreakEndsAt != nil {
		overdueSeconds = flooredSeconds(now.Sub(*participant.BreakEndsAt))
	}

	recovery := overdueSeconds > 0
	if recovery && strings.TrimSpace(recoveryAction) == "" {
		return nil, validation("Recovery action is required when returning after overdue break.")
	}

	ok, err := db.FinishBreak(participant.ID, pausedSeconds)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, invalidState("No active break to return from.")
	}

	// Clean return: +3 reliability, +2 focus. Recovery return: +2
	// focus only; the escalation penalty is not restored.
	if err := db.ApplyReturnBonus(userID, !recovery, now); err != nil {
		return nil, err
	}

	return &ReturnResult{Returned: true, RecoveryApplied: recovery, OverdueSeconds: overdueSeconds}, nil
}

// Escalate marks an overdue, unacknowledged break escalated: one-time
// score penalty plus best-effort notification of the participant and
// the team's group admins. Repeat calls report the skip reason
// instead of erroring so clients and the sweeper can poll.
func (s *Service) Escalate(user *db.User, sessionID string) (*EscalateResult, error) {
	session, err := db.GetFocusSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, notFound("Session not found.")
	}

	participant, err := s.participantGate(sessionID, user.ID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if session.EndedAt != nil || !participant.BreakActive {
		return &EscalateResult{Escalated: false, Reason: SkipBreakNotActive}, nil
	}
	if participant.BreakEndsAt == nil || !now.After(*participant.BreakEndsAt) {
		return &EscalateResult{Escalated: false, Reason: SkipBreakNotOverdue}, nil
	}
	if participant.BreakEscalatedAt != nil {
		return &EscalateResult{Escalated: false, Reason: SkipAlreadyEscalated}, nil
	}

	claimed, err := db.ClaimEscalation(participant.ID, now)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return &EscalateResult{Escalated: false, Reason: SkipAlreadyEscalated}, nil
	}

	if err := db.ApplyEscalationPenalty(user.ID, now); err != nil {
		return nil, err
	}

	result := &EscalateResult{Escalated: true}
	sessionURL := fmt.Sprintf("%s/focus-sessions/%s", s.baseURL, url.PathEscape(sessionID))

	if user.Email != "" {
		sent, err := s.mailer.Send(
			user.Email,
			"FocusFlow: Break over, get back to work",
			fmt.Sprintf("Your break is over. Return to your session: %s", sessionURL),
			fmt.Sprintf(`<p>Your break is over.</p><p><a href="%s">Return to FocusFlow session</a></p>`, sessionURL),
		)
		if err != nil {
			logging.Logger.Warn("break escalation email failed", "user_id", user.ID, "error", err)
		}
		result.EmailSent = sent
	}

	if session.TeamSessionID != nil {
		memberName := user.Name
		if memberName == "" {
			memberName = user.Email
		}
		emails, err := db.GroupAdminEmails(*session.TeamSessionID, user.ID)
		if err != nil {
			logging.Logger.Warn("group overdue alert query failed", "error", err)
		}
		for _, to := range emails {
			sent, err := s.mailer.Send(
				to,
				"FocusFlow Group Alert: Member overdue from break",
				fmt.Sprintf("%s is overdue from break in session %q. %s", memberName, session.Name, sessionURL),
				fmt.Sprintf(`<p><strong>%s</strong> is overdue from break in session <strong>%s</strong>.</p><p><a href="%s">Open session</a></p>`,
					memberName, session.Name, sessionURL),
			)
			if err != nil {
				logging.Logger.Warn("group overdue alert email failed", "to", to, "error", err)
				continue
			}
			if sent {
				result.GroupAlertsSent++
			}
		}
	}

	return result, nil
}

// SweepOverdue escalates every active break whose deadline has passed
// without a claim. It drives the same idempotent transition the HTTP
// endpoint exposes, so a concurrently polling client is harmless.
func (s *Service) SweepOverdue() (int, error) {
	candidates, err := db.ListEscalationCandidates()
	if err != nil {
		return 0, err
	}

	now := s.clock.Now()
	escalated := 0
	for _, c := range candidates {
		if !now.After(c.BreakEndsAt) {
			continue
		}
		user, err := db.GetUserByID(c.UserID)
		if err != nil {
			logging.Logger.Warn("sweep: load user failed", "user_id", c.UserID, "error", err)
			continue
		}
		result, err := s.Escalate(user, c.FocusSessionID)
		if err != nil {
			logging.Logger.Warn("sweep: escalate failed", "session_id", c.FocusSessionID, "user_id", c.UserID, "error", err)
			continue
		}
		if result.Escalated {
			escalated++
		}
	}
	return escalated, nil
}

// RunSweeper drives SweepOverdue on an interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := s.SweepOverdue()
			if err != nil {
				logging.Logger.Error("overdue sweep failed", "error", err)
				continue
			}
			if n > 0 {
				logging.Logger.Info("overdue sweep escalated breaks", "count", n)
			}
		}
	}
}

// flooredSeconds converts a duration to whole seconds, never negative.
func flooredSeconds(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}
