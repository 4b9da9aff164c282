package focus

import (
	"strings"

	"github.com/google/uuid"

	"github.com/Dbangs20/focusFLow/internal/db"
)

type CreateSessionInput struct {
	Name            string
	TeamSessionID   string
	DurationMinutes int
}

type JoinInput struct {
	Goal          string
	TeamSessionID string
}

// SessionView is everything a polling client needs to render one
// session: the shared row, the roster, and the viewer's own entry.
type SessionView struct {
	Session          *db.FocusSession `json:"session"`
	Participants     []db.Participant `json:"participants"`
	CurrentUserEntry *db.Participant  `json:"currentUserEntry"`
	IsAdmin          bool             `json:"isAdmin"`
}

// CreateSession persists a new, not-yet-started session. The first
// joiner starts the clock and becomes admin, not the creator.
func (s *Service) CreateSession(user *db.User, in CreateSessionInput) (*db.FocusSession, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validation("Session name is required")
	}
	if in.DurationMinutes < 1 || in.DurationMinutes > MaxSessionMinutes {
		return nil, validation("durationMinutes must be between 1 and 240")
	}

	teamSessionID := strings.TrimSpace(in.TeamSessionID)
	if teamSessionID != "" {
		if err := db.InsertTeamSession(teamSessionID); err != nil {
			return nil, err
		}
	}

	duration := int64(in.DurationMinutes) * 60
	fs := &db.FocusSession{
		ID:              uuid.NewString(),
		Name:            name,
		DurationSeconds: &duration,
		CreatedAt:       s.clock.Now(),
	}
	if teamSessionID != "" {
		fs.TeamSessionID = &teamSessionID
	}
	if err := db.InsertFocusSession(fs); err != nil {
		return nil, err
	}
	return fs, nil
}

func (s *Service) ListSessions(userID string) ([]db.SessionSummary, error) {
	return db.ListVisibleSessions(userID)
}

// HideSession suppresses an ended session from the viewer's list. The
// shared row survives for everyone else.
func (s *Service) HideSession(userID, sessionID string) error {
	session, err := db.GetFocusSession(sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return notFound("Session not found")
	}
	if session.EndedAt == nil {
		return invalidState("Only ended sessions can be deleted.")
	}
	return db.HideSession(userID, sessionID)
}

// Join admits the user as a participant. Upsert semantics: rejoining
// only updates the stated goal.
func (s *Service) Join(user *db.User, sessionID string, in JoinInput) error {
	goal := strings.TrimSpace(in.Goal)
	if goal == "" {
		return validation("Goal is required")
	}

	teamSessionID := strings.TrimSpace(in.TeamSessionID)
	if teamSessionID != "" {
		if err := db.InsertTeamSession(teamSessionID); err != nil {
			return err
		}
	}

	session, err := db.GetFocusSession(sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return notFound("Session not found. Ask admin to create one first.")
	}
	if session.EndedAt != nil {
		return invalidState("This session has ended. You can view recap but cannot join.")
	}

	var teamID *string
	if teamSessionID != "" {
		teamID = &teamSessionID
	}
	if err := db.MarkSessionJoined(sessionID, user.ID, goal, teamID, s.clock.Now()); err != nil {
		return err
	}

	existing, err := db.GetParticipant(sessionID, user.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return db.UpdateParticipantGoal(existing.ID, goal)
	}

	userID := user.ID
	userName := strings.TrimSpace(user.Name)
	if userName == "" {
		userName = user.Email
	}
	return db.InsertParticipant(&db.Participant{
		ID:             uuid.NewString(),
		FocusSessionID: sessionID,
		UserID:         &userID,
		UserName:       userName,
		Goal:           goal,
	})
}

func (s *Service) View(user *db.User, sessionID string) (*SessionView, error) {
	session, err := db.GetFocusSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, notFound("Session not found")
	}

	participants, err := db.ListParticipants(sessionID)
	if err != nil {
		return nil, err
	}

	view := &SessionView{
		Session:      session,
		Participants: participants,
		IsAdmin:      session.AdminUserID != nil && *session.AdminUserID == user.ID,
	}
	for i := range participants {
		if participants[i].UserID != nil && *participants[i].UserID == user.ID {
			view.CurrentUserEntry = &participants[i]
			break
		}
	}
	return view, nil
}

// End closes the shared clock. Admin only; ending twice is a no-op.
func (s *Service) End(userID, sessionID string) error {
	session, err := db.GetFocusSession(sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return notFound("Session not found.")
	}
	if session.AdminUserID == nil || *session.AdminUserID != userID {
		return forbidden("Only admin can end this session.")
	}
	return db.EndSession(sessionID, s.clock.Now())
}

// SubmitRecap stores the participant's recap, awards gamification on
// the first write only, and ends the shared session clock.
func (s *Service) SubmitRecap(userID, sessionID, recap string) error {
	recap = strings.TrimSpace(recap)
	if recap == "" {
		return validation("Recap is required")
	}

	participant, err := db.GetParticipant(sessionID, userID)
	if err != nil {
		return err
	}
	if participant == nil {
		return invalidState("Join the session first.")
	}

	if err := db.SetParticipantRecap(participant.ID, recap); err != nil {
		return err
	}

	if participant.Recap == nil {
		if err := s.awardRecapPoints(userID); err != nil {
			return err
		}
	}

	return db.EndSession(sessionID, s.clock.Now())
}

// SubmitLegacyRecap is the body-addressed alias. It additionally
// writes the session-level recap column and never awards points.
func (s *Service) SubmitLegacyRecap(userID, sessionID, recap string) error {
	sessionID = strings.TrimSpace(sessionID)
	recap = strings.TrimSpace(recap)
	if sessionID == "" || recap == "" {
		return validation("Missing sessionId or recap")
	}

	participant, err := db.GetParticipant(sessionID, userID)
	if err != nil {
		return err
	}
	if participant == nil {
		return invalidState("Join session first")
	}

	if err := db.SetParticipantRecap(participant.ID, recap); err != nil {
		return err
	}
	return db.SetSessionRecap(sessionID, recap, s.clock.Now())
}

type GroupJoinResult struct {
	GroupID   string `json:"groupId"`
	GroupName string `json:"groupName"`
	Role      string `json:"role"`
}

// JoinGroup creates the group on first join, making the creator its
// admin; later joiners become members. Escalation alerts fan out to
// these admins.
func (s *Service) JoinGroup(userID, groupName string) (*GroupJoinResult, error) {
	name := strings.TrimSpace(groupName)
	if name == "" {
		return nil, validation("groupName is required")
	}

	group, err := db.GetGroupByName(name)
	if err != nil {
		return nil, err
	}
	role := "member"
	if group == nil {
		group, err = db.CreateGroup(name)
		if err != nil {
			return nil, err
		}
		role = "admin"
	}
	if err := db.AddGroupMember(group.ID, userID, role); err != nil {
		return nil, err
	}
	return &GroupJoinResult{GroupID: group.ID, GroupName: group.Name, Role: role}, nil
}
