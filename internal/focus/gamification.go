package focus

import (
	"time"

	"github.com/Dbangs20/focusFLow/internal/db"
)

// Gamification returns the viewer's points and streaks, zero-valued
// when nothing has been awarded yet.
func (s *Service) Gamification(userID string) (*db.Gamification, error) {
	g, err := db.GetGamification(userID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		g = &db.Gamification{}
	}
	return g, nil
}

// awardRecapPoints grants the recap award and advances the UTC-day
// streak: consecutive days extend it, a same-day repeat keeps it, a
// gap resets it to 1. longestStreak never decreases.
func (s *Service) awardRecapPoints(userID string) error {
	now := s.clock.Now()
	today := utcDay(now)

	g, err := db.GetGamification(userID)
	if err != nil {
		return err
	}
	if g == nil {
		g = &db.Gamification{}
	}

	g.TotalPoints += RecapPoints
	switch {
	case g.LastSessionDate == nil:
		g.CurrentStreak = 1
	case utcDay(*g.LastSessionDate).Equal(today):
		// Same day, streak unchanged.
	case utcDay(*g.LastSessionDate).Equal(today.AddDate(0, 0, -1)):
		g.CurrentStreak++
	default:
		g.CurrentStreak = 1
	}
	if g.CurrentStreak > g.LongestStreak {
		g.LongestStreak = g.CurrentStreak
	}
	g.LastSessionDate = &today

	return db.UpsertGamification(userID, *g, now)
}

func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
