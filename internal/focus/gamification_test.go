package focus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecapStreakConsecutiveDays(t *testing.T) {
	svc, clk, _ := newTestService(t)
	user := seedUser(t, "a@example.com")

	for day := 0; day < 3; day++ {
		require.NoError(t, svc.awardRecapPoints(user.ID))
		clk.Advance(24 * time.Hour)
	}

	g, err := svc.Gamification(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3*RecapPoints, g.TotalPoints)
	assert.Equal(t, 3, g.CurrentStreak)
	assert.Equal(t, 3, g.LongestStreak)
}

func TestRecapStreakResetsAfterGap(t *testing.T) {
	svc, clk, _ := newTestService(t)
	user := seedUser(t, "a@example.com")

	require.NoError(t, svc.awardRecapPoints(user.ID))
	clk.Advance(24 * time.Hour)
	require.NoError(t, svc.awardRecapPoints(user.ID))
	clk.Advance(24 * time.Hour)
	require.NoError(t, svc.awardRecapPoints(user.ID))

	// Skip two days.
	clk.Advance(72 * time.Hour)
	require.NoError(t, svc.awardRecapPoints(user.ID))

	g, err := svc.Gamification(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, g.CurrentStreak, "gap resets the streak")
	assert.Equal(t, 3, g.LongestStreak, "longest never decreases")
	assert.Equal(t, 4*RecapPoints, g.TotalPoints)
}

func TestRecapSameDayKeepsStreak(t *testing.T) {
	svc, clk, _ := newTestService(t)
	user := seedUser(t, "a@example.com")

	require.NoError(t, svc.awardRecapPoints(user.ID))
	clk.Advance(2 * time.Hour)
	require.NoError(t, svc.awardRecapPoints(user.ID))

	g, err := svc.Gamification(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, g.CurrentStreak)
	assert.Equal(t, 2*RecapPoints, g.TotalPoints, "points still accrue")
}

func TestGamificationDefaultsToZero(t *testing.T) {
	svc, _, _ := newTestService(t)
	user := seedUser(t, "a@example.com")

	g, err := svc.Gamification(user.ID)
	require.NoError(t, err)
	assert.Zero(t, g.TotalPoints)
	assert.Zero(t, g.CurrentStreak)
	assert.Zero(t, g.LongestStreak)
	assert.Nil(t, g.LastSessionDate)
}
