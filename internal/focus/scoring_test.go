package focus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordActivityDeltas(t *testing.T) {
	svc, clk, _ := newTestService(t)
	user := seedUser(t, "a@example.com")

	// First ping has no previous activity, so it counts as recent.
	result, err := svc.RecordActivity(user.ID, "activity")
	require.NoError(t, err)
	assert.Equal(t, 81, result.FocusScore)

	steps := []struct {
		name string
		idle time.Duration
		kind string
		want int
	}{
		{"idle over 10 minutes", 700 * time.Second, "activity", 73},
		{"idle over 5 minutes", 400 * time.Second, "activity", 69},
		{"idle over 2 minutes", 180 * time.Second, "activity", 67},
		{"recent activity", 60 * time.Second, "activity", 68},
		{"focus event doubles up", 60 * time.Second, "focus", 70},
	}
	for _, step := range steps {
		clk.Advance(step.idle)
		result, err := svc.RecordActivity(user.ID, step.kind)
		require.NoError(t, err, step.name)
		assert.Equal(t, step.want, result.FocusScore, step.name)
	}
}

func TestRecordActivityRejectsUnknownKind(t *testing.T) {
	svc, _, _ := newTestService(t)
	user := seedUser(t, "a@example.com")

	_, err := svc.RecordActivity(user.ID, "afk")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFocusScoreStaysClamped(t *testing.T) {
	svc, clk, _ := newTestService(t)
	user := seedUser(t, "a@example.com")

	var last int
	for i := 0; i < 20; i++ {
		clk.Advance(700 * time.Second)
		result, err := svc.RecordActivity(user.ID, "activity")
		require.NoError(t, err)
		last = result.FocusScore
		assert.GreaterOrEqual(t, result.FocusScore, 0)
		assert.LessOrEqual(t, result.FocusScore, 100)
	}
	assert.Zero(t, last)
}

func TestTrend(t *testing.T) {
	svc, clk, _ := newTestService(t)
	user := seedUser(t, "a@example.com")

	trend, err := svc.Trend(user.ID)
	require.NoError(t, err)
	assert.Equal(t, TrendStable, trend, "no data reads stable")

	// Rising: a string of recent-activity pings.
	for i := 0; i < 3; i++ {
		clk.Advance(time.Minute)
		_, err := svc.RecordActivity(user.ID, "activity")
		require.NoError(t, err)
	}
	trend, err = svc.Trend(user.ID)
	require.NoError(t, err)
	assert.Equal(t, TrendUp, trend)

	// Falling: idle pings until the window's last entry sits below
	// its first.
	for i := 0; i < TrendWindow; i++ {
		clk.Advance(700 * time.Second)
		_, err := svc.RecordActivity(user.ID, "activity")
		require.NoError(t, err)
	}
	trend, err = svc.Trend(user.ID)
	require.NoError(t, err)
	assert.Equal(t, TrendDown, trend)
}

func TestFocusStateDefaults(t *testing.T) {
	svc, _, _ := newTestService(t)
	user := seedUser(t, "a@example.com")

	state, err := svc.FocusState(user.ID)
	require.NoError(t, err)
	assert.Equal(t, BaselineFocusScore, state.FocusScore)
	assert.Equal(t, BaselineReliability, state.ReliabilityScore)
	assert.Equal(t, TrendStable, state.Trend)
	assert.Zero(t, state.OverdueCount)
}
