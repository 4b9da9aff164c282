package focus

import (
	"github.com/Dbangs20/focusFLow/internal/clock"
	"github.com/Dbangs20/focusFLow/internal/notify"
)

const (
	// Break mode exists only in sessions of three hours or longer.
	MinBreakEligibleSeconds = 3 * 60 * 60
	// Breaks unlock an hour into a session.
	BreakUnlockDelaySeconds = 60 * 60

	MaxSessionMinutes = 240
	MaxBreakMinutes   = 240

	MaxRelaxations   = 3
	ExtensionMinutes = 5

	RecapPoints = 10
	TrendWindow = 10

	BaselineFocusScore  = 80
	BaselineReliability = 100
)

// Service orchestrates the session lifecycle, the per-participant
// break state machine, and the derived scoring. All persistence goes
// through the db package; time comes from the injected clock so the
// temporal rules are testable.
type Service struct {
	clock   clock.Clock
	mailer  notify.Mailer
	baseURL string
}

func NewService(c clock.Clock, m notify.Mailer, baseURL string) *Service {
	return &Service{clock: c, mailer: m, baseURL: baseURL}
}
