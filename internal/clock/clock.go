package clock

import "time"

// Clock abstracts wall-clock time so break and scoring logic stays
// deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
