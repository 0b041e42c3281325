package clock

import "time"

// Clocker is the only source of "now" for lockouts, code expiry and alert stamps.
type Clocker interface {
	Now() time.Time
}

// System reads the wall clock in UTC with the monotonic reading stripped,
// so stored instants compare and serialize the same way everywhere.
type System struct{}

func New() System {
	return System{}
}

func (System) Now() time.Time {
	return time.Now().UTC().Round(0)
}
