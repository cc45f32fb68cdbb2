package tools

import "time"

// SetNow overrides the clock used by current_time and returns a restore func.
func SetNow(f func() time.Time) func() {
	prev := now
	now = f
	return func() { now = prev }
}
