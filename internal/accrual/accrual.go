package accrual

import "time"

// Calculator converts elapsed active time into token rewards. Rate and Timeout
// are process-wide constants loaded from configuration, never per-user.
type Calculator struct {
	RatePerSec float64
	Timeout    time.Duration
}

// Accrue returns whole elapsed seconds clamped to [0, Timeout] and the token
// reward for them. The clamp bounds any single accrual burst, e.g. from a
// client that stalls and resumes heartbeating.
func (c Calculator) Accrue(elapsed time.Duration) (seconds int64, tokens float64) {
	seconds = int64(elapsed / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	if max := int64(c.Timeout / time.Second); seconds > max {
		seconds = max
	}
	return seconds, float64(seconds) * c.RatePerSec
}
