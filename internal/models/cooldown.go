package models

import "time"

// CooldownState records the last refill alert. Version increases on every write
// and is the compare-and-swap token.
type CooldownState struct {
	LastNotification time.Time `json:"lastNotification"` // zero when never sent
	Version          uint64    `json:"version"`
}

// Active reports whether an alert sent at LastNotification still suppresses one at now.
func (c CooldownState) Active(now time.Time, window time.Duration) bool {
	if c.LastNotification.IsZero() {
		return false
	}
	return now.Sub(c.LastNotification) < window
}
