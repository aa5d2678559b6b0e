package models

import (
	"strings"
	"time"
)

type Subscriber struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"` // unique, normalized
	SubscribedAt time.Time `json:"subscribedAt"`
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
