package auth

import "time"

// Session is a logged-in user. GatewayToken is the token returned by the
// gateway login and is never sent back to the browser.
type Session struct {
	ID           string
	Email        string
	GatewayToken string
	Remember     bool
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

func (s Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
