// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// Session is the server-side half of a login. The cookie only carries a
// signed pointer to it, so deleting the session logs the browser out.
type Session struct {
	ID        string
	UserID    string
	UserAgent string
	IPAddress string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
