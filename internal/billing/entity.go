// AngelaMos | 2026
// entity.go

package billing

import (
	"time"
)

const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Payment is one checkout attempt. A user is subscribed once any of their
// payments reaches StatusSuccess.
type Payment struct {
	ID         string     `db:"id"`
	UserID     string     `db:"user_id"`
	Reference  string     `db:"reference"`
	Amount     int64      `db:"amount"`
	Currency   string     `db:"currency"`
	Status     string     `db:"status"`
	CreatedAt  time.Time  `db:"created_at"`
	VerifiedAt *time.Time `db:"verified_at"`
}

func (p *Payment) IsSettled() bool {
	return p.Status == StatusSuccess
}
