// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/flashforge/internal/quota"
)

type User struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	PromptsUsed  int        `db:"prompts_used"`
	Subscribed   bool       `db:"subscribed"`
	SubscribedAt *time.Time `db:"subscribed_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

func (u *User) Usage() quota.Usage {
	return quota.Usage{
		PromptsUsed: u.PromptsUsed,
		Subscribed:  u.Subscribed,
	}
}
