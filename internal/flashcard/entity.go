// AngelaMos | 2026
// entity.go

package flashcard

import (
	"time"
)

type Flashcard struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Question  string    `db:"question"`
	Answer    string    `db:"answer"`
	CreatedAt time.Time `db:"created_at"`
}
