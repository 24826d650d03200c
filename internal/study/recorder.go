// AngelaMos | 2026
// recorder.go

package study

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/flashforge/internal/core"
	"github.com/carterperez-dev/flashforge/internal/flashcard"
	"github.com/carterperez-dev/flashforge/internal/inference"
	"github.com/carterperez-dev/flashforge/internal/quota"
	"github.com/carterperez-dev/flashforge/internal/user"
)

// UsageRecorder persists a finished generation and counts it against the
// user's quota as one unit.
type UsageRecorder interface {
	Record(ctx context.Context, userID string, cards []inference.Card) (quota.Usage, error)
}

type dbRecorder struct {
	db      *sqlx.DB
	tracker *quota.Tracker
}

func NewUsageRecorder(db *sqlx.DB, tracker *quota.Tracker) UsageRecorder {
	return &dbRecorder{db: db, tracker: tracker}
}

// Record locks the user row, re-checks eligibility, stores the cards and
// bumps prompts_used in one transaction. If any step fails nothing is
// stored and nothing is counted.
func (r *dbRecorder) Record(
	ctx context.Context,
	userID string,
	cards []inference.Card,
) (quota.Usage, error) {
	var usage quota.Usage

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		users := user.NewRepository(tx)
		flashcards := flashcard.NewRepository(tx)

		u, err := users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		if !r.tracker.CanGenerate(u.Usage()) {
			return fmt.Errorf("record usage: %w", core.ErrQuotaExceeded)
		}

		if err := flashcards.CreateBatch(ctx, toFlashcards(userID, cards)); err != nil {
			return err
		}

		used, err := users.IncrementPromptsUsed(ctx, userID)
		if err != nil {
			return err
		}

		usage = quota.Usage{PromptsUsed: used, Subscribed: u.Subscribed}
		return nil
	})
	if err != nil {
		return quota.Usage{}, err
	}

	return usage, nil
}

func toFlashcards(userID string, cards []inference.Card) []flashcard.Flashcard {
	out := make([]flashcard.Flashcard, 0, len(cards))
	for _, c := range cards {
		out = append(out, flashcard.Flashcard{
			ID:       uuid.New().String(),
			UserID:   userID,
			Question: c.Question,
			Answer:   c.Answer,
		})
	}
	return out
}
