// AngelaMos | 2026
// repository.go

package flashcard

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/flashforge/internal/core"
)

type Repository interface {
	CreateBatch(ctx context.Context, cards []Flashcard) error
	ListByUser(ctx context.Context, userID string, params ListParams) ([]Flashcard, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// CreateBatch inserts all cards in one statement; an empty batch is a no-op.
func (r *repository) CreateBatch(ctx context.Context, cards []Flashcard) error {
	if len(cards) == 0 {
		return nil
	}

	query := `
		INSERT INTO flashcards (id, user_id, question, answer)
		VALUES (:id, :user_id, :question, :answer)`

	if _, err := sqlx.NamedExecContext(ctx, r.db, query, cards); err != nil {
		return fmt.Errorf("create flashcards: %w", err)
	}

	return nil
}

func (r *repository) ListByUser(
	ctx context.Context,
	userID string,
	params ListParams,
) ([]Flashcard, error) {
	query := `
		SELECT id, user_id, question, answer, created_at
		FROM flashcards
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`

	var cards []Flashcard
	err := r.db.SelectContext(ctx, &cards, query, userID, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("list flashcards: %w", err)
	}

	return cards, nil
}

func (r *repository) CountByUser(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM flashcards WHERE user_id = $1`

	var total int
	if err := r.db.GetContext(ctx, &total, query, userID); err != nil {
		return 0, fmt.Errorf("count flashcards: %w", err)
	}

	return total, nil
}
