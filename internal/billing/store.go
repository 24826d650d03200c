// AngelaMos | 2026
// store.go

package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/flashforge/internal/core"
	"github.com/carterperez-dev/flashforge/internal/user"
)

// Store is the persistence the billing service needs. Settle is the only
// operation that changes a user's subscription.
type Store interface {
	CreatePending(ctx context.Context, p *Payment) error
	MarkFailed(ctx context.Context, paymentID string) error
	GetByReference(ctx context.Context, reference string) (*Payment, error)
	// Settle marks the payment successful and subscribes its owner. It
	// reports false when the payment was already settled.
	Settle(ctx context.Context, reference string, verifiedAt time.Time) (bool, error)
	EnsureSubscribed(ctx context.Context, userID string) error
}

type dbStore struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) Store {
	return &dbStore{db: db}
}

func (s *dbStore) CreatePending(ctx context.Context, p *Payment) error {
	p.Status = StatusPending
	return NewRepository(s.db).Create(ctx, p)
}

func (s *dbStore) MarkFailed(ctx context.Context, paymentID string) error {
	return NewRepository(s.db).UpdateStatus(ctx, paymentID, StatusFailed, nil)
}

func (s *dbStore) GetByReference(ctx context.Context, reference string) (*Payment, error) {
	return NewRepository(s.db).GetByReference(ctx, reference)
}

func (s *dbStore) Settle(
	ctx context.Context,
	reference string,
	verifiedAt time.Time,
) (bool, error) {
	var changed bool

	err := core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		payments := NewRepository(tx)
		users := user.NewRepository(tx)

		p, err := payments.GetByReferenceForUpdate(ctx, reference)
		if err != nil {
			return err
		}

		if p.IsSettled() {
			return users.MarkSubscribed(ctx, p.UserID)
		}

		if err := payments.UpdateStatus(ctx, p.ID, StatusSuccess, &verifiedAt); err != nil {
			return err
		}

		if err := users.MarkSubscribed(ctx, p.UserID); err != nil {
			return err
		}

		changed = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("settle payment: %w", err)
	}

	return changed, nil
}

func (s *dbStore) EnsureSubscribed(ctx context.Context, userID string) error {
	return user.NewRepository(s.db).MarkSubscribed(ctx, userID)
}
