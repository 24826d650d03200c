// AngelaMos | 2026
// repository.go

package billing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/flashforge/internal/core"
)

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByReference(ctx context.Context, reference string) (*Payment, error)
	GetByReferenceForUpdate(ctx context.Context, reference string) (*Payment, error)
	UpdateStatus(ctx context.Context, id, status string, verifiedAt *time.Time) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const paymentColumns = `id, user_id, reference, amount, currency, status,
		       created_at, verified_at`

func (r *repository) Create(ctx context.Context, p *Payment) error {
	query := `
		INSERT INTO payments (id, user_id, reference, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &p.CreatedAt, query,
		p.ID,
		p.UserID,
		p.Reference,
		p.Amount,
		p.Currency,
		p.Status,
	)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create payment: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create payment: %w", err)
	}

	return nil
}

func (r *repository) GetByReference(
	ctx context.Context,
	reference string,
) (*Payment, error) {
	return r.getOne(ctx, "get payment",
		`SELECT `+paymentColumns+` FROM payments WHERE reference = $1`,
		reference)
}

func (r *repository) GetByReferenceForUpdate(
	ctx context.Context,
	reference string,
) (*Payment, error) {
	return r.getOne(ctx, "lock payment",
		`SELECT `+paymentColumns+` FROM payments WHERE reference = $1 FOR UPDATE`,
		reference)
}

func (r *repository) getOne(
	ctx context.Context,
	op, query string,
	arg any,
) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &p, nil
}

func (r *repository) UpdateStatus(
	ctx context.Context,
	id, status string,
	verifiedAt *time.Time,
) error {
	query := `
		UPDATE payments
		SET status = $2, verified_at = COALESCE($3, verified_at)
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status, verifiedAt)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update payment status: %w", core.ErrNotFound)
	}

	return nil
}
