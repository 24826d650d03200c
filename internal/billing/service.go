// AngelaMos | 2026
// service.go

package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/flashforge/internal/core"
	"github.com/carterperez-dev/flashforge/internal/payment"
	"github.com/carterperez-dev/flashforge/internal/user"
)

var (
	ErrAlreadySubscribed  = errors.New("already subscribed")
	ErrMissingReference   = errors.New("missing transaction reference")
	ErrUnknownReference   = errors.New("unknown transaction reference")
	ErrVerificationFailed = errors.New("payment verification failed")
)

// Paystack accepts only alphanumerics and "-", ".", "=" in references.
const referencePrefix = "ff-"

type UserReader interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

type Gateway interface {
	Initialize(ctx context.Context, email, reference string) (*payment.Checkout, error)
	Verify(ctx context.Context, reference string) (*payment.Transaction, error)
	Amount() int64
	Currency() string
}

type Service struct {
	users   UserReader
	gateway Gateway
	store   Store
	now     func() time.Time
}

func NewService(users UserReader, gateway Gateway, store Store) *Service {
	return &Service{
		users:   users,
		gateway: gateway,
		store:   store,
		now:     time.Now,
	}
}

// VerifyOutcome says whether this call changed anything.
type VerifyOutcome struct {
	Reference      string
	AlreadySettled bool
}

// Subscribe records a pending payment and returns the hosted checkout URL.
// The pending row exists before the gateway is called so the reference is
// always known when the browser comes back to /verify.
func (s *Service) Subscribe(ctx context.Context, userID string) (string, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}

	if u.Subscribed {
		return "", ErrAlreadySubscribed
	}

	p := &Payment{
		ID:        uuid.New().String(),
		UserID:    u.ID,
		Reference: referencePrefix + strings.ReplaceAll(uuid.New().String(), "-", ""),
		Amount:    s.gateway.Amount(),
		Currency:  s.gateway.Currency(),
	}

	if err := s.store.CreatePending(ctx, p); err != nil {
		return "", fmt.Errorf("create pending payment: %w", err)
	}

	checkout, err := s.gateway.Initialize(ctx, u.Email, p.Reference)
	if err != nil {
		slog.Warn("payment initialize failed",
			"user_id", u.ID,
			"reference", p.Reference,
			"kind", payment.KindOf(err).String(),
			"error", err,
		)
		if markErr := s.store.MarkFailed(ctx, p.ID); markErr != nil {
			slog.Warn("mark payment failed", "reference", p.Reference, "error", markErr)
		}
		return "", err
	}

	return checkout.AuthorizationURL, nil
}

// Verify confirms reference with the gateway and subscribes the user.
// A reference that is already settled is not sent to the gateway again.
// Any failure leaves the user's subscription untouched.
func (s *Service) Verify(
	ctx context.Context,
	userID, reference string,
) (*VerifyOutcome, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, ErrMissingReference
	}

	p, err := s.store.GetByReference(ctx, reference)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUnknownReference
		}
		return nil, fmt.Errorf("load payment: %w", err)
	}

	if p.UserID != userID {
		slog.Warn("payment reference belongs to another user",
			"user_id", userID,
			"reference", reference,
		)
		return nil, ErrUnknownReference
	}

	if p.IsSettled() {
		if err := s.store.EnsureSubscribed(ctx, userID); err != nil {
			return nil, fmt.Errorf("ensure subscribed: %w", err)
		}
		return &VerifyOutcome{Reference: reference, AlreadySettled: true}, nil
	}

	tx, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		slog.Warn("payment verify failed",
			"user_id", userID,
			"reference", reference,
			"kind", payment.KindOf(err).String(),
			"error", err,
		)
		return nil, err
	}

	if !tx.Successful() {
		return nil, fmt.Errorf("%w: gateway status %q", ErrVerificationFailed, tx.Status)
	}

	if tx.Amount != p.Amount || !strings.EqualFold(tx.Currency, p.Currency) {
		slog.Warn("payment amount mismatch",
			"user_id", userID,
			"reference", reference,
			"want_amount", p.Amount,
			"got_amount", tx.Amount,
			"want_currency", p.Currency,
			"got_currency", tx.Currency,
		)
		return nil, fmt.Errorf("%w: amount mismatch", ErrVerificationFailed)
	}

	changed, err := s.store.Settle(ctx, reference, s.now())
	if err != nil {
		return nil, err
	}

	return &VerifyOutcome{Reference: reference, AlreadySettled: !changed}, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, core.ErrNotFound)
}
