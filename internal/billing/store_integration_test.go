// AngelaMos | 2026
// store_integration_test.go

package billing

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/flashforge/internal/config"
	"github.com/carterperez-dev/flashforge/internal/core"
	"github.com/carterperez-dev/flashforge/internal/user"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := core.NewDatabase(ctx, config.DatabaseConfig{
		URL:             url,
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Minute,
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db.DB
}

func createTestUser(t *testing.T, db *sqlx.DB) string {
	t.Helper()

	u := &user.User{
		ID:           uuid.New().String(),
		Email:        uuid.New().String() + "@example.com",
		PasswordHash: "x",
	}
	if err := user.NewRepository(db).Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() {
		_, _ = db.Exec(`DELETE FROM users WHERE id = $1`, u.ID)
	})
	return u.ID
}

func TestStoreSettleIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	userID := createTestUser(t, db)
	store := NewStore(db)
	ctx := context.Background()

	p := &Payment{
		ID:        uuid.New().String(),
		UserID:    userID,
		Reference: referencePrefix + uuid.New().String(),
		Amount:    29900,
		Currency:  "KES",
	}
	if err := store.CreatePending(ctx, p); err != nil {
		t.Fatalf("CreatePending: %v", err)
	}

	changed, err := store.Settle(ctx, p.Reference, time.Now())
	if err != nil {
		t.Fatalf("first Settle: %v", err)
	}
	if !changed {
		t.Error("first Settle reported no change")
	}

	changed, err = store.Settle(ctx, p.Reference, time.Now())
	if err != nil {
		t.Fatalf("second Settle: %v", err)
	}
	if changed {
		t.Error("second Settle reported a change")
	}

	got, err := store.GetByReference(ctx, p.Reference)
	if err != nil {
		t.Fatalf("GetByReference: %v", err)
	}
	if got.Status != StatusSuccess || got.VerifiedAt == nil {
		t.Errorf("payment = status %q verified_at %v, want success with timestamp", got.Status, got.VerifiedAt)
	}

	u, err := user.NewRepository(db).GetByID(ctx, userID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if !u.Subscribed || u.SubscribedAt == nil {
		t.Errorf("user subscribed = %v at %v, want subscribed with timestamp", u.Subscribed, u.SubscribedAt)
	}
}

func TestStoreSettleUnknownReference(t *testing.T) {
	db := openTestDB(t)

	_, err := NewStore(db).Settle(context.Background(), "ff-missing", time.Now())
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
