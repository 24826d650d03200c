// AngelaMos | 2026
// recorder_integration_test.go

package study

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/flashforge/internal/config"
	"github.com/carterperez-dev/flashforge/internal/core"
	"github.com/carterperez-dev/flashforge/internal/inference"
	"github.com/carterperez-dev/flashforge/internal/quota"
	"github.com/carterperez-dev/flashforge/internal/user"
)

// openTestDB connects to DATABASE_URL and migrates it. Tests using it are
// skipped when the variable is unset.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := core.NewDatabase(ctx, config.DatabaseConfig{
		URL:             url,
		MaxOpenConns:    20,
		MaxIdleConns:    5,
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

func promptsUsed(t *testing.T, db *sqlx.DB, userID string) int {
	t.Helper()

	u, err := user.NewRepository(db).GetByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	return u.PromptsUsed
}

func cardCount(t *testing.T, db *sqlx.DB, userID string) int {
	t.Helper()

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM flashcards WHERE user_id = $1`, userID); err != nil {
		t.Fatalf("count flashcards: %v", err)
	}
	return n
}

func TestRecordStoresCardsAndCounts(t *testing.T) {
	db := openTestDB(t)
	userID := createTestUser(t, db)
	rec := NewUsageRecorder(db, quota.NewTracker(quota.DefaultFreePrompts))

	usage, err := rec.Record(context.Background(), userID, []inference.Card{
		{Question: "What is H2O?", Answer: "Water"},
		{Question: "What is NaCl?", Answer: "Salt"},
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if usage.PromptsUsed != 1 {
		t.Errorf("usage.PromptsUsed = %d, want 1", usage.PromptsUsed)
	}
	if got := cardCount(t, db, userID); got != 2 {
		t.Errorf("stored cards = %d, want 2", got)
	}
}

func TestRecordFailedInsertLeavesCountUnchanged(t *testing.T) {
	db := openTestDB(t)
	userID := createTestUser(t, db)
	rec := NewUsageRecorder(db, quota.NewTracker(quota.DefaultFreePrompts))

	// Postgres rejects NUL bytes in text columns.
	_, err := rec.Record(context.Background(), userID, []inference.Card{
		{Question: "ok", Answer: "fine"},
		{Question: "bad\x00question", Answer: "rejected"},
	})
	if err == nil {
		t.Fatal("expected insert error")
	}

	if got := promptsUsed(t, db, userID); got != 0 {
		t.Errorf("prompts_used = %d after failed insert, want 0", got)
	}
	if got := cardCount(t, db, userID); got != 0 {
		t.Errorf("stored cards = %d after failed insert, want 0", got)
	}
}

func TestRecordConcurrentCallsStopAtFreeLimit(t *testing.T) {
	db := openTestDB(t)
	userID := createTestUser(t, db)
	rec := NewUsageRecorder(db, quota.NewTracker(quota.DefaultFreePrompts))

	const workers = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		exceeded int
		other    []error
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := rec.Record(context.Background(), userID, []inference.Card{
				{Question: "q", Answer: "a"},
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, core.ErrQuotaExceeded):
				exceeded++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	if len(other) > 0 {
		t.Fatalf("unexpected errors: %v", other)
	}
	if ok != quota.DefaultFreePrompts {
		t.Errorf("successful records = %d, want %d", ok, quota.DefaultFreePrompts)
	}
	if exceeded != workers-quota.DefaultFreePrompts {
		t.Errorf("quota rejections = %d, want %d", exceeded, workers-quota.DefaultFreePrompts)
	}
	if got := promptsUsed(t, db, userID); got != quota.DefaultFreePrompts {
		t.Errorf("prompts_used = %d, want %d", got, quota.DefaultFreePrompts)
	}
	if got := cardCount(t, db, userID); got != quota.DefaultFreePrompts {
		t.Errorf("stored cards = %d, want %d", got, quota.DefaultFreePrompts)
	}
}
