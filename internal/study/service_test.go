// AngelaMos | 2026
// service_test.go

package study

import (
	"context"
	"errors"
	"testing"

	"github.com/carterperez-dev/flashforge/internal/core"
	"github.com/carterperez-dev/flashforge/internal/inference"
	"github.com/carterperez-dev/flashforge/internal/quota"
	"github.com/carterperez-dev/flashforge/internal/user"
)

type MockUsers struct {
	GetByIDFunc func(ctx context.Context, id string) (*user.User, error)
}

func (m *MockUsers) GetByID(ctx context.Context, id string) (*user.User, error) {
	return m.GetByIDFunc(ctx, id)
}

type MockGenerator struct {
	FlashcardsFunc func(ctx context.Context, text string) ([]inference.Card, error)
	QuizFunc       func(ctx context.Context, text string) ([]inference.QuizItem, error)
	Calls          int
}

func (m *MockGenerator) GenerateFlashcards(ctx context.Context, text string) ([]inference.Card, error) {
	m.Calls++
	if m.FlashcardsFunc == nil {
		return []inference.Card{}, nil
	}
	return m.FlashcardsFunc(ctx, text)
}

func (m *MockGenerator) GenerateQuiz(ctx context.Context, text string) ([]inference.QuizItem, error) {
	m.Calls++
	if m.QuizFunc == nil {
		return []inference.QuizItem{}, nil
	}
	return m.QuizFunc(ctx, text)
}

// MockRecorder keeps usage in memory and enforces the quota the same way
// the database recorder does.
type MockRecorder struct {
	Tracker *quota.Tracker
	User    *user.User
	Stored  []inference.Card
	Calls   int
	Err     error
}

func (m *MockRecorder) Record(_ context.Context, _ string, cards []inference.Card) (quota.Usage, error) {
	m.Calls++
	if m.Err != nil {
		return quota.Usage{}, m.Err
	}
	if !m.Tracker.CanGenerate(m.User.Usage()) {
		return quota.Usage{}, core.ErrQuotaExceeded
	}
	m.Stored = append(m.Stored, cards...)
	m.User.PromptsUsed++
	return m.User.Usage(), nil
}

type fixture struct {
	user     *user.User
	gen      *MockGenerator
	recorder *MockRecorder
	service  *Service
}

func newFixture(used int, subscribed bool) *fixture {
	tracker := quota.NewTracker(quota.DefaultFreePrompts)
	u := &user.User{ID: "u1", Email: "a@b.co", PromptsUsed: used, Subscribed: subscribed}
	gen := &MockGenerator{}
	rec := &MockRecorder{Tracker: tracker, User: u}
	users := &MockUsers{GetByIDFunc: func(context.Context, string) (*user.User, error) {
		cp := *u
		return &cp, nil
	}}

	return &fixture{
		user:     u,
		gen:      gen,
		recorder: rec,
		service:  NewService(users, gen, rec, tracker),
	}
}

func TestGenerateQuotaExhaustedSkipsInference(t *testing.T) {
	f := newFixture(5, false)

	_, err := f.service.Generate(context.Background(), "u1", GenerateRequest{Text: "water", Mode: ModeFlashcards})
	if !errors.Is(err, core.ErrQuotaExceeded) {
		t.Fatalf("err = %v, want ErrQuotaExceeded", err)
	}
	if f.gen.Calls != 0 {
		t.Errorf("inference called %d times, want 0", f.gen.Calls)
	}
	if f.recorder.Calls != 0 {
		t.Errorf("usage recorded %d times, want 0", f.recorder.Calls)
	}
}

func TestGenerateQuotaCheckedBeforeValidation(t *testing.T) {
	f := newFixture(5, false)

	_, err := f.service.Generate(context.Background(), "u1", GenerateRequest{Mode: "bogus"})
	if !errors.Is(err, core.ErrQuotaExceeded) {
		t.Fatalf("err = %v, want ErrQuotaExceeded", err)
	}
}

func TestGenerateValidation(t *testing.T) {
	tests := []struct {
		name string
		req  GenerateRequest
		want error
	}{
		{name: "missing text", req: GenerateRequest{Mode: ModeQuiz}, want: ErrMissingText},
		{name: "blank text", req: GenerateRequest{Text: "  \n"}, want: ErrMissingText},
		{name: "missing text beats bad mode", req: GenerateRequest{Mode: "essay"}, want: ErrMissingText},
		{name: "invalid mode", req: GenerateRequest{Text: "water", Mode: "essay"}, want: ErrInvalidMode},
		{name: "discarded oversized body", req: GenerateRequest{BodyTooLarge: true}, want: ErrTextTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(0, false)

			_, err := f.service.Generate(context.Background(), "u1", tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if f.gen.Calls != 0 || f.recorder.Calls != 0 {
				t.Errorf("gen calls = %d, recorder calls = %d, want 0", f.gen.Calls, f.recorder.Calls)
			}
		})
	}
}

func TestGenerateFlashcards(t *testing.T) {
	f := newFixture(2, false)
	f.gen.FlashcardsFunc = func(context.Context, string) ([]inference.Card, error) {
		return []inference.Card{{Question: "What is H2O?", Answer: "Water"}}, nil
	}

	res, err := f.service.Generate(context.Background(), "u1", GenerateRequest{Text: "water"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if res.Mode != ModeFlashcards {
		t.Errorf("mode = %q, want default flashcards", res.Mode)
	}
	if len(res.Flashcards) != 1 {
		t.Errorf("flashcards = %#v", res.Flashcards)
	}
	if res.Remaining != 2 {
		t.Errorf("remaining = %d, want 2", res.Remaining)
	}
	if f.user.PromptsUsed != 3 {
		t.Errorf("prompts_used = %d, want 3", f.user.PromptsUsed)
	}
	if len(f.recorder.Stored) != 1 {
		t.Errorf("stored %d cards, want 1", len(f.recorder.Stored))
	}
}

func TestGenerateQuizCountsUsageWithoutCards(t *testing.T) {
	f := newFixture(4, false)
	f.gen.QuizFunc = func(context.Context, string) ([]inference.QuizItem, error) {
		return []inference.QuizItem{{Question: "Why?", Options: []string{"a"}, Answer: "a"}}, nil
	}

	res, err := f.service.Generate(context.Background(), "u1", GenerateRequest{Text: "t", Mode: ModeQuiz})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if len(res.Quiz) != 1 || res.Remaining != 0 {
		t.Errorf("res = %#v", res)
	}
	if len(f.recorder.Stored) != 0 {
		t.Errorf("quiz mode stored %d cards", len(f.recorder.Stored))
	}
	if f.user.PromptsUsed != 5 {
		t.Errorf("prompts_used = %d, want 5", f.user.PromptsUsed)
	}
}

func TestGenerateUpstreamFailureRecordsNothing(t *testing.T) {
	f := newFixture(1, false)
	f.gen.FlashcardsFunc = func(context.Context, string) ([]inference.Card, error) {
		return nil, &inference.StatusError{StatusCode: 503, Body: "loading"}
	}

	_, err := f.service.Generate(context.Background(), "u1", GenerateRequest{Text: "water"})
	if !errors.Is(err, core.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
	if f.recorder.Calls != 0 {
		t.Errorf("usage recorded after upstream failure")
	}
	if f.user.PromptsUsed != 1 {
		t.Errorf("prompts_used = %d, want 1", f.user.PromptsUsed)
	}
}

func TestGenerateSubscribedIgnoresQuota(t *testing.T) {
	f := newFixture(40, true)

	res, err := f.service.Generate(context.Background(), "u1", GenerateRequest{Text: "t"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if res.Remaining != 0 {
		t.Errorf("remaining = %d, want 0", res.Remaining)
	}
	if f.user.PromptsUsed != 41 {
		t.Errorf("prompts_used = %d, want 41", f.user.PromptsUsed)
	}
}

func TestGenerateRecorderRejectsUnderLock(t *testing.T) {
	f := newFixture(4, false)
	f.recorder.Err = core.ErrQuotaExceeded

	_, err := f.service.Generate(context.Background(), "u1", GenerateRequest{Text: "t"})
	if !errors.Is(err, core.ErrQuotaExceeded) {
		t.Fatalf("err = %v, want ErrQuotaExceeded", err)
	}
}

func TestGenerateNeverExceedsFreeQuota(t *testing.T) {
	f := newFixture(0, false)

	for i := 0; i < 10; i++ {
		//nolint:errcheck // outcome checked through prompts_used below
		_, _ = f.service.Generate(context.Background(), "u1", GenerateRequest{Text: "t"})
	}

	if f.user.PromptsUsed != quota.DefaultFreePrompts {
		t.Errorf("prompts_used = %d, want %d", f.user.PromptsUsed, quota.DefaultFreePrompts)
	}
	if f.gen.Calls != quota.DefaultFreePrompts {
		t.Errorf("inference calls = %d, want %d", f.gen.Calls, quota.DefaultFreePrompts)
	}
}
