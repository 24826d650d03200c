// AngelaMos | 2026
// service.go

package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/carterperez-dev/flashforge/internal/core"
	"github.com/carterperez-dev/flashforge/internal/inference"
	"github.com/carterperez-dev/flashforge/internal/quota"
	"github.com/carterperez-dev/flashforge/internal/user"
)

const MaxTextLength = 20000

var (
	ErrMissingText = fmt.Errorf("missing text: %w", core.ErrInvalidInput)
	ErrTextTooLong = fmt.Errorf("text too long: %w", core.ErrInvalidInput)
	ErrInvalidMode = fmt.Errorf("invalid mode: %w", core.ErrInvalidInput)
)

type UserReader interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

type Generator interface {
	GenerateFlashcards(ctx context.Context, text string) ([]inference.Card, error)
	GenerateQuiz(ctx context.Context, text string) ([]inference.QuizItem, error)
}

type Service struct {
	users    UserReader
	gen      Generator
	recorder UsageRecorder
	tracker  *quota.Tracker
}

func NewService(
	users UserReader,
	gen Generator,
	recorder UsageRecorder,
	tracker *quota.Tracker,
) *Service {
	return &Service{
		users:    users,
		gen:      gen,
		recorder: recorder,
		tracker:  tracker,
	}
}

// Generate checks the quota before looking at the request, so an exhausted
// user never reaches the inference service. Usage is only recorded after
// the model answered.
func (s *Service) Generate(
	ctx context.Context,
	userID string,
	req GenerateRequest,
) (*Result, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !s.tracker.CanGenerate(u.Usage()) {
		return nil, fmt.Errorf("generate: %w", core.ErrQuotaExceeded)
	}

	if req.BodyTooLarge {
		return nil, ErrTextTooLong
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrMissingText
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return nil, ErrTextTooLong
	}

	mode := req.Mode
	if mode == "" {
		mode = ModeFlashcards
	}

	res := &Result{Mode: mode}

	switch mode {
	case ModeFlashcards:
		cards, err := s.gen.GenerateFlashcards(ctx, text)
		if err != nil {
			return nil, s.upstreamFailure(userID, mode, err)
		}
		res.Flashcards = cards
	case ModeQuiz:
		quiz, err := s.gen.GenerateQuiz(ctx, text)
		if err != nil {
			return nil, s.upstreamFailure(userID, mode, err)
		}
		res.Quiz = quiz
	default:
		return nil, ErrInvalidMode
	}

	usage, err := s.recorder.Record(ctx, userID, res.Flashcards)
	if err != nil {
		return nil, fmt.Errorf("record usage: %w", err)
	}

	res.Remaining = s.tracker.Remaining(usage)
	return res, nil
}

func (s *Service) upstreamFailure(userID, mode string, err error) error {
	slog.Warn("inference failed",
		"user_id", userID,
		"mode", mode,
		"error", err,
	)
	if !errors.Is(err, core.ErrUpstream) {
		err = fmt.Errorf("%w: %w", core.ErrUpstream, err)
	}
	return err
}
