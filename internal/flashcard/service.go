// AngelaMos | 2026
// service.go

package flashcard

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/flashforge/internal/core"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(
	ctx context.Context,
	userID string,
	params ListParams,
) ([]Flashcard, int, error) {
	if userID == "" {
		return nil, 0, fmt.Errorf("list flashcards: %w", core.ErrUnauthorized)
	}

	params = params.Normalize()

	cards, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	return cards, total, nil
}
