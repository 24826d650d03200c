// AngelaMos | 2026
// dto.go

package flashcard

import (
	"time"
)

type ListParams struct {
	Limit  int
	Offset int
}

// Normalize applies the default page size and clamps out of range values.
func (p ListParams) Normalize() ListParams {
	if p.Limit <= 0 {
		p.Limit = defaultPageSize
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

type FlashcardResponse struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

type ListResponse struct {
	Flashcards []FlashcardResponse `json:"flashcards"`
	Total      int                 `json:"total"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}

func ToFlashcardResponse(f Flashcard) FlashcardResponse {
	return FlashcardResponse{
		ID:        f.ID,
		Question:  f.Question,
		Answer:    f.Answer,
		CreatedAt: f.CreatedAt,
	}
}

func ToFlashcardResponseList(cards []Flashcard) []FlashcardResponse {
	out := make([]FlashcardResponse, len(cards))
	for i, c := range cards {
		out[i] = ToFlashcardResponse(c)
	}
	return out
}
