// AngelaMos | 2026
// dto.go

package study

import (
	"github.com/carterperez-dev/flashforge/internal/inference"
)

const (
	ModeFlashcards = "flashcards"
	ModeQuiz       = "quiz"
)

type GenerateRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode"`
	// BodyTooLarge is set by the handler when the request body exceeded
	// the read limit and was discarded.
	BodyTooLarge bool `json:"-"`
}

type Result struct {
	Mode       string
	Flashcards []inference.Card
	Quiz       []inference.QuizItem
	Remaining  int
}

type FlashcardsResponse struct {
	Flashcards []inference.Card `json:"flashcards"`
	Remaining  int              `json:"remaining"`
}

type QuizResponse struct {
	Quiz      []inference.QuizItem `json:"quiz"`
	Remaining int                  `json:"remaining"`
}

func ToResponse(res *Result) any {
	if res.Mode == ModeQuiz {
		return QuizResponse{Quiz: res.Quiz, Remaining: res.Remaining}
	}
	return FlashcardsResponse{Flashcards: res.Flashcards, Remaining: res.Remaining}
}
