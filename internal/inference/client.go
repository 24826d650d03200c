// AngelaMos | 2026
// client.go

package inference

import (
	"context"
	"fmt"
)

const (
	flashcardTokenBudget = 256
	quizTokenBudget      = 512

	flashcardPrompt = "Create 5 study flashcards from this text. Each flashcard should be Q&A. Text: %s"
	quizPrompt      = "Create a multiple-choice quiz (3 questions) from this text. Each should have 4 options and the correct answer marked. Text: %s"
)

// Client turns source text into study material through a Generator.
type Client struct {
	gen Generator
}

func NewClient(gen Generator) *Client {
	return &Client{gen: gen}
}

func (c *Client) GenerateFlashcards(ctx context.Context, text string) ([]Card, error) {
	raw, err := c.gen.Generate(ctx, fmt.Sprintf(flashcardPrompt, text), flashcardTokenBudget)
	if err != nil {
		return nil, fmt.Errorf("generate flashcards: %w", err)
	}
	return ParseFlashcards(raw), nil
}

func (c *Client) GenerateQuiz(ctx context.Context, text string) ([]QuizItem, error) {
	raw, err := c.gen.Generate(ctx, fmt.Sprintf(quizPrompt, text), quizTokenBudget)
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}
	return ParseQuiz(raw), nil
}
