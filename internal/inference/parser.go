// AngelaMos | 2026
// parser.go

package inference

import (
	"encoding/json"
	"strings"
)

const (
	questionMarker = "Q:"
	answerMarker   = "A:"
	quizAnswerTag  = "Answer:"
)

// Card is one question/answer pair. It encodes as a two element array.
type Card struct {
	Question string
	Answer   string
}

func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{c.Question, c.Answer})
}

func (c *Card) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	c.Question, c.Answer = pair[0], pair[1]
	return nil
}

type QuizItem struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// ParseFlashcards extracts Q/A pairs from free model text. A line holding
// both markers is one card, split at the first "A:". A "Q:" line directly
// followed by an "A:" line is also one card. Everything else is ignored,
// so the result may be empty but is never nil.
func ParseFlashcards(raw string) []Card {
	cards := []Card{}

	var pending string
	var hasPending bool

	for _, line := range splitLines(raw) {
		hasQ := strings.Contains(line, questionMarker)
		hasA := strings.Contains(line, answerMarker)

		switch {
		case hasQ && hasA:
			q, a, _ := strings.Cut(line, answerMarker)
			cards = append(cards, Card{
				Question: cleanQuestion(q),
				Answer:   strings.TrimSpace(a),
			})
			hasPending = false
		case hasQ:
			pending, hasPending = cleanQuestion(line), true
		case hasA && hasPending:
			_, a, _ := strings.Cut(line, answerMarker)
			cards = append(cards, Card{
				Question: pending,
				Answer:   strings.TrimSpace(a),
			})
			hasPending = false
		default:
			hasPending = false
		}
	}

	return cards
}

func cleanQuestion(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, questionMarker, ""))
}

// ParseQuiz reads blank-line separated blocks. A block counts only if it
// contains a "?": its first line is the question, its last line the
// answer, and the lines between are options.
func ParseQuiz(raw string) []QuizItem {
	items := []QuizItem{}

	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	for _, block := range strings.Split(normalized, "\n\n") {
		if !strings.Contains(block, "?") {
			continue
		}

		parts := strings.Split(block, "\n")

		options := []string{}
		if len(parts) > 2 {
			for _, p := range parts[1 : len(parts)-1] {
				if strings.TrimSpace(p) == "" {
					continue
				}
				options = append(options, strings.TrimSpace(strings.Trim(p, "- ")))
			}
		}

		last := parts[len(parts)-1]
		items = append(items, QuizItem{
			Question: strings.TrimSpace(parts[0]),
			Options:  options,
			Answer:   strings.TrimSpace(strings.ReplaceAll(last, quizAnswerTag, "")),
		})
	}

	return items
}

func splitLines(raw string) []string {
	return strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
}
