// AngelaMos | 2026
// gemini.go

package inference

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/option"

	"github.com/carterperez-dev/flashforge/internal/core"
)

const defaultGeminiModel = "gemini-2.0-flash"

type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: api key required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	// Hugging Face style repo ids ("org/model") are not Gemini models.
	if model == "" || strings.Contains(model, "/") {
		model = defaultGeminiModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Gemini{client: client, model: model, timeout: timeout}, nil
}

func (g *Gemini) Generate(
	ctx context.Context,
	prompt string,
	maxTokens int,
) (text string, err error) {
	ctx, span := core.StartSpan(ctx, "inference.gemini.generate",
		attribute.String("inference.model", g.model),
		attribute.Int("inference.max_tokens", maxTokens),
	)
	defer func() { core.EndSpan(span, err) }()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	model := g.client.GenerativeModel(g.model)
	model.SetMaxOutputTokens(int32(min(maxTokens, math.MaxInt32))) //nolint:gosec // bounded above

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini: %w: %w", core.ErrUpstream, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: %w: no candidates", core.ErrUpstream)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}

	return b.String(), nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}
