// AngelaMos | 2026
// generator.go

package inference

import (
	"context"
	"fmt"
	"io"

	"github.com/carterperez-dev/flashforge/internal/config"
)

// Generator completes a prompt with at most maxTokens new tokens. One call
// is one upstream request; there are no retries.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// NewGenerator builds the backend named by cfg.Provider. The returned
// closer releases backend resources and is never nil.
func NewGenerator(
	ctx context.Context,
	cfg config.InferenceConfig,
) (Generator, io.Closer, error) {
	switch cfg.Provider {
	case config.ProviderHuggingFace, "":
		return NewHuggingFace(HuggingFaceConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}), nopCloser{}, nil
	case config.ProviderGemini:
		gen, err := NewGemini(ctx, GeminiConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return gen, gen, nil
	default:
		return nil, nil, fmt.Errorf("unknown inference provider %q", cfg.Provider)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
