// AngelaMos | 2026
// huggingface.go

package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/flashforge/internal/core"
)

const (
	defaultHFBaseURL = "https://api-inference.huggingface.co"
	defaultHFModel   = "google/flan-t5-small"
	defaultTimeout   = 10 * time.Second
	maxErrorBody     = 512
)

type HuggingFaceConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// HuggingFace calls the hosted Inference API text-generation endpoint.
type HuggingFace struct {
	cfg        HuggingFaceConfig
	httpClient *http.Client
}

type HuggingFaceOption func(*HuggingFace)

func WithHTTPClient(client *http.Client) HuggingFaceOption {
	return func(h *HuggingFace) {
		if client != nil {
			h.httpClient = client
		}
	}
}

func NewHuggingFace(cfg HuggingFaceConfig, opts ...HuggingFaceOption) *HuggingFace {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultHFBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultHFModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	h := &HuggingFace{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
	Options    hfOptions    `json:"options"`
}

type hfParameters struct {
	MaxNewTokens int `json:"max_new_tokens"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

// StatusError is a non-2xx answer from the inference service. Body holds
// the raw response text.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("inference: http %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == core.ErrUpstream
}

func (h *HuggingFace) Generate(
	ctx context.Context,
	prompt string,
	maxTokens int,
) (text string, err error) {
	ctx, span := core.StartSpan(ctx, "inference.huggingface.generate",
		attribute.String("inference.model", h.cfg.Model),
		attribute.Int("inference.max_tokens", maxTokens),
	)
	defer func() { core.EndSpan(span, err) }()

	endpoint, err := url.JoinPath(h.cfg.BaseURL, "models", h.cfg.Model)
	if err != nil {
		return "", fmt.Errorf("inference: build url: %w", err)
	}

	encoded, err := json.Marshal(hfRequest{
		Inputs:     prompt,
		Parameters: hfParameters{MaxNewTokens: maxTokens},
		Options:    hfOptions{WaitForModel: true},
	})
	if err != nil {
		return "", fmt.Errorf("inference: encode body: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		endpoint,
		bytes.NewReader(encoded),
	)
	if err != nil {
		return "", fmt.Errorf("inference: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("inference: %w: %w", core.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("inference: read body: %w: %w", core.ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{
			StatusCode: resp.StatusCode,
			Body:       core.Truncate(strings.TrimSpace(string(body)), maxErrorBody),
		}
	}

	var generations []hfGeneration
	if err := json.Unmarshal(body, &generations); err != nil {
		return "", fmt.Errorf("inference: decode response: %w: %w", core.ErrUpstream, err)
	}
	if len(generations) == 0 {
		return "", fmt.Errorf("inference: %w: empty response", core.ErrUpstream)
	}

	return generations[0].GeneratedText, nil
}
