// AngelaMos | 2026
// huggingface_test.go

package inference

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/carterperez-dev/flashforge/internal/core"
)

func TestHuggingFaceGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/models/google/flan-t5-small" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer hf_test" {
			t.Errorf("Authorization = %q", got)
		}

		var body hfRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body.Inputs != "prompt" {
			t.Errorf("inputs = %q", body.Inputs)
		}
		if body.Parameters.MaxNewTokens != 256 {
			t.Errorf("max_new_tokens = %d, want 256", body.Parameters.MaxNewTokens)
		}
		if !body.Options.WaitForModel {
			t.Error("wait_for_model should be set")
		}

		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"generated_text": "Q: What is H2O? A: Water"},
		})
	}))
	defer server.Close()

	gen := NewHuggingFace(HuggingFaceConfig{
		APIKey:  "hf_test",
		BaseURL: server.URL + "/",
		Model:   "google/flan-t5-small",
	})

	text, err := gen.Generate(context.Background(), "prompt", 256)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if text != "Q: What is H2O? A: Water" {
		t.Errorf("text = %q", text)
	}
}

func TestHuggingFaceGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		substr  string
	}{
		{
			name: "non-2xx carries raw body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"error":"Model is currently loading"}`))
			},
			substr: "Model is currently loading",
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
			substr: "decode response",
		},
		{
			name: "empty array",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`[]`))
			},
			substr: "empty response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			gen := NewHuggingFace(HuggingFaceConfig{APIKey: "k", BaseURL: server.URL})

			_, err := gen.Generate(context.Background(), "prompt", 16)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, core.ErrUpstream) {
				t.Errorf("error %v should match ErrUpstream", err)
			}
			if !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("error %q should contain %q", err.Error(), tt.substr)
			}
		})
	}
}

func TestHuggingFaceTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	gen := NewHuggingFace(HuggingFaceConfig{
		APIKey:  "k",
		BaseURL: server.URL,
		Timeout: 50 * time.Millisecond,
	})

	_, err := gen.Generate(context.Background(), "prompt", 16)
	if !errors.Is(err, core.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
