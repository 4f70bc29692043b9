package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"graphion/internal/services"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(context.Background(), Config{
		APIKey:          "test-key",
		Model:           "gemini-2.5-flash",
		Endpoint:        server.URL,
		Temperature:     0.4,
		MaxOutputTokens: 8000,
		SafetyThreshold: "BLOCK_ONLY_HIGH",
	}, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, payload any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestGenerateSendsRequestShape(t *testing.T) {
	var captured map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-2.5-flash:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("expected api key header, got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		writeJSON(t, w, map[string]any{
			"candidates": []any{map[string]any{
				"content":      map[string]any{"role": "model", "parts": []any{map[string]any{"text": "<html></html>"}}},
				"finishReason": "STOP",
			}},
			"usageMetadata": map[string]any{"promptTokenCount": 12, "candidatesTokenCount": 340},
			"modelVersion":  "gemini-2.5-flash-001",
		})
	})

	resp, err := client.Generate(context.Background(), Request{SystemInstruction: "be terse", Prompt: "bouncing ball"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if resp.Text != "<html></html>" || resp.FinishReason != "STOP" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.PromptTokens != 12 || resp.OutputTokens != 340 || resp.ModelVersion != "gemini-2.5-flash-001" {
		t.Fatalf("unexpected usage %+v", resp)
	}

	cfg, _ := captured["generationConfig"].(map[string]any)
	if cfg["temperature"] != 0.4 {
		t.Fatalf("unexpected temperature in %v", cfg)
	}
	if cfg["maxOutputTokens"] != float64(8000) {
		t.Fatalf("unexpected max output tokens in %v", cfg)
	}
	sys, _ := captured["systemInstruction"].(map[string]any)
	if sys == nil {
		t.Fatal("expected system instruction")
	}
	safety, _ := captured["safetySettings"].([]any)
	if len(safety) != len(harmCategories) {
		t.Fatalf("expected %d safety settings, got %v", len(harmCategories), safety)
	}
	for _, raw := range safety {
		setting, _ := raw.(map[string]any)
		if setting["threshold"] != "BLOCK_ONLY_HIGH" {
			t.Fatalf("unexpected safety setting %v", setting)
		}
	}
	contents, _ := captured["contents"].([]any)
	if len(contents) != 1 {
		t.Fatalf("expected a single user turn, got %v", contents)
	}
}

func TestGeneratePromptBlocked(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"promptFeedback": map[string]any{"blockReason": "SAFETY"}})
	})

	_, err := client.Generate(context.Background(), Request{Prompt: "something"})
	if !errors.Is(err, services.ErrGenerationBlocked) {
		t.Fatalf("expected blocked error, got %v", err)
	}
	var blocked *BlockedError
	if !errors.As(err, &blocked) || blocked.Reason != "SAFETY" {
		t.Fatalf("expected block reason SAFETY, got %v", err)
	}
}

func TestGenerateCandidateWithoutText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"candidates": []any{map[string]any{"finishReason": "SAFETY"}},
		})
	})

	_, err := client.Generate(context.Background(), Request{Prompt: "something"})
	var blocked *BlockedError
	if !errors.As(err, &blocked) || blocked.FinishReason != "SAFETY" {
		t.Fatalf("expected finish reason SAFETY, got %v", err)
	}
}

func TestGenerateNoCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{})
	})
	_, err := client.Generate(context.Background(), Request{Prompt: "something"})
	if !errors.Is(err, services.ErrGenerationBlocked) {
		t.Fatalf("expected blocked error for empty candidates, got %v", err)
	}
}

func TestGenerateAPIErrorIsUnavailable(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`))
	})

	_, err := client.Generate(context.Background(), Request{Prompt: "something"})
	if !errors.Is(err, services.ErrGenerationUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	if !strings.Contains(err.Error(), "quota exhausted") {
		t.Fatalf("expected quota hint in %q", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one attempt, got %d", calls)
	}
}

func TestHealthCheck(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || !strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash") {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		writeJSON(t, w, map[string]any{"name": "models/gemini-2.5-flash", "outputTokenLimit": 65536})
	})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestHealthCheckFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"bad key"}}`))
	})
	err := client.HealthCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "api key rejected") {
		t.Fatalf("expected rejected key error, got %v", err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), Config{Model: "gemini-2.5-flash"})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	_, err = NewClient(context.Background(), Config{Model: "gemini-2.5-flash", APIKey: "  "},
		WithHTTPClient(http.DefaultClient))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error with custom transport, got %v", err)
	}
}
