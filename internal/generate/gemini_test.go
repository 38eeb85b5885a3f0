package generate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGeminiClient_Generate(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-test:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "k" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"# Kế "},{"text":"hoạch"}]}}]}`))
	}))
	defer srv.Close()

	c := NewGeminiClient("k", "gemini-test", srv.URL, srv.Client())
	text, err := c.Generate(context.Background(), Prompt{System: "sys", User: "hi", Temperature: 0.5, ThinkingBudget: 128})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "# Kế hoạch" {
		t.Errorf("expected joined parts, got %q", text)
	}
	if got.SystemInstruction == nil || got.SystemInstruction.Parts[0].Text != "sys" {
		t.Errorf("expected system instruction, got %+v", got.SystemInstruction)
	}
	if got.GenerationConfig.ThinkingConfig == nil || got.GenerationConfig.ThinkingConfig.ThinkingBudget != 128 {
		t.Errorf("expected thinking budget, got %+v", got.GenerationConfig)
	}
	if len(got.Contents) != 1 || got.Contents[0].Parts[0].Text != "hi" {
		t.Errorf("unexpected contents %+v", got.Contents)
	}
}

func TestGeminiClient_StatusErrors(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
		invalid   bool
	}{
		{http.StatusTooManyRequests, true, false},
		{http.StatusServiceUnavailable, true, false},
		{http.StatusForbidden, false, true},
		{http.StatusBadRequest, false, false},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"message":"nope"}}`, tt.status)
		}))
		c := NewGeminiClient("k", "", srv.URL, srv.Client())
		_, err := c.Generate(context.Background(), Prompt{User: "x"})
		srv.Close()

		if err == nil {
			t.Fatalf("status %d: expected error", tt.status)
		}
		if IsRetryable(err) != tt.retryable {
			t.Errorf("status %d: retryable = %v", tt.status, IsRetryable(err))
		}
		if errors.Is(err, ErrInvalidAPIKey) != tt.invalid {
			t.Errorf("status %d: invalid key = %v", tt.status, errors.Is(err, ErrInvalidAPIKey))
		}
	}
}

func TestGeminiClient_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v1beta/models/"+DefaultGeminiModel {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") == "bad" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"name":"models/x"}`))
	}))
	defer srv.Close()

	if err := NewGeminiClient("good", "", srv.URL, srv.Client()).Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	err := NewGeminiClient("bad", "", srv.URL, srv.Client()).Ping(context.Background())
	if !errors.Is(err, ErrInvalidAPIKey) {
		t.Fatalf("expected ErrInvalidAPIKey, got %v", err)
	}
}

func TestNew(t *testing.T) {
	if _, err := New(Settings{Provider: ProviderGemini}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if _, err := New(Settings{Provider: "openai", APIKey: "k"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}

	c, err := New(Settings{Provider: ProviderAnthropic, APIKey: "k"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Model() != DefaultAnthropicModel {
		t.Errorf("expected default anthropic model, got %q", c.Model())
	}

	c, err = New(Settings{APIKey: "k", Model: "gemini-2.5-pro"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := c.(*GeminiClient); !ok || c.Model() != "gemini-2.5-pro" {
		t.Errorf("expected gemini client with model override, got %T %q", c, c.Model())
	}
}
