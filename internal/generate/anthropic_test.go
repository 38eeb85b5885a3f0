package generate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnthropicClient_Generate(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "k" || r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing auth headers")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"content":[{"type":"thinking","text":"x"},{"type":"text","text":"## I. HOẠT ĐỘNG HỌC"}]}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient("k", "claude-test", srv.URL, srv.Client())
	text, err := c.Generate(context.Background(), Prompt{System: "sys", User: "hi", Temperature: 1.2})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "## I. HOẠT ĐỘNG HỌC" {
		t.Errorf("expected text blocks only, got %q", text)
	}
	if got.Model != "claude-test" || got.System != "sys" || got.MaxTokens != 8192 {
		t.Errorf("unexpected request %+v", got)
	}
	if got.Temperature == nil || *got.Temperature != 1 {
		t.Errorf("expected temperature clamped to 1, got %v", got.Temperature)
	}
}

func TestAnthropicClient_Retryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(529)
		w.Write([]byte(`{"error":{"type":"overloaded_error","message":"Overloaded"}}`))
	}))
	defer srv.Close()

	_, err := NewAnthropicClient("k", "", srv.URL, srv.Client()).Generate(context.Background(), Prompt{User: "x"})
	if !IsRetryable(err) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}
