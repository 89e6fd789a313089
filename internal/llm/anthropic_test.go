package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeAnthropic returns an httptest server speaking the Messages API format
// and records the last request it saw.
func fakeAnthropic(t *testing.T, content string, lastReq *anthropicRequest, lastHeader *http.Header) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			http.NotFound(w, r)
			return
		}
		if lastReq != nil {
			if err := json.NewDecoder(r.Body).Decode(lastReq); err != nil {
				t.Errorf("decoding request: %v", err)
			}
		}
		if lastHeader != nil {
			*lastHeader = r.Header.Clone()
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"model": "test-model",
			"content": []map[string]string{
				{"type": "text", "text": content},
			},
			"stop_reason": "end_turn",
			"usage":       map[string]int{"input_tokens": 12, "output_tokens": 7},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAnthropicComplete(t *testing.T) {
	var gotReq anthropicRequest
	var gotHeader http.Header
	srv := fakeAnthropic(t, "a gentle follow-up", &gotReq, &gotHeader)

	p := NewAnthropicProvider(AnthropicConfig{
		APIKey:       "test-key",
		BaseURL:      srv.URL,
		DefaultModel: "test-model",
	})
	resp, err := p.Complete(context.Background(), Request{
		Messages: []Message{
			{Role: "system", Content: "you are an interviewer"},
			{Role: "user", Content: "hi"},
		},
		MaxTokens: 150,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Content != "a gentle follow-up" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.TokensIn != 12 || resp.TokensOut != 7 {
		t.Errorf("tokens = %d/%d, want 12/7", resp.TokensIn, resp.TokensOut)
	}
	if resp.FinishReason != "end_turn" {
		t.Errorf("finish reason = %q", resp.FinishReason)
	}

	// The system message is hoisted to the top-level field.
	if gotReq.System != "you are an interviewer" {
		t.Errorf("system = %q", gotReq.System)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" {
		t.Errorf("messages = %+v, want the single user turn", gotReq.Messages)
	}
	if gotReq.MaxTokens != 150 {
		t.Errorf("max_tokens = %d, want 150", gotReq.MaxTokens)
	}
	if gotHeader.Get("x-api-key") != "test-key" {
		t.Errorf("x-api-key = %q", gotHeader.Get("x-api-key"))
	}
	if gotHeader.Get("anthropic-version") == "" {
		t.Error("missing anthropic-version header")
	}
}

func TestAnthropicDefaults(t *testing.T) {
	p := NewAnthropicProvider(AnthropicConfig{APIKey: "k"})
	if p.baseURL != "https://api.anthropic.com" {
		t.Errorf("base url = %q", p.baseURL)
	}
	if p.defModel == "" {
		t.Error("default model not set")
	}
	if p.Name() != "anthropic" {
		t.Errorf("name = %q", p.Name())
	}
}

func TestAnthropicServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	p := NewAnthropicProvider(AnthropicConfig{APIKey: "k", BaseURL: srv.URL})
	_, err := p.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error on HTTP 500")
	}
}
