package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fakeOpenAI returns an httptest server speaking the chat completions format.
func fakeOpenAI(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"model": "test-model",
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content},
					"finish_reason": "stop"},
			},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testProvider(t *testing.T, name string, srv *httptest.Server) *OpenAIProvider {
	t.Helper()
	return NewOpenAIProvider(OpenAIConfig{
		Name:         name,
		BaseURL:      srv.URL,
		APIKey:       "test-key",
		DefaultModel: "test-model",
	})
}

func TestComplete(t *testing.T) {
	srv := fakeOpenAI(t, http.StatusOK, "hello there")
	client := NewClient([]Provider{testProvider(t, "primary", srv)})

	resp, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Content != "hello there" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Provider != "primary" {
		t.Errorf("provider = %q, want primary", resp.Provider)
	}
	if resp.TokensIn != 10 || resp.TokensOut != 5 {
		t.Errorf("tokens = %d/%d, want 10/5", resp.TokensIn, resp.TokensOut)
	}
}

func TestFallbackChain(t *testing.T) {
	broken := fakeOpenAI(t, http.StatusInternalServerError, "")
	working := fakeOpenAI(t, http.StatusOK, "from backup")
	client := NewClient([]Provider{
		testProvider(t, "broken", broken),
		testProvider(t, "backup", working),
	})

	resp, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Provider != "backup" {
		t.Errorf("provider = %q, want backup", resp.Provider)
	}
}

func TestAllProvidersFail(t *testing.T) {
	broken := fakeOpenAI(t, http.StatusInternalServerError, "")
	client := NewClient([]Provider{testProvider(t, "broken", broken)})

	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error when all providers fail")
	}
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Errorf("error type = %T, want *ProviderError", err)
	}
}

func TestRateLimited(t *testing.T) {
	limited := fakeOpenAI(t, http.StatusTooManyRequests, "")
	client := NewClient([]Provider{testProvider(t, "limited", limited)})

	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
}

func TestCompleteWith(t *testing.T) {
	srv := fakeOpenAI(t, http.StatusOK, "targeted")
	client := NewClient([]Provider{testProvider(t, "named", srv)})

	if _, err := client.CompleteWith(context.Background(), "missing", Request{}); !errors.Is(err, ErrProviderNotFound) {
		t.Errorf("err = %v, want ErrProviderNotFound", err)
	}
	resp, err := client.CompleteWith(context.Background(), "named", Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("complete with: %v", err)
	}
	if resp.Content != "targeted" {
		t.Errorf("content = %q", resp.Content)
	}
}

type recordedCall struct {
	provider  string
	model     string
	tokensOut int
	err       error
}

type stubTracer struct {
	calls []recordedCall
}

func (s *stubTracer) Record(_ context.Context, provider, model string, _ time.Duration, _, tokensOut int, err error) {
	s.calls = append(s.calls, recordedCall{provider: provider, model: model, tokensOut: tokensOut, err: err})
}

func TestTracerSeesEveryAttempt(t *testing.T) {
	broken := fakeOpenAI(t, http.StatusInternalServerError, "")
	working := fakeOpenAI(t, http.StatusOK, "traced")
	client := NewClient([]Provider{
		testProvider(t, "broken", broken),
		testProvider(t, "backup", working),
	})
	tracer := &stubTracer{}
	client.SetTracer(tracer)

	if _, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if len(tracer.calls) != 2 {
		t.Fatalf("recorded calls = %d, want 2", len(tracer.calls))
	}
	if tracer.calls[0].provider != "broken" || tracer.calls[0].err == nil {
		t.Errorf("first call = %+v, want failed broken attempt", tracer.calls[0])
	}
	if tracer.calls[1].provider != "backup" || tracer.calls[1].err != nil {
		t.Errorf("second call = %+v, want successful backup attempt", tracer.calls[1])
	}
	if tracer.calls[1].tokensOut != 5 {
		t.Errorf("tokens out = %d, want 5", tracer.calls[1].tokensOut)
	}
}

func TestNoProviders(t *testing.T) {
	client := NewClient(nil)
	if _, err := client.Complete(context.Background(), Request{}); !errors.Is(err, ErrNoProviders) {
		t.Errorf("err = %v, want ErrNoProviders", err)
	}
}
