// Package llm provides a multi-provider LLM client with a fallback chain,
// plus the semantic scorer and question generator built on top of it.
package llm

import (
	"context"
	"time"
)

// Message represents a chat message (system/user/assistant).
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a provider-agnostic LLM completion request.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Response is a provider-agnostic LLM completion response.
type Response struct {
	Provider     string        `json:"provider"`
	Model        string        `json:"model"`
	Content      string        `json:"content"`
	TokensIn     int           `json:"tokens_in"`
	TokensOut    int           `json:"tokens_out"`
	FinishReason string        `json:"finish_reason"`
	Latency      time.Duration `json:"latency_ms"`
}

// Provider is a single LLM API backend.
type Provider interface {
	// Name returns the provider identifier (e.g. "openai", "anthropic").
	Name() string
	// Complete sends a chat completion request and returns the response.
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Tracer receives one record per provider attempt, success or failure.
type Tracer interface {
	Record(ctx context.Context, provider, model string, d time.Duration, tokensIn, tokensOut int, err error)
}

// Client sends LLM requests with fallback across multiple providers.
type Client struct {
	providers map[string]Provider // keyed by provider name
	fallback  []string            // provider names in priority order
	tracer    Tracer              // optional
}

// NewClient creates a multi-provider LLM client. Providers are tried in the
// order given when a request does not target a specific provider.
func NewClient(providers []Provider) *Client {
	m := make(map[string]Provider, len(providers))
	order := make([]string, 0, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
		order = append(order, p.Name())
	}
	return &Client{providers: m, fallback: order}
}

// SetTracer installs a call tracer. Must be called before the client is
// shared across goroutines.
func (c *Client) SetTracer(t Tracer) { c.tracer = t }

// attempt runs one provider call, reporting it to the tracer if one is set.
func (c *Client) attempt(ctx context.Context, p Provider, req Request) (*Response, error) {
	start := time.Now()
	resp, err := p.Complete(ctx, req)
	if c.tracer != nil {
		if err != nil {
			c.tracer.Record(ctx, p.Name(), req.Model, time.Since(start), 0, 0, err)
		} else {
			c.tracer.Record(ctx, p.Name(), resp.Model, time.Since(start), resp.TokensIn, resp.TokensOut, nil)
		}
	}
	return resp, err
}

// Complete sends a request through the fallback chain, returning the first
// successful response or the last provider error.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	if len(c.fallback) == 0 {
		return nil, ErrNoProviders
	}
	var lastErr error
	for _, name := range c.fallback {
		p := c.providers[name]
		resp, err := c.attempt(ctx, p, req)
		if err != nil {
			lastErr = err
			continue
		}
		return resp, nil
	}
	return nil, lastErr
}

// CompleteWith sends a request to a specific named provider.
func (c *Client) CompleteWith(ctx context.Context, providerName string, req Request) (*Response, error) {
	p, ok := c.providers[providerName]
	if !ok {
		return nil, &ProviderError{Provider: providerName, Err: ErrProviderNotFound}
	}
	return c.attempt(ctx, p, req)
}

// Providers returns the names of all configured providers in fallback order.
func (c *Client) Providers() []string {
	return c.fallback
}
