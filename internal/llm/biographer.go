package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const biographerSystem = `You are a skilled biographer. You turn interview transcripts into
flowing first-person life stories. Preserve the speaker's facts and voice, keep
chronology coherent, and never invent events that are not in the transcript.`

// Biographer synthesizes a biography from an interview transcript.
type Biographer struct {
	client  *Client
	model   string
	timeout time.Duration
}

func NewBiographer(client *Client, model string, timeout time.Duration) *Biographer {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Biographer{client: client, model: model, timeout: timeout}
}

// Synthesize writes a biography from the transcript in the requested style
// ("natural", "chronological" or "thematic") and language code.
func (b *Biographer) Synthesize(ctx context.Context, transcript, style, language string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Write a %s first-person biography in language %q from this interview transcript:\n\n%s",
		styleInstruction(style), language, transcript)

	resp, err := b.client.Complete(ctx, Request{
		Model: b.model,
		Messages: []Message{
			{Role: "system", Content: biographerSystem},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   4000,
	})
	if err != nil {
		return "", err
	}
	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", fmt.Errorf("%w: empty biography", ErrBadOutput)
	}
	return content, nil
}

func styleInstruction(style string) string {
	switch style {
	case "chronological":
		return "strictly chronological"
	case "thematic":
		return "theme-by-theme"
	}
	return "naturally flowing"
}
