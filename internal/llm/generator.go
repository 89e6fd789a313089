package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const interviewerSystem = "You are a professional biographer and interviewer, skilled at drawing " +
	"out deep life stories through precise, caring questions. Reply with the question text only."

// QuestionGenerator produces follow-up question text from an engine-built
// prompt. Errors are recoverable; the caller falls back to its static pool.
type QuestionGenerator struct {
	client  *Client
	model   string
	timeout time.Duration
}

func NewQuestionGenerator(client *Client, model string, timeout time.Duration) *QuestionGenerator {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &QuestionGenerator{client: client, model: model, timeout: timeout}
}

// Generate sends the prompt and returns the trimmed completion.
func (g *QuestionGenerator) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Complete(ctx, Request{
		Model: g.model,
		Messages: []Message{
			{Role: "system", Content: interviewerSystem},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("generating question: %w", err)
	}
	return strings.TrimSpace(resp.Content), nil
}
