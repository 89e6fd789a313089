// CLAUDE:SUMMARY Semantic answer scorer — text in, strict JSON {detail,emotion,reflection} out, with fence stripping and range clamping
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SemanticScorer rates an answer's detail, emotion and reflection in [0,1]
// using an LLM. Failures are returned to the caller, which applies its own
// fallback policy; the scorer never substitutes scores itself.
type SemanticScorer struct {
	client  *Client
	model   string
	timeout time.Duration
}

func NewSemanticScorer(client *Client, model string, timeout time.Duration) *SemanticScorer {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &SemanticScorer{client: client, model: model, timeout: timeout}
}

const scoringSystem = "You are a writing teacher. Respond with strict JSON only, no prose."

const scoringPrompt = `Rate the following text from 0 to 1 on three axes:
detail (concreteness), emotion (emotional richness), reflection (introspection and values).
Text: '''%s'''
Reply with JSON only, e.g. {"detail":0.8,"emotion":0.6,"reflection":0.5}`

type semanticScores struct {
	Detail     float64 `json:"detail"`
	Emotion    float64 `json:"emotion"`
	Reflection float64 `json:"reflection"`
}

// Score rates one answer text. The three scores are clamped to [0,1].
func (s *SemanticScorer) Score(ctx context.Context, text string) (detail, emotion, reflection float64, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Complete(ctx, Request{
		Model: s.model,
		Messages: []Message{
			{Role: "system", Content: scoringSystem},
			{Role: "user", Content: fmt.Sprintf(scoringPrompt, text)},
		},
		MaxTokens: 64,
	})
	if err != nil {
		return 0, 0, 0, fmt.Errorf("scoring answer: %w", err)
	}

	var scores semanticScores
	if err := json.Unmarshal([]byte(extractJSON(resp.Content)), &scores); err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %v", ErrBadOutput, err)
	}
	return clamp01(scores.Detail), clamp01(scores.Emotion), clamp01(scores.Reflection), nil
}

// extractJSON strips markdown fences and surrounding prose, keeping the
// outermost JSON object.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return content
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
