// CLAUDE:SUMMARY Answer quality evaluator: memoized semantic scores, redundancy, length, AQI.
package interview

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Scorer rates an answer on three semantic dimensions, each in [0,1].
type Scorer interface {
	Score(ctx context.Context, text string) (detail, emotion, reflection float64, err error)
}

// Metrics is the full quality readout for one answer.
type Metrics struct {
	Detail     float64 `json:"detail"`
	Emotion    float64 `json:"emotion"`
	Reflection float64 `json:"reflection"`
	Redundancy float64 `json:"redundancy"`
	Length     int     `json:"length"`
}

// AQI is the answer quality index, the mean of the three semantic scores.
// Redundancy and length inform strategy choice but do not enter the index.
func (m Metrics) AQI() float64 {
	return (m.Detail + m.Emotion + m.Reflection) / 3.0
}

type semanticScores struct {
	detail, emotion, reflection float64
}

// neutral is what every dimension degrades to when the scorer is down, so
// an outage never stalls the interview.
var neutral = semanticScores{0.5, 0.5, 0.5}

// Evaluator computes Metrics for submitted answers. Semantic scoring goes
// through the Scorer behind an LRU memo keyed on answer text; redundancy
// and length are computed locally and never fail.
type Evaluator struct {
	scorer Scorer
	cache  *lru.Cache[string, semanticScores]
	logger *slog.Logger
}

func NewEvaluator(scorer Scorer, cacheSize int, logger *slog.Logger) (*Evaluator, error) {
	if cacheSize < 1 {
		cacheSize = 1
	}
	cache, err := lru.New[string, semanticScores](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("score cache: %w", err)
	}
	return &Evaluator{scorer: scorer, cache: cache, logger: logger}, nil
}

// Evaluate scores text against the prior same-theme answers in history,
// ordered oldest first. It always returns usable Metrics: scorer failures
// degrade the semantic dimensions to neutral.
func (e *Evaluator) Evaluate(ctx context.Context, text string, history []string) Metrics {
	s := e.semantic(ctx, text)
	m := Metrics{
		Detail:     s.detail,
		Emotion:    s.emotion,
		Reflection: s.reflection,
		Length:     utf8.RuneCountInString(text),
	}
	if len(history) > 0 {
		m.Redundancy = matchRatio(text, history[len(history)-1])
	}
	return m
}

func (e *Evaluator) semantic(ctx context.Context, text string) semanticScores {
	if s, ok := e.cache.Get(text); ok {
		return s
	}
	detail, emotion, reflection, err := e.scorer.Score(ctx, text)
	if err != nil {
		e.logger.Warn("semantic scoring degraded to neutral",
			"error", fmt.Errorf("%w: %v", ErrExternal, err))
		return neutral
	}
	s := semanticScores{detail, emotion, reflection}
	e.cache.Add(text, s)
	return s
}
