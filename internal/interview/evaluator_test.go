package interview

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
)

type stubScorer struct {
	detail, emotion, reflection float64
	err                         error
	calls                       int
}

func (s *stubScorer) Score(_ context.Context, _ string) (float64, float64, float64, error) {
	s.calls++
	if s.err != nil {
		return 0, 0, 0, s.err
	}
	return s.detail, s.emotion, s.reflection, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEvaluator(t *testing.T, scorer Scorer) *Evaluator {
	t.Helper()
	e, err := NewEvaluator(scorer, 64, discard())
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	return e
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEvaluateAQI(t *testing.T) {
	e := newTestEvaluator(t, &stubScorer{detail: 0.9, emotion: 0.6, reflection: 0.3})
	m := e.Evaluate(context.Background(), "a summer by the lake", nil)
	if !almostEqual(m.AQI(), 0.6) {
		t.Errorf("AQI = %v, want 0.6", m.AQI())
	}
	if m.Length != 20 {
		t.Errorf("Length = %d, want 20", m.Length)
	}
	if m.Redundancy != 0 {
		t.Errorf("Redundancy = %v, want 0 with empty history", m.Redundancy)
	}
}

func TestEvaluateRedundancy(t *testing.T) {
	e := newTestEvaluator(t, &stubScorer{detail: 0.5, emotion: 0.5, reflection: 0.5})
	text := "we spent every summer at the lake with my cousins"
	m := e.Evaluate(context.Background(), text, []string{"something older", text})
	if !almostEqual(m.Redundancy, 1.0) {
		t.Errorf("Redundancy = %v, want 1.0 for an identical repeat", m.Redundancy)
	}

	m = e.Evaluate(context.Background(), "abc", []string{"xyz"})
	if m.Redundancy != 0 {
		t.Errorf("Redundancy = %v, want 0 for disjoint texts", m.Redundancy)
	}
}

func TestEvaluateScorerDown(t *testing.T) {
	e := newTestEvaluator(t, &stubScorer{err: errors.New("timeout")})
	m := e.Evaluate(context.Background(), "anything", nil)
	if m.Detail != 0.5 || m.Emotion != 0.5 || m.Reflection != 0.5 {
		t.Errorf("scores = %v/%v/%v, want neutral 0.5 each", m.Detail, m.Emotion, m.Reflection)
	}
}

func TestEvaluateMemoized(t *testing.T) {
	scorer := &stubScorer{detail: 0.7, emotion: 0.7, reflection: 0.7}
	e := newTestEvaluator(t, scorer)
	for range 3 {
		e.Evaluate(context.Background(), "same answer text", nil)
	}
	if scorer.calls != 1 {
		t.Errorf("scorer called %d times, want 1 (memoized)", scorer.calls)
	}
	e.Evaluate(context.Background(), "different answer text", nil)
	if scorer.calls != 2 {
		t.Errorf("scorer called %d times, want 2 after a new text", scorer.calls)
	}
}

func TestMatchRatio(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "hello world", "hello world", 1.0},
		{"disjoint", "aaa", "zzz", 0.0},
		{"both empty", "", "", 1.0},
		{"one empty", "abc", "", 0.0},
		{"half shared", "ab", "ax", 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := matchRatio(tc.a, tc.b); !almostEqual(got, tc.want) {
				t.Errorf("matchRatio(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestGate(t *testing.T) {
	g := Gate{MinAnswers: 10, MinTotalChars: 200}
	cases := []struct {
		name         string
		count, chars int
		want         bool
	}{
		{"both met", 10, 200, true},
		{"well past", 25, 4000, true},
		{"one answer short", 9, 5000, false},
		{"chars short", 10, 199, false},
		{"nothing", 0, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := g.Sufficient(tc.count, tc.chars); got != tc.want {
				t.Errorf("Sufficient(%d, %d) = %v, want %v", tc.count, tc.chars, got, tc.want)
			}
		})
	}
}
