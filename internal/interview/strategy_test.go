package interview

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubGenerator struct {
	question string
	err      error
	prompts  []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string, _ int, _ float64) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.question, nil
}

func TestChooseStrategy(t *testing.T) {
	long := strings.Repeat("we walked along the shore and talked for hours. ", 3)
	cases := []struct {
		name    string
		text    string
		inStory int
		want    Strategy
	}{
		{"tiny answer", "ok", 1, DetailExpansion},
		{"short answer", "it was a good day overall", 3, DetailExpansion},
		{"feeling words", long + "I felt so proud of her.", 1, EmotionalDepth},
		{"deep in story", long, 3, ContextConnection},
		{"default", long, 1, StoryCompletion},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ChooseStrategy(tc.text, tc.inStory); got != tc.want {
				t.Errorf("ChooseStrategy = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	in := promptInput{
		Answer:  "grandmother taught me to bake bread every Sunday",
		Theme:   "childhood",
		History: []string{"we lived on a small farm"},
	}
	for _, s := range []Strategy{DetailExpansion, EmotionalDepth, ContextConnection, StoryCompletion} {
		t.Run(s.String(), func(t *testing.T) {
			p := s.BuildPrompt(in)
			if !strings.Contains(p, in.Theme) {
				t.Errorf("prompt missing theme: %q", p)
			}
			if !strings.Contains(p, in.Answer) {
				t.Errorf("prompt missing answer: %q", p)
			}
		})
	}

	p := ContextConnection.BuildPrompt(in)
	if !strings.Contains(p, "small farm") {
		t.Errorf("context prompt should carry history, got %q", p)
	}
}

func TestExtractKeyElement(t *testing.T) {
	cases := []struct {
		text, want string
	}{
		{"the grandmother baked bread", "grandmother"},
		{"it is so", "that"},
		{"", "that"},
	}
	for _, tc := range cases {
		if got := extractKeyElement(tc.text); got != tc.want {
			t.Errorf("extractKeyElement(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestAnalyzeTone(t *testing.T) {
	cases := []struct {
		text, want string
	}{
		{"I was so happy and proud that day", "warm"},
		{"it was hard and I was afraid", "difficult"},
		{"we moved to the city that year", "reflective"},
	}
	for _, tc := range cases {
		if got := analyzeTone(tc.text); got != tc.want {
			t.Errorf("analyzeTone(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestSummarizeHistory(t *testing.T) {
	if got := summarizeHistory(nil); got != "nothing yet" {
		t.Errorf("empty history = %q", got)
	}
	long := summarizeHistory([]string{strings.Repeat("a", 300)})
	if len([]rune(long)) != 101 {
		t.Errorf("capped summary length = %d runes, want 101", len([]rune(long)))
	}
}

func TestValidateQuestion(t *testing.T) {
	cases := []struct {
		name string
		q    string
		want bool
	}{
		{"good question", "What did that summer feel like for you?", true},
		{"yes-no but otherwise fine", "Did you feel happy about how that turned out?", true},
		{"too short and flat", "And then?", false},
		{"statement", "That is a very interesting story about your life.", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := validateQuestion(tc.q); got != tc.want {
				t.Errorf("validateQuestion(%q) = %v, want %v", tc.q, got, tc.want)
			}
		})
	}
}

func TestFallbackQuestionPerTheme(t *testing.T) {
	for _, theme := range Themes {
		q := fallbackQuestion(theme)
		found := false
		for _, candidate := range fallbackQuestions[theme] {
			if q == candidate {
				found = true
			}
		}
		if !found {
			t.Errorf("fallbackQuestion(%q) = %q, not in the theme pool", theme, q)
		}
	}
	if q := fallbackQuestion("nonsense"); q == "" {
		t.Error("unknown theme should still yield a question")
	}
}

func TestFollowUpGeneratorDown(t *testing.T) {
	sel := NewSelector(&stubGenerator{err: errors.New("boom")}, discard())
	q, strat := sel.FollowUp(context.Background(), "ok", "career", 1, nil)
	if q == "" {
		t.Fatal("expected a fallback question")
	}
	if strat != DetailExpansion {
		t.Errorf("strategy = %v, want DetailExpansion for a 2-char answer", strat)
	}
}

func TestFollowUpRejectsBadQuestion(t *testing.T) {
	sel := NewSelector(&stubGenerator{question: "No."}, discard())
	q, _ := sel.FollowUp(context.Background(), "ok", "family", 1, nil)
	for _, candidate := range fallbackQuestions["family"] {
		if q == candidate {
			return
		}
	}
	t.Errorf("question %q should come from the family fallback pool", q)
}

func TestFollowUpAcceptsGoodQuestion(t *testing.T) {
	want := "How did that first job change what you wanted?"
	sel := NewSelector(&stubGenerator{question: want}, discard())
	q, _ := sel.FollowUp(context.Background(), "ok", "career", 1, nil)
	if q != want {
		t.Errorf("question = %q, want the generated one", q)
	}
}
