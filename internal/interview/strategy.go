// CLAUDE:SUMMARY Follow-up strategy selection, prompt building, question validation and fallbacks.
package interview

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Generator produces one follow-up question from an instruction prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// Strategy names the angle a follow-up question takes on the answer.
type Strategy int

const (
	DetailExpansion Strategy = iota
	EmotionalDepth
	ContextConnection
	StoryCompletion
)

func (s Strategy) String() string {
	switch s {
	case DetailExpansion:
		return "detail_expansion"
	case EmotionalDepth:
		return "emotional_depth"
	case ContextConnection:
		return "context_connection"
	case StoryCompletion:
		return "story_completion"
	}
	return "unknown"
}

// ChooseStrategy picks the follow-up angle from surface features of the
// answer. Rules fire in order; the first match wins.
func ChooseStrategy(text string, questionsInStory int) Strategy {
	lower := strings.ToLower(text)
	switch {
	case utf8.RuneCountInString(text) < 50:
		return DetailExpansion
	case containsAny(lower, feelingWords):
		return EmotionalDepth
	case questionsInStory > 2:
		return ContextConnection
	default:
		return StoryCompletion
	}
}

var feelingWords = []string{"feel", "felt", "feeling", "think", "thought"}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// promptInput carries everything a strategy needs to phrase its instruction.
type promptInput struct {
	Answer  string
	Theme   string
	History []string
}

// BuildPrompt renders the generation instruction for this strategy. Each
// strategy owns its template and chooses which derived features it uses.
func (s Strategy) BuildPrompt(in promptInput) string {
	switch s {
	case DetailExpansion:
		return fmt.Sprintf(
			"The person answered briefly about their %s: %q. "+
				"Ask one warm follow-up question that invites them to expand on %q with concrete detail. "+
				"Return only the question.",
			in.Theme, in.Answer, extractKeyElement(in.Answer))
	case EmotionalDepth:
		return fmt.Sprintf(
			"The person shared a %s memory about their %s: %q. "+
				"Ask one gentle follow-up question that explores how the experience felt and why. "+
				"Return only the question.",
			analyzeTone(in.Answer), in.Theme, in.Answer)
	case ContextConnection:
		return fmt.Sprintf(
			"So far the person has shared about their %s: %s. Their latest answer: %q. "+
				"Ask one follow-up question that connects this answer to what came before. "+
				"Return only the question.",
			in.Theme, summarizeHistory(in.History), in.Answer)
	case StoryCompletion:
		return fmt.Sprintf(
			"The person is telling a story about their %s: %q. "+
				"Ask one follow-up question about what happened next or how the story ended. "+
				"Return only the question.",
			in.Theme, in.Answer)
	}
	return DetailExpansion.BuildPrompt(in)
}

var keyElementRe = regexp.MustCompile(`[A-Za-z][A-Za-z'-]{2,}`)

var stopwords = map[string]bool{
	"the": true, "and": true, "was": true, "were": true, "that": true,
	"this": true, "with": true, "when": true, "because": true, "very": true,
	"really": true, "then": true, "they": true, "them": true, "there": true,
}

// extractKeyElement pulls the first substantive word out of an answer, a
// crude anchor for the detail-expansion template.
func extractKeyElement(text string) string {
	for _, w := range keyElementRe.FindAllString(text, 8) {
		if !stopwords[strings.ToLower(w)] {
			return w
		}
	}
	return "that"
}

var positiveWords = []string{"happy", "joy", "love", "proud", "grateful", "fun", "wonderful", "excited"}
var negativeWords = []string{"sad", "afraid", "angry", "lonely", "hard", "lost", "regret", "hurt"}

func analyzeTone(text string) string {
	lower := strings.ToLower(text)
	pos, neg := 0, 0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			pos++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			neg++
		}
	}
	switch {
	case pos > neg:
		return "warm"
	case neg > pos:
		return "difficult"
	default:
		return "reflective"
	}
}

// summarizeHistory joins prior answers into a short context string, capped
// so the prompt stays small.
func summarizeHistory(history []string) string {
	const capRunes = 100
	joined := strings.Join(history, " | ")
	r := []rune(joined)
	if len(r) > capRunes {
		return string(r[:capRunes]) + "…"
	}
	if joined == "" {
		return "nothing yet"
	}
	return joined
}

var yesNoPrefixes = []string{
	"is ", "are ", "was ", "were ", "do ", "does ", "did ",
	"have ", "has ", "had ", "can ", "could ", "will ", "would ",
}

var narrativeWords = []string{"how", "what", "why", "when", "tell"}
var emotionalWords = []string{"feel", "felt", "think", "thought", "remember", "mean"}

// validateQuestion runs four quality checks on a generated question and
// accepts it when at least three pass: plausible length, not a yes/no
// opener, carries a narrative hook, carries an emotional or reflective hook.
func validateQuestion(q string) bool {
	lower := strings.ToLower(strings.TrimSpace(q))
	passed := 0
	if n := utf8.RuneCountInString(lower); n >= 15 && n <= 50 {
		passed++
	}
	yesNo := false
	for _, p := range yesNoPrefixes {
		if strings.HasPrefix(lower, p) {
			yesNo = true
			break
		}
	}
	if !yesNo {
		passed++
	}
	if containsAny(lower, narrativeWords) {
		passed++
	}
	if containsAny(lower, emotionalWords) {
		passed++
	}
	return passed >= 3
}

var fallbackQuestions = map[string][]string{
	"childhood": {
		"What did that moment feel like?",
		"How did that experience change you?",
		"Why does that memory stay with you?",
	},
	"education": {
		"What did school feel like back then?",
		"How did that lesson shape your path?",
		"Why did that teacher matter to you?",
	},
	"career": {
		"What felt most rewarding about that work?",
		"How did that turning point feel?",
		"What did that work teach you?",
	},
	"family": {
		"How did your family feel about that?",
		"What family moment do you think of most?",
		"Why is that person special to you?",
	},
	"dreams": {
		"What did you dream of becoming?",
		"How does that hope feel today?",
		"Why did that dream matter so much?",
	},
}

// fallbackQuestion picks a canned per-theme question, used whenever
// generation fails or fails validation.
func fallbackQuestion(theme string) string {
	pool, ok := fallbackQuestions[theme]
	if !ok || len(pool) == 0 {
		return "What happened next, and how did it feel?"
	}
	return pool[rand.IntN(len(pool))]
}

// Selector turns an answer into the next follow-up question. It never
// returns an error: generation or validation failures fall back to the
// theme's canned pool.
type Selector struct {
	gen    Generator
	logger *slog.Logger
}

func NewSelector(gen Generator, logger *slog.Logger) *Selector {
	return &Selector{gen: gen, logger: logger}
}

// FollowUp chooses a strategy for the answer, generates a question with it
// and validates the result. The returned strategy tag is recorded alongside
// the question even when the text comes from the fallback pool.
func (s *Selector) FollowUp(ctx context.Context, text, theme string, questionsInStory int, history []string) (string, Strategy) {
	strat := ChooseStrategy(text, questionsInStory)
	prompt := strat.BuildPrompt(promptInput{Answer: text, Theme: theme, History: history})
	q, err := s.gen.Generate(ctx, prompt, 150, 0.8)
	if err != nil {
		s.logger.Warn("follow-up generation degraded to fallback",
			"strategy", strat.String(),
			"error", fmt.Errorf("%w: %v", ErrExternal, err))
		return fallbackQuestion(theme), strat
	}
	if !validateQuestion(q) {
		s.logger.Warn("generated question rejected by validation",
			"strategy", strat.String(), "question", q)
		return fallbackQuestion(theme), strat
	}
	return strings.TrimSpace(q), strat
}
