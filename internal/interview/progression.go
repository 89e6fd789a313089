// CLAUDE:SUMMARY Interview progression state machine: get-or-create the current question, advance on answer, recomputed state, per-user serialization.
package interview

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/hazyhaar/lifeweave/internal/db"
)

// State is the recomputed position of a user's interview. It is never
// stored: every transition derives it again from the question log.
type State int

const (
	// NoQuestion means the user has no questions yet.
	NoQuestion State = iota
	// InStory means the current story still has follow-up budget.
	InStory
	// StoryBoundary means the story budget is spent but the theme has room.
	StoryBoundary
	// ThemeBoundary means the theme budget is spent but themes remain.
	ThemeBoundary
	// Completed means the final theme's budget is spent. Terminal.
	Completed
)

func (s State) String() string {
	switch s {
	case NoQuestion:
		return "no_question"
	case InStory:
		return "in_story"
	case StoryBoundary:
		return "story_boundary"
	case ThemeBoundary:
		return "theme_boundary"
	case Completed:
		return "completed"
	}
	return "unknown"
}

// EngineConfig wires an Engine. Gate short-circuits the interview once
// enough material exists; SynthesisGate decides biography readiness and
// may be tuned independently.
type EngineConfig struct {
	Store         *db.DB
	Evaluator     *Evaluator
	Selector      *Selector
	Gate          Gate
	SynthesisGate Gate
	MaxPerTheme   int
	MaxPerStory   int
	Logger        *slog.Logger
}

// Engine drives one user's interview forward. All writes for a transition
// happen in a single transaction, and transitions for the same user are
// serialized through a per-user mutex. A second defense, the unique
// (user, question_order) constraint, catches races across processes; a
// conflicting transition is recomputed and retried once.
type Engine struct {
	store         *db.DB
	eval          *Evaluator
	selector      *Selector
	gate          Gate
	synthesisGate Gate
	maxPerTheme   int
	maxPerStory   int
	logger        *slog.Logger

	mu     sync.Mutex
	userMu map[string]*sync.Mutex
}

func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{
		store:         cfg.Store,
		eval:          cfg.Evaluator,
		selector:      cfg.Selector,
		gate:          cfg.Gate,
		synthesisGate: cfg.SynthesisGate,
		maxPerTheme:   cfg.MaxPerTheme,
		maxPerStory:   cfg.MaxPerStory,
		logger:        cfg.Logger,
	}
}

func (e *Engine) userLock(userID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.userMu == nil {
		e.userMu = make(map[string]*sync.Mutex)
	}
	m, ok := e.userMu[userID]
	if !ok {
		m = &sync.Mutex{}
		e.userMu[userID] = m
	}
	return m
}

type progress struct {
	state      State
	last       *db.Question
	themeCount int
	storyCount int
}

// computeProgress derives the current state from the question log, plus
// one answer lookup to tell a finished interview from a final question
// that is still waiting on its answer.
func (e *Engine) computeProgress(q db.Querier, userID string) (*progress, error) {
	last, err := db.LatestQuestion(q, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return &progress{state: NoQuestion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading latest question: %w", err)
	}
	p := &progress{last: last}
	p.themeCount, err = db.ThemeCount(q, userID, last.Theme)
	if err != nil {
		return nil, fmt.Errorf("counting theme questions: %w", err)
	}
	p.storyCount, err = db.StoryCount(q, userID, last.Theme, last.Story)
	if err != nil {
		return nil, fmt.Errorf("counting story questions: %w", err)
	}
	switch {
	case p.storyCount < e.maxPerStory:
		p.state = InStory
	case p.themeCount < e.maxPerTheme:
		p.state = StoryBoundary
	case ThemeIndex(last.Theme)+1 < len(Themes):
		p.state = ThemeBoundary
	default:
		// All budgets exhausted. The interview is only over once the
		// last question has an answer; until then it must keep being
		// served.
		answered, err := db.HasAnswer(q, last.ID)
		if err != nil {
			return nil, fmt.Errorf("checking latest answer: %w", err)
		}
		if answered {
			p.state = Completed
		} else {
			p.state = InStory
		}
	}
	return p, nil
}

// FirstQuestion returns the user's current open question, creating the
// interview opener on first call. Repeated calls without an intervening
// answer return the same question; a completed interview returns
// completed=true and no question.
func (e *Engine) FirstQuestion(ctx context.Context, userID string) (question *db.Question, completed bool, err error) {
	if userID == "" {
		return nil, false, validationf("user id required")
	}
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	err = e.store.WithTx(func(tx *sql.Tx) error {
		p, err := e.computeProgress(tx, userID)
		if err != nil {
			return err
		}
		switch p.state {
		case NoQuestion:
			question, err = db.InsertQuestion(tx, db.CreateQuestionInput{
				UserID:  userID,
				Content: openerQuestion(Themes[0]),
				Order:   1,
				Theme:   Themes[0],
				Story:   1,
			})
			return err
		case Completed:
			completed = true
			return nil
		default:
			question = p.last
			return nil
		}
	})
	if err != nil {
		return nil, false, err
	}
	return question, completed, nil
}

// AdvanceResult is the outcome of one answered question. Question is nil
// when the interview is completed or the sufficiency gate closed it.
type AdvanceResult struct {
	Question   *db.Question
	Completed  bool
	Sufficient bool
	Metrics    Metrics
}

// Advance records an answer to questionID, scores it and asks the next
// question by walking the priority ladder: deepen the current story, open
// a new story in the theme, open the next theme, or complete.
func (e *Engine) Advance(ctx context.Context, userID, questionID, text string) (*AdvanceResult, error) {
	if userID == "" {
		return nil, validationf("user id required")
	}
	if questionID == "" {
		return nil, validationf("question id required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, validationf("answer text required")
	}
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	res, err := e.advanceOnce(ctx, userID, questionID, text)
	if err != nil && isConflict(err) {
		e.logger.Warn("transition conflict, retrying", "user_id", userID)
		res, err = e.advanceOnce(ctx, userID, questionID, text)
		if err != nil && isConflict(err) {
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		}
	}
	return res, err
}

func (e *Engine) advanceOnce(ctx context.Context, userID, questionID, text string) (*AdvanceResult, error) {
	var res AdvanceResult
	err := e.store.WithTx(func(tx *sql.Tx) error {
		q, err := db.GetQuestion(tx, questionID, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return notFoundf("question %s", questionID)
		}
		if err != nil {
			return fmt.Errorf("reading question: %w", err)
		}

		// Prior same-theme answers, before this one lands.
		history, err := db.AnswerHistory(tx, userID, q.Theme)
		if err != nil {
			return fmt.Errorf("reading answer history: %w", err)
		}

		ans, err := db.InsertAnswer(tx, userID, q.ID, text)
		if err != nil {
			return fmt.Errorf("recording answer: %w", err)
		}
		res.Metrics = e.eval.Evaluate(ctx, text, history)
		err = db.UpdateAnswerScores(tx, ans.ID, res.Metrics.Detail, res.Metrics.Emotion,
			res.Metrics.Reflection, res.Metrics.Redundancy, res.Metrics.Length)
		if err != nil {
			return fmt.Errorf("recording scores: %w", err)
		}

		count, totalChars, err := db.AnswerStats(tx, userID)
		if err != nil {
			return fmt.Errorf("reading answer stats: %w", err)
		}
		if e.gate.Sufficient(count, totalChars) {
			res.Sufficient = true
			return nil
		}

		themeCount, err := db.ThemeCount(tx, userID, q.Theme)
		if err != nil {
			return fmt.Errorf("counting theme questions: %w", err)
		}
		storyCount, err := db.StoryCount(tx, userID, q.Theme, q.Story)
		if err != nil {
			return fmt.Errorf("counting story questions: %w", err)
		}
		order, err := db.NextOrder(tx, userID)
		if err != nil {
			return fmt.Errorf("reading next order: %w", err)
		}

		next := db.CreateQuestionInput{UserID: userID, Order: order}
		switch {
		case storyCount < e.maxPerStory:
			content, strat := e.selector.FollowUp(ctx, text, q.Theme, storyCount, history)
			next.Content = content
			next.Strategy = strat.String()
			next.Theme = q.Theme
			next.Story = q.Story
		case themeCount < e.maxPerTheme:
			next.Content = transitionQuestion(q.Theme)
			next.Theme = q.Theme
			next.Story = q.Story + 1
		case ThemeIndex(q.Theme)+1 < len(Themes):
			theme := Themes[ThemeIndex(q.Theme)+1]
			next.Content = openerQuestion(theme)
			next.Theme = theme
			next.Story = 1
		default:
			res.Completed = true
			return nil
		}
		res.Question, err = db.InsertQuestion(tx, next)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Progress is the reportable view of a user's interview.
type Progress struct {
	State          string  `json:"state"`
	Theme          string  `json:"theme,omitempty"`
	ThemePosition  int     `json:"theme_position,omitempty"`
	ThemeTotal     int     `json:"theme_total"`
	Story          int     `json:"story,omitempty"`
	QuestionCount  int     `json:"question_count"`
	AnswerCount    int     `json:"answer_count"`
	TotalChars     int     `json:"total_chars"`
	Percent        float64 `json:"percent"`
	AverageAQI     float64 `json:"average_aqi"`
	Sufficient     bool    `json:"sufficient"`
	SynthesisReady bool    `json:"synthesis_ready"`
}

// Progress summarizes where the user's interview stands, including both
// gate verdicts and the mean AQI over scored answers.
func (e *Engine) Progress(ctx context.Context, userID string) (*Progress, error) {
	if userID == "" {
		return nil, validationf("user id required")
	}
	p, err := e.computeProgress(e.store, userID)
	if err != nil {
		return nil, err
	}
	out := &Progress{State: p.state.String(), ThemeTotal: len(Themes)}
	if p.last != nil {
		out.Theme = p.last.Theme
		out.ThemePosition = ThemeIndex(p.last.Theme) + 1
		out.Story = p.last.Story
		out.QuestionCount = p.last.Order
	}
	if budget := len(Themes) * e.maxPerTheme; budget > 0 {
		out.Percent = math.Min(100, 100*float64(out.QuestionCount)/float64(budget))
	}
	if p.state == Completed {
		out.Percent = 100
	}
	count, totalChars, err := db.AnswerStats(e.store, userID)
	if err != nil {
		return nil, fmt.Errorf("reading answer stats: %w", err)
	}
	out.AnswerCount = count
	out.TotalChars = totalChars
	out.Sufficient = e.gate.Sufficient(count, totalChars)
	out.SynthesisReady = e.synthesisGate.Sufficient(count, totalChars)

	entries, err := db.Transcript(e.store, userID)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	var sum float64
	var scored int
	for _, entry := range entries {
		if entry.Answer != nil {
			sum += entry.Answer.AQI()
			scored++
		}
	}
	if scored > 0 {
		out.AverageAQI = sum / float64(scored)
	}
	return out, nil
}

// ReadyForSynthesis reports whether enough material exists for a biography.
func (e *Engine) ReadyForSynthesis(ctx context.Context, userID string) (bool, error) {
	count, totalChars, err := db.AnswerStats(e.store, userID)
	if err != nil {
		return false, fmt.Errorf("reading answer stats: %w", err)
	}
	return e.synthesisGate.Sufficient(count, totalChars), nil
}

// Reset wipes the user's interview log so the arc restarts from the opener.
func (e *Engine) Reset(ctx context.Context, userID string) error {
	if userID == "" {
		return validationf("user id required")
	}
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	return e.store.ResetInterview(userID)
}

// isConflict recognizes a lost transition race: either the unique order
// constraint fired or sqlite reported the database busy.
func isConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE") ||
		strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked")
}
