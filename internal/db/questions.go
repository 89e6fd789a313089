// CLAUDE:SUMMARY Question log access — inserts, latest-question lookup, and the aggregate counts interview progression is recomputed from
package db

import (
	"database/sql"
	"fmt"
	"time"
)

type Question struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Order     int       `json:"question_order"`
	Theme     string    `json:"theme"`
	Story     int       `json:"story_ordinal"`
	Strategy  *string   `json:"strategy,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateQuestionInput struct {
	UserID   string
	Content  string
	Order    int
	Theme    string
	Story    int
	Strategy string
}

// InsertQuestion inserts a question. The UNIQUE(user_id, question_order)
// constraint rejects concurrent inserts racing for the same slot.
func InsertQuestion(q Querier, input CreateQuestionInput) (*Question, error) {
	id := NewID()
	var strategyPtr *string
	if input.Strategy != "" {
		strategyPtr = &input.Strategy
	}
	_, err := q.Exec(`
		INSERT INTO questions (id, user_id, content, question_order, theme, story_ordinal, strategy)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, input.UserID, input.Content, input.Order, input.Theme, input.Story, strategyPtr)
	if err != nil {
		return nil, fmt.Errorf("inserting question: %w", err)
	}
	return &Question{
		ID:       id,
		UserID:   input.UserID,
		Content:  input.Content,
		Order:    input.Order,
		Theme:    input.Theme,
		Story:    input.Story,
		Strategy: strategyPtr,
	}, nil
}

// GetQuestion returns the question only if it belongs to userID.
func GetQuestion(q Querier, id, userID string) (*Question, error) {
	return scanQuestion(q.QueryRow(`
		SELECT id, user_id, content, question_order, theme, story_ordinal, strategy, created_at
		FROM questions WHERE id = ? AND user_id = ?`, id, userID))
}

// LatestQuestion returns the most recently created question for the user,
// or sql.ErrNoRows if the user has none.
func LatestQuestion(q Querier, userID string) (*Question, error) {
	return scanQuestion(q.QueryRow(`
		SELECT id, user_id, content, question_order, theme, story_ordinal, strategy, created_at
		FROM questions WHERE user_id = ?
		ORDER BY question_order DESC LIMIT 1`, userID))
}

// NextOrder returns MAX(question_order)+1 for the user (1 for a new user).
func NextOrder(q Querier, userID string) (int, error) {
	var max sql.NullInt64
	err := q.QueryRow(`SELECT MAX(question_order) FROM questions WHERE user_id = ?`, userID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("reading max order: %w", err)
	}
	return int(max.Int64) + 1, nil
}

// ThemeCount returns the number of questions the user has in a theme.
func ThemeCount(q Querier, userID, theme string) (int, error) {
	var n int
	err := q.QueryRow(`SELECT COUNT(*) FROM questions WHERE user_id = ? AND theme = ?`,
		userID, theme).Scan(&n)
	return n, err
}

// StoryCount returns the number of questions in one (theme, story) of a user.
func StoryCount(q Querier, userID, theme string, story int) (int, error) {
	var n int
	err := q.QueryRow(`
		SELECT COUNT(*) FROM questions
		WHERE user_id = ? AND theme = ? AND story_ordinal = ?`,
		userID, theme, story).Scan(&n)
	return n, err
}

// ListQuestions returns all of a user's questions in ask order.
func ListQuestions(q Querier, userID string) ([]Question, error) {
	rows, err := q.Query(`
		SELECT id, user_id, content, question_order, theme, story_ordinal, strategy, created_at
		FROM questions WHERE user_id = ?
		ORDER BY question_order`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []Question
	for rows.Next() {
		var qu Question
		var strategy sql.NullString
		if err := rows.Scan(&qu.ID, &qu.UserID, &qu.Content, &qu.Order, &qu.Theme,
			&qu.Story, &strategy, &qu.CreatedAt); err != nil {
			return nil, err
		}
		if strategy.Valid {
			qu.Strategy = &strategy.String
		}
		questions = append(questions, qu)
	}
	return questions, rows.Err()
}

// ResetInterview deletes all of a user's answers and questions together.
// This is the only delete path for the interview log.
func (db *DB) ResetInterview(userID string) error {
	return db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM answers WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("deleting answers: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM questions WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("deleting questions: %w", err)
		}
		return nil
	})
}

func scanQuestion(row *sql.Row) (*Question, error) {
	var qu Question
	var strategy sql.NullString
	err := row.Scan(&qu.ID, &qu.UserID, &qu.Content, &qu.Order, &qu.Theme,
		&qu.Story, &strategy, &qu.CreatedAt)
	if err != nil {
		return nil, err
	}
	if strategy.Valid {
		qu.Strategy = &strategy.String
	}
	return &qu, nil
}
