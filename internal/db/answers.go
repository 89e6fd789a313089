// CLAUDE:SUMMARY Answer log access — append-only inserts, score backfill, same-theme history, and sufficiency aggregates
package db

import (
	"database/sql"
	"fmt"
	"time"
)

type Answer struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	QuestionID string    `json:"question_id"`
	Body       string    `json:"body"`
	Detail     float64   `json:"detail_score"`
	Emotion    float64   `json:"emotion_score"`
	Reflection float64   `json:"reflection_score"`
	Redundancy float64   `json:"redundancy"`
	Length     int       `json:"length"`
	CreatedAt  time.Time `json:"created_at"`
}

// AQI is the Answer Quality Index: the mean of the three semantic scores.
// Always derived, never stored.
func (a *Answer) AQI() float64 {
	return (a.Detail + a.Emotion + a.Reflection) / 3
}

// InsertAnswer appends an answer with its text only; scores are backfilled
// by UpdateAnswerScores within the same transaction.
func InsertAnswer(q Querier, userID, questionID, body string) (*Answer, error) {
	id := NewID()
	_, err := q.Exec(`
		INSERT INTO answers (id, user_id, question_id, body)
		VALUES (?, ?, ?, ?)`, id, userID, questionID, body)
	if err != nil {
		return nil, fmt.Errorf("inserting answer: %w", err)
	}
	return &Answer{ID: id, UserID: userID, QuestionID: questionID, Body: body}, nil
}

// UpdateAnswerScores backfills the evaluator output on an answer row.
func UpdateAnswerScores(q Querier, id string, detail, emotion, reflection, redundancy float64, length int) error {
	res, err := q.Exec(`
		UPDATE answers
		SET detail_score = ?, emotion_score = ?, reflection_score = ?, redundancy = ?, length = ?
		WHERE id = ?`, detail, emotion, reflection, redundancy, length, id)
	if err != nil {
		return fmt.Errorf("updating answer scores: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// HasAnswer reports whether at least one answer exists for a question.
func HasAnswer(q Querier, questionID string) (bool, error) {
	var n int
	err := q.QueryRow(`
		SELECT COUNT(*) FROM answers WHERE question_id = ?`, questionID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AnswerStats returns the user's answer count and summed answer length,
// the inputs to the sufficiency gate.
func AnswerStats(q Querier, userID string) (count, totalLength int, err error) {
	err = q.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(length(body)), 0)
		FROM answers WHERE user_id = ?`, userID).Scan(&count, &totalLength)
	return count, totalLength, err
}

// AnswerHistory returns the bodies of a user's answers within one theme,
// ordered by the owning question's order. The most recent answer is last.
func AnswerHistory(q Querier, userID, theme string) ([]string, error) {
	rows, err := q.Query(`
		SELECT a.body
		FROM answers a
		JOIN questions qs ON qs.id = a.question_id
		WHERE a.user_id = ? AND qs.theme = ?
		ORDER BY qs.question_order, a.created_at`, userID, theme)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bodies []string
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		bodies = append(bodies, b)
	}
	return bodies, rows.Err()
}

// TranscriptEntry pairs a question with its latest answer, if any.
type TranscriptEntry struct {
	Question Question `json:"question"`
	Answer   *Answer  `json:"answer,omitempty"`
}

// Transcript returns the user's full interview in ask order, each question
// joined with its most recent answer.
func Transcript(q Querier, userID string) ([]TranscriptEntry, error) {
	rows, err := q.Query(`
		SELECT qs.id, qs.user_id, qs.content, qs.question_order, qs.theme, qs.story_ordinal,
		       qs.strategy, qs.created_at,
		       a.id, a.body, a.detail_score, a.emotion_score, a.reflection_score,
		       a.redundancy, a.length, a.created_at
		FROM questions qs
		LEFT JOIN answers a ON a.id = (
			-- rowid reflects insertion order; created_at alone has
			-- second granularity and can tie.
			SELECT id FROM answers
			WHERE question_id = qs.id
			ORDER BY rowid DESC LIMIT 1
		)
		WHERE qs.user_id = ?
		ORDER BY qs.question_order`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []TranscriptEntry
	for rows.Next() {
		var e TranscriptEntry
		var strategy sql.NullString
		var ansID, ansBody sql.NullString
		var detail, emotion, reflection, redundancy sql.NullFloat64
		var length sql.NullInt64
		var ansCreated sql.NullTime
		if err := rows.Scan(&e.Question.ID, &e.Question.UserID, &e.Question.Content,
			&e.Question.Order, &e.Question.Theme, &e.Question.Story, &strategy,
			&e.Question.CreatedAt,
			&ansID, &ansBody, &detail, &emotion, &reflection, &redundancy, &length, &ansCreated); err != nil {
			return nil, err
		}
		if strategy.Valid {
			e.Question.Strategy = &strategy.String
		}
		if ansID.Valid {
			e.Answer = &Answer{
				ID:         ansID.String,
				UserID:     userID,
				QuestionID: e.Question.ID,
				Body:       ansBody.String,
				Detail:     detail.Float64,
				Emotion:    emotion.Float64,
				Reflection: reflection.Float64,
				Redundancy: redundancy.Float64,
				Length:     int(length.Int64),
			}
			if ansCreated.Valid {
				e.Answer.CreatedAt = ansCreated.Time
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
