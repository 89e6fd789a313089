package db

import (
	"fmt"
	"time"
)

type Biography struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Style     string    `json:"style"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateBiography stores a new biography version for the user.
func (db *DB) CreateBiography(userID, content, style, language string) (*Biography, error) {
	id := NewID()
	_, err := db.Exec(`
		INSERT INTO biographies (id, user_id, content, style, language)
		VALUES (?, ?, ?, ?, ?)`, id, userID, content, style, language)
	if err != nil {
		return nil, fmt.Errorf("inserting biography: %w", err)
	}
	return db.GetBiography(id, userID)
}

// GetBiography returns the biography only if it belongs to userID.
func (db *DB) GetBiography(id, userID string) (*Biography, error) {
	b := &Biography{}
	err := db.QueryRow(`
		SELECT id, user_id, content, style, language, created_at
		FROM biographies WHERE id = ? AND user_id = ?`, id, userID).Scan(
		&b.ID, &b.UserID, &b.Content, &b.Style, &b.Language, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// LatestBiography returns the most recent biography version for the user.
// Tie-break on rowid: created_at has second granularity, and two versions
// saved within the same second must still resolve to the later insert.
func (db *DB) LatestBiography(userID string) (*Biography, error) {
	b := &Biography{}
	err := db.QueryRow(`
		SELECT id, user_id, content, style, language, created_at
		FROM biographies WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC LIMIT 1`, userID).Scan(
		&b.ID, &b.UserID, &b.Content, &b.Style, &b.Language, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBiographies returns all biography versions, newest first.
func (db *DB) ListBiographies(userID string) ([]Biography, error) {
	rows, err := db.Query(`
		SELECT id, user_id, content, style, language, created_at
		FROM biographies WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []Biography
	for rows.Next() {
		var b Biography
		if err := rows.Scan(&b.ID, &b.UserID, &b.Content, &b.Style, &b.Language, &b.CreatedAt); err != nil {
			return nil, err
		}
		versions = append(versions, b)
	}
	return versions, rows.Err()
}

// UpdateBiography replaces the content of a biography the user owns.
// Returns false if no matching row exists.
func (db *DB) UpdateBiography(id, userID, content string) (bool, error) {
	res, err := db.Exec(`
		UPDATE biographies SET content = ? WHERE id = ? AND user_id = ?`,
		content, id, userID)
	if err != nil {
		return false, fmt.Errorf("updating biography: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
