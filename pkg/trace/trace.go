// Package trace persists LLM provider call traces to an llm_traces table.
//
// Provider latency dominates interview request time, so every attempt in
// the fallback chain is recorded with duration, token usage, request_id
// correlation and error tracking. Persistence is asynchronous; a full
// buffer drops entries rather than backpressuring the calling request.
//
// Usage:
//
//	store := trace.NewStore(db)
//	store.Init()
//	defer store.Close()
//	client.SetTracer(store)
package trace

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/lifeweave/pkg/kit"
)

// Entry is a single provider call record.
type Entry struct {
	RequestID  string
	Provider   string
	Model      string
	DurationUs int64
	TokensIn   int
	TokensOut  int
	Error      string
	Timestamp  int64 // unix microseconds
}

// Store persists provider call entries asynchronously.
type Store struct {
	db   *sql.DB
	ch   chan *Entry
	done chan struct{}
	once sync.Once
}

const Schema = `
CREATE TABLE IF NOT EXISTS llm_traces (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id TEXT,
	provider TEXT NOT NULL,
	model TEXT,
	duration_us INTEGER NOT NULL,
	tokens_in INTEGER NOT NULL DEFAULT 0,
	tokens_out INTEGER NOT NULL DEFAULT 0,
	error TEXT,
	timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_llm_traces_ts ON llm_traces(timestamp);
CREATE INDEX IF NOT EXISTS idx_llm_traces_rid ON llm_traces(request_id) WHERE request_id != '';
CREATE INDEX IF NOT EXISTS idx_llm_traces_slow ON llm_traces(duration_us) WHERE duration_us > 5000000;
`

// slowCall is the latency above which a provider call logs at Warn.
const slowCall = 5 * time.Second

func NewStore(db *sql.DB) *Store {
	s := &Store{
		db:   db,
		ch:   make(chan *Entry, 1024),
		done: make(chan struct{}),
	}
	go s.flushLoop()
	return s
}

func (s *Store) Init() error {
	_, err := s.db.Exec(Schema)
	return err
}

// Record logs one provider attempt with timing, token usage and optional error.
func (s *Store) Record(ctx context.Context, provider, model string, d time.Duration, tokensIn, tokensOut int, err error) {
	requestID := kit.GetRequestID(ctx)

	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	} else if d > slowCall {
		level = slog.LevelWarn
	}

	attrs := []slog.Attr{
		slog.String("component", "llm"),
		slog.String("provider", provider),
		slog.String("model", model),
		slog.Duration("duration", d),
	}
	if requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	slog.LogAttrs(ctx, level, "LLM", attrs...)

	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	s.recordAsync(&Entry{
		RequestID:  requestID,
		Provider:   provider,
		Model:      model,
		DurationUs: d.Microseconds(),
		TokensIn:   tokensIn,
		TokensOut:  tokensOut,
		Error:      errMsg,
		Timestamp:  time.Now().UnixMicro(),
	})
}

func (s *Store) recordAsync(e *Entry) {
	select {
	case s.ch <- e:
	default:
		// buffer full — drop to avoid backpressure
	}
}

func (s *Store) Close() error {
	s.once.Do(func() {
		close(s.ch)
		<-s.done
	})
	return nil
}

// Recent returns the newest entries, optionally filtered by provider.
func (s *Store) Recent(provider string, limit int) ([]Entry, error) {
	query := `
		SELECT request_id, provider, model, duration_us, tokens_in, tokens_out, error, timestamp
		FROM llm_traces`
	args := []any{}
	if provider != "" {
		query += ` WHERE provider = ?`
		args = append(args, provider)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.RequestID, &e.Provider, &e.Model, &e.DurationUs,
			&e.TokensIn, &e.TokensOut, &e.Error, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) flushLoop() {
	defer close(s.done)
	batch := make([]*Entry, 0, 64)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-s.ch:
			if !ok {
				s.flushBatch(batch)
				return
			}
			batch = append(batch, e)
			if len(batch) >= 64 {
				s.flushBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.flushBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func (s *Store) flushBatch(batch []*Entry) {
	if len(batch) == 0 {
		return
	}
	tx, err := s.db.Begin()
	if err != nil {
		slog.Error("trace store: begin tx", "error", err)
		return
	}
	stmt, err := tx.Prepare(`
		INSERT INTO llm_traces (request_id, provider, model, duration_us, tokens_in, tokens_out, error, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		slog.Error("trace store: prepare", "error", err)
		return
	}
	defer stmt.Close()

	for _, e := range batch {
		if _, err := stmt.Exec(e.RequestID, e.Provider, e.Model, e.DurationUs,
			e.TokensIn, e.TokensOut, e.Error, e.Timestamp); err != nil {
			slog.Error("trace store: insert", "error", err)
		}
	}
	if err := tx.Commit(); err != nil {
		slog.Error("trace store: commit", "error", err)
	}
}
