package db

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    handle        TEXT UNIQUE NOT NULL,
    email         TEXT UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    DATETIME DEFAULT (datetime('now')),
    last_seen_at  DATETIME
);

CREATE TABLE IF NOT EXISTS questions (
    id             TEXT PRIMARY KEY,
    user_id        TEXT NOT NULL REFERENCES users(id),
    content        TEXT NOT NULL,
    question_order INTEGER NOT NULL,
    theme          TEXT NOT NULL,
    story_ordinal  INTEGER NOT NULL,
    strategy       TEXT,
    created_at     DATETIME DEFAULT (datetime('now')),
    UNIQUE(user_id, question_order)
);

CREATE INDEX IF NOT EXISTS idx_questions_user ON questions(user_id);
CREATE INDEX IF NOT EXISTS idx_questions_theme ON questions(user_id, theme);
CREATE INDEX IF NOT EXISTS idx_questions_story ON questions(user_id, theme, story_ordinal);

CREATE TABLE IF NOT EXISTS answers (
    id               TEXT PRIMARY KEY,
    user_id          TEXT NOT NULL REFERENCES users(id),
    question_id      TEXT NOT NULL REFERENCES questions(id),
    body             TEXT NOT NULL,
    detail_score     REAL NOT NULL DEFAULT 0,
    emotion_score    REAL NOT NULL DEFAULT 0,
    reflection_score REAL NOT NULL DEFAULT 0,
    redundancy       REAL NOT NULL DEFAULT 0,
    length           INTEGER NOT NULL DEFAULT 0,
    created_at       DATETIME DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_answers_user ON answers(user_id);
CREATE INDEX IF NOT EXISTS idx_answers_question ON answers(question_id);

CREATE TABLE IF NOT EXISTS biographies (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL REFERENCES users(id),
    content    TEXT NOT NULL,
    style      TEXT NOT NULL DEFAULT 'natural',
    language   TEXT NOT NULL DEFAULT 'en',
    created_at DATETIME DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_biographies_user ON biographies(user_id);
`
