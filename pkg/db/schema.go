package db

const schema = `
-- Interactions: one row per answered question, append-only.
-- ts is the creation instant in Unix nanoseconds.
CREATE TABLE IF NOT EXISTS interactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    ts INTEGER NOT NULL,
    question TEXT NOT NULL,
    answer TEXT NOT NULL,
    lang TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_interactions_ts ON interactions(ts DESC);
CREATE INDEX IF NOT EXISTS idx_interactions_lang ON interactions(lang);
`
