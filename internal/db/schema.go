package db

const schema = `
-- Signed-in user, at most one row
CREATE TABLE IF NOT EXISTS cached_user (
    slot INTEGER PRIMARY KEY CHECK (slot = 1),
    id TEXT NOT NULL,
    username TEXT NOT NULL,
    name TEXT DEFAULT '',
    email TEXT DEFAULT '',
    avatar_url TEXT DEFAULT '',
    cached_at TEXT NOT NULL
);

-- Recently opened sandboxes
CREATE TABLE IF NOT EXISTS recent_sandboxes (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    template TEXT DEFAULT '',
    author_id TEXT DEFAULT '',
    opened_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_recent_opened ON recent_sandboxes(opened_at);
`
