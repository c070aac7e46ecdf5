package store

// schema mirrors the server's credential tables. Timestamps are unix seconds.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id    INTEGER PRIMARY KEY,
	flags INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS sessions (
	id              TEXT PRIMARY KEY,
	user_id         INTEGER NOT NULL,
	access_token_id TEXT NOT NULL,
	expires_at      INTEGER NOT NULL,
	revoked_at      INTEGER
);

CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

CREATE TABLE IF NOT EXISTS bot_applications (
	id          INTEGER PRIMARY KEY,
	bot_user_id INTEGER NOT NULL,
	token_hash  TEXT NOT NULL UNIQUE
);
`

const queryAccessTokenActive = `
SELECT 1 FROM sessions
WHERE id = ? AND user_id = ? AND access_token_id = ?
  AND revoked_at IS NULL AND expires_at > ?
LIMIT 1`

const queryBotByTokenHash = `SELECT bot_user_id FROM bot_applications WHERE token_hash = ?`

const queryUserFlags = `SELECT flags FROM users WHERE id = ?`

const queryStats = `
SELECT
	(SELECT COUNT(*) FROM users),
	(SELECT COUNT(*) FROM sessions WHERE revoked_at IS NULL AND expires_at > ?),
	(SELECT COUNT(*) FROM bot_applications)`
