package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	mysticbot "github.com/tianji-io/mystic-agent-go"
)

// ──────────────────────────────────────────────
// SQLite persistence — users and conversation log
// ──────────────────────────────────────────────

// SQLiteStore implements mysticbot.UserStore and mysticbot.ConversationStore
// on a single SQLite file. The pure-Go driver keeps deployment to one binary.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY,
	username TEXT NOT NULL DEFAULT '',
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	language TEXT NOT NULL DEFAULT 'en',
	subscribed_to_tips INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS conversations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	input TEXT NOT NULL,
	output TEXT NOT NULL,
	topic TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id, created_at DESC);
`

// NewSQLiteStore opens (and migrates) the database at path.
//
// Usage:
//
//	db, err := store.NewSQLiteStore(cfg.DatabasePath)
//	defer db.Close()
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open %s: %w", path, err)
	}
	// The file-level write lock makes concurrent writers fail fast;
	// a single connection serializes access instead.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// ─── UserStore ───

// GetOrCreateUser registers the user on first contact and refreshes the
// profile fields afterwards.
func (s *SQLiteStore) GetOrCreateUser(id int64, username, firstName, lastName string) (*mysticbot.User, error) {
	_, err := s.db.Exec(`
		INSERT INTO users (id, username, first_name, last_name)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			first_name = excluded.first_name,
			last_name = excluded.last_name`,
		id, username, firstName, lastName)
	if err != nil {
		return nil, fmt.Errorf("sqlite upsert user %d: %w", id, err)
	}
	return s.GetUser(id)
}

// GetUser returns nil, nil for an unknown user.
func (s *SQLiteStore) GetUser(id int64) (*mysticbot.User, error) {
	row := s.db.QueryRow(`
		SELECT id, username, first_name, last_name, language, subscribed_to_tips, created_at
		FROM users WHERE id = ?`, id)

	var u mysticbot.User
	var subscribed int
	var createdAt string
	err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Language, &subscribed, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite get user %d: %w", id, err)
	}
	u.SubscribedToTips = subscribed != 0
	u.CreatedAt = parseSQLiteTime(createdAt)
	return &u, nil
}

func (s *SQLiteStore) UpdateUserLanguage(id int64, lang mysticbot.Language) error {
	res, err := s.db.Exec(`UPDATE users SET language = ? WHERE id = ?`, string(lang), id)
	if err != nil {
		return fmt.Errorf("sqlite update language %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("sqlite update language: user %d not found", id)
	}
	return nil
}

func (s *SQLiteStore) UpdateUserSubscription(id int64, subscribed bool) error {
	val := 0
	if subscribed {
		val = 1
	}
	res, err := s.db.Exec(`UPDATE users SET subscribed_to_tips = ? WHERE id = ?`, val, id)
	if err != nil {
		return fmt.Errorf("sqlite update subscription %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("sqlite update subscription: user %d not found", id)
	}
	return nil
}

// SubscribedUsers lists everyone receiving daily tips.
func (s *SQLiteStore) SubscribedUsers() ([]mysticbot.User, error) {
	rows, err := s.db.Query(`
		SELECT id, username, first_name, last_name, language, subscribed_to_tips, created_at
		FROM users WHERE subscribed_to_tips = 1`)
	if err != nil {
		return nil, fmt.Errorf("sqlite subscribed users: %w", err)
	}
	defer rows.Close()

	var users []mysticbot.User
	for rows.Next() {
		var u mysticbot.User
		var subscribed int
		var createdAt string
		if err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Language, &subscribed, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite scan user: %w", err)
		}
		u.SubscribedToTips = subscribed != 0
		u.CreatedAt = parseSQLiteTime(createdAt)
		users = append(users, u)
	}
	return users, rows.Err()
}

// ─── ConversationStore ───

func (s *SQLiteStore) LogConversation(userID int64, input, output string, topic mysticbot.Topic) error {
	_, err := s.db.Exec(`
		INSERT INTO conversations (user_id, input, output, topic) VALUES (?, ?, ?, ?)`,
		userID, input, output, string(topic))
	if err != nil {
		return fmt.Errorf("sqlite log conversation user=%d: %w", userID, err)
	}
	return nil
}

// UserConversations returns the most recent entries, newest first.
func (s *SQLiteStore) UserConversations(userID int64, limit int) ([]mysticbot.ConversationEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(`
		SELECT id, user_id, input, output, topic, created_at
		FROM conversations WHERE user_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite user conversations %d: %w", userID, err)
	}
	defer rows.Close()

	var entries []mysticbot.ConversationEntry
	for rows.Next() {
		var e mysticbot.ConversationEntry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Input, &e.Output, &e.Topic, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite scan conversation: %w", err)
		}
		e.CreatedAt = parseSQLiteTime(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// parseSQLiteTime accepts the formats SQLite emits for CURRENT_TIMESTAMP.
func parseSQLiteTime(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02T15:04:05Z"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
