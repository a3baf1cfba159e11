package mysticbot

import "time"

// ──────────────────────────────────────────────
// Persistence boundary
// ──────────────────────────────────────────────
//
// User profiles and the conversation log live behind these interfaces; the
// store package provides the SQLite implementation. Sessions (volatile
// dialogue state) are a separate concern, see SessionStore.

// User is a registered chat user.
type User struct {
	ID               int64     `json:"id"`
	Username         string    `json:"username"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Language         Language  `json:"language"`
	SubscribedToTips bool      `json:"subscribed_to_tips"`
	CreatedAt        time.Time `json:"created_at"`
}

// ConversationEntry is one logged exchange.
type ConversationEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`
	Topic     Topic     `json:"topic"`
	CreatedAt time.Time `json:"created_at"`
}

// UserStore manages user profiles.
type UserStore interface {
	// GetOrCreateUser registers the user on first contact and refreshes
	// the profile fields on subsequent ones.
	GetOrCreateUser(id int64, username, firstName, lastName string) (*User, error)

	// GetUser returns nil, nil when the user is unknown.
	GetUser(id int64) (*User, error)

	UpdateUserLanguage(id int64, lang Language) error
	UpdateUserSubscription(id int64, subscribed bool) error

	// SubscribedUsers lists everyone receiving daily tips.
	SubscribedUsers() ([]User, error)
}

// ConversationStore persists and reads back the conversation log.
type ConversationStore interface {
	ConversationLogger

	// UserConversations returns the most recent entries, newest first.
	UserConversations(userID int64, limit int) ([]ConversationEntry, error)
}
