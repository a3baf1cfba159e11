package mysticbot

import (
	"sync"
	"time"
)

// ──────────────────────────────────────────────
// Sessions — per-user conversational state
// ──────────────────────────────────────────────

// Chat roles, OpenAI-compatible.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one (role, text) entry of a user's rolling history.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	// maxHistoryTurns bounds a session's stored history.
	maxHistoryTurns = 20
	// historyWindow is how many stored turns are replayed per LLM call.
	historyWindow = 10
)

// Session is one user's transient conversational state. It is only ever
// read and written while handling that user's own update, so it carries no
// lock of its own.
type Session struct {
	UserID     string             `json:"user_id"`
	Topic      Topic              `json:"topic"`
	Language   Language           `json:"language"`
	History    []ChatTurn         `json:"history"`
	Assessment *ActiveAssessment  `json:"assessment,omitempty"`
	LastResult *AssessmentResult  `json:"last_result,omitempty"`
	LastSeen   time.Time          `json:"last_seen"`

	// LastTopic and LastLanguage record the context of the most recent
	// generation. Commands pin Topic and Language before the next call, so
	// the history reset rule compares against these, not the pin.
	LastTopic    Topic    `json:"last_topic,omitempty"`
	LastLanguage Language `json:"last_language,omitempty"`
}

// AppendTurn records one exchange entry, trimming to the history bound.
func (s *Session) AppendTurn(role, content string) {
	s.History = append(s.History, ChatTurn{Role: role, Content: content})
	if len(s.History) > maxHistoryTurns {
		s.History = s.History[len(s.History)-maxHistoryTurns:]
	}
}

// HistoryWindow returns the most recent turns replayed to the model.
func (s *Session) HistoryWindow() []ChatTurn {
	if len(s.History) <= historyWindow {
		return s.History
	}
	return s.History[len(s.History)-historyWindow:]
}

// ResetHistory discards the stored history (topic or language switch).
func (s *Session) ResetHistory() {
	s.History = nil
}

// SessionStore is the pluggable backend for sessions.
//
// Get returns (nil, nil) for an unknown user. Implementations may evict idle
// sessions; callers must treat a missing session as a fresh start.
type SessionStore interface {
	Get(userID string) (*Session, error)
	Put(session *Session) error
	Clear(userID string) error
}

// GetOrCreateSession loads a user's session or initializes a fresh one.
func GetOrCreateSession(store SessionStore, userID string) (*Session, error) {
	s, err := store.Get(userID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		// Language stays empty so callers can seed the stored preference;
		// template lookup treats empty as English.
		s = &Session{UserID: userID, Topic: TopicGeneral}
	}
	s.LastSeen = time.Now()
	return s, nil
}

// ──────────────────────────────────────────────
// InMemorySessionStore
// ──────────────────────────────────────────────

// InMemorySessionStore is a thread-safe in-memory SessionStore with TTL
// eviction of idle users, so memory stays bounded without a background task.
// Data is lost on restart; that volatility is an accepted design property.
type InMemorySessionStore struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time // injectable for tests
}

// DefaultSessionTTL is how long an idle session survives.
const DefaultSessionTTL = 24 * time.Hour

// sweepInterval bounds how often the eviction pass runs.
const sweepInterval = 10 * time.Minute

// NewInMemorySessionStore creates a store. ttl <= 0 uses DefaultSessionTTL.
func NewInMemorySessionStore(ttl time.Duration) *InMemorySessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &InMemorySessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *InMemorySessionStore) Get(userID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, nil
	}
	if s.now().Sub(sess.LastSeen) > s.ttl {
		delete(s.sessions, userID)
		return nil, nil
	}
	return sess, nil
}

func (s *InMemorySessionStore) Put(session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	if session.LastSeen.IsZero() {
		// A zero LastSeen would read as long-expired on the next Get.
		session.LastSeen = s.now()
	}
	s.sessions[session.UserID] = session
	return nil
}

func (s *InMemorySessionStore) Clear(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

// Len reports the live session count (after an eviction pass).
func (s *InMemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSweep = time.Time{}
	s.sweepLocked()
	return len(s.sessions)
}

// sweepLocked evicts expired sessions at most once per sweepInterval.
// Caller holds s.mu.
func (s *InMemorySessionStore) sweepLocked() {
	now := s.now()
	if now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = now
	for id, sess := range s.sessions {
		if now.Sub(sess.LastSeen) > s.ttl {
			delete(s.sessions, id)
		}
	}
}
