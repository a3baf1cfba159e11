package mysticbot

import (
	"context"
	"log"
	"time"
)

// ──────────────────────────────────────────────
// Response generator — the LLM gateway
// ──────────────────────────────────────────────
//
// One synchronous call per user message: resolve follow-up and history rules,
// build the persona prompt, call the model, maintain the rolling history.
// Failures never escape; the caller always gets user-presentable text.

// MessageLimit is the transport's maximum message size in characters.
const MessageLimit = 4000

// ResponseGenerator produces topic-grounded model responses.
//
// Usage:
//
//	gen := mysticbot.NewResponseGenerator(llm, sessions, usage)
//	text, err := gen.Generate(ctx, mysticbot.TopicBaZi, query, userID, mysticbot.LangEN)
type ResponseGenerator struct {
	llm      LanguageModelClient
	sessions SessionStore
	usage    *UsageTracker
	now      func() time.Time // injectable for tests
}

// NewResponseGenerator wires the generator. usage may be nil.
func NewResponseGenerator(llm LanguageModelClient, sessions SessionStore, usage *UsageTracker) *ResponseGenerator {
	if usage == nil {
		usage = NewUsageTracker()
	}
	return &ResponseGenerator{llm: llm, sessions: sessions, usage: usage, now: time.Now}
}

// Usage exposes the tracker for the health endpoint.
func (g *ResponseGenerator) Usage() *UsageTracker { return g.usage }

// Generate runs one exchange for the user.
//
// The returned string is always deliverable: on any upstream failure it is
// the fixed localized apology and the error reports what went wrong. History
// is only mutated on success.
//
// userID may be empty for one-off generations (daily tips); then no history
// is read or written.
func (g *ResponseGenerator) Generate(ctx context.Context, topic Topic, query, userID string, lang Language) (string, error) {
	var (
		session     *Session
		isFollowup  bool
		contextInfo string
	)

	if userID != "" {
		var err error
		session, err = GetOrCreateSession(g.sessions, userID)
		if err != nil {
			// Session backend trouble: degrade to a one-off generation.
			log.Printf("[Responder] session load failed user=%s: %v", userID, err)
			session = nil
		}
	}

	if session != nil {
		isFollowup, contextInfo = DetectFollowup(session.LastResult, query, lang)

		// Topic or language switches start a fresh context, unless the user
		// is following up on the last assessment. /topic and /language pin
		// session.Topic ahead of this call, so the comparison is against the
		// context of the previous generation.
		if (session.LastTopic != topic || session.LastLanguage != lang) && !isFollowup {
			session.ResetHistory()
		}
		session.Topic = topic
		session.Language = lang
	}

	messages := []ChatTurn{{Role: RoleSystem, Content: SystemPrompt(topic, lang, g.now())}}
	if session != nil {
		messages = append(messages, session.HistoryWindow()...)
	}
	if isFollowup {
		messages = append(messages, ChatTurn{Role: RoleUser, Content: FollowupPrompt(contextInfo, query, lang)})
	} else {
		messages = append(messages, ChatTurn{Role: RoleUser, Content: query})
	}

	resp, err := g.llm.Complete(ctx, ChatRequest{Messages: messages})
	if err != nil {
		log.Printf("[Responder] generation failed topic=%s user=%s: %v", topic, userID, err)
		return T(TmplApology, lang), err
	}
	g.usage.RecordCall(resp.TotalTokens)

	if session != nil {
		// Store the raw query, not the enriched follow-up prompt: full
		// context is rebuilt per request anyway.
		session.AppendTurn(RoleUser, query)
		session.AppendTurn(RoleAssistant, resp.Text)
		session.LastTopic = topic
		session.LastLanguage = lang
		if err := g.sessions.Put(session); err != nil {
			log.Printf("[Responder] session save failed user=%s: %v", userID, err)
		}
	}

	return TruncateMessage(resp.Text, MessageLimit), nil
}

// StoreResult records a completed assessment's context for follow-ups,
// overwriting any previous one.
func (g *ResponseGenerator) StoreResult(userID string, topic Topic, contextSummary string) {
	session, err := GetOrCreateSession(g.sessions, userID)
	if err != nil {
		log.Printf("[Responder] session load failed user=%s: %v", userID, err)
		return
	}
	session.LastResult = &AssessmentResult{Topic: topic, Context: contextSummary}
	if err := g.sessions.Put(session); err != nil {
		log.Printf("[Responder] session save failed user=%s: %v", userID, err)
	}
}

// ResetHistory discards a user's conversation memory. Returns false when
// there was nothing to reset.
func (g *ResponseGenerator) ResetHistory(userID string) bool {
	session, err := g.sessions.Get(userID)
	if err != nil || session == nil || len(session.History) == 0 {
		return false
	}
	session.ResetHistory()
	if err := g.sessions.Put(session); err != nil {
		log.Printf("[Responder] session save failed user=%s: %v", userID, err)
	}
	return true
}

// TruncateMessage caps text at limit characters (runes), marking the cut
// with a trailing ellipsis.
func TruncateMessage(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-3]) + "..."
}
