package mysticbot

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeLLM replays canned responses and records every request it sees.
type fakeLLM struct {
	reply    string
	tokens   int
	err      error
	requests []ChatRequest
}

func (f *fakeLLM) Complete(_ context.Context, req ChatRequest) (*ChatResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &ChatResponse{Text: f.reply, TotalTokens: f.tokens}, nil
}

func (f *fakeLLM) lastRequest(t *testing.T) ChatRequest {
	t.Helper()
	if len(f.requests) == 0 {
		t.Fatal("no LLM call was made")
	}
	return f.requests[len(f.requests)-1]
}

// ══════════════════════════════════════════════
// Response generation
// ══════════════════════════════════════════════

func TestGenerate_BuildsMessages(t *testing.T) {
	llm := &fakeLLM{reply: "The Horse gallops onward.", tokens: 42}
	store := NewInMemorySessionStore(0)
	gen := NewResponseGenerator(llm, store, nil)

	text, err := gen.Generate(context.Background(), TopicBaZi, "what is my day master?", "42", LangEN)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != llm.reply {
		t.Fatalf("text = %q, want model reply", text)
	}

	req := llm.lastRequest(t)
	if req.Messages[0].Role != RoleSystem {
		t.Fatal("first message must be the system prompt")
	}
	if !strings.Contains(req.Messages[0].Content, "Ba Zi") {
		t.Fatalf("system prompt must carry the topic persona: %q", req.Messages[0].Content)
	}
	last := req.Messages[len(req.Messages)-1]
	if last.Role != RoleUser || last.Content != "what is my day master?" {
		t.Fatalf("last message = %+v, want the raw user query", last)
	}

	sess, _ := store.Get("42")
	if sess == nil || len(sess.History) != 2 {
		t.Fatalf("history must hold the exchange, got %+v", sess)
	}
	if sess.History[1].Role != RoleAssistant || sess.History[1].Content != llm.reply {
		t.Fatalf("assistant turn = %+v", sess.History[1])
	}
	if got := gen.Usage().Stats(); got.TotalTokens != 42 {
		t.Fatalf("usage tokens = %d, want 42", got.TotalTokens)
	}
}

func TestGenerate_TopicSwitchResetsHistory(t *testing.T) {
	llm := &fakeLLM{reply: "ok"}
	store := NewInMemorySessionStore(0)
	gen := NewResponseGenerator(llm, store, nil)

	if _, err := gen.Generate(context.Background(), TopicMBTI, "am I an introvert?", "9", LangEN); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := gen.Generate(context.Background(), TopicBaZi, "read my four pillars now thanks", "9", LangEN); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	sess, _ := store.Get("9")
	if len(sess.History) != 2 {
		t.Fatalf("history = %d turns, want 2 (reset on topic switch)", len(sess.History))
	}
	if sess.Topic != TopicBaZi {
		t.Fatalf("topic = %q, want bazi", sess.Topic)
	}

	// The second request must not replay MBTI turns.
	req := llm.lastRequest(t)
	for _, m := range req.Messages[1:] {
		if strings.Contains(m.Content, "introvert") {
			t.Fatal("old topic history leaked into the new request")
		}
	}
}

func TestGenerate_PinnedTopicStillResets(t *testing.T) {
	llm := &fakeLLM{reply: "ok"}
	store := NewInMemorySessionStore(0)
	gen := NewResponseGenerator(llm, store, nil)

	if _, err := gen.Generate(context.Background(), TopicMBTI, "am I an introvert?", "9", LangEN); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// /topic pins the session topic and saves before the next generation.
	sess, _ := store.Get("9")
	sess.Topic = TopicBaZi
	store.Put(sess)

	if _, err := gen.Generate(context.Background(), TopicBaZi, "read my four pillars now thanks", "9", LangEN); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	sess, _ = store.Get("9")
	if len(sess.History) != 2 {
		t.Fatalf("history = %d turns, want 2 (reset despite the pinned topic)", len(sess.History))
	}
	req := llm.lastRequest(t)
	for _, m := range req.Messages[1:] {
		if strings.Contains(m.Content, "introvert") {
			t.Fatal("pre-switch history leaked into the new request")
		}
	}
}

func TestGenerate_FollowupKeepsHistory(t *testing.T) {
	llm := &fakeLLM{reply: "ok"}
	store := NewInMemorySessionStore(0)
	gen := NewResponseGenerator(llm, store, nil)

	if _, err := gen.Generate(context.Background(), TopicBaZi, "read my chart please now thanks", "9", LangEN); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	gen.StoreResult("9", TopicBaZi, "Ba Zi reading for Ana, day master Wood.")

	if _, err := gen.Generate(context.Background(), TopicGeneral, "tell me more", "9", LangEN); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	sess, _ := store.Get("9")
	if len(sess.History) != 4 {
		t.Fatalf("history = %d turns, want 4 (follow-up keeps history)", len(sess.History))
	}

	req := llm.lastRequest(t)
	last := req.Messages[len(req.Messages)-1].Content
	if !strings.Contains(last, "Ba Zi reading for Ana") {
		t.Fatalf("follow-up prompt must embed the stored context: %q", last)
	}
	// The stored turn is the raw query, not the enriched prompt.
	if sess.History[2].Content != "tell me more" {
		t.Fatalf("stored user turn = %q, want the raw query", sess.History[2].Content)
	}
}

func TestGenerate_FailureReturnsApology(t *testing.T) {
	llm := &fakeLLM{err: errors.New("upstream 500")}
	store := NewInMemorySessionStore(0)
	gen := NewResponseGenerator(llm, store, nil)

	store.Put(&Session{UserID: "5", Topic: TopicIChing, Language: LangEN,
		LastTopic: TopicIChing, LastLanguage: LangEN,
		History: []ChatTurn{{Role: RoleUser, Content: "hi"}}})

	text, err := gen.Generate(context.Background(), TopicIChing, "cast again", "5", LangEN)
	if err == nil {
		t.Fatal("upstream failure must be reported")
	}
	if text != T(TmplApology, LangEN) {
		t.Fatalf("text = %q, want the apology", text)
	}

	sess, _ := store.Get("5")
	if len(sess.History) != 1 {
		t.Fatal("history must not change on failure")
	}
}

func TestGenerate_OneOffSkipsSessions(t *testing.T) {
	llm := &fakeLLM{reply: "tip of the day"}
	store := NewInMemorySessionStore(0)
	gen := NewResponseGenerator(llm, store, nil)

	if _, err := gen.Generate(context.Background(), TopicFengShui, "daily tip", "", LangEN); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if store.Len() != 0 {
		t.Fatal("one-off generation must not create a session")
	}
}

func TestResetHistory(t *testing.T) {
	store := NewInMemorySessionStore(0)
	gen := NewResponseGenerator(&fakeLLM{reply: "ok"}, store, nil)

	if gen.ResetHistory("1") {
		t.Fatal("nothing stored: reset must report false")
	}

	store.Put(&Session{UserID: "1", History: []ChatTurn{{Role: RoleUser, Content: "hi"}}})
	if !gen.ResetHistory("1") {
		t.Fatal("reset of existing history must report true")
	}
	sess, _ := store.Get("1")
	if len(sess.History) != 0 {
		t.Fatal("history must be empty after reset")
	}
}

func TestTruncateMessage(t *testing.T) {
	if got := TruncateMessage("short", 10); got != "short" {
		t.Fatalf("short text must pass through, got %q", got)
	}
	long := strings.Repeat("水", 20)
	got := TruncateMessage(long, 10)
	if gotRunes := []rune(got); len(gotRunes) != 10 {
		t.Fatalf("truncation = %d runes, want 10", len(gotRunes))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("truncation must end with an ellipsis: %q", got)
	}
}
