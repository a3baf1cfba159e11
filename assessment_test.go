package mysticbot

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strings"
	"testing"
)

var errTest = errors.New("model unavailable")

// fakeConvLog records every persisted conversation entry.
type fakeConvLog struct {
	entries []ConversationEntry
}

func (f *fakeConvLog) LogConversation(userID int64, input, output string, topic Topic) error {
	f.entries = append(f.entries, ConversationEntry{UserID: userID, Input: input, Output: output, Topic: topic})
	return nil
}

func newTestEngine(llm LanguageModelClient) (*AssessmentEngine, *InMemorySessionStore, *fakeConvLog) {
	store := NewInMemorySessionStore(0)
	convLog := &fakeConvLog{}
	gen := NewResponseGenerator(llm, store, nil)
	eng := NewAssessmentEngine(gen, store, convLog)
	return eng, store, convLog
}

func startAssessment(t *testing.T, eng *AssessmentEngine, store *InMemorySessionStore, userID string, topic Topic, name string) *Session {
	t.Helper()
	session, _ := GetOrCreateSession(store, userID)
	session.Language = LangEN

	prompts := eng.Begin(session)
	if len(prompts) != 1 || len(prompts[0].Choices) != len(AssessmentTopics) {
		t.Fatalf("Begin must offer one keyboard with %d topic rows", len(AssessmentTopics))
	}

	if _, err := eng.HandleChoice(context.Background(), session, string(topic)); err != nil {
		t.Fatalf("topic selection: %v", err)
	}
	if session.Assessment.Step != StepName {
		t.Fatalf("step after topic = %d, want name", session.Assessment.Step)
	}
	if _, err := eng.HandleInput(context.Background(), session, name); err != nil {
		t.Fatalf("name input: %v", err)
	}
	return session
}

// ══════════════════════════════════════════════
// Flow control
// ══════════════════════════════════════════════

func TestAssessment_UnknownTopicReshowsIntro(t *testing.T) {
	eng, store, _ := newTestEngine(&fakeLLM{reply: "ok"})
	session, _ := GetOrCreateSession(store, "1")
	session.Language = LangEN
	eng.Begin(session)

	prompts, err := eng.HandleChoice(context.Background(), session, "astrology")
	if err != nil {
		t.Fatalf("HandleChoice: %v", err)
	}
	if !prompts[0].EditLast || prompts[0].Text != T(TmplAssessIntro, LangEN) {
		t.Fatalf("unknown topic must rewrite the intro in place, got %+v", prompts[0])
	}
	if session.Assessment.Step != StepSelectTopic {
		t.Fatal("flow must stay at topic selection")
	}
}

func TestAssessment_Cancel(t *testing.T) {
	eng, store, _ := newTestEngine(&fakeLLM{reply: "ok"})
	session := startAssessment(t, eng, store, "1", TopicBaZi, "Ana")

	p := eng.Cancel(session)
	if session.Assessment != nil {
		t.Fatal("cancel must discard the flow")
	}
	if p.Text != T(TmplCancelled, LangEN) {
		t.Fatalf("cancel text = %q", p.Text)
	}
}

func TestAssessment_InputOnWrongStep(t *testing.T) {
	eng, store, _ := newTestEngine(&fakeLLM{reply: "ok"})
	session := startAssessment(t, eng, store, "1", TopicMBTI, "Ana")

	if _, err := eng.HandleInput(context.Background(), session, "hello"); err == nil {
		t.Fatal("text input during a button step must be rejected")
	}
}

// ══════════════════════════════════════════════
// MBTI
// ══════════════════════════════════════════════

func TestAssessment_MBTIFullFlow(t *testing.T) {
	llm := &fakeLLM{reply: "You are a warm and inspiring leader."}
	eng, store, convLog := newTestEngine(llm)
	session := startAssessment(t, eng, store, "42", TopicMBTI, "Ana")

	if session.Assessment.Step != StepMBTIAnswer {
		t.Fatalf("step after name = %d, want mbti answer", session.Assessment.Step)
	}

	var prompts []Prompt
	for _, letter := range []string{"E", "N", "F", "J"} {
		var err error
		prompts, err = eng.HandleChoice(context.Background(), session, letter)
		if err != nil {
			t.Fatalf("answer %s: %v", letter, err)
		}
	}

	final := prompts[len(prompts)-1]
	if !final.HTML {
		t.Fatal("result must be delivered as HTML")
	}
	if !strings.Contains(final.Text, "ENFJ") || !strings.Contains(final.Text, "Ana") {
		t.Fatalf("result header must name the user and type: %q", final.Text)
	}
	if !strings.Contains(final.Text, llm.reply) {
		t.Fatal("result must carry the generated narrative")
	}

	if !strings.Contains(llm.lastRequest(t).Messages[len(llm.lastRequest(t).Messages)-1].Content, "ENFJ") {
		t.Fatal("generation query must carry the computed type")
	}

	if session.Assessment != nil {
		t.Fatal("flow must end after the result")
	}
	stored, _ := store.Get("42")
	if stored.LastResult == nil || stored.LastResult.Topic != TopicMBTI {
		t.Fatalf("follow-up context must be stored, got %+v", stored.LastResult)
	}

	if len(convLog.entries) != 1 {
		t.Fatalf("conversation log entries = %d, want 1", len(convLog.entries))
	}
	if convLog.entries[0].UserID != 42 || convLog.entries[0].Topic != TopicMBTI {
		t.Fatalf("logged entry = %+v", convLog.entries[0])
	}
}

func TestAssessment_MBTIIntermediateQuestions(t *testing.T) {
	eng, store, _ := newTestEngine(&fakeLLM{reply: "ok"})
	session := startAssessment(t, eng, store, "1", TopicMBTI, "Ana")

	prompts, err := eng.HandleChoice(context.Background(), session, "I")
	if err != nil {
		t.Fatalf("HandleChoice: %v", err)
	}
	if !prompts[0].EditLast {
		t.Fatal("follow-on questions must rewrite the previous message")
	}
	if len(prompts[0].Choices) != 2 {
		t.Fatalf("question keyboard = %d rows, want 2", len(prompts[0].Choices))
	}
	answers := session.Assessment.Data.(*MBTIData).Answers
	if len(answers) != 1 || answers[0] != "I" {
		t.Fatalf("answers = %v", answers)
	}
}

func TestAssessment_MBTIRejectsForeignCallback(t *testing.T) {
	llm := &fakeLLM{reply: "ok"}
	eng, store, _ := newTestEngine(llm)
	session := startAssessment(t, eng, store, "1", TopicMBTI, "Ana")

	// Callback data that is not an option of the current question must not
	// be recorded; the question is asked again.
	for _, data := range []string{"feng_shui", "bogus", "T"} {
		prompts, err := eng.HandleChoice(context.Background(), session, data)
		if err != nil {
			t.Fatalf("choice %q: %v", data, err)
		}
		if len(prompts[0].Choices) != 2 {
			t.Fatalf("re-prompt for %q must carry the question keyboard", data)
		}
		if answers := session.Assessment.Data.(*MBTIData).Answers; len(answers) != 0 {
			t.Fatalf("answers = %v after %q, want none", answers, data)
		}
	}

	var prompts []Prompt
	for _, letter := range []string{"E", "N", "F", "J"} {
		var err error
		prompts, err = eng.HandleChoice(context.Background(), session, letter)
		if err != nil {
			t.Fatalf("answer %s: %v", letter, err)
		}
	}
	final := prompts[len(prompts)-1]
	if !strings.Contains(final.Text, "ENFJ") || strings.Contains(final.Text, "feng_shui") {
		t.Fatalf("rejected data must not reach the type code: %q", final.Text)
	}
}

// ══════════════════════════════════════════════
// Feng Shui
// ══════════════════════════════════════════════

func TestAssessment_FengShuiFullFlow(t *testing.T) {
	llm := &fakeLLM{reply: "Place your bed against the solid wall."}
	eng, store, _ := newTestEngine(llm)
	session := startAssessment(t, eng, store, "7", TopicFengShui, "Ana")

	if session.Assessment.Step != StepRoom {
		t.Fatalf("step after name = %d, want room", session.Assessment.Step)
	}

	if _, err := eng.HandleChoice(context.Background(), session, "bedroom"); err != nil {
		t.Fatalf("room choice: %v", err)
	}
	if session.Assessment.Step != StepBirthDate {
		t.Fatal("room choice must advance to the birth date")
	}

	prompts, err := eng.HandleInput(context.Background(), session, "1990-05-13")
	if err != nil {
		t.Fatalf("birth date: %v", err)
	}
	final := prompts[len(prompts)-1]
	if !strings.Contains(final.Text, "Kua number is 9") {
		t.Fatalf("header must carry the computed Kua number: %q", final.Text)
	}

	query := llm.lastRequest(t).Messages[len(llm.lastRequest(t).Messages)-1].Content
	if !strings.Contains(query, "Bedroom") || !strings.Contains(query, LuckyDirections(9)) {
		t.Fatalf("query must name the room and lucky directions: %q", query)
	}
}

func TestAssessment_FengShuiRejectsUnknownRoom(t *testing.T) {
	eng, store, _ := newTestEngine(&fakeLLM{reply: "ok"})
	session := startAssessment(t, eng, store, "1", TopicFengShui, "Ana")

	prompts, err := eng.HandleChoice(context.Background(), session, "garage")
	if err != nil {
		t.Fatalf("HandleChoice: %v", err)
	}
	if session.Assessment.Step != StepRoom {
		t.Fatal("flow must stay on the room step")
	}
	if len(prompts[0].Choices) == 0 {
		t.Fatal("re-prompt must carry the room keyboard")
	}
	if room := session.Assessment.Data.(*FengShuiData).Room; room != "" {
		t.Fatalf("room = %q, want unset", room)
	}

	if _, err := eng.HandleChoice(context.Background(), session, "bedroom"); err != nil {
		t.Fatalf("valid room: %v", err)
	}
	if session.Assessment.Step != StepBirthDate {
		t.Fatal("valid room must advance to the birth date")
	}
}

func TestAssessment_InvalidDateReprompts(t *testing.T) {
	eng, store, _ := newTestEngine(&fakeLLM{reply: "ok"})
	session := startAssessment(t, eng, store, "1", TopicBaZi, "Ana")

	prompts, err := eng.HandleInput(context.Background(), session, "13/05/1990")
	if err != nil {
		t.Fatalf("HandleInput: %v", err)
	}
	if prompts[0].Text != T(TmplInvalidDate, LangEN) {
		t.Fatalf("prompt = %q, want the invalid-date notice", prompts[0].Text)
	}
	if session.Assessment == nil || session.Assessment.Step != StepBirthDate {
		t.Fatal("flow must stay on the birth-date step")
	}
}

// ══════════════════════════════════════════════
// Zi Wei
// ══════════════════════════════════════════════

func TestAssessment_ZiWeiFullFlow(t *testing.T) {
	llm := &fakeLLM{reply: "The Emperor star anchors your life palace."}
	eng, store, _ := newTestEngine(llm)
	session := startAssessment(t, eng, store, "7", TopicZiWei, "Ana")

	if _, err := eng.HandleInput(context.Background(), session, "1990-05-13"); err != nil {
		t.Fatalf("birth date: %v", err)
	}
	if session.Assessment.Step != StepBirthTime {
		t.Fatal("date must advance to the birth time")
	}

	prompts, err := eng.HandleInput(context.Background(), session, "25:99")
	if err != nil {
		t.Fatalf("HandleInput: %v", err)
	}
	if prompts[0].Text != T(TmplInvalidTime, LangEN) {
		t.Fatal("malformed time must re-prompt in place")
	}

	prompts, err = eng.HandleInput(context.Background(), session, "14:30")
	if err != nil {
		t.Fatalf("birth time: %v", err)
	}
	final := prompts[len(prompts)-1]
	if !final.HTML || !strings.Contains(final.Text, llm.reply) {
		t.Fatalf("result = %+v", final)
	}
	if session.Assessment != nil {
		t.Fatal("flow must end after the result")
	}
}

// ══════════════════════════════════════════════
// I-Ching
// ══════════════════════════════════════════════

func TestAssessment_IChingQueuesCastMessage(t *testing.T) {
	llm := &fakeLLM{reply: "The hexagram counsels patience."}
	eng, store, _ := newTestEngine(llm)
	eng.SetHexagramCaster(NewHexagramCaster(rand.NewSource(7)))
	session := startAssessment(t, eng, store, "7", TopicIChing, "Ana")

	if session.Assessment.Step != StepQuestion {
		t.Fatal("name must advance to the question step")
	}

	prompts, err := eng.HandleInput(context.Background(), session, "Should I change jobs?")
	if err != nil {
		t.Fatalf("question: %v", err)
	}
	// With no notifier installed the cast message is queued ahead of the
	// result.
	if len(prompts) != 2 {
		t.Fatalf("prompts = %d, want cast message plus result", len(prompts))
	}
	if !strings.Contains(prompts[0].Text, T(TmplCastingHexagram, LangEN)) {
		t.Fatalf("first prompt must announce the cast: %q", prompts[0].Text)
	}
	if !strings.Contains(prompts[1].Text, "Should I change jobs?") {
		t.Fatal("result header must quote the question")
	}
}

func TestAssessment_IChingNotifierDeliversCastEarly(t *testing.T) {
	llm := &fakeLLM{reply: "ok"}
	eng, store, _ := newTestEngine(llm)
	eng.SetHexagramCaster(NewHexagramCaster(rand.NewSource(7)))

	var notified []Prompt
	eng.SetNotifier(func(userID string, p Prompt) { notified = append(notified, p) })

	session := startAssessment(t, eng, store, "7", TopicIChing, "Ana")
	prompts, err := eng.HandleInput(context.Background(), session, "Should I move?")
	if err != nil {
		t.Fatalf("question: %v", err)
	}
	if len(notified) != 1 {
		t.Fatalf("notifier calls = %d, want 1", len(notified))
	}
	if len(prompts) != 1 {
		t.Fatalf("returned prompts = %d, want the result only", len(prompts))
	}
}

// ══════════════════════════════════════════════
// Persistence round-trip
// ══════════════════════════════════════════════

func TestActiveAssessment_JSONRoundTrip(t *testing.T) {
	orig := &ActiveAssessment{
		Topic: TopicFengShui,
		Step:  StepBirthDate,
		Name:  "Ana",
		Data:  &FengShuiData{Room: "bedroom", Year: 1990, Month: 5, Day: 13},
	}
	raw, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back ActiveAssessment
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Topic != orig.Topic || back.Step != orig.Step || back.Name != orig.Name {
		t.Fatalf("envelope fields lost: %+v", back)
	}
	fs, ok := back.Data.(*FengShuiData)
	if !ok {
		t.Fatalf("data decoded as %T, want *FengShuiData", back.Data)
	}
	if *fs != (FengShuiData{Room: "bedroom", Year: 1990, Month: 5, Day: 13}) {
		t.Fatalf("data fields lost: %+v", fs)
	}
}

func TestAssessment_FailureEndsFlow(t *testing.T) {
	eng, store, _ := newTestEngine(&fakeLLM{err: errTest})
	session := startAssessment(t, eng, store, "1", TopicBaZi, "Ana")

	prompts, err := eng.HandleInput(context.Background(), session, "1990-05-13")
	if err == nil {
		t.Fatal("generation failure must be reported")
	}
	last := prompts[len(prompts)-1]
	if last.Text != T(TmplAssessFailed, LangEN) {
		t.Fatalf("prompt = %q, want the failure notice", last.Text)
	}
	if session.Assessment != nil {
		t.Fatal("failed flow must not stay active")
	}
}
