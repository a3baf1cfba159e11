package mysticbot

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
)

// ──────────────────────────────────────────────
// Assessment state machine
// ──────────────────────────────────────────────
//
// One multi-step guided flow per user: pick a topic, collect the inputs the
// topic needs, compute the deterministic chart, then hand the result to the
// response generator for the narrative. Each collection step validates its
// input and re-prompts in place on failure; /cancel exits from any step.

// AssessmentStep identifies the input the flow is currently waiting for.
type AssessmentStep int

const (
	StepSelectTopic AssessmentStep = iota
	StepName
	StepRoom
	StepBirthDate
	StepBirthTime
	StepQuestion
	StepMBTIAnswer
)

// AssessmentData holds the topic-specific fields collected so far. Exactly
// one concrete type per topic.
type AssessmentData interface {
	assessmentData()
}

type FengShuiData struct {
	Room  string `json:"room"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Day   int    `json:"day"`
}

type MBTIData struct {
	// Answers accumulate in question order: E/I, S/N, T/F, J/P.
	Answers []string `json:"answers"`
}

type IChingData struct {
	Question string `json:"question"`
}

type BaZiData struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

type ZiWeiData struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (*FengShuiData) assessmentData() {}
func (*MBTIData) assessmentData()     {}
func (*IChingData) assessmentData()   {}
func (*BaZiData) assessmentData()     {}
func (*ZiWeiData) assessmentData()    {}

// ActiveAssessment is one user's in-progress flow.
type ActiveAssessment struct {
	Topic Topic
	Step  AssessmentStep
	Name  string
	Data  AssessmentData
}

type assessmentEnvelope struct {
	Topic Topic           `json:"topic"`
	Step  AssessmentStep  `json:"step"`
	Name  string          `json:"name"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// MarshalJSON flattens the data union behind the topic tag so sessions can
// round-trip through Redis.
func (a *ActiveAssessment) MarshalJSON() ([]byte, error) {
	env := assessmentEnvelope{Topic: a.Topic, Step: a.Step, Name: a.Name}
	if a.Data != nil {
		raw, err := json.Marshal(a.Data)
		if err != nil {
			return nil, err
		}
		env.Data = raw
	}
	return json.Marshal(env)
}

func (a *ActiveAssessment) UnmarshalJSON(b []byte) error {
	var env assessmentEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	a.Topic, a.Step, a.Name = env.Topic, env.Step, env.Name
	a.Data = newAssessmentData(env.Topic)
	if len(env.Data) > 0 && a.Data != nil {
		return json.Unmarshal(env.Data, a.Data)
	}
	return nil
}

func newAssessmentData(topic Topic) AssessmentData {
	switch topic {
	case TopicFengShui:
		return &FengShuiData{}
	case TopicMBTI:
		return &MBTIData{}
	case TopicIChing:
		return &IChingData{}
	case TopicBaZi:
		return &BaZiData{}
	case TopicZiWei:
		return &ZiWeiData{}
	}
	return nil
}

// Choice is one inline button offered to the user.
type Choice struct {
	Label string
	Data  string
}

// Prompt is one outbound message produced by the flow. EditLast asks the
// transport to rewrite the message carrying the buttons the user just
// pressed instead of sending a new one.
type Prompt struct {
	Text     string
	Choices  [][]Choice
	EditLast bool
	HTML     bool
}

func textPrompt(s string) Prompt { return Prompt{Text: s} }

// ConversationLogger receives the persisted record of each exchange.
type ConversationLogger interface {
	LogConversation(userID int64, input, output string, topic Topic) error
}

// AssessmentEngine drives the per-user flows.
//
// Usage:
//
//	eng := mysticbot.NewAssessmentEngine(gen, sessions, log)
//	prompts, err := eng.Begin(session)
type AssessmentEngine struct {
	responder *ResponseGenerator
	sessions  SessionStore
	convLog   ConversationLogger
	caster    *HexagramCaster

	// notify delivers an interim message (hexagram cast, "generating")
	// before the slow terminal generation. Nil means interim prompts are
	// returned alongside the final one.
	notify func(userID string, p Prompt)
}

// NewAssessmentEngine wires the engine. convLog may be nil.
func NewAssessmentEngine(responder *ResponseGenerator, sessions SessionStore, convLog ConversationLogger) *AssessmentEngine {
	return &AssessmentEngine{
		responder: responder,
		sessions:  sessions,
		convLog:   convLog,
		caster:    NewHexagramCaster(nil),
	}
}

// SetHexagramCaster replaces the coin-toss source, for tests.
func (e *AssessmentEngine) SetHexagramCaster(c *HexagramCaster) { e.caster = c }

// SetNotifier installs the interim-message sender.
func (e *AssessmentEngine) SetNotifier(fn func(userID string, p Prompt)) { e.notify = fn }

// emit sends an interim prompt right away when a notifier is installed.
// Otherwise it is queued for the caller to deliver with the final prompts.
func (e *AssessmentEngine) emit(userID string, p Prompt, queue []Prompt) []Prompt {
	if e.notify != nil {
		e.notify(userID, p)
		return queue
	}
	return append(queue, p)
}

// Begin starts a new flow at topic selection, discarding any previous one.
func (e *AssessmentEngine) Begin(session *Session) []Prompt {
	session.Assessment = &ActiveAssessment{Step: StepSelectTopic}
	e.save(session)

	lang := session.Language
	choices := make([][]Choice, 0, len(AssessmentTopics))
	for _, t := range AssessmentTopics {
		choices = append(choices, []Choice{{Label: t.Emoji() + " " + t.Title(lang), Data: string(t)}})
	}
	return []Prompt{{Text: T(TmplAssessIntro, lang), Choices: choices}}
}

// Active reports whether the session has a flow in progress.
func (e *AssessmentEngine) Active(session *Session) bool {
	return session != nil && session.Assessment != nil
}

// Cancel ends any in-progress flow, discarding collected fields.
func (e *AssessmentEngine) Cancel(session *Session) Prompt {
	session.Assessment = nil
	e.save(session)
	return textPrompt(T(TmplCancelled, session.Language))
}

// HandleChoice advances the flow with a button press.
func (e *AssessmentEngine) HandleChoice(ctx context.Context, session *Session, data string) ([]Prompt, error) {
	a := session.Assessment
	if a == nil {
		return nil, fmt.Errorf("no assessment in progress")
	}
	lang := session.Language

	switch a.Step {
	case StepSelectTopic:
		topic, ok := ParseTopic(data)
		if !ok {
			return []Prompt{{Text: T(TmplAssessIntro, lang), EditLast: true}}, nil
		}
		a.Topic = topic
		a.Data = newAssessmentData(topic)
		a.Step = StepName
		session.Topic = topic
		e.save(session)
		return []Prompt{{Text: T(TmplAskName, lang), EditLast: true}}, nil

	case StepRoom:
		return e.advanceFengShuiRoom(session, data)

	case StepMBTIAnswer:
		return e.advanceMBTI(ctx, session, data)
	}

	return nil, fmt.Errorf("step %d does not take a button answer", a.Step)
}

// HandleInput advances the flow with a free-text message.
func (e *AssessmentEngine) HandleInput(ctx context.Context, session *Session, text string) ([]Prompt, error) {
	a := session.Assessment
	if a == nil {
		return nil, fmt.Errorf("no assessment in progress")
	}
	text = strings.TrimSpace(text)

	switch a.Step {
	case StepName:
		a.Name = text
		return e.afterName(session)

	case StepBirthDate:
		switch a.Topic {
		case TopicFengShui:
			return e.advanceFengShuiBirthDate(ctx, session, text)
		case TopicBaZi:
			return e.advanceBaZiBirthDate(ctx, session, text)
		case TopicZiWei:
			return e.advanceZiWeiBirthDate(session, text)
		}

	case StepBirthTime:
		return e.advanceZiWeiBirthTime(ctx, session, text)

	case StepQuestion:
		return e.advanceIChingQuestion(ctx, session, text)
	}

	return nil, fmt.Errorf("step %d does not take text input", a.Step)
}

// afterName dispatches to the first topic-specific collection step.
func (e *AssessmentEngine) afterName(session *Session) ([]Prompt, error) {
	a := session.Assessment
	lang := session.Language

	switch a.Topic {
	case TopicFengShui:
		a.Step = StepRoom
		e.save(session)
		return []Prompt{{Text: TF(TmplAskRoom, lang, a.Name), Choices: fengShuiRoomChoices(lang)}}, nil
	case TopicMBTI:
		a.Step = StepMBTIAnswer
		e.save(session)
		return []Prompt{mbtiQuestionPrompt(lang, 0, TF(TmplMBTIIntro, lang, a.Name)+"\n\n")}, nil
	case TopicIChing:
		a.Step = StepQuestion
		e.save(session)
		return []Prompt{textPrompt(TF(TmplAskQuestion, lang, a.Name))}, nil
	case TopicBaZi, TopicZiWei:
		a.Step = StepBirthDate
		e.save(session)
		return []Prompt{textPrompt(TF(TmplAskBirthDate, lang, a.Name))}, nil
	}
	return nil, fmt.Errorf("unknown assessment topic %q", a.Topic)
}

// finish runs the shared terminal sequence: generate the narrative, store
// the follow-up context, persist the log entry and end the flow. The header
// survives trimming; only the model text is cut.
func (e *AssessmentEngine) finish(ctx context.Context, session *Session, query, contextSummary, header, footer, logInput string) ([]Prompt, error) {
	a := session.Assessment
	topic := a.Topic
	lang := session.Language
	userID := session.UserID

	text, err := e.responder.Generate(ctx, topic, query, userID, lang)
	if err != nil {
		session.Assessment = nil
		e.save(session)
		return []Prompt{textPrompt(T(TmplAssessFailed, lang))}, err
	}

	e.responder.StoreResult(userID, topic, contextSummary)

	final := composeCapped(header, text, footer, MessageLimit)
	if e.convLog != nil {
		if id, ok := parseUserID(userID); ok {
			record := final
			if len([]rune(record)) > 500 {
				record = string([]rune(record)[:500]) + "..."
			}
			if err := e.convLog.LogConversation(id, logInput, record, topic); err != nil {
				log.Printf("[Assessment] conversation log failed user=%s: %v", userID, err)
			}
		}
	}

	session.Assessment = nil
	e.save(session)
	return []Prompt{{Text: final, HTML: true}}, nil
}

func (e *AssessmentEngine) save(session *Session) {
	if err := e.sessions.Put(session); err != nil {
		log.Printf("[Assessment] session save failed user=%s: %v", session.UserID, err)
	}
}

// composeCapped joins header, body and footer, trimming the body first so
// the result fits the limit and the structured header is never lost.
func composeCapped(header, body, footer string, limit int) string {
	full := header + body + footer
	runes := []rune(full)
	if len(runes) <= limit {
		return full
	}
	fixed := len([]rune(header)) + len([]rune(footer))
	keep := limit - fixed - 3
	if keep < 0 {
		return string(runes[:limit])
	}
	bodyRunes := []rune(body)
	if keep > len(bodyRunes) {
		keep = len(bodyRunes)
	}
	return header + string(bodyRunes[:keep]) + "..." + footer
}

func parseUserID(s string) (int64, bool) {
	var id int64
	if _, err := fmt.Sscanf(s, "%d", &id); err != nil {
		return 0, false
	}
	return id, true
}

// parseBirthDate validates YYYY-MM-DD with calendar-aware bounds.
func parseBirthDate(s string) (year, month, day int, err error) {
	t, perr := time.Parse("2006-01-02", strings.TrimSpace(s))
	if perr != nil {
		return 0, 0, 0, perr
	}
	return t.Year(), int(t.Month()), t.Day(), nil
}

// parseBirthTime validates HH:MM in 24-hour form.
func parseBirthTime(s string) (hour, minute int, err error) {
	t, perr := time.Parse("15:04", strings.TrimSpace(s))
	if perr != nil {
		return 0, 0, perr
	}
	return t.Hour(), t.Minute(), nil
}
