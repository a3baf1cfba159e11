package mysticbot

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// ──────────────────────────────────────────────
// Daily tips scheduler
// ──────────────────────────────────────────────
//
// Every subscribed user gets one short generated tip per day at 09:00 local
// time. The topic rotates by weekday over the five assessment topics. The
// poll loop fires catch-up sends too: a restart after 09:00 still delivers
// that day's tips, guarded by the sent-today record.

// tipSendHour is the local hour at and after which the day's tips go out.
const tipSendHour = 9

// TipSendFn delivers a tip to a user. Injected by the caller.
type TipSendFn func(userID int64, text string, html bool) error

// TipScheduler runs the daily rotation in a background goroutine.
//
// Usage:
//
//	sched := mysticbot.NewTipScheduler(gen, users, sendFn, time.Minute)
//	sched.Start()
//	defer sched.Stop()
type TipScheduler struct {
	responder *ResponseGenerator
	users     UserStore
	sendFn    TipSendFn
	interval  time.Duration
	now       func() time.Time // injectable for tests

	mu       sync.Mutex
	sentDate map[int64]string // userID -> "2006-01-02"
	stopCh   chan struct{}
	running  bool
}

// NewTipScheduler creates a scheduler polling at the given interval.
func NewTipScheduler(responder *ResponseGenerator, users UserStore, sendFn TipSendFn, interval time.Duration) *TipScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &TipScheduler{
		responder: responder,
		users:     users,
		sendFn:    sendFn,
		interval:  interval,
		now:       time.Now,
		sentDate:  make(map[int64]string),
		stopCh:    make(chan struct{}),
	}
}

// TipTopicFor returns the topic for the given day's rotation, which starts
// on Monday.
func TipTopicFor(day time.Time) Topic {
	weekday := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return AssessmentTopics[weekday%len(AssessmentTopics)]
}

// Start launches the background poll loop. Non-blocking.
func (s *TipScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	go s.pollLoop()
	log.Printf("[TipScheduler] Started (interval=%s, send hour=%02d:00)", s.interval, tipSendHour)
}

// Stop halts the background poll loop.
func (s *TipScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
	log.Println("[TipScheduler] Stopped")
}

func (s *TipScheduler) pollLoop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.RunOnce(context.Background())
		}
	}
}

// RunOnce performs one poll cycle: outside the send window it is a no-op,
// inside it every subscriber who has not received today's tip gets one.
func (s *TipScheduler) RunOnce(ctx context.Context) {
	now := s.now()
	if now.Hour() < tipSendHour {
		return
	}
	today := now.Format("2006-01-02")
	topic := TipTopicFor(now)

	subscribers, err := s.users.SubscribedUsers()
	if err != nil {
		log.Printf("[TipScheduler] subscriber lookup failed: %v", err)
		return
	}
	if len(subscribers) == 0 {
		return
	}

	for _, user := range subscribers {
		if s.alreadySent(user.ID, today) {
			continue
		}
		lang := ParseLanguage(string(user.Language))

		tip, err := s.GenerateTip(ctx, topic, lang)
		if err != nil {
			log.Printf("[TipScheduler] tip generation failed user=%d: %v", user.ID, err)
			continue
		}

		if err := s.sendFn(user.ID, tip, true); err != nil {
			log.Printf("[TipScheduler] send failed user=%d: %v", user.ID, err)
			continue
		}
		s.recordSent(user.ID, today)
		log.Printf("[TipScheduler] Sent | topic=%s user=%d lang=%s", topic, user.ID, lang)
	}
}

// GenerateTip produces one formatted daily tip for the topic and language.
// Exposed so callers can preview or force a tip outside the schedule.
func (s *TipScheduler) GenerateTip(ctx context.Context, topic Topic, lang Language) (string, error) {
	query := fmt.Sprintf(
		"Generate a short, insightful daily tip about %s that would be valuable to most people.", topic)

	// One-off generation: no user ID, no history.
	tip, err := s.responder.Generate(ctx, topic, query, "", lang)
	if err != nil {
		return "", err
	}

	emoji := topic.Emoji()
	title := TF(TmplDailyTipTitle, lang, emoji, topic.Title(lang), emoji)
	return fmt.Sprintf("<b>%s</b>\n\n%s", title, tip), nil
}

func (s *TipScheduler) alreadySent(userID int64, today string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sentDate[userID] == today
}

func (s *TipScheduler) recordSent(userID int64, today string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sentDate[userID] = today
}
