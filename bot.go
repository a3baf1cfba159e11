package mysticbot

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/tianji-io/mystic-agent-go/channel/telegram"
)

// ──────────────────────────────────────────────
// Bot — update handling and lifecycle
// ──────────────────────────────────────────────
//
// Bot wires the transport to the dialogue core: slash commands, inline
// button callbacks and free chat all flow through the Router, wrapped by
// the middleware pipeline. One goroutine per update; per-user state is only
// touched while handling that user's own update.
//
// Usage:
//
//	bot, err := mysticbot.NewBot(cfg, client, sessions, users, convos, llm)
//	bot.Run()
type Bot struct {
	Config *Config
	Client *telegram.Client
	Router *telegram.Router

	sessions  SessionStore
	users     UserStore
	convos    ConversationStore
	responder *ResponseGenerator
	engine    *AssessmentEngine
	tips      *TipScheduler

	pipeline   *MiddlewarePipeline
	onShutdown func(*Bot)
}

// NewBot assembles the bot. users and convos may be nil; the related
// commands then degrade gracefully.
func NewBot(cfg *Config, client *telegram.Client, sessions SessionStore, users UserStore, convos ConversationStore, llm LanguageModelClient) *Bot {
	responder := NewResponseGenerator(llm, sessions, nil)
	engine := NewAssessmentEngine(responder, sessions, convos)

	b := &Bot{
		Config:    cfg,
		Client:    client,
		Router:    telegram.NewRouter(),
		sessions:  sessions,
		users:     users,
		convos:    convos,
		responder: responder,
		engine:    engine,
		pipeline:  NewMiddlewarePipeline(),
	}
	b.Router.SetDebug(cfg.Debug)

	// Interim flow messages (hexagram cast, chart notice) go out immediately,
	// before the terminal generation blocks.
	engine.SetNotifier(func(userID string, p Prompt) {
		if id, ok := parseUserID(userID); ok {
			b.sendPrompt(context.Background(), id, 0, p)
		}
	})

	b.registerHandlers()
	return b
}

// Responder exposes the response generator, e.g. for the tip scheduler.
func (b *Bot) Responder() *ResponseGenerator { return b.responder }

// SetTipScheduler attaches the daily tips scheduler to the bot lifecycle.
func (b *Bot) SetTipScheduler(s *TipScheduler) { b.tips = s }

// Use registers a global middleware (onion model).
func (b *Bot) Use(mw MiddlewareFunc) { b.pipeline.Use(mw) }

// OnPostShutdown registers a callback that runs when the bot is shutting down.
func (b *Bot) OnPostShutdown(fn func(*Bot)) { b.onShutdown = fn }

func (b *Bot) registerHandlers() {
	b.Router.AddCommand("start", b.handleStart)
	b.Router.AddCommand("help", b.handleHelp)
	b.Router.AddCommand("assess", b.handleAssess)
	b.Router.AddCommand("cancel", b.handleCancel)
	b.Router.AddCommand("reset", b.handleReset)
	b.Router.AddCommand("topic", b.handleTopic)
	b.Router.AddCommand("language", b.handleLanguage)
	b.Router.AddCommand("subscribe", b.handleSubscribe)
	b.Router.AddCommand("history", b.handleHistory)

	for _, topic := range AssessmentTopics {
		cmd := strings.ReplaceAll(string(topic), "_", "")
		b.Router.AddCommand(cmd, b.topicInfoHandler(topic))
	}

	b.Router.AddCallbackQuery(".*", b.handleCallback)
	b.Router.AddMessage("private", b.handleMessage)
}

// ─── Lifecycle ───

// Run starts long polling and blocks until interrupted.
func (b *Bot) Run() {
	log.Printf("[Bot] %s", b.Config.Summary())

	// Telegram splits updates between concurrent pollers; refuse to start a
	// second instance for the same token.
	lock, err := telegram.AcquirePollingLock(b.Config.TelegramToken)
	if err != nil {
		log.Fatalf("[Bot] %v", err)
	}
	defer lock.Release()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if b.tips != nil {
		b.tips.Start()
		defer b.tips.Stop()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	updates := b.Client.GetUpdatesChan(ctx)
	go func() {
		log.Println("[Bot] Polling for updates...")
		for update := range updates {
			go b.handleUpdate(ctx, update)
		}
	}()

	log.Println("[Bot] Running. Press Ctrl+C to stop.")
	<-sigChan
	log.Println("[Bot] Shutting down...")

	b.Client.StopReceivingUpdates()
	cancel()

	if b.onShutdown != nil {
		b.onShutdown(b)
	}
	log.Println("[Bot] Goodbye!")
}

// handleUpdate processes a single update with panic recovery.
func (b *Bot) handleUpdate(ctx context.Context, update telegram.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Bot] panic in handler: %v", r)
		}
	}()

	if b.pipeline.Len() > 0 {
		session, _ := GetOrCreateSession(b.sessions, updateUserID(update))
		mwCtx := &MiddlewareContext{
			Ctx:     ctx,
			Update:  update,
			Session: session,
			Extra:   make(map[string]interface{}),
		}
		b.pipeline.Execute(mwCtx, func() {
			mwCtx.Handled = true
			b.Router.Dispatch(b.Client, update)
		})
		return
	}
	b.Router.Dispatch(b.Client, update)
}

// ─── Commands ───

func (b *Bot) handleStart(client *telegram.Client, update telegram.Update) {
	ctx := context.Background()
	from := update.Message.From
	chatID := update.Message.Chat.ID

	if b.users != nil {
		if _, err := b.users.GetOrCreateUser(from.ID, from.UserName, from.FirstName, from.LastName); err != nil {
			log.Printf("[Bot] user registration failed id=%d: %v", from.ID, err)
		}
	}

	lang := b.userLang(from.ID)
	b.send(ctx, chatID, TF(TmplStart, lang, from.FirstName), nil, false)
}

func (b *Bot) handleHelp(client *telegram.Client, update telegram.Update) {
	lang := b.userLang(update.Message.From.ID)
	b.send(context.Background(), update.Message.Chat.ID, T(TmplHelp, lang), nil, false)
}

func (b *Bot) handleAssess(client *telegram.Client, update telegram.Update) {
	ctx := context.Background()
	session := b.loadSession(update.Message.From.ID)
	prompts := b.engine.Begin(session)
	b.sendPrompts(ctx, update.Message.Chat.ID, 0, prompts)
}

func (b *Bot) handleCancel(client *telegram.Client, update telegram.Update) {
	session := b.loadSession(update.Message.From.ID)
	if !b.engine.Active(session) {
		return
	}
	p := b.engine.Cancel(session)
	b.sendPrompt(context.Background(), update.Message.Chat.ID, 0, p)
}

func (b *Bot) handleReset(client *telegram.Client, update telegram.Update) {
	userID := update.Message.From.ID
	lang := b.userLang(userID)
	tmpl := TmplResetNothing
	if b.responder.ResetHistory(strconv.FormatInt(userID, 10)) {
		tmpl = TmplResetDone
	}
	b.send(context.Background(), update.Message.Chat.ID, T(tmpl, lang), nil, false)
}

func (b *Bot) handleTopic(client *telegram.Client, update telegram.Update) {
	ctx := context.Background()
	chatID := update.Message.Chat.ID
	session := b.loadSession(update.Message.From.ID)
	lang := session.Language

	arg := strings.ToLower(update.Message.CommandArguments())
	topic, ok := ParseTopic(arg)
	if !ok {
		b.send(ctx, chatID, T(TmplTopicUsage, lang), nil, false)
		return
	}

	session.Topic = topic
	b.saveSession(session)
	b.send(ctx, chatID, TF(TmplTopicChanged, lang, topic.Emoji(), topic.Title(lang)), nil, false)
}

func (b *Bot) handleLanguage(client *telegram.Client, update telegram.Update) {
	ctx := context.Background()
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	session := b.loadSession(userID)

	arg := strings.ToLower(update.Message.CommandArguments())
	if arg != string(LangEN) && arg != string(LangZH) {
		b.send(ctx, chatID, T(TmplLanguageUsage, session.Language), nil, false)
		return
	}

	lang := ParseLanguage(arg)
	session.Language = lang
	b.saveSession(session)
	if b.users != nil {
		if err := b.users.UpdateUserLanguage(userID, lang); err != nil {
			log.Printf("[Bot] language update failed id=%d: %v", userID, err)
		}
	}
	b.send(ctx, chatID, T(TmplLanguageChanged, lang), nil, false)
}

func (b *Bot) handleSubscribe(client *telegram.Client, update telegram.Update) {
	ctx := context.Background()
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	lang := b.userLang(userID)

	if b.users == nil {
		b.send(ctx, chatID, T(TmplSubscribeNoUser, lang), nil, false)
		return
	}

	switch strings.ToLower(update.Message.CommandArguments()) {
	case "on":
		if err := b.users.UpdateUserSubscription(userID, true); err != nil {
			log.Printf("[Bot] subscription update failed id=%d: %v", userID, err)
			b.send(ctx, chatID, T(TmplSubscribeNoUser, lang), nil, false)
			return
		}
		b.send(ctx, chatID, T(TmplSubscribedOn, lang), nil, false)
	case "off":
		if err := b.users.UpdateUserSubscription(userID, false); err != nil {
			log.Printf("[Bot] subscription update failed id=%d: %v", userID, err)
			b.send(ctx, chatID, T(TmplSubscribeNoUser, lang), nil, false)
			return
		}
		b.send(ctx, chatID, T(TmplSubscribedOff, lang), nil, false)
	case "":
		user, err := b.users.GetUser(userID)
		if err != nil || user == nil {
			b.send(ctx, chatID, T(TmplSubscribeNoUser, lang), nil, false)
			return
		}
		b.send(ctx, chatID, TF(TmplSubscribeStatus, lang, user.SubscribedToTips), nil, false)
	default:
		b.send(ctx, chatID, T(TmplSubscribeUsage, lang), nil, false)
	}
}

func (b *Bot) handleHistory(client *telegram.Client, update telegram.Update) {
	ctx := context.Background()
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	lang := b.userLang(userID)

	if b.convos == nil {
		b.send(ctx, chatID, T(TmplHistoryError, lang), nil, false)
		return
	}
	entries, err := b.convos.UserConversations(userID, 5)
	if err != nil {
		log.Printf("[Bot] history lookup failed id=%d: %v", userID, err)
		b.send(ctx, chatID, T(TmplHistoryError, lang), nil, false)
		return
	}
	if len(entries) == 0 {
		b.send(ctx, chatID, T(TmplHistoryNone, lang), nil, false)
		return
	}

	var sb strings.Builder
	sb.WriteString(T(TmplHistoryHeader, lang))
	for i, e := range entries {
		input := TruncateMessage(e.Input, 60)
		fmt.Fprintf(&sb, "%d. %s [%s]\n   %s\n", i+1, e.CreatedAt.Format("2006-01-02 15:04"), e.Topic, input)
	}
	b.send(ctx, chatID, sb.String(), nil, false)
}

// topicInfoHandler serves the per-topic info commands (/fengshui, /mbti, …):
// pin the topic, show what can be asked, log the exchange.
func (b *Bot) topicInfoHandler(topic Topic) telegram.HandlerFunc {
	return func(client *telegram.Client, update telegram.Update) {
		ctx := context.Background()
		chatID := update.Message.Chat.ID
		userID := update.Message.From.ID

		session := b.loadSession(userID)
		session.Topic = topic
		b.saveSession(session)

		text := topicIntro(topic, session.Language)
		if b.convos != nil {
			cmd := "/" + strings.ReplaceAll(string(topic), "_", "")
			if err := b.convos.LogConversation(userID, cmd, text, topic); err != nil {
				log.Printf("[Bot] conversation log failed id=%d: %v", userID, err)
			}
		}
		b.send(ctx, chatID, text, nil, false)
	}
}

// ─── Callbacks and free chat ───

func (b *Bot) handleCallback(client *telegram.Client, update telegram.Update) {
	ctx := context.Background()
	cq := update.CallbackQuery
	if err := client.AnswerCallbackQuery(ctx, cq.ID); err != nil {
		log.Printf("[Bot] callback ack failed: %v", err)
	}
	if cq.Message == nil || cq.From == nil {
		return
	}
	chatID := cq.Message.Chat.ID

	session := b.loadSession(cq.From.ID)
	if !b.engine.Active(session) {
		return
	}

	stop := KeepTyping(ctx, client, chatID)
	prompts, err := b.engine.HandleChoice(ctx, session, cq.Data)
	stop()
	if err != nil {
		log.Printf("[Bot] assessment choice failed user=%d: %v", cq.From.ID, err)
	}
	b.sendPrompts(ctx, chatID, cq.Message.MessageID, prompts)
}

func (b *Bot) handleMessage(client *telegram.Client, update telegram.Update) {
	ctx := context.Background()
	msg := update.Message
	chatID := msg.Chat.ID
	userID := msg.From.ID
	session := b.loadSession(userID)

	// An in-progress assessment consumes all text input.
	if b.engine.Active(session) {
		stop := KeepTyping(ctx, client, chatID)
		prompts, err := b.engine.HandleInput(ctx, session, msg.Text)
		stop()
		if err != nil {
			log.Printf("[Bot] assessment input failed user=%d: %v", userID, err)
		}
		b.sendPrompts(ctx, chatID, 0, prompts)
		return
	}

	// Free chat: route the topic, then one generation round.
	topic := RouteTopic(msg.Text, session.Topic)
	lang := session.Language

	stop := KeepTyping(ctx, client, chatID)
	text, err := b.responder.Generate(ctx, topic, msg.Text, strconv.FormatInt(userID, 10), lang)
	stop()

	if err == nil && b.convos != nil {
		if logErr := b.convos.LogConversation(userID, msg.Text, text, topic); logErr != nil {
			log.Printf("[Bot] conversation log failed id=%d: %v", userID, logErr)
		}
	}
	b.send(ctx, chatID, text, nil, false)
}

// ─── Session and delivery helpers ───

func updateUserID(update telegram.Update) string {
	if update.Message != nil && update.Message.From != nil {
		return strconv.FormatInt(update.Message.From.ID, 10)
	}
	if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
		return strconv.FormatInt(update.CallbackQuery.From.ID, 10)
	}
	return ""
}

// loadSession fetches the dialogue state, seeding the language preference
// from the user profile on first contact.
func (b *Bot) loadSession(userID int64) *Session {
	session, err := GetOrCreateSession(b.sessions, strconv.FormatInt(userID, 10))
	if err != nil {
		log.Printf("[Bot] session load failed id=%d: %v", userID, err)
		session = &Session{UserID: strconv.FormatInt(userID, 10), Language: b.Config.DefaultLanguage}
	}
	if session.Language == "" {
		session.Language = b.userLang(userID)
	}
	return session
}

func (b *Bot) saveSession(session *Session) {
	if err := b.sessions.Put(session); err != nil {
		log.Printf("[Bot] session save failed user=%s: %v", session.UserID, err)
	}
}

// userLang resolves the stored language preference, falling back to the
// configured default.
func (b *Bot) userLang(userID int64) Language {
	if b.users != nil {
		if user, err := b.users.GetUser(userID); err == nil && user != nil && user.Language != "" {
			return ParseLanguage(string(user.Language))
		}
	}
	return b.Config.DefaultLanguage
}

func (b *Bot) sendPrompts(ctx context.Context, chatID int64, lastMsgID int, prompts []Prompt) {
	for _, p := range prompts {
		b.sendPrompt(ctx, chatID, lastMsgID, p)
	}
}

func (b *Bot) sendPrompt(ctx context.Context, chatID int64, lastMsgID int, p Prompt) {
	markup := choicesToMarkup(p.Choices)
	parseMode := ""
	if p.HTML {
		parseMode = "HTML"
	}

	if p.EditLast && lastMsgID != 0 {
		err := b.Client.EditMessageText(ctx, telegram.EditMessageParams{
			ChatID:      chatID,
			MessageID:   lastMsgID,
			Text:        p.Text,
			ParseMode:   parseMode,
			ReplyMarkup: markup,
		})
		if err == nil {
			return
		}
		log.Printf("[Bot] edit failed chat=%d, sending fresh message: %v", chatID, err)
	}
	b.send(ctx, chatID, p.Text, markup, p.HTML)
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, markup *telegram.InlineKeyboardMarkup, html bool) {
	parseMode := ""
	if html {
		parseMode = "HTML"
	}
	_, err := b.Client.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   parseMode,
		ReplyMarkup: markup,
	})
	if err == nil {
		return
	}
	if html {
		// HTML markup from the model can be malformed; retry as plain text.
		plain := strings.NewReplacer("<b>", "", "</b>", "", "<i>", "", "</i>", "").Replace(text)
		if _, err2 := b.Client.SendMessage(ctx, telegram.SendMessageParams{ChatID: chatID, Text: plain, ReplyMarkup: markup}); err2 == nil {
			return
		}
	}
	log.Printf("[Bot] send failed chat=%d: %v", chatID, err)
}

func choicesToMarkup(choices [][]Choice) *telegram.InlineKeyboardMarkup {
	if len(choices) == 0 {
		return nil
	}
	rows := make([][]telegram.InlineKeyboardButton, 0, len(choices))
	for _, row := range choices {
		buttons := make([]telegram.InlineKeyboardButton, 0, len(row))
		for _, c := range row {
			buttons = append(buttons, telegram.InlineKeyboardButton{Text: c.Label, Data: c.Data})
		}
		rows = append(rows, buttons)
	}
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}
