package main

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	mysticbot "github.com/tianji-io/mystic-agent-go"
	"github.com/tianji-io/mystic-agent-go/channel/telegram"
	"github.com/tianji-io/mystic-agent-go/store"
)

func main() {
	cfg, err := mysticbot.NewConfigFromEnv()
	if err != nil {
		log.Fatalf("[Main] config: %v", err)
	}
	mysticbot.SetupLogging(cfg)

	var client *telegram.Client
	if cfg.TelegramAPIBaseURL != "" {
		client, err = telegram.NewClientWithEndpoint(cfg.TelegramToken, cfg.TelegramAPIBaseURL+"%s/%s")
	} else {
		client, err = telegram.NewClient(cfg.TelegramToken)
	}
	if err != nil {
		log.Fatalf("[Main] telegram client: %v", err)
	}
	client.Debug = cfg.Debug

	// Sessions: Redis when configured, in-memory otherwise.
	var sessions mysticbot.SessionStore
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("[Main] redis url: %v", err)
		}
		redisStore := store.NewRedisSessionStore(redis.NewClient(opts))
		defer redisStore.Close()
		sessions = redisStore
		log.Println("[Main] Sessions: redis")
	} else {
		sessions = mysticbot.NewInMemorySessionStore(0)
		log.Println("[Main] Sessions: in-memory")
	}

	db, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("[Main] sqlite: %v", err)
	}
	defer db.Close()

	llm, err := mysticbot.NewLanguageModelClient(cfg.LLM())
	if err != nil {
		log.Fatalf("[Main] llm client: %v", err)
	}

	bot := mysticbot.NewBot(cfg, client, sessions, db, db, llm)

	tips := mysticbot.NewTipScheduler(bot.Responder(), db, func(userID int64, text string, html bool) error {
		params := telegram.SendMessageParams{ChatID: userID, Text: text}
		if html {
			params.ParseMode = "HTML"
		}
		_, err := client.SendMessage(context.Background(), params)
		return err
	}, time.Minute)
	bot.SetTipScheduler(tips)

	health := mysticbot.NewHealthServer(cfg.HealthAddr, bot.Responder().Usage())
	health.Start()

	keepAliveCtx, cancelKeepAlive := context.WithCancel(context.Background())
	mysticbot.KeepAlive(keepAliveCtx, cfg.KeepAliveURL)

	bot.OnPostShutdown(func(*mysticbot.Bot) {
		cancelKeepAlive()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		health.Stop(shutdownCtx)
	})

	bot.Run()
}
