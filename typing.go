package mysticbot

import (
	"context"
	"log"
	"time"
)

// typingRefreshInterval keeps the transport's typing indicator alive; the
// indicator itself expires after roughly five seconds.
const typingRefreshInterval = 4 * time.Second

// TypingSender is the transport capability for the liveness signal.
type TypingSender interface {
	SendTyping(ctx context.Context, chatID int64) error
}

// KeepTyping signals "typing" immediately and refreshes it until the
// returned stop function is called or ctx is cancelled. The background
// goroutine never outlives the handling of one update.
//
// Usage:
//
//	stop := mysticbot.KeepTyping(ctx, transport, chatID)
//	defer stop()
func KeepTyping(ctx context.Context, sender TypingSender, chatID int64) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := sender.SendTyping(ctx, chatID); err != nil && ctx.Err() == nil {
			log.Printf("[Typing] send failed chat=%d: %v", chatID, err)
		}
		ticker := time.NewTicker(typingRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := sender.SendTyping(ctx, chatID); err != nil && ctx.Err() == nil {
					log.Printf("[Typing] send failed chat=%d: %v", chatID, err)
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
