package store

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	mysticbot "github.com/tianji-io/mystic-agent-go"
)

func newTestRedis(t *testing.T, cfg ...RedisStoreConfig) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisSessionStore(client, cfg...)
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestRedis_RoundTrip(t *testing.T) {
	store, _ := newTestRedis(t)

	got, err := store.Get("42")
	if err != nil || got != nil {
		t.Fatalf("unknown user: got %v, %v; want nil, nil", got, err)
	}

	session := &mysticbot.Session{
		UserID:   "42",
		Topic:    mysticbot.TopicFengShui,
		Language: mysticbot.LangZH,
		Assessment: &mysticbot.ActiveAssessment{
			Topic: mysticbot.TopicFengShui,
			Step:  mysticbot.StepBirthDate,
			Name:  "Ana",
			Data:  &mysticbot.FengShuiData{Room: "bedroom"},
		},
	}
	session.AppendTurn(mysticbot.RoleUser, "hello")
	if err := store.Put(session); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err = store.Get("42")
	if err != nil || got == nil {
		t.Fatalf("Get: %v, %v", got, err)
	}
	if got.Topic != mysticbot.TopicFengShui || got.Language != mysticbot.LangZH {
		t.Fatalf("session fields lost: %+v", got)
	}
	if len(got.History) != 1 || got.History[0].Content != "hello" {
		t.Fatalf("history lost: %+v", got.History)
	}
	fs, ok := got.Assessment.Data.(*mysticbot.FengShuiData)
	if !ok || fs.Room != "bedroom" {
		t.Fatalf("assessment data decoded as %T: %+v", got.Assessment.Data, got.Assessment.Data)
	}
}

func TestRedis_Clear(t *testing.T) {
	store, _ := newTestRedis(t)
	store.Put(&mysticbot.Session{UserID: "7"})

	if err := store.Clear("7"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got, _ := store.Get("7"); got != nil {
		t.Fatal("session must be gone after Clear")
	}
}

func TestRedis_TTL(t *testing.T) {
	store, mr := newTestRedis(t, RedisStoreConfig{TTL: time.Hour})
	store.Put(&mysticbot.Session{UserID: "7"})

	if ttl := mr.TTL("mysticbot:session:7"); ttl != time.Hour {
		t.Fatalf("ttl = %s, want 1h", ttl)
	}

	mr.FastForward(2 * time.Hour)
	if got, _ := store.Get("7"); got != nil {
		t.Fatal("session must expire with its key")
	}
}

func TestRedis_PrefixNamespacing(t *testing.T) {
	store, mr := newTestRedis(t, RedisStoreConfig{Prefix: "other"})
	store.Put(&mysticbot.Session{UserID: "1"})

	if !mr.Exists("other:session:1") {
		t.Fatal("keys must live under the configured prefix")
	}
}
