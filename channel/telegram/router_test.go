package telegram

import (
	"testing"
)

func cmdUpdate(text string) Update {
	return Update{Message: &Message{
		Text: text,
		Chat: &Chat{ID: 1, Type: "private"},
		Entities: []MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len(text)},
		},
	}}
}

func textUpdate(text, chatType string) Update {
	return Update{Message: &Message{Text: text, Chat: &Chat{ID: 1, Type: chatType}}}
}

func TestRouter_CommandDispatch(t *testing.T) {
	r := NewRouter()
	var got string
	r.AddCommand("start", func(_ *Client, u Update) { got = u.Message.Command() })

	if !r.Dispatch(nil, cmdUpdate("/start")) {
		t.Fatal("registered command should dispatch")
	}
	if got != "start" {
		t.Fatalf("handler saw command %q, want start", got)
	}
}

func TestRouter_CommandWithBotSuffix(t *testing.T) {
	r := NewRouter()
	called := false
	r.AddCommand("help", func(_ *Client, _ Update) { called = true })

	if !r.Dispatch(nil, cmdUpdate("/help@mystic_bot")) {
		t.Fatal("command with @botname suffix should dispatch")
	}
	if !called {
		t.Fatal("handler not invoked")
	}
}

func TestRouter_UnknownCommandFallsThrough(t *testing.T) {
	r := NewRouter()
	fellThrough := false
	r.AddMessage("all", func(_ *Client, _ Update) { fellThrough = true })

	if !r.Dispatch(nil, cmdUpdate("/unknown")) {
		t.Fatal("unknown command should fall through to message handlers")
	}
	if !fellThrough {
		t.Fatal("message handler not invoked")
	}
}

func TestRouter_CallbackRegex(t *testing.T) {
	r := NewRouter()
	var got string
	r.AddCallbackQuery("^room_", func(_ *Client, u Update) { got = u.CallbackQuery.Data })
	r.AddCallbackQuery(".*", func(_ *Client, u Update) { got = "fallback:" + u.CallbackQuery.Data })

	r.Dispatch(nil, Update{CallbackQuery: &CallbackQuery{Data: "room_bedroom"}})
	if got != "room_bedroom" {
		t.Fatalf("specific pattern should win registration order, got %q", got)
	}

	r.Dispatch(nil, Update{CallbackQuery: &CallbackQuery{Data: "mbti"}})
	if got != "fallback:mbti" {
		t.Fatalf("catch-all should handle the rest, got %q", got)
	}
}

func TestRouter_MessageFilters(t *testing.T) {
	cases := []struct {
		filter   string
		chatType string
		want     bool
	}{
		{"private", "private", true},
		{"private", "group", false},
		{"group", "group", true},
		{"group", "supergroup", true},
		{"group", "private", false},
		{"all", "channel", true},
	}
	for _, tc := range cases {
		r := NewRouter()
		called := false
		r.AddMessage(tc.filter, func(_ *Client, _ Update) { called = true })
		r.Dispatch(nil, textUpdate("hello", tc.chatType))
		if called != tc.want {
			t.Errorf("filter=%s chatType=%s: called=%v, want %v", tc.filter, tc.chatType, called, tc.want)
		}
	}
}

func TestRouter_NoHandlerReturnsFalse(t *testing.T) {
	r := NewRouter()
	if r.Dispatch(nil, textUpdate("hello", "private")) {
		t.Fatal("dispatch with no handlers should return false")
	}
}

func TestRouter_InvalidCallbackPatternIgnored(t *testing.T) {
	r := NewRouter()
	r.AddCallbackQuery("([", func(_ *Client, _ Update) {})
	if r.Dispatch(nil, Update{CallbackQuery: &CallbackQuery{Data: "x"}}) {
		t.Fatal("invalid pattern must not register a route")
	}
}
