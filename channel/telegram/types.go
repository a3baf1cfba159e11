package telegram

import "strings"

// Update is one incoming event from the Bot API.
type Update struct {
	UpdateID      int            `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// Message is an inbound or outbound chat message.
type Message struct {
	MessageID int                   `json:"message_id"`
	From      *User                 `json:"from,omitempty"`
	Chat      *Chat                 `json:"chat,omitempty"`
	Date      int64                 `json:"date"`
	Text      string                `json:"text,omitempty"`
	Entities  []MessageEntity       `json:"entities,omitempty"`
	Markup    *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// MessageEntity marks a span of special text inside a message.
type MessageEntity struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

// IsCommand reports whether the message starts with a bot command.
func (m *Message) IsCommand() bool {
	if m == nil || m.Text == "" {
		return false
	}
	if len(m.Entities) > 0 {
		e := m.Entities[0]
		return e.Type == "bot_command" && e.Offset == 0
	}
	return strings.HasPrefix(m.Text, "/")
}

// Command returns the command name without the leading slash or any
// @botname suffix, or "" for non-command messages.
func (m *Message) Command() string {
	if !m.IsCommand() {
		return ""
	}
	cmd := strings.Fields(m.Text)[0][1:]
	if at := strings.Index(cmd, "@"); at >= 0 {
		cmd = cmd[:at]
	}
	return cmd
}

// CommandArguments returns everything after the command token.
func (m *Message) CommandArguments() string {
	if !m.IsCommand() {
		return ""
	}
	fields := strings.SplitN(m.Text, " ", 2)
	if len(fields) < 2 {
		return ""
	}
	return strings.TrimSpace(fields[1])
}

// User is a Telegram account.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	UserName  string `json:"username,omitempty"`
}

// Chat is the conversation a message belongs to.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"` // "private", "group", "supergroup", "channel"
}

// CallbackQuery is a button press on an inline keyboard.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    *User    `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

// InlineKeyboardMarkup is a grid of inline buttons attached to a message.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// InlineKeyboardButton is one button; Data comes back in a CallbackQuery.
type InlineKeyboardButton struct {
	Text string `json:"text"`
	Data string `json:"callback_data"`
}

// NewInlineKeyboard builds a markup from button rows.
func NewInlineKeyboard(rows ...[]InlineKeyboardButton) *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}
