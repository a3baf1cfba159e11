package mysticbot

// ──────────────────────────────────────────────
// Channel re-exports — stable public API
// ──────────────────────────────────────────────
//
// This file re-exports the most commonly used types from channel/telegram
// so that external users only need a single import:
//
//	import mysticbot "github.com/tianji-io/mystic-agent-go"
//
//	client, _ := mysticbot.NewTelegramClient(token)
//
// For advanced transport types, import the sub-package directly:
//
//	import "github.com/tianji-io/mystic-agent-go/channel/telegram"

import "github.com/tianji-io/mystic-agent-go/channel/telegram"

// ─── Core types ───

// TelegramClient is the low-level Bot API client.
type TelegramClient = telegram.Client

// Update represents an incoming update from the platform.
type Update = telegram.Update

// Message represents a message in a chat.
type Message = telegram.Message

// TelegramUser represents the transport-level user record.
type TelegramUser = telegram.User

// Chat represents a chat (private, group, supergroup, or channel).
type Chat = telegram.Chat

// ─── Handler & routing ───

// HandlerFunc is the function signature for update handlers.
type HandlerFunc = telegram.HandlerFunc

// Router dispatches incoming updates to registered handlers.
type Router = telegram.Router

// ─── UI types ───

// CallbackQuery represents an incoming callback query from a callback button.
type CallbackQuery = telegram.CallbackQuery

// InlineKeyboardMarkup represents an inline keyboard.
type InlineKeyboardMarkup = telegram.InlineKeyboardMarkup

// InlineKeyboardButton represents one button of an inline keyboard.
type InlineKeyboardButton = telegram.InlineKeyboardButton

// ─── Constructors ───

// NewTelegramClient creates a new Bot API client with the default endpoint.
var NewTelegramClient = telegram.NewClient

// NewTelegramClientWithEndpoint creates a Bot API client with a custom endpoint.
var NewTelegramClientWithEndpoint = telegram.NewClientWithEndpoint

// NewRouter creates an empty router.
var NewRouter = telegram.NewRouter

// NewInlineKeyboard creates an inline keyboard markup from button rows.
var NewInlineKeyboard = telegram.NewInlineKeyboard
