package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// ──────────────────────────────────────────────
// Low-level Bot API client
// ──────────────────────────────────────────────

const (
	defaultAPIEndpoint = "https://api.telegram.org/bot%s/%s"
	defaultTimeout     = 30 * time.Second

	// pollTimeout is the long-poll wait passed to getUpdates, seconds.
	pollTimeout = 60
)

// Client talks to the Telegram Bot API over HTTPS.
//
// Usage:
//
//	client, err := telegram.NewClient(token)
//	client.SendMessage(ctx, telegram.SendMessageParams{ChatID: id, Text: "Hello!"})
type Client struct {
	Token string
	Debug bool

	endpoint string
	http     *http.Client

	stopCh chan struct{}
}

// NewClient creates a client against the standard Bot API endpoint.
func NewClient(token string) (*Client, error) {
	return NewClientWithEndpoint(token, defaultAPIEndpoint)
}

// NewClientWithEndpoint creates a client against a custom endpoint; the
// format string receives the token and method name.
func NewClientWithEndpoint(token, endpoint string) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("telegram: empty bot token")
	}
	return &Client{
		Token:    token,
		endpoint: endpoint,
		http: &http.Client{
			// Long polls need headroom beyond the per-call default.
			Timeout: defaultTimeout + pollTimeout*time.Second,
		},
		stopCh: make(chan struct{}),
	}, nil
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
}

// request posts params to the named API method and decodes the result into
// out (which may be nil).
func (c *Client) request(ctx context.Context, method string, params, out interface{}) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("telegram: marshal %s: %w", method, err)
	}

	url := fmt.Sprintf(c.endpoint, c.Token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.Debug {
		log.Printf("[Telegram] → %s %s", method, body)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("telegram: read %s response: %w", method, err)
	}

	var api apiResponse
	if err := json.Unmarshal(raw, &api); err != nil {
		return fmt.Errorf("telegram: decode %s response: %w", method, err)
	}
	if !api.OK {
		return fmt.Errorf("telegram: %s failed: %s (code %d)", method, api.Description, api.ErrorCode)
	}
	if out != nil && len(api.Result) > 0 {
		if err := json.Unmarshal(api.Result, out); err != nil {
			return fmt.Errorf("telegram: decode %s result: %w", method, err)
		}
	}
	return nil
}

// SendMessageParams are the fields for sendMessage.
type SendMessageParams struct {
	ChatID      int64                 `json:"chat_id"`
	Text        string                `json:"text"`
	ParseMode   string                `json:"parse_mode,omitempty"` // "HTML", "Markdown"
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// SendMessage delivers a message and returns the sent copy.
func (c *Client) SendMessage(ctx context.Context, params SendMessageParams) (*Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	var msg Message
	if err := c.request(ctx, "sendMessage", params, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EditMessageParams are the fields for editMessageText.
type EditMessageParams struct {
	ChatID      int64                 `json:"chat_id"`
	MessageID   int                   `json:"message_id"`
	Text        string                `json:"text"`
	ParseMode   string                `json:"parse_mode,omitempty"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// EditMessageText rewrites a previously sent message in place.
func (c *Client) EditMessageText(ctx context.Context, params EditMessageParams) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return c.request(ctx, "editMessageText", params, nil)
}

// SendTyping emits the transient "typing..." chat action.
func (c *Client) SendTyping(ctx context.Context, chatID int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	params := struct {
		ChatID int64  `json:"chat_id"`
		Action string `json:"action"`
	}{ChatID: chatID, Action: "typing"}
	return c.request(ctx, "sendChatAction", params, nil)
}

// AnswerCallbackQuery acknowledges a button press so the client stops
// showing its progress spinner.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	params := struct {
		CallbackQueryID string `json:"callback_query_id"`
	}{CallbackQueryID: callbackID}
	return c.request(ctx, "answerCallbackQuery", params, nil)
}

// GetUpdates performs one long poll starting at offset.
func (c *Client) GetUpdates(ctx context.Context, offset int) ([]Update, error) {
	params := struct {
		Offset  int `json:"offset"`
		Timeout int `json:"timeout"`
	}{Offset: offset, Timeout: pollTimeout}
	var updates []Update
	if err := c.request(ctx, "getUpdates", params, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// GetUpdatesChan starts a long-poll loop and streams updates on the
// returned channel until StopReceivingUpdates is called or ctx ends.
func (c *Client) GetUpdatesChan(ctx context.Context) <-chan Update {
	ch := make(chan Update, 100)

	go func() {
		defer close(ch)
		offset := 0
		for {
			select {
			case <-c.stopCh:
				return
			case <-ctx.Done():
				return
			default:
			}

			updates, err := c.GetUpdates(ctx, offset)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("[Telegram] getUpdates failed, retrying in 3s: %v", err)
				select {
				case <-time.After(3 * time.Second):
				case <-c.stopCh:
					return
				case <-ctx.Done():
					return
				}
				continue
			}

			for _, u := range updates {
				if u.UpdateID >= offset {
					offset = u.UpdateID + 1
				}
				select {
				case ch <- u:
				case <-c.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch
}

// StopReceivingUpdates ends the GetUpdatesChan loop.
func (c *Client) StopReceivingUpdates() {
	select {
	case <-c.stopCh:
	default:
		close(c.stopCh)
	}
}
