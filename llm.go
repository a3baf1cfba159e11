package mysticbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ──────────────────────────────────────────────
// Language model boundary
// ──────────────────────────────────────────────
//
// One interface, one OpenAI-compatible implementation. The two upstream
// providers this bot has used are both chat-completions drop-ins, so the
// provider choice reduces to base URL + model, picked once at startup.

// ChatRequest is one chat-completion call. Messages carry the system prompt
// first, then history, then the new user turn.
type ChatRequest struct {
	Messages    []ChatTurn
	Temperature float64
	MaxTokens   int
}

// ChatResponse is the generated text plus usage accounting.
type ChatResponse struct {
	Text        string
	TotalTokens int
}

// LanguageModelClient is the chat-completion capability the responder needs.
// Implementations must honor ctx cancellation and return promptly on timeout.
type LanguageModelClient interface {
	Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ──────────────────────────────────────────────
// OpenAI-compatible client
// ──────────────────────────────────────────────

// Default sampling parameters, matching the bot's historical settings.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2048
	defaultLLMTimeout  = 60 * time.Second
)

// LLMConfig configures the chat-completions client.
type LLMConfig struct {
	// Provider selects defaults: "openai" (default) or "deepseek".
	Provider string
	// BaseURL overrides the provider default (no trailing slash).
	BaseURL string
	// APIKey is the bearer token.
	APIKey string
	// Model overrides the provider default model.
	Model string
	// Timeout bounds one call end to end. Zero uses defaultLLMTimeout.
	Timeout time.Duration
}

// OpenAIClient calls any OpenAI-compatible /chat/completions endpoint.
type OpenAIClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewLanguageModelClient builds the configured client. It is the single
// startup-time provider switch.
func NewLanguageModelClient(cfg LLMConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: API key not configured")
	}
	baseURL := cfg.BaseURL
	model := cfg.Model
	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		if model == "" {
			model = "gpt-4o"
		}
	case "deepseek":
		if baseURL == "" {
			baseURL = "https://api.deepseek.com/v1"
		}
		if model == "" {
			model = "deepseek-chat"
		}
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}
	return &OpenAIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   model,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// Wire types for /chat/completions.
type chatCompletionRequest struct {
	Model       string     `json:"model"`
	Messages    []ChatTurn `json:"messages"`
	Temperature float64    `json:"temperature"`
	MaxTokens   int        `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete implements LanguageModelClient.
func (c *OpenAIClient) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	temperature := req.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model:       c.model,
		Messages:    req.Messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llm: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("llm: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("llm: read response: %w", err)
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("llm: decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("llm: upstream error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("llm: status %d: %s", resp.StatusCode, string(data))
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("llm: empty choices in response")
	}

	return &ChatResponse{
		Text:        parsed.Choices[0].Message.Content,
		TotalTokens: parsed.Usage.TotalTokens,
	}, nil
}
