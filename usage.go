package mysticbot

import (
	"fmt"
	"time"

	"go.uber.org/atomic"
)

// ──────────────────────────────────────────────
// Usage accounting
// ──────────────────────────────────────────────

// UsageTracker counts LLM calls and tokens across all users. Counters are
// approximate metrics only; cross-user increments tolerate benign races.
type UsageTracker struct {
	totalTokens atomic.Int64
	apiCalls    atomic.Int64
	startedAt   time.Time
}

// NewUsageTracker starts the uptime clock now.
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{startedAt: time.Now()}
}

// RecordCall counts one completed LLM call and its token usage.
func (u *UsageTracker) RecordCall(tokens int) {
	u.apiCalls.Inc()
	u.totalTokens.Add(int64(tokens))
}

// UsageStats is one observability snapshot.
type UsageStats struct {
	TotalTokens   int64   `json:"total_tokens"`
	APICalls      int64   `json:"api_calls"`
	UptimeHours   float64 `json:"uptime_hours"`
	TokensPerHour int64   `json:"tokens_per_hour"`
	CallsPerHour  int64   `json:"calls_per_hour"`
	EstimatedCost string  `json:"estimated_cost"`
}

// Stats snapshots the counters with hourly rates and a rough cost estimate
// ($0.01 per 1K tokens).
func (u *UsageTracker) Stats() UsageStats {
	tokens := u.totalTokens.Load()
	calls := u.apiCalls.Load()
	hours := time.Since(u.startedAt).Hours()
	divisor := hours
	if divisor < 1 {
		divisor = 1
	}
	return UsageStats{
		TotalTokens:   tokens,
		APICalls:      calls,
		UptimeHours:   hours,
		TokensPerHour: int64(float64(tokens) / divisor),
		CallsPerHour:  int64(float64(calls) / divisor),
		EstimatedCost: fmt.Sprintf("$%.4f", float64(tokens)/1000*0.01),
	}
}
