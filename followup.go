package mysticbot

import (
	"fmt"
	"strings"
)

// ──────────────────────────────────────────────
// Follow-up detection
// ──────────────────────────────────────────────
//
// A short affirmative reply right after a completed assessment should stay
// anchored to that assessment instead of being treated as a fresh question.

// AssessmentResult is the context summary of a user's last completed
// assessment. At most one is kept per user; each new assessment overwrites it.
type AssessmentResult struct {
	Topic   Topic  `json:"topic"`
	Context string `json:"context"`
}

// followupKeywords per language. Matching is substring-based on the
// lowercased query.
var followupKeywords = map[Language][]string{
	LangEN: {
		"yes", "sure", "please", "tell me more", "more information",
		"explain", "elaborate", "continue", "go on", "and", "what about",
		"could you", "can you", "i'd like", "i would", "give me", "show me",
	},
	LangZH: {
		"是的", "好", "请", "告诉我更多", "更多信息",
		"解释", "详述", "继续", "接着说", "和", "那么",
		"你能", "你可以", "我想", "我希望", "给我", "展示",
	},
}

// followupMaxWords is the word-count ceiling above which a query is always a
// fresh question.
const followupMaxWords = 10

// DetectFollowup decides whether query continues the stored assessment.
// It triggers only when a result exists, the query is short, and a
// language-specific continuation keyword appears. On a hit it returns the
// context info to embed in the prompt.
func DetectFollowup(result *AssessmentResult, query string, lang Language) (bool, string) {
	if result == nil {
		return false, ""
	}
	if len(strings.Fields(query)) >= followupMaxWords {
		return false, ""
	}
	keywords, ok := followupKeywords[lang]
	if !ok {
		keywords = followupKeywords[LangEN]
	}
	lower := strings.ToLower(query)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true, followupContext(result, query, lang)
		}
	}
	return false, ""
}

// followupContext names the prior topic, embeds the stored summary, quotes
// the new query and pins the reply language.
func followupContext(result *AssessmentResult, query string, lang Language) string {
	replyIn := "English"
	if lang == LangZH {
		replyIn = "Chinese"
	}
	return fmt.Sprintf(
		"The user is asking a follow-up question to their %s assessment. "+
			"Their previous context was: %s. The user is now asking: %s. "+
			"Provide more information related to their previous assessment. Respond in %s.",
		result.Topic, result.Context, query, replyIn)
}
