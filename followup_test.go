package mysticbot

import (
	"strings"
	"testing"
)

// ══════════════════════════════════════════════
// Follow-up detection
// ══════════════════════════════════════════════

func TestDetectFollowup_Triggers(t *testing.T) {
	result := &AssessmentResult{Topic: TopicMBTI, Context: "MBTI assessment for Ana with personality type ENFJ."}
	ok, info := DetectFollowup(result, "yes, tell me more", LangEN)
	if !ok {
		t.Fatal("short keyword query after an assessment must trigger")
	}
	if !strings.Contains(info, "mbti") {
		t.Fatalf("context must name the prior topic: %q", info)
	}
	if !strings.Contains(info, result.Context) {
		t.Fatalf("context must embed the stored summary: %q", info)
	}
	if !strings.Contains(info, "tell me more") {
		t.Fatalf("context must quote the new query: %q", info)
	}
	if !strings.Contains(info, "English") {
		t.Fatalf("context must pin the reply language: %q", info)
	}
}

func TestDetectFollowup_NoStoredResult(t *testing.T) {
	if ok, _ := DetectFollowup(nil, "yes please", LangEN); ok {
		t.Fatal("no stored assessment: must not trigger")
	}
}

func TestDetectFollowup_LongQueryIsFresh(t *testing.T) {
	result := &AssessmentResult{Topic: TopicBaZi, Context: "Ba Zi reading."}
	long := "yes but actually I want to ask you about something entirely different today"
	if ok, _ := DetectFollowup(result, long, LangEN); ok {
		t.Fatal("ten or more words must be treated as a fresh question")
	}
}

func TestDetectFollowup_NoKeyword(t *testing.T) {
	result := &AssessmentResult{Topic: TopicBaZi, Context: "Ba Zi reading."}
	if ok, _ := DetectFollowup(result, "what is feng shui?", LangEN); ok {
		t.Fatal("query without continuation keywords must not trigger")
	}
}

func TestDetectFollowup_Chinese(t *testing.T) {
	result := &AssessmentResult{Topic: TopicZiWei, Context: "紫微斗数解读。"}
	ok, info := DetectFollowup(result, "请告诉我更多", LangZH)
	if !ok {
		t.Fatal("chinese continuation keyword must trigger")
	}
	if !strings.Contains(info, "Chinese") {
		t.Fatalf("context must pin the reply language: %q", info)
	}
}

func TestFollowupPrompt_EmbedsBoth(t *testing.T) {
	p := FollowupPrompt("CTX", "more please", LangEN)
	if !strings.Contains(p, "CTX") || !strings.Contains(p, "more please") {
		t.Fatalf("prompt must carry context and query: %q", p)
	}
}
