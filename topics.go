package mysticbot

import (
	"fmt"
	"strings"
)

// ──────────────────────────────────────────────
// Topics — identifiers and free-text routing
// ──────────────────────────────────────────────

// Topic identifies one consultation domain. It selects the persona prompt,
// the calculator, and the assessment flow.
type Topic string

const (
	TopicFengShui Topic = "feng_shui"
	TopicMBTI     Topic = "mbti"
	TopicIChing   Topic = "iching"
	TopicBaZi     Topic = "bazi"
	TopicZiWei    Topic = "ziwei"
	TopicGeneral  Topic = "general"
)

// AssessmentTopics lists the five topics that have an assessment flow, in the
// fixed scan order used by the router and the tips rotation.
var AssessmentTopics = []Topic{TopicFengShui, TopicMBTI, TopicIChing, TopicBaZi, TopicZiWei}

// ParseTopic resolves a user-supplied topic name (e.g. from /topic).
// Returns TopicGeneral, false for unknown names.
func ParseTopic(s string) (Topic, bool) {
	switch Topic(strings.ToLower(strings.TrimSpace(s))) {
	case TopicFengShui:
		return TopicFengShui, true
	case TopicMBTI:
		return TopicMBTI, true
	case TopicIChing:
		return TopicIChing, true
	case TopicBaZi:
		return TopicBaZi, true
	case TopicZiWei:
		return TopicZiWei, true
	}
	return TopicGeneral, false
}

// Emoji returns the topic's display emoji.
func (t Topic) Emoji() string {
	switch t {
	case TopicFengShui:
		return "🏠"
	case TopicMBTI:
		return "🧠"
	case TopicIChing:
		return "🔮"
	case TopicBaZi:
		return "🌙"
	case TopicZiWei:
		return "⭐"
	default:
		return "💬"
	}
}

// Title returns the human-readable topic title for the given language.
func (t Topic) Title(lang Language) string {
	if lang == LangZH {
		switch t {
		case TopicFengShui:
			return "风水"
		case TopicMBTI:
			return "MBTI人格"
		case TopicIChing:
			return "易经"
		case TopicBaZi:
			return "八字"
		case TopicZiWei:
			return "紫微斗数"
		default:
			return "综合"
		}
	}
	switch t {
	case TopicFengShui:
		return "Feng Shui"
	case TopicMBTI:
		return "MBTI"
	case TopicIChing:
		return "I-Ching"
	case TopicBaZi:
		return "Ba Zi"
	case TopicZiWei:
		return "Zi Wei Dou Shu"
	default:
		return "General"
	}
}

// topicKeywords drives free-text routing, per topic and scan order.
// English and Chinese signals share one list; matching is substring-based on
// the lowercased message.
var topicKeywords = map[Topic][]string{
	TopicFengShui: {"feng", "shui", "home", "house", "room", "space", "color", "direction", "energy", "风水", "家居", "方位"},
	TopicMBTI:     {"mbti", "personality", "introvert", "extrovert", "intuitive", "sensing", "thinking", "feeling", "judging", "perceiving", "infp", "entj", "人格", "性格"},
	TopicIChing:   {"iching", "i-ching", "divination", "hexagram", "oracle", "book of changes", "易经", "卦", "占卜"},
	TopicBaZi:     {"bazi", "ba-zi", "four pillars", "chinese horoscope", "eight characters", "八字", "四柱"},
	TopicZiWei:    {"ziwei", "zi wei", "purple star", "dou shu", "astrology", "紫微", "斗数"},
}

// topicIntroEN holds the info text shown by each topic command.
var topicIntroEN = map[Topic]string{
	TopicFengShui: "Feng Shui is an ancient Chinese practice of arranging your environment to enhance energy flow.\n\n" +
		"I can provide advice for optimizing your space. Ask me questions like:\n" +
		"- How should I arrange my bedroom for better sleep?\n" +
		"- What colors are best for my home office?\n" +
		"- How can I improve the energy in my living room?\n" +
		"- What are my lucky directions based on my Kua number?\n\n" +
		"For a personalized assessment, use the /assess command and select Feng Shui.",
	TopicMBTI: "The Myers-Briggs Type Indicator (MBTI) is a personality assessment that helps understand " +
		"how people perceive the world and make decisions.\n\n" +
		"I can provide insights about the 16 personality types. Ask me questions like:\n" +
		"- What does INFJ mean?\n" +
		"- What careers suit an ENTJ?\n" +
		"- How do INTPs and ESFJs get along?\n\n" +
		"For a personalized assessment to find your type, use /assess and select MBTI.",
	TopicIChing: "The I-Ching, or Book of Changes, is an ancient Chinese divination text offering guidance " +
		"through 64 hexagrams.\n\n" +
		"Ask me questions like:\n" +
		"- What does hexagram 1 mean?\n" +
		"- How does the coin-toss method work?\n\n" +
		"For a reading on your own question, use /assess and select I-Ching.",
	TopicBaZi: "Ba Zi, the Four Pillars of Destiny, analyzes the heavenly stems and earthly branches of " +
		"your birth moment to reveal your elemental makeup.\n\n" +
		"Ask me questions like:\n" +
		"- What does a Metal Day Master mean?\n" +
		"- How do the five elements interact?\n\n" +
		"For your own chart, use /assess and select Ba Zi.",
	TopicZiWei: "Zi Wei Dou Shu, Purple Star Astrology, maps the stars across twelve palaces of your " +
		"birth chart to describe your life path.\n\n" +
		"Ask me questions like:\n" +
		"- What does the Life Palace represent?\n" +
		"- What is the Zi Wei star?\n\n" +
		"For your own chart, use /assess and select Zi Wei Dou Shu.",
}

var topicIntroZH = map[Topic]string{
	TopicFengShui: "风水是通过调整环境布局来改善气场流动的中国传统学问。\n\n你可以这样问我：\n" +
		"- 卧室怎样布置有助于睡眠？\n- 书房适合什么颜色？\n- 我的命卦吉利方位是什么？\n\n" +
		"想要个性化分析，请使用 /assess 并选择风水。",
	TopicMBTI: "MBTI 人格类型指标帮助理解人们感知世界与做决定的方式。\n\n你可以这样问我：\n" +
		"- INFJ 是什么意思？\n- ENTJ 适合什么职业？\n\n想测出你的类型，请使用 /assess 并选择 MBTI。",
	TopicIChing: "易经通过六十四卦为任何问题提供指引。\n\n你可以这样问我：\n" +
		"- 第一卦是什么意思？\n- 铜钱起卦如何进行？\n\n想为自己的问题起卦，请使用 /assess 并选择易经。",
	TopicBaZi: "八字（四柱）通过出生时刻的天干地支分析你的五行格局。\n\n你可以这样问我：\n" +
		"- 金日主代表什么？\n- 五行如何相生相克？\n\n想排自己的命盘，请使用 /assess 并选择八字。",
	TopicZiWei: "紫微斗数将星曜分布于十二宫，描绘你的人生轨迹。\n\n你可以这样问我：\n" +
		"- 命宫代表什么？\n- 紫微星是什么？\n\n想排自己的命盘，请使用 /assess 并选择紫微斗数。",
}

// topicIntro returns the info text for a topic command.
func topicIntro(t Topic, lang Language) string {
	title := fmt.Sprintf("%s %s %s\n\n", t.Emoji(), t.Title(lang), t.Emoji())
	if lang == LangZH {
		return title + topicIntroZH[t]
	}
	return title + topicIntroEN[t]
}

// RouteTopic resolves the topic for a free-chat message.
//
// Priority:
//  1. A session-pinned topic (set by a topic command or an assessment) wins.
//  2. Otherwise the first keyword hit in the fixed topic order.
//  3. Otherwise general.
func RouteTopic(message string, pinned Topic) Topic {
	if pinned != "" && pinned != TopicGeneral {
		return pinned
	}
	lower := strings.ToLower(message)
	for _, topic := range AssessmentTopics {
		for _, kw := range topicKeywords[topic] {
			if strings.Contains(lower, kw) {
				return topic
			}
		}
	}
	return TopicGeneral
}
