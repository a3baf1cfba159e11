package mysticbot

import "fmt"

// ──────────────────────────────────────────────
// Localized message templates
// ──────────────────────────────────────────────
//
// All user-facing strings resolve through one (template ID, language) table
// so the flow logic stays language-agnostic. Unknown languages fall back to
// English.

// Language is a user's preferred reply language.
type Language string

const (
	LangEN Language = "en"
	LangZH Language = "zh"
)

// ParseLanguage normalizes a language tag, defaulting to English.
func ParseLanguage(s string) Language {
	if Language(s) == LangZH {
		return LangZH
	}
	return LangEN
}

// TemplateID names one localized message.
type TemplateID string

const (
	TmplStart            TemplateID = "start"
	TmplHelp             TemplateID = "help"
	TmplAssessIntro      TemplateID = "assess_intro"
	TmplAskName          TemplateID = "ask_name"
	TmplAskBirthDate     TemplateID = "ask_birth_date"
	TmplAskBirthTime     TemplateID = "ask_birth_time"
	TmplAskQuestion      TemplateID = "ask_question"
	TmplAskRoom          TemplateID = "ask_room"
	TmplAskDirections    TemplateID = "ask_directions"
	TmplInvalidDate      TemplateID = "invalid_date"
	TmplInvalidTime      TemplateID = "invalid_time"
	TmplMBTIIntro        TemplateID = "mbti_intro"
	TmplMBTIQuestion     TemplateID = "mbti_question"
	TmplCancelled        TemplateID = "cancelled"
	TmplResetDone        TemplateID = "reset_done"
	TmplResetNothing     TemplateID = "reset_nothing"
	TmplTopicChanged     TemplateID = "topic_changed"
	TmplTopicUsage       TemplateID = "topic_usage"
	TmplApology          TemplateID = "apology"
	TmplAssessFailed     TemplateID = "assess_failed"
	TmplHistoryNone      TemplateID = "history_none"
	TmplHistoryHeader    TemplateID = "history_header"
	TmplHistoryError     TemplateID = "history_error"
	TmplSubscribedOn     TemplateID = "subscribed_on"
	TmplSubscribedOff    TemplateID = "subscribed_off"
	TmplSubscribeStatus  TemplateID = "subscribe_status"
	TmplSubscribeUsage   TemplateID = "subscribe_usage"
	TmplSubscribeNoUser  TemplateID = "subscribe_no_user"
	TmplDailyTipTitle    TemplateID = "daily_tip_title"
	TmplCastingHexagram  TemplateID = "casting_hexagram"
	TmplGeneratingChart  TemplateID = "generating_chart"
	TmplFollowupFooter   TemplateID = "followup_footer"
	TmplLanguageUsage    TemplateID = "language_usage"
	TmplLanguageChanged  TemplateID = "language_changed"
)

var templates = map[TemplateID]map[Language]string{
	TmplStart: {
		LangEN: "Hello %s! I'm your AI companion for personalized metaphysical insights.\n\n" +
			"Use these commands to interact with me:\n" +
			"/assess - Start a personalized assessment\n" +
			"/fengshui - Get Feng Shui advice\n" +
			"/mbti - Get MBTI personality insights\n" +
			"/iching - Get I-Ching divination\n" +
			"/bazi - Get Chinese Four Pillars analysis\n" +
			"/ziwei - Get Zi Wei Dou Shu chart reading\n" +
			"/history - View your recent conversations\n" +
			"/help - Show the full command list",
		LangZH: "你好 %s！我是你的玄学洞察 AI 伙伴。\n\n" +
			"可用命令：\n/assess - 开始个性化测评\n/fengshui - 风水建议\n" +
			"/mbti - MBTI 人格分析\n/iching - 易经占卜\n/bazi - 八字分析\n" +
			"/ziwei - 紫微斗数命盘\n/history - 查看最近对话\n/help - 完整命令列表",
	},
	TmplHelp: {
		LangEN: "I can help you with personalized assessments and insights:\n\n" +
			"✨ /assess - Start a personalized assessment\n" +
			"🏠 /fengshui - Feng Shui advice for your home\n" +
			"🧠 /mbti - MBTI personality analysis\n" +
			"🔮 /iching - I-Ching divination and hexagram readings\n" +
			"🌙 /bazi - Chinese Four Pillars (Ba Zi) destiny analysis\n" +
			"⭐ /ziwei - Zi Wei Dou Shu astrological chart reading\n" +
			"📜 /history - View your recent conversation history\n" +
			"🔄 /reset - Reset our conversation memory\n" +
			"🔀 /topic <name> - Change to a specific topic\n" +
			"🌐 /language en|zh - Switch reply language\n" +
			"📬 /subscribe on|off - Daily tips subscription\n" +
			"❓ Just ask me any question related to these topics!",
		LangZH: "我可以提供个性化测评与洞察：\n\n" +
			"✨ /assess - 开始个性化测评\n🏠 /fengshui - 家居风水建议\n" +
			"🧠 /mbti - MBTI 人格分析\n🔮 /iching - 易经卦象解读\n" +
			"🌙 /bazi - 八字命理分析\n⭐ /ziwei - 紫微斗数命盘解读\n" +
			"📜 /history - 最近对话记录\n🔄 /reset - 重置对话记忆\n" +
			"🔀 /topic <名称> - 切换话题\n🌐 /language en|zh - 切换语言\n" +
			"📬 /subscribe on|off - 每日提示订阅\n❓ 也可以直接向我提问！",
	},
	TmplAssessIntro: {
		LangEN: "Hi! I'm your personal consultant for Chinese metaphysics and personality analysis. " +
			"What would you like me to help you with today?",
		LangZH: "你好！我是你的中国玄学与人格分析顾问。今天想了解哪方面？",
	},
	TmplAskName: {
		LangEN: "First, what's your name? (This helps me personalize your reading)",
		LangZH: "首先，请告诉我你的名字？（便于为你个性化解读）",
	},
	TmplAskBirthDate: {
		LangEN: "Thank you, %s. I need your birth date.\n\nPlease enter it in this format: YYYY-MM-DD (e.g., 1990-05-15)",
		LangZH: "谢谢你，%s。我需要你的出生日期。\n\n请按此格式输入：YYYY-MM-DD（例如 1990-05-15）",
	},
	TmplAskBirthTime: {
		LangEN: "Great! Now I need your birth time to complete the chart.\n\nPlease enter it in 24-hour format: HH:MM (e.g., 14:30)",
		LangZH: "好的！还需要你的出生时间来完成命盘。\n\n请按 24 小时制输入：HH:MM（例如 14:30）",
	},
	TmplAskQuestion: {
		LangEN: "Thank you, %s. The I-Ching can provide guidance for any question or situation.\n\n" +
			"Please ask your question or describe the situation you seek guidance for.",
		LangZH: "谢谢你，%s。易经可以为任何问题提供指引。\n\n请提出你的问题或描述你想求问的情况。",
	},
	TmplAskRoom: {
		LangEN: "Nice to meet you, %s! Which area would you like to focus on?",
		LangZH: "很高兴认识你，%s！你想重点调整哪个空间？",
	},
	TmplAskDirections: {
		LangEN: "Great! To provide personalized Feng Shui advice for your %s, when were you born? " +
			"(Format: YYYY-MM-DD, e.g. 1990-05-15)\n\nThis helps me calculate your personal Kua number and lucky directions.",
		LangZH: "好的！为了给你的%s提供个性化风水建议，请告诉我你的出生日期？" +
			"（格式 YYYY-MM-DD，例如 1990-05-15）\n\n这能帮我计算你的命卦数与吉利方位。",
	},
	TmplInvalidDate: {
		LangEN: "Sorry, I couldn't understand that date format. Please use YYYY-MM-DD (e.g., 1990-05-15).",
		LangZH: "抱歉，我无法识别这个日期格式。请使用 YYYY-MM-DD（例如 1990-05-15）。",
	},
	TmplInvalidTime: {
		LangEN: "Sorry, I couldn't understand that time format. Please use HH:MM in 24-hour format (e.g., 14:30).",
		LangZH: "抱歉，我无法识别这个时间格式。请使用 24 小时制 HH:MM（例如 14:30）。",
	},
	TmplMBTIIntro: {
		LangEN: "Thanks %s! Let's find your MBTI personality type.",
		LangZH: "谢谢你，%s！让我们找出你的 MBTI 人格类型。",
	},
	TmplMBTIQuestion: {
		LangEN: "Question %d/4: %s",
		LangZH: "问题 %d/4：%s",
	},
	TmplCancelled: {
		LangEN: "Assessment canceled. You can start a new one anytime with /assess!",
		LangZH: "测评已取消。随时可以用 /assess 重新开始！",
	},
	TmplResetDone: {
		LangEN: "🔄 I've reset our conversation. What would you like to talk about now?",
		LangZH: "🔄 对话已重置。现在想聊点什么？",
	},
	TmplResetNothing: {
		LangEN: "We don't have an active conversation yet. Feel free to ask me something!",
		LangZH: "我们还没有进行中的对话，欢迎随时提问！",
	},
	TmplTopicChanged: {
		LangEN: "%s Topic changed to %s. You can now ask questions about this topic.",
		LangZH: "%s 话题已切换为%s。现在可以就这个话题提问了。",
	},
	TmplTopicUsage: {
		LangEN: "Please specify a topic: /topic feng_shui, /topic mbti, /topic iching, /topic bazi, or /topic ziwei",
		LangZH: "请指定话题：/topic feng_shui、/topic mbti、/topic iching、/topic bazi 或 /topic ziwei",
	},
	TmplApology: {
		LangEN: "I'm sorry, I couldn't generate a response at the moment. Please try again later.",
		LangZH: "抱歉，我暂时无法生成回复。请稍后再试。",
	},
	TmplAssessFailed: {
		LangEN: "I'm having trouble creating your personalized analysis. Please try again later.",
		LangZH: "生成你的个性化分析时出现问题，请稍后再试。",
	},
	TmplHistoryNone: {
		LangEN: "You don't have any conversation history yet.",
		LangZH: "你还没有对话记录。",
	},
	TmplHistoryHeader: {
		LangEN: "📜 Your recent conversations:\n\n",
		LangZH: "📜 你最近的对话：\n\n",
	},
	TmplHistoryError: {
		LangEN: "I couldn't retrieve your conversation history right now.",
		LangZH: "暂时无法获取你的对话记录。",
	},
	TmplSubscribedOn: {
		LangEN: "✅ You've subscribed to daily tips! You'll receive one insight a day at 9:00 AM.",
		LangZH: "✅ 已订阅每日提示！每天上午 9 点你会收到一条洞察。",
	},
	TmplSubscribedOff: {
		LangEN: "❌ You've unsubscribed from daily tips.",
		LangZH: "❌ 已取消每日提示订阅。",
	},
	TmplSubscribeStatus: {
		LangEN: "📬 Subscribed to daily tips: %v\n\nUse /subscribe on or /subscribe off to change it.",
		LangZH: "📬 每日提示订阅状态：%v\n\n使用 /subscribe on 或 /subscribe off 修改。",
	},
	TmplSubscribeUsage: {
		LangEN: "⚠️ Invalid option. Use /subscribe on to subscribe or /subscribe off to unsubscribe.",
		LangZH: "⚠️ 无效选项。使用 /subscribe on 订阅或 /subscribe off 取消订阅。",
	},
	TmplSubscribeNoUser: {
		LangEN: "⚠️ I couldn't find your user profile. Please use /start first.",
		LangZH: "⚠️ 未找到你的用户资料，请先使用 /start。",
	},
	TmplDailyTipTitle: {
		LangEN: "%s Daily %s Tip %s",
		LangZH: "%s 每日%s提示 %s",
	},
	TmplCastingHexagram: {
		LangEN: "Please wait while I interpret this reading for your question...",
		LangZH: "请稍候，我正在为你的问题解读这一卦……",
	},
	TmplGeneratingChart: {
		LangEN: "Thank you. Generating your chart based on your birth information...",
		LangZH: "谢谢。正在根据你的出生信息生成命盘……",
	},
	TmplFollowupFooter: {
		LangEN: "Would you like more information about your reading?",
		LangZH: "想进一步了解你的解读吗？",
	},
	TmplLanguageUsage: {
		LangEN: "Usage: /language en or /language zh",
		LangZH: "用法：/language en 或 /language zh",
	},
	TmplLanguageChanged: {
		LangEN: "🌐 Language set to English.",
		LangZH: "🌐 语言已切换为中文。",
	},
}

// T resolves a template for the given language, falling back to English.
func T(id TemplateID, lang Language) string {
	byLang, ok := templates[id]
	if !ok {
		return ""
	}
	if s, ok := byLang[lang]; ok {
		return s
	}
	return byLang[LangEN]
}

// TF resolves a template and applies fmt arguments.
func TF(id TemplateID, lang Language, args ...interface{}) string {
	return fmt.Sprintf(T(id, lang), args...)
}
