package mysticbot

import (
	"context"
	"fmt"
	"strings"
)

// MBTI flow: name, then four binary questions answered by button. The four
// answer letters concatenate in order into the type code.

var mbtiQuestions = []struct {
	en      string
	zh      string
	options [2]struct {
		label   string
		labelZH string
		letter  string
	}
}{
	{
		en: "Which statement describes you better?",
		zh: "哪种说法更符合你？",
		options: [2]struct {
			label   string
			labelZH string
			letter  string
		}{
			{"I'm energized by social gatherings (E)", "社交聚会让我充满活力 (E)", "E"},
			{"I need alone time to recharge (I)", "我需要独处来恢复精力 (I)", "I"},
		},
	},
	{
		en: "How do you process information?",
		zh: "你如何处理信息？",
		options: [2]struct {
			label   string
			labelZH string
			letter  string
		}{
			{"I focus on concrete facts and details (S)", "我关注具体事实与细节 (S)", "S"},
			{"I look for patterns and possibilities (N)", "我寻找规律与可能性 (N)", "N"},
		},
	},
	{
		en: "How do you make decisions?",
		zh: "你如何做决定？",
		options: [2]struct {
			label   string
			labelZH string
			letter  string
		}{
			{"I make decisions based on logic (T)", "我依据逻辑做决定 (T)", "T"},
			{"I consider people's feelings first (F)", "我优先考虑他人的感受 (F)", "F"},
		},
	},
	{
		en: "How do you approach life?",
		zh: "你如何安排生活？",
		options: [2]struct {
			label   string
			labelZH string
			letter  string
		}{
			{"I prefer planning and structure (J)", "我喜欢计划与条理 (J)", "J"},
			{"I prefer flexibility and spontaneity (P)", "我喜欢灵活与随性 (P)", "P"},
		},
	},
}

// mbtiQuestionPrompt renders question index q with its two stacked buttons.
// prefix is prepended to the first question's text only.
func mbtiQuestionPrompt(lang Language, q int, prefix string) Prompt {
	question := mbtiQuestions[q]
	text := question.en
	if lang == LangZH {
		text = question.zh
	}

	choices := make([][]Choice, 0, 2)
	for _, opt := range question.options {
		label := opt.label
		if lang == LangZH {
			label = opt.labelZH
		}
		choices = append(choices, []Choice{{Label: label, Data: opt.letter}})
	}

	return Prompt{
		Text:     prefix + TF(TmplMBTIQuestion, lang, q+1, text),
		Choices:  choices,
		EditLast: q > 0,
	}
}

// validMBTILetter reports whether letter is one of question q's two options.
func validMBTILetter(q int, letter string) bool {
	if q < 0 || q >= len(mbtiQuestions) {
		return false
	}
	for _, opt := range mbtiQuestions[q].options {
		if opt.letter == letter {
			return true
		}
	}
	return false
}

func (e *AssessmentEngine) advanceMBTI(ctx context.Context, session *Session, letter string) ([]Prompt, error) {
	a := session.Assessment
	mb := a.Data.(*MBTIData)

	// Stale or foreign callback data: repeat the current question.
	if !validMBTILetter(len(mb.Answers), letter) {
		return []Prompt{mbtiQuestionPrompt(session.Language, len(mb.Answers), "")}, nil
	}

	mb.Answers = append(mb.Answers, letter)
	e.save(session)

	if len(mb.Answers) < len(mbtiQuestions) {
		return []Prompt{mbtiQuestionPrompt(session.Language, len(mb.Answers), "")}, nil
	}

	return e.finishMBTI(ctx, session)
}

func (e *AssessmentEngine) finishMBTI(ctx context.Context, session *Session) ([]Prompt, error) {
	a := session.Assessment
	lang := session.Language
	mbtiType := strings.Join(a.Data.(*MBTIData).Answers, "")

	query := fmt.Sprintf(
		"Create a personalized MBTI analysis for %s who has the type %s. "+
			"Include strengths, weaknesses, career recommendations, and relationship compatibility. "+
			"Make it feel personal and specific to them. Keep it concise but detailed.",
		a.Name, mbtiType)

	contextSummary := fmt.Sprintf("MBTI assessment for %s with personality type %s.", a.Name, mbtiType)

	header := fmt.Sprintf("🧠 <b>%s's MBTI Personality Profile: %s</b> 🧠\n\n", a.Name, mbtiType)
	if lang == LangZH {
		header = fmt.Sprintf("🧠 <b>%s的 MBTI 人格画像：%s</b> 🧠\n\n", a.Name, mbtiType)
	}
	footer := "\n\n" + T(TmplFollowupFooter, lang)

	return e.finish(ctx, session, query, contextSummary, header, footer,
		fmt.Sprintf("MBTI assessment result: %s", mbtiType))
}
