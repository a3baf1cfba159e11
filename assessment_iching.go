package mysticbot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// I-Ching flow: name, then a free-text question. The coin-toss hexagram is
// cast immediately and shown before the interpretation arrives.

func (e *AssessmentEngine) advanceIChingQuestion(ctx context.Context, session *Session, text string) ([]Prompt, error) {
	a := session.Assessment
	lang := session.Language
	ic := a.Data.(*IChingData)
	ic.Question = text
	e.save(session)

	hex := e.caster.Cast()

	castMsg := fmt.Sprintf("*Your I-Ching Hexagram*\n\n```\n%s```\nPrimary Hexagram: *#%d*\n",
		hex.RenderLines(), hex.Primary)
	if lang == LangZH {
		castMsg = fmt.Sprintf("*你的易经卦象*\n\n```\n%s```\n本卦：*#%d*\n", hex.RenderLines(), hex.Primary)
	}
	if len(hex.ChangingLines) > 0 {
		if lang == LangZH {
			castMsg += "有变爻\n"
		} else {
			castMsg += "with changing lines\n"
		}
	}
	castMsg += "\n" + T(TmplCastingHexagram, lang)
	interim := e.emit(session.UserID, textPrompt(castMsg), nil)

	changing := "none"
	if len(hex.ChangingLines) > 0 {
		parts := make([]string, len(hex.ChangingLines))
		for i, n := range hex.ChangingLines {
			parts[i] = strconv.Itoa(n)
		}
		changing = strings.Join(parts, ", ")
	}

	query := fmt.Sprintf("Create a personalized I-Ching reading for %s who asked: '%s'. "+
		"They received hexagram #%d", a.Name, ic.Question, hex.Primary)
	if len(hex.ChangingLines) > 0 {
		query += fmt.Sprintf(" changing to #%d", hex.Secondary)
	}
	query += fmt.Sprintf(". The changing lines are %s. "+
		"Provide an interpretation that's personal and relevant to their question. "+
		"Include both general hexagram meaning and specific advice for their situation.", changing)

	contextSummary := fmt.Sprintf("I-Ching reading for %s who asked: '%s'. Hexagram #%d", a.Name, ic.Question, hex.Primary)
	if len(hex.ChangingLines) > 0 {
		contextSummary += fmt.Sprintf(" changing to #%d", hex.Secondary)
	}
	contextSummary += "."

	header := fmt.Sprintf("🔮 <b>%s's I-Ching Reading</b> 🔮\n\n<b>Your Question:</b> %s\n\n<b>Primary Hexagram:</b> #%d\n",
		a.Name, ic.Question, hex.Primary)
	if lang == LangZH {
		header = fmt.Sprintf("🔮 <b>%s的易经解读</b> 🔮\n\n<b>你的问题：</b>%s\n\n<b>本卦：</b>#%d\n",
			a.Name, ic.Question, hex.Primary)
	}
	if len(hex.ChangingLines) > 0 {
		if lang == LangZH {
			header += fmt.Sprintf("<b>变卦：</b>#%d\n<b>变爻：</b>%s\n\n", hex.Secondary, changing)
		} else {
			header += fmt.Sprintf("<b>Changing to:</b> #%d\n<b>Changing Lines:</b> %s\n\n", hex.Secondary, changing)
		}
	} else {
		if lang == LangZH {
			header += "<b>变爻：</b>无\n\n"
		} else {
			header += "<b>Changing Lines:</b> None\n\n"
		}
	}
	footer := "\n\n" + T(TmplFollowupFooter, lang)

	prompts, err := e.finish(ctx, session, query, contextSummary, header, footer,
		fmt.Sprintf("I-Ching reading: Hexagram %d", hex.Primary))
	return append(interim, prompts...), err
}
