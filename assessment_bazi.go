package mysticbot

import (
	"context"
	"fmt"
)

// Ba Zi flow: name, then birth date. The Four Pillars chart and element
// counts are computed locally and embedded in both the prompt and the
// structured header.

func (e *AssessmentEngine) advanceBaZiBirthDate(ctx context.Context, session *Session, text string) ([]Prompt, error) {
	a := session.Assessment
	lang := session.Language

	year, month, day, err := parseBirthDate(text)
	if err != nil {
		return []Prompt{textPrompt(T(TmplInvalidDate, lang))}, nil
	}
	bz := a.Data.(*BaZiData)
	bz.Year, bz.Month, bz.Day = year, month, day
	e.save(session)

	interim := e.emit(session.UserID, textPrompt(T(TmplGeneratingChart, lang)), nil)

	chart := NewBaZiChart(year, month, day)
	rendered := chart.Render()
	elements := chart.ElementCounts()

	query := fmt.Sprintf(
		"Create a concise personalized Ba Zi (Four Pillars) reading for %s, born on %d-%d-%d.\n\n"+
			"Their Ba Zi chart is:\n%s\n\n"+
			"Day Master: %s\n"+
			"Element counts: Wood (%d), Fire (%d), Earth (%d), Metal (%d), Water (%d)\n\n"+
			"Provide brief insights about their personality, strengths, challenges, and favorable elements. "+
			"Keep your response under 1000 characters total.",
		a.Name, year, month, day, rendered, chart.DayMaster,
		elements["Wood"], elements["Fire"], elements["Earth"], elements["Metal"], elements["Water"])

	contextSummary := fmt.Sprintf(
		"Ba Zi reading for %s, born on %d-%d-%d. Day Master: %s. "+
			"Chart shows: %d Wood, %d Fire, %d Earth, %d Metal, %d Water.",
		a.Name, year, month, day, chart.DayMaster,
		elements["Wood"], elements["Fire"], elements["Earth"], elements["Metal"], elements["Water"])

	elementLine := fmt.Sprintf("Wood: %d, Fire: %d, Earth: %d, Metal: %d, Water: %d",
		elements["Wood"], elements["Fire"], elements["Earth"], elements["Metal"], elements["Water"])

	header := fmt.Sprintf("🌙 <b>%s's Ba Zi Chart</b> 🌙\n\n<b>Chart:</b>\n%s\n\n<b>Elements:</b> %s\n\n<b>Your Reading:</b>\n\n",
		a.Name, rendered, elementLine)
	footer := "\n\nWould you like more information about your favorable elements or specific life aspects?"
	if lang == LangZH {
		header = fmt.Sprintf("🌙 <b>%s的八字命盘</b> 🌙\n\n<b>命盘：</b>\n%s\n\n<b>五行：</b>%s\n\n<b>你的解读：</b>\n\n",
			a.Name, rendered, elementLine)
		footer = "\n\n想进一步了解你的喜用神或具体生活领域吗？"
	}

	prompts, err := e.finish(ctx, session, query, contextSummary, header, footer, "Ba Zi assessment")
	return append(interim, prompts...), err
}
