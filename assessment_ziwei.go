package mysticbot

import (
	"context"
	"fmt"
)

// Zi Wei flow: name, birth date, birth time. The extra time step feeds the
// chart even though the simplified Life Palace formula ignores the hour.

func (e *AssessmentEngine) advanceZiWeiBirthDate(session *Session, text string) ([]Prompt, error) {
	a := session.Assessment
	lang := session.Language

	year, month, day, err := parseBirthDate(text)
	if err != nil {
		return []Prompt{textPrompt(T(TmplInvalidDate, lang))}, nil
	}
	zw := a.Data.(*ZiWeiData)
	zw.Year, zw.Month, zw.Day = year, month, day
	a.Step = StepBirthTime
	e.save(session)

	return []Prompt{textPrompt(T(TmplAskBirthTime, lang))}, nil
}

func (e *AssessmentEngine) advanceZiWeiBirthTime(ctx context.Context, session *Session, text string) ([]Prompt, error) {
	a := session.Assessment
	lang := session.Language

	hour, minute, err := parseBirthTime(text)
	if err != nil {
		return []Prompt{textPrompt(T(TmplInvalidTime, lang))}, nil
	}
	zw := a.Data.(*ZiWeiData)
	zw.Hour, zw.Minute = hour, minute
	e.save(session)

	interim := e.emit(session.UserID, textPrompt(T(TmplGeneratingChart, lang)), nil)

	chart := NewZiWeiChart(zw.Year, zw.Month, zw.Day, zw.Hour)

	query := fmt.Sprintf(
		"Create a concise personalized Zi Wei Dou Shu reading for %s, born on %d-%d-%d at %02d:%02d.\n\n"+
			"Their Zi Wei chart has the following key features:\n"+
			"- Life Palace (Ming Gong) is in %s\n"+
			"- Zi Wei star is in %s Palace\n"+
			"- Tian Fu star is in %s Palace\n\n"+
			"Provide brief insights about their life path, personality, and main life aspects. "+
			"Keep the response under 1500 characters total.",
		a.Name, zw.Year, zw.Month, zw.Day, zw.Hour, zw.Minute,
		PalaceBranches[chart.MingGong], Palaces[chart.Stars["Zi Wei"]], Palaces[chart.Stars["Tian Fu"]])

	contextSummary := fmt.Sprintf(
		"Zi Wei Dou Shu reading for %s, born on %d-%d-%d at %d:%d. Life Palace in %s. Zi Wei star in %s Palace.",
		a.Name, zw.Year, zw.Month, zw.Day, zw.Hour, zw.Minute,
		PalaceBranches[chart.MingGong], Palaces[chart.Stars["Zi Wei"]])

	header := fmt.Sprintf("⭐ <b>%s's Zi Wei Dou Shu Chart</b> ⭐\n\n%s\n<b>Your Analysis:</b>\n\n",
		a.Name, chart.Render())
	footer := "\n\nWould you like information about other palaces in your chart?"
	if lang == LangZH {
		header = fmt.Sprintf("⭐ <b>%s的紫微斗数命盘</b> ⭐\n\n%s\n<b>你的解析：</b>\n\n", a.Name, chart.Render())
		footer = "\n\n想了解命盘中其他宫位的信息吗？"
	}

	prompts, err := e.finish(ctx, session, query, contextSummary, header, footer, "Zi Wei Dou Shu reading")
	return append(interim, prompts...), err
}
