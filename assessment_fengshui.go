package mysticbot

import (
	"context"
	"fmt"
)

// Feng Shui flow: name, room, birth date. The birth date feeds the Kua
// number and lucky-direction calculation before the narrative is generated.

var fengShuiRooms = []struct {
	data string
	en   string
	zh   string
}{
	{"bedroom", "Bedroom", "卧室"},
	{"living_room", "Living Room", "客厅"},
	{"kitchen", "Kitchen", "厨房"},
	{"office", "Home Office", "书房"},
	{"entire_home", "Entire Home", "整个家"},
}

func fengShuiRoomChoices(lang Language) [][]Choice {
	rows := [][]Choice{
		{roomChoice(0, lang), roomChoice(1, lang)},
		{roomChoice(2, lang), roomChoice(3, lang)},
		{roomChoice(4, lang)},
	}
	return rows
}

func roomChoice(i int, lang Language) Choice {
	r := fengShuiRooms[i]
	label := r.en
	if lang == LangZH {
		label = r.zh
	}
	return Choice{Label: label, Data: r.data}
}

func roomLabel(data string, lang Language) string {
	for _, r := range fengShuiRooms {
		if r.data == data {
			if lang == LangZH {
				return r.zh
			}
			return r.en
		}
	}
	return data
}

func validFengShuiRoom(data string) bool {
	for _, r := range fengShuiRooms {
		if r.data == data {
			return true
		}
	}
	return false
}

func (e *AssessmentEngine) advanceFengShuiRoom(session *Session, data string) ([]Prompt, error) {
	a := session.Assessment
	lang := session.Language

	// Stale or foreign callback data: repeat the room keyboard.
	if !validFengShuiRoom(data) {
		return []Prompt{{Text: TF(TmplAskRoom, lang, a.Name), Choices: fengShuiRoomChoices(lang), EditLast: true}}, nil
	}

	fs := a.Data.(*FengShuiData)
	fs.Room = data
	a.Step = StepBirthDate
	e.save(session)

	return []Prompt{{Text: TF(TmplAskDirections, lang, roomLabel(data, lang)), EditLast: true}}, nil
}

func (e *AssessmentEngine) advanceFengShuiBirthDate(ctx context.Context, session *Session, text string) ([]Prompt, error) {
	a := session.Assessment
	lang := session.Language

	year, month, day, err := parseBirthDate(text)
	if err != nil {
		return []Prompt{textPrompt(T(TmplInvalidDate, lang))}, nil
	}
	fs := a.Data.(*FengShuiData)
	fs.Year, fs.Month, fs.Day = year, month, day
	e.save(session)

	kua := KuaNumber(year, month, day)
	directions := LuckyDirections(kua)
	room := roomLabel(fs.Room, lang)

	query := fmt.Sprintf(
		"Create a personalized Feng Shui analysis for %s's %s. "+
			"Include specific recommendations for furniture placement, colors, and elements. "+
			"Their lucky directions are %s. Keep it concise but personal.",
		a.Name, room, directions)

	contextSummary := fmt.Sprintf(
		"Feng Shui assessment for %s's %s. Kua number: %d. Lucky directions: %s.",
		a.Name, room, kua, directions)

	header := fmt.Sprintf("✨ <b>%s's Personalized Feng Shui Analysis</b> ✨\n\n"+
		"Based on your birth date, your Kua number is %d.\n\n", a.Name, kua)
	if lang == LangZH {
		header = fmt.Sprintf("✨ <b>%s的个性化风水分析</b> ✨\n\n根据你的出生日期，你的命卦数是 %d。\n\n", a.Name, kua)
	}
	footer := "\n\n" + T(TmplFollowupFooter, lang)

	return e.finish(ctx, session, query, contextSummary, header, footer,
		fmt.Sprintf("Feng Shui assessment for %s", fs.Room))
}
