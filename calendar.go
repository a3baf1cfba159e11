package mysticbot

import (
	"fmt"
	"time"
)

// ──────────────────────────────────────────────
// Chinese calendar arithmetic — stems, branches, pillars
// ──────────────────────────────────────────────
//
// All calculations are the simplified closed-form versions: solar dates only,
// no solar-term or lunar conversion. Indices are always reduced modulo the
// table lengths (10 stems, 12 branches) so lookups can never go out of range.

// HeavenlyStems is the 10-cycle of stems (天干), index 0 = Jia.
var HeavenlyStems = []string{"Jia", "Yi", "Bing", "Ding", "Wu", "Ji", "Geng", "Xin", "Ren", "Gui"}

// EarthlyBranches is the 12-cycle of branches (地支), index 0 = Zi.
var EarthlyBranches = []string{"Zi", "Chou", "Yin", "Mao", "Chen", "Si", "Wu", "Wei", "Shen", "You", "Xu", "Hai"}

// StemElements maps stem index to its element. Stems pair up: two per element,
// ordered Wood, Fire, Earth, Metal, Water.
var StemElements = []string{"Wood", "Wood", "Fire", "Fire", "Earth", "Earth", "Metal", "Metal", "Water", "Water"}

// BranchAnimals maps branch index to its zodiac animal.
var BranchAnimals = []string{"Rat", "Ox", "Tiger", "Rabbit", "Dragon", "Snake", "Horse", "Goat", "Monkey", "Rooster", "Dog", "Pig"}

// BranchElements maps branch index to its element.
var BranchElements = []string{"Water", "Earth", "Wood", "Wood", "Earth", "Fire", "Fire", "Earth", "Metal", "Metal", "Earth", "Water"}

// Pillar is one stem+branch pair of a Ba Zi chart.
type Pillar struct {
	Stem          string `json:"stem"`
	Branch        string `json:"branch"`
	StemElement   string `json:"stem_element"`
	BranchElement string `json:"branch_element"`
	Animal        string `json:"animal,omitempty"` // set on the year pillar only
}

func (p Pillar) String() string {
	s := fmt.Sprintf("%s (%s) %s (%s)", p.Stem, p.StemElement, p.Branch, p.BranchElement)
	if p.Animal != "" {
		s += " - " + p.Animal
	}
	return s
}

// StemElement returns the element for a stem index. Stems share an element in
// pairs, so the element index is simply stemIndex/2.
func StemElement(stemIndex int) string {
	return StemElements[mod(stemIndex, 10)]
}

// YearStemIndex returns the stem index for a Gregorian year: (year-4) % 10.
func YearStemIndex(year int) int { return mod(year-4, 10) }

// YearBranchIndex returns the branch index for a Gregorian year: (year-4) % 12.
func YearBranchIndex(year int) int { return mod(year-4, 12) }

// YearPillar computes the year pillar, including the zodiac animal.
func YearPillar(year int) Pillar {
	si := YearStemIndex(year)
	bi := YearBranchIndex(year)
	return Pillar{
		Stem:          HeavenlyStems[si],
		Branch:        EarthlyBranches[bi],
		StemElement:   StemElements[si],
		BranchElement: BranchElements[bi],
		Animal:        BranchAnimals[bi],
	}
}

// MonthBranchIndex computes the month branch index, always in [0,11].
//
// The naive formula (month+2)%12-else-(month+10) historically produced an
// out-of-range index for early months; the split below is the preserved fix.
func MonthBranchIndex(month int) int {
	if month > 2 {
		return mod(month+2, 12)
	}
	return mod(month+10, 12)
}

// MonthPillar computes the month pillar (simplified: ignores solar terms).
func MonthPillar(year, month int) Pillar {
	si := mod((year-4)*12+month, 10)
	bi := MonthBranchIndex(month)
	return Pillar{
		Stem:          HeavenlyStems[si],
		Branch:        EarthlyBranches[bi],
		StemElement:   StemElements[si],
		BranchElement: BranchElements[bi],
	}
}

// dayPillarEpoch is the fixed reference date for the day-pillar cycle.
var dayPillarEpoch = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// DayPillar computes the day pillar from the day count since 1900-01-01,
// offset by 10 for the stem (Geng) and 12 for the branch (Zi).
func DayPillar(year, month, day int) Pillar {
	birth := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	days := int(birth.Sub(dayPillarEpoch).Hours() / 24)
	si := mod(days+10, 10)
	bi := mod(days+12, 12)
	return Pillar{
		Stem:          HeavenlyStems[si],
		Branch:        EarthlyBranches[bi],
		StemElement:   StemElements[si],
		BranchElement: BranchElements[bi],
	}
}

// BaZiChart is the three-pillar chart this bot reads from (no hour pillar:
// the flow only collects a birth date).
type BaZiChart struct {
	Year      Pillar `json:"year"`
	Month     Pillar `json:"month"`
	Day       Pillar `json:"day"`
	DayMaster string `json:"day_master"` // the day stem's element
}

// NewBaZiChart computes the full chart for a birth date.
func NewBaZiChart(year, month, day int) BaZiChart {
	y := YearPillar(year)
	m := MonthPillar(year, month)
	d := DayPillar(year, month, day)
	return BaZiChart{Year: y, Month: m, Day: d, DayMaster: d.StemElement}
}

// ElementCounts tallies the five elements across all stems and branches.
// Keys are always the five element names, including zero counts.
func (c BaZiChart) ElementCounts() map[string]int {
	counts := map[string]int{"Wood": 0, "Fire": 0, "Earth": 0, "Metal": 0, "Water": 0}
	for _, p := range []Pillar{c.Year, c.Month, c.Day} {
		counts[p.StemElement]++
		counts[p.BranchElement]++
	}
	return counts
}

// Render formats the chart the way it is shown to users and fed to the model.
func (c BaZiChart) Render() string {
	return fmt.Sprintf("Year: %s\nMonth: %s\nDay: %s\nDay Master: %s",
		c.Year, c.Month, c.Day, c.DayMaster)
}

// ──────────────────────────────────────────────
// Zodiac & hour branch
// ──────────────────────────────────────────────

// ZodiacAnimal returns the zodiac animal for a Gregorian year.
func ZodiacAnimal(year int) string {
	return BranchAnimals[mod(year-4, 12)]
}

// HourBranchIndex converts a 24h clock hour to its two-hour branch.
// 23:00–00:59 is Zi (index 0).
func HourBranchIndex(hour int) int {
	if hour == 23 || hour < 1 {
		return 0
	}
	return mod((hour+1)/2, 12)
}

// ──────────────────────────────────────────────
// Kua number (Feng Shui)
// ──────────────────────────────────────────────

var kuaEastGroup = map[int]bool{1: true, 3: true, 4: true, 9: true}

// KuaNumber computes the simplified Kua number from a birth date.
// A zero remainder maps to 9.
func KuaNumber(year, month, day int) int {
	base := year%10 + month + day
	kua := base % 9
	if kua == 0 {
		kua = 9
	}
	return kua
}

// LuckyDirections returns the comma-joined lucky directions for a Kua number.
func LuckyDirections(kua int) string {
	if kuaEastGroup[kua] {
		return "East, Southeast, North, South"
	}
	return "West, Northwest, Southwest, Northeast"
}

// mod is a non-negative modulo. Inputs here are never negative in practice,
// but year arithmetic before year 4 would otherwise produce a negative index.
func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
