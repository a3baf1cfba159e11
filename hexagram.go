package mysticbot

import (
	"math/rand"
	"strings"
	"time"
)

// ──────────────────────────────────────────────
// I-Ching hexagram generation — simulated coin method
// ──────────────────────────────────────────────

// HexagramLine is one of the four line symbols produced by three coin tosses.
type HexagramLine string

const (
	LineYangStable   HexagramLine = "-"  // sum 7
	LineYinStable    HexagramLine = "--" // sum 8
	LineYangChanging HexagramLine = "o"  // sum 9, yang flipping to yin
	LineYinChanging  HexagramLine = "x"  // sum 6, yin flipping to yang
)

// Changing reports whether the line flips between the primary and secondary
// reading.
func (l HexagramLine) Changing() bool {
	return l == LineYangChanging || l == LineYinChanging
}

// Yang reports the line's value as cast (before any change).
func (l HexagramLine) Yang() bool {
	return l == LineYangStable || l == LineYangChanging
}

// Hexagram is one complete six-line cast: the primary reading, the secondary
// (post-change) reading, and the changing line positions.
type Hexagram struct {
	Lines         [6]HexagramLine `json:"lines"`           // bottom to top
	Primary       int             `json:"primary"`         // 1..64
	Secondary     int             `json:"secondary"`       // 1..64
	ChangingLines []int           `json:"changing_lines"`  // 1-indexed, bottom-up, ascending
}

// hexagramPatterns maps a bottom-up yin/yang 6-tuple to its hexagram number.
// The table is intentionally partial (matching the source system); casts that
// miss it fall back to a uniformly random number. true = yang.
var hexagramPatterns = map[[6]bool]int{
	{true, true, true, true, true, true}:       1, // The Creative
	{false, false, false, false, false, false}: 2, // The Receptive
	{false, true, false, false, true, false}:   3, // Difficulty at the Beginning
	{false, false, true, false, false, false}:  4, // Youthful Folly
}

// HexagramCaster generates hexagrams from a random source.
// The zero value is not usable; construct with NewHexagramCaster.
type HexagramCaster struct {
	rng *rand.Rand
}

// NewHexagramCaster creates a caster. Pass a seeded source for deterministic
// tests; nil uses a time-seeded source.
func NewHexagramCaster(src rand.Source) *HexagramCaster {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &HexagramCaster{rng: rand.New(src)}
}

// Cast draws six lines bottom to top, three coins per line (2 or 3 each,
// summed to 6..9), and resolves the primary and secondary hexagram numbers.
func (c *HexagramCaster) Cast() Hexagram {
	var hex Hexagram
	var primary, secondary [6]bool

	for i := 0; i < 6; i++ {
		total := 0
		for t := 0; t < 3; t++ {
			total += 2 + c.rng.Intn(2)
		}
		var line HexagramLine
		switch total {
		case 6:
			line = LineYinChanging
		case 7:
			line = LineYangStable
		case 8:
			line = LineYinStable
		case 9:
			line = LineYangChanging
		}
		hex.Lines[i] = line
		primary[i] = line.Yang()
		if line.Changing() {
			secondary[i] = !line.Yang()
			hex.ChangingLines = append(hex.ChangingLines, i+1)
		} else {
			secondary[i] = line.Yang()
		}
	}

	hex.Primary = c.lookup(primary)
	hex.Secondary = c.lookup(secondary)
	return hex
}

// lookup resolves a yin/yang stack against the known-pattern table.
// Missing entries resolve to a uniformly random hexagram number.
func (c *HexagramCaster) lookup(stack [6]bool) int {
	if n, ok := hexagramPatterns[stack]; ok {
		return n
	}
	return 1 + c.rng.Intn(64)
}

// RenderLines draws the cast top line first, as is traditional.
func (h Hexagram) RenderLines() string {
	var b strings.Builder
	for i := 5; i >= 0; i-- {
		switch h.Lines[i] {
		case LineYangStable:
			b.WriteString("▅▅▅▅▅\n")
		case LineYinStable:
			b.WriteString("▅▅ ▅▅\n")
		case LineYangChanging:
			b.WriteString("▅▅▅▅▅ (changing)\n")
		case LineYinChanging:
			b.WriteString("▅▅ ▅▅ (changing)\n")
		}
	}
	return b.String()
}
