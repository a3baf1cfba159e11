package mysticbot

import (
	"fmt"
	"sort"
	"strings"
)

// ──────────────────────────────────────────────
// Zi Wei Dou Shu — palaces and main stars
// ──────────────────────────────────────────────
//
// Simplified placement: no solar-to-lunar conversion, a single birth_sum
// drives the star offsets. All positions stay in [0,11] by construction.

// Palaces are the 12 life-domain slots, index 0 = Life.
var Palaces = []string{
	"Life", "Wealth", "Career", "Travel", "Friends", "Health",
	"Children", "Spouse", "Property", "Reputation", "Happiness", "Parents",
}

// PalaceBranches labels each branch position for chart display.
var PalaceBranches = []string{
	"Zi (Rat)", "Chou (Ox)", "Yin (Tiger)", "Mao (Rabbit)",
	"Chen (Dragon)", "Si (Snake)", "Wu (Horse)", "Wei (Goat)",
	"Shen (Monkey)", "You (Rooster)", "Xu (Dog)", "Hai (Pig)",
}

// ziWeiKeyPalaces are the palaces shown in detail to keep the chart compact.
var ziWeiKeyPalaces = map[string]bool{"Life": true, "Wealth": true, "Career": true, "Spouse": true}

// MingGong computes the Life Palace index: (month + day/3) % 12.
// Hour is accepted for interface stability but does not move the palace in
// this simplified form.
func MingGong(year, month, day, hour int) int {
	return mod(month+day/3, 12)
}

// MainStars places the main stars relative to the Life Palace.
// All offsets derive from birth_sum = year%10 + month + day.
func MainStars(mingGong, year, month, day, hour int) map[string]int {
	birthSum := year%10 + month + day
	ziWei := mod(mingGong+birthSum%12, 12)
	tianFu := mod(12-(ziWei-mingGong), 12)
	return map[string]int{
		"Zi Wei":    ziWei,
		"Tian Fu":   tianFu,
		"Tai Yang":  mod(ziWei+3, 12),
		"Tai Yin":   mod(tianFu+1, 12),
		"Wu Qu":     mod(ziWei+1, 12),
		"Tian Tong": mod(ziWei+5, 12),
	}
}

// ZiWeiChart is the computed chart for one birth moment.
type ZiWeiChart struct {
	MingGong int            `json:"ming_gong"` // Life Palace index
	Stars    map[string]int `json:"stars"`     // star name -> palace index
}

// NewZiWeiChart computes the Life Palace and star placements.
func NewZiWeiChart(year, month, day, hour int) ZiWeiChart {
	mg := MingGong(year, month, day, hour)
	return ZiWeiChart{MingGong: mg, Stars: MainStars(mg, year, month, day, hour)}
}

// StarsIn returns the stars placed in the given palace index, sorted by name.
func (c ZiWeiChart) StarsIn(palace int) []string {
	var stars []string
	for star, pos := range c.Stars {
		if pos == palace {
			stars = append(stars, star)
		}
	}
	sort.Strings(stars)
	return stars
}

// Render formats the chart summary: the Life Palace branch plus the key
// palaces that hold stars.
func (c ZiWeiChart) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Life Palace (Ming Gong): %s\n", PalaceBranches[c.MingGong])
	for idx, palace := range Palaces {
		if !ziWeiKeyPalaces[palace] {
			continue
		}
		stars := c.StarsIn(idx)
		if len(stars) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s Palace: %s\n", palace, strings.Join(stars, ", "))
	}
	return b.String()
}
