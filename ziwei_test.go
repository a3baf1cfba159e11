package mysticbot

import (
	"strings"
	"testing"
)

// ══════════════════════════════════════════════
// Zi Wei placement
// ══════════════════════════════════════════════

func TestMingGong_Formula(t *testing.T) {
	// (month + day/3) % 12, hour ignored.
	if got := MingGong(1990, 5, 15, 14); got != (5+15/3)%12 {
		t.Fatalf("expected %d, got %d", (5+15/3)%12, got)
	}
	if MingGong(1990, 5, 15, 3) != MingGong(1990, 5, 15, 23) {
		t.Fatal("hour must not move the simplified life palace")
	}
}

func TestMingGong_AlwaysInRange(t *testing.T) {
	for month := 1; month <= 12; month++ {
		for day := 1; day <= 31; day++ {
			mg := MingGong(2000, month, day, 0)
			if mg < 0 || mg > 11 {
				t.Fatalf("month %d day %d: palace %d out of range", month, day, mg)
			}
		}
	}
}

func TestMainStars_AllPositionsInRange(t *testing.T) {
	for year := 1960; year <= 2020; year += 3 {
		mg := MingGong(year, 7, 21, 10)
		stars := MainStars(mg, year, 7, 21, 10)
		if len(stars) != 6 {
			t.Fatalf("expected 6 main stars, got %d", len(stars))
		}
		for star, pos := range stars {
			if pos < 0 || pos > 11 {
				t.Fatalf("star %s at %d out of range", star, pos)
			}
		}
	}
}

func TestMainStars_TianFuMirrorsZiWei(t *testing.T) {
	mg := MingGong(1990, 5, 15, 14)
	stars := MainStars(mg, 1990, 5, 15, 14)
	ziWei := stars["Zi Wei"]
	want := mod(12-(ziWei-mg), 12)
	if stars["Tian Fu"] != want {
		t.Fatalf("tian fu: expected %d, got %d", want, stars["Tian Fu"])
	}
}

func TestZiWeiChart_RenderShowsLifePalace(t *testing.T) {
	c := NewZiWeiChart(1990, 5, 15, 14)
	out := c.Render()
	if !strings.Contains(out, "Life Palace (Ming Gong): "+PalaceBranches[c.MingGong]) {
		t.Fatalf("render missing life palace line: %q", out)
	}
}

func TestZiWeiChart_StarsInSorted(t *testing.T) {
	c := ZiWeiChart{MingGong: 0, Stars: map[string]int{"B": 3, "A": 3, "C": 5}}
	got := c.StarsIn(3)
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Fatalf("expected sorted [A B], got %v", got)
	}
}
