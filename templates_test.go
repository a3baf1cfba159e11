package mysticbot

import (
	"strings"
	"testing"
)

// ══════════════════════════════════════════════
// Localized templates
// ══════════════════════════════════════════════

func TestTemplates_EveryIDHasEnglish(t *testing.T) {
	for id, byLang := range templates {
		if _, ok := byLang[LangEN]; !ok {
			t.Errorf("template %q has no English text", id)
		}
	}
}

func TestTemplates_UnknownLanguageFallsBack(t *testing.T) {
	en := T(TmplApology, LangEN)
	if got := T(TmplApology, Language("fr")); got != en {
		t.Fatalf("unknown language must fall back to English, got %q", got)
	}
	if got := T(TmplApology, ""); got != en {
		t.Fatalf("empty language must fall back to English, got %q", got)
	}
}

func TestTemplates_ChineseWhereProvided(t *testing.T) {
	if T(TmplApology, LangZH) == T(TmplApology, LangEN) {
		t.Fatal("the apology must be localized for Chinese")
	}
}

func TestTF_FormatsArguments(t *testing.T) {
	got := TF(TmplStart, LangEN, "Ana")
	if !strings.Contains(got, "Hello Ana!") {
		t.Fatalf("greeting must carry the name: %q", got)
	}
}

func TestParseLanguage(t *testing.T) {
	if ParseLanguage("zh") != LangZH {
		t.Fatal("zh must parse to Chinese")
	}
	if ParseLanguage("en") != LangEN || ParseLanguage("") != LangEN || ParseLanguage("de") != LangEN {
		t.Fatal("everything else must default to English")
	}
}
