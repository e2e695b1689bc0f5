// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package i18n

import "testing"

func TestInitAndAvailableLocales(t *testing.T) {
	Init("en")
	if GetLang() != "en" {
		t.Fatalf("expected lang 'en', got %q", GetLang())
	}
	av := GetAvailableLocales()
	for _, k := range []string{"en", "de"} {
		if _, ok := av[k]; !ok {
			t.Fatalf("expected available locale %q to be present", k)
		}
	}
	if av["de"] != "Deutsch" {
		t.Fatalf("unexpected display name for de: %q", av["de"])
	}
}

func TestT_BasicAndFormatting(t *testing.T) {
	Init("en")
	if got := T("settings.saved"); got != "Settings saved" {
		t.Fatalf("unexpected English message: %q", got)
	}
	if got := T("import.done", 3); got != "Imported 3 account(s)" {
		t.Fatalf("unexpected formatted translation: %q", got)
	}
	if got := T("poll.cycle", "c1", 2, 1, 0); got != "Cycle c1: checked 2, accepted 1, waiting 0" {
		t.Fatalf("unexpected multi-argument translation: %q", got)
	}

	SetLang("de")
	if GetLang() != "de" {
		t.Fatalf("expected lang 'de', got %q", GetLang())
	}
	if got := T("settings.saved"); got != "Einstellungen gespeichert" {
		t.Fatalf("expected German message, got %q", got)
	}
	Init("en")
}

func TestT_UnknownIDAndFallback(t *testing.T) {
	Init("fr-CA")
	if GetLang() != "en" {
		t.Fatalf("unsupported language should fall back to en, got %q", GetLang())
	}
	if got := T("no.such.message"); got != "no.such.message" {
		t.Fatalf("unknown ID should be returned verbatim, got %q", got)
	}

	Init("de-AT")
	if GetLang() != "de" {
		t.Fatalf("regional variant should match de, got %q", GetLang())
	}
	Init("en")
}
