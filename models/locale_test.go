package models

import "testing"

func TestParseLocale(t *testing.T) {
	tests := []struct {
		name     string
		lang     string
		tone     string
		wantLang string
		wantTone string
	}{
		{"explicit values", "pt-BR", "formal", "pt-BR", "formal"},
		{"underscore tag", "pt_BR", "", "pt-BR", "natural"},
		{"empty falls back to defaults", "", "", "pt-BR", "natural"},
		{"garbage tag falls back", "??", "", "pt-BR", "natural"},
		{"tone is lower-cased", "es-ES", "FORMAL", "es-ES", "formal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := ParseLocale(tt.lang, tt.tone, "pt-BR", "natural")
			if loc.Language != tt.wantLang || loc.Tone != tt.wantTone {
				t.Fatalf("ParseLocale = %+v, want %s/%s", loc, tt.wantLang, tt.wantTone)
			}
		})
	}
}

func TestParseLocaleEmptyDefaults(t *testing.T) {
	loc := ParseLocale("", "", "", "")
	if loc.Language != CanonicalLang || loc.Tone != "natural" {
		t.Fatalf("expected canonical fallback, got %+v", loc)
	}
}

func TestLanguageBase(t *testing.T) {
	if got := (Locale{Language: "pt-BR"}).LanguageBase(); got != "pt" {
		t.Fatalf("got %q", got)
	}
	if got := (Locale{Language: "en"}).LanguageBase(); got != "en" {
		t.Fatalf("got %q", got)
	}
}

func TestIsCanonical(t *testing.T) {
	if !(Locale{Language: "en-US"}).IsCanonical() {
		t.Fatal("en-US is canonical")
	}
	if !(Locale{Language: "en-GB"}).IsCanonical() {
		t.Fatal("en-GB is canonical")
	}
	if (Locale{Language: "pt-BR"}).IsCanonical() {
		t.Fatal("pt-BR is not canonical")
	}
}

func TestIdentityKey(t *testing.T) {
	withID := CatalogItem{IMDBID: "tt1", Name: "Something"}
	if withID.IdentityKey() != "tt1" {
		t.Fatalf("got %q", withID.IdentityKey())
	}
	byName := CatalogItem{Name: "  The Matrix  "}
	if byName.IdentityKey() != "the matrix" {
		t.Fatalf("got %q", byName.IdentityKey())
	}
}
