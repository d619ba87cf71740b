package glossary

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	g, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if g.Len() != 0 {
		t.Fatalf("expected empty glossary, got %d rules", g.Len())
	}
	if got := g.Apply("unchanged"); got != "unchanged" {
		t.Fatalf("empty glossary must be a no-op, got %q", got)
	}
}

func TestLoadMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed file")
	}
}

func TestLoadAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.json")
	if err := os.WriteFile(path, []byte(`{"the one":"o Escolhido","Zion":"Sião"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if g.Len() != 2 {
		t.Fatalf("expected 2 rules, got %d", g.Len())
	}

	got := g.Apply("The One must reach zion before dawn.")
	want := "o Escolhido must reach Sião before dawn."
	if got != want {
		t.Fatalf("Apply = %q, want %q", got, want)
	}
}

func TestApplyRespectsWordBoundaries(t *testing.T) {
	g := FromMap(map[string]string{"one": "um"})
	if got := g.Apply("someone has one phone"); got != "someone has um phone" {
		t.Fatalf("boundary handling wrong: %q", got)
	}
}

func TestApplyIsDeterministic(t *testing.T) {
	g := FromMap(map[string]string{"a thing": "X", "thing": "Y"})
	first := g.Apply("a thing and another thing")
	for i := 0; i < 10; i++ {
		if got := g.Apply("a thing and another thing"); got != first {
			t.Fatalf("nondeterministic apply: %q vs %q", got, first)
		}
	}
}

func TestNilGlossary(t *testing.T) {
	var g *Glossary
	if got := g.Apply("text"); got != "text" {
		t.Fatalf("nil glossary must pass through, got %q", got)
	}
	if g.Len() != 0 {
		t.Fatal("nil glossary has no rules")
	}
}
