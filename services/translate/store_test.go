package translate

import (
	"path/filepath"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "translations.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()

	key := translationKey("pt-BR", "natural", "original text")
	if _, ok := store.Get(key); ok {
		t.Fatal("expected miss on empty store")
	}

	if err := store.Put(key, "original text", "texto traduzido", "pt-BR", "natural"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok := store.Get(key)
	if !ok || got != "texto traduzido" {
		t.Fatalf("Get = %q, %v", got, ok)
	}

	// Replacing an entry keeps the latest value.
	if err := store.Put(key, "original text", "texto revisado", "pt-BR", "natural"); err != nil {
		t.Fatalf("Put replace: %v", err)
	}
	if got, _ := store.Get(key); got != "texto revisado" {
		t.Fatalf("expected replaced value, got %q", got)
	}
}

func TestNilStoreIsInert(t *testing.T) {
	var store *Store
	if _, ok := store.Get("k"); ok {
		t.Fatal("nil store must miss")
	}
	if err := store.Put("k", "a", "b", "pt-BR", "natural"); err != nil {
		t.Fatalf("nil store Put: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("nil store Close: %v", err)
	}
}
