package taboo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseDeck(t *testing.T) {
	data := []byte(`[
		{"targetWord": " Praia ", "forbiddenWords": ["areia", " ", "mar"]},
		{"palavra": "Avião", "tabus": ["voar", "asa"]}
	]`)

	deck, err := ParseDeck(data)
	if err != nil {
		t.Fatalf("ParseDeck: %v", err)
	}

	if len(deck) != 2 {
		t.Fatalf("len = %d, want 2", len(deck))
	}
	if deck[0].TargetWord != "Praia" {
		t.Errorf("target = %q, want Praia", deck[0].TargetWord)
	}
	if len(deck[0].ForbiddenWords) != 2 {
		t.Errorf("forbidden = %q, want blanks dropped", deck[0].ForbiddenWords)
	}
	if deck[1].TargetWord != "Avião" || len(deck[1].ForbiddenWords) != 2 {
		t.Errorf("legacy card = %+v", deck[1])
	}
}

func TestParseDeckErrors(t *testing.T) {
	if _, err := ParseDeck([]byte(`[]`)); !errors.Is(err, ErrEmptyDeck) {
		t.Errorf("empty deck = %v, want %v", err, ErrEmptyDeck)
	}
	if _, err := ParseDeck([]byte(`[{"forbiddenWords": ["x"]}]`)); err == nil {
		t.Error("expected an error for a card with no target word")
	}
	if _, err := ParseDeck([]byte(`{`)); err == nil {
		t.Error("expected an error for malformed JSON")
	}
}

func TestLoadDeck(t *testing.T) {
	deck, err := LoadDeck("")
	if err != nil {
		t.Fatalf("built-in deck: %v", err)
	}
	if len(deck) == 0 {
		t.Fatal("built-in deck is empty")
	}

	seen := make(map[string]bool)
	for _, c := range deck {
		key := Normalize(c.TargetWord)
		if seen[key] {
			t.Errorf("built-in deck repeats %q", c.TargetWord)
		}
		seen[key] = true
	}

	path := filepath.Join(t.TempDir(), "cards.json")
	if err := os.WriteFile(path, []byte(`[{"palavra": "Café", "tabus": ["xícara"]}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	deck, err = LoadDeck(path)
	if err != nil {
		t.Fatalf("LoadDeck(%s): %v", path, err)
	}
	if len(deck) != 1 || deck[0].TargetWord != "Café" {
		t.Errorf("deck = %+v", deck)
	}

	if _, err := LoadDeck(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file = %v, want %v", err, os.ErrNotExist)
	}

	empty := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(empty, []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDeck(empty); !errors.Is(err, ErrEmptyDeck) {
		t.Errorf("empty file = %v, want %v", err, ErrEmptyDeck)
	}
}
