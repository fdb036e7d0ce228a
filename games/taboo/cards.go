/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package taboo

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

//go:embed cards.json
var defaultCards []byte

var ErrEmptyDeck = errors.New("card deck is empty")

// Card is a single target word and the words the giver may not say.
type Card struct {
	TargetWord     string   `json:"targetWord"`
	ForbiddenWords []string `json:"forbiddenWords"`
}

// UnmarshalJSON accepts both the current field names and the older
// palavra/tabus keys used by the first word lists.
func (c *Card) UnmarshalJSON(data []byte) error {
	var raw struct {
		TargetWord     string   `json:"targetWord"`
		ForbiddenWords []string `json:"forbiddenWords"`
		Palavra        string   `json:"palavra"`
		Tabus          []string `json:"tabus"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.TargetWord = raw.TargetWord
	if c.TargetWord == "" {
		c.TargetWord = raw.Palavra
	}
	c.ForbiddenWords = raw.ForbiddenWords
	if c.ForbiddenWords == nil {
		c.ForbiddenWords = raw.Tabus
	}

	return nil
}

// CardSource produces the ordered set of candidate cards.
type CardSource interface {
	Cards() []Card
}

// Deck is an immutable, ordered list of cards.
type Deck []Card

func (d Deck) Cards() []Card {
	return d
}

// ParseDeck decodes a JSON array of card records.
func ParseDeck(data []byte) (Deck, error) {
	var cards []Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("parsing cards: %w", err)
	}

	if len(cards) == 0 {
		return nil, ErrEmptyDeck
	}

	deck := make(Deck, 0, len(cards))
	for i, c := range cards {
		c.TargetWord = strings.TrimSpace(c.TargetWord)
		if c.TargetWord == "" {
			return nil, fmt.Errorf("card %d has no target word", i)
		}

		forbidden := make([]string, 0, len(c.ForbiddenWords))
		for _, w := range c.ForbiddenWords {
			if w = strings.TrimSpace(w); w != "" {
				forbidden = append(forbidden, w)
			}
		}
		c.ForbiddenWords = forbidden

		deck = append(deck, c)
	}

	return deck, nil
}

// LoadDeck reads the deck at path, or the built-in deck if path is empty.
func LoadDeck(path string) (Deck, error) {
	if path == "" {
		return ParseDeck(defaultCards)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	deck, err := ParseDeck(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	return deck, nil
}
