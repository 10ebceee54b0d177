// internal/game/deck.go
//
// Deck construction for a memory board.
// Responsibilities:
//   - Pull distinct face values from a ValueSource.
//   - Pick pairCount of them (a random subset when more are available).
//   - Emit two cards per value and shuffle them with a uniform permutation.
//
// Notes:
//   - A source that cannot supply enough distinct values fails the build with
//     ErrAssetShortage; the deck is never silently shrunk.
//   - The shuffle function has the signature of math/rand/v2.Shuffle so tests
//     can pass (*rand.Rand).Shuffle from a seeded source.

package game

import (
	"fmt"
	"math/rand/v2"
)

// ValueSource lists the face values available for building decks. Values
// must be stable identifiers; the engine never looks at asset bytes.
type ValueSource interface {
	Values() ([]string, error)
}

// ShuffleFunc permutes n elements through swap.
type ShuffleFunc func(n int, swap func(i, j int))

// DeckBuilder builds shuffled decks of paired cards.
type DeckBuilder struct {
	src     ValueSource
	shuffle ShuffleFunc
}

// NewDeckBuilder returns a builder over src. A nil shuffle uses the global
// math/rand/v2 source.
func NewDeckBuilder(src ValueSource, shuffle ShuffleFunc) *DeckBuilder {
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	return &DeckBuilder{src: src, shuffle: shuffle}
}

// Build returns 2*pairCount shuffled cards, each value appearing exactly twice.
func (b *DeckBuilder) Build(pairCount int) ([]*Card, error) {
	if pairCount <= 0 {
		return nil, fmt.Errorf("%w: pair count must be positive, got %d", ErrConfiguration, pairCount)
	}
	if b.src == nil {
		return nil, fmt.Errorf("%w: no value source", ErrAssetShortage)
	}
	raw, err := b.src.Values()
	if err != nil {
		return nil, fmt.Errorf("%w: list values: %v", ErrAssetShortage, err)
	}

	values := distinct(raw)
	if len(values) < pairCount {
		return nil, fmt.Errorf("%w: need %d distinct values, source has %d", ErrAssetShortage, pairCount, len(values))
	}
	if len(values) > pairCount {
		b.shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })
		values = values[:pairCount]
	}

	cards := make([]*Card, 0, 2*pairCount)
	for _, v := range values {
		for k := 0; k < 2; k++ {
			c, err := NewCard(v)
			if err != nil {
				return nil, err
			}
			cards = append(cards, c)
		}
	}
	Shuffle(cards, b.shuffle)
	return cards, nil
}

// Shuffle permutes cards in place.
func Shuffle(cards []*Card, shuffle ShuffleFunc) {
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
}

// distinct drops empty values and repeats, keeping first-seen order.
func distinct(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
