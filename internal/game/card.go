package game

import "fmt"

// Card is one face of a pair. Two cards match when their values are equal.
type Card struct {
	value   string
	matched bool
}

// NewCard returns a face-down, unmatched card carrying value.
func NewCard(value string) (*Card, error) {
	if value == "" {
		return nil, fmt.Errorf("%w: card value must not be empty", ErrInvalidArgument)
	}
	return &Card{value: value}, nil
}

// Value returns the pairing key.
func (c *Card) Value() string { return c.value }

// Matched reports whether the card's pair has been found.
func (c *Card) Matched() bool { return c.matched }

// Matches reports whether c and o form a pair.
func (c *Card) Matches(o *Card) bool { return o != nil && c.value == o.value }

// markMatched is one-way; there is no way to unmatch a card.
func (c *Card) markMatched() { c.matched = true }
