// internal/cards/hand.go
package cards

import (
	"fmt"
	"strings"
)

// Hand is an ordered collection of cards held by one session. Insertion
// order matters for display and for ace resolution, not for scoring.
type Hand struct {
	cards []Card
}

// Add appends a card to the hand.
func (h *Hand) Add(c Card) {
	h.cards = append(h.cards, c)
}

// Cards returns a copy of the held cards in insertion order.
func (h *Hand) Cards() []Card {
	out := make([]Card, len(h.cards))
	copy(out, h.cards)
	return out
}

// Len returns the number of held cards.
func (h *Hand) Len() int {
	return len(h.cards)
}

// Clear empties the hand at the end of a game.
func (h *Hand) Clear() {
	h.cards = nil
}

// Total sums the hand, demoting high aces to low in hand order until the
// total no longer busts or no high aces remain. The demotion is sticky: a
// flipped ace stays low for subsequent calls unless toggled back with
// SetAceHigh.
func (h *Hand) Total() int {
	total := 0
	for _, c := range h.cards {
		total += c.Value()
	}
	for i := range h.cards {
		if total <= 21 {
			break
		}
		if h.cards[i].Rank == Ace && h.cards[i].AceHigh {
			h.cards[i].AceHigh = false
			total -= 10
		}
	}
	return total
}

// SetAceHigh toggles the ace at position i high or low. It fails if the
// index is out of range or the card is not an ace.
func (h *Hand) SetAceHigh(i int, high bool) error {
	if i < 0 || i >= len(h.cards) {
		return fmt.Errorf("no card at position %d", i)
	}
	if h.cards[i].Rank != Ace {
		return fmt.Errorf("card at position %d is %s, not an ace", i, h.cards[i])
	}
	h.cards[i].AceHigh = high
	return nil
}

// IsPontoon reports whether the hand is a two-card 21, the best possible
// pontoon hand. Callers check this before the first twist; the flag is
// meaningless afterwards.
func (h *Hand) IsPontoon() bool {
	return len(h.cards) == 2 && h.Total() == 21
}

// IsBust reports whether the hand total exceeds 21 after ace resolution.
func (h *Hand) IsBust() bool {
	return h.Total() > 21
}

// String renders the hand as "A♦ K♠".
func (h *Hand) String() string {
	parts := make([]string, len(h.cards))
	for i, c := range h.cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// HandOf builds a hand from the given cards. Used by resolution code and
// tests to reconstruct a hand from wire payloads.
func HandOf(cs ...Card) *Hand {
	h := &Hand{}
	for _, c := range cs {
		h.Add(c)
	}
	return h
}
