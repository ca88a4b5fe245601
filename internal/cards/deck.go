// internal/cards/deck.go
package cards

import (
	"errors"
	"math/rand"
)

// ErrDeckExhausted is returned by Pull when no cards remain.
var ErrDeckExhausted = errors.New("deck exhausted")

// Deck is a shuffled, exhaustible source of unique cards. One deck serves
// exactly one game; pulled cards are never returned.
type Deck struct {
	cards []Card
}

// NewDeck builds the canonical 52-card deck and shuffles it once. Aces are
// dealt high by default; hand scoring demotes them as needed.
func NewDeck() *Deck {
	d := &Deck{cards: make([]Card, 0, 52)}
	for _, suit := range Suits {
		for _, rank := range Ranks {
			d.cards = append(d.cards, Card{Suit: suit, Rank: rank, AceHigh: rank == Ace})
		}
	}
	d.shuffle()
	return d
}

// FromCards builds an unshuffled deck that deals the given cards in order.
// Tests use this to script exact game scenarios.
func FromCards(cs ...Card) *Deck {
	d := &Deck{cards: make([]Card, len(cs))}
	// stored reversed so Pull deals cs in the order given
	for i, c := range cs {
		if c.Rank == Ace {
			c.AceHigh = true
		}
		d.cards[len(cs)-1-i] = c
	}
	return d
}

func (d *Deck) shuffle() {
	rand.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Pull removes and returns the top card. It fails with ErrDeckExhausted
// when the deck is empty.
func (d *Deck) Pull() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrDeckExhausted
	}
	c := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return c, nil
}

// Size returns the number of cards remaining.
func (d *Deck) Size() int {
	return len(d.cards)
}
