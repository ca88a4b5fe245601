// internal/cards/card.go
package cards

import "fmt"

// Suit represents a card suit.
type Suit string

const (
	Diamonds Suit = "diamonds"
	Hearts   Suit = "hearts"
	Spades   Suit = "spades"
	Clubs    Suit = "clubs"
)

// Suits lists the four suits in canonical deck-build order.
var Suits = []Suit{Diamonds, Hearts, Spades, Clubs}

// Rank represents a card rank.
type Rank string

const (
	Ace   Rank = "A"
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
)

// Ranks lists the thirteen ranks in canonical deck-build order.
var Ranks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

var baseValues = map[Rank]int{
	Ace: 1, Two: 2, Three: 3, Four: 4, Five: 5, Six: 6, Seven: 7,
	Eight: 8, Nine: 9, Ten: 10, Jack: 10, Queen: 10, King: 10,
}

var suitSymbols = map[Suit]string{
	Diamonds: "♦",
	Hearts:   "♥",
	Spades:   "♠",
	Clubs:    "♣",
}

// Card is a playing card. AceHigh is meaningful only when Rank is Ace and
// controls whether the ace counts as 11 or 1; it never participates in
// identity.
type Card struct {
	Suit    Suit `json:"suit"`
	Rank    Rank `json:"rank"`
	AceHigh bool `json:"aceHigh,omitempty"`
}

// Value returns the pontoon point value of the card: 11 for a high ace,
// otherwise the base rank value (court cards count 10).
func (c Card) Value() int {
	if c.Rank == Ace && c.AceHigh {
		return 11
	}
	return baseValues[c.Rank]
}

// Equals reports whether two cards are the same (suit, rank) pair. The
// ace-high flag is presentation state and is ignored.
func (c Card) Equals(other Card) bool {
	return c.Suit == other.Suit && c.Rank == other.Rank
}

// String returns a short representation such as "A♦" or "10♠".
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, suitSymbols[c.Suit])
}
