// internal/client/player.go
package client

import (
	"errors"
	"sync"

	"github.com/jason-s-yu/pontoon/internal/cards"
)

// ErrInvalidBet is returned for non-positive bet amounts. Bets above the
// current balance are clamped instead of rejected.
var ErrInvalidBet = errors.New("invalid bet")

// Result is what a Player learns when its game ends.
type Result struct {
	Won          bool
	Pontoon      bool
	Delta        int
	DealerHand   []cards.Card
	FinalBalance int
}

// Game is the view of a running session handed to a Player when it is asked
// for a decision. Exactly one of Twist, Stand, or Abandon makes progress;
// the rest are local-only.
type Game interface {
	Twist() error
	Stand() error
	Abandon() error
	Hand() []cards.Card
	Total() int
	SetAceHigh(i int, high bool) error
	ChangeBet(v int) error
}

// Player is the decision-making side of a client session: a console front
// end, a GUI, or a bot. Balance methods must be safe to call from a UI
// goroutine while the session goroutine plays.
type Player interface {
	Play(g Game)
	Balance() int
	AdjustBalance(delta int) bool
	SetBalance(v int)
	SetBet(v int) error
	Bet() int
	Finish(res Result)
}

// BasePlayer holds the mutex-guarded balance and bet shared by every Player
// variant. Embed it and implement Play/Finish.
type BasePlayer struct {
	mu      sync.Mutex
	balance int
	bet     int
}

func (p *BasePlayer) Balance() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balance
}

func (p *BasePlayer) SetBalance(v int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.balance = v
}

// AdjustBalance applies a delta and reports whether the balance is still
// positive.
func (p *BasePlayer) AdjustBalance(delta int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.balance += delta
	return p.balance > 0
}

// SetBet validates and records the stake for the next hand. Non-positive
// amounts fail with ErrInvalidBet; amounts above the balance clamp to it.
func (p *BasePlayer) SetBet(v int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v <= 0 {
		return ErrInvalidBet
	}
	if v > p.balance {
		v = p.balance
	}
	p.bet = v
	return nil
}

func (p *BasePlayer) Bet() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bet
}

// ThresholdPlayer is the automated variant: twist while the hand total is
// below Threshold, otherwise stand.
type ThresholdPlayer struct {
	BasePlayer
	Threshold int

	// LastResult records the most recent Finish call for inspection.
	LastResult *Result
}

// NewThresholdPlayer builds a bot with the given stake and strategy
// threshold.
func NewThresholdPlayer(balance, bet, threshold int) (*ThresholdPlayer, error) {
	p := &ThresholdPlayer{Threshold: threshold}
	p.SetBalance(balance)
	if err := p.SetBet(bet); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *ThresholdPlayer) Play(g Game) {
	if g.Total() < p.Threshold {
		g.Twist()
		return
	}
	g.Stand()
}

func (p *ThresholdPlayer) Finish(res Result) {
	p.LastResult = &res
}
