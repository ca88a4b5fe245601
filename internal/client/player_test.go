// internal/client/player_test.go
package client

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/pontoon/internal/cards"
)

func TestSetBetValidation(t *testing.T) {
	p := &BasePlayer{}
	p.SetBalance(50)

	assert.ErrorIs(t, p.SetBet(0), ErrInvalidBet)
	assert.ErrorIs(t, p.SetBet(-5), ErrInvalidBet)

	require.NoError(t, p.SetBet(20))
	assert.Equal(t, 20, p.Bet())

	// bets above the balance clamp rather than fail
	require.NoError(t, p.SetBet(80))
	assert.Equal(t, 50, p.Bet())
}

func TestAdjustBalanceReportsSolvency(t *testing.T) {
	p := &BasePlayer{}
	p.SetBalance(30)

	assert.True(t, p.AdjustBalance(-10))
	assert.Equal(t, 20, p.Balance())

	assert.False(t, p.AdjustBalance(-20), "a zero balance is no longer positive")
	assert.Equal(t, 0, p.Balance())
}

func TestBalanceIsSafeUnderConcurrentAccess(t *testing.T) {
	p := &BasePlayer{}
	p.SetBalance(0)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.AdjustBalance(1)
			_ = p.Balance()
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, p.Balance())
}

// fakeGame records the single decision a player makes.
type fakeGame struct {
	total  int
	twists int
	stands int
}

func (g *fakeGame) Twist() error               { g.twists++; return nil }
func (g *fakeGame) Stand() error               { g.stands++; return nil }
func (g *fakeGame) Abandon() error             { return nil }
func (g *fakeGame) Hand() []cards.Card         { return nil }
func (g *fakeGame) Total() int                 { return g.total }
func (g *fakeGame) SetAceHigh(int, bool) error { return nil }
func (g *fakeGame) ChangeBet(int) error        { return nil }

func TestThresholdPlayerDecision(t *testing.T) {
	p, err := NewThresholdPlayer(100, 10, 17)
	require.NoError(t, err)

	low := &fakeGame{total: 12}
	p.Play(low)
	assert.Equal(t, 1, low.twists)
	assert.Equal(t, 0, low.stands)

	high := &fakeGame{total: 17}
	p.Play(high)
	assert.Equal(t, 0, high.twists)
	assert.Equal(t, 1, high.stands, "stands at exactly the threshold")
}

func TestNewThresholdPlayerRejectsBadBet(t *testing.T) {
	_, err := NewThresholdPlayer(100, 0, 17)
	assert.ErrorIs(t, err, ErrInvalidBet)
}
