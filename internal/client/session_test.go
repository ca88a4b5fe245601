// internal/client/session_test.go
package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/pontoon/internal/cards"
	"github.com/jason-s-yu/pontoon/internal/protocol"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

// scriptedServer runs fn as the dealer side of one connection and returns
// the ws:// URL to dial.
func scriptedServer(t *testing.T, fn func(ctx context.Context, conn *websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols: []string{protocol.Subprotocol},
		})
		require.NoError(t, err)
		defer conn.Close(websocket.StatusNormalClosure, "script over")
		fn(r.Context(), conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func expectKind(t *testing.T, ctx context.Context, conn *websocket.Conn, want protocol.Kind) protocol.Message {
	t.Helper()
	msg, err := protocol.Read(ctx, conn)
	require.NoError(t, err)
	require.Equal(t, want, msg.Kind)
	return msg
}

func write(t *testing.T, ctx context.Context, conn *websocket.Conn, msg protocol.Message) {
	t.Helper()
	require.NoError(t, protocol.Write(ctx, conn, msg))
}

var (
	aceSpades    = cards.Card{Suit: cards.Spades, Rank: cards.Ace, AceHigh: true}
	kingSpades   = cards.Card{Suit: cards.Spades, Rank: cards.King}
	kingDiamonds = cards.Card{Suit: cards.Diamonds, Rank: cards.King}
	queenHearts  = cards.Card{Suit: cards.Hearts, Rank: cards.Queen}
	tenClubs     = cards.Card{Suit: cards.Clubs, Rank: cards.Ten}
	eightHearts  = cards.Card{Suit: cards.Hearts, Rank: cards.Eight}
	fiveDiamonds = cards.Card{Suit: cards.Diamonds, Rank: cards.Five}
)

// dealTo walks the dealer side of the handshake: ack the join, deal the
// cards, notify the turn.
func dealTo(t *testing.T, ctx context.Context, conn *websocket.Conn, initial ...cards.Card) {
	t.Helper()
	expectKind(t, ctx, conn, protocol.KindClientJoin)
	write(t, ctx, conn, protocol.Message{Kind: protocol.KindJoinAck, PlayerID: 2, GameID: 5})
	expectKind(t, ctx, conn, protocol.KindPlayerReady)
	write(t, ctx, conn, protocol.Message{Kind: protocol.KindGameInit, Cards: initial})
	write(t, ctx, conn, protocol.Message{Kind: protocol.KindTurnNotify})
}

func runSession(t *testing.T, url string, player Player) (Result, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sess, err := Dial(ctx, url, player, testLogger())
	require.NoError(t, err)
	return sess.Run(ctx)
}

func TestPlainWinIncreasesBalanceByBet(t *testing.T) {
	url := scriptedServer(t, func(ctx context.Context, conn *websocket.Conn) {
		dealTo(t, ctx, conn, kingSpades, queenHearts)

		stick := expectKind(t, ctx, conn, protocol.KindTurnResponse)
		require.Equal(t, protocol.ActionStick, stick.Action)
		require.Equal(t, 20, stick.ClaimedTotal)
		require.Len(t, stick.Hand, 2)

		write(t, ctx, conn, protocol.Result(true, []cards.Card{tenClubs, eightHearts}, false))
	})

	player, err := NewThresholdPlayer(100, 10, 17)
	require.NoError(t, err)

	res, err := runSession(t, url, player)
	require.NoError(t, err)

	assert.True(t, res.Won)
	assert.False(t, res.Pontoon)
	assert.Equal(t, 10, res.Delta)
	assert.Equal(t, 110, player.Balance())
	require.NotNil(t, player.LastResult)
	assert.Equal(t, res, *player.LastResult)
}

func TestPontoonWinPaysOneAndAHalfTimesBet(t *testing.T) {
	url := scriptedServer(t, func(ctx context.Context, conn *websocket.Conn) {
		dealTo(t, ctx, conn, aceSpades, kingDiamonds)

		stick := expectKind(t, ctx, conn, protocol.KindTurnResponse)
		require.Equal(t, protocol.ActionStick, stick.Action)
		require.Equal(t, 21, stick.ClaimedTotal)

		write(t, ctx, conn, protocol.Result(true, []cards.Card{kingSpades, queenHearts}, true))
	})

	player, err := NewThresholdPlayer(100, 10, 17)
	require.NoError(t, err)

	res, err := runSession(t, url, player)
	require.NoError(t, err)

	assert.True(t, res.Won)
	assert.True(t, res.Pontoon)
	assert.Equal(t, 15, res.Delta)
	assert.Equal(t, 115, player.Balance())
}

func TestLossDecreasesBalanceByBet(t *testing.T) {
	url := scriptedServer(t, func(ctx context.Context, conn *websocket.Conn) {
		dealTo(t, ctx, conn, fiveDiamonds, eightHearts)

		stick := expectKind(t, ctx, conn, protocol.KindTurnResponse)
		require.Equal(t, protocol.ActionStick, stick.Action)

		write(t, ctx, conn, protocol.Result(false, []cards.Card{kingSpades, queenHearts}, false))
	})

	// threshold below the dealt 13 so the bot stands immediately
	player, err := NewThresholdPlayer(100, 10, 13)
	require.NoError(t, err)

	res, err := runSession(t, url, player)
	require.NoError(t, err)

	assert.False(t, res.Won)
	assert.Equal(t, -10, res.Delta)
	assert.Equal(t, 90, player.Balance())
}

func TestTwistIntoBustSelfReports(t *testing.T) {
	url := scriptedServer(t, func(ctx context.Context, conn *websocket.Conn) {
		dealTo(t, ctx, conn, tenClubs, eightHearts)

		twist := expectKind(t, ctx, conn, protocol.KindTurnResponse)
		require.Equal(t, protocol.ActionTwist, twist.Action)
		write(t, ctx, conn, protocol.Message{Kind: protocol.KindCardTransfer, Cards: []cards.Card{fiveDiamonds}})

		bust := expectKind(t, ctx, conn, protocol.KindTurnResponse)
		require.Equal(t, protocol.ActionBust, bust.Action)

		write(t, ctx, conn, protocol.Result(false, []cards.Card{kingSpades, queenHearts}, false))
	})

	// 18 is below 19, so the bot twists once and busts on the 5
	player, err := NewThresholdPlayer(100, 10, 19)
	require.NoError(t, err)

	res, err := runSession(t, url, player)
	require.NoError(t, err)

	assert.False(t, res.Won)
	assert.Equal(t, 90, player.Balance())
}

func TestTwistLoopDrawsUntilThreshold(t *testing.T) {
	url := scriptedServer(t, func(ctx context.Context, conn *websocket.Conn) {
		dealTo(t, ctx, conn, fiveDiamonds, eightHearts) // 13

		twist := expectKind(t, ctx, conn, protocol.KindTurnResponse)
		require.Equal(t, protocol.ActionTwist, twist.Action)
		write(t, ctx, conn, protocol.Message{Kind: protocol.KindCardTransfer, Cards: []cards.Card{fiveDiamonds}}) // 18
		write(t, ctx, conn, protocol.Message{Kind: protocol.KindTurnNotify})

		stick := expectKind(t, ctx, conn, protocol.KindTurnResponse)
		require.Equal(t, protocol.ActionStick, stick.Action)
		require.Equal(t, 18, stick.ClaimedTotal)
		require.Len(t, stick.Hand, 3)

		write(t, ctx, conn, protocol.Result(true, []cards.Card{kingSpades, fiveDiamonds}, false))
	})

	player, err := NewThresholdPlayer(100, 10, 17)
	require.NoError(t, err)

	res, err := runSession(t, url, player)
	require.NoError(t, err)
	assert.True(t, res.Won)
}

func TestForcedStandResultDuringTwist(t *testing.T) {
	url := scriptedServer(t, func(ctx context.Context, conn *websocket.Conn) {
		dealTo(t, ctx, conn, fiveDiamonds, eightHearts)

		twist := expectKind(t, ctx, conn, protocol.KindTurnResponse)
		require.Equal(t, protocol.ActionTwist, twist.Action)

		// deck ran dry server-side: a result arrives instead of a card
		write(t, ctx, conn, protocol.Result(false, []cards.Card{kingSpades, queenHearts}, false))
	})

	player, err := NewThresholdPlayer(100, 10, 17)
	require.NoError(t, err)

	res, err := runSession(t, url, player)
	require.NoError(t, err)
	assert.False(t, res.Won)
	assert.Equal(t, 90, player.Balance())
}

// countingPlayer tracks how often the session asks it for a decision.
type countingPlayer struct {
	ThresholdPlayer
	plays int
}

func (p *countingPlayer) Play(g Game) {
	p.plays++
	p.ThresholdPlayer.Play(g)
}

func TestStaleTurnNotifyAfterBustIsIgnored(t *testing.T) {
	url := scriptedServer(t, func(ctx context.Context, conn *websocket.Conn) {
		dealTo(t, ctx, conn, tenClubs, eightHearts)

		twist := expectKind(t, ctx, conn, protocol.KindTurnResponse)
		require.Equal(t, protocol.ActionTwist, twist.Action)

		// the dealer's loop notifies the next turn before it reads the
		// response, so the bust self-report crosses a stale notify
		write(t, ctx, conn, protocol.Message{Kind: protocol.KindCardTransfer, Cards: []cards.Card{fiveDiamonds}})
		write(t, ctx, conn, protocol.Message{Kind: protocol.KindTurnNotify})

		bust := expectKind(t, ctx, conn, protocol.KindTurnResponse)
		require.Equal(t, protocol.ActionBust, bust.Action, "only the bust report may follow, never a second decision")

		write(t, ctx, conn, protocol.Result(false, []cards.Card{kingSpades, queenHearts}, false))
	})

	player := &countingPlayer{}
	player.Threshold = 19
	player.SetBalance(100)
	require.NoError(t, player.SetBet(10))

	res, err := runSession(t, url, player)
	require.NoError(t, err)

	assert.Equal(t, 1, player.plays, "a busted hand asks for no further decisions")
	assert.False(t, res.Won)
	assert.Equal(t, 90, player.Balance())
}

// leavingPlayer walks away as soon as it is asked to move.
type leavingPlayer struct {
	ThresholdPlayer
}

func (p *leavingPlayer) Play(g Game) {
	g.Abandon()
}

func TestAbandonMidTurn(t *testing.T) {
	url := scriptedServer(t, func(ctx context.Context, conn *websocket.Conn) {
		dealTo(t, ctx, conn, fiveDiamonds, eightHearts)
		expectKind(t, ctx, conn, protocol.KindClientDisconnect)
	})

	player := &leavingPlayer{}
	player.Threshold = 17
	player.SetBalance(100)
	require.NoError(t, player.SetBet(10))

	_, err := runSession(t, url, player)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAbandoned)
	assert.Equal(t, 100, player.Balance(), "walking away settles nothing")
	assert.Nil(t, player.LastResult)
}

func TestDialFailureIsConnectionError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	player, err := NewThresholdPlayer(100, 10, 17)
	require.NoError(t, err)

	_, err = Dial(ctx, "ws://127.0.0.1:1/game", player, testLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
}

func TestStreamDropMidGameAborts(t *testing.T) {
	url := scriptedServer(t, func(ctx context.Context, conn *websocket.Conn) {
		expectKind(t, ctx, conn, protocol.KindClientJoin)
		write(t, ctx, conn, protocol.Message{Kind: protocol.KindJoinAck, PlayerID: 2, GameID: 5})
		expectKind(t, ctx, conn, protocol.KindPlayerReady)
		conn.Close(websocket.StatusInternalError, "dropping")
	})

	player, err := NewThresholdPlayer(100, 10, 17)
	require.NoError(t, err)

	_, err = runSession(t, url, player)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
	assert.Equal(t, 100, player.Balance(), "no delta without a result")
}
