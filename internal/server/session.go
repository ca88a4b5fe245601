// internal/server/session.go
package server

import (
	"context"
	"errors"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/pontoon/internal/cards"
	"github.com/jason-s-yu/pontoon/internal/protocol"
)

// State names a position in the dealer session's state machine.
type State string

const (
	StateAwaitingPlayer State = "awaiting_player"
	StateDealt          State = "dealt"
	StatePlayerTurn     State = "player_turn"
	StateResolved       State = "resolved"
	StateClosed         State = "closed"
)

// Session is the per-connection dealer state machine. It owns the deck and
// both hands, drives the protocol from join to result, and never touches
// another session's state.
type Session struct {
	GameID   int64
	PlayerID int64

	conn        *websocket.Conn
	deck        *cards.Deck
	dealer      *cards.Hand
	player      *cards.Hand
	readTimeout time.Duration
	state       State
	log         *logrus.Entry

	// playerPontoon is fixed at deal time, before any twist.
	playerPontoon bool
}

// NewSession wires up a dealer session for one accepted connection.
func NewSession(conn *websocket.Conn, deck *cards.Deck, gameID, playerID int64, readTimeout time.Duration, logger *logrus.Logger) *Session {
	return &Session{
		GameID:      gameID,
		PlayerID:    playerID,
		conn:        conn,
		deck:        deck,
		dealer:      &cards.Hand{},
		player:      &cards.Hand{},
		readTimeout: readTimeout,
		state:       StateAwaitingPlayer,
		log: logger.WithFields(logrus.Fields{
			"game_id":   gameID,
			"player_id": playerID,
		}),
	}
}

// State returns the session's current state.
func (s *Session) State() State {
	return s.state
}

func (s *Session) setState(next State) {
	s.log.Infof("session state %s -> %s", s.state, next)
	s.state = next
}

// Close tears down the underlying connection, unblocking any pending read.
func (s *Session) Close() {
	s.conn.Close(websocket.StatusGoingAway, "server shutting down")
}

// read blocks for the next client message, bounded by the idle timeout.
func (s *Session) read(ctx context.Context) (protocol.Message, error) {
	rctx, cancel := context.WithTimeout(ctx, s.readTimeout)
	defer cancel()
	return protocol.Read(rctx, s.conn)
}

// expect reads until a message of the wanted kind arrives. Kinds that are
// invalid in the current state are logged and skipped rather than aborting;
// a client_disconnect short-circuits.
func (s *Session) expect(ctx context.Context, want protocol.Kind) (protocol.Message, error) {
	for {
		msg, err := s.read(ctx)
		if err != nil {
			return protocol.Message{}, err
		}
		switch msg.Kind {
		case want:
			return msg, nil
		case protocol.KindClientDisconnect:
			return msg, nil
		default:
			s.log.Warnf("ignoring %s message in state %s (wanted %s)", msg.Kind, s.state, want)
		}
	}
}

// Run drives the whole game on the caller's goroutine. Any transport error
// aborts straight to Closed; the returned error is for the accept loop's
// log, the client learns nothing beyond the dropped connection.
func (s *Session) Run(ctx context.Context) error {
	defer s.setState(StateClosed)

	msg, err := s.expect(ctx, protocol.KindClientJoin)
	if err != nil {
		s.log.Warnf("session aborted awaiting join: %v", err)
		return err
	}
	if msg.Kind == protocol.KindClientDisconnect {
		return nil
	}

	if err := protocol.Write(ctx, s.conn, protocol.Message{
		Kind:     protocol.KindJoinAck,
		PlayerID: s.PlayerID,
		GameID:   s.GameID,
	}); err != nil {
		s.log.Warnf("session aborted sending join ack: %v", err)
		return err
	}
	s.setState(StateDealt)

	msg, err = s.expect(ctx, protocol.KindPlayerReady)
	if err != nil {
		s.log.Warnf("session aborted awaiting ready: %v", err)
		return err
	}
	if msg.Kind == protocol.KindClientDisconnect {
		return nil
	}

	if err := s.deal(ctx); err != nil {
		s.log.Warnf("session aborted dealing: %v", err)
		return err
	}
	s.setState(StatePlayerTurn)

	return s.playerTurn(ctx)
}

// deal draws two cards for the player, sends them, then draws the dealer's
// two cards which stay hidden until resolution.
func (s *Session) deal(ctx context.Context) error {
	var initial []cards.Card
	for i := 0; i < 2; i++ {
		c, err := s.deck.Pull()
		if err != nil {
			return err
		}
		s.player.Add(c)
		initial = append(initial, c)
	}
	if err := protocol.Write(ctx, s.conn, protocol.Message{
		Kind:  protocol.KindGameInit,
		Cards: initial,
	}); err != nil {
		return err
	}

	for i := 0; i < 2; i++ {
		c, err := s.deck.Pull()
		if err != nil {
			return err
		}
		s.dealer.Add(c)
	}

	s.playerPontoon = s.player.IsPontoon()
	if s.playerPontoon {
		s.log.Info("player dealt a pontoon")
	}
	return nil
}

// playerTurn loops notify/response until the player sticks, busts, runs the
// deck dry, or disconnects.
func (s *Session) playerTurn(ctx context.Context) error {
	for {
		if err := protocol.Write(ctx, s.conn, protocol.Message{Kind: protocol.KindTurnNotify}); err != nil {
			s.log.Warnf("session aborted notifying turn: %v", err)
			return err
		}

		msg, err := s.expect(ctx, protocol.KindTurnResponse)
		if err != nil {
			s.log.Warnf("session aborted awaiting turn response: %v", err)
			return err
		}
		if msg.Kind == protocol.KindClientDisconnect {
			s.log.Info("player disconnected mid-turn")
			return nil
		}

		switch msg.Action {
		case protocol.ActionTwist:
			done, err := s.twist(ctx)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		case protocol.ActionStick:
			s.checkClaim(msg)
			return s.resolve(ctx, false)
		case protocol.ActionBust:
			s.log.Info("player self-reported bust")
			return s.resolve(ctx, true)
		default:
			s.log.Warnf("ignoring turn response with unknown action %q", msg.Action)
		}
	}
}

// twist deals one card to the player. An exhausted deck forces a stand: the
// session resolves from its own record instead of leaving the game hanging.
func (s *Session) twist(ctx context.Context) (done bool, err error) {
	c, err := s.deck.Pull()
	if errors.Is(err, cards.ErrDeckExhausted) {
		s.log.Error("deck exhausted mid-hand, forcing a stand")
		return true, s.resolve(ctx, false)
	}
	if err != nil {
		return false, err
	}
	s.player.Add(c)
	s.log.Infof("dealt %s to player, %d cards left", c, s.deck.Size())

	if err := protocol.Write(ctx, s.conn, protocol.Message{
		Kind:  protocol.KindCardTransfer,
		Cards: []cards.Card{c},
	}); err != nil {
		s.log.Warnf("session aborted sending card: %v", err)
		return false, err
	}
	return false, nil
}

// checkClaim compares the client's stick payload against the server's own
// record. The server view stays authoritative either way; mismatches are
// only flagged.
func (s *Session) checkClaim(msg protocol.Message) {
	serverTotal := s.player.Total()
	if msg.ClaimedTotal != serverTotal {
		s.log.Warnf("claimed total %d disagrees with recomputed total %d, using recomputed", msg.ClaimedTotal, serverTotal)
	}
	if !sameCards(msg.Hand, s.player.Cards()) {
		s.log.Warnf("claimed hand [%v] is not the hand this session dealt", cards.HandOf(msg.Hand...))
	}
}

// sameCards reports whether two card slices hold the same multiset of
// (suit, rank) pairs.
func sameCards(a, b []cards.Card) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[cards.Suit]map[cards.Rank]int)
	for _, c := range a {
		if counts[c.Suit] == nil {
			counts[c.Suit] = make(map[cards.Rank]int)
		}
		counts[c.Suit][c.Rank]++
	}
	for _, c := range b {
		if counts[c.Suit] == nil || counts[c.Suit][c.Rank] == 0 {
			return false
		}
		counts[c.Suit][c.Rank]--
	}
	return true
}

// resolve compares the hands and reports the outcome. The dealer's two
// dealt cards stand as-is; ties favor the dealer, and only a pontoon beats
// a dealer 21.
func (s *Session) resolve(ctx context.Context, playerBusted bool) error {
	playerTotal := s.player.Total()
	dealerTotal := s.dealer.Total()
	dealerPontoon := s.dealer.IsPontoon()

	playerWon := false
	if !playerBusted && playerTotal <= 21 {
		switch {
		case dealerTotal > 21:
			playerWon = true
		case playerTotal > dealerTotal:
			playerWon = true
		case playerTotal == dealerTotal && s.playerPontoon && !dealerPontoon:
			playerWon = true
		}
	}
	pontoon := playerWon && s.playerPontoon

	s.setState(StateResolved)
	s.log.Infof("resolved: player %d vs dealer %d (%s), playerWon=%v pontoon=%v",
		playerTotal, dealerTotal, s.dealer, playerWon, pontoon)

	if err := protocol.Write(ctx, s.conn, protocol.Result(playerWon, s.dealer.Cards(), pontoon)); err != nil {
		s.log.Warnf("session aborted sending result: %v", err)
		return err
	}
	return nil
}
