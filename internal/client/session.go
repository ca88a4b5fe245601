// internal/client/session.go
package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/coder/websocket"
	"github.com/sanity-io/litter"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/pontoon/internal/cards"
	"github.com/jason-s-yu/pontoon/internal/protocol"
)

// ErrConnection wraps any transport failure. Front ends surface it as a
// generic disconnected state.
var ErrConnection = errors.New("connection error")

// ErrAbandoned is returned by Run when the player walked away from the
// table instead of finishing the hand.
var ErrAbandoned = errors.New("game abandoned")

// State names a position in the client session's state machine.
type State string

const (
	StateConnecting       State = "connecting"
	StateJoined           State = "joined"
	StateDealt            State = "dealt"
	StateAwaitingDecision State = "awaiting_decision"
	StateAwaitingResult   State = "awaiting_result"
	StateClosed           State = "closed"
)

// Session is the player's mirror of the dealer session. It owns the local
// hand and relays decisions from its Player over the stream.
type Session struct {
	conn   *websocket.Conn
	player Player
	hand   *cards.Hand
	state  State
	log    *logrus.Entry

	PlayerID int64
	GameID   int64

	// pontoon is fixed when the initial two cards arrive.
	pontoon bool

	// ctx lives for the duration of Run so Game methods invoked from
	// Player.Play can reach the stream.
	ctx       context.Context
	result    *Result
	abandoned bool
}

// URL builds the game endpoint for a (host, port) pair as listed by the
// directory service.
func URL(host string, port int) string {
	return fmt.Sprintf("ws://%s:%d/game", host, port)
}

// Dial opens the stream to a game server. DNS or transport failure yields
// ErrConnection and no session.
func Dial(ctx context.Context, url string, player Player, logger *logrus.Logger) (*Session, error) {
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		Subprotocols: []string{protocol.Subprotocol},
	})
	if err != nil {
		logger.Warnf("dial %s failed: %v", url, err)
		return nil, fmt.Errorf("%w: dial %s: %v", ErrConnection, url, err)
	}
	return &Session{
		conn:   conn,
		player: player,
		hand:   &cards.Hand{},
		state:  StateConnecting,
		log:    logger.WithField("url", url),
	}, nil
}

// State returns the session's current state.
func (s *Session) State() State {
	return s.state
}

func (s *Session) setState(next State) {
	s.log.Infof("session state %s -> %s", s.state, next)
	s.state = next
}

// Run plays one full game and returns the outcome. Any stream error aborts
// to Closed with ErrConnection.
func (s *Session) Run(ctx context.Context) (Result, error) {
	s.ctx = ctx
	defer func() {
		s.conn.Close(websocket.StatusNormalClosure, "game over")
		if s.state != StateClosed {
			s.setState(StateClosed)
		}
	}()

	if err := s.write(protocol.Message{Kind: protocol.KindClientJoin}); err != nil {
		return Result{}, err
	}

	for s.state != StateClosed {
		msg, err := protocol.Read(ctx, s.conn)
		if err != nil {
			s.log.Warnf("session aborted reading: %v", err)
			s.setState(StateClosed)
			return Result{}, fmt.Errorf("%w: %v", ErrConnection, err)
		}
		if err := s.dispatch(msg); err != nil {
			return Result{}, err
		}
	}

	if s.abandoned {
		return Result{}, ErrAbandoned
	}
	if s.result == nil {
		return Result{}, fmt.Errorf("%w: stream closed before result", ErrConnection)
	}
	return *s.result, nil
}

func (s *Session) dispatch(msg protocol.Message) error {
	switch msg.Kind {
	case protocol.KindJoinAck:
		s.PlayerID = msg.PlayerID
		s.GameID = msg.GameID
		s.log = s.log.WithFields(logrus.Fields{"game_id": s.GameID, "player_id": s.PlayerID})
		s.setState(StateJoined)
		if err := s.write(protocol.Message{Kind: protocol.KindPlayerReady}); err != nil {
			return err
		}

	case protocol.KindGameInit:
		for _, c := range msg.Cards {
			s.hand.Add(c)
		}
		s.pontoon = s.hand.IsPontoon()
		s.log.Infof("dealt %s (total %d)", s.hand, s.hand.Total())
		s.setState(StateDealt)

	case protocol.KindTurnNotify:
		// the dealer writes the next turn's notify before it reads a bust
		// self-report, so a stale notify can arrive after the hand is over;
		// only a dealt hand awaiting its turn may act on one
		if s.state != StateDealt {
			s.log.Warnf("ignoring %s message in state %s", msg.Kind, s.state)
			s.log.Debugf("unexpected frame: %s", litter.Sdump(msg))
			return nil
		}
		s.setState(StateAwaitingDecision)
		s.player.Play(s)
		if s.state == StateAwaitingDecision {
			// the Player made no progressing call; stand to keep both
			// machines in step
			s.log.Warn("player made no decision, standing")
			return s.Stand()
		}

	case protocol.KindGameResult:
		s.handleResult(msg)

	default:
		s.log.Warnf("ignoring %s message in state %s", msg.Kind, s.state)
		s.log.Debugf("unexpected frame: %s", litter.Sdump(msg))
	}
	return nil
}

// Twist requests one more card and waits for it. A busted hand is
// self-reported immediately; a game_result here means the server forced a
// stand (deck ran dry).
func (s *Session) Twist() error {
	if s.state != StateAwaitingDecision {
		return fmt.Errorf("cannot twist in state %s", s.state)
	}
	if err := s.write(protocol.Message{Kind: protocol.KindTurnResponse, Action: protocol.ActionTwist}); err != nil {
		return err
	}

	msg, err := protocol.Read(s.ctx, s.conn)
	if err != nil {
		s.log.Warnf("session aborted awaiting card: %v", err)
		s.setState(StateClosed)
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	switch msg.Kind {
	case protocol.KindCardTransfer:
		if len(msg.Cards) != 1 {
			s.log.Warnf("card transfer carried %d cards", len(msg.Cards))
		}
		for _, c := range msg.Cards {
			s.hand.Add(c)
		}
		s.log.Infof("twisted into %s (total %d)", s.hand, s.hand.Total())
		if s.hand.IsBust() {
			s.log.Info("busted, reporting")
			if err := s.write(protocol.Message{Kind: protocol.KindTurnResponse, Action: protocol.ActionBust}); err != nil {
				return err
			}
			s.setState(StateAwaitingResult)
		} else {
			s.setState(StateDealt)
		}
	case protocol.KindGameResult:
		s.handleResult(msg)
	default:
		s.log.Warnf("ignoring %s message while awaiting card", msg.Kind)
		s.log.Debugf("unexpected frame: %s", litter.Sdump(msg))
	}
	return nil
}

// Stand ends the turn, sending the hand and its locally computed total.
func (s *Session) Stand() error {
	if s.state != StateAwaitingDecision {
		return fmt.Errorf("cannot stand in state %s", s.state)
	}
	if err := s.write(protocol.Message{
		Kind:         protocol.KindTurnResponse,
		Action:       protocol.ActionStick,
		Hand:         s.hand.Cards(),
		ClaimedTotal: s.hand.Total(),
	}); err != nil {
		return err
	}
	s.setState(StateAwaitingResult)
	return nil
}

// Abandon tells the dealer the player is leaving and ends the session
// without a result; Run reports it as ErrAbandoned.
func (s *Session) Abandon() error {
	if s.state == StateClosed {
		return fmt.Errorf("cannot abandon in state %s", s.state)
	}
	if err := s.write(protocol.Message{Kind: protocol.KindClientDisconnect}); err != nil {
		return err
	}
	s.abandoned = true
	s.setState(StateClosed)
	return nil
}

// Hand returns the player's current cards. Local only.
func (s *Session) Hand() []cards.Card {
	return s.hand.Cards()
}

// Total returns the current ace-resolved hand total. Local only.
func (s *Session) Total() int {
	return s.hand.Total()
}

// SetAceHigh toggles one of the player's own aces. Local only.
func (s *Session) SetAceHigh(i int, high bool) error {
	return s.hand.SetAceHigh(i, high)
}

// ChangeBet updates the stake through the Player contract. Local only.
func (s *Session) ChangeBet(v int) error {
	return s.player.SetBet(v)
}

// handleResult applies the balance delta and closes the session: +1.5x the
// bet on a pontoon win, +1x on a plain win, -1x on a loss.
func (s *Session) handleResult(msg protocol.Message) {
	won := msg.PlayerWon != nil && *msg.PlayerWon
	bet := s.player.Bet()

	delta := -bet
	if won {
		delta = bet
		if msg.Pontoon {
			delta = bet + bet/2
		}
	}
	s.player.AdjustBalance(delta)

	res := Result{
		Won:          won,
		Pontoon:      won && msg.Pontoon,
		Delta:        delta,
		DealerHand:   msg.DealerHand,
		FinalBalance: s.player.Balance(),
	}
	s.result = &res
	s.log.Infof("result: won=%v pontoon=%v delta=%+d balance=%d (dealer %s)",
		res.Won, res.Pontoon, res.Delta, res.FinalBalance, cards.HandOf(msg.DealerHand...))
	s.setState(StateClosed)
	s.player.Finish(res)
}

func (s *Session) write(msg protocol.Message) error {
	if err := protocol.Write(s.ctx, s.conn, msg); err != nil {
		s.log.Warnf("session aborted writing: %v", err)
		s.setState(StateClosed)
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}
