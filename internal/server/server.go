// internal/server/server.go
package server

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/pontoon/internal/cards"
	"github.com/jason-s-yu/pontoon/internal/config"
	"github.com/jason-s-yu/pontoon/internal/protocol"
)

// GameServer accepts connections and runs one dealer session per
// connection. It is the only mutator of the live-session set and joins
// every session goroutine on shutdown.
type GameServer struct {
	Sessions *SessionStore
	Logger   *logrus.Logger

	// NewDeck builds the deck for each new game. Tests swap in stacked
	// decks here; production uses cards.NewDeck.
	NewDeck func() *cards.Deck

	// ReadTimeout bounds each blocking session read.
	ReadTimeout time.Duration

	nextGameID   atomic.Int64
	nextPlayerID atomic.Int64
	closing      atomic.Bool
	wg           sync.WaitGroup
}

// NewGameServer builds a server with production defaults.
func NewGameServer(logger *logrus.Logger) *GameServer {
	return &GameServer{
		Sessions:    NewSessionStore(),
		Logger:      logger,
		NewDeck:     cards.NewDeck,
		ReadTimeout: time.Duration(config.ReadTimeoutSec()) * time.Second,
	}
}

// Handler upgrades each request to a WebSocket and drives a full game on
// the request's goroutine.
func (gs *GameServer) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gs.closing.Load() {
			http.Error(w, "server shutting down", http.StatusServiceUnavailable)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{protocol.Subprotocol},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			gs.Logger.Warnf("websocket accept error from %s: %v", r.RemoteAddr, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "session ended")

		if c.Subprotocol() != protocol.Subprotocol {
			gs.Logger.Warnf("client %s negotiated subprotocol %q, closing", r.RemoteAddr, c.Subprotocol())
			c.Close(websocket.StatusPolicyViolation, "client must use the 'pontoon' subprotocol")
			return
		}

		connID := uuid.New()
		sess := NewSession(c, gs.NewDeck(), gs.nextGameID.Add(1), gs.nextPlayerID.Add(1), gs.ReadTimeout, gs.Logger)
		sess.log = sess.log.WithField("conn", connID)
		gs.Sessions.Add(sess)
		gs.wg.Add(1)
		defer func() {
			gs.Sessions.Delete(sess.GameID)
			gs.wg.Done()
		}()

		gs.Logger.Infof("game %d started for %s (conn %s)", sess.GameID, r.RemoteAddr, connID)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		if err := sess.Run(ctx); err != nil {
			gs.Logger.Warnf("game %d ended with error: %v", sess.GameID, err)
		} else {
			gs.Logger.Infof("game %d ended", sess.GameID)
		}
		c.Close(websocket.StatusNormalClosure, "game over")
	}
}

// Shutdown refuses new connections, closes every live session's stream to
// unblock pending reads, and waits for all session goroutines to unwind.
func (gs *GameServer) Shutdown(ctx context.Context) error {
	gs.closing.Store(true)
	gs.Sessions.Each(func(sess *Session) {
		sess.Close()
	})

	done := make(chan struct{})
	go func() {
		gs.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
