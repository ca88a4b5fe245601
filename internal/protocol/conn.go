// internal/protocol/conn.go
package protocol

import (
	"context"
	"fmt"
	"time"

	"github.com/coder/websocket"
)

// Subprotocol is the WebSocket subprotocol both ends must negotiate.
const Subprotocol = "pontoon"

// writeTimeout bounds a single frame write so a stalled peer cannot block
// the session goroutine on send.
const writeTimeout = 5 * time.Second

// Write encodes msg and sends it as one text frame.
func Write(ctx context.Context, c *websocket.Conn, msg Message) error {
	data, err := Encode(msg)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := c.Write(wctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("write %s message: %w", msg.Kind, err)
	}
	return nil
}

// Read blocks until the next frame arrives and decodes it. Reads and writes
// strictly alternate within a session, so callers never race on the
// connection.
func Read(ctx context.Context, c *websocket.Conn) (Message, error) {
	typ, data, err := c.Read(ctx)
	if err != nil {
		return Message{}, fmt.Errorf("read message: %w", err)
	}
	if typ != websocket.MessageText {
		return Message{}, fmt.Errorf("read message: unexpected frame type %v", typ)
	}
	return Decode(data)
}
