// internal/protocol/message.go
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/jason-s-yu/pontoon/internal/cards"
)

// Kind tags a protocol message. The set is closed; anything else is a
// protocol violation.
type Kind string

const (
	KindClientJoin       Kind = "client_join"       // C→S, no payload
	KindJoinAck          Kind = "join_ack"          // S→C, playerId + gameId
	KindPlayerReady      Kind = "player_ready"      // C→S, no payload
	KindGameInit         Kind = "game_init"         // S→C, the player's two cards
	KindTurnNotify       Kind = "turn_notify"       // S→C, no payload
	KindTurnResponse     Kind = "turn_response"     // C→S, action (+ hand/total on stick)
	KindCardTransfer     Kind = "card_transfer"     // S→C, one dealt card
	KindGameResult       Kind = "game_result"       // S→C, outcome
	KindClientDisconnect Kind = "client_disconnect" // C→S, no payload
)

// Action qualifies a turn_response.
type Action string

const (
	ActionTwist Action = "twist"
	ActionStick Action = "stick"
	ActionBust  Action = "bust"
)

// Message is the wire envelope for every protocol step. Which payload
// fields are populated is fixed by Kind; everything else stays omitted.
type Message struct {
	Kind Kind `json:"kind"`

	// join_ack
	PlayerID int64 `json:"playerId,omitempty"`
	GameID   int64 `json:"gameId,omitempty"`

	// game_init (two cards) and card_transfer (one card)
	Cards []cards.Card `json:"cards,omitempty"`

	// turn_response
	Action       Action       `json:"action,omitempty"`
	Hand         []cards.Card `json:"hand,omitempty"`
	ClaimedTotal int          `json:"claimedTotal,omitempty"`

	// game_result; PlayerWon is a pointer so a loss survives omitempty.
	PlayerWon  *bool        `json:"playerWon,omitempty"`
	DealerHand []cards.Card `json:"dealerHand,omitempty"`
	Pontoon    bool         `json:"pontoon,omitempty"`
}

// Encode serializes a message to its JSON wire form.
func Encode(msg Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", msg.Kind, err)
	}
	return data, nil
}

// Decode parses a wire frame back into a Message. Frames without a kind
// tag are rejected.
func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	if msg.Kind == "" {
		return Message{}, fmt.Errorf("decode message: missing kind tag")
	}
	return msg, nil
}

// Result builds a game_result message.
func Result(playerWon bool, dealerHand []cards.Card, pontoon bool) Message {
	return Message{
		Kind:       KindGameResult,
		PlayerWon:  &playerWon,
		DealerHand: dealerHand,
		Pontoon:    pontoon,
	}
}
