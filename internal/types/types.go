package types

import (
	"github.com/mrtngo/stop/internal/game"
	"github.com/mrtngo/stop/internal/room"
)

// Client -> server message types.
const (
	MsgCreateRoom     = "create_room"
	MsgJoinRoom       = "join_room"
	MsgUpdateSettings = "update_settings"
	MsgStartRound     = "start_round"
	MsgSubmitAnswers  = "submit_answers"
	MsgCallStop       = "call_stop"
	MsgLeaveRoom      = "leave_room"
)

// Server -> client message types.
const (
	MsgAck          = "ack"
	MsgRoomState    = "room_state"
	MsgRoundResults = "round_results"
)

type ClientMessage struct {
	Type         string            `json:"type"`
	Name         string            `json:"name,omitempty"`
	Code         string            `json:"code,omitempty"`
	Categories   []string          `json:"categories,omitempty"`
	RoundSeconds int               `json:"roundSeconds,omitempty"`
	Answers      map[string]string `json:"answers,omitempty"`
}

// ServerMessage is every outbound frame: acks (OK set, For echoing the
// request type), room_state pushes (State set) and round_results pushes
// (Results set).
type ServerMessage struct {
	Type    string             `json:"type"`
	For     string             `json:"for,omitempty"`
	OK      *bool              `json:"ok,omitempty"`
	Error   string             `json:"error,omitempty"`
	Code    string             `json:"code,omitempty"`
	State   *room.StateView    `json:"state,omitempty"`
	Results *game.RoundResults `json:"results,omitempty"`
}

func Ack(forType, code string, err error) ServerMessage {
	ok := err == nil
	msg := ServerMessage{Type: MsgAck, For: forType, OK: &ok, Code: code}
	if err != nil {
		msg.Error = err.Error()
	}
	return msg
}
