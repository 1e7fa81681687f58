package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mrtngo/stop/internal/game"
	"github.com/mrtngo/stop/internal/hub"
	"github.com/mrtngo/stop/internal/room"
	"github.com/mrtngo/stop/internal/types"
)

const (
	outboxSize   = 16
	writeTimeout = 3 * time.Second
)

var (
	errUnknownType = errors.New("Unknown message type")
	errBadJSON     = errors.New("Malformed message")
)

// Handler upgrades the connection and runs one session per socket. The
// connection is the actor's identity: a fresh id per socket, gone when
// the socket is.
func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		s := &session{
			id:   uuid.NewString(),
			hub:  h,
			conn: conn,
			ctx:  r.Context(),
		}
		s.log = log.With(zap.String("actor", s.id))
		s.log.Info("connected")
		s.run()
		s.log.Info("disconnected")
	}
}

// binding ties a session to the room it currently occupies: at most one
// room per connection, tracked where the connection lives.
type binding struct {
	room   *room.Room
	outbox chan room.Push
	left   chan struct{} // closed by the reader before a voluntary leave
}

type session struct {
	id      string
	hub     *hub.Hub
	conn    *websocket.Conn
	ctx     context.Context
	binding *binding
	log     *zap.Logger
}

func (s *session) run() {
	// Connection loss is a leave_room for state-machine purposes.
	defer s.leaveCurrent()

	for {
		_, data, err := s.conn.Read(s.ctx)
		if err != nil {
			return
		}

		var cm types.ClientMessage
		if err := json.Unmarshal(data, &cm); err != nil {
			s.write(types.Ack("", "", errBadJSON))
			continue
		}

		s.dispatch(cm)
	}
}

func (s *session) dispatch(cm types.ClientMessage) {
	var code string
	var err error

	switch cm.Type {
	case types.MsgCreateRoom:
		code, err = s.createRoom(cm.Name)
	case types.MsgJoinRoom:
		code, err = s.joinRoom(cm.Code, cm.Name)
	case types.MsgUpdateSettings:
		err = s.roomOp(func(reply chan error) room.Msg {
			return room.UpdateSettings{
				ActorID:      s.id,
				Categories:   cm.Categories,
				RoundSeconds: cm.RoundSeconds,
				Reply:        reply,
			}
		})
	case types.MsgStartRound:
		err = s.roomOp(func(reply chan error) room.Msg {
			return room.StartRound{ActorID: s.id, Reply: reply}
		})
	case types.MsgSubmitAnswers:
		err = s.roomOp(func(reply chan error) room.Msg {
			return room.SubmitAnswers{ActorID: s.id, Answers: cm.Answers, Reply: reply}
		})
	case types.MsgCallStop:
		err = s.roomOp(func(reply chan error) room.Msg {
			return room.CallStop{ActorID: s.id, Reply: reply}
		})
	case types.MsgLeaveRoom:
		s.leaveCurrent()
	default:
		err = errUnknownType
	}

	s.write(types.Ack(cm.Type, code, err))
}

func (s *session) createRoom(name string) (string, error) {
	clean := game.SanitizeName(name)
	if clean == "" {
		return "", game.ErrInvalidName
	}

	s.leaveCurrent()

	out := make(chan room.Push, outboxSize)
	reply := make(chan hub.CreateReply, 1)
	s.hub.Inbox() <- hub.CreateRoom{
		Player: game.Player{ID: s.id, Name: clean},
		Outbox: out,
		Reply:  reply,
	}
	cr := <-reply
	if cr.Err != nil {
		return "", cr.Err
	}

	s.bind(cr.Room, out)
	return cr.Code, nil
}

func (s *session) joinRoom(code, name string) (string, error) {
	s.leaveCurrent()

	// Resolve the room before looking at the name: an unknown code
	// reports RoomNotFound even when the name is also unusable.
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", game.ErrRoomNotFound
	}

	reply := make(chan *room.Room, 1)
	s.hub.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
	rm := <-reply
	if rm == nil {
		return "", game.ErrRoomNotFound
	}

	clean := game.SanitizeName(name)
	if clean == "" {
		return "", game.ErrInvalidName
	}

	out := make(chan room.Push, outboxSize)
	joined := make(chan error, 1)
	if err := rm.Send(room.Join{
		Player: game.Player{ID: s.id, Name: clean},
		Outbox: out,
		Reply:  joined,
	}); err != nil {
		return "", err
	}
	if err := await(rm, joined); err != nil {
		return "", err
	}

	s.bind(rm, out)
	return code, nil
}

func (s *session) roomOp(build func(reply chan error) room.Msg) error {
	b := s.binding
	if b == nil {
		return game.ErrNotInRoom
	}

	reply := make(chan error, 1)
	if err := b.room.Send(build(reply)); err != nil {
		return err
	}
	return await(b.room, reply)
}

func (s *session) bind(rm *room.Room, out chan room.Push) {
	b := &binding{room: rm, outbox: out, left: make(chan struct{})}
	s.binding = b
	go s.writeLoop(b)
}

func (s *session) leaveCurrent() {
	b := s.binding
	if b == nil {
		return
	}
	s.binding = nil
	close(b.left)
	_ = b.room.Send(room.Leave{ActorID: s.id}) // room may already be gone
}

// writeLoop drains one room binding's pushes onto the socket. The room
// closes the outbox when the member leaves, when it drops a slow client,
// or when it dies; only the involuntary cases take the connection down.
func (s *session) writeLoop(b *binding) {
	for {
		select {
		case push, ok := <-b.outbox:
			if !ok {
				select {
				case <-b.left:
				default:
					s.conn.Close(websocket.StatusGoingAway, "room closed")
				}
				return
			}
			s.write(pushMessage(push))
		case <-s.ctx.Done():
			return
		}
	}
}

func pushMessage(push room.Push) types.ServerMessage {
	if push.Results != nil {
		return types.ServerMessage{Type: types.MsgRoundResults, Results: push.Results}
	}
	return types.ServerMessage{Type: types.MsgRoomState, State: push.State}
}

func (s *session) write(msg types.ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("marshal server message", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, writeTimeout)
	defer cancel()
	if err := s.conn.Write(ctx, websocket.MessageText, payload); err != nil {
		s.log.Debug("write failed", zap.Error(err))
	}
}

// await collects a room's answer, falling back to RoomNotFound when the
// room dies first. A reply racing the room's own teardown still wins.
func await(rm *room.Room, reply chan error) error {
	select {
	case err := <-reply:
		return err
	case <-rm.Done():
		select {
		case err := <-reply:
			return err
		default:
			return game.ErrRoomNotFound
		}
	}
}
