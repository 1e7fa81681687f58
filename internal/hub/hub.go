package hub

import (
	"context"
	"crypto/rand"
	"math/big"

	"go.uber.org/zap"

	"github.com/mrtngo/stop/internal/game"
	"github.com/mrtngo/stop/internal/room"
)

const codeLength = 5

type Msg interface{ isHubMsg() }

// CreateRoom allocates a fresh code and spawns a room with Player as host
// and sole member.
type CreateRoom struct {
	Player game.Player
	Outbox chan room.Push
	Reply  chan CreateReply
}

type CreateReply struct {
	Room *room.Room
	Code string
	Err  error
}

type GetRoom struct {
	Code  string
	Reply chan *room.Room
}

// removeRoom is posted by a room that has emptied itself out.
type removeRoom struct{ Code string }

// Len reports the number of live rooms. Test-only.
type Len struct{ Reply chan int }

func (CreateRoom) isHubMsg() {}
func (GetRoom) isHubMsg()    {}
func (removeRoom) isHubMsg() {}
func (Len) isHubMsg()        {}

// Hub is the room registry: the only owner of the code → room mapping.
// Codes free up as soon as their room is removed.
type Hub struct {
	inbox  chan Msg
	rooms  map[string]*room.Room
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
}

func NewHub(parent context.Context, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan Msg, 64),
		rooms:  make(map[string]*room.Room),
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- Msg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				code, err := h.newCode()
				if err != nil {
					msg.Reply <- CreateReply{Err: err}
					break
				}
				rm := room.New(h.ctx, code, msg.Player, msg.Outbox,
					game.DefaultSettings(), h.notifyEmpty, h.log.With(zap.String("room", code)))
				h.rooms[code] = rm
				h.log.Info("room created",
					zap.String("room", code),
					zap.String("host", msg.Player.ID))
				msg.Reply <- CreateReply{Room: rm, Code: code}

			case GetRoom:
				msg.Reply <- h.rooms[msg.Code] // May be nil

			case removeRoom:
				delete(h.rooms, msg.Code)
				h.log.Info("room removed", zap.String("room", msg.Code))

			case Len:
				msg.Reply <- len(h.rooms)
			}
		}
	}
}

// notifyEmpty runs on a room goroutine; the select keeps an emptying room
// from blocking forever during process shutdown.
func (h *Hub) notifyEmpty(code string) {
	select {
	case h.inbox <- removeRoom{Code: code}:
	case <-h.ctx.Done():
	}
}

// newCode draws codeLength characters from the unambiguous alphabet,
// rejecting any code a live room already holds. An emptied room whose
// removal is still in flight just forces one more draw.
func (h *Hub) newCode() (string, error) {
	for {
		code, err := generateCode()
		if err != nil {
			return "", err
		}
		if _, taken := h.rooms[code]; !taken {
			return code, nil
		}
		h.log.Debug("collision on code, regenerating", zap.String("room", code))
	}
}

func generateCode() (string, error) {
	code := make([]byte, codeLength)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(game.CodeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = game.CodeAlphabet[num.Int64()]
	}
	return string(code), nil
}
