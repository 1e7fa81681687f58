package ws

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrtngo/stop/internal/game"
	"github.com/mrtngo/stop/internal/hub"
	"github.com/mrtngo/stop/internal/room"
)

func newTestSession(t *testing.T) (*session, *hub.Hub) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := hub.NewHub(ctx, zap.NewNop())
	s := &session{
		id:  "c1",
		hub: h,
		ctx: ctx,
		log: zap.NewNop(),
	}
	return s, h
}

func TestJoinRoom_UnknownCode_BeatsBadName(t *testing.T) {
	s, _ := newTestSession(t)

	// Both the code and the name are bad; the room lookup wins.
	_, err := s.joinRoom("nope2", "")
	require.ErrorIs(t, err, game.ErrRoomNotFound)

	_, err = s.joinRoom("  ", "")
	require.ErrorIs(t, err, game.ErrRoomNotFound)
}

func TestJoinRoom_KnownCode_StillValidatesName(t *testing.T) {
	s, h := newTestSession(t)

	reply := make(chan hub.CreateReply, 1)
	h.Inbox() <- hub.CreateRoom{
		Player: game.Player{ID: "other", Name: "Hope"},
		Outbox: make(chan room.Push, 8),
		Reply:  reply,
	}
	cr := <-reply
	require.NoError(t, cr.Err)

	_, err := s.joinRoom(cr.Code, "   ")
	require.ErrorIs(t, err, game.ErrInvalidName)
	require.Nil(t, s.binding)
}
