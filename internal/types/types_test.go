package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrtngo/stop/internal/game"
)

func TestAck_Success(t *testing.T) {
	payload, err := json.Marshal(Ack(MsgCreateRoom, "AB2CD", nil))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"ack","for":"create_room","ok":true,"code":"AB2CD"}`, string(payload))
}

func TestAck_Failure(t *testing.T) {
	payload, err := json.Marshal(Ack(MsgStartRound, "", game.ErrNotEnoughPlayers))
	require.NoError(t, err)
	require.JSONEq(t,
		`{"type":"ack","for":"start_round","ok":false,"error":"At least 2 players are required"}`,
		string(payload))
}
