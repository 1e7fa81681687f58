package room

import "github.com/mrtngo/stop/internal/game"

type Msg interface{ isRoomMsg() }

// Join adds a member (never as host). The room owns Outbox from here on
// and closes it when the member leaves or the room dies.
type Join struct {
	Player game.Player
	Outbox chan Push
	Reply  chan error
}

func (Join) isRoomMsg() {}

// Leave removes a member. Fire-and-forget: leaving always succeeds, and
// connection loss is delivered as the same message.
type Leave struct{ ActorID string }

func (Leave) isRoomMsg() {}

type UpdateSettings struct {
	ActorID      string
	Categories   []string
	RoundSeconds int
	Reply        chan error
}

func (UpdateSettings) isRoomMsg() {}

type StartRound struct {
	ActorID string
	Reply   chan error
}

func (StartRound) isRoomMsg() {}

type SubmitAnswers struct {
	ActorID string
	Answers map[string]string
	Reply   chan error
}

func (SubmitAnswers) isRoomMsg() {}

type CallStop struct {
	ActorID string
	Reply   chan error
}

func (CallStop) isRoomMsg() {}

// roundExpired is posted by the armed timer callback. gen pins the fire to
// the arming that scheduled it; a stale generation is dropped.
type roundExpired struct {
	gen    uint64
	reason game.EndReason
}

func (roundExpired) isRoomMsg() {}

// GetState reflects internal state without data races. Test-only.
type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

// Push is one outbound delivery to a single member: exactly one of State
// (a room_state view built for that member) or Results is set.
type Push struct {
	State   *StateView
	Results *game.RoundResults
}

// View is the GetState snapshot.
type View struct {
	Code        string
	HostID      string
	Status      Status
	Settings    game.Settings
	Members     []game.Player
	RoundNumber int
	Round       *RoundView
	Submissions map[string]map[string]string
	LastResults *game.RoundResults
	NumClients  int
}
