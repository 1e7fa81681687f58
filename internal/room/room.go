package room

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/mrtngo/stop/internal/game"
)

// stopGrace is how long a round keeps running after someone calls STOP.
const stopGrace = 5 * time.Second

// drawLetter is a package var so tests can pin the round letter.
var drawLetter = game.RandomLetter

type roundState struct {
	number          int
	letter          string
	endsAt          time.Time
	submissions     map[string]map[string]string
	stopRequestedBy string
}

// Room owns one game session. All state behind inbox is touched only by
// the loop goroutine, which serializes member actions and timer fires.
type Room struct {
	inbox  chan Msg
	ctx    context.Context
	cancel context.CancelFunc

	code        string
	hostID      string
	status      Status
	settings    game.Settings
	members     map[string]*game.Player
	joinOrder   []string
	outboxes    map[string]chan Push
	roundNumber int
	round       *roundState
	lastResults *game.RoundResults

	timer    *time.Timer
	timerGen uint64

	onEmpty func(code string)
	log     *zap.Logger
}

// New creates a room in lobby status with host as its sole member and
// starts the loop. onEmpty is invoked (from the room goroutine) after the
// last member leaves and the room has shut itself down.
func New(parent context.Context, code string, host game.Player, outbox chan Push,
	settings game.Settings, onEmpty func(code string), log *zap.Logger) *Room {

	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		inbox:     make(chan Msg, 64),
		ctx:       ctx,
		cancel:    cancel,
		code:      code,
		hostID:    host.ID,
		status:    StatusLobby,
		settings:  settings,
		members:   map[string]*game.Player{host.ID: &host},
		joinOrder: []string{host.ID},
		outboxes:  map[string]chan Push{host.ID: outbox},
		onEmpty:   onEmpty,
		log:       log,
	}

	// The host sees the fresh lobby before the loop takes over.
	r.broadcast()

	go r.loop()
	return r
}

func (r *Room) Code() string { return r.code }

// Done is closed once the room is destroyed; senders select against it.
func (r *Room) Done() <-chan struct{} { return r.ctx.Done() }

// Send queues a message for the room loop. It fails with ErrRoomNotFound
// when the room has already been destroyed, so a session racing a dying
// room gets a clean rejection instead of a blocked send.
func (r *Room) Send(m Msg) error {
	// Checked first on its own: the combined select would race the
	// cancelled context against the still-writable buffered inbox and
	// sometimes accept a send nothing will ever drain.
	select {
	case <-r.ctx.Done():
		return game.ErrRoomNotFound
	default:
	}

	select {
	case r.inbox <- m:
		return nil
	case <-r.ctx.Done():
		return game.ErrRoomNotFound
	}
}

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				msg.Reply <- r.handleJoin(msg)
			case Leave:
				r.handleLeave(msg.ActorID)
			case UpdateSettings:
				msg.Reply <- r.handleUpdateSettings(msg)
			case StartRound:
				msg.Reply <- r.handleStartRound(msg.ActorID)
			case SubmitAnswers:
				msg.Reply <- r.handleSubmit(msg)
			case CallStop:
				msg.Reply <- r.handleCallStop(msg.ActorID)
			case roundExpired:
				if msg.gen == r.timerGen {
					r.endRound(msg.reason)
				}
			case GetState:
				msg.Reply <- r.snapshot()
			}
		}
	}
}

func (r *Room) handleJoin(msg Join) error {
	if r.status == StatusRound {
		return game.ErrRoundInProgress
	}

	p := msg.Player
	r.members[p.ID] = &p
	r.joinOrder = append(r.joinOrder, p.ID)
	r.outboxes[p.ID] = msg.Outbox
	r.log.Info("player joined", zap.String("actor", p.ID), zap.String("name", p.Name))
	r.broadcast()
	return nil
}

func (r *Room) handleLeave(actorID string) {
	if _, ok := r.members[actorID]; !ok {
		return
	}

	delete(r.members, actorID)
	r.joinOrder = slices.DeleteFunc(r.joinOrder, func(id string) bool { return id == actorID })
	if ch, ok := r.outboxes[actorID]; ok {
		close(ch)
		delete(r.outboxes, actorID)
	}
	r.log.Info("player left", zap.String("actor", actorID))

	if len(r.members) == 0 {
		r.destroy()
		return
	}

	// Host role transfers to the earliest-joined remaining member.
	if r.hostID == actorID {
		r.hostID = r.joinOrder[0]
	}

	if r.status == StatusRound && r.allSubmitted() {
		r.endRound(game.ReasonAllSubmitted)
		return
	}

	r.broadcast()
}

func (r *Room) handleUpdateSettings(msg UpdateSettings) error {
	if msg.ActorID != r.hostID {
		return game.ErrNotHost
	}
	if r.status == StatusRound {
		return game.ErrRoundInProgress
	}

	seconds, err := game.SanitizeRoundSeconds(msg.RoundSeconds)
	if err != nil {
		return err
	}

	r.settings = game.Settings{
		Categories:   game.SanitizeCategories(msg.Categories),
		RoundSeconds: seconds,
	}
	r.broadcast()
	return nil
}

func (r *Room) handleStartRound(actorID string) error {
	if actorID != r.hostID {
		return game.ErrNotHost
	}
	if r.status == StatusRound {
		return game.ErrRoundInProgress
	}
	if len(r.members) < 2 {
		return game.ErrNotEnoughPlayers
	}

	r.roundNumber++
	r.lastResults = nil

	duration := time.Duration(r.settings.RoundSeconds) * time.Second
	r.round = &roundState{
		number:      r.roundNumber,
		letter:      drawLetter(),
		endsAt:      time.Now().Add(duration),
		submissions: make(map[string]map[string]string),
	}
	r.status = StatusRound
	r.armTimer(duration, game.ReasonTime)

	r.log.Info("round started",
		zap.Int("round", r.round.number),
		zap.String("letter", r.round.letter),
		zap.Int("seconds", r.settings.RoundSeconds))
	r.broadcast()
	return nil
}

func (r *Room) handleSubmit(msg SubmitAnswers) error {
	if r.status != StatusRound || r.round == nil {
		return game.ErrNoActiveRound
	}

	// A resubmission overwrites: submitting is idempotent per round.
	r.round.submissions[msg.ActorID] = game.CleanAnswers(r.settings.Categories, msg.Answers)
	r.broadcast()

	if r.allSubmitted() {
		r.endRound(game.ReasonAllSubmitted)
	}
	return nil
}

func (r *Room) handleCallStop(actorID string) error {
	if r.status != StatusRound || r.round == nil {
		return game.ErrNoActiveRound
	}
	if r.round.stopRequestedBy != "" {
		return game.ErrAlreadyStopped
	}

	r.round.stopRequestedBy = actorID
	r.round.endsAt = time.Now().Add(stopGrace)
	r.armTimer(stopGrace, game.ReasonStop)

	r.log.Info("stop called", zap.String("actor", actorID))
	r.broadcast()
	return nil
}

// endRound is the single transition out of StatusRound, reachable from
// the timer, the all-submitted check, and member departure. The status
// guard makes whichever path arrives second a no-op.
func (r *Room) endRound(reason game.EndReason) {
	if r.status != StatusRound || r.round == nil {
		return
	}

	r.cancelTimer()

	results := game.Score(r.round.number, r.round.letter, r.settings.Categories,
		r.playerList(), r.round.submissions, reason, time.Now())

	for _, pr := range results.Players {
		if m, ok := r.members[pr.ID]; ok {
			m.Score = pr.TotalScore
		}
	}

	r.lastResults = &results
	r.round = nil
	r.status = StatusResults

	r.log.Info("round ended",
		zap.Int("round", results.RoundNumber),
		zap.String("reason", string(reason)))

	for id, ch := range r.outboxes {
		select {
		case ch <- Push{Results: &results}:
		default:
			close(ch)
			delete(r.outboxes, id)
		}
	}
	r.broadcast()
}

func (r *Room) allSubmitted() bool {
	if r.status != StatusRound || r.round == nil || len(r.members) == 0 {
		return false
	}
	for id := range r.members {
		if _, ok := r.round.submissions[id]; !ok {
			return false
		}
	}
	return true
}

func (r *Room) playerList() []game.Player {
	players := make([]game.Player, 0, len(r.members))
	for _, id := range r.joinOrder {
		players = append(players, *r.members[id])
	}
	return players
}

// broadcast sends every member its own view. A member whose outbox is
// full is dropped; its session sees the closed channel and disconnects,
// which comes back around as a Leave.
func (r *Room) broadcast() {
	for id, ch := range r.outboxes {
		select {
		case ch <- Push{State: r.view(id)}:
		default:
			r.log.Warn("dropping slow client", zap.String("actor", id))
			close(ch)
			delete(r.outboxes, id)
		}
	}
}

func (r *Room) armTimer(d time.Duration, reason game.EndReason) {
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timerGen++
	gen := r.timerGen
	r.timer = time.AfterFunc(d, func() {
		select {
		case r.inbox <- roundExpired{gen: gen, reason: reason}:
		case <-r.ctx.Done():
		}
	})
}

func (r *Room) cancelTimer() {
	r.timerGen++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// destroy tears the room down after its last member left.
func (r *Room) destroy() {
	r.cancelTimer()
	for id, ch := range r.outboxes {
		close(ch)
		delete(r.outboxes, id)
	}
	r.cancel()
	if r.onEmpty != nil {
		r.onEmpty(r.code)
	}
	r.log.Info("room destroyed")
}

// shutdown handles external cancellation (process shutdown via the hub's
// context). After destroy it is a no-op.
func (r *Room) shutdown() {
	r.cancelTimer()
	for id, ch := range r.outboxes {
		close(ch)
		delete(r.outboxes, id)
	}
}

func (r *Room) snapshot() View {
	v := View{
		Code:        r.code,
		HostID:      r.hostID,
		Status:      r.status,
		Settings:    r.settings,
		Members:     r.playerList(),
		RoundNumber: r.roundNumber,
		LastResults: r.lastResults,
		NumClients:  len(r.outboxes),
	}
	if r.round != nil {
		view := r.view("")
		v.Round = view.Round
		v.Submissions = make(map[string]map[string]string, len(r.round.submissions))
		for id, answers := range r.round.submissions {
			clone := make(map[string]string, len(answers))
			for category, answer := range answers {
				clone[category] = answer
			}
			v.Submissions[id] = clone
		}
	}
	return v
}
