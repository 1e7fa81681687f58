package room

import (
	"cmp"
	"slices"
	"strings"

	"github.com/mrtngo/stop/internal/game"
)

type Status string

const (
	StatusLobby   Status = "lobby"
	StatusRound   Status = "round"
	StatusResults Status = "results"
)

type SettingsView struct {
	Categories   []string `json:"categories"`
	RoundSeconds int      `json:"roundSeconds"`
}

type PlayerView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	IsHost bool   `json:"isHost"`
}

// RoundView is the public slice of an active round. Submissions appear
// only as the ids of members who have submitted; answer content stays
// server-side until results.
type RoundView struct {
	Number             int      `json:"number"`
	Letter             string   `json:"letter"`
	EndsAt             int64    `json:"endsAt"`
	StopRequestedBy    string   `json:"stopRequestedBy,omitempty"`
	SubmittedPlayerIDs []string `json:"submittedPlayerIds"`
}

// StateView is one member's view of the room, rebuilt after every
// mutation. Me tags the recipient.
type StateView struct {
	Code        string             `json:"code"`
	Me          string             `json:"me"`
	HostID      string             `json:"hostId"`
	Status      Status             `json:"status"`
	Settings    SettingsView       `json:"settings"`
	Players     []PlayerView       `json:"players"`
	Round       *RoundView         `json:"round"`
	LastResults *game.RoundResults `json:"lastResults"`
}

func (r *Room) view(me string) *StateView {
	players := make([]PlayerView, 0, len(r.members))
	for _, id := range r.joinOrder {
		m := r.members[id]
		players = append(players, PlayerView{
			ID:     m.ID,
			Name:   m.Name,
			Score:  m.Score,
			IsHost: m.ID == r.hostID,
		})
	}
	slices.SortStableFunc(players, func(a, b PlayerView) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})

	v := &StateView{
		Code:   r.code,
		Me:     me,
		HostID: r.hostID,
		Status: r.status,
		Settings: SettingsView{
			Categories:   slices.Clone(r.settings.Categories),
			RoundSeconds: r.settings.RoundSeconds,
		},
		Players:     players,
		LastResults: r.lastResults,
	}

	if r.round != nil {
		submitted := make([]string, 0, len(r.round.submissions))
		for _, id := range r.joinOrder {
			if _, ok := r.round.submissions[id]; ok {
				submitted = append(submitted, id)
			}
		}
		v.Round = &RoundView{
			Number:             r.round.number,
			Letter:             r.round.letter,
			EndsAt:             r.round.endsAt.UnixMilli(),
			StopRequestedBy:    r.round.stopRequestedBy,
			SubmittedPlayerIDs: submitted,
		}
	}
	return v
}
