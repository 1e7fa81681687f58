package game

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

const (
	PointsUnique = 10
	PointsShared = 5
)

// EndReason records what ended a round.
type EndReason string

const (
	ReasonTime         EndReason = "time"
	ReasonStop         EndReason = "stop"
	ReasonAllSubmitted EndReason = "all_submitted"
)

// Player is a scoring-time snapshot of a room member. Score is the
// cumulative total going into the round.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type CategoryResult struct {
	Answer     string `json:"answer"`
	Normalized string `json:"normalized"`
	Valid      bool   `json:"valid"`
	Points     int    `json:"points"`
}

type PlayerResult struct {
	ID          string                    `json:"id"`
	Name        string                    `json:"name"`
	RoundPoints int                       `json:"roundPoints"`
	TotalScore  int                       `json:"totalScore"`
	Categories  map[string]CategoryResult `json:"categories"`
}

// RoundResults is the immutable outcome of one round.
type RoundResults struct {
	RoundNumber int            `json:"roundNumber"`
	Letter      string         `json:"letter"`
	Reason      EndReason      `json:"reason"`
	Categories  []string       `json:"categories"`
	Players     []PlayerResult `json:"players"`
	GeneratedAt int64          `json:"generatedAt"`
}

// Score is the scoring engine: pure and deterministic given its inputs.
//
// An answer is valid iff its normalized form is non-empty and starts with
// the round's letter. Per category, a valid answer scores PointsUnique when
// its normalized form is unique among valid answers and PointsShared when
// shared; invalid or absent answers score 0. Players come back sorted by
// TotalScore desc, RoundPoints desc, then Name asc.
func Score(roundNumber int, letter string, categories []string, players []Player,
	submissions map[string]map[string]string, reason EndReason, now time.Time) RoundResults {

	// Frequency of valid normalized answers, per category.
	frequency := make([]map[string]int, len(categories))
	for i := range frequency {
		frequency[i] = make(map[string]int)
	}

	prepared := make(map[string]map[string]CategoryResult, len(players))
	for _, player := range players {
		submitted := submissions[player.ID]
		answers := make(map[string]CategoryResult, len(categories))

		for i, category := range categories {
			raw := strings.TrimSpace(submitted[category])
			normalized := NormalizeAnswer(raw)
			answers[category] = CategoryResult{
				Answer:     raw,
				Normalized: normalized,
				Valid:      validAnswer(normalized, letter),
			}
			if answers[category].Valid {
				frequency[i][normalized]++
			}
		}
		prepared[player.ID] = answers
	}

	results := make([]PlayerResult, 0, len(players))
	for _, player := range players {
		answers := prepared[player.ID]
		roundPoints := 0

		for i, category := range categories {
			entry := answers[category]
			if entry.Valid {
				if frequency[i][entry.Normalized] == 1 {
					entry.Points = PointsUnique
				} else {
					entry.Points = PointsShared
				}
			}
			answers[category] = entry
			roundPoints += entry.Points
		}

		results = append(results, PlayerResult{
			ID:          player.ID,
			Name:        player.Name,
			RoundPoints: roundPoints,
			TotalScore:  player.Score + roundPoints,
			Categories:  answers,
		})
	}

	slices.SortStableFunc(results, func(a, b PlayerResult) int {
		if c := cmp.Compare(b.TotalScore, a.TotalScore); c != 0 {
			return c
		}
		if c := cmp.Compare(b.RoundPoints, a.RoundPoints); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})

	return RoundResults{
		RoundNumber: roundNumber,
		Letter:      letter,
		Reason:      reason,
		Categories:  slices.Clone(categories),
		Players:     results,
		GeneratedAt: now.UnixMilli(),
	}
}

func validAnswer(normalized, letter string) bool {
	if normalized == "" {
		return false
	}
	first := []rune(normalized)[0]
	return strings.ToUpper(string(first)) == letter
}
