package game

import (
	"math/rand"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

const (
	// Letters is the draw pool for a round's letter.
	Letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// CodeAlphabet is the room-code alphabet. Visually confusable
	// characters (0/O, 1/I) are excluded so codes survive being read
	// aloud or typed from a screenshot.
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	MaxNameLen     = 24
	MaxCategoryLen = 24
	MaxCategories  = 8
	MaxAnswerLen   = 48

	MinRoundSeconds     = 20
	MaxRoundSeconds     = 180
	DefaultRoundSeconds = 60
)

// DefaultCategories is the category list every new room starts with, and
// the fallback when a host submits a list that sanitizes to nothing.
var DefaultCategories = []string{"Name", "Country", "Animal", "Food", "Color"}

// Settings holds a room's host-configurable round parameters.
type Settings struct {
	Categories   []string
	RoundSeconds int
}

func DefaultSettings() Settings {
	return Settings{
		Categories:   slices.Clone(DefaultCategories),
		RoundSeconds: DefaultRoundSeconds,
	}
}

// SanitizeName trims and whitespace-collapses a display name and caps it
// at MaxNameLen runes. An empty result means the name is unusable.
func SanitizeName(name string) string {
	return capRunes(collapse(name), MaxNameLen)
}

// SanitizeCategories cleans each entry like a name, drops empties,
// de-duplicates case-insensitively (first spelling wins) and caps the list
// at MaxCategories. An empty result falls back to DefaultCategories.
func SanitizeCategories(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	categories := make([]string, 0, MaxCategories)

	for _, value := range values {
		clean := capRunes(collapse(value), MaxCategoryLen)
		if clean == "" {
			continue
		}

		key := cases.Fold().String(clean)
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		categories = append(categories, clean)

		if len(categories) >= MaxCategories {
			break
		}
	}

	if len(categories) == 0 {
		return slices.Clone(DefaultCategories)
	}
	return categories
}

// SanitizeRoundSeconds validates a round duration against
// [MinRoundSeconds, MaxRoundSeconds].
func SanitizeRoundSeconds(seconds int) (int, error) {
	if seconds < MinRoundSeconds || seconds > MaxRoundSeconds {
		return 0, ErrInvalidSettings
	}
	return seconds, nil
}

// NormalizeAnswer produces the canonical form used for letter validation
// and duplicate detection: trimmed, lower-cased, internal whitespace
// collapsed to single spaces.
func NormalizeAnswer(answer string) string {
	return strings.ToLower(collapse(answer))
}

// CleanAnswers maps a raw submission onto the room's categories: for every
// category the submitted text (or "" when absent), trimmed and capped at
// MaxAnswerLen runes. Keys outside the category list are dropped.
func CleanAnswers(categories []string, raw map[string]string) map[string]string {
	clean := make(map[string]string, len(categories))
	for _, category := range categories {
		clean[category] = capRunes(strings.TrimSpace(raw[category]), MaxAnswerLen)
	}
	return clean
}

// RandomLetter draws one round letter uniformly from Letters.
func RandomLetter() string {
	return string(Letters[rand.Intn(len(Letters))])
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func capRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes)
}
