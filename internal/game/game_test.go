package game

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"trims edges", "  Alice  ", "Alice"},
		{"collapses inner whitespace", "Ann \t\n Marie", "Ann Marie"},
		{"caps at 24 runes", strings.Repeat("a", 30), strings.Repeat("a", 24)},
		{"whitespace only is empty", " \t ", ""},
		{"empty stays empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeName(tc.in))
		})
	}
}

func TestSanitizeCategories(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "trims and drops empties",
			in:   []string{" Animal ", "", "  ", "Food"},
			want: []string{"Animal", "Food"},
		},
		{
			name: "dedupes case-insensitively keeping first spelling",
			in:   []string{"Food", "food", "FOOD ", "Animal"},
			want: []string{"Food", "Animal"},
		},
		{
			name: "caps the list at eight",
			in:   []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"},
			want: []string{"a", "b", "c", "d", "e", "f", "g", "h"},
		},
		{
			name: "falls back to defaults when nothing survives",
			in:   []string{"", "   "},
			want: DefaultCategories,
		},
		{
			name: "nil falls back to defaults",
			in:   nil,
			want: DefaultCategories,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeCategories(tc.in))
		})
	}
}

func TestSanitizeCategories_CapsEntryLength(t *testing.T) {
	got := SanitizeCategories([]string{strings.Repeat("x", 40)})
	require.Len(t, got, 1)
	assert.Equal(t, strings.Repeat("x", MaxCategoryLen), got[0])
}

func TestSanitizeRoundSeconds(t *testing.T) {
	cases := []struct {
		name    string
		in      int
		want    int
		wantErr bool
	}{
		{"below minimum", 19, 0, true},
		{"at minimum", 20, 20, false},
		{"at maximum", 180, 180, false},
		{"above maximum", 181, 0, true},
		{"zero", 0, 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SanitizeRoundSeconds(tc.in)
			if tc.wantErr {
				require.True(t, errors.Is(err, ErrInvalidSettings), "want ErrInvalidSettings, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeAnswer(t *testing.T) {
	assert.Equal(t, "bear cub", NormalizeAnswer("  Bear \t CUB "))
	assert.Equal(t, "", NormalizeAnswer("   "))
}

func TestCleanAnswers(t *testing.T) {
	categories := []string{"Animal", "Food"}
	raw := map[string]string{
		"Animal":  "  Bear ",
		"Unknown": "ignored",
	}

	got := CleanAnswers(categories, raw)

	assert.Equal(t, map[string]string{"Animal": "Bear", "Food": ""}, got)
}

func TestCleanAnswers_CapsLength(t *testing.T) {
	got := CleanAnswers([]string{"Food"}, map[string]string{"Food": strings.Repeat("b", 60)})
	assert.Equal(t, strings.Repeat("b", MaxAnswerLen), got["Food"])
}

func TestRandomLetter(t *testing.T) {
	for i := 0; i < 100; i++ {
		letter := RandomLetter()
		require.Len(t, letter, 1)
		require.Contains(t, Letters, letter)
	}
}
