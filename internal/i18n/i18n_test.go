package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tartampluch/go-datedots/internal/datedot"
)

func TestSummary_English(t *testing.T) {
	loc := New("en")

	tests := []struct {
		name     string
		cat      datedot.Category
		age      int
		ageKnown bool
		want     string
	}{
		{"birthday with age", datedot.CategoryBirthday, 34, true, "Birthday: Jane D. (34)"},
		{"birthday age unknown", datedot.CategoryBirthday, 0, false, "Birthday: Jane D."},
		{"birth year itself", datedot.CategoryBirthday, 0, true, "Birthday: Jane D. (birth)"},
		{"anniversary with age", datedot.CategoryAnniversary, 9, true, "Anniversary: Jane D. (9 years)"},
		{"anniversary age unknown", datedot.CategoryAnniversary, 0, false, "Anniversary: Jane D."},
		{"holiday is just the name", datedot.CategoryHoliday, 0, false, "Jane D."},
		{"custom is just the name", datedot.CategoryCustom, 0, false, "Jane D."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := loc.Summary("Jane D.", tt.cat, tt.age, tt.ageKnown)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSummary_French(t *testing.T) {
	loc := New("fr")

	got := loc.Summary("Jane D.", datedot.CategoryBirthday, 34, true)
	assert.Contains(t, got, "Jane D.")
	assert.Contains(t, got, "34")
	assert.NotContains(t, got, "Birthday", "French locale must not fall back to English")
}

// TestSummary_UnknownLanguageFallsBack verifies the English fallback chain.
func TestSummary_UnknownLanguageFallsBack(t *testing.T) {
	loc := New("xx")

	got := loc.Summary("Jane D.", datedot.CategoryBirthday, 34, true)
	assert.Equal(t, "Birthday: Jane D. (34)", got)
}

func TestSummary_EmptyLanguageUsesDefault(t *testing.T) {
	loc := New("")

	got := loc.Summary("Jane D.", datedot.CategoryHoliday, 0, false)
	assert.Equal(t, "Jane D.", got)
}
