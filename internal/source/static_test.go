package source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-datedots/internal/config"
	"github.com/tartampluch/go-datedots/internal/datedot"
)

func TestStatic(t *testing.T) {
	s := &config.Settings{
		Holidays: map[string]string{
			"New Year's Day": "--01-01",
			"Christmas":      "--12-25",
		},
		Custom: map[string]string{
			"Company Founding": "2010-04-01",
		},
	}

	cands := Static(s)
	require.Len(t, cands, 3)

	// Holidays first, each group in name order.
	assert.Equal(t, "Christmas", cands[0].Name)
	assert.Equal(t, datedot.CategoryHoliday, cands[0].Category)
	assert.Equal(t, "New Year's Day", cands[1].Name)
	assert.Equal(t, "Company Founding", cands[2].Name)
	assert.Equal(t, datedot.CategoryCustom, cands[2].Category)

	for _, c := range cands {
		assert.Nil(t, c.Address)
		assert.NoError(t, c.ParseErr)
	}

	assert.False(t, cands[0].YearKnown)
	assert.True(t, cands[2].YearKnown)
	assert.Equal(t, 2010, cands[2].When.Year())
}

func TestStatic_Empty(t *testing.T) {
	assert.Empty(t, Static(&config.Settings{}))
}

func TestStatic_MalformedDateKept(t *testing.T) {
	s := &config.Settings{
		Holidays: map[string]string{"Broken Day": "nonsense"},
	}

	cands := Static(s)
	require.Len(t, cands, 1)
	assert.Error(t, cands[0].ParseErr)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		wantYear  int
		wantMonth time.Month
		wantDay   int
		yearKnown bool
		wantErr   bool
	}{
		{"dashed full", "1990-06-15", 1990, time.June, 15, true, false},
		{"basic full", "19900615", 1990, time.June, 15, true, false},
		{"timestamp", "1990-06-15T00:00:00Z", 1990, time.June, 15, true, false},
		{"dashed truncated", "--06-15", config.DefaultLeapYear, time.June, 15, false, false},
		{"basic truncated", "--0615", config.DefaultLeapYear, time.June, 15, false, false},
		{"truncated leap day", "--02-29", config.DefaultLeapYear, time.February, 29, false, false},
		{"garbage", "not-a-date", 0, 0, 0, false, true},
		{"empty", "", 0, 0, 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, yearKnown, err := ParseDate(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.yearKnown, yearKnown)
			assert.Equal(t, tt.wantYear, got.Year())
			assert.Equal(t, tt.wantMonth, got.Month())
			assert.Equal(t, tt.wantDay, got.Day())
		})
	}
}
