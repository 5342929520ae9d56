package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-datedots/internal/datedot"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TestNext_Upcoming covers the basic projection: same year when the date is
// still ahead, next year once it has passed.
func TestNext_Upcoming(t *testing.T) {
	tests := []struct {
		name     string
		d        datedot.CalendarDate
		today    time.Time
		wantDate time.Time
		wantDays int
		wantAge  int
		ageKnown bool
	}{
		{
			name:     "later this year",
			d:        datedot.CalendarDate{Month: time.June, Day: 15, Year: 1990},
			today:    date(2024, time.March, 1),
			wantDate: date(2024, time.June, 15),
			wantDays: 106,
			wantAge:  34,
			ageKnown: true,
		},
		{
			name:     "today counts as zero days",
			d:        datedot.CalendarDate{Month: time.June, Day: 15, Year: 1990},
			today:    date(2024, time.June, 15),
			wantDate: date(2024, time.June, 15),
			wantDays: 0,
			wantAge:  34,
			ageKnown: true,
		},
		{
			name:     "already passed rolls to next year",
			d:        datedot.CalendarDate{Month: time.June, Day: 15, Year: 1990},
			today:    date(2024, time.June, 16),
			wantDate: date(2025, time.June, 15),
			wantDays: 364,
			wantAge:  35,
			ageKnown: true,
		},
		{
			name:     "year boundary",
			d:        datedot.CalendarDate{Month: time.January, Day: 1},
			today:    date(2024, time.December, 31),
			wantDate: date(2025, time.January, 1),
			wantDays: 1,
		},
		{
			name:     "unknown year yields no age",
			d:        datedot.CalendarDate{Month: time.October, Day: 3},
			today:    date(2024, time.October, 1),
			wantDate: date(2024, time.October, 3),
			wantDays: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			occ, err := Next(tt.d, tt.today)
			require.NoError(t, err)

			assert.True(t, occ.Date.Equal(tt.wantDate), "got %v, want %v", occ.Date, tt.wantDate)
			assert.Equal(t, tt.wantDays, occ.DaysUntil)
			assert.Equal(t, tt.ageKnown, occ.AgeKnown)
			if tt.ageKnown {
				assert.Equal(t, tt.wantAge, occ.Age)
			}
		})
	}
}

// TestNext_Feb29 pins the leapling policy: Feb 29 falls on Feb 28 in
// non-leap years, never March 1.
func TestNext_Feb29(t *testing.T) {
	leapling := datedot.CalendarDate{Month: time.February, Day: 29, Year: 2020}

	t.Run("non-leap year lands on Feb 28", func(t *testing.T) {
		occ, err := Next(leapling, date(2023, time.January, 15))
		require.NoError(t, err)

		assert.True(t, occ.Date.Equal(date(2023, time.February, 28)))
		assert.Equal(t, 44, occ.DaysUntil)
		assert.Equal(t, 3, occ.Age)
	})

	t.Run("past Feb 28 rolls to the real Feb 29", func(t *testing.T) {
		occ, err := Next(leapling, date(2023, time.March, 1))
		require.NoError(t, err)

		assert.True(t, occ.Date.Equal(date(2024, time.February, 29)))
		assert.Equal(t, 365, occ.DaysUntil)
		assert.Equal(t, 4, occ.Age)
	})

	t.Run("leap year keeps Feb 29", func(t *testing.T) {
		occ, err := Next(leapling, date(2024, time.February, 1))
		require.NoError(t, err)

		assert.True(t, occ.Date.Equal(date(2024, time.February, 29)))
	})

	t.Run("century non-leap rule", func(t *testing.T) {
		assert.False(t, isLeap(1900))
		assert.True(t, isLeap(2000))
		assert.False(t, isLeap(2100))
	})
}

// TestNext_TimeOfDayIgnored verifies that a late-evening "now" still treats
// the whole current day as day zero.
func TestNext_TimeOfDayIgnored(t *testing.T) {
	d := datedot.CalendarDate{Month: time.June, Day: 15}
	now := time.Date(2024, time.June, 15, 23, 59, 59, 0, time.UTC)

	occ, err := Next(d, now)
	require.NoError(t, err)

	assert.Equal(t, 0, occ.DaysUntil)
	assert.True(t, occ.Date.Equal(date(2024, time.June, 15)))
}

// TestNext_DST ensures day counting stays exact across daylight-saving
// transitions, where a calendar day is not 24 hours long.
func TestNext_DST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	d := datedot.CalendarDate{Month: time.July, Day: 4}
	today := time.Date(2024, time.March, 1, 12, 0, 0, 0, loc)

	occ, err := Next(d, today)
	require.NoError(t, err)

	// 2024-03-01 to 2024-07-04 spans the March transition.
	assert.Equal(t, 125, occ.DaysUntil)
	assert.Equal(t, loc, occ.Date.Location())
}

func TestNext_InvalidDate(t *testing.T) {
	tests := []struct {
		name string
		d    datedot.CalendarDate
	}{
		{"month zero", datedot.CalendarDate{Month: 0, Day: 1}},
		{"month thirteen", datedot.CalendarDate{Month: 13, Day: 1}},
		{"day zero", datedot.CalendarDate{Month: time.June, Day: 0}},
		{"April 31", datedot.CalendarDate{Month: time.April, Day: 31}},
		{"Feb 30", datedot.CalendarDate{Month: time.February, Day: 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Next(tt.d, date(2024, time.January, 1))

			var invalid *datedot.InvalidDateError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

// TestIn pins the year materialization used by the feed builder.
func TestIn(t *testing.T) {
	leapling := datedot.CalendarDate{Month: time.February, Day: 29}

	assert.True(t, In(2024, leapling, time.UTC).Equal(date(2024, time.February, 29)))
	assert.True(t, In(2023, leapling, time.UTC).Equal(date(2023, time.February, 28)))

	ordinary := datedot.CalendarDate{Month: time.December, Day: 25}
	assert.True(t, In(2023, ordinary, time.UTC).Equal(date(2023, time.December, 25)))
}
