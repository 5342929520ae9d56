package datedot

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_PopulatesDerivedFields(t *testing.T) {
	d := CalendarDate{Month: time.June, Day: 15, Year: 1990}

	rec := New("Jane Doe", d, CategoryBirthday)

	_, err := uuid.Parse(rec.ID)
	require.NoError(t, err, "ID must be a valid UUID")

	assert.Equal(t, "Jane Doe", rec.Name)
	assert.Equal(t, "Jane D.", rec.AbbreviatedName)
	assert.Equal(t, d, rec.Date)
	assert.Equal(t, Key("Jane Doe", d, CategoryBirthday), rec.NormalizedKey)
	assert.Equal(t, "06-15", rec.EqualizedDate)
	assert.Equal(t, CategoryBirthday, rec.Category)
	assert.Nil(t, rec.Address)
	assert.Empty(t, rec.Notes)
}

func TestNew_UniqueIDs(t *testing.T) {
	d := CalendarDate{Month: time.June, Day: 15}

	a := New("Jane Doe", d, CategoryBirthday)
	b := New("Jane Doe", d, CategoryBirthday)

	// Same normalized key, distinct identities.
	assert.Equal(t, a.NormalizedKey, b.NormalizedKey)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestParseCategory(t *testing.T) {
	for _, valid := range []string{"birthday", "anniversary", "holiday", "custom"} {
		got, err := ParseCategory(valid)
		require.NoError(t, err)
		assert.Equal(t, Category(valid), got)
	}

	for _, invalid := range []string{"", "Birthday", "wedding"} {
		_, err := ParseCategory(invalid)
		assert.Error(t, err, "input %q", invalid)
	}
}

func TestParseNoteType(t *testing.T) {
	for _, valid := range []string{"gifts", "plans", "other"} {
		got, err := ParseNoteType(valid)
		require.NoError(t, err)
		assert.Equal(t, NoteType(valid), got)
	}

	for _, invalid := range []string{"", "Gifts", "reminders"} {
		_, err := ParseNoteType(invalid)
		assert.Error(t, err, "input %q", invalid)
	}
}
