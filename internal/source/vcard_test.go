package source

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-datedots/internal/datedot"
)

func vcf(lines ...string) string {
	return strings.Join(lines, "\r\n") + "\r\n"
}

func TestContacts_Birthday(t *testing.T) {
	stream := vcf(
		"BEGIN:VCARD",
		"VERSION:4.0",
		"FN:Jane Doe",
		"BDAY:1990-06-15",
		"END:VCARD",
	)

	cands, err := Contacts(context.Background(), strings.NewReader(stream))
	require.NoError(t, err)
	require.Len(t, cands, 1)

	c := cands[0]
	assert.Equal(t, "Jane Doe", c.Name)
	assert.Equal(t, datedot.CategoryBirthday, c.Category)
	assert.True(t, c.YearKnown)
	assert.NoError(t, c.ParseErr)
	assert.Equal(t, 1990, c.When.Year())
	assert.Equal(t, time.June, c.When.Month())
	assert.Equal(t, 15, c.When.Day())
}

func TestContacts_BirthdayWithoutYear(t *testing.T) {
	stream := vcf(
		"BEGIN:VCARD",
		"VERSION:4.0",
		"FN:Leap Ling",
		"BDAY:--02-29",
		"END:VCARD",
	)

	cands, err := Contacts(context.Background(), strings.NewReader(stream))
	require.NoError(t, err)
	require.Len(t, cands, 1)

	c := cands[0]
	assert.False(t, c.YearKnown)
	assert.NoError(t, c.ParseErr)
	assert.Equal(t, time.February, c.When.Month())
	assert.Equal(t, 29, c.When.Day(), "Feb 29 must survive the placeholder-year parse")
}

func TestContacts_Anniversary(t *testing.T) {
	t.Run("standard property", func(t *testing.T) {
		stream := vcf(
			"BEGIN:VCARD",
			"VERSION:4.0",
			"FN:Jane Doe",
			"ANNIVERSARY:2015-09-01",
			"END:VCARD",
		)

		cands, err := Contacts(context.Background(), strings.NewReader(stream))
		require.NoError(t, err)
		require.Len(t, cands, 1)
		assert.Equal(t, datedot.CategoryAnniversary, cands[0].Category)
	})

	t.Run("legacy X-ANNIVERSARY fallback", func(t *testing.T) {
		stream := vcf(
			"BEGIN:VCARD",
			"VERSION:3.0",
			"FN:Jane Doe",
			"X-ANNIVERSARY:2015-09-01",
			"END:VCARD",
		)

		cands, err := Contacts(context.Background(), strings.NewReader(stream))
		require.NoError(t, err)
		require.Len(t, cands, 1)
		assert.Equal(t, datedot.CategoryAnniversary, cands[0].Category)
	})
}

// TestContacts_BirthdayAndAnniversary verifies one card can contribute two
// candidates sharing the same name and address.
func TestContacts_BirthdayAndAnniversary(t *testing.T) {
	stream := vcf(
		"BEGIN:VCARD",
		"VERSION:4.0",
		"FN:Jane Doe",
		"BDAY:1990-06-15",
		"ANNIVERSARY:2015-09-01",
		"END:VCARD",
	)

	cands, err := Contacts(context.Background(), strings.NewReader(stream))
	require.NoError(t, err)
	require.Len(t, cands, 2)

	assert.Equal(t, datedot.CategoryBirthday, cands[0].Category)
	assert.Equal(t, datedot.CategoryAnniversary, cands[1].Category)
	assert.Equal(t, cands[0].Name, cands[1].Name)
}

func TestContacts_Address(t *testing.T) {
	stream := vcf(
		"BEGIN:VCARD",
		"VERSION:4.0",
		"FN:Jane Doe",
		"ADR:;;1 Main St;Springfield;IL;62701;USA",
		"BDAY:1990-06-15",
		"END:VCARD",
	)

	cands, err := Contacts(context.Background(), strings.NewReader(stream))
	require.NoError(t, err)
	require.Len(t, cands, 1)

	addr := cands[0].Address
	require.NotNil(t, addr)
	assert.Equal(t, "1 Main St", addr.Street)
	assert.Equal(t, "Springfield", addr.City)
	assert.Equal(t, "IL", addr.State)
	assert.Equal(t, "62701", addr.PostalCode)
}

// TestContacts_MalformedDate verifies the candidate is still emitted,
// carrying the parse failure for the reconciler to log and skip.
func TestContacts_MalformedDate(t *testing.T) {
	stream := vcf(
		"BEGIN:VCARD",
		"VERSION:4.0",
		"FN:Broken Contact",
		"BDAY:not-a-date",
		"END:VCARD",
	)

	cands, err := Contacts(context.Background(), strings.NewReader(stream))
	require.NoError(t, err)
	require.Len(t, cands, 1)

	assert.Error(t, cands[0].ParseErr)
	assert.Equal(t, "Broken Contact", cands[0].Name)
}

func TestContacts_NameFallback(t *testing.T) {
	stream := vcf(
		"BEGIN:VCARD",
		"VERSION:4.0",
		"BDAY:1990-06-15",
		"END:VCARD",
	)

	cands, err := Contacts(context.Background(), strings.NewReader(stream))
	require.NoError(t, err)
	require.Len(t, cands, 1)

	assert.Equal(t, "Unknown", cands[0].Name)
}

func TestContacts_CardsWithoutDates(t *testing.T) {
	stream := vcf(
		"BEGIN:VCARD",
		"VERSION:4.0",
		"FN:No Dates Here",
		"END:VCARD",
	)

	cands, err := Contacts(context.Background(), strings.NewReader(stream))
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestContacts_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Contacts(ctx, strings.NewReader(""))
	assert.ErrorIs(t, err, context.Canceled)
}
