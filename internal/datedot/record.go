package datedot

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tartampluch/go-datedots/internal/config"
)

// Category classifies a record. It is a closed enumeration; free-text
// category strings from external sources must pass through ParseCategory
// at the adapter boundary. A record's category is immutable after creation:
// changing it is modeled as delete + recreate so note associations stay
// attached to the record they were written for.
type Category string

const (
	CategoryBirthday    Category = "birthday"
	CategoryAnniversary Category = "anniversary"
	CategoryHoliday     Category = "holiday"
	CategoryCustom      Category = "custom"
)

// ParseCategory maps an external category tag onto the closed enumeration.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryBirthday, CategoryAnniversary, CategoryHoliday, CategoryCustom:
		return Category(s), nil
	}
	return "", fmt.Errorf("%s: %q", config.ErrUnknownCategory, s)
}

// NoteType keys the single note of each kind a record may carry.
type NoteType string

const (
	NoteGifts NoteType = "gifts"
	NotePlans NoteType = "plans"
	NoteOther NoteType = "other"
)

// ParseNoteType validates an external note type string.
func ParseNoteType(s string) (NoteType, error) {
	switch NoteType(s) {
	case NoteGifts, NotePlans, NoteOther:
		return NoteType(s), nil
	}
	return "", errors.New(config.ErrNoteType)
}

// Note is a free-form text attached to a record under one NoteType.
type Note struct {
	Type NoteType
	Body string
}

// Address is owned exclusively by one record; it is created alongside the
// record and never shared. Every field is independently optional; absent
// source fields stay empty, never placeholder strings.
type Address struct {
	Street     string
	City       string
	State      string
	PostalCode string
}

// Record is the canonical stored entity: one recurring personal date.
type Record struct {
	ID              string
	Name            string
	AbbreviatedName string
	Date            CalendarDate

	// NormalizedKey is the deterministic hash of (name, date, category)
	// used for import deduplication.
	NormalizedKey string

	// EqualizedDate is the year-independent "MM-DD" sort key.
	EqualizedDate string

	Category Category
	Address  *Address
	Notes    []Note
}

// New builds a record with all derived fields populated. The date must
// already be normalized (start of day is implied by CalendarDate having no
// time component).
func New(name string, date CalendarDate, category Category) Record {
	return Record{
		ID:              uuid.New().String(),
		Name:            name,
		AbbreviatedName: Abbreviate(name, category),
		Date:            date,
		NormalizedKey:   Key(name, date, category),
		EqualizedDate:   date.Equalized(),
		Category:        category,
	}
}
