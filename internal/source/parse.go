package source

import (
	"errors"
	"time"

	"github.com/tartampluch/go-datedots/internal/config"
)

// ParseDate handles the date formats encountered in vCards and settings
// files. The second return reports whether the value carried a year.
func ParseDate(value string) (time.Time, bool, error) {
	// Full dates (year known)
	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return t, true, nil
		}
	}

	// Truncated dates (year unknown), vCard specific.
	// The placeholder year is a leap year so --02-29 survives the parse.
	formatsWithoutYear := []string{config.DateFormatNoYearD, config.DateFormatNoYearB}
	for _, f := range formatsWithoutYear {
		if t, err := time.Parse(f, value); err == nil {
			safe := time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return safe, false, nil
		}
	}

	return time.Time{}, false, errors.New(config.ErrDateParse)
}
