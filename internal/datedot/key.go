package datedot

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/tartampluch/go-datedots/internal/config"
)

// Key computes the normalized dedup key for a (name, date, category)
// triple. It is a pure function: equal inputs always hash to the same key,
// and any differing field changes the key. Matching is exact equality on
// the normalized values, no fuzzy or case-insensitive matching.
func Key(name string, date CalendarDate, category Category) string {
	input := fmt.Sprintf(config.FormatKeyInput, config.KeySalt, name, date.Canonical(), category)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:config.KeyHashLength])
}

// Abbreviate derives the shortened display form of a name: the first token
// plus the initial of the last token ("Jane Doe" -> "Jane D."). Single-token
// names pass through unchanged, as do holiday names, which are not person
// names. The rule is deterministic and idempotent.
func Abbreviate(name string, category Category) string {
	if category == CategoryHoliday {
		return name
	}
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return name
	}
	// Taking the first rune of the last token keeps the rule idempotent:
	// "Jane D." abbreviates to "Jane D." again.
	initial := []rune(fields[len(fields)-1])[0]
	return fmt.Sprintf("%s %c.", fields[0], initial)
}
