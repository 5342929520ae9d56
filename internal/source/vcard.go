// Package source turns external inputs (vCard streams, static settings
// lists) into reconcile.RawCandidate batches. All format quirks stop here;
// the reconciler only ever sees already-decoded candidates.
package source

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-datedots/internal/config"
	"github.com/tartampluch/go-datedots/internal/datedot"
	"github.com/tartampluch/go-datedots/internal/reconcile"
)

// Contacts decodes a vCard stream into candidates. Each card may yield a
// birthday candidate (BDAY) and an anniversary candidate (ANNIVERSARY or
// the legacy X-ANNIVERSARY), both flattened to the same RawCandidate shape.
// A card with an unparsable date still yields a candidate, carrying
// ParseErr so the reconciler can log and skip it.
func Contacts(ctx context.Context, r io.Reader) ([]reconcile.RawCandidate, error) {
	log := slog.With(config.LogKeyComponent, config.CompSource)

	decoder := vcard.NewDecoder(r)
	var candidates []reconcile.RawCandidate

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Log but continue to the next card to maximize data recovery.
			log.Warn(config.MsgSkippedCard, config.LogKeyError, err)
			continue
		}

		name := cardName(card)
		addr := cardAddress(card)

		if bday := card.Get(config.VCardBDAY); bday != nil && bday.Value != "" {
			candidates = append(candidates, candidate(name, bday.Value, datedot.CategoryBirthday, addr))
		}

		anniv := card.Get(config.VCardAnniversary)
		if anniv == nil {
			anniv = card.Get(config.VCardXAnnivDash)
		}
		if anniv != nil && anniv.Value != "" {
			candidates = append(candidates, candidate(name, anniv.Value, datedot.CategoryAnniversary, addr))
		}
	}

	return candidates, nil
}

// candidate parses the raw date value and packages the result, keeping the
// parse failure on the candidate instead of dropping it here.
func candidate(name, rawDate string, cat datedot.Category, addr *reconcile.RawAddress) reconcile.RawCandidate {
	when, yearKnown, err := ParseDate(rawDate)
	return reconcile.RawCandidate{
		Name:      name,
		When:      when,
		YearKnown: yearKnown,
		Category:  cat,
		Address:   addr,
		ParseErr:  err,
	}
}

// cardName resolves the display name: FN (formatted) > N (structured) >
// fallback.
func cardName(card vcard.Card) string {
	if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
		return fn.Value
	}
	if n := card.Get(config.VCardN); n != nil && n.Value != "" {
		return n.Value
	}
	return config.FallbackName
}

// cardAddress maps the card's first ADR entry onto the candidate address.
// Missing components stay empty.
func cardAddress(card vcard.Card) *reconcile.RawAddress {
	addr := card.Address()
	if addr == nil {
		return nil
	}
	return &reconcile.RawAddress{
		Street:     addr.StreetAddress,
		City:       addr.Locality,
		State:      addr.Region,
		PostalCode: addr.PostalCode,
	}
}
