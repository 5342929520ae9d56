// Package reconcile merges batches of externally sourced date candidates
// into an existing record set. Import only ever adds records: a matched
// candidate leaves the stored record untouched, including its address and
// notes. The reconciler returns decisions, not side effects; committing
// the creations is the caller's job.
package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/tartampluch/go-datedots/internal/config"
	"github.com/tartampluch/go-datedots/internal/datedot"
)

// RawAddress is the loosely-typed address payload from an external source.
// Fields that the source did not provide stay empty.
type RawAddress struct {
	Street     string
	City       string
	State      string
	PostalCode string
}

// RawCandidate is one external date record, already decoded by a source
// adapter. The raw date may carry a time-of-day; normalization strips it.
type RawCandidate struct {
	Name      string
	When      time.Time
	YearKnown bool
	Category  datedot.Category
	Address   *RawAddress

	// ParseErr is set by adapters when the source's raw date value could
	// not be parsed. Such candidates are logged and skipped without
	// aborting the batch.
	ParseErr error
}

// Result partitions a candidate batch into records to create and existing
// records that matched.
type Result struct {
	ToCreate  []datedot.Record
	Unchanged []datedot.Record
}

// Reconcile runs the normalize/match/decide pipeline over candidates.
// It assumes exclusive access to existing for the duration of the call and
// never mutates it. Cancellation is checked between candidates, never
// mid-candidate.
func Reconcile(ctx context.Context, candidates []RawCandidate, existing []datedot.Record) (Result, error) {
	log := slog.With(config.LogKeyComponent, config.CompReconcile)

	// Index by normalized key for O(1) matching. Behavior is identical to
	// a linear predicate scan; only the lookup cost changes.
	index := make(map[string]datedot.Record, len(existing))
	for _, rec := range existing {
		index[rec.NormalizedKey] = rec
	}

	var res Result
	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		if cand.ParseErr != nil {
			log.Warn(config.MsgSkippedCand,
				config.LogKeyName, cand.Name,
				config.LogKeyCategory, string(cand.Category),
				config.LogKeyError, cand.ParseErr,
			)
			continue
		}

		name := cand.Name
		if name == "" {
			name = config.FallbackName
		}

		date := datedot.FromTime(datedot.StartOfDay(cand.When), cand.YearKnown)
		key := datedot.Key(name, date, cand.Category)

		if match, ok := index[key]; ok {
			// Conservative policy: never overwrite or merge address/note
			// data into a matched record, even when the source now has
			// richer fields.
			res.Unchanged = append(res.Unchanged, match)
			continue
		}

		rec := datedot.New(name, date, cand.Category)
		if cand.Address != nil {
			rec.Address = &datedot.Address{
				Street:     cand.Address.Street,
				City:       cand.Address.City,
				State:      cand.Address.State,
				PostalCode: cand.Address.PostalCode,
			}
		}

		res.ToCreate = append(res.ToCreate, rec)
		// Register the new record so a duplicate candidate later in the
		// same batch matches instead of creating twice.
		index[key] = rec
	}

	return res, nil
}
