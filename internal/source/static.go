package source

import (
	"sort"

	"github.com/tartampluch/go-datedots/internal/config"
	"github.com/tartampluch/go-datedots/internal/datedot"
	"github.com/tartampluch/go-datedots/internal/reconcile"
)

// Static converts the settings file's holiday and custom name->date maps
// into candidates. These carry no address and a fixed category; they pass
// through the same normalize/match/decide pipeline as contact candidates.
// Entries are emitted in name order so batches are deterministic.
func Static(s *config.Settings) []reconcile.RawCandidate {
	var candidates []reconcile.RawCandidate
	candidates = append(candidates, fromMap(s.Holidays, datedot.CategoryHoliday)...)
	candidates = append(candidates, fromMap(s.Custom, datedot.CategoryCustom)...)
	return candidates
}

func fromMap(entries map[string]string, cat datedot.Category) []reconcile.RawCandidate {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	candidates := make([]reconcile.RawCandidate, 0, len(names))
	for _, name := range names {
		candidates = append(candidates, candidate(name, entries[name], cat, nil))
	}
	return candidates
}
