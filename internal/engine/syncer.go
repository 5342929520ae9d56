// Package engine orchestrates one synchronization pass: acquire candidates
// from the configured contact source and the static lists, reconcile them
// against the record store, and commit whatever is new.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/tartampluch/go-datedots/internal/config"
	"github.com/tartampluch/go-datedots/internal/datedot"
	"github.com/tartampluch/go-datedots/internal/reconcile"
	"github.com/tartampluch/go-datedots/internal/source"
)

// SyncConfig contains all parameters required to perform a synchronization.
type SyncConfig struct {
	Mode      string // config.SourceModeLocal or config.SourceModeWeb
	LocalPath string // Absolute path to the .vcf file
	WebURL    string // CardDAV or WebDAV URL
	WebUser   string // HTTP Basic Auth Username
	WebPass   string // HTTP Basic Auth Password
}

// RecordStore is the persistence boundary the syncer needs: a snapshot of
// everything stored and an all-or-nothing batch commit.
type RecordStore interface {
	FetchAll(ctx context.Context) ([]datedot.Record, error)
	Commit(ctx context.Context, toCreate []datedot.Record) error
}

// Report summarizes one sync pass.
type Report struct {
	Candidates int // candidates considered, all sources
	Created    int // new records committed
	Unchanged  int // candidates that matched an existing record
	Skipped    int // candidates dropped for unparsable dates
}

// Syncer is the core service wiring sources, reconciler and store.
type Syncer struct {
	Clock   Clock        // Interface for time mocking.
	Fetcher VCardFetcher // Interface for network abstraction.
	Store   RecordStore
}

// RunSync executes the fetch, parse, reconcile and commit pipeline.
// staticCandidates come from the settings file (holidays, custom dates)
// and join the contact candidates in a single reconcile batch.
func (s *Syncer) RunSync(ctx context.Context, cfg SyncConfig, staticCandidates []reconcile.RawCandidate) (Report, error) {
	start := s.now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMode, cfg.Mode,
	)
	log.Info(config.MsgSyncStarted)

	if s.Store == nil {
		return Report{}, errors.New(config.ErrStoreMissing)
	}

	candidates, err := s.contactCandidates(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return Report{}, ctx.Err()
		}
		return Report{}, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	candidates = append(candidates, staticCandidates...)

	existing, err := s.Store.FetchAll(ctx)
	if err != nil {
		return Report{}, err
	}

	res, err := reconcile.Reconcile(ctx, candidates, existing)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		Candidates: len(candidates),
		Created:    len(res.ToCreate),
		Unchanged:  len(res.Unchanged),
		Skipped:    len(candidates) - len(res.ToCreate) - len(res.Unchanged),
	}

	if len(res.ToCreate) == 0 {
		log.Info(config.MsgNothingToDo, config.LogKeyTotal, report.Candidates)
	} else {
		// PersistenceError propagates unmodified; retrying the batch is
		// the caller's call.
		if err := s.Store.Commit(ctx, res.ToCreate); err != nil {
			return report, err
		}
		log.Info(config.MsgCommitted, config.LogKeyCreated, report.Created)
	}

	log.Info(config.MsgSyncDone,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, report.Candidates),
			slog.Int(config.LogKeyCreated, report.Created),
			slog.Int(config.LogKeyUnchanged, report.Unchanged),
			slog.Int(config.LogKeySkipped, report.Skipped),
		),
		config.LogKeyDuration, s.now().Sub(start).Milliseconds(),
	)
	return report, nil
}

// now uses the injected clock when present so tests stay deterministic.
func (s *Syncer) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now()
	}
	return time.Now()
}

// contactCandidates acquires and decodes the contact source. A local mode
// with no path configured simply contributes no candidates: the user may be
// running on static lists alone, and a denied or absent source is a normal
// empty sequence, not an error.
func (s *Syncer) contactCandidates(ctx context.Context, cfg SyncConfig) ([]reconcile.RawCandidate, error) {
	reader, err := s.acquireStream(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if reader == nil {
		return nil, nil
	}
	// Best effort close. Close() errors on read-only sources are rarely actionable.
	defer func() { _ = reader.Close() }()

	return source.Contacts(ctx, reader)
}

// acquireStream opens the appropriate data source based on configuration.
func (s *Syncer) acquireStream(ctx context.Context, cfg SyncConfig) (io.ReadCloser, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, nil
		}
		return os.Open(cfg.LocalPath)
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if s.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return s.Fetcher.Fetch(ctx, cfg.WebURL, cfg.WebUser, cfg.WebPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}
