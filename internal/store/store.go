// Package store persists date records in a local SQLite database. From the
// caller's point of view a commit is all-or-nothing: either every new
// record lands or none do.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tartampluch/go-datedots/internal/config"
	"github.com/tartampluch/go-datedots/internal/datedot"
)

//go:embed schema.sql
var schema string

// PersistenceError reports a failed batch commit. Count is the number of
// records that were supposed to be created, so the caller can retry the
// whole batch.
type PersistenceError struct {
	Count int
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to commit %d records: %v", e.Count, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Store wraps the SQLite connection.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at dbPath and applies the
// schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// FetchAll returns every stored record with its address and notes attached,
// ordered by equalized date then name.
func (s *Store) FetchAll(ctx context.Context) ([]datedot.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.abbreviated_name, r.month, r.day, r.year,
		       r.normalized_key, r.equalized_date, r.category,
		       a.street, a.city, a.state, a.postal_code
		FROM records r
		LEFT JOIN addresses a ON a.record_id = r.id
		ORDER BY r.equalized_date, r.name
	`)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	defer rows.Close()

	var records []datedot.Record
	byID := make(map[string]int)

	for rows.Next() {
		var rec datedot.Record
		var month, day int
		var category string
		var street, city, state, zip sql.NullString

		if err := rows.Scan(&rec.ID, &rec.Name, &rec.AbbreviatedName,
			&month, &day, &rec.Date.Year,
			&rec.NormalizedKey, &rec.EqualizedDate, &category,
			&street, &city, &state, &zip); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}

		rec.Date.Month = time.Month(month)
		rec.Date.Day = day
		cat, err := datedot.ParseCategory(category)
		if err != nil {
			return nil, err
		}
		rec.Category = cat

		if street.Valid || city.Valid || state.Valid || zip.Valid {
			rec.Address = &datedot.Address{
				Street:     street.String,
				City:       city.String,
				State:      state.String,
				PostalCode: zip.String,
			}
		}

		byID[rec.ID] = len(records)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	if err := s.attachNotes(ctx, records, byID); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) attachNotes(ctx context.Context, records []datedot.Record, byID map[string]int) error {
	rows, err := s.db.QueryContext(ctx, `SELECT record_id, type, body FROM notes ORDER BY record_id, type`)
	if err != nil {
		return fmt.Errorf("fetch notes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recordID, noteType, body string
		if err := rows.Scan(&recordID, &noteType, &body); err != nil {
			return fmt.Errorf("scan note: %w", err)
		}
		idx, ok := byID[recordID]
		if !ok {
			continue
		}
		nt, err := datedot.ParseNoteType(noteType)
		if err != nil {
			return err
		}
		records[idx].Notes = append(records[idx].Notes, datedot.Note{Type: nt, Body: body})
	}
	return rows.Err()
}

// Commit inserts the given records (and their owned addresses) in a single
// transaction. Any failure rolls the whole batch back and surfaces a
// PersistenceError carrying the intended creation count.
func (s *Store) Commit(ctx context.Context, toCreate []datedot.Record) error {
	if len(toCreate) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &PersistenceError{Count: len(toCreate), Err: err}
	}

	now := time.Now().UTC()
	for _, rec := range toCreate {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO records (id, name, abbreviated_name, month, day, year,
			                     normalized_key, equalized_date, category, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.Name, rec.AbbreviatedName,
			int(rec.Date.Month), rec.Date.Day, rec.Date.Year,
			rec.NormalizedKey, rec.EqualizedDate, string(rec.Category), now,
		); err != nil {
			tx.Rollback()
			return &PersistenceError{Count: len(toCreate), Err: err}
		}

		if rec.Address != nil {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO addresses (record_id, street, city, state, postal_code)
				VALUES (?, ?, ?, ?, ?)`,
				rec.ID, rec.Address.Street, rec.Address.City,
				rec.Address.State, rec.Address.PostalCode,
			); err != nil {
				tx.Rollback()
				return &PersistenceError{Count: len(toCreate), Err: err}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return &PersistenceError{Count: len(toCreate), Err: err}
	}
	return nil
}

// UpsertNote writes the single note of the given type on a record,
// replacing any previous body.
func (s *Store) UpsertNote(ctx context.Context, recordID string, note datedot.Note) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (record_id, type, body) VALUES (?, ?, ?)
		ON CONFLICT (record_id, type) DO UPDATE SET body = excluded.body`,
		recordID, string(note.Type), note.Body,
	)
	if err != nil {
		return fmt.Errorf("upsert note: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.New(config.ErrRecordNotFound)
	}
	return nil
}

// Delete removes a record with its address and notes. Category changes are
// modeled as delete + recreate; there is deliberately no update path.
func (s *Store) Delete(ctx context.Context, recordID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, recordID)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New(config.ErrRecordNotFound)
	}
	return nil
}
