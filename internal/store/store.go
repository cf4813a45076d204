// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/morfo/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timestampLayout has a fixed width so created_at sorts as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for the dictionary mirror and lookup history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Single writer: the bridge worker and the UI goroutine share the file.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS dictionary_entries (
			lexeme TEXT PRIMARY KEY,
			stem TEXT,
			ending TEXT,
			features TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS mirror_meta (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			saved_at TEXT NOT NULL,
			entry_count INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS lookups (
			id INTEGER PRIMARY KEY,
			kind TEXT NOT NULL,
			input TEXT NOT NULL,
			traits TEXT NOT NULL,
			result TEXT NOT NULL,
			ok INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_lookups_created_at ON lookups(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_lookups_kind ON lookups(kind);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveDictionary replaces the mirrored dictionary with d.
func (s *Store) SaveDictionary(ctx context.Context, d model.Dictionary) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM dictionary_entries`); err != nil {
		return err
	}
	if len(d) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO dictionary_entries (lexeme, stem, ending, features) VALUES (?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for lexeme, entry := range d {
			features, merr := json.Marshal(nonNil(entry.Features))
			if merr != nil {
				err = fmt.Errorf("failed to encode features of %q: %w", lexeme, merr)
				return err
			}
			var stem, ending sql.NullString
			if entry.HasStem() {
				stem = sql.NullString{String: *entry.Stem, Valid: true}
				ending = sql.NullString{String: *entry.Ending, Valid: true}
			}
			if _, err = stmt.ExecContext(ctx, lexeme, stem, ending, string(features)); err != nil {
				return err
			}
		}
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO mirror_meta (id, saved_at, entry_count) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET saved_at = excluded.saved_at, entry_count = excluded.entry_count`,
		time.Now().UTC().Format(timestampLayout), len(d)); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadDictionary returns the mirrored dictionary. ok is false when nothing was
// ever saved.
func (s *Store) LoadDictionary(ctx context.Context) (model.Dictionary, bool, error) {
	var savedAt string
	err := s.db.QueryRowContext(ctx, `SELECT saved_at FROM mirror_meta WHERE id = 1`).Scan(&savedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT lexeme, stem, ending, features FROM dictionary_entries`)
	if err != nil {
		return nil, false, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	d := model.Dictionary{}
	for rows.Next() {
		var lexeme, features string
		var stem, ending sql.NullString
		if err := rows.Scan(&lexeme, &stem, &ending, &features); err != nil {
			return nil, false, err
		}
		entry := model.DictionaryEntry{}
		if err := json.Unmarshal([]byte(features), &entry.Features); err != nil {
			return nil, false, fmt.Errorf("failed to decode features of %q: %w", lexeme, err)
		}
		entry.Features = nonNil(entry.Features)
		if stem.Valid && ending.Valid {
			entry.Stem = &stem.String
			entry.Ending = &ending.String
		}
		d[lexeme] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return d, true, nil
}

// InsertLookup records a remote request.
func (s *Store) InsertLookup(ctx context.Context, l model.Lookup) (int64, error) {
	traits, err := json.Marshal(nonNil(l.Traits))
	if err != nil {
		return 0, fmt.Errorf("failed to encode traits: %w", err)
	}
	createdAt := l.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO lookups (kind, input, traits, result, ok, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		l.Kind, l.Input, string(traits), l.Result, boolToInt(l.OK), createdAt.UTC().Format(timestampLayout))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RecordLookup stores l, discarding the row id.
func (s *Store) RecordLookup(ctx context.Context, l model.Lookup) error {
	_, err := s.InsertLookup(ctx, l)
	return err
}

// ListLookups returns history rows filtered by cfg, oldest first.
func (s *Store) ListLookups(ctx context.Context, cfg model.HistoryConfig) ([]model.Lookup, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, cfg.Kind)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timestampLayout))
	}
	query := fmt.Sprintf(`SELECT id, kind, input, traits, result, ok, created_at
		FROM lookups
		WHERE %s
		ORDER BY created_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var lookups []model.Lookup
	for rows.Next() {
		var l model.Lookup
		var traits, createdAt string
		var ok int
		if err := rows.Scan(&l.ID, &l.Kind, &l.Input, &traits, &l.Result, &ok, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(traits), &l.Traits); err != nil {
			return nil, fmt.Errorf("failed to decode traits of lookup %d: %w", l.ID, err)
		}
		parsed, err := time.Parse(timestampLayout, createdAt)
		if err != nil {
			return nil, err
		}
		l.CreatedAt = parsed
		l.OK = ok != 0
		lookups = append(lookups, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(lookups) > cfg.Last {
		lookups = lookups[len(lookups)-cfg.Last:]
	}
	return lookups, nil
}

// CountLookups aggregates history rows per kind.
func (s *Store) CountLookups(ctx context.Context) ([]model.LookupCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, COUNT(*) AS total, SUM(CASE WHEN ok = 0 THEN 1 ELSE 0 END) AS failed
		 FROM lookups
		 GROUP BY kind
		 ORDER BY kind ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.LookupCount
	for rows.Next() {
		var c model.LookupCount
		if err := rows.Scan(&c.Kind, &c.Total, &c.Failed); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
