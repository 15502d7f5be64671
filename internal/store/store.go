package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/raysh454/repview/internal/logging"
	"github.com/raysh454/repview/internal/replacements"
)

var ErrNotFound = errors.New("store: snapshot not found")

// Snapshot is one stored rendering of the content container together with
// the schedule parsed from it.
type Snapshot struct {
	ID        string                 `json:"id"`
	FetchedAt time.Time              `json:"fetched_at"`
	Checksum  string                 `json:"checksum"`
	Body      string                 `json:"body"`
	Schedule  *replacements.Schedule `json:"schedule"`
}

// SQLiteStore persists snapshots in SQLite. Safe for concurrent use.
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Logger
}

// Open opens (creating if needed) the database at cfg.Path and applies the schema.
func Open(cfg Config, logger logging.Logger) (*SQLiteStore, error) {
	if logger == nil {
		return nil, errors.New("store: nil logger provided")
	}
	logger = logger.With(logging.Field{Key: "component", Value: "store"})

	path, err := expandPath(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("expanding store path: %w", err)
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer; also keeps ":memory:" a single database
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info("snapshot store opened", logging.Field{Key: "path", Value: path})
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Checksum fingerprints a schedule; equal schedules have equal checksums.
func Checksum(s *replacements.Schedule) (string, error) {
	if s == nil {
		s = &replacements.Schedule{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal schedule: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Save stores snap, filling in ID, FetchedAt and Checksum when unset.
func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return errors.New("snapshot cannot be nil")
	}
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now()
	}
	if snap.Schedule == nil {
		snap.Schedule = &replacements.Schedule{Groups: map[string][]replacements.Replacement{}}
	}
	if snap.Checksum == "" {
		sum, err := Checksum(snap.Schedule)
		if err != nil {
			return err
		}
		snap.Checksum = sum
	}

	schedule, err := json.Marshal(snap.Schedule)
	if err != nil {
		return fmt.Errorf("marshal schedule: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, fetched_at, checksum, date, raw_date, body, schedule) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.FetchedAt.UnixMilli(), snap.Checksum, snap.Schedule.Date, snap.Schedule.RawDate, snap.Body, string(schedule))
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	s.logger.Debug("saved snapshot",
		logging.Field{Key: "id", Value: snap.ID},
		logging.Field{Key: "checksum", Value: snap.Checksum})
	return nil
}

const selectSnapshot = `SELECT id, fetched_at, checksum, body, schedule FROM snapshots`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*Snapshot, error) {
	var (
		snap      Snapshot
		fetchedAt int64
		schedule  string
	)
	if err := row.Scan(&snap.ID, &fetchedAt, &snap.Checksum, &snap.Body, &schedule); err != nil {
		return nil, err
	}
	snap.FetchedAt = time.UnixMilli(fetchedAt)
	snap.Schedule = &replacements.Schedule{}
	if err := json.Unmarshal([]byte(schedule), snap.Schedule); err != nil {
		return nil, fmt.Errorf("decode schedule of %s: %w", snap.ID, err)
	}
	return &snap, nil
}

// Latest returns the most recently fetched snapshot, or ErrNotFound.
func (s *SQLiteStore) Latest(ctx context.Context) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx, selectSnapshot+` ORDER BY fetched_at DESC, rowid DESC LIMIT 1`)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	return snap, nil
}

// Get returns the snapshot with the given id, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx, selectSnapshot+` WHERE id = ?`, id)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot %s: %w", id, err)
	}
	return snap, nil
}

// List returns up to limit snapshots, newest first. limit <= 0 means all.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*Snapshot, error) {
	query := selectSnapshot + ` ORDER BY fetched_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []*Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// SetMeta stores a key/value pair in the meta table.
func (s *SQLiteStore) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

// Meta returns the value stored under key, or "" when absent.
func (s *SQLiteStore) Meta(ctx context.Context, key string) (string, error) {
	var v sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get meta %s: %w", key, err)
	}
	return v.String, nil
}

func (s *SQLiteStore) Close() error {
	s.logger.Info("closing snapshot store")
	return s.db.Close()
}

func expandPath(p string) (string, error) {
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, p[1:]), nil
	}
	return p, nil
}
