// Package sqlite archives generated dungeons in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	stderrors "errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/aukilabs/dvergr/generation"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/segmentio/encoding/json"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const (
	ErrTypeArchive       = "archive_error"
	ErrTypeNotFound      = "archive_not_found"
	ErrTypeAlreadyExists = "archive_already_exists"
)

//go:embed schema.sql
var schema string

// Record is an archived dungeon.
type Record struct {
	UUID        string
	Seed        int64
	DungeonType string
	Fingerprint string
	Floors      int
	Rooms       int
	Dungeon     *generation.DungeonInstance
	CreatedAt   time.Time
}

// Archive persists generated dungeons.
type Archive struct {
	db *sql.DB
}

// Open opens the archive at the given path and creates its schema.
func Open(ctx context.Context, path string) (*Archive, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("archive path is required").WithType(ErrTypeArchive)
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.New("opening archive failed").
			WithType(ErrTypeArchive).
			WithTag("path", path).
			Wrap(err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.New("pinging archive failed").
			WithType(ErrTypeArchive).
			WithTag("path", path).
			Wrap(err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.New("creating archive schema failed").
			WithType(ErrTypeArchive).
			WithTag("path", path).
			Wrap(err)
	}
	return &Archive{db: db}, nil
}

// Close closes the archive.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Save archives a record.
func (a *Archive) Save(ctx context.Context, r Record) error {
	payload, err := json.Marshal(r.Dungeon.WithoutTrees())
	if err != nil {
		return errors.New("encoding dungeon failed").
			WithType(ErrTypeArchive).
			WithTag("uuid", r.UUID).
			Wrap(err)
	}

	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = a.db.ExecContext(ctx,
		`INSERT INTO dungeons (
		   uuid,
		   seed,
		   dungeon_type,
		   fingerprint,
		   floors,
		   rooms,
		   payload,
		   created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.UUID,
		r.Seed,
		r.DungeonType,
		r.Fingerprint,
		r.Floors,
		r.Rooms,
		payload,
		createdAt.UTC().UnixMilli(),
	)
	if isUniqueViolation(err) {
		return errors.New("dungeon already archived").
			WithType(ErrTypeAlreadyExists).
			WithTag("uuid", r.UUID).
			Wrap(err)
	}
	if err != nil {
		return errors.New("archiving dungeon failed").
			WithType(ErrTypeArchive).
			WithTag("uuid", r.UUID).
			Wrap(err)
	}

	instrumentArchivedDungeon()
	return nil
}

// Get returns the record with the given uuid.
func (a *Archive) Get(ctx context.Context, uuid string) (Record, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT uuid, seed, dungeon_type, fingerprint, floors, rooms, payload, created_at
		 FROM dungeons
		 WHERE uuid = ?`,
		uuid,
	)

	r, err := scanRecord(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return Record{}, errors.New("dungeon not archived").
			WithType(ErrTypeNotFound).
			WithTag("uuid", uuid)
	}
	if err != nil {
		return Record{}, errors.New("reading archived dungeon failed").
			WithType(ErrTypeArchive).
			WithTag("uuid", uuid).
			Wrap(err)
	}
	return r, nil
}

// ListBySeed returns the records generated from the given seed, oldest first.
func (a *Archive) ListBySeed(ctx context.Context, seed int64) ([]Record, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT uuid, seed, dungeon_type, fingerprint, floors, rooms, payload, created_at
		 FROM dungeons
		 WHERE seed = ?
		 ORDER BY created_at, uuid`,
		seed,
	)
	if err != nil {
		return nil, errors.New("listing archived dungeons failed").
			WithType(ErrTypeArchive).
			WithTag("seed", seed).
			Wrap(err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, errors.New("reading archived dungeon failed").
				WithType(ErrTypeArchive).
				WithTag("seed", seed).
				Wrap(err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.New("listing archived dungeons failed").
			WithType(ErrTypeArchive).
			WithTag("seed", seed).
			Wrap(err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var r Record
	var payload []byte
	var createdAt int64

	err := s.Scan(
		&r.UUID,
		&r.Seed,
		&r.DungeonType,
		&r.Fingerprint,
		&r.Floors,
		&r.Rooms,
		&payload,
		&createdAt,
	)
	if err != nil {
		return Record{}, err
	}

	r.Dungeon = &generation.DungeonInstance{}
	if err := json.Unmarshal(payload, r.Dungeon); err != nil {
		return Record{}, err
	}

	r.CreatedAt = time.UnixMilli(createdAt).UTC()
	return r, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr *msqlite.Error
	if stderrors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
