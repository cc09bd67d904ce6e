// Package store persists pipeline runs (spec §4.9): a config snapshot,
// timing metrics, the component-diversity score, and the resulting system
// NFA/DFA, behind a small repository interface.
//
// Grounded on server/dao's repository-interface-over-sqlite-driver shape
// (dao.go's Store/*Repository split, sqlite/sqlite.go's NewDatastore,
// sqlite/users.go's CREATE TABLE IF NOT EXISTS + prepared-statement idiom).
// Automaton persistence uses github.com/dekarrin/rezi binary encoding,
// directly reused from the teacher's own rezi.EncBinary/DecBinary use for
// game.State.
package store

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/dekarrin/prins/internal/automaton"
	"github.com/dekarrin/rezi"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get when no run exists with the given id.
var ErrNotFound = errors.New("store: run not found")

// Run is one stored pipeline invocation.
type Run struct {
	ID                 string
	ConfigTOML         string
	ProjectionTime     time.Duration
	InferenceTime      time.Duration
	StitchingTime      time.Duration
	ComponentDiversity float64
	System             *automaton.NFA
	Determinized       *automaton.DFA
	CreatedAt          time.Time
}

// RunRepository is the persistence boundary the CLI and HTTP surfaces
// depend on (spec §4.9).
type RunRepository interface {
	Create(ctx context.Context, run Run) (Run, error)
	Get(ctx context.Context, id string) (Run, error)
	Close() error
}

// SQLiteStore is a RunRepository backed by modernc.org/sqlite (pure Go, no
// cgo, the same driver the teacher's sqlite backend uses).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) a sqlite database at path and
// ensures its schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening %q: %w", path, err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT NOT NULL PRIMARY KEY,
		config_toml TEXT NOT NULL,
		projection_ns INTEGER NOT NULL,
		inference_ns INTEGER NOT NULL,
		stitching_ns INTEGER NOT NULL,
		component_diversity REAL NOT NULL,
		system_data TEXT NOT NULL,
		determinized_data TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);`)
	if err != nil {
		return nil, fmt.Errorf("store: creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, run Run) (Run, error) {
	id := run.ID
	if id == "" {
		newID, err := uuid.NewRandom()
		if err != nil {
			return Run{}, fmt.Errorf("store: generating run id: %w", err)
		}
		id = newID.String()
	}

	systemData, err := encodeNFA(run.System)
	if err != nil {
		return Run{}, err
	}
	detData, err := encodeDFA(run.Determinized)
	if err != nil {
		return Run{}, err
	}

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	stmt, err := s.db.PrepareContext(ctx, `INSERT INTO runs
		(id, config_toml, projection_ns, inference_ns, stitching_ns, component_diversity, system_data, determinized_data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("store: preparing insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, id, run.ConfigTOML,
		run.ProjectionTime.Nanoseconds(), run.InferenceTime.Nanoseconds(), run.StitchingTime.Nanoseconds(),
		run.ComponentDiversity, systemData, detData, createdAt.Unix())
	if err != nil {
		return Run{}, fmt.Errorf("store: inserting run: %w", err)
	}

	run.ID = id
	run.CreatedAt = createdAt
	return run, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, config_toml, projection_ns, inference_ns, stitching_ns,
		component_diversity, system_data, determinized_data, created_at FROM runs WHERE id = ?`, id)

	var (
		run                                     Run
		projNS, infNS, stitchNS, createdAtUnix  int64
		systemData, detData                     string
	)
	err := row.Scan(&run.ID, &run.ConfigTOML, &projNS, &infNS, &stitchNS,
		&run.ComponentDiversity, &systemData, &detData, &createdAtUnix)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("store: querying run %q: %w", id, err)
	}

	run.ProjectionTime = time.Duration(projNS)
	run.InferenceTime = time.Duration(infNS)
	run.StitchingTime = time.Duration(stitchNS)
	run.CreatedAt = time.Unix(createdAtUnix, 0)

	run.System, err = decodeNFA(systemData)
	if err != nil {
		return Run{}, err
	}
	run.Determinized, err = decodeDFA(detData)
	if err != nil {
		return Run{}, err
	}

	return run, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func encodeNFA(n *automaton.NFA) (string, error) {
	if n == nil {
		return "", nil
	}
	data := rezi.EncBinary(snapshotFromNFA(n))
	return base64.StdEncoding.EncodeToString(data), nil
}

func decodeNFA(encoded string) (*automaton.NFA, error) {
	if encoded == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("store: decoding system NFA: %w", err)
	}
	var snap snapshot
	if _, err := rezi.DecBinary(data, &snap); err != nil {
		return nil, fmt.Errorf("store: decoding system NFA: %w", err)
	}
	return snap.toNFA(), nil
}

func encodeDFA(d *automaton.DFA) (string, error) {
	if d == nil {
		return "", nil
	}
	data := rezi.EncBinary(snapshotFromDFA(d))
	return base64.StdEncoding.EncodeToString(data), nil
}

func decodeDFA(encoded string) (*automaton.DFA, error) {
	if encoded == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("store: decoding determinized DFA: %w", err)
	}
	var snap snapshot
	if _, err := rezi.DecBinary(data, &snap); err != nil {
		return nil, fmt.Errorf("store: decoding determinized DFA: %w", err)
	}
	return snap.toDFA(), nil
}
