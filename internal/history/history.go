// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package history keeps a local SQLite ledger of deployment runs so earlier
// addresses and transaction hashes can be looked up after the console output
// is gone.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Status of a recorded run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// ErrNotFound indicates no run with the requested id exists.
var ErrNotFound = errors.New("deployment not found")

// Entry is one deployment run.
type Entry struct {
	ID              string    `json:"id"`
	Network         string    `json:"network"`
	RPCURL          string    `json:"rpc_url"`
	Account         string    `json:"account"`
	ClassHash       string    `json:"class_hash"`
	Salt            string    `json:"salt"`
	ContractAddress string    `json:"contract_address,omitempty"`
	DeclareTxHash   string    `json:"declare_tx_hash,omitempty"`
	DeployTxHash    string    `json:"deploy_tx_hash,omitempty"`
	Status          Status    `json:"status"`
	Error           string    `json:"error,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

const schema = `
CREATE TABLE IF NOT EXISTS deployments (
	id               TEXT PRIMARY KEY,
	network          TEXT NOT NULL,
	rpc_url          TEXT NOT NULL,
	account          TEXT NOT NULL,
	class_hash       TEXT NOT NULL,
	salt             TEXT NOT NULL,
	contract_address TEXT NOT NULL DEFAULT '',
	declare_tx_hash  TEXT NOT NULL DEFAULT '',
	deploy_tx_hash   TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL,
	error            TEXT NOT NULL DEFAULT '',
	created_at       INTEGER NOT NULL,
	updated_at       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS deployments_created_at ON deployments (created_at);
`

// Store is a SQLite-backed deployment ledger.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating when needed) the ledger at path.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create history directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// A single connection keeps :memory: databases alive across calls and
	// serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts e, assigning an id and timestamps when they are unset.
func (s *Store) Create(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Status == "" {
		e.Status = StatusPending
	}
	now := s.now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO deployments (id, network, rpc_url, account, class_hash, salt,
			contract_address, declare_tx_hash, deploy_tx_hash, status, error,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Network, e.RPCURL, e.Account, e.ClassHash, e.Salt,
		e.ContractAddress, e.DeclareTxHash, e.DeployTxHash, string(e.Status), e.Error,
		e.CreatedAt.UnixNano(), e.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record deployment: %w", err)
	}
	return nil
}

// Update overwrites the mutable columns of an existing entry.
func (s *Store) Update(ctx context.Context, e *Entry) error {
	e.UpdatedAt = s.now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE deployments SET class_hash = ?, contract_address = ?,
			declare_tx_hash = ?, deploy_tx_hash = ?, status = ?, error = ?,
			updated_at = ?
		WHERE id = ?`,
		e.ClassHash, e.ContractAddress, e.DeclareTxHash, e.DeployTxHash,
		string(e.Status), e.Error, e.UpdatedAt.UnixNano(), e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update deployment %s: %w", e.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update deployment %s: %w", e.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, e.ID)
	}
	return nil
}

// Get returns the entry with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load deployment %s: %w", id, err)
	}
	return e, nil
}

// List returns up to limit entries, newest first. A non-positive limit
// returns every entry.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list deployments: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read deployment: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

const selectColumns = `SELECT id, network, rpc_url, account, class_hash, salt,
	contract_address, declare_tx_hash, deploy_tx_hash, status, error,
	created_at, updated_at FROM deployments`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		e                Entry
		status           string
		created, updated int64
	)
	err := row.Scan(&e.ID, &e.Network, &e.RPCURL, &e.Account, &e.ClassHash, &e.Salt,
		&e.ContractAddress, &e.DeclareTxHash, &e.DeployTxHash, &status, &e.Error,
		&created, &updated)
	if err != nil {
		return nil, err
	}
	e.Status = Status(status)
	e.CreatedAt = time.Unix(0, created).UTC()
	e.UpdatedAt = time.Unix(0, updated).UTC()
	return &e, nil
}
