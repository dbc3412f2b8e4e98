package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mkurosawa/github-org-pulse/internal/domain"
	apperrors "github.com/mkurosawa/github-org-pulse/internal/errors"
	"github.com/mkurosawa/github-org-pulse/internal/storage"
)

// sqliteStorage implements the Storage interface for SQLite
type sqliteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (storage.Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	s := &sqliteStorage{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

// Migrate runs database migrations
func (s *sqliteStorage) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS organizations (
		username TEXT PRIMARY KEY,
		profile TEXT NOT NULL,
		members TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sync_cycles (
		id TEXT PRIMARY KEY,
		org TEXT NOT NULL,
		state TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_sync_cycles_org_started ON sync_cycles(org, started_at);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// FindOrganization returns the organization stored under username, or nil
func (s *sqliteStorage) FindOrganization(ctx context.Context, username string) (*domain.Organization, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT username, profile, members, created_at, updated_at
		FROM organizations WHERE username = ?
	`, username)

	org, err := scanOrganization(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError(fmt.Sprintf("failed to query organization %s", username), err)
	}
	return org, nil
}

// FindOrganizationWithMember returns any stored organization containing the member
func (s *sqliteStorage) FindOrganizationWithMember(ctx context.Context, username string) (*domain.Organization, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, profile, members, created_at, updated_at
		FROM organizations
	`)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to query organizations", err)
	}
	defer rows.Close()

	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, apperrors.NewPersistenceError("failed to scan organization", err)
		}
		if org.HasMember(username) {
			return org, nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("failed to iterate organizations", err)
	}
	return nil, nil
}

// SaveOrganization upserts an organization document by username
func (s *sqliteStorage) SaveOrganization(ctx context.Context, org *domain.Organization) error {
	profile, err := json.Marshal(org.Profile)
	if err != nil {
		return apperrors.NewPersistenceError("failed to serialize profile", err)
	}
	members, err := json.Marshal(org.Members)
	if err != nil {
		return apperrors.NewPersistenceError("failed to serialize members", err)
	}

	org.UpdatedAt = time.Now()
	if org.CreatedAt.IsZero() {
		org.CreatedAt = org.UpdatedAt
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO organizations (username, profile, members, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			profile = excluded.profile,
			members = excluded.members,
			updated_at = excluded.updated_at
	`, org.Username, string(profile), string(members), org.CreatedAt, org.UpdatedAt)
	if err != nil {
		return apperrors.NewPersistenceError(fmt.Sprintf("failed to save organization %s", org.Username), err)
	}
	return nil
}

// SaveSyncCycle upserts a sync cycle record
func (s *sqliteStorage) SaveSyncCycle(ctx context.Context, cycle *domain.SyncCycle) error {
	var finished sql.NullTime
	if cycle.FinishedAt != nil {
		finished = sql.NullTime{Time: *cycle.FinishedAt, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_cycles (id, org, state, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			error = excluded.error,
			finished_at = excluded.finished_at
	`, cycle.ID, cycle.Org, string(cycle.State), cycle.Error, cycle.StartedAt, finished)
	if err != nil {
		return apperrors.NewPersistenceError(fmt.Sprintf("failed to save sync cycle %s", cycle.ID), err)
	}
	return nil
}

// GetSyncCycles returns the most recent sync cycles for an organization
func (s *sqliteStorage) GetSyncCycles(ctx context.Context, org string, limit int) ([]*domain.SyncCycle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org, state, error, started_at, finished_at
		FROM sync_cycles
		WHERE org = ?
		ORDER BY started_at DESC
		LIMIT ?
	`, org, limit)
	if err != nil {
		return nil, apperrors.NewPersistenceError(fmt.Sprintf("failed to query sync cycles for %s", org), err)
	}
	defer rows.Close()

	var cycles []*domain.SyncCycle
	for rows.Next() {
		var cycle domain.SyncCycle
		var state string
		var finished sql.NullTime
		if err := rows.Scan(&cycle.ID, &cycle.Org, &state, &cycle.Error, &cycle.StartedAt, &finished); err != nil {
			return nil, apperrors.NewPersistenceError("failed to scan sync cycle", err)
		}
		cycle.State = domain.SyncState(state)
		if finished.Valid {
			t := finished.Time
			cycle.FinishedAt = &t
		}
		cycles = append(cycles, &cycle)
	}
	return cycles, rows.Err()
}

// Close closes the database connection
func (s *sqliteStorage) Close() error {
	return s.db.Close()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrganization(row rowScanner) (*domain.Organization, error) {
	var org domain.Organization
	var profile, members string
	if err := row.Scan(&org.Username, &profile, &members, &org.CreatedAt, &org.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(profile), &org.Profile); err != nil {
		return nil, fmt.Errorf("failed to deserialize profile for %s: %w", org.Username, err)
	}
	if err := json.Unmarshal([]byte(members), &org.Members); err != nil {
		return nil, fmt.Errorf("failed to deserialize members for %s: %w", org.Username, err)
	}
	return &org, nil
}
