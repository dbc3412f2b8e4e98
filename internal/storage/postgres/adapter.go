package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/mkurosawa/github-org-pulse/internal/domain"
	apperrors "github.com/mkurosawa/github-org-pulse/internal/errors"
	"github.com/mkurosawa/github-org-pulse/internal/storage"
)

// postgresStorage implements the Storage interface for PostgreSQL
type postgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage creates a new PostgreSQL storage instance
func NewPostgresStorage(connURL string) (storage.Storage, error) {
	db, err := sql.Open("postgres", connURL)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	s := &postgresStorage{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

// Migrate runs database migrations
func (s *postgresStorage) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS organizations (
		username TEXT PRIMARY KEY,
		profile JSONB NOT NULL,
		members JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS sync_cycles (
		id TEXT PRIMARY KEY,
		org TEXT NOT NULL,
		state TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ
	);

	CREATE INDEX IF NOT EXISTS idx_sync_cycles_org_started ON sync_cycles(org, started_at);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// FindOrganization returns the organization stored under username, or nil
func (s *postgresStorage) FindOrganization(ctx context.Context, username string) (*domain.Organization, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT username, profile, members, created_at, updated_at
		FROM organizations WHERE username = $1
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
func (s *postgresStorage) FindOrganizationWithMember(ctx context.Context, username string) (*domain.Organization, error) {
	// JSONB containment keeps the scan on the database side.
	row := s.db.QueryRowContext(ctx, `
		SELECT username, profile, members, created_at, updated_at
		FROM organizations
		WHERE members @> $1::jsonb
		LIMIT 1
	`, fmt.Sprintf(`[{"username": %q}]`, username))

	org, err := scanOrganization(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError(fmt.Sprintf("failed to query organization with member %s", username), err)
	}
	return org, nil
}

// SaveOrganization upserts an organization document by username
func (s *postgresStorage) SaveOrganization(ctx context.Context, org *domain.Organization) error {
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
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (username) DO UPDATE SET
			profile = EXCLUDED.profile,
			members = EXCLUDED.members,
			updated_at = EXCLUDED.updated_at
	`, org.Username, string(profile), string(members), org.CreatedAt, org.UpdatedAt)
	if err != nil {
		return apperrors.NewPersistenceError(fmt.Sprintf("failed to save organization %s", org.Username), err)
	}
	return nil
}

// SaveSyncCycle upserts a sync cycle record
func (s *postgresStorage) SaveSyncCycle(ctx context.Context, cycle *domain.SyncCycle) error {
	var finished sql.NullTime
	if cycle.FinishedAt != nil {
		finished = sql.NullTime{Time: *cycle.FinishedAt, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_cycles (id, org, state, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			state = EXCLUDED.state,
			error = EXCLUDED.error,
			finished_at = EXCLUDED.finished_at
	`, cycle.ID, cycle.Org, string(cycle.State), cycle.Error, cycle.StartedAt, finished)
	if err != nil {
		return apperrors.NewPersistenceError(fmt.Sprintf("failed to save sync cycle %s", cycle.ID), err)
	}
	return nil
}

// GetSyncCycles returns the most recent sync cycles for an organization
func (s *postgresStorage) GetSyncCycles(ctx context.Context, org string, limit int) ([]*domain.SyncCycle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org, state, error, started_at, finished_at
		FROM sync_cycles
		WHERE org = $1
		ORDER BY started_at DESC
		LIMIT $2
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
func (s *postgresStorage) Close() error {
	return s.db.Close()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrganization(row rowScanner) (*domain.Organization, error) {
	var org domain.Organization
	var profile, members []byte
	if err := row.Scan(&org.Username, &profile, &members, &org.CreatedAt, &org.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(profile, &org.Profile); err != nil {
		return nil, fmt.Errorf("failed to deserialize profile for %s: %w", org.Username, err)
	}
	if err := json.Unmarshal(members, &org.Members); err != nil {
		return nil, fmt.Errorf("failed to deserialize members for %s: %w", org.Username, err)
	}
	return &org, nil
}
