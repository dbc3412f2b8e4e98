package storage

import (
	"context"

	"github.com/mkurosawa/github-org-pulse/internal/domain"
)

// Storage is the abstract interface for the persistence layer. It is a
// document contract: organizations are addressed by exact username and
// an absent document is reported as (nil, nil), never as an error.
type Storage interface {
	// FindOrganization returns the organization stored under username,
	// or nil when none exists
	FindOrganization(ctx context.Context, username string) (*domain.Organization, error)

	// FindOrganizationWithMember returns any stored organization whose
	// member list contains the given username, or nil when none does
	FindOrganizationWithMember(ctx context.Context, username string) (*domain.Organization, error)

	// SaveOrganization upserts an organization document by username
	SaveOrganization(ctx context.Context, org *domain.Organization) error

	// Sync cycle records
	SaveSyncCycle(ctx context.Context, cycle *domain.SyncCycle) error
	GetSyncCycles(ctx context.Context, org string, limit int) ([]*domain.SyncCycle, error)

	// Migration
	Migrate(ctx context.Context) error

	// Connection management
	Close() error
}
