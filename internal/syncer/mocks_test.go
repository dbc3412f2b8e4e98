package syncer

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/mkurosawa/github-org-pulse/internal/domain"
)

// mockStorage is a mock implementation of the storage.Storage interface.
type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) FindOrganization(ctx context.Context, username string) (*domain.Organization, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}

func (m *mockStorage) FindOrganizationWithMember(ctx context.Context, username string) (*domain.Organization, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}

func (m *mockStorage) SaveOrganization(ctx context.Context, org *domain.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *mockStorage) SaveSyncCycle(ctx context.Context, cycle *domain.SyncCycle) error {
	args := m.Called(ctx, cycle)
	return args.Error(0)
}

func (m *mockStorage) GetSyncCycles(ctx context.Context, org string, limit int) ([]*domain.SyncCycle, error) {
	args := m.Called(ctx, org, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SyncCycle), args.Error(1)
}

func (m *mockStorage) Migrate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockStorage) Close() error {
	args := m.Called()
	return args.Error(0)
}

// mockSource is a mock implementation of the collector.Source interface.
type mockSource struct {
	mock.Mock
}

func (m *mockSource) GetOrganization(ctx context.Context, name string) (*domain.Organization, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}

func (m *mockSource) ListMembersPage(ctx context.Context, org string, page, perPage int) ([]string, bool, error) {
	args := m.Called(ctx, org, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]string), args.Bool(1), args.Error(2)
}

func (m *mockSource) ListRecentRepos(ctx context.Context, user string, since time.Time) ([]string, error) {
	args := m.Called(ctx, user, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockSource) GetCodeFrequency(ctx context.Context, owner, repo string) (string, error) {
	args := m.Called(ctx, owner, repo)
	return args.String(0), args.Error(1)
}

func (m *mockSource) GetPunchCard(ctx context.Context, owner, repo string) (string, error) {
	args := m.Called(ctx, owner, repo)
	return args.String(0), args.Error(1)
}
