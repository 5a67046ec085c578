package storagemock

import (
	"context"

	"github.com/jameshartig/sungrowmon/pkg/storage"
	"github.com/jameshartig/sungrowmon/pkg/types"
	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

var _ storage.CredentialStore = (*MockStore)(nil)

func (m *MockStore) Load(ctx context.Context) (*types.Credentials, error) {
	args := m.Called(ctx)
	if c := args.Get(0); c != nil {
		return c.(*types.Credentials), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) Save(ctx context.Context, creds types.Credentials) error {
	args := m.Called(ctx, creds)
	return args.Error(0)
}

func (m *MockStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MemoryStore is an in-memory CredentialStore for tests that only care about
// what ends up stored.
type MemoryStore struct {
	Creds *types.Credentials
}

var _ storage.CredentialStore = (*MemoryStore)(nil)

func (m *MemoryStore) Load(ctx context.Context) (*types.Credentials, error) {
	if m.Creds == nil {
		return nil, nil
	}
	c := *m.Creds
	return &c, nil
}

func (m *MemoryStore) Save(ctx context.Context, creds types.Credentials) error {
	m.Creds = &creds
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.Creds = nil
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
