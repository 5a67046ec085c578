package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jameshartig/sungrowmon/pkg/types"
)

// ErrBlobNotFound is returned by a BlobStore when nothing has been saved yet.
var ErrBlobNotFound = errors.New("blob not found")

// CredentialStore persists the single iSolarCloud credential record.
type CredentialStore interface {
	// Load returns the stored credentials or nil if none are stored.
	Load(ctx context.Context) (*types.Credentials, error)
	Save(ctx context.Context, creds types.Credentials) error
	// Clear removes the stored credentials. Clearing an empty store is not an
	// error.
	Clear(ctx context.Context) error

	Close() error
}

// BlobStore stores one opaque document. Providers implement this and
// NewCredentialStore turns it into a CredentialStore.
type BlobStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Delete(ctx context.Context) error
	Close() error
}

type blobCredentialStore struct {
	blob BlobStore
}

// NewCredentialStore stores credentials as indented JSON in blob.
func NewCredentialStore(blob BlobStore) CredentialStore {
	return &blobCredentialStore{blob: blob}
}

func (s *blobCredentialStore) Load(ctx context.Context) (*types.Credentials, error) {
	data, err := s.blob.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	var creds types.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}
	return &creds, nil
}

func (s *blobCredentialStore) Save(ctx context.Context, creds types.Credentials) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	if err := s.blob.Save(ctx, data); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

func (s *blobCredentialStore) Clear(ctx context.Context) error {
	if err := s.blob.Delete(ctx); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

func (s *blobCredentialStore) Close() error {
	return s.blob.Close()
}
