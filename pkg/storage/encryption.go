package storage

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// EncryptedStore wraps a BlobStore and stores base64(nonce||AES-256-GCM
// ciphertext) of every blob instead of the blob itself.
type EncryptedStore struct {
	blob BlobStore
	gcm  cipher.AEAD
}

// NewEncryptedStore returns a BlobStore encrypting with key, which must be
// exactly 32 bytes.
func NewEncryptedStore(blob BlobStore, key string) (*EncryptedStore, error) {
	if len(key) != 32 {
		return nil, errors.New("invalid encryption key length (must be 32 bytes)")
	}
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcm: %w", err)
	}
	return &EncryptedStore{blob: blob, gcm: gcm}, nil
}

func (e *EncryptedStore) Load(ctx context.Context) ([]byte, error) {
	encoded, err := e.blob.Load(ctx)
	if err != nil {
		return nil, err
	}
	encrypted, err := base64.StdEncoding.DecodeString(string(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode encrypted credentials: %w", err)
	}
	if len(encrypted) < e.gcm.NonceSize() {
		return nil, errors.New("malformed encrypted credentials")
	}
	nonce, ciphertext := encrypted[:e.gcm.NonceSize()], encrypted[e.gcm.NonceSize():]
	plaintext, err := e.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials: %w", err)
	}
	return plaintext, nil
}

func (e *EncryptedStore) Save(ctx context.Context, data []byte) error {
	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}
	ciphertext := e.gcm.Seal(nonce, nonce, data, nil)
	return e.blob.Save(ctx, []byte(base64.StdEncoding.EncodeToString(ciphertext)))
}

func (e *EncryptedStore) Delete(ctx context.Context) error {
	return e.blob.Delete(ctx)
}

func (e *EncryptedStore) Close() error {
	return e.blob.Close()
}
