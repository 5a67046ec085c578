package storage

import (
	"context"
	"fmt"

	"github.com/levenlabs/go-lflag"
)

// Configured sets up the CredentialStore based on flags.
func Configured() CredentialStore {
	provider := lflag.String("credential-store", "file", "Credential store to use (available: file, firestore, s3)")
	dir := lflag.String("credential-dir", "", "Directory for the credentials file (default: SungrowMonitor under the user config dir)")
	profile := lflag.String("credential-profile", "default", "Name of the credential record in remote stores")
	encryptionKey := lflag.String("credentials-encryption-key", "", "Optional 32 byte key to encrypt stored credentials with")

	var p struct{ CredentialStore }

	fs := configuredFirestore()
	s3 := configuredS3()

	lflag.Do(func() {
		var blob BlobStore
		switch *provider {
		case "file":
			f, err := NewFileStore(*dir)
			if err != nil {
				panic(fmt.Sprintf("file store init failed: %v", err))
			}
			blob = f
		case "firestore":
			fs.profile = *profile
			if err := fs.Validate(); err != nil {
				panic(fmt.Sprintf("firestore validation failed: %v", err))
			}
			if err := fs.Init(context.Background()); err != nil {
				panic(fmt.Sprintf("firestore init failed: %v", err))
			}
			blob = fs
		case "s3":
			s3.profile = *profile
			if err := s3.Validate(); err != nil {
				panic(fmt.Sprintf("s3 validation failed: %v", err))
			}
			if err := s3.Init(); err != nil {
				panic(fmt.Sprintf("s3 init failed: %v", err))
			}
			blob = s3
		default:
			panic(fmt.Sprintf("unknown credential store: %s", *provider))
		}

		if *encryptionKey != "" {
			enc, err := NewEncryptedStore(blob, *encryptionKey)
			if err != nil {
				panic(fmt.Sprintf("credential encryption setup failed: %v", err))
			}
			blob = enc
		}
		p.CredentialStore = NewCredentialStore(blob)
	})

	return &p
}
