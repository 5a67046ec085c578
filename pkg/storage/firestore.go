package storage

import (
	"context"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/jameshartig/sungrowmon/pkg/common"
	"github.com/levenlabs/go-lflag"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore keeps the blob in a Firestore document as a string field
// named "json".
type FirestoreStore struct {
	client     *firestore.Client
	projectID  string
	database   string
	collection string
	profile    string
}

// configuredFirestore sets up the Firestore provider.
// It registers flags for configuration.
func configuredFirestore() *FirestoreStore {
	projectID := lflag.String("firestore-project-id", "", "Google Cloud Project ID for Firestore")
	database := lflag.String("firestore-database", "", "Google Cloud Firestore Database")
	emulator := lflag.String("firestore-emulator", "", "Use Firestore emulator")
	collection := lflag.String("firestore-collection", "sungrowmon_credentials", "Firestore collection holding credential documents")

	f := &FirestoreStore{}

	lflag.Do(func() {
		f.projectID = *projectID
		f.database = *database
		f.collection = *collection

		// set this because that's how firestore client expects it
		if *emulator != "" {
			os.Setenv("FIRESTORE_EMULATOR_HOST", *emulator)
		}
	})

	return f
}

// Validate checks if the provider is properly configured.
func (f *FirestoreStore) Validate() error {
	if f.collection == "" {
		return fmt.Errorf("firestore collection cannot be empty")
	}
	if f.profile == "" {
		return fmt.Errorf("credential profile cannot be empty")
	}
	return nil
}

// Init initializes the Firestore client.
// This must be called before using the provider methods.
func (f *FirestoreStore) Init(ctx context.Context) error {
	projectID := f.projectID
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	database := f.database
	if database == "" {
		database = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, database, option.WithUserAgent(common.UserAgent()))
	if err != nil {
		return fmt.Errorf("failed to create firestore client (project=%s, database=%s): %w", projectID, database, err)
	}
	f.client = client
	return nil
}

// Close closes the Firestore client connection.
func (f *FirestoreStore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func (f *FirestoreStore) doc() *firestore.DocumentRef {
	return f.client.Collection(f.collection).Doc(f.profile)
}

func (f *FirestoreStore) Load(ctx context.Context) ([]byte, error) {
	doc, err := f.doc().Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to fetch credentials doc: %w", err)
	}
	val, err := doc.DataAt("json")
	if err != nil {
		return nil, fmt.Errorf("credentials document missing 'json' field: %w", err)
	}
	str, ok := val.(string)
	if !ok {
		return nil, fmt.Errorf("credentials 'json' field is not a string")
	}
	return []byte(str), nil
}

func (f *FirestoreStore) Save(ctx context.Context, data []byte) error {
	_, err := f.doc().Set(ctx, map[string]interface{}{
		"json":    string(data),
		"updated": time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to save credentials doc: %w", err)
	}
	return nil
}

func (f *FirestoreStore) Delete(ctx context.Context) error {
	if _, err := f.doc().Delete(ctx); err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("failed to delete credentials doc: %w", err)
	}
	return nil
}
