package docstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/fishlog/internal/common"
)

// FirestoreStore implements Store on a single Firestore collection.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore connects to the given project and binds the store to one
// collection. Pass option.WithCredentialsFile (or nothing, for ambient
// credentials) in opts.
func NewFirestoreStore(ctx context.Context, projectID, collection string, opts ...option.ClientOption) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return &FirestoreStore{client: client, collection: collection}, nil
}

func (s *FirestoreStore) Get(ctx context.Context, key string) (map[string]any, error) {
	snap, err := s.client.Collection(s.collection).Doc(key).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", key, err)
	}
	return snap.Data(), nil
}

func (s *FirestoreStore) Set(ctx context.Context, key string, fields map[string]any, merge bool) error {
	payload := make(map[string]any, len(fields))
	for k, v := range fields {
		if v == ServerTimestamp {
			v = firestore.ServerTimestamp
		}
		payload[k] = v
	}

	var opts []firestore.SetOption
	if merge {
		opts = append(opts, firestore.MergeAll)
	}

	if _, err := s.client.Collection(s.collection).Doc(key).Set(ctx, payload, opts...); err != nil {
		return fmt.Errorf("failed to write document %s: %w", key, err)
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, key string) error {
	if _, err := s.client.Collection(s.collection).Doc(key).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
