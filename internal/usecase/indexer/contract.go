package indexer

import (
	"context"

	domphoto "github.com/kailas-cloud/photodex/internal/domain/photo"
)

// Repository defines the storage contract for photo documents.
type Repository interface {
	EnsureIndex(ctx context.Context) error
	Put(ctx context.Context, doc *domphoto.Document) error
	Get(ctx context.Context, objectKey string) (domphoto.Document, error)
	Exists(ctx context.Context, objectKey string) (bool, error)
	Delete(ctx context.Context, objectKey string) error
	Count(ctx context.Context) (int, error)
}
