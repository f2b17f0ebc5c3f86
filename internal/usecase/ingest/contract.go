package ingest

import (
	"context"

	domphoto "github.com/kailas-cloud/photodex/internal/domain/photo"
)

// Recognizer extracts descriptive labels from a stored image.
type Recognizer interface {
	DetectLabels(ctx context.Context, bucket, key string) ([]string, error)
}

// FaceDetector counts faces in a stored image. Drivers provide it; ingestion does not call it.
type FaceDetector interface {
	DetectFaces(ctx context.Context, bucket, key string) (int, error)
}

// MetadataReader reads the user metadata of a stored object.
type MetadataReader interface {
	HeadObject(ctx context.Context, bucket, key string) (domphoto.Metadata, error)
}

// IndexWriter commits one document to the photo index.
type IndexWriter interface {
	Commit(ctx context.Context, doc *domphoto.Document) error
}
