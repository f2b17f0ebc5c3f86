package indexer

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/photodex/internal/domain"
	domphoto "github.com/kailas-cloud/photodex/internal/domain/photo"
)

// Writer commits photo documents to the index, one document per call.
type Writer struct {
	repo Repository
}

// New creates an index writer.
func New(repo Repository) *Writer {
	return &Writer{repo: repo}
}

// EnsureIndex prepares the index for writes and fuzzy reads.
func (w *Writer) EnsureIndex(ctx context.Context) error {
	if err := w.repo.EnsureIndex(ctx); err != nil {
		return domain.NewIndexError("", fmt.Errorf("ensure index: %w", err))
	}
	return nil
}

// Commit stores doc under its object key. A later commit for the same key overwrites it.
// The document is durable once Commit returns nil.
func (w *Writer) Commit(ctx context.Context, doc *domphoto.Document) error {
	if err := w.repo.Put(ctx, doc); err != nil {
		return domain.NewIndexError(doc.ObjectKey(), err)
	}
	return nil
}

// Get reads back the document stored for objectKey.
func (w *Writer) Get(ctx context.Context, objectKey string) (domphoto.Document, error) {
	doc, err := w.repo.Get(ctx, objectKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domphoto.Document{}, err
		}
		return domphoto.Document{}, domain.NewIndexError(objectKey, err)
	}
	return doc, nil
}

// Exists reports whether objectKey is indexed.
func (w *Writer) Exists(ctx context.Context, objectKey string) (bool, error) {
	ok, err := w.repo.Exists(ctx, objectKey)
	if err != nil {
		return false, domain.NewIndexError(objectKey, err)
	}
	return ok, nil
}

// Delete removes objectKey from the index. A missing key yields domain.ErrNotFound.
func (w *Writer) Delete(ctx context.Context, objectKey string) error {
	if err := w.repo.Delete(ctx, objectKey); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return domain.NewIndexError(objectKey, err)
	}
	return nil
}

// Count returns the number of indexed photos.
func (w *Writer) Count(ctx context.Context) (int, error) {
	n, err := w.repo.Count(ctx)
	if err != nil {
		return 0, domain.NewIndexError("", fmt.Errorf("count: %w", err))
	}
	return n, nil
}
