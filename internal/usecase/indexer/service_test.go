package indexer

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/photodex/internal/domain"
	domphoto "github.com/kailas-cloud/photodex/internal/domain/photo"
)

// --- Mocks ---

type mockRepo struct {
	docs     map[string]domphoto.Document
	putErr   error
	getErr   error
	delErr   error
	countErr error
	ensureFn func(ctx context.Context) error
}

func newMockRepo() *mockRepo {
	return &mockRepo{docs: make(map[string]domphoto.Document)}
}

func (m *mockRepo) EnsureIndex(ctx context.Context) error {
	if m.ensureFn != nil {
		return m.ensureFn(ctx)
	}
	return nil
}

func (m *mockRepo) Put(_ context.Context, doc *domphoto.Document) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.docs[doc.ObjectKey()] = *doc
	return nil
}

func (m *mockRepo) Get(_ context.Context, objectKey string) (domphoto.Document, error) {
	if m.getErr != nil {
		return domphoto.Document{}, m.getErr
	}
	doc, ok := m.docs[objectKey]
	if !ok {
		return domphoto.Document{}, domain.ErrNotFound
	}
	return doc, nil
}

func (m *mockRepo) Exists(_ context.Context, objectKey string) (bool, error) {
	if m.getErr != nil {
		return false, m.getErr
	}
	_, ok := m.docs[objectKey]
	return ok, nil
}

func (m *mockRepo) Delete(_ context.Context, objectKey string) error {
	if m.delErr != nil {
		return m.delErr
	}
	if _, ok := m.docs[objectKey]; !ok {
		return domain.ErrNotFound
	}
	delete(m.docs, objectKey)
	return nil
}

func (m *mockRepo) Count(context.Context) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return len(m.docs), nil
}

var _ Repository = (*mockRepo)(nil)

// --- Tests ---

func TestCommit_LastWriteWins(t *testing.T) {
	repo := newMockRepo()
	w := New(repo)
	ctx := context.Background()

	first := domphoto.Reconstruct("dog.jpg", "photos", "2024-01-01T00:00:00Z", "dog")
	second := domphoto.Reconstruct("dog.jpg", "photos", "2024-01-02T00:00:00Z", "dog,puppy")

	if err := w.Commit(ctx, &first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Commit(ctx, &second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := w.Get(ctx, "dog.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Labels() != "dog,puppy" {
		t.Errorf("expected second write to win, got labels %q", got.Labels())
	}
	if len(repo.docs) != 1 {
		t.Errorf("expected one document per key, got %d", len(repo.docs))
	}
}

func TestCommit_IndexKind(t *testing.T) {
	repo := newMockRepo()
	repo.putErr = errors.New("write refused")
	w := New(repo)

	doc := domphoto.Reconstruct("dog.jpg", "photos", "2024-01-01T00:00:00Z", "dog")
	err := w.Commit(context.Background(), &doc)

	kind, ok := domain.KindOf(err)
	if !ok || kind != domain.KindIndex {
		t.Fatalf("expected index kind, got %v (%v)", kind, err)
	}
	var de *domain.Error
	if !errors.As(err, &de) || de.ObjectKey != "dog.jpg" {
		t.Errorf("expected object key in error, got %v", err)
	}
}

func TestGet_NotFoundPassesThrough(t *testing.T) {
	w := New(newMockRepo())

	_, err := w.Get(context.Background(), "missing.jpg")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, ok := domain.KindOf(err); ok {
		t.Error("not found must not be classified as an index failure")
	}
}

func TestGet_StoreFailure(t *testing.T) {
	repo := newMockRepo()
	repo.getErr = errors.New("timeout")
	w := New(repo)

	_, err := w.Get(context.Background(), "dog.jpg")
	if !domain.HasKind(err, domain.KindIndex) {
		t.Errorf("expected index kind, got %v", err)
	}
}

func TestEnsureIndex_Error(t *testing.T) {
	repo := newMockRepo()
	repo.ensureFn = func(_ context.Context) error { return errors.New("conn refused") }

	err := New(repo).EnsureIndex(context.Background())
	if !domain.HasKind(err, domain.KindIndex) {
		t.Errorf("expected index kind, got %v", err)
	}
}

func TestExistsDeleteCount(t *testing.T) {
	w := New(newMockRepo())
	ctx := context.Background()
	doc := domphoto.Reconstruct("dog.jpg", "photos", "2024-03-01T17:30:00Z", "dog")
	if err := w.Commit(ctx, &doc); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if ok, err := w.Exists(ctx, "dog.jpg"); err != nil || !ok {
		t.Fatalf("expected dog.jpg to exist, got %v %v", ok, err)
	}
	if n, err := w.Count(ctx); err != nil || n != 1 {
		t.Fatalf("expected count 1, got %d %v", n, err)
	}
	if err := w.Delete(ctx, "dog.jpg"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok, _ := w.Exists(ctx, "dog.jpg"); ok {
		t.Error("expected dog.jpg to be gone")
	}
	if err := w.Delete(ctx, "dog.jpg"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDeleteAndCount_StoreFailure(t *testing.T) {
	repo := newMockRepo()
	repo.delErr = errors.New("timeout")
	repo.countErr = errors.New("timeout")
	repo.getErr = errors.New("timeout")
	w := New(repo)

	if err := w.Delete(context.Background(), "dog.jpg"); !domain.HasKind(err, domain.KindIndex) {
		t.Errorf("expected index kind on delete, got %v", err)
	}
	if _, err := w.Count(context.Background()); !domain.HasKind(err, domain.KindIndex) {
		t.Errorf("expected index kind on count, got %v", err)
	}
	if _, err := w.Exists(context.Background(), "dog.jpg"); !domain.HasKind(err, domain.KindIndex) {
		t.Errorf("expected index kind on exists, got %v", err)
	}
}
