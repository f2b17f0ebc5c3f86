package photo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/photodex/internal/db"
	"github.com/kailas-cloud/photodex/internal/domain"
	domphoto "github.com/kailas-cloud/photodex/internal/domain/photo"
	"github.com/kailas-cloud/photodex/internal/domain/query"
)

// keySpace is appended to the configured key prefix for photo documents.
const keySpace = "photo:"

// store is the consumer interface for photo documents (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchFuzzy(ctx context.Context, q *db.FuzzyQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo implements the index side of usecase/indexer and usecase/search.
type Repo struct {
	store     store
	prefix    string
	indexName string
}

// New creates a photo repository. keyPrefix namespaces every key (e.g. "photodex:").
func New(s store, keyPrefix, indexName string) *Repo {
	return &Repo{
		store:     s,
		prefix:    keyPrefix + keySpace,
		indexName: indexName,
	}
}

// IndexName returns the FT index the repository reads and writes.
func (r *Repo) IndexName() string { return r.indexName }

// EnsureIndex creates the photo index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.indexName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", r.indexName, err)
	}
	if exists {
		return nil
	}

	def, err := buildIndex(r.indexName, r.prefix)
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		// Lost a race with another replica.
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", r.indexName, err)
	}
	return nil
}

// Put stores the document under its object key, replacing any previous version.
func (r *Repo) Put(ctx context.Context, doc *domphoto.Document) error {
	key := r.key(doc.ObjectKey())
	data, err := json.Marshal(toJSONDoc(doc))
	if err != nil {
		return fmt.Errorf("marshal photo document: %w", err)
	}
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// Get returns the document stored for objectKey.
func (r *Repo) Get(ctx context.Context, objectKey string) (domphoto.Document, error) {
	key := r.key(objectKey)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domphoto.Document{}, domain.ErrNotFound
		}
		return domphoto.Document{}, fmt.Errorf("json.get %s: %w", key, err)
	}

	doc, ok, err := parseJSONGetResult(raw)
	if err != nil {
		return domphoto.Document{}, err
	}
	if !ok {
		return domphoto.Document{}, domain.ErrNotFound
	}
	return doc, nil
}

// Exists reports whether a document is stored for objectKey.
func (r *Repo) Exists(ctx context.Context, objectKey string) (bool, error) {
	key := r.key(objectKey)
	ok, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", key, err)
	}
	return ok, nil
}

// Delete removes the document for objectKey; the index drops it on its own.
func (r *Repo) Delete(ctx context.Context, objectKey string) error {
	key := r.key(objectKey)
	deleted, err := r.store.Del(ctx, key)
	if err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

// Search runs one fuzzy match of keyword against the labels field.
// Hits come back in engine order.
func (r *Repo) Search(ctx context.Context, keyword string, limit, fuzziness int) ([]query.Hit, error) {
	res, err := r.store.SearchFuzzy(ctx, &db.FuzzyQuery{
		IndexName:    r.indexName,
		Text:         keyword,
		Fields:       []string{FieldLabels},
		Fuzziness:    fuzziness,
		Limit:        limit,
		ReturnFields: []string{FieldObjectKey},
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", r.indexName, err)
	}
	if res == nil || len(res.Entries) == 0 {
		return nil, nil
	}

	hits := make([]query.Hit, 0, len(res.Entries))
	for _, e := range res.Entries {
		objectKey := e.Fields[FieldObjectKey]
		if objectKey == "" {
			objectKey = strings.TrimPrefix(e.Key, r.prefix)
		}
		hits = append(hits, query.Hit{ObjectKey: objectKey, Score: e.Score})
	}
	return hits, nil
}

// Count returns the number of indexed photos.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.indexName, "*")
	if err != nil {
		return 0, fmt.Errorf("search count %s: %w", r.indexName, err)
	}
	return n, nil
}

func (r *Repo) key(objectKey string) string {
	return r.prefix + objectKey
}
