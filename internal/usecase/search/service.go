package search

import (
	"context"

	"github.com/kailas-cloud/photodex/internal/domain"
	"github.com/kailas-cloud/photodex/internal/domain/query"
)

// Defaults for the photo label search.
const (
	DefaultLimit       = 50
	DefaultLookupLimit = 5
	DefaultFuzziness   = 3
)

// Options tunes hit caps and edit distance.
type Options struct {
	Limit       int
	LookupLimit int
	Fuzziness   int
}

func (o Options) withDefaults() Options {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.LookupLimit <= 0 {
		o.LookupLimit = DefaultLookupLimit
	}
	if o.Fuzziness <= 0 {
		o.Fuzziness = DefaultFuzziness
	}
	return o
}

// Executor runs one fuzzy search per keyword over the labels field.
type Executor struct {
	repo Repository
	opts Options
}

// New creates a search executor. Zero options fall back to the defaults.
func New(repo Repository, opts Options) *Executor {
	return &Executor{repo: repo, opts: opts.withDefaults()}
}

// Search returns up to Limit hits for keyword, ranked by the engine.
// The keyword is passed through as-is; an empty result is not an error.
func (e *Executor) Search(ctx context.Context, keyword string) ([]query.Hit, error) {
	return e.run(ctx, keyword, e.opts.Limit)
}

// Lookup is Search with the smaller administrative cap.
func (e *Executor) Lookup(ctx context.Context, keyword string) ([]query.Hit, error) {
	return e.run(ctx, keyword, e.opts.LookupLimit)
}

func (e *Executor) run(ctx context.Context, keyword string, limit int) ([]query.Hit, error) {
	hits, err := e.repo.Search(ctx, keyword, limit, e.opts.Fuzziness)
	if err != nil {
		return nil, domain.NewSearchError(keyword, err)
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}
