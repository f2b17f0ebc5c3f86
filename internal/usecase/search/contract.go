package search

import (
	"context"

	"github.com/kailas-cloud/photodex/internal/domain/query"
)

// Repository runs fuzzy label matches against the photo index.
type Repository interface {
	Search(ctx context.Context, keyword string, limit, fuzziness int) ([]query.Hit, error)
}
