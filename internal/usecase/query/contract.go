package query

import (
	"context"

	domquery "github.com/kailas-cloud/photodex/internal/domain/query"
)

// Interpreter extracts ordered slots from raw text.
type Interpreter interface {
	Interpret(ctx context.Context, sessionID, text string) (domquery.SlotMap, error)
}

// Searcher runs one fuzzy search per keyword.
type Searcher interface {
	Search(ctx context.Context, keyword string) ([]domquery.Hit, error)
}
