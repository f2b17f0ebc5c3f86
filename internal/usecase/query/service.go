package query

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/photodex/internal/domain"
	domquery "github.com/kailas-cloud/photodex/internal/domain/query"
	"github.com/kailas-cloud/photodex/internal/logger"
	"github.com/kailas-cloud/photodex/internal/metrics"
)

// Service coordinates a search query: interpret, extract keywords, search, build locators.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	interpreter Interpreter
	searcher    Searcher
	baseURL     string
	logger      *zap.Logger
}

// New creates a query coordinator. baseURL prefixes every object key in the result.
func New(interpreter Interpreter, searcher Searcher, baseURL string, l *zap.Logger) *Service {
	return &Service{interpreter: interpreter, searcher: searcher, baseURL: baseURL, logger: l}
}

// HandleQuery answers rawText with the photos matching every extracted keyword.
// Locators are ordered by keyword, then by hit; duplicates across keywords are kept.
func (s *Service) HandleQuery(ctx context.Context, sessionID, rawText string) (domquery.Response, error) {
	log := logger.FromContextOr(ctx, s.logger).With(zap.String("query", rawText))

	if strings.TrimSpace(rawText) == "" {
		metrics.QueryRequestsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return domquery.Response{}, domain.NewQueryError(rawText, domain.ErrEmptyQuery)
	}

	slots, err := s.interpreter.Interpret(ctx, sessionID, rawText)
	if err != nil {
		return s.fail(log, rawText, err)
	}

	keywords := slots.Keywords()
	metrics.QueryKeywords.Observe(float64(len(keywords)))

	paths := make([]string, 0)
	for _, kw := range keywords {
		hits, err := s.searcher.Search(ctx, kw)
		if err != nil {
			return s.fail(log, rawText, err)
		}
		for _, h := range hits {
			paths = append(paths, domquery.Locator(s.baseURL, h.ObjectKey))
		}
	}

	log.Debug("Query answered",
		zap.String("session_id", sessionID),
		zap.Strings("keywords", keywords),
		zap.Int("results", len(paths)),
	)
	metrics.QueryRequestsTotal.WithLabelValues(metrics.OutcomeOK).Inc()

	return domquery.Response{
		StatusCode:        http.StatusOK,
		ExtractedKeywords: keywords,
		ImagePaths:        paths,
	}, nil
}

func (s *Service) fail(log *zap.Logger, rawText string, err error) (domquery.Response, error) {
	metrics.QueryRequestsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
	log.Error("Query failed", zap.Error(err))
	return domquery.Response{}, domain.NewQueryError(rawText, err)
}
