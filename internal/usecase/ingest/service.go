package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/photodex/internal/domain"
	domphoto "github.com/kailas-cloud/photodex/internal/domain/photo"
	"github.com/kailas-cloud/photodex/internal/logger"
	"github.com/kailas-cloud/photodex/internal/metrics"
)

// Service coordinates ingestion of uploaded photos: extract labels, merge custom tags, index.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	recognizer Recognizer
	metadata   MetadataReader
	index      IndexWriter
	now        func() time.Time
	logger     *zap.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithClock overrides the time source used for createdTimestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates an ingestion coordinator.
func New(r Recognizer, m MetadataReader, w IndexWriter, l *zap.Logger, opts ...Option) *Service {
	s := &Service{recognizer: r, metadata: m, index: w, now: time.Now, logger: l}
	for _, o := range opts {
		o(s)
	}
	return s
}

// HandleNotification processes every record of a raw storage notification in order.
// It stops at the first failure; records before it stay indexed.
func (s *Service) HandleNotification(ctx context.Context, data []byte) error {
	events, err := domphoto.ParseNotification(data)
	if err != nil {
		metrics.IngestEventsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		logger.FromContextOr(ctx, s.logger).Warn("Rejected upload notification", zap.Error(err))
		return domain.NewProcessingError("", "", err)
	}

	for i := range events {
		if err := s.HandleUpload(ctx, events[i]); err != nil {
			return err
		}
	}
	return nil
}

// HandleUpload indexes one upload event. The object key must already be decoded.
// Non-photo keys are skipped with a nil error. Any failure is logged and returned as a
// processing error carrying bucket and key, so the dispatcher can retry or dead-letter.
func (s *Service) HandleUpload(ctx context.Context, ev domphoto.UploadEvent) error {
	log := logger.FromContextOr(ctx, s.logger).With(
		zap.String("bucket", ev.Bucket),
		zap.String("object_key", ev.ObjectKey),
	)

	if !domphoto.IsPhoto(ev.ObjectKey) {
		metrics.IngestEventsTotal.WithLabelValues(metrics.OutcomeSkipped).Inc()
		log.Info("Skipping non-photo upload")
		return nil
	}

	doc, err := s.buildDocument(ctx, ev)
	if err == nil {
		err = s.index.Commit(ctx, &doc)
	}
	if err != nil {
		metrics.IngestEventsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		log.Error("Photo ingestion failed", zap.Error(err))
		return domain.NewProcessingError(ev.Bucket, ev.ObjectKey, err)
	}

	metrics.IngestEventsTotal.WithLabelValues(metrics.OutcomeIndexed).Inc()
	log.Info("Photo indexed", zap.String("labels", doc.Labels()))
	return nil
}

func (s *Service) buildDocument(ctx context.Context, ev domphoto.UploadEvent) (domphoto.Document, error) {
	detected, err := s.recognizer.DetectLabels(ctx, ev.Bucket, ev.ObjectKey)
	if err != nil {
		return domphoto.Document{}, fmt.Errorf("detect labels: %w", err)
	}

	meta, err := s.metadata.HeadObject(ctx, ev.Bucket, ev.ObjectKey)
	if err != nil {
		return domphoto.Document{}, fmt.Errorf("head object: %w", err)
	}

	labels := domphoto.MergeLabels(detected, meta)
	doc, err := domphoto.NewDocument(ev, labels, s.now())
	if err != nil {
		return domphoto.Document{}, fmt.Errorf("build document: %w", err)
	}
	return doc, nil
}
