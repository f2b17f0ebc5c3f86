package nats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/kailas-cloud/photodex/internal/domain"
	"github.com/kailas-cloud/photodex/internal/logger"
)

// Handler processes one raw upload notification.
type Handler interface {
	HandleNotification(ctx context.Context, data []byte) error
}

// Redelivery defaults applied when Config leaves them zero.
const (
	DefaultMaxDeliver    = 5
	DefaultRetryDelay    = time.Second
	DefaultMaxRetryDelay = time.Minute
)

// Config holds the JetStream consumer settings.
type Config struct {
	Stream        string
	Subject       string
	Durable       string
	MaxAckPending int
	AckWait       time.Duration
	// MaxDeliver caps deliveries of one message; the last failed attempt is terminated.
	MaxDeliver int
	// RetryDelay is the nak delay after the first failure, doubled per delivery up to MaxRetryDelay.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxDeliver <= 0 {
		c.MaxDeliver = DefaultMaxDeliver
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.MaxRetryDelay < c.RetryDelay {
		c.MaxRetryDelay = max(DefaultMaxRetryDelay, c.RetryDelay)
	}
	return c
}

// Subscriber feeds upload notifications from a JetStream durable queue to a Handler.
// Processed messages are acked and undecodable ones terminated. Failed ones are naked with
// an exponential delay until MaxDeliver is reached, then terminated.
type Subscriber struct {
	js      nats.JetStreamContext
	handler Handler
	cfg     Config
	logger  *zap.Logger
	sub     *nats.Subscription
}

// Connect dials the NATS server with reconnects enabled.
func Connect(url string, l *zap.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("photodex"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(1*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				l.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			l.Info("NATS reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	return nc, nil
}

// NewSubscriber creates a subscriber on the given connection.
func NewSubscriber(nc *nats.Conn, h Handler, cfg Config, l *zap.Logger) (*Subscriber, error) {
	if cfg.Stream == "" || cfg.Subject == "" || cfg.Durable == "" {
		return nil, errors.New("stream, subject and durable are required")
	}
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}
	return &Subscriber{js: js, handler: h, cfg: cfg.withDefaults(), logger: l}, nil
}

// EnsureStream creates the stream if it does not exist yet.
func (s *Subscriber) EnsureStream() error {
	_, err := s.js.StreamInfo(s.cfg.Stream)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("stream info %s: %w", s.cfg.Stream, err)
	}

	if _, err := s.js.AddStream(&nats.StreamConfig{
		Name:     s.cfg.Stream,
		Subjects: []string{s.cfg.Subject},
		Storage:  nats.FileStorage,
	}); err != nil {
		return fmt.Errorf("add stream %s: %w", s.cfg.Stream, err)
	}
	s.logger.Info("Created upload stream",
		zap.String("stream", s.cfg.Stream),
		zap.String("subject", s.cfg.Subject),
	)
	return nil
}

// Start subscribes to the upload subject. Messages are handled on the subscription goroutine
// with ctx as their parent context.
func (s *Subscriber) Start(ctx context.Context) error {
	opts := []nats.SubOpt{
		nats.BindStream(s.cfg.Stream),
		nats.Durable(s.cfg.Durable),
		nats.ManualAck(),
		nats.DeliverAll(),
		nats.MaxDeliver(s.cfg.MaxDeliver),
	}
	if s.cfg.MaxAckPending > 0 {
		opts = append(opts, nats.MaxAckPending(s.cfg.MaxAckPending))
	}
	if s.cfg.AckWait > 0 {
		opts = append(opts, nats.AckWait(s.cfg.AckWait))
	}

	sub, err := s.js.QueueSubscribe(s.cfg.Subject, s.cfg.Durable, func(msg *nats.Msg) {
		s.handle(ctx, msg)
	}, opts...)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", s.cfg.Subject, err)
	}
	s.sub = sub

	s.logger.Info("Listening for upload events",
		zap.String("stream", s.cfg.Stream),
		zap.String("subject", s.cfg.Subject),
		zap.String("durable", s.cfg.Durable),
	)
	return nil
}

// Stop drains the subscription so in-flight messages finish before returning.
func (s *Subscriber) Stop() error {
	if s.sub == nil {
		return nil
	}
	if err := s.sub.Drain(); err != nil {
		return fmt.Errorf("drain subscription: %w", err)
	}
	return nil
}

func (s *Subscriber) handle(ctx context.Context, msg *nats.Msg) {
	log := s.logger.With(zap.String("subject", msg.Subject))
	delivered := uint64(1)
	if meta, err := msg.Metadata(); err == nil {
		delivered = meta.NumDelivered
		log = log.With(
			zap.Uint64("stream_seq", meta.Sequence.Stream),
			zap.Uint64("deliveries", delivered),
		)
	}
	ctx = logger.ContextWithLogger(ctx, log)

	err := s.handler.HandleNotification(ctx, msg.Data)
	switch {
	case err == nil:
		if ackErr := msg.Ack(); ackErr != nil {
			log.Warn("Ack failed", zap.Error(ackErr))
		}
	case errors.Is(err, domain.ErrInvalidEvent):
		log.Warn("Terminating undecodable upload event", zap.Error(err))
		if termErr := msg.Term(); termErr != nil {
			log.Warn("Term failed", zap.Error(termErr))
		}
	case delivered >= uint64(s.cfg.MaxDeliver):
		log.Error("Dropping upload event after max deliveries",
			zap.Int("max_deliver", s.cfg.MaxDeliver), zap.Error(err))
		if termErr := msg.Term(); termErr != nil {
			log.Warn("Term failed", zap.Error(termErr))
		}
	default:
		delay := s.retryDelay(delivered)
		log.Warn("Upload event failed, scheduling redelivery", zap.Duration("delay", delay), zap.Error(err))
		if nakErr := msg.NakWithDelay(delay); nakErr != nil {
			log.Warn("Nak failed", zap.Error(nakErr))
		}
	}
}

// retryDelay doubles RetryDelay for every delivery after the first, capped at MaxRetryDelay.
func (s *Subscriber) retryDelay(delivered uint64) time.Duration {
	d := s.cfg.RetryDelay
	for i := uint64(1); i < delivered && d < s.cfg.MaxRetryDelay; i++ {
		d *= 2
	}
	return min(d, s.cfg.MaxRetryDelay)
}
