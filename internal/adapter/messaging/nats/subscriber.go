package nats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mapmarket/reaction-service/internal/platform/logger"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("reaction-service/nats-subscriber")

// HandlerFunc processes one raw event payload. A nil return acknowledges the
// message; an error negatively acknowledges it so JetStream redelivers.
type HandlerFunc func(ctx context.Context, data []byte) error

// Subscriber consumes document-change events from JetStream. Every
// subscription is a durable queue consumer, so horizontally scaled replicas
// split the stream and delivery is at-least-once: a message stays pending
// until the handler acks it, and a handler error naks it for redelivery.
// Messages are dispatched on their own goroutines; there is no ordering
// guarantee across documents, and none is promised.
type Subscriber struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	logger *logger.Logger
	subs   []*nats.Subscription
}

func NewSubscriber(url string, log *logger.Logger, appName string) (*Subscriber, error) {
	log.Info("NATS Subscriber: connecting...", zap.String("url", url))

	opts := []nats.Option{
		nats.Name(fmt.Sprintf("%s NATS Subscriber", appName)),
		nats.Timeout(10 * time.Second),
		nats.MaxReconnects(-1),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			if sub != nil {
				log.Error("NATS error", zap.String("subject", sub.Subject), zap.Error(err))
			} else {
				log.Error("NATS error", zap.Error(err))
			}
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		log.Error("NATS Subscriber: failed to connect", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}
	log.Info("NATS Subscriber: successfully connected", zap.String("url", conn.ConnectedUrl()))

	return &Subscriber{
		conn:   conn,
		js:     js,
		logger: log.Named("NATSSubscriber"),
	}, nil
}

// Subscribe binds a handler to a subject as a durable queue consumer. The
// stream covering the subject is provisioned by the publishing side; the
// durable name is derived from the queue group and subject, so a restarted
// replica resumes where the consumer left off.
func (s *Subscriber) Subscribe(subject, queue string, handle HandlerFunc) error {
	sub, err := s.js.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		go s.dispatch(subject, msg, handle)
	},
		nats.Durable(durableName(queue, subject)),
		nats.ManualAck(),
		nats.AckWait(30*time.Second),
	)
	if err != nil {
		s.logger.Error("Failed to subscribe", zap.String("subject", subject), zap.Error(err))
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	s.subs = append(s.subs, sub)
	s.logger.Info("Subscribed", zap.String("subject", subject), zap.String("queue", queue))
	return nil
}

func (s *Subscriber) dispatch(subject string, msg *nats.Msg, handle HandlerFunc) {
	ctx := context.Background()
	if msg.Header != nil {
		ctx = otel.GetTextMapPropagator().Extract(ctx, NATSHeaderCarrier(msg.Header))
	}
	ctx, span := tracer.Start(ctx, fmt.Sprintf("NATS.Consume.%s", subject))
	defer span.End()

	if err := handle(ctx, msg.Data); err != nil {
		span.RecordError(err)
		s.logger.Error("Event handler failed, message will be redelivered",
			zap.String("subject", subject), zap.Error(err))
		if nakErr := msg.Nak(); nakErr != nil {
			s.logger.Error("Failed to nak message", zap.String("subject", subject), zap.Error(nakErr))
		}
		return
	}
	if ackErr := msg.Ack(); ackErr != nil {
		s.logger.Error("Failed to ack message", zap.String("subject", subject), zap.Error(ackErr))
	}
}

// durableName flattens a queue/subject pair into a JetStream-legal consumer
// name (no dots allowed).
func durableName(queue, subject string) string {
	return strings.ReplaceAll(queue+"-"+subject, ".", "-")
}

// NATSHeaderCarrier adapts nats.Header to OTel's TextMapCarrier so trace
// context published by upstream services survives the hop.
type NATSHeaderCarrier nats.Header

func (c NATSHeaderCarrier) Get(key string) string {
	return nats.Header(c).Get(key)
}

func (c NATSHeaderCarrier) Set(key string, value string) {
	nats.Header(c).Set(key, value)
}

func (c NATSHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

// Close drains the subscriptions and closes the connection.
func (s *Subscriber) Close() {
	s.logger.Info("NATS Subscriber: closing connection...")
	if s.conn != nil && !s.conn.IsClosed() {
		if err := s.conn.Drain(); err != nil {
			s.logger.Error("NATS Subscriber: failed to drain connection", zap.Error(err))
		}
		s.conn.Close()
		s.logger.Info("NATS Subscriber: connection closed.")
	}
}
