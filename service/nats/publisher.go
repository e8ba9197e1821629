package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/evmlabs/annotary/service/metrics"
)

// Publisher defines the interface for publishing enriched events. Each
// event kind has its own typed payload and subject; nothing shares an
// untyped channel.
type Publisher interface {
	// PublishEnrichedTransaction publishes to "enriched.txns.{network}".
	PublishEnrichedTransaction(ctx context.Context, event *EnrichedTransactionEvent) error

	// PublishEnrichedSignatureRequest publishes to "enriched.sigreqs.{network}".
	PublishEnrichedSignatureRequest(ctx context.Context, event *EnrichedSignatureRequestEvent) error

	// PublishEnrichedTypedData publishes to "enriched.typeddata.{network}".
	PublishEnrichedTypedData(ctx context.Context, event *EnrichedTypedDataEvent) error

	// Close closes the connection to NATS.
	Close() error
}

const (
	// StreamName is the name of the JetStream stream for enriched events.
	StreamName = "ENRICHED"

	// StreamSubjects is the subject pattern for the stream.
	StreamSubjects = "enriched.>"

	// StreamRetention is how long messages are retained.
	StreamRetention = 7 * 24 * time.Hour

	// ChainTransactionSubjects is the inbound subject pattern the chain
	// collaborator publishes transaction events on.
	ChainTransactionSubjects = "chain.txns.>"
)

// TransactionSubject returns the enriched-transaction subject for a network.
func TransactionSubject(network string) string {
	return fmt.Sprintf("enriched.txns.%s", network)
}

// SignatureRequestSubject returns the enriched-signature-request subject for a network.
func SignatureRequestSubject(network string) string {
	return fmt.Sprintf("enriched.sigreqs.%s", network)
}

// TypedDataSubject returns the enriched-typed-data subject for a network.
func TypedDataSubject(network string) string {
	return fmt.Sprintf("enriched.typeddata.%s", network)
}

// JetStreamPublisher publishes enriched events to NATS JetStream.
type JetStreamPublisher struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewPublisher creates a new JetStream publisher.
// It connects to NATS and ensures the stream exists.
func NewPublisher(natsURL string, m *metrics.Metrics, logger *slog.Logger) (*JetStreamPublisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("annotary-publisher"),
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(1*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	publisher := &JetStreamPublisher{
		nc:      nc,
		js:      js,
		logger:  logger,
		metrics: m,
	}

	if err := publisher.ensureStream(); err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to ensure stream exists: %w", err)
	}

	logger.Info("NATS publisher initialized",
		"url", natsURL,
		"stream", StreamName,
	)

	return publisher, nil
}

// ensureStream creates the JetStream stream if it doesn't exist.
func (p *JetStreamPublisher) ensureStream() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stream, err := p.js.Stream(ctx, StreamName)
	if err == nil {
		info, err := stream.Info(ctx)
		if err == nil {
			p.logger.Debug("JetStream stream already exists",
				"stream", StreamName,
				"messages", info.State.Msgs,
			)
		}
		return nil
	}

	p.logger.Info("creating JetStream stream", "stream", StreamName)

	streamConfig := jetstream.StreamConfig{
		Name:        StreamName,
		Description: "Enriched transaction, signature-request and typed-data events",
		Subjects:    []string{StreamSubjects},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      StreamRetention,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
	}

	_, err = p.js.CreateStream(ctx, streamConfig)
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	p.logger.Info("JetStream stream created successfully", "stream", StreamName)
	return nil
}

// publish marshals the payload and publishes it, recording metrics.
func (p *JetStreamPublisher) publish(ctx context.Context, subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event for %s: %w", subject, err)
	}

	start := time.Now()
	_, err = p.js.Publish(ctx, subject, data)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	if p.metrics != nil {
		p.metrics.RecordNATSPublish(subject, status, duration)
	}

	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// PublishEnrichedTransaction publishes an enriched transaction event.
func (p *JetStreamPublisher) PublishEnrichedTransaction(ctx context.Context, event *EnrichedTransactionEvent) error {
	subject := TransactionSubject(event.Network)
	if err := p.publish(ctx, subject, event); err != nil {
		return err
	}

	p.logger.Debug("published enriched transaction event",
		"subject", subject,
		"hash", event.Transaction.Hash.Hex(),
		"kind", event.Annotation.Kind,
	)
	return nil
}

// PublishEnrichedSignatureRequest publishes an enriched signature-request event.
func (p *JetStreamPublisher) PublishEnrichedSignatureRequest(ctx context.Context, event *EnrichedSignatureRequestEvent) error {
	subject := SignatureRequestSubject(event.Network)
	if err := p.publish(ctx, subject, event); err != nil {
		return err
	}

	p.logger.Debug("published enriched signature request event",
		"subject", subject,
		"kind", event.Annotation.Kind,
	)
	return nil
}

// PublishEnrichedTypedData publishes an enriched typed-data event.
func (p *JetStreamPublisher) PublishEnrichedTypedData(ctx context.Context, event *EnrichedTypedDataEvent) error {
	subject := TypedDataSubject(event.Network)
	if err := p.publish(ctx, subject, event); err != nil {
		return err
	}

	p.logger.Debug("published enriched typed data event",
		"subject", subject,
		"kind", event.Annotation.Kind,
	)
	return nil
}

// Close closes the connection to NATS.
func (p *JetStreamPublisher) Close() error {
	if p.nc != nil {
		p.nc.Close()
		p.logger.Info("NATS publisher closed")
	}
	return nil
}
