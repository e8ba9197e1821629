package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	natspkg "github.com/evmlabs/annotary/service/nats"
)

// Client consumes enriched events from the annotation service's JetStream
// stream. Consumers are ephemeral unless a durable name is given.
type Client struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *slog.Logger
}

// NewClient connects to NATS. A nil logger discards all log output.
func NewClient(natsURL string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	nc, err := nats.Connect(natsURL,
		nats.Name("annotary-client"),
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

	return &Client{nc: nc, js: js, logger: logger}, nil
}

// Close closes the connection to NATS.
func (c *Client) Close() {
	if c.nc != nil {
		c.nc.Close()
	}
}

// TransactionHandler processes one enriched transaction event.
type TransactionHandler func(event *natspkg.EnrichedTransactionEvent)

// SubscribeTransactions streams enriched transaction events for a network.
// An empty network streams all networks. Events that fail to decode are
// logged and acknowledged so they are not redelivered. The returned function
// stops the consumer.
func (c *Client) SubscribeTransactions(ctx context.Context, network string, handler TransactionHandler) (func(), error) {
	subject := natspkg.TransactionSubject(network)
	if network == "" {
		subject = "enriched.txns.>"
	}

	cons, err := c.js.CreateOrUpdateConsumer(ctx, natspkg.StreamName, jetstream.ConsumerConfig{
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	consumeCtx, err := cons.Consume(func(msg jetstream.Msg) {
		var event natspkg.EnrichedTransactionEvent
		if err := json.Unmarshal(msg.Data(), &event); err != nil {
			c.logger.Error("failed to decode enriched transaction event",
				"subject", msg.Subject(),
				"error", err,
			)
			msg.Ack()
			return
		}
		handler(&event)
		msg.Ack()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to consume from %s: %w", subject, err)
	}

	return consumeCtx.Stop, nil
}

// Await blocks until an enriched transaction event matching the predicate
// arrives, or the context expires.
func (c *Client) Await(ctx context.Context, network string, matcher func(*natspkg.EnrichedTransactionEvent) bool) (*natspkg.EnrichedTransactionEvent, error) {
	matched := make(chan *natspkg.EnrichedTransactionEvent, 1)

	stop, err := c.SubscribeTransactions(ctx, network, func(event *natspkg.EnrichedTransactionEvent) {
		if matcher(event) {
			select {
			case matched <- event:
			default:
			}
		}
	})
	if err != nil {
		return nil, err
	}
	defer stop()

	select {
	case event := <-matched:
		return event, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("no matching transaction arrived: %w", ctx.Err())
	}
}
