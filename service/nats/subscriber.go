package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// TransactionHandler processes one inbound chain transaction event.
type TransactionHandler func(ctx context.Context, event *ChainTransactionEvent)

// TransactionSubscriber receives chain transaction events over core NATS.
// The chain collaborator owns the publishing side; this engine only
// subscribes.
type TransactionSubscriber struct {
	nc     *nats.Conn
	logger *slog.Logger
}

// NewTransactionSubscriber connects to NATS for consuming chain events.
func NewTransactionSubscriber(natsURL string, logger *slog.Logger) (*TransactionSubscriber, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("annotary-subscriber"),
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(1*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &TransactionSubscriber{nc: nc, logger: logger}, nil
}

// SubscribeTransactions subscribes once to the chain transaction subjects
// and invokes the handler for every decodable event. Malformed payloads are
// logged and dropped; they never terminate the subscription. The returned
// function unsubscribes.
func (s *TransactionSubscriber) SubscribeTransactions(ctx context.Context, handler TransactionHandler) (func(), error) {
	sub, err := s.nc.Subscribe(ChainTransactionSubjects, func(msg *nats.Msg) {
		var event ChainTransactionEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			s.logger.ErrorContext(ctx, "failed to decode chain transaction event",
				"subject", msg.Subject,
				"error", err,
			)
			return
		}
		if event.Transaction == nil {
			s.logger.WarnContext(ctx, "chain transaction event without transaction",
				"subject", msg.Subject,
			)
			return
		}
		handler(ctx, &event)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", ChainTransactionSubjects, err)
	}

	s.logger.Info("subscribed to chain transaction events", "subjects", ChainTransactionSubjects)

	return func() {
		if err := sub.Unsubscribe(); err != nil {
			s.logger.Warn("failed to unsubscribe from chain transaction events", "error", err)
		}
	}, nil
}

// Close closes the connection to NATS.
func (s *TransactionSubscriber) Close() error {
	if s.nc != nil {
		s.nc.Close()
		s.logger.Info("NATS subscriber closed")
	}
	return nil
}
