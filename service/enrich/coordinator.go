package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/evmlabs/annotary/service/annotate"
	"github.com/evmlabs/annotary/service/evm"
	"github.com/evmlabs/annotary/service/metrics"
	natspkg "github.com/evmlabs/annotary/service/nats"
)

// State is the coordinator lifecycle state.
type State int32

const (
	StateUninitialized State = iota
	StateStarting
	StateRunning
	StateStopped
)

// TransactionSource delivers inbound chain transaction events.
// nats.TransactionSubscriber satisfies it.
type TransactionSource interface {
	SubscribeTransactions(ctx context.Context, handler natspkg.TransactionHandler) (func(), error)
}

// Coordinator subscribes once to the chain transaction event stream,
// resolves an annotation for every inbound transaction, and republishes
// enriched events. Signature and typed-data requests are request/response:
// callers invoke the Enrich methods directly, no subscription involved.
//
// Each transaction resolves in its own goroutine with no upper bound on
// concurrency, matching the observed behavior of the system this engine
// models; a failing or panicking resolution is isolated and logged without
// touching the subscription or other in-flight resolutions.
type Coordinator struct {
	source    TransactionSource
	publisher natspkg.Publisher
	resolver  *annotate.Resolver
	typedData *annotate.TypedDataAnnotator
	networks  map[string]evm.Network
	precision uint8
	logger    *slog.Logger
	metrics   *metrics.Metrics

	state       atomic.Int32
	unsubscribe func()
	inflight    sync.WaitGroup
}

// NewCoordinator creates a Coordinator. networks maps network names to their
// definitions; events for unknown networks are dropped with a warning.
// If m is nil, no metrics will be recorded.
func NewCoordinator(
	source TransactionSource,
	publisher natspkg.Publisher,
	resolver *annotate.Resolver,
	typedData *annotate.TypedDataAnnotator,
	networks map[string]evm.Network,
	precision uint8,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		source:    source,
		publisher: publisher,
		resolver:  resolver,
		typedData: typedData,
		networks:  networks,
		precision: precision,
		logger:    logger,
		metrics:   m,
	}
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Start subscribes to the chain transaction event stream. It may be called
// once; further calls fail.
func (c *Coordinator) Start(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(StateUninitialized), int32(StateStarting)) {
		return fmt.Errorf("coordinator already started (state %d)", c.State())
	}

	unsubscribe, err := c.source.SubscribeTransactions(ctx, c.handleTransactionEvent)
	if err != nil {
		c.state.Store(int32(StateUninitialized))
		return fmt.Errorf("failed to subscribe to transaction events: %w", err)
	}

	c.unsubscribe = unsubscribe
	c.state.Store(int32(StateRunning))
	c.logger.Info("enrichment coordinator running")
	return nil
}

// Stop unsubscribes and waits for in-flight resolutions to finish.
func (c *Coordinator) Stop() {
	if !c.state.CompareAndSwap(int32(StateRunning), int32(StateStopped)) {
		return
	}
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.inflight.Wait()
	c.logger.Info("enrichment coordinator stopped")
}

// handleTransactionEvent launches an independent resolution task per event.
func (c *Coordinator) handleTransactionEvent(ctx context.Context, event *natspkg.ChainTransactionEvent) {
	if c.metrics != nil {
		c.metrics.RecordChainEventReceived(event.Network)
	}

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				c.logger.ErrorContext(ctx, "panic during transaction resolution",
					"network", event.Network,
					"hash", event.Transaction.Hash.Hex(),
					"panic", r,
				)
				if c.metrics != nil {
					c.metrics.RecordResolutionFailure(event.Network)
				}
			}
		}()
		c.enrichTransaction(ctx, event)
	}()
}

func (c *Coordinator) enrichTransaction(ctx context.Context, event *natspkg.ChainTransactionEvent) {
	network, ok := c.networks[event.Network]
	if !ok {
		c.logger.WarnContext(ctx, "dropping transaction event for unknown network",
			"network", event.Network,
			"hash", event.Transaction.Hash.Hex(),
		)
		return
	}

	annotation, err := c.resolver.Resolve(ctx, event.Transaction, network, c.precision)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to resolve transaction annotation",
			"network", event.Network,
			"hash", event.Transaction.Hash.Hex(),
			"error", err,
		)
		if c.metrics != nil {
			c.metrics.RecordResolutionFailure(event.Network)
		}
		return
	}

	enriched := &natspkg.EnrichedTransactionEvent{
		Transaction: event.Transaction,
		ForAccounts: event.ForAccounts,
		Annotation:  annotation,
		Network:     event.Network,
		PublishedAt: time.Now().UTC(),
	}
	if err := c.publisher.PublishEnrichedTransaction(ctx, enriched); err != nil {
		c.logger.ErrorContext(ctx, "failed to publish enriched transaction",
			"network", event.Network,
			"hash", event.Transaction.Hash.Hex(),
			"error", err,
		)
	}
}

// EnrichSignatureRequest annotates a pending signature request, publishes
// the enriched event, and returns it to the caller.
func (c *Coordinator) EnrichSignatureRequest(ctx context.Context, req *evm.SignatureRequest) (*natspkg.EnrichedSignatureRequestEvent, error) {
	network, ok := c.networks[req.Network]
	if !ok {
		return nil, fmt.Errorf("unknown network %q", req.Network)
	}

	annotation, err := c.resolver.ResolveSignatureRequest(ctx, req, network, c.precision)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordResolutionFailure(req.Network)
		}
		return nil, fmt.Errorf("failed to resolve signature request: %w", err)
	}

	enriched := &natspkg.EnrichedSignatureRequestEvent{
		Request:     req,
		Annotation:  annotation,
		Network:     req.Network,
		PublishedAt: time.Now().UTC(),
	}
	if err := c.publisher.PublishEnrichedSignatureRequest(ctx, enriched); err != nil {
		c.logger.ErrorContext(ctx, "failed to publish enriched signature request",
			"network", req.Network,
			"error", err,
		)
	}
	return enriched, nil
}

// EnrichTypedDataRequest annotates an EIP-712 signing request, publishes
// the enriched event, and returns it to the caller. Typed-data annotation
// itself never fails; only publishing can.
func (c *Coordinator) EnrichTypedDataRequest(ctx context.Context, req *evm.TypedDataRequest) (*natspkg.EnrichedTypedDataEvent, error) {
	annotation := c.typedData.Annotate(ctx, req)

	enriched := &natspkg.EnrichedTypedDataEvent{
		Request:     req,
		Annotation:  annotation,
		Network:     req.Network,
		PublishedAt: time.Now().UTC(),
	}
	if err := c.publisher.PublishEnrichedTypedData(ctx, enriched); err != nil {
		c.logger.ErrorContext(ctx, "failed to publish enriched typed data request",
			"network", req.Network,
			"error", err,
		)
	}
	return enriched, nil
}
