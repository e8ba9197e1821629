package names

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/evmlabs/annotary/service/metrics"
)

// Resolver is the name-resolution collaborator: it maps one address to a
// display name. An empty name with a nil error means the address has no
// known name; a non-nil error means the lookup itself failed.
type Resolver interface {
	LookUpName(ctx context.Context, address common.Address, network string) (string, error)
}

// Result is the outcome of one lookup within a batch. Either Name is set,
// or Err is set, or both are zero (address has no known name).
type Result struct {
	Address common.Address
	Name    string
	Err     error
}

// Batcher fans address lookups out concurrently and collects per-item
// results. It is the single concurrency primitive of the engine: both the
// single-address fallback lookup and the many-address subannotation lookup
// route through it with identical semantics.
type Batcher struct {
	resolver Resolver
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewBatcher creates a Batcher over the given resolver.
// If m is nil, no metrics will be recorded.
func NewBatcher(resolver Resolver, m *metrics.Metrics, logger *slog.Logger) *Batcher {
	return &Batcher{
		resolver: resolver,
		logger:   logger,
		metrics:  m,
	}
}

// ResolveMany starts every lookup concurrently and waits for all of them.
// The returned slice is ordered like the input and always has the same
// length: a failing lookup yields a Result carrying its error for that
// address only and never cancels or delays the others. The call itself
// never fails.
func (b *Batcher) ResolveMany(ctx context.Context, addresses []common.Address, network string) []Result {
	results := make([]Result, len(addresses))
	if len(addresses) == 0 {
		return results
	}

	start := time.Now()

	var wg sync.WaitGroup
	for i, addr := range addresses {
		wg.Add(1)
		go func(i int, addr common.Address) {
			defer wg.Done()
			name, err := b.resolver.LookUpName(ctx, addr, network)
			results[i] = Result{Address: addr, Name: name, Err: err}
		}(i, addr)
	}
	wg.Wait()

	if b.metrics != nil {
		b.metrics.RecordNameBatchDuration(network, time.Since(start).Seconds())
	}

	for _, r := range results {
		status := "hit"
		switch {
		case r.Err != nil:
			status = "error"
			b.logger.DebugContext(ctx, "name lookup failed",
				"network", network,
				"address", r.Address.Hex(),
				"error", r.Err,
			)
		case r.Name == "":
			status = "miss"
		}
		if b.metrics != nil {
			b.metrics.RecordNameLookup(network, status)
		}
	}

	return results
}

// ResolveOne resolves a single address through the same batch path.
// Failures and unknown addresses both yield an empty name.
func (b *Batcher) ResolveOne(ctx context.Context, address common.Address, network string) string {
	results := b.ResolveMany(ctx, []common.Address{address}, network)
	if results[0].Err != nil {
		return ""
	}
	return results[0].Name
}
