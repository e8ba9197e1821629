package evm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/evmlabs/annotary/service/metrics"
)

// RPCClient is an interface for the JSON-RPC operations we need.
// go-ethereum's *rpc.Client satisfies it; tests provide mocks so no real
// node is required.
type RPCClient interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// Client provides read-only chain lookups for one network.
// It wraps the RPC client with domain-specific operations.
type Client struct {
	rpc     RPCClient
	network string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewClient creates a new chain client for the given network.
// If m is nil, no metrics will be recorded.
func NewClient(rpcClient RPCClient, network string, m *metrics.Metrics, logger *slog.Logger) *Client {
	return &Client{
		rpc:     rpcClient,
		network: network,
		logger:  logger,
		metrics: m,
	}
}

// rpcBlock is the subset of the eth_getBlockByHash response we decode.
type rpcBlock struct {
	Hash      common.Hash    `json:"hash"`
	Number    hexutil.Uint64 `json:"number"`
	Timestamp hexutil.Uint64 `json:"timestamp"`
}

// BlockByHash fetches block data by hash. A nil result with a nil error
// means the node does not know the block yet (pending transaction); that is
// a normal outcome, not an error.
func (c *Client) BlockByHash(ctx context.Context, hash common.Hash) (*Block, error) {
	var blk *rpcBlock

	start := time.Now()
	err := c.rpc.CallContext(ctx, &blk, "eth_getBlockByHash", hash, false)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	if c.metrics != nil {
		c.metrics.RecordRPCCall("eth_getBlockByHash", status, c.network, duration)
	}

	if err != nil {
		c.logger.ErrorContext(ctx, "failed to get block by hash",
			"network", c.network,
			"hash", hash.Hex(),
			"error", err,
		)
		return nil, fmt.Errorf("failed to get block %s: %w", hash.Hex(), err)
	}

	if blk == nil {
		c.logger.DebugContext(ctx, "block not known yet",
			"network", c.network,
			"hash", hash.Hex(),
		)
		return nil, nil
	}

	return &Block{
		Hash:      blk.Hash,
		Number:    uint64(blk.Number),
		Timestamp: uint64(blk.Timestamp),
	}, nil
}

// Mux routes block lookups to the client registered for each network.
type Mux struct {
	clients map[string]*Client
}

// NewMux builds a Mux over per-network clients keyed by network name.
func NewMux(clients map[string]*Client) *Mux {
	return &Mux{clients: clients}
}

// BlockByHash dispatches to the network's client. Unknown networks are an
// error: they indicate a wiring problem, not a pending block.
func (m *Mux) BlockByHash(ctx context.Context, network string, hash common.Hash) (*Block, error) {
	client, ok := m.clients[network]
	if !ok {
		return nil, fmt.Errorf("no chain client registered for network %q", network)
	}
	return client.BlockByHash(ctx, hash)
}
