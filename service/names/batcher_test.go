package names

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapResolver resolves from a fixed map and fails for configured addresses.
type mapResolver struct {
	mu      sync.Mutex
	names   map[common.Address]string
	failing map[common.Address]error
	calls   int
}

func (r *mapResolver) LookUpName(ctx context.Context, address common.Address, network string) (string, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if err, ok := r.failing[address]; ok {
		return "", err
	}
	return r.names[address], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	addr1 = common.HexToAddress("0x1111111111111111111111111111111111111111")
	addr2 = common.HexToAddress("0x2222222222222222222222222222222222222222")
	addr3 = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

func TestResolveManyOrderAndLength(t *testing.T) {
	resolver := &mapResolver{names: map[common.Address]string{
		addr1: "alice.eth",
		addr3: "carol.eth",
	}}
	batcher := NewBatcher(resolver, nil, testLogger())

	results := batcher.ResolveMany(context.Background(), []common.Address{addr1, addr2, addr3}, "mainnet")
	require.Len(t, results, 3)

	assert.Equal(t, addr1, results[0].Address)
	assert.Equal(t, "alice.eth", results[0].Name)
	assert.NoError(t, results[0].Err)

	assert.Equal(t, addr2, results[1].Address)
	assert.Empty(t, results[1].Name)
	assert.NoError(t, results[1].Err)

	assert.Equal(t, addr3, results[2].Address)
	assert.Equal(t, "carol.eth", results[2].Name)
}

func TestResolveManyIsolatesFailures(t *testing.T) {
	resolver := &mapResolver{
		names:   map[common.Address]string{addr1: "alice.eth", addr3: "carol.eth"},
		failing: map[common.Address]error{addr2: fmt.Errorf("resolver unavailable")},
	}
	batcher := NewBatcher(resolver, nil, testLogger())

	results := batcher.ResolveMany(context.Background(), []common.Address{addr1, addr2, addr3}, "mainnet")
	require.Len(t, results, 3)

	// The failing address carries its error; the others are untouched.
	assert.Equal(t, "alice.eth", results[0].Name)
	assert.Error(t, results[1].Err)
	assert.Empty(t, results[1].Name)
	assert.Equal(t, "carol.eth", results[2].Name)
}

func TestResolveManyEmpty(t *testing.T) {
	resolver := &mapResolver{}
	batcher := NewBatcher(resolver, nil, testLogger())

	results := batcher.ResolveMany(context.Background(), nil, "mainnet")
	assert.Empty(t, results)
	assert.Zero(t, resolver.calls)
}

func TestResolveOne(t *testing.T) {
	resolver := &mapResolver{
		names:   map[common.Address]string{addr1: "alice.eth"},
		failing: map[common.Address]error{addr2: fmt.Errorf("boom")},
	}
	batcher := NewBatcher(resolver, nil, testLogger())

	assert.Equal(t, "alice.eth", batcher.ResolveOne(context.Background(), addr1, "mainnet"))
	assert.Empty(t, batcher.ResolveOne(context.Background(), addr2, "mainnet"))
	assert.Empty(t, batcher.ResolveOne(context.Background(), addr3, "mainnet"))
}
