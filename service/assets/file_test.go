package assets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAssetsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assets.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeAssetsFile(t, `{
		"mainnet": [
			{"symbol": "USDC", "name": "USD Coin", "decimals": 6, "contract_address": "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"},
			{"symbol": "DAI", "name": "Dai", "decimals": 18, "contract_address": "0x6B175474E89094C44Da98b954EedeAC495271d0F"}
		]
	}`)

	source, err := LoadFile(path)
	require.NoError(t, err)

	snapshot, err := source.CachedAssets(context.Background(), "mainnet")
	require.NoError(t, err)
	require.Len(t, snapshot, 2)
	assert.Equal(t, KindFungible, snapshot[0].Kind)
	assert.Equal(t, "USDC", snapshot[0].Symbol)
	assert.Equal(t, common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), snapshot[0].ContractAddress)
}

func TestLoadFileUnknownNetwork(t *testing.T) {
	path := writeAssetsFile(t, `{"mainnet": []}`)

	source, err := LoadFile(path)
	require.NoError(t, err)

	snapshot, err := source.CachedAssets(context.Background(), "sepolia")
	require.NoError(t, err)
	assert.Empty(t, snapshot)
}

func TestLoadFileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := LoadFile(writeAssetsFile(t, `{`))
		assert.Error(t, err)
	})

	t.Run("invalid contract address", func(t *testing.T) {
		_, err := LoadFile(writeAssetsFile(t, `{"mainnet": [{"symbol": "BAD", "decimals": 6, "contract_address": "nope"}]}`))
		assert.Error(t, err)
	})

	t.Run("missing symbol", func(t *testing.T) {
		_, err := LoadFile(writeAssetsFile(t, `{"mainnet": [{"decimals": 6, "contract_address": "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"}]}`))
		assert.Error(t, err)
	})
}
