package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
)

// FileSource serves known-asset snapshots loaded from a JSON file. It is the
// simplest implementation of the asset-index collaborator: a read-only,
// point-in-time snapshot keyed by network name. The indexing subsystem that
// maintains a live asset cache can replace it behind the same interface.
type FileSource struct {
	byNetwork map[string][]Asset
}

// fileAsset is the on-disk representation of one fungible asset.
type fileAsset struct {
	Symbol          string `json:"symbol"`
	Name            string `json:"name"`
	Decimals        uint8  `json:"decimals"`
	ContractAddress string `json:"contract_address"`
	LogoURL         string `json:"logo_url,omitempty"`
}

// LoadFile reads a snapshot file of the form
//
//	{"mainnet": [{"symbol": "USDC", "decimals": 6, "contract_address": "0x..."}, ...]}
//
// Every listed asset is contract-backed and therefore fungible.
func LoadFile(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read assets file: %w", err)
	}

	var raw map[string][]fileAsset
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse assets file %s: %w", path, err)
	}

	byNetwork := make(map[string][]Asset, len(raw))
	for network, entries := range raw {
		snapshot := make([]Asset, 0, len(entries))
		for _, e := range entries {
			asset, err := e.toAsset()
			if err != nil {
				return nil, fmt.Errorf("assets file %s, network %s: %w", path, network, err)
			}
			snapshot = append(snapshot, asset)
		}
		byNetwork[network] = snapshot
	}

	return &FileSource{byNetwork: byNetwork}, nil
}

func (f fileAsset) toAsset() (Asset, error) {
	if f.Symbol == "" {
		return Asset{}, fmt.Errorf("asset is missing a symbol")
	}
	if !common.IsHexAddress(f.ContractAddress) {
		return Asset{}, fmt.Errorf("asset %s has invalid contract address %q", f.Symbol, f.ContractAddress)
	}
	return Asset{
		Kind:            KindFungible,
		Symbol:          f.Symbol,
		Name:            f.Name,
		Decimals:        f.Decimals,
		ContractAddress: common.HexToAddress(f.ContractAddress),
		LogoURL:         f.LogoURL,
	}, nil
}

// CachedAssets returns the snapshot for the given network. Unknown networks
// yield an empty snapshot rather than an error.
func (s *FileSource) CachedAssets(ctx context.Context, network string) ([]Asset, error) {
	return s.byNetwork[network], nil
}
