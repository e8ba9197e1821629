package evm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/evmlabs/annotary/service/assets"
)

// Network identifies an EVM-compatible chain and its native asset.
type Network struct {
	Name              string `json:"name"`
	ChainID           uint64 `json:"chain_id"`
	BaseAssetSymbol   string `json:"base_asset_symbol"`
	BaseAssetDecimals uint8  `json:"base_asset_decimals"`
}

// BaseAsset returns the network-native asset (e.g. ETH) as an asset value.
func (n Network) BaseAsset() assets.Asset {
	return assets.Asset{
		Kind:     assets.KindBase,
		Symbol:   n.BaseAssetSymbol,
		Name:     n.BaseAssetSymbol,
		Decimals: n.BaseAssetDecimals,
	}
}

// EthereumMainnet is the default network.
var EthereumMainnet = Network{
	Name:              "mainnet",
	ChainID:           1,
	BaseAssetSymbol:   "ETH",
	BaseAssetDecimals: 18,
}

var knownNetworks = map[string]Network{
	"mainnet": EthereumMainnet,
	"sepolia": {Name: "sepolia", ChainID: 11155111, BaseAssetSymbol: "ETH", BaseAssetDecimals: 18},
	"holesky": {Name: "holesky", ChainID: 17000, BaseAssetSymbol: "ETH", BaseAssetDecimals: 18},
}

// NetworkNamed returns the definition for a known network name. Unknown
// names get an ETH-denominated definition with a zero chain ID, which is
// enough for annotation but not for signing.
func NetworkNamed(name string) Network {
	if n, ok := knownNetworks[name]; ok {
		return n
	}
	return Network{Name: name, BaseAssetSymbol: "ETH", BaseAssetDecimals: 18}
}

// Transaction is our domain model of an EVM transaction, independent of the
// RPC response format. To is nil for contract deployments; BlockHash is nil
// while the transaction is pending; Logs come from the receipt and are empty
// until the transaction is mined.
type Transaction struct {
	Hash      common.Hash     `json:"hash"`
	From      common.Address  `json:"from"`
	To        *common.Address `json:"to,omitempty"`
	Value     *big.Int        `json:"value,omitempty"`
	Input     []byte          `json:"input,omitempty"`
	Nonce     uint64          `json:"nonce"`
	BlockHash *common.Hash    `json:"block_hash,omitempty"`
	Logs      []Log           `json:"logs,omitempty"`
	Network   string          `json:"network"`
}

// HasValue reports whether the transaction moves a non-zero base-asset amount.
func (t *Transaction) HasValue() bool {
	return t.Value != nil && t.Value.Sign() > 0
}

// Log is a single receipt log entry.
type Log struct {
	Address common.Address `json:"address"`
	Topics  []common.Hash  `json:"topics"`
	Data    []byte         `json:"data"`
}

// Block carries the subset of block data the annotation engine needs.
type Block struct {
	Hash      common.Hash `json:"hash"`
	Number    uint64      `json:"number"`
	Timestamp uint64      `json:"timestamp"`
}

// SignatureRequest is an unmined partial transaction awaiting signature.
// It classifies through the same resolver as mined transactions, minus the
// block lookup and log pass.
type SignatureRequest struct {
	From    common.Address  `json:"from"`
	To      *common.Address `json:"to,omitempty"`
	Value   *big.Int        `json:"value,omitempty"`
	Input   []byte          `json:"input,omitempty"`
	Network string          `json:"network"`
}

// TypedDataRequest is an EIP-712 typed-data signing request.
type TypedDataRequest struct {
	Account   common.Address     `json:"account"`
	Network   string             `json:"network"`
	TypedData apitypes.TypedData `json:"typed_data"`
}
