package annotate

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/evmlabs/annotary/service/assets"
	"github.com/evmlabs/annotary/service/evm"
	"github.com/evmlabs/annotary/service/metrics"
)

// permitFields are the EIP-2612 Permit struct members, in canonical order:
// Permit(address owner,address spender,uint256 value,uint256 nonce,uint256 deadline).
var permitFields = map[string]string{
	"owner":    "address",
	"spender":  "address",
	"value":    "uint256",
	"nonce":    "uint256",
	"deadline": "uint256",
}

// TypedDataAnnotator classifies EIP-712 typed-data signing requests.
// The only shape it understands is the EIP-2612 permit; everything else is
// annotated as unrecognized, which consumers treat as a normal displayable
// case.
type TypedDataAnnotator struct {
	assets  AssetSource
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewTypedDataAnnotator creates a TypedDataAnnotator over the asset source.
// If m is nil, no metrics will be recorded.
func NewTypedDataAnnotator(assetSource AssetSource, m *metrics.Metrics, logger *slog.Logger) *TypedDataAnnotator {
	return &TypedDataAnnotator{
		assets:  assetSource,
		logger:  logger,
		metrics: m,
	}
}

// Annotate checks the request against the EIP-2612 permit schema. A match
// yields a permit annotation, locating the asset by the domain's verifying
// contract; the asset may be nil when nothing in the snapshot matches, and
// the permit annotation is still emitted best-effort. Any other shape
// yields an unrecognized annotation. Annotate never fails.
func (a *TypedDataAnnotator) Annotate(ctx context.Context, req *evm.TypedDataRequest) *SignTypedDataAnnotation {
	annotation := a.annotate(ctx, req)
	if a.metrics != nil {
		a.metrics.RecordTypedDataAnnotation(req.Network, string(annotation.Kind))
	}
	return annotation
}

func (a *TypedDataAnnotator) annotate(ctx context.Context, req *evm.TypedDataRequest) *SignTypedDataAnnotation {
	td := req.TypedData

	if td.PrimaryType != "Permit" || !hasPermitType(td.Types) {
		return &SignTypedDataAnnotation{Kind: TypedDataUnrecognized}
	}

	owner, okOwner := messageAddress(td.Message, "owner")
	spender, okSpender := messageAddress(td.Message, "spender")
	value, okValue := messageBigInt(td.Message, "value")
	deadline, okDeadline := messageBigInt(td.Message, "deadline")
	if !okOwner || !okSpender || !okValue || !okDeadline {
		return &SignTypedDataAnnotation{Kind: TypedDataUnrecognized}
	}

	annotation := &SignTypedDataAnnotation{
		Kind:     TypedDataEIP2612Permit,
		Owner:    owner,
		Spender:  spender,
		Amount:   value,
		Deadline: deadline,
	}

	snapshot, err := a.assets.CachedAssets(ctx, req.Network)
	if err != nil {
		// Best-effort: the permit annotation stands on its own even when
		// the asset snapshot is unavailable.
		a.logger.WarnContext(ctx, "asset snapshot unavailable for permit annotation",
			"network", req.Network,
			"error", err,
		)
		return annotation
	}

	if asset, ok := assets.MatchHex(td.Domain.VerifyingContract, snapshot); ok {
		annotation.Asset = &asset
	}

	return annotation
}

// hasPermitType verifies the Permit struct declares exactly the EIP-2612
// members with the expected solidity types.
func hasPermitType(types apitypes.Types) bool {
	permit, ok := types["Permit"]
	if !ok || len(permit) != len(permitFields) {
		return false
	}
	for _, field := range permit {
		want, ok := permitFields[field.Name]
		if !ok || field.Type != want {
			return false
		}
	}
	return true
}

func messageAddress(message apitypes.TypedDataMessage, key string) (common.Address, bool) {
	raw, ok := message[key]
	if !ok {
		return common.Address{}, false
	}
	s, ok := raw.(string)
	if !ok || !common.IsHexAddress(s) {
		return common.Address{}, false
	}
	return common.HexToAddress(s), true
}

func messageBigInt(message apitypes.TypedDataMessage, key string) (*big.Int, bool) {
	raw, ok := message[key]
	if !ok {
		return nil, false
	}
	switch v := raw.(type) {
	case *big.Int:
		return new(big.Int).Set(v), true
	case string:
		if strings.HasPrefix(v, "0x") || strings.HasPrefix(v, "0X") {
			n, ok := new(big.Int).SetString(v[2:], 16)
			return n, ok
		}
		n, ok := new(big.Int).SetString(v, 10)
		return n, ok
	case json.Number:
		n, ok := new(big.Int).SetString(v.String(), 10)
		return n, ok
	case float64:
		if v != float64(int64(v)) {
			return nil, false
		}
		return big.NewInt(int64(v)), true
	default:
		return nil, false
	}
}
