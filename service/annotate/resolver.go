package annotate

import (
	"context"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/evmlabs/annotary/service/assets"
	"github.com/evmlabs/annotary/service/evm"
	"github.com/evmlabs/annotary/service/metrics"
	"github.com/evmlabs/annotary/service/names"
)

// ChainSource provides read-only block lookups. A nil block with a nil
// error means the block is not known yet (pending transaction).
type ChainSource interface {
	BlockByHash(ctx context.Context, network string, hash common.Hash) (*evm.Block, error)
}

// AssetSource provides a read-only, possibly stale snapshot of known
// fungible assets for a network.
type AssetSource interface {
	CachedAssets(ctx context.Context, network string) ([]assets.Asset, error)
}

// NameResolver resolves addresses to display names, tolerating per-address
// failures. names.Batcher satisfies it.
type NameResolver interface {
	ResolveMany(ctx context.Context, addresses []common.Address, network string) []names.Result
	ResolveOne(ctx context.Context, address common.Address, network string) string
}

// Resolver classifies transactions and signature requests into exactly one
// primary annotation, optionally attaching log-derived subannotations.
type Resolver struct {
	chain   ChainSource
	assets  AssetSource
	names   NameResolver
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewResolver creates a Resolver over the three collaborator services.
// If m is nil, no metrics will be recorded.
func NewResolver(chain ChainSource, assetSource AssetSource, nameResolver NameResolver, m *metrics.Metrics, logger *slog.Logger) *Resolver {
	return &Resolver{
		chain:   chain,
		assets:  assetSource,
		names:   nameResolver,
		logger:  logger,
		metrics: m,
	}
}

// Resolve classifies a transaction at the given display precision.
// Classification is total: every transaction maps to some annotation kind,
// falling back to contract-interaction when nothing more specific applies.
// Only collaborator failures (block lookup, asset snapshot) surface as
// errors; decode failures and name-resolution failures never do.
func (r *Resolver) Resolve(ctx context.Context, tx *evm.Transaction, network evm.Network, precision uint8) (*TransactionAnnotation, error) {
	start := time.Now()
	timestamp := start.UTC()

	var blockTimestamp *time.Time
	if tx.BlockHash != nil {
		block, err := r.chain.BlockByHash(ctx, network.Name, *tx.BlockHash)
		if err != nil {
			return nil, err
		}
		if block != nil {
			ts := time.Unix(int64(block.Timestamp), 0).UTC()
			blockTimestamp = &ts
		}
	}

	// One snapshot serves both the primary classification and the
	// subannotation pass, so the two reads cannot disagree.
	snapshot, err := r.assets.CachedAssets(ctx, network.Name)
	if err != nil {
		return nil, err
	}

	annotation := r.classify(ctx, tx.From, tx.To, tx.Value, tx.Input, snapshot, network, precision, timestamp, blockTimestamp)

	if len(tx.Logs) > 0 {
		subs := r.subannotations(ctx, tx.Logs, snapshot, network, precision, timestamp, blockTimestamp)
		if len(subs) > 0 {
			annotation.Subannotations = subs
		}
		if r.metrics != nil {
			r.metrics.RecordSubannotations(network.Name, len(subs))
		}
	}

	if r.metrics != nil {
		r.metrics.RecordAnnotation(network.Name, string(annotation.Kind))
		r.metrics.RecordResolutionDuration(network.Name, time.Since(start).Seconds())
	}

	return &annotation, nil
}

// ResolveSignatureRequest classifies an unmined partial transaction. It
// shares the transaction decision order but skips the block lookup and the
// log pass, neither of which exists before mining.
func (r *Resolver) ResolveSignatureRequest(ctx context.Context, req *evm.SignatureRequest, network evm.Network, precision uint8) (*TransactionAnnotation, error) {
	timestamp := time.Now().UTC()

	snapshot, err := r.assets.CachedAssets(ctx, network.Name)
	if err != nil {
		return nil, err
	}

	annotation := r.classify(ctx, req.From, req.To, req.Value, req.Input, snapshot, network, precision, timestamp, nil)

	if r.metrics != nil {
		r.metrics.RecordAnnotation(network.Name, string(annotation.Kind))
	}

	return &annotation, nil
}

// classify applies the primary decision order; the first matching rule wins.
func (r *Resolver) classify(
	ctx context.Context,
	from common.Address,
	to *common.Address,
	value *big.Int,
	input []byte,
	snapshot []assets.Asset,
	network evm.Network,
	precision uint8,
	timestamp time.Time,
	blockTimestamp *time.Time,
) TransactionAnnotation {
	// 1. No recipient: the transaction deploys a contract.
	if to == nil {
		return newAnnotation(KindContractDeployment, timestamp, blockTimestamp)
	}

	// 2. No input data: a plain base-asset send, or a bare interaction.
	if len(input) == 0 {
		if value != nil && value.Sign() > 0 {
			annotation := newAnnotation(KindAssetTransfer, timestamp, blockTimestamp)
			annotation.SenderAddress = from
			annotation.RecipientAddress = *to
			annotation.RecipientName = r.names.ResolveOne(ctx, *to, network.Name)
			amount := assets.NewAmount(network.BaseAsset(), value, precision)
			annotation.AssetAmount = &amount
			return annotation
		}
		annotation := newAnnotation(KindContractInteraction, timestamp, blockTimestamp)
		annotation.ContractName = r.names.ResolveOne(ctx, *to, network.Name)
		return annotation
	}

	call, decoded := evm.DecodeERC20Call(input)
	asset, matched := assets.Match(*to, snapshot)

	if decoded && matched {
		switch call.Kind {
		// 3. Token transfer against a known asset.
		case evm.CallTransfer, evm.CallTransferFrom:
			annotation := newAnnotation(KindAssetTransfer, timestamp, blockTimestamp)
			annotation.SenderAddress = from
			if call.Kind == evm.CallTransferFrom {
				annotation.SenderAddress = call.From
			}
			annotation.RecipientAddress = call.To
			annotation.RecipientName = r.names.ResolveOne(ctx, call.To, network.Name)
			amount := assets.NewAmount(asset, call.Amount, precision)
			annotation.AssetAmount = &amount
			annotation.LogoURL = asset.LogoURL
			return annotation

		// 4. Spend approval against a known asset.
		case evm.CallApprove:
			annotation := newAnnotation(KindAssetApproval, timestamp, blockTimestamp)
			annotation.SpenderAddress = call.Spender
			annotation.SpenderName = r.names.ResolveOne(ctx, call.Spender, network.Name)
			amount := assets.NewAmount(asset, call.Amount, precision)
			annotation.AssetAmount = &amount
			annotation.LogoURL = asset.LogoURL
			return annotation
		}
	}

	// 5. Generic fallback. The logo still attaches when the target is a
	// known asset contract, independent of whether the call decoded.
	annotation := newAnnotation(KindContractInteraction, timestamp, blockTimestamp)
	if matched {
		annotation.LogoURL = asset.LogoURL
	}
	return annotation
}

// subannotations decodes receipt logs into asset transfers. Logs that fail
// to decode or match no known asset are dropped silently. Recipient names
// across all matched logs resolve as one concurrent batch so duplicate
// addresses cost a single lookup.
func (r *Resolver) subannotations(
	ctx context.Context,
	logs []evm.Log,
	snapshot []assets.Asset,
	network evm.Network,
	precision uint8,
	timestamp time.Time,
	blockTimestamp *time.Time,
) []TransactionAnnotation {
	type matchedTransfer struct {
		transfer evm.TransferLog
		asset    assets.Asset
	}

	var matched []matchedTransfer
	for _, transfer := range evm.DecodeTransferLogs(logs) {
		asset, ok := assets.Match(transfer.ContractAddress, snapshot)
		if !ok {
			continue
		}
		matched = append(matched, matchedTransfer{transfer: transfer, asset: asset})
	}
	if len(matched) == 0 {
		return nil
	}

	seen := make(map[common.Address]struct{}, len(matched))
	var recipients []common.Address
	for _, m := range matched {
		if _, ok := seen[m.transfer.Recipient]; ok {
			continue
		}
		seen[m.transfer.Recipient] = struct{}{}
		recipients = append(recipients, m.transfer.Recipient)
	}

	recipientNames := make(map[common.Address]string, len(recipients))
	for _, result := range r.names.ResolveMany(ctx, recipients, network.Name) {
		if result.Err != nil || result.Name == "" {
			continue
		}
		recipientNames[result.Address] = result.Name
	}

	subs := make([]TransactionAnnotation, 0, len(matched))
	for _, m := range matched {
		sub := newAnnotation(KindAssetTransfer, timestamp, blockTimestamp)
		sub.SenderAddress = m.transfer.Sender
		sub.RecipientAddress = m.transfer.Recipient
		sub.RecipientName = recipientNames[m.transfer.Recipient]
		amount := assets.NewAmount(m.asset, m.transfer.Amount, precision)
		sub.AssetAmount = &amount
		sub.LogoURL = m.asset.LogoURL
		subs = append(subs, sub)
	}
	return subs
}
