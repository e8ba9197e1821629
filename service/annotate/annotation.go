package annotate

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/evmlabs/annotary/service/assets"
)

// Kind discriminates the transaction annotation union. Every transaction
// that reaches the resolver maps to exactly one primary kind; classification
// is total, with KindContractInteraction as the generic fallback.
type Kind string

const (
	KindContractDeployment  Kind = "contract-deployment"
	KindAssetTransfer       Kind = "asset-transfer"
	KindAssetApproval       Kind = "asset-approval"
	KindContractInteraction Kind = "contract-interaction"
)

// TransactionAnnotation is a structured, human-meaningful classification of
// a transaction. Which fields are set depends on Kind; Timestamp is the
// wall-clock resolution time and BlockTimestamp is only set once the
// transaction's block has been retrieved.
//
// Subannotations are asset transfers derived from receipt logs. They are
// attached only when at least one decoded log matched a known asset, and a
// primary annotation never appears as a subannotation of another.
type TransactionAnnotation struct {
	Kind           Kind       `json:"kind"`
	Timestamp      time.Time  `json:"timestamp"`
	BlockTimestamp *time.Time `json:"block_timestamp,omitempty"`

	// asset-transfer
	SenderAddress    common.Address `json:"sender_address,omitempty"`
	RecipientAddress common.Address `json:"recipient_address,omitempty"`
	RecipientName    string         `json:"recipient_name,omitempty"`

	// asset-approval
	SpenderAddress common.Address `json:"spender_address,omitempty"`
	SpenderName    string         `json:"spender_name,omitempty"`

	// asset-transfer and asset-approval
	AssetAmount *assets.Amount `json:"asset_amount,omitempty"`

	// contract-interaction
	ContractName string `json:"contract_name,omitempty"`

	// any kind with a matched asset
	LogoURL string `json:"logo_url,omitempty"`

	Subannotations []TransactionAnnotation `json:"subannotations,omitempty"`
}

func newAnnotation(kind Kind, timestamp time.Time, blockTimestamp *time.Time) TransactionAnnotation {
	return TransactionAnnotation{
		Kind:           kind,
		Timestamp:      timestamp,
		BlockTimestamp: blockTimestamp,
	}
}

// TypedDataKind discriminates typed-data annotations.
type TypedDataKind string

const (
	TypedDataUnrecognized  TypedDataKind = "unrecognized"
	TypedDataEIP2612Permit TypedDataKind = "eip2612-permit"
)

// SignTypedDataAnnotation classifies an EIP-712 signing request. For permit
// annotations, Asset may be nil when the verifying contract matched no known
// asset; the annotation is still emitted as a best-effort permit.
type SignTypedDataAnnotation struct {
	Kind     TypedDataKind  `json:"kind"`
	Owner    common.Address `json:"owner,omitempty"`
	Spender  common.Address `json:"spender,omitempty"`
	Amount   *big.Int       `json:"amount,omitempty"`
	Deadline *big.Int       `json:"deadline,omitempty"`
	Asset    *assets.Asset  `json:"asset,omitempty"`
}
