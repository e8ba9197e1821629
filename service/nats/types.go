package nats

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/evmlabs/annotary/service/annotate"
	"github.com/evmlabs/annotary/service/evm"
)

// ChainTransactionEvent is the inbound event the chain collaborator emits
// on the subject "chain.txns.{network}" whenever a transaction relevant to
// a tracked account is seen.
type ChainTransactionEvent struct {
	Transaction *evm.Transaction `json:"transaction"`
	ForAccounts []common.Address `json:"for_accounts"`
	Network     string           `json:"network"`
}

// EnrichedTransactionEvent carries the original transaction and correlation
// data plus the computed annotation. Published to
// "enriched.txns.{network}".
type EnrichedTransactionEvent struct {
	Transaction *evm.Transaction                `json:"transaction"`
	ForAccounts []common.Address                `json:"for_accounts"`
	Annotation  *annotate.TransactionAnnotation `json:"annotation"`
	Network     string                          `json:"network"`
	PublishedAt time.Time                       `json:"published_at"`
}

// EnrichedSignatureRequestEvent carries the original partial transaction
// plus its annotation. Published to "enriched.sigreqs.{network}".
type EnrichedSignatureRequestEvent struct {
	Request     *evm.SignatureRequest           `json:"request"`
	Annotation  *annotate.TransactionAnnotation `json:"annotation"`
	Network     string                          `json:"network"`
	PublishedAt time.Time                       `json:"published_at"`
}

// EnrichedTypedDataEvent carries the original typed-data request plus its
// annotation. Published to "enriched.typeddata.{network}".
type EnrichedTypedDataEvent struct {
	Request     *evm.TypedDataRequest             `json:"request"`
	Annotation  *annotate.SignTypedDataAnnotation `json:"annotation"`
	Network     string                            `json:"network"`
	PublishedAt time.Time                         `json:"published_at"`
}
