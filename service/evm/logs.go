package evm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// TransferEventTopic is topic0 of the canonical ERC-20 Transfer event.
var TransferEventTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// TransferLog is a decoded ERC-20 Transfer event.
type TransferLog struct {
	ContractAddress common.Address
	Sender          common.Address
	Recipient       common.Address
	Amount          *big.Int
}

// DecodeTransferLogs scans receipt logs for ERC-20 Transfer events and
// extracts one TransferLog per match, preserving log order. Logs with a
// different topic0, a different topic count (ERC-721 Transfer carries four
// topics), or a malformed data word are skipped, never reported as failures.
func DecodeTransferLogs(logs []Log) []TransferLog {
	var transfers []TransferLog
	for _, l := range logs {
		transfer, ok := decodeTransferLog(l)
		if !ok {
			continue
		}
		transfers = append(transfers, transfer)
	}
	return transfers
}

func decodeTransferLog(l Log) (TransferLog, bool) {
	if len(l.Topics) != 3 || l.Topics[0] != TransferEventTopic {
		return TransferLog{}, false
	}
	if len(l.Data) != common.HashLength {
		return TransferLog{}, false
	}
	return TransferLog{
		ContractAddress: l.Address,
		Sender:          common.BytesToAddress(l.Topics[1].Bytes()),
		Recipient:       common.BytesToAddress(l.Topics[2].Bytes()),
		Amount:          new(big.Int).SetBytes(l.Data),
	}, true
}
