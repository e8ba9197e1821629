package evm

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transferLog(contract, sender, recipient common.Address, amount *big.Int) Log {
	return Log{
		Address: contract,
		Topics: []common.Hash{
			TransferEventTopic,
			common.BytesToHash(sender.Bytes()),
			common.BytesToHash(recipient.Bytes()),
		},
		Data: common.BigToHash(amount).Bytes(),
	}
}

func TestDecodeTransferLogs(t *testing.T) {
	contract := common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")

	logs := []Log{
		transferLog(contract, addrA, addrB, big.NewInt(100)),
		transferLog(contract, addrB, addrA, big.NewInt(200)),
	}

	transfers := DecodeTransferLogs(logs)
	require.Len(t, transfers, 2)

	assert.Equal(t, contract, transfers[0].ContractAddress)
	assert.Equal(t, addrA, transfers[0].Sender)
	assert.Equal(t, addrB, transfers[0].Recipient)
	assert.Equal(t, "100", transfers[0].Amount.String())

	// Log order is preserved.
	assert.Equal(t, addrB, transfers[1].Sender)
	assert.Equal(t, "200", transfers[1].Amount.String())
}

func TestDecodeTransferLogsSkipsNonMatches(t *testing.T) {
	contract := common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	good := transferLog(contract, addrA, addrB, big.NewInt(7))

	otherTopic := Log{
		Address: contract,
		Topics: []common.Hash{
			common.HexToHash("0x8c5be1e5ebec7d5bd14f71427d1e84f3dd0314c0f7b2291e5b200ac8c7c3b925"),
			common.BytesToHash(addrA.Bytes()),
			common.BytesToHash(addrB.Bytes()),
		},
		Data: common.BigToHash(big.NewInt(1)).Bytes(),
	}

	// ERC-721 Transfer carries the token ID as a fourth topic.
	erc721 := Log{
		Address: contract,
		Topics: []common.Hash{
			TransferEventTopic,
			common.BytesToHash(addrA.Bytes()),
			common.BytesToHash(addrB.Bytes()),
			common.BigToHash(big.NewInt(1234)),
		},
	}

	shortData := transferLog(contract, addrA, addrB, big.NewInt(7))
	shortData.Data = shortData.Data[:16]

	noTopics := Log{Address: contract}

	transfers := DecodeTransferLogs([]Log{otherTopic, good, erc721, shortData, noTopics})
	require.Len(t, transfers, 1)
	assert.Equal(t, "7", transfers[0].Amount.String())
}

func TestDecodeTransferLogsEmpty(t *testing.T) {
	assert.Empty(t, DecodeTransferLogs(nil))
	assert.Empty(t, DecodeTransferLogs([]Log{}))
}

func TestTransferEventTopic(t *testing.T) {
	// keccak256("Transfer(address,address,uint256)")
	assert.Equal(t,
		"0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef",
		TransferEventTopic.Hex(),
	)
}
