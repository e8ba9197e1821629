package evm

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// erc20ABIJSON covers the three ERC-20 functions the engine understands.
const erc20ABIJSON = `[
	{"type":"function","name":"transfer","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"transferFrom","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"approve","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

var erc20ABI abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		panic("invalid embedded ERC-20 ABI: " + err.Error())
	}
	erc20ABI = parsed
}

// CallKind classifies decoded ERC-20 function calls.
type CallKind int

const (
	CallUnknown CallKind = iota
	CallTransfer
	CallTransferFrom
	CallApprove
)

// String returns the canonical function name for the kind.
func (k CallKind) String() string {
	switch k {
	case CallTransfer:
		return "transfer"
	case CallTransferFrom:
		return "transferFrom"
	case CallApprove:
		return "approve"
	default:
		return "unknown"
	}
}

// ERC20Call is a decoded ERC-20 function call. Which fields are set depends
// on Kind: transfer sets To; transferFrom sets From and To; approve sets
// Spender. Amount is set for all three.
type ERC20Call struct {
	Kind    CallKind
	From    common.Address
	To      common.Address
	Spender common.Address
	Amount  *big.Int
}

// DecodeERC20Call decodes transaction input bytes against the known ERC-20
// selectors. Unknown selectors and malformed encodings both report no match;
// this function never panics or errors on arbitrary input.
func DecodeERC20Call(input []byte) (ERC20Call, bool) {
	if len(input) < 4 {
		return ERC20Call{}, false
	}

	method, err := erc20ABI.MethodById(input[:4])
	if err != nil {
		return ERC20Call{}, false
	}

	args, err := method.Inputs.UnpackValues(input[4:])
	if err != nil {
		return ERC20Call{}, false
	}

	switch method.Name {
	case "transfer":
		to, amount, ok := addressAndAmount(args)
		if !ok {
			return ERC20Call{}, false
		}
		return ERC20Call{Kind: CallTransfer, To: to, Amount: amount}, true

	case "transferFrom":
		if len(args) != 3 {
			return ERC20Call{}, false
		}
		from, okFrom := args[0].(common.Address)
		to, okTo := args[1].(common.Address)
		amount, okAmount := args[2].(*big.Int)
		if !okFrom || !okTo || !okAmount {
			return ERC20Call{}, false
		}
		return ERC20Call{Kind: CallTransferFrom, From: from, To: to, Amount: amount}, true

	case "approve":
		spender, amount, ok := addressAndAmount(args)
		if !ok {
			return ERC20Call{}, false
		}
		return ERC20Call{Kind: CallApprove, Spender: spender, Amount: amount}, true
	}

	return ERC20Call{}, false
}

func addressAndAmount(args []interface{}) (common.Address, *big.Int, bool) {
	if len(args) != 2 {
		return common.Address{}, nil, false
	}
	addr, okAddr := args[0].(common.Address)
	amount, okAmount := args[1].(*big.Int)
	if !okAddr || !okAmount {
		return common.Address{}, nil, false
	}
	return addr, amount, true
}
