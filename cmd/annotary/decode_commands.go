package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"

	"github.com/evmlabs/annotary/service/evm"
)

// decodeCalldataCommand decodes ERC-20 calldata offline, without touching
// NATS or any RPC endpoint.
func decodeCalldataCommand() *cli.Command {
	return &cli.Command{
		Name:      "calldata",
		Usage:     "Decode hex-encoded ERC-20 calldata",
		ArgsUsage: "CALLDATA",
		Description: `Decode transaction input data against the known ERC-20 selectors
(transfer, transferFrom, approve).

Example:
  annotary decode calldata 0xa9059cbb000000...`,
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("calldata is required")
			}

			raw := c.Args().Get(0)
			if !strings.HasPrefix(raw, "0x") {
				raw = "0x" + raw
			}
			input, err := hexutil.Decode(raw)
			if err != nil {
				return fmt.Errorf("invalid calldata: %w", err)
			}

			call, ok := evm.DecodeERC20Call(input)
			if !ok {
				return fmt.Errorf("calldata does not match a known ERC-20 function")
			}

			if c.Bool("json") {
				out := map[string]interface{}{
					"function": call.Kind.String(),
					"amount":   call.Amount.String(),
				}
				switch call.Kind {
				case evm.CallTransfer:
					out["to"] = call.To.Hex()
				case evm.CallTransferFrom:
					out["from"] = call.From.Hex()
					out["to"] = call.To.Hex()
				case evm.CallApprove:
					out["spender"] = call.Spender.Hex()
				}
				data, _ := json.MarshalIndent(out, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			fmt.Printf("Function:  %s\n", call.Kind)
			switch call.Kind {
			case evm.CallTransfer:
				fmt.Printf("To:        %s\n", call.To.Hex())
			case evm.CallTransferFrom:
				fmt.Printf("From:      %s\n", call.From.Hex())
				fmt.Printf("To:        %s\n", call.To.Hex())
			case evm.CallApprove:
				fmt.Printf("Spender:   %s\n", call.Spender.Hex())
			}
			fmt.Printf("Amount:    %s\n", call.Amount.String())
			return nil
		},
	}
}
