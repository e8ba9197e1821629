package annotate

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evmlabs/annotary/service/assets"
	"github.com/evmlabs/annotary/service/evm"
)

func permitTypedData(verifyingContract string) apitypes.TypedData {
	return apitypes.TypedData{
		PrimaryType: "Permit",
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Permit": []apitypes.Type{
				{Name: "owner", Type: "address"},
				{Name: "spender", Type: "address"},
				{Name: "value", Type: "uint256"},
				{Name: "nonce", Type: "uint256"},
				{Name: "deadline", Type: "uint256"},
			},
		},
		Domain: apitypes.TypedDataDomain{
			Name:              "USD Coin",
			Version:           "2",
			VerifyingContract: verifyingContract,
		},
		Message: apitypes.TypedDataMessage{
			"owner":    sender.Hex(),
			"spender":  spender.Hex(),
			"value":    "5000000",
			"nonce":    "0",
			"deadline": "1893456000",
		},
	}
}

func newTestAnnotator(assetSource *mockAssets) *TypedDataAnnotator {
	if assetSource == nil {
		assetSource = &mockAssets{snapshot: []assets.Asset{usdc, dai}}
	}
	return NewTypedDataAnnotator(assetSource, nil, testLogger())
}

func TestAnnotatePermit(t *testing.T) {
	annotator := newTestAnnotator(nil)

	req := &evm.TypedDataRequest{
		Account:   sender,
		Network:   "mainnet",
		TypedData: permitTypedData(usdcAddr.Hex()),
	}

	annotation := annotator.Annotate(context.Background(), req)
	assert.Equal(t, TypedDataEIP2612Permit, annotation.Kind)
	assert.Equal(t, sender, annotation.Owner)
	assert.Equal(t, spender, annotation.Spender)
	assert.Equal(t, "5000000", annotation.Amount.String())
	assert.Equal(t, "1893456000", annotation.Deadline.String())

	require.NotNil(t, annotation.Asset)
	assert.Equal(t, "USDC", annotation.Asset.Symbol)
}

func TestAnnotatePermitCaseInsensitiveContract(t *testing.T) {
	annotator := newTestAnnotator(nil)

	td := permitTypedData("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48")
	req := &evm.TypedDataRequest{Account: sender, Network: "mainnet", TypedData: td}

	annotation := annotator.Annotate(context.Background(), req)
	require.NotNil(t, annotation.Asset)
	assert.Equal(t, "USDC", annotation.Asset.Symbol)
}

func TestAnnotatePermitUnknownContract(t *testing.T) {
	annotator := newTestAnnotator(nil)

	td := permitTypedData(otherAddr.Hex())
	req := &evm.TypedDataRequest{Account: sender, Network: "mainnet", TypedData: td}

	annotation := annotator.Annotate(context.Background(), req)
	assert.Equal(t, TypedDataEIP2612Permit, annotation.Kind)
	assert.Nil(t, annotation.Asset)
}

func TestAnnotatePermitSnapshotFailureBestEffort(t *testing.T) {
	annotator := newTestAnnotator(&mockAssets{err: fmt.Errorf("index down")})

	req := &evm.TypedDataRequest{
		Account:   sender,
		Network:   "mainnet",
		TypedData: permitTypedData(usdcAddr.Hex()),
	}

	annotation := annotator.Annotate(context.Background(), req)
	assert.Equal(t, TypedDataEIP2612Permit, annotation.Kind)
	assert.Nil(t, annotation.Asset)
}

func TestAnnotateHexValues(t *testing.T) {
	annotator := newTestAnnotator(nil)

	td := permitTypedData(usdcAddr.Hex())
	td.Message["value"] = "0x4c4b40"
	td.Message["deadline"] = big.NewInt(1893456000)
	req := &evm.TypedDataRequest{Account: sender, Network: "mainnet", TypedData: td}

	annotation := annotator.Annotate(context.Background(), req)
	require.Equal(t, TypedDataEIP2612Permit, annotation.Kind)
	assert.Equal(t, "5000000", annotation.Amount.String())
	assert.Equal(t, "1893456000", annotation.Deadline.String())
}

func TestAnnotateUnrecognized(t *testing.T) {
	annotator := newTestAnnotator(nil)

	t.Run("different primary type", func(t *testing.T) {
		td := permitTypedData(usdcAddr.Hex())
		td.PrimaryType = "Order"
		req := &evm.TypedDataRequest{Account: sender, Network: "mainnet", TypedData: td}

		annotation := annotator.Annotate(context.Background(), req)
		assert.Equal(t, TypedDataUnrecognized, annotation.Kind)
		assert.Nil(t, annotation.Asset)
	})

	t.Run("permit type with extra field", func(t *testing.T) {
		td := permitTypedData(usdcAddr.Hex())
		td.Types["Permit"] = append(td.Types["Permit"], apitypes.Type{Name: "extra", Type: "uint256"})
		req := &evm.TypedDataRequest{Account: sender, Network: "mainnet", TypedData: td}

		annotation := annotator.Annotate(context.Background(), req)
		assert.Equal(t, TypedDataUnrecognized, annotation.Kind)
	})

	t.Run("permit type with wrong field type", func(t *testing.T) {
		td := permitTypedData(usdcAddr.Hex())
		td.Types["Permit"][2] = apitypes.Type{Name: "value", Type: "uint128"}
		req := &evm.TypedDataRequest{Account: sender, Network: "mainnet", TypedData: td}

		annotation := annotator.Annotate(context.Background(), req)
		assert.Equal(t, TypedDataUnrecognized, annotation.Kind)
	})

	t.Run("message missing a member", func(t *testing.T) {
		td := permitTypedData(usdcAddr.Hex())
		delete(td.Message, "spender")
		req := &evm.TypedDataRequest{Account: sender, Network: "mainnet", TypedData: td}

		annotation := annotator.Annotate(context.Background(), req)
		assert.Equal(t, TypedDataUnrecognized, annotation.Kind)
	})

	t.Run("message with malformed owner", func(t *testing.T) {
		td := permitTypedData(usdcAddr.Hex())
		td.Message["owner"] = "not-an-address"
		req := &evm.TypedDataRequest{Account: sender, Network: "mainnet", TypedData: td}

		annotation := annotator.Annotate(context.Background(), req)
		assert.Equal(t, TypedDataUnrecognized, annotation.Kind)
	})

	t.Run("empty typed data", func(t *testing.T) {
		req := &evm.TypedDataRequest{Account: sender, Network: "mainnet"}
		annotation := annotator.Annotate(context.Background(), req)
		assert.Equal(t, TypedDataUnrecognized, annotation.Kind)
	})
}
