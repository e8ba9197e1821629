package assets

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var usdc = Asset{
	Kind:            KindFungible,
	Symbol:          "USDC",
	Name:            "USD Coin",
	Decimals:        6,
	ContractAddress: common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"),
	LogoURL:         "https://assets.example.com/usdc.png",
}

var eth = Asset{
	Kind:     KindBase,
	Symbol:   "ETH",
	Name:     "ETH",
	Decimals: 18,
}

func TestMatch(t *testing.T) {
	snapshot := []Asset{eth, usdc}

	t.Run("matches fungible asset by contract address", func(t *testing.T) {
		asset, ok := Match(usdc.ContractAddress, snapshot)
		require.True(t, ok)
		assert.Equal(t, "USDC", asset.Symbol)
	})

	t.Run("base assets never match", func(t *testing.T) {
		_, ok := Match(common.Address{}, snapshot)
		assert.False(t, ok)
	})

	t.Run("unknown contract does not match", func(t *testing.T) {
		_, ok := Match(common.HexToAddress("0x0000000000000000000000000000000000000001"), snapshot)
		assert.False(t, ok)
	})
}

func TestMatchHex(t *testing.T) {
	snapshot := []Asset{usdc}

	t.Run("casing is irrelevant", func(t *testing.T) {
		lower, ok := MatchHex("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", snapshot)
		require.True(t, ok)
		upper, ok := MatchHex("0xA0B86991C6218B36C1D19D4A2E9EB0CE3606EB48", snapshot)
		require.True(t, ok)
		assert.Equal(t, lower, upper)
	})

	t.Run("invalid hex strings never match", func(t *testing.T) {
		_, ok := MatchHex("not-an-address", snapshot)
		assert.False(t, ok)
		_, ok = MatchHex("0x1234", snapshot)
		assert.False(t, ok)
	})
}

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		decimals  uint8
		precision uint8
		want      string
	}{
		{"zero", "0", 18, 2, "0"},
		{"whole token", "1000000000000000000", 18, 2, "1"},
		{"six decimals", "5000000", 6, 2, "5"},
		{"fractional truncated to precision", "1234567", 6, 2, "1.23"},
		{"trailing zeros trimmed", "1200000", 6, 4, "1.2"},
		{"sub-unit amount", "1", 6, 8, "0.000001"},
		{"sub-unit below precision truncates to zero", "1", 6, 2, "0"},
		{"zero decimals", "42", 0, 2, "42"},
		{"negative amount", "-1500000", 6, 2, "-1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, ok := new(big.Int).SetString(tt.raw, 10)
			require.True(t, ok)
			assert.Equal(t, tt.want, FormatUnits(raw, tt.decimals, tt.precision))
		})
	}
}

func TestFormatUnitsMaxUint256(t *testing.T) {
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	got := FormatUnits(max, 18, 2)
	assert.Equal(t, "115792089237316195423570985008687907853269984665640564039457.58", got)
}

func TestParseUnits(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		decimals uint8
		want     string
	}{
		{"whole", "5", 6, "5000000"},
		{"fractional", "1.23", 6, "1230000"},
		{"full precision", "0.000001", 6, "1"},
		{"trailing zeros tolerated", "1.500000", 6, "1500000"},
		{"negative", "-1.5", 6, "-1500000"},
		{"eighteen decimals", "1", 18, "1000000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUnits(tt.value, tt.decimals)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	t.Run("too many fractional digits", func(t *testing.T) {
		_, err := ParseUnits("1.1234567", 6)
		assert.Error(t, err)
	})

	t.Run("garbage input", func(t *testing.T) {
		_, err := ParseUnits("one point five", 6)
		assert.Error(t, err)
	})
}

func TestParseUnitsRoundTrip(t *testing.T) {
	// FormatUnits at full precision then ParseUnits must reproduce the raw
	// amount exactly for any decimals.
	for _, decimals := range []uint8{6, 8, 18} {
		raw, ok := new(big.Int).SetString("123456789012345678901234567", 10)
		require.True(t, ok)

		formatted := FormatUnits(raw, decimals, decimals)
		back, err := ParseUnits(formatted, decimals)
		require.NoError(t, err)
		assert.Equal(t, raw.String(), back.String(), "decimals=%d", decimals)
	}
}

func TestNewAmount(t *testing.T) {
	raw := big.NewInt(1234567)
	amount := NewAmount(usdc, raw, 2)

	assert.Equal(t, "USDC", amount.Asset.Symbol)
	assert.Equal(t, "1.23", amount.Decimal)
	assert.Equal(t, "1234567", amount.Raw.String())

	// The raw amount is copied, not aliased.
	raw.SetInt64(0)
	assert.Equal(t, "1234567", amount.Raw.String())
}

func TestNewAmountNilRaw(t *testing.T) {
	amount := NewAmount(usdc, nil, 2)
	assert.Equal(t, "0", amount.Decimal)
	assert.Equal(t, "0", amount.Raw.String())
}
