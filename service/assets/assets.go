package assets

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Kind discriminates the asset union. Only fungible, contract-backed assets
// participate in contract-address matching; base assets have no contract.
type Kind int

const (
	KindUnknown Kind = iota
	// KindBase is a network-native asset such as ETH.
	KindBase
	// KindFungible is an ERC-20 style contract-backed token.
	KindFungible
)

// String returns the kind name for logging and metrics labels.
func (k Kind) String() string {
	switch k {
	case KindBase:
		return "base"
	case KindFungible:
		return "fungible"
	default:
		return "unknown"
	}
}

// Asset describes a fungible asset with a declared decimal precision.
// ContractAddress is the zero address for base assets.
type Asset struct {
	Kind            Kind           `json:"kind"`
	Symbol          string         `json:"symbol"`
	Name            string         `json:"name"`
	Decimals        uint8          `json:"decimals"`
	ContractAddress common.Address `json:"contract_address"`
	LogoURL         string         `json:"logo_url,omitempty"`
}

// Match finds the fungible asset in the snapshot whose contract address
// equals the given address. Base and unknown-kind assets never match.
func Match(contract common.Address, snapshot []Asset) (Asset, bool) {
	for _, a := range snapshot {
		if a.Kind != KindFungible {
			continue
		}
		if a.ContractAddress == contract {
			return a, true
		}
	}
	return Asset{}, false
}

// MatchHex is Match over a hex-encoded contract address. Comparison is
// case-insensitive: the address is normalized before matching. Strings that
// are not valid addresses never match.
func MatchHex(contract string, snapshot []Asset) (Asset, bool) {
	if !common.IsHexAddress(contract) {
		return Asset{}, false
	}
	return Match(common.HexToAddress(contract), snapshot)
}

// Amount pairs an asset with a raw integer amount and its decimal-adjusted
// rendering at a caller-specified precision. The raw amount is copied on
// construction and never mutated by formatting.
type Amount struct {
	Asset   Asset    `json:"asset"`
	Raw     *big.Int `json:"raw"`
	Decimal string   `json:"decimal"`
}

// NewAmount builds an Amount from a raw integer amount, adjusting by the
// asset's declared decimals and truncating to at most precision fractional
// digits.
func NewAmount(asset Asset, raw *big.Int, precision uint8) Amount {
	rawCopy := new(big.Int)
	if raw != nil {
		rawCopy.Set(raw)
	}
	return Amount{
		Asset:   asset,
		Raw:     rawCopy,
		Decimal: FormatUnits(rawCopy, asset.Decimals, precision),
	}
}

// FormatUnits renders a raw integer amount as a decimal string, shifting by
// decimals and keeping at most precision fractional digits. The computation
// is exact integer arithmetic; trailing zeros and a trailing dot are trimmed.
func FormatUnits(raw *big.Int, decimals, precision uint8) string {
	if raw == nil || raw.Sign() == 0 {
		return "0"
	}

	abs := new(big.Int).Abs(raw)
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(abs, scale, new(big.Int))

	sign := ""
	if raw.Sign() < 0 {
		sign = "-"
	}

	fracStr := frac.String()
	if pad := int(decimals) - len(fracStr); pad > 0 {
		fracStr = strings.Repeat("0", pad) + fracStr
	}
	if len(fracStr) > int(precision) {
		fracStr = fracStr[:precision]
	}
	fracStr = strings.TrimRight(fracStr, "0")

	if fracStr == "" {
		return sign + whole.String()
	}
	return sign + whole.String() + "." + fracStr
}

// ParseUnits is the inverse of FormatUnits at full precision: it scales a
// decimal string back to a raw integer amount using the asset's decimals.
// It fails if the fractional part carries more digits than decimals allows.
func ParseUnits(value string, decimals uint8) (*big.Int, error) {
	value = strings.TrimSpace(value)
	negative := strings.HasPrefix(value, "-")
	value = strings.TrimPrefix(value, "-")

	whole, frac, _ := strings.Cut(value, ".")
	if whole == "" {
		whole = "0"
	}
	frac = strings.TrimRight(frac, "0")
	if len(frac) > int(decimals) {
		return nil, fmt.Errorf("value %q has more than %d fractional digits", value, decimals)
	}
	frac += strings.Repeat("0", int(decimals)-len(frac))

	raw, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("invalid decimal value %q", value)
	}
	if negative {
		raw.Neg(raw)
	}
	return raw, nil
}
