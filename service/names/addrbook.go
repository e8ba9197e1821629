package names

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// AddressBook is a file-backed Resolver mapping addresses to display names.
// It stands in for the external naming collaborator in development and
// tests; production deployments plug their own Resolver implementation.
type AddressBook struct {
	names map[common.Address]string
}

// NewAddressBook builds an AddressBook from in-memory entries. A nil map
// yields a book that knows no names.
func NewAddressBook(entries map[common.Address]string) *AddressBook {
	names := make(map[common.Address]string, len(entries))
	for addr, name := range entries {
		names[addr] = name
	}
	return &AddressBook{names: names}
}

// LoadAddressBook reads a JSON file of the form {"0xabc...": "Uniswap Router"}.
// Address keys are normalized, so any hex casing matches.
func LoadAddressBook(path string) (*AddressBook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read address book: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse address book %s: %w", path, err)
	}

	book := &AddressBook{names: make(map[common.Address]string, len(raw))}
	for addr, name := range raw {
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("address book %s: invalid address %q", path, addr)
		}
		if strings.TrimSpace(name) == "" {
			continue
		}
		book.names[common.HexToAddress(addr)] = name
	}
	return book, nil
}

// LookUpName returns the name registered for the address, or "" when the
// address is unknown. It never fails.
func (b *AddressBook) LookUpName(ctx context.Context, address common.Address, network string) (string, error) {
	return b.names[address], nil
}
