// Package evm holds the small amount of EVM knowledge RugRadar needs:
// address validation/normalization and the chain identifiers the vendor accepts.
package evm

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ZeroAddress is the mint/burn address in lower-case hex.
var ZeroAddress = strings.ToLower(common.Address{}.Hex())

// IsAddress reports whether s is a 0x-prefixed, 40 hex digit address.
func IsAddress(s string) bool {
	if len(s) != 2+2*common.AddressLength || !(strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		return false
	}
	return common.IsHexAddress(s)
}

// Normalize returns the lower-case form of an address and whether it was valid.
func Normalize(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !IsAddress(s) {
		return "", false
	}
	return strings.ToLower(common.HexToAddress(s).Hex()), true
}

// IsZero reports whether s is the zero address (or empty).
func IsZero(s string) bool {
	if s == "" {
		return true
	}
	n, ok := Normalize(s)
	return ok && n == ZeroAddress
}

// Checksum renders an address in EIP-55 mixed case; invalid input is returned as is.
func Checksum(s string) string {
	if !IsAddress(s) {
		return s
	}
	return common.HexToAddress(s).Hex()
}

// chains lists the chain identifiers accepted by the transfer and price endpoints.
var chains = map[string]string{
	"eth":       "0x1",
	"sepolia":   "0xaa36a7",
	"bsc":       "0x38",
	"polygon":   "0x89",
	"avalanche": "0xa86a",
	"fantom":    "0xfa",
	"cronos":    "0x19",
	"arbitrum":  "0xa4b1",
	"optimism":  "0xa",
	"base":      "0x2105",
	"linea":     "0xe708",
	"gnosis":    "0x64",
}

// IsChain accepts both the short names and their hex chain ids.
func IsChain(chain string) bool {
	c := strings.ToLower(strings.TrimSpace(chain))
	if _, ok := chains[c]; ok {
		return true
	}
	for _, id := range chains {
		if id == c {
			return true
		}
	}
	return false
}

var explorers = map[string]string{
	"eth":       "https://etherscan.io",
	"sepolia":   "https://sepolia.etherscan.io",
	"bsc":       "https://bscscan.com",
	"polygon":   "https://polygonscan.com",
	"avalanche": "https://snowtrace.io",
	"fantom":    "https://ftmscan.com",
	"cronos":    "https://cronoscan.com",
	"arbitrum":  "https://arbiscan.io",
	"optimism":  "https://optimistic.etherscan.io",
	"base":      "https://basescan.org",
	"linea":     "https://lineascan.build",
	"gnosis":    "https://gnosisscan.io",
}

// ChainName maps a hex chain id to its short name. Short names are returned lower-cased.
func ChainName(chain string) string {
	c := strings.ToLower(strings.TrimSpace(chain))
	for name, id := range chains {
		if id == c {
			return name
		}
	}
	return c
}

// ExplorerURL is the block explorer base for chain, etherscan when unknown.
func ExplorerURL(chain string) string {
	if u, ok := explorers[ChainName(chain)]; ok {
		return u
	}
	return explorers["eth"]
}
