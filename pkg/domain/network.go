package domain

import (
	"fmt"
	"strings"
)

// Network selects which address variant a signer profile resolves to.
type Network string

const (
	NetworkUnknown Network = ""
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

// ParseNetwork accepts "mainnet" or "testnet" (case-insensitive).
func ParseNetwork(s string) (Network, error) {
	switch Network(strings.ToLower(strings.TrimSpace(s))) {
	case NetworkMainnet:
		return NetworkMainnet, nil
	case NetworkTestnet:
		return NetworkTestnet, nil
	}
	return NetworkUnknown, fmt.Errorf("unknown network: %q", s)
}

func (n Network) String() string {
	return string(n)
}
