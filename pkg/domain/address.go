package domain

import (
	"strings"

	dErrors "stacksevents/pkg/domain-errors"
)

// Address identifies a blockchain account (a Stacks principal).
//
// Invariant: non-empty, at most maxAddressLength bytes, made only of
// ASCII letters, digits and the separators allowed in contract principals
// ('.', '-', '_'). Checksum validation is the signer's job; parsing only
// rejects structurally malformed input.
type Address string

const maxAddressLength = 128

// ParseAddress validates an address at a trust boundary.
func ParseAddress(s string) (Address, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidAddress, "address is required")
	}
	if len(s) > maxAddressLength {
		return "", dErrors.New(dErrors.CodeInvalidAddress, "address is too long")
	}
	for _, r := range s {
		if !isIdentRune(r) {
			return "", dErrors.New(dErrors.CodeInvalidAddress, "address contains invalid characters")
		}
	}
	return Address(s), nil
}

func (a Address) String() string {
	return string(a)
}

// IsNil reports whether the address is empty.
func (a Address) IsNil() bool {
	return a == ""
}

// Network infers the network variant from the version prefix. Standard
// principals start with SP/SM on mainnet and ST/SN on testnet.
func (a Address) Network() Network {
	s := strings.ToUpper(string(a))
	switch {
	case strings.HasPrefix(s, "SP"), strings.HasPrefix(s, "SM"):
		return NetworkMainnet
	case strings.HasPrefix(s, "ST"), strings.HasPrefix(s, "SN"):
		return NetworkTestnet
	}
	return NetworkUnknown
}

// Short renders the address as "SP1ABC...WXYZ" for display.
func (a Address) Short() string {
	s := string(a)
	if len(s) <= 12 {
		return s
	}
	return s[:6] + "..." + s[len(s)-4:]
}
