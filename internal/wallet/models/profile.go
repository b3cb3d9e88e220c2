package models

import (
	"stacksevents/pkg/domain"
	dErrors "stacksevents/pkg/domain-errors"
)

// AppDetails is shown by the wallet in its authorization prompt.
type AppDetails struct {
	Name    string
	IconURL string
	Network domain.Network
}

// StxAddress carries both network variants a signer returns.
type StxAddress struct {
	Mainnet string `json:"mainnet"`
	Testnet string `json:"testnet"`
}

// Profile is what the signer hands back on approval.
type Profile struct {
	StxAddress StxAddress   `json:"stxAddress"`
	Provider   ProviderKind `json:"provider,omitempty"`
}

// AddressFor picks the variant for network and validates it.
func (p Profile) AddressFor(network domain.Network) (domain.Address, error) {
	var raw string
	switch network {
	case domain.NetworkMainnet:
		raw = p.StxAddress.Mainnet
	case domain.NetworkTestnet:
		raw = p.StxAddress.Testnet
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown network")
	}
	if raw == "" {
		return "", dErrors.New(dErrors.CodeNotAuthorized, "wallet returned no "+network.String()+" address")
	}
	return domain.ParseAddress(raw)
}
