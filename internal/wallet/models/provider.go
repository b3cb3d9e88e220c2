package models

import (
	"slices"
	"strings"
)

// ProviderKind identifies one supported signer integration.
type ProviderKind string

const (
	ProviderHiro    ProviderKind = "hiro"
	ProviderXverse  ProviderKind = "xverse"
	ProviderLeather ProviderKind = "leather"
)

// KnownProviders lists every integration in preference order.
var KnownProviders = []ProviderKind{ProviderHiro, ProviderXverse, ProviderLeather}

// InjectedGlobals returns the global object paths whose presence proves the
// extension is installed.
func (k ProviderKind) InjectedGlobals() []string {
	switch k {
	case ProviderHiro:
		return []string{"StacksProvider"}
	case ProviderXverse:
		return []string{"XverseProviders.StacksProvider"}
	case ProviderLeather:
		return []string{"LeatherProvider", "btc"}
	}
	return nil
}

// ParseProviderKind is case-insensitive.
func ParseProviderKind(s string) (ProviderKind, bool) {
	k := ProviderKind(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(KnownProviders, k) {
		return k, true
	}
	return "", false
}

// ProviderSet is the detector's answer. The zero value is empty.
type ProviderSet struct {
	kinds []ProviderKind
}

// NewProviderSet keeps KnownProviders order and drops duplicates.
func NewProviderSet(kinds ...ProviderKind) ProviderSet {
	var out []ProviderKind
	for _, known := range KnownProviders {
		if slices.Contains(kinds, known) {
			out = append(out, known)
		}
	}
	return ProviderSet{kinds: out}
}

func (s ProviderSet) Empty() bool {
	return len(s.kinds) == 0
}

func (s ProviderSet) Has(k ProviderKind) bool {
	return slices.Contains(s.kinds, k)
}

// Kinds returns a copy in preference order.
func (s ProviderSet) Kinds() []ProviderKind {
	return slices.Clone(s.kinds)
}

// Preferred returns the first available provider.
func (s ProviderSet) Preferred() (ProviderKind, bool) {
	if len(s.kinds) == 0 {
		return "", false
	}
	return s.kinds[0], true
}
