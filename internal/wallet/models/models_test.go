package models

import (
	"errors"
	"testing"

	"stacksevents/pkg/domain"
	dErrors "stacksevents/pkg/domain-errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionState_Variants(t *testing.T) {
	assert.True(t, Disconnected().CanConnect())
	assert.False(t, Connecting().CanConnect())

	c := Connected("ST1PQ", domain.NetworkTestnet, ProviderHiro)
	assert.True(t, c.IsConnected())
	assert.False(t, c.CanConnect())

	f := Failed(dErrors.New(dErrors.CodeCancelled, "user rejected"))
	assert.Equal(t, StatusError, f.Status)
	assert.Equal(t, dErrors.CodeCancelled, f.Reason)
	assert.True(t, f.CanConnect())
	assert.Empty(t, f.Address)

	uncoded := Failed(errors.New("socket closed"))
	assert.Equal(t, dErrors.CodeInternal, uncoded.Reason)
}

func TestProviderSet_OrderAndDedupe(t *testing.T) {
	set := NewProviderSet(ProviderLeather, ProviderHiro, ProviderLeather, "metamask")
	assert.Equal(t, []ProviderKind{ProviderHiro, ProviderLeather}, set.Kinds())
	assert.True(t, set.Has(ProviderLeather))
	assert.False(t, set.Has(ProviderXverse))

	preferred, ok := set.Preferred()
	require.True(t, ok)
	assert.Equal(t, ProviderHiro, preferred)

	_, ok = ProviderSet{}.Preferred()
	assert.False(t, ok)
	assert.True(t, ProviderSet{}.Empty())
}

func TestParseProviderKind(t *testing.T) {
	k, ok := ParseProviderKind(" Xverse ")
	assert.True(t, ok)
	assert.Equal(t, ProviderXverse, k)

	_, ok = ParseProviderKind("phantom")
	assert.False(t, ok)
}

func TestProfile_AddressFor(t *testing.T) {
	p := Profile{StxAddress: StxAddress{
		Mainnet: "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7",
		Testnet: "ST2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKQ9H6DPR",
	}}

	addr, err := p.AddressFor(domain.NetworkMainnet)
	require.NoError(t, err)
	assert.Equal(t, domain.NetworkMainnet, addr.Network())

	addr, err = p.AddressFor(domain.NetworkTestnet)
	require.NoError(t, err)
	assert.Equal(t, domain.NetworkTestnet, addr.Network())

	_, err = Profile{}.AddressFor(domain.NetworkTestnet)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotAuthorized))

	_, err = Profile{StxAddress: StxAddress{Testnet: "not an address!"}}.AddressFor(domain.NetworkTestnet)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidAddress))
}
