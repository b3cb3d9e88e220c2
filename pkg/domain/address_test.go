package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "stacksevents/pkg/domain-errors"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"mainnet principal", "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7", false},
		{"testnet principal", "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM", false},
		{"contract principal", "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7.ticketing-v1", false},
		{"placeholder", "SP_A", false},
		{"empty", "", true},
		{"whitespace", "SP A", true},
		{"unicode", "SP\u200BA", true},
		{"too long", strings.Repeat("S", maxAddressLength+1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAddress(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidAddress))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestAddress_Network(t *testing.T) {
	assert.Equal(t, NetworkMainnet, Address("SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7").Network())
	assert.Equal(t, NetworkMainnet, Address("SM3VDXK3WZZSA84XXFKAFAF15NNZX32CTSG82JFQ4").Network())
	assert.Equal(t, NetworkTestnet, Address("ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM").Network())
	assert.Equal(t, NetworkUnknown, Address("bc1qxyz").Network())
}

func TestAddress_Short(t *testing.T) {
	assert.Equal(t, "SP2J6Z...9EJ7", Address("SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7").Short())
	assert.Equal(t, "SP_A", Address("SP_A").Short())
}

func TestParseNetwork(t *testing.T) {
	n, err := ParseNetwork(" Testnet ")
	require.NoError(t, err)
	assert.Equal(t, NetworkTestnet, n)

	_, err = ParseNetwork("devnet")
	require.Error(t, err)
}
