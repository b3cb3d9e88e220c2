package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches outermost code", func(t *testing.T) {
		err := New(CodeOutOfInventory, "sold out")
		assert.True(t, HasCode(err, CodeOutOfInventory))
		assert.False(t, HasCode(err, CodeInternal))
	})

	t.Run("sees through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("purchase: %w", New(CodeNotConnected, "connect a wallet"))
		assert.True(t, Is(err, CodeNotConnected))
	})

	t.Run("uncoded and nil errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.False(t, HasCode(nil, CodeInternal))
	})

	t.Run("wrap keeps cause reachable", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Wrap(cause, CodeTransactionFailed, "ledger rejected transaction")
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, CodeTransactionFailed, CodeOf(err))
		assert.Contains(t, err.Error(), "connection reset")
	})
}

func TestCodeOf_DefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	assert.Equal(t, "internal error", Message(errors.New("plain")))
}

func TestIsAmbiguous(t *testing.T) {
	assert.True(t, IsAmbiguous(New(CodeTransactionTimeout, "pending")))
	assert.False(t, IsAmbiguous(New(CodeTransactionFailed, "rejected")))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidAddress:         http.StatusBadRequest,
		CodeNotConnected:           http.StatusUnauthorized,
		CodeNotAuthorized:          http.StatusForbidden,
		CodeOutOfInventory:         http.StatusConflict,
		CodeSelfTransferNotAllowed: http.StatusConflict,
		CodeNotTransferable:        http.StatusUnprocessableEntity,
		CodeTransactionFailed:      http.StatusBadGateway,
		CodeTransactionTimeout:     http.StatusGatewayTimeout,
		CodeCancelled:              499,
		Code("unknown"):            http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), string(code))
	}
}
