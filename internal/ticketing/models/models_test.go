package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "stacksevents/pkg/domain-errors"
)

var march = time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

func TestNewEventListing(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		remaining int
		price     int64
		wantErr   bool
	}{
		{"valid", 100, 25, 50, false},
		{"sold out", 30, 0, 25, false},
		{"remaining above total", 10, 11, 50, true},
		{"negative remaining", 10, -1, 50, true},
		{"negative price", 10, 5, -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewEventListing("evt1", "Tech Conference 2025", tt.price, "STX", tt.total, tt.remaining, march)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.total-tt.remaining, l.Sold())
		})
	}
}

func TestEventListing_Availability(t *testing.T) {
	l := &EventListing{TotalSupply: 50}

	l.RemainingSupply = 0
	assert.Equal(t, AvailabilitySoldOut, l.Availability())
	l.RemainingSupply = 5
	assert.Equal(t, AvailabilityFewLeft, l.Availability())
	l.RemainingSupply = 10
	assert.Equal(t, AvailabilityFewLeft, l.Availability())
	l.RemainingSupply = 11
	assert.Equal(t, AvailabilityAvailable, l.Availability())
}

func TestEventListing_Ordering(t *testing.T) {
	a := &EventListing{ID: "evt2", Date: march}
	b := &EventListing{ID: "evt1", Date: march}
	c := &EventListing{ID: "evt0", Date: march.Add(24 * time.Hour)}

	assert.True(t, b.Before(a))
	assert.True(t, a.Before(c))
	assert.False(t, c.Before(b))
}

func TestTicket_CanTransfer(t *testing.T) {
	ticket := &Ticket{Owner: "SP_A", Transferable: true}

	assert.NoError(t, ticket.CanTransfer("SP_A", "SP_B"))
	assert.True(t, dErrors.HasCode(ticket.CanTransfer("SP_A", "SP_A"), dErrors.CodeSelfTransferNotAllowed))
	assert.True(t, dErrors.HasCode(ticket.CanTransfer("SP_C", "SP_B"), dErrors.CodeNotAuthorized))

	ticket.Transferable = false
	assert.True(t, dErrors.HasCode(ticket.CanTransfer("SP_A", "SP_B"), dErrors.CodeNotTransferable))
}
