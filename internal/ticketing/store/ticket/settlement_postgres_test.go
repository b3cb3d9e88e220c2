package ticket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stacksevents/internal/ledger"
	"stacksevents/pkg/domain"
	"stacksevents/pkg/platform/sentinel"
)

var settlementCols = []string{"tx_id", "kind", "event_id", "address", "quantity", "ticket_id", "recipient_address", "price", "currency", "submitted_at"}

func TestPostgresSettlementStore_Save(t *testing.T) {
	t.Run("inserts the row", func(t *testing.T) {
		mock, err := pgxmock.NewConn()
		require.NoError(t, err)
		defer mock.Close(t.Context())

		mock.ExpectExec("INSERT INTO pending_settlements").
			WithArgs("0x01", "purchase", "evt1", "SP_A", 2, pgxmock.AnyArg(), "", int64(50), "STX", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		p := newSettlement("0x01", ledger.TxPurchase)
		p.Quantity = 2
		err = NewPostgresSettlements(mock).Save(t.Context(), p)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate tx is a conflict", func(t *testing.T) {
		mock, err := pgxmock.NewConn()
		require.NoError(t, err)
		defer mock.Close(t.Context())

		mock.ExpectExec("INSERT INTO pending_settlements").WillReturnError(&pgconn.PgError{Code: "23505"})

		err = NewPostgresSettlements(mock).Save(t.Context(), newSettlement("0x01", ledger.TxPurchase))
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})
}

func TestPostgresSettlementStore_Find(t *testing.T) {
	submitted := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ticketID := uuid.New()

	t.Run("locks and scans a transfer", func(t *testing.T) {
		mock, err := pgxmock.NewConn()
		require.NoError(t, err)
		defer mock.Close(t.Context())

		mock.ExpectQuery("FROM pending_settlements WHERE tx_id = \\$1 FOR UPDATE").
			WithArgs("0x02").
			WillReturnRows(pgxmock.NewRows(settlementCols).
				AddRow("0x02", "transfer", "evt1", "SP_A", 1, &ticketID, "SP_B", int64(0), "", submitted))

		got, err := NewPostgresSettlements(mock).Find(t.Context(), "0x02")
		require.NoError(t, err)
		assert.Equal(t, ledger.TxTransfer, got.Kind)
		assert.Equal(t, domain.TicketID(ticketID), got.TicketID)
		assert.Equal(t, domain.Address("SP_B"), got.Recipient)
		assert.Equal(t, submitted, got.SubmittedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row is not found", func(t *testing.T) {
		mock, err := pgxmock.NewConn()
		require.NoError(t, err)
		defer mock.Close(t.Context())

		mock.ExpectQuery("FROM pending_settlements").WithArgs("0x09").WillReturnError(pgx.ErrNoRows)

		_, err = NewPostgresSettlements(mock).Find(t.Context(), "0x09")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestPostgresSettlementStore_Delete(t *testing.T) {
	mock, err := pgxmock.NewConn()
	require.NoError(t, err)
	defer mock.Close(t.Context())

	mock.ExpectExec("DELETE FROM pending_settlements").WithArgs("0x01").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM pending_settlements").WithArgs("0x01").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	store := NewPostgresSettlements(mock)
	require.NoError(t, store.Delete(t.Context(), "0x01"))
	assert.ErrorIs(t, store.Delete(t.Context(), "0x01"), sentinel.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
