package ticket

import (
	"context"
	"errors"
	"fmt"

	"stacksevents/internal/ledger"
	"stacksevents/internal/platform/postgres"
	"stacksevents/internal/ticketing/models"
	"stacksevents/pkg/domain"
	"stacksevents/pkg/platform/sentinel"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresSettlementStore keeps unsettled transactions in pending_settlements.
type PostgresSettlementStore struct {
	db postgres.TxBeginner
}

func NewPostgresSettlements(db postgres.TxBeginner) *PostgresSettlementStore {
	return &PostgresSettlementStore{db: db}
}

const settlementColumns = `tx_id, kind, event_id, address, quantity, ticket_id, recipient_address, price, currency, submitted_at`

func (s *PostgresSettlementStore) Save(ctx context.Context, p *models.Settlement) error {
	var ticketID *uuid.UUID
	if !p.TicketID.IsNil() {
		id := uuid.UUID(p.TicketID)
		ticketID = &id
	}
	_, err := postgres.Conn(ctx, s.db).Exec(ctx,
		`INSERT INTO pending_settlements (`+settlementColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		string(p.TxID), string(p.Kind), string(p.EventID), string(p.Address), p.Quantity,
		ticketID, string(p.Recipient), p.Price, p.Currency, p.SubmittedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert settlement: %w", err)
	}
	return nil
}

// Find locks the row when ctx carries a transaction, so concurrent re-checks
// of one tx apply it once.
func (s *PostgresSettlementStore) Find(ctx context.Context, id domain.TxID) (*models.Settlement, error) {
	return s.one(ctx, `SELECT `+settlementColumns+` FROM pending_settlements WHERE tx_id = $1 FOR UPDATE`, string(id))
}

func (s *PostgresSettlementStore) FindByTicket(ctx context.Context, id domain.TicketID) (*models.Settlement, error) {
	return s.one(ctx, `SELECT `+settlementColumns+` FROM pending_settlements
		WHERE ticket_id = $1 ORDER BY submitted_at ASC LIMIT 1`, uuid.UUID(id))
}

func (s *PostgresSettlementStore) List(ctx context.Context) ([]*models.Settlement, error) {
	rows, err := postgres.Conn(ctx, s.db).Query(ctx,
		`SELECT `+settlementColumns+` FROM pending_settlements ORDER BY submitted_at ASC, tx_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query settlements: %w", err)
	}
	defer rows.Close()

	var out []*models.Settlement
	for rows.Next() {
		p, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settlements: %w", err)
	}
	return out, nil
}

func (s *PostgresSettlementStore) Delete(ctx context.Context, id domain.TxID) error {
	tag, err := postgres.Conn(ctx, s.db).Exec(ctx, `DELETE FROM pending_settlements WHERE tx_id = $1`, string(id))
	if err != nil {
		return fmt.Errorf("delete settlement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresSettlementStore) one(ctx context.Context, query string, args ...any) (*models.Settlement, error) {
	p, err := scanSettlement(postgres.Conn(ctx, s.db).QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return p, err
}

func scanSettlement(row pgx.Row) (*models.Settlement, error) {
	var (
		p                                    models.Settlement
		txID, kind, eventID, addr, recipient string
		ticketID                             *uuid.UUID
	)
	err := row.Scan(&txID, &kind, &eventID, &addr, &p.Quantity, &ticketID, &recipient, &p.Price, &p.Currency, &p.SubmittedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan settlement: %w", err)
	}
	p.TxID = domain.TxID(txID)
	p.Kind = ledger.TxKind(kind)
	p.EventID = domain.EventID(eventID)
	p.Address = domain.Address(addr)
	p.Recipient = domain.Address(recipient)
	if ticketID != nil {
		p.TicketID = domain.TicketID(*ticketID)
	}
	p.SubmittedAt = p.SubmittedAt.UTC()
	return &p, nil
}
