package ticket

import (
	"context"
	"errors"
	"fmt"

	"stacksevents/internal/platform/postgres"
	"stacksevents/internal/ticketing/models"
	"stacksevents/pkg/domain"
	"stacksevents/pkg/platform/sentinel"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// PostgresStore keeps tickets in the tickets table and the transfer log in
// ticket_transfers.
type PostgresStore struct {
	db postgres.TxBeginner
}

func NewPostgres(db postgres.TxBeginner) *PostgresStore {
	return &PostgresStore{db: db}
}

const ticketColumns = `id, event_id, owner_address, purchased_at, price_at_purchase, currency, transferable, purchase_tx_id`

func (s *PostgresStore) CreateMany(ctx context.Context, tickets []*models.Ticket) error {
	return postgres.RunInTx(ctx, s.db, func(ctx context.Context) error {
		q := postgres.Conn(ctx, s.db)
		for _, t := range tickets {
			_, err := q.Exec(ctx, `INSERT INTO tickets (`+ticketColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				uuid.UUID(t.ID), string(t.EventID), string(t.Owner), t.PurchasedAt,
				t.PriceAtPurchase, t.Currency, t.Transferable, string(t.PurchaseTxID))
			if err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
					return ErrDuplicate
				}
				return fmt.Errorf("insert ticket: %w", err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.TicketID) (*models.Ticket, error) {
	return s.one(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, uuid.UUID(id))
}

func (s *PostgresStore) ListByOwner(ctx context.Context, owner domain.Address) ([]*models.Ticket, error) {
	rows, err := postgres.Conn(ctx, s.db).Query(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE owner_address = $1 ORDER BY purchased_at ASC, id ASC`,
		string(owner))
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	defer rows.Close()

	var out []*models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tickets: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindByOwner(ctx context.Context, owner domain.Address, eventID domain.EventID) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets
		WHERE owner_address = $1 AND ($2 = '' OR event_id = $2)
		ORDER BY purchased_at ASC, id ASC LIMIT 1`
	return s.one(ctx, query, string(owner), string(eventID))
}

// Execute locks the row with FOR UPDATE for the duration of validate and
// mutate. It joins a transaction already in ctx.
func (s *PostgresStore) Execute(ctx context.Context, id domain.TicketID, validate func(*models.Ticket) error, mutate func(*models.Ticket)) (*models.Ticket, error) {
	var out *models.Ticket
	err := postgres.RunInTx(ctx, s.db, func(ctx context.Context) error {
		t, err := s.one(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1 FOR UPDATE`, uuid.UUID(id))
		if err != nil {
			return err
		}
		if err := validate(t); err != nil {
			return err
		}
		mutate(t)
		_, err = postgres.Conn(ctx, s.db).Exec(ctx,
			`UPDATE tickets SET owner_address = $2, transferable = $3 WHERE id = $1`,
			uuid.UUID(id), string(t.Owner), t.Transferable)
		if err != nil {
			return fmt.Errorf("update ticket: %w", err)
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) AppendTransfer(ctx context.Context, rec models.TransferRecord) error {
	_, err := postgres.Conn(ctx, s.db).Exec(ctx,
		`INSERT INTO ticket_transfers (ticket_id, from_address, to_address, tx_id, transferred_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(rec.TicketID), string(rec.From), string(rec.To), string(rec.TxID), rec.TransferredAt)
	if err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListTransfers(ctx context.Context, id domain.TicketID) ([]models.TransferRecord, error) {
	if _, err := s.FindByID(ctx, id); err != nil {
		return nil, err
	}
	rows, err := postgres.Conn(ctx, s.db).Query(ctx,
		`SELECT from_address, to_address, tx_id, transferred_at FROM ticket_transfers
		WHERE ticket_id = $1 ORDER BY id ASC`, uuid.UUID(id))
	if err != nil {
		return nil, fmt.Errorf("query transfers: %w", err)
	}
	defer rows.Close()

	var out []models.TransferRecord
	for rows.Next() {
		var from, to, txID string
		rec := models.TransferRecord{TicketID: id}
		if err := rows.Scan(&from, &to, &txID, &rec.TransferredAt); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		rec.From, rec.To, rec.TxID = domain.Address(from), domain.Address(to), domain.TxID(txID)
		rec.TransferredAt = rec.TransferredAt.UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfers: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CountByEvent(ctx context.Context, eventID domain.EventID) (int, error) {
	var n int
	err := postgres.Conn(ctx, s.db).QueryRow(ctx, `SELECT count(*) FROM tickets WHERE event_id = $1`, string(eventID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count tickets: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) one(ctx context.Context, query string, args ...any) (*models.Ticket, error) {
	t, err := scanTicket(postgres.Conn(ctx, s.db).QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return t, err
}

func scanTicket(row pgx.Row) (*models.Ticket, error) {
	var (
		t                    models.Ticket
		id                   uuid.UUID
		eventID, owner, txID string
	)
	err := row.Scan(&id, &eventID, &owner, &t.PurchasedAt, &t.PriceAtPurchase, &t.Currency, &t.Transferable, &txID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan ticket: %w", err)
	}
	t.ID = domain.TicketID(id)
	t.EventID = domain.EventID(eventID)
	t.Owner = domain.Address(owner)
	t.PurchaseTxID = domain.TxID(txID)
	t.PurchasedAt = t.PurchasedAt.UTC()
	return &t, nil
}
