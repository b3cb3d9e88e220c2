package postgres

import (
	"context"
	"fmt"

	audit "stacksevents/pkg/platform/audit"
	txcontext "stacksevents/pkg/platform/tx"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store implements audit.Store on the audit_events table. Appends join the
// caller's transaction when one is in context, so an audit row commits or
// rolls back with the ticket change it describes.
type Store struct {
	db querier
}

func New(db querier) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const selectColumns = `category, occurred_at, address, counterparty, action,
	event_id, ticket_id, tx_id, quantity, reason, request_id`

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (
			id, category, occurred_at, address, counterparty, action,
			event_id, ticket_id, tx_id, quantity, reason, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.conn(ctx).Exec(ctx, query,
		uuid.New(),
		string(event.Category),
		event.Timestamp,
		event.Address,
		event.Counterparty,
		event.Action,
		event.EventID,
		event.TicketID,
		event.TxID,
		event.Quantity,
		event.Reason,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByAddress returns events where the address acted or received, oldest first.
func (s *Store) ListByAddress(ctx context.Context, address string) ([]audit.Event, error) {
	query := `SELECT ` + selectColumns + `
		FROM audit_events
		WHERE address = $1 OR counterparty = $1
		ORDER BY occurred_at ASC`
	rows, err := s.conn(ctx).Query(ctx, query, address)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	return scanEvents(rows)
}

// ListRecent returns the newest limit events, oldest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `SELECT ` + selectColumns + ` FROM (
			SELECT * FROM audit_events ORDER BY occurred_at DESC LIMIT $1
		) recent
		ORDER BY occurred_at ASC`
	rows, err := s.conn(ctx).Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent audit events: %w", err)
	}
	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]audit.Event, error) {
	defer rows.Close()
	var events []audit.Event
	for rows.Next() {
		var (
			e        audit.Event
			category string
		)
		if err := rows.Scan(
			&category, &e.Timestamp, &e.Address, &e.Counterparty, &e.Action,
			&e.EventID, &e.TicketID, &e.TxID, &e.Quantity, &e.Reason, &e.RequestID,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
