package directory

import (
	"context"
	"errors"
	"fmt"

	"stacksevents/internal/platform/postgres"
	"stacksevents/internal/ticketing/models"
	"stacksevents/pkg/domain"
	"stacksevents/pkg/platform/sentinel"

	"github.com/jackc/pgx/v5"
)

// PostgresStore keeps the catalog in the events table. Decrements are a
// single conditional UPDATE so concurrent purchases cannot oversell.
type PostgresStore struct {
	db postgres.Querier
}

func NewPostgres(db postgres.Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

const listingColumns = `id, name, price_amount, currency, total_supply, remaining_supply, event_date`

func (s *PostgresStore) Upsert(ctx context.Context, l *models.EventListing) error {
	query := `
		INSERT INTO events (` + listingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			price_amount = EXCLUDED.price_amount,
			currency = EXCLUDED.currency,
			total_supply = EXCLUDED.total_supply,
			remaining_supply = EXCLUDED.remaining_supply,
			event_date = EXCLUDED.event_date
	`
	_, err := postgres.Conn(ctx, s.db).Exec(ctx, query,
		string(l.ID), l.Name, l.PriceAmount, l.Currency, l.TotalSupply, l.RemainingSupply, l.Date)
	if err != nil {
		return fmt.Errorf("upsert event: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.EventListing, error) {
	query := `SELECT ` + listingColumns + ` FROM events ORDER BY event_date ASC, id ASC`
	rows, err := postgres.Conn(ctx, s.db).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []*models.EventListing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.EventID) (*models.EventListing, error) {
	query := `SELECT ` + listingColumns + ` FROM events WHERE id = $1`
	return s.one(ctx, query, string(id))
}

func (s *PostgresStore) DecrementRemaining(ctx context.Context, id domain.EventID, n int) (*models.EventListing, error) {
	query := `
		UPDATE events SET remaining_supply = remaining_supply - $2
		WHERE id = $1 AND remaining_supply >= $2
		RETURNING ` + listingColumns
	l, err := s.one(ctx, query, string(id), n)
	if errors.Is(err, sentinel.ErrNotFound) {
		// Either the event is missing or the guard rejected the update.
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrInsufficient
	}
	return l, err
}

func (s *PostgresStore) IncrementRemaining(ctx context.Context, id domain.EventID, n int) (*models.EventListing, error) {
	query := `
		UPDATE events SET remaining_supply = LEAST(remaining_supply + $2, total_supply)
		WHERE id = $1
		RETURNING ` + listingColumns
	return s.one(ctx, query, string(id), n)
}

func (s *PostgresStore) Sync(ctx context.Context, id domain.EventID, remaining, total int) (*models.EventListing, error) {
	query := `
		UPDATE events SET total_supply = $3, remaining_supply = GREATEST(0, LEAST($2, $3))
		WHERE id = $1
		RETURNING ` + listingColumns
	return s.one(ctx, query, string(id), remaining, total)
}

func (s *PostgresStore) one(ctx context.Context, query string, args ...any) (*models.EventListing, error) {
	l, err := scanListing(postgres.Conn(ctx, s.db).QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return l, err
}

func scanListing(row pgx.Row) (*models.EventListing, error) {
	var (
		l  models.EventListing
		id string
	)
	err := row.Scan(&id, &l.Name, &l.PriceAmount, &l.Currency, &l.TotalSupply, &l.RemainingSupply, &l.Date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	l.ID = domain.EventID(id)
	l.Date = l.Date.UTC()
	return &l, nil
}
