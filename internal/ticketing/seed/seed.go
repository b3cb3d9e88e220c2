// Package seed loads the event catalog from YAML into a directory store.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"stacksevents/internal/ticketing/models"
	"stacksevents/pkg/domain"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	Currency string       `yaml:"currency"`
	Events   []eventEntry `yaml:"events"`
}

type eventEntry struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Price     int64  `yaml:"price"`
	Currency  string `yaml:"currency"`
	Total     int    `yaml:"total"`
	Remaining *int   `yaml:"remaining"`
	Date      string `yaml:"date"`
}

// Upserter is the directory write used for seeding.
type Upserter interface {
	Upsert(ctx context.Context, listing *models.EventListing) error
}

// Default parses the embedded catalog.
func Default() ([]*models.EventListing, error) {
	return Parse(defaultCatalog)
}

// LoadFile parses the catalog at path, or the embedded one when path is empty.
func LoadFile(path string) ([]*models.EventListing, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes a catalog strictly; unknown keys are an error. An entry
// without remaining starts fully available.
func Parse(raw []byte) ([]*models.EventListing, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var file catalogFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[string]bool, len(file.Events))
	out := make([]*models.EventListing, 0, len(file.Events))
	for i, e := range file.Events {
		id, err := domain.ParseEventID(e.ID)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("catalog entry %d: duplicate event id %q", i, e.ID)
		}
		seen[e.ID] = true

		date, err := time.Parse(time.DateOnly, e.Date)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %s: date must be YYYY-MM-DD: %w", e.ID, err)
		}
		currency := e.Currency
		if currency == "" {
			currency = file.Currency
		}
		remaining := e.Total
		if e.Remaining != nil {
			remaining = *e.Remaining
		}
		l, err := models.NewEventListing(id, e.Name, e.Price, currency, e.Total, remaining, date)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %s: %w", e.ID, err)
		}
		out = append(out, l)
	}
	return out, nil
}

// Apply upserts every listing.
func Apply(ctx context.Context, store Upserter, listings []*models.EventListing) error {
	for _, l := range listings {
		if err := store.Upsert(ctx, l); err != nil {
			return fmt.Errorf("seed event %s: %w", l.ID, err)
		}
	}
	return nil
}
