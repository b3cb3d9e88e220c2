package models

import (
	"strings"
	"time"

	"stacksevents/pkg/domain"
	dErrors "stacksevents/pkg/domain-errors"
)

// Availability is the label the catalog shows next to a listing.
type Availability string

const (
	AvailabilitySoldOut   Availability = "sold_out"
	AvailabilityFewLeft   Availability = "few_left"
	AvailabilityAvailable Availability = "available"
)

// fewLeftPercent is the share of total supply at or below which a listing
// is shown as running low.
const fewLeftPercent = 20

// EventListing is one event in the catalog. PriceAmount is in whole units of
// Currency.
//
// Invariant: 0 <= RemainingSupply <= TotalSupply.
type EventListing struct {
	ID              domain.EventID
	Name            string
	PriceAmount     int64
	Currency        string
	TotalSupply     int
	RemainingSupply int
	Date            time.Time
}

// NewEventListing validates every field and the supply invariant.
func NewEventListing(id domain.EventID, name string, price int64, currency string, total, remaining int, date time.Time) (*EventListing, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "event ID is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "event name is required")
	}
	if price < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "price cannot be negative")
	}
	if currency == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "currency is required")
	}
	if total < 0 || remaining < 0 || remaining > total {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "remaining supply must be between 0 and total supply")
	}
	if date.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "event date is required")
	}
	return &EventListing{
		ID:              id,
		Name:            name,
		PriceAmount:     price,
		Currency:        currency,
		TotalSupply:     total,
		RemainingSupply: remaining,
		Date:            date.UTC(),
	}, nil
}

// Sold is the number of tickets issued so far.
func (e *EventListing) Sold() int {
	return e.TotalSupply - e.RemainingSupply
}

func (e *EventListing) Availability() Availability {
	switch {
	case e.RemainingSupply == 0:
		return AvailabilitySoldOut
	case e.RemainingSupply*100 <= e.TotalSupply*fewLeftPercent:
		return AvailabilityFewLeft
	default:
		return AvailabilityAvailable
	}
}

// Before orders listings by date, then ID.
func (e *EventListing) Before(other *EventListing) bool {
	if !e.Date.Equal(other.Date) {
		return e.Date.Before(other.Date)
	}
	return e.ID < other.ID
}
