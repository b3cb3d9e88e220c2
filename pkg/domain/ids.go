package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "stacksevents/pkg/domain-errors"
)

// TicketID identifies a single issued ticket.
type TicketID uuid.UUID

// NewTicketID returns a fresh random ticket ID.
func NewTicketID() TicketID {
	return TicketID(uuid.New())
}

// ParseTicketID parses a ticket ID at a trust boundary. The nil UUID is rejected.
func ParseTicketID(s string) (TicketID, error) {
	parsed, err := parseUUID(s, "ticket ID")
	if err != nil {
		return TicketID{}, err
	}
	return TicketID(parsed), nil
}

func (t TicketID) String() string {
	return uuid.UUID(t).String()
}

// IsNil reports whether the ID is the zero value.
func (t TicketID) IsNil() bool {
	return uuid.UUID(t) == uuid.Nil
}

// MarshalText implements encoding.TextMarshaler.
func (t TicketID) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TicketID) UnmarshalText(b []byte) error {
	parsed, err := ParseTicketID(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// EventID identifies an event listing in the catalog, e.g. "evt1".
type EventID string

const maxEventIDLength = 64

// ParseEventID validates an event ID from external input.
func ParseEventID(s string) (EventID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "event ID is required")
	}
	if len(s) > maxEventIDLength || !utf8.ValidString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "event ID is malformed")
	}
	for _, r := range s {
		if !isIdentRune(r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "event ID is malformed")
		}
	}
	return EventID(s), nil
}

func (e EventID) String() string {
	return string(e)
}

// IsNil reports whether the ID is empty.
func (e EventID) IsNil() bool {
	return e == ""
}

// TxID is a ledger transaction identifier as returned by the broadcaster.
type TxID string

func (t TxID) String() string {
	return string(t)
}

// IsNil reports whether the ID is empty.
func (t TxID) IsNil() bool {
	return t == ""
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return parsed, nil
}

func isIdentRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '_', r == '.':
		return true
	}
	return false
}
