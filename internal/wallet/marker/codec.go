// Package marker persists a signed hint of the last connected wallet so a
// reload can offer to restore the session without prompting again. A marker
// is never trusted on its own: the session re-checks it against the signer.
package marker

import (
	"crypto/sha256"
	"errors"
	"io"
	"time"

	"stacksevents/internal/wallet/models"
	"stacksevents/pkg/domain"
	dErrors "stacksevents/pkg/domain-errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

const (
	issuer = "stacksevents-wallet"
	// keyInfo binds the derived key to markers; bump it to invalidate every
	// outstanding marker.
	keyInfo = "stacksevents/wallet-marker/v1"
)

// Marker is the decoded content of a session marker.
type Marker struct {
	Address   domain.Address
	Network   domain.Network
	Provider  models.ProviderKind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type claims struct {
	Network  string `json:"net"`
	Provider string `json:"prv,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies markers with HS256.
type Codec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

type CodecOption func(*Codec)

func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec derives the HMAC key from secret with HKDF-SHA256 so the
// configured secret is never used as a signing key directly.
func NewCodec(secret string, ttl time.Duration, opts ...CodecOption) *Codec {
	c := &Codec{key: deriveKey(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func deriveKey(secret string) []byte {
	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		// HKDF only runs dry past 255 blocks.
		panic(err)
	}
	return key
}

func (c *Codec) TTL() time.Duration {
	return c.ttl
}

func (c *Codec) Encode(addr domain.Address, network domain.Network, provider models.ProviderKind) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Network:  network.String(),
		Provider: string(provider),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   addr.String(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign session marker")
	}
	return signed, nil
}

// Decode verifies signature, issuer and expiry. Any failure is CodeInvalidInput.
func (c *Codec) Decode(token string) (Marker, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return c.key, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(c.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Marker{}, dErrors.New(dErrors.CodeInvalidInput, "session marker has expired")
		}
		return Marker{}, dErrors.New(dErrors.CodeInvalidInput, "invalid session marker")
	}
	cl, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return Marker{}, dErrors.New(dErrors.CodeInvalidInput, "invalid session marker")
	}

	addr, err := domain.ParseAddress(cl.Subject)
	if err != nil {
		return Marker{}, err
	}
	network, err := domain.ParseNetwork(cl.Network)
	if err != nil {
		return Marker{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid session marker network")
	}
	m := Marker{
		Address:  addr,
		Network:  network,
		Provider: models.ProviderKind(cl.Provider),
	}
	if cl.IssuedAt != nil {
		m.IssuedAt = cl.IssuedAt.Time
	}
	if cl.ExpiresAt != nil {
		m.ExpiresAt = cl.ExpiresAt.Time
	}
	return m, nil
}
