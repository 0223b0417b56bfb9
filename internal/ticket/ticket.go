// Package ticket issues and checks the signed tickets that tie a client to
// the one session it created.
package ticket

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "tictactoe"

var ErrInvalidTicket = errors.New("invalid session ticket")

// Issuer signs HS256 tickets.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type claims struct {
	jwt.RegisteredClaims
}

// NewIssuer returns an Issuer whose tickets stay valid for ttl.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("ticket secret must not be empty")
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue returns a ticket for sessionID.
func (i *Issuer) Issue(sessionID string) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign ticket: %w", err)
	}
	return signed, nil
}

// Verify checks that raw is a valid ticket for sessionID.
func (i *Issuer) Verify(raw, sessionID string) error {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithSubject(sessionID),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}
	return nil
}
