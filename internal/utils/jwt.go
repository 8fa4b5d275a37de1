package utils // package utils provides token, identifier and hashing helpers

import (
    "errors"
    "fmt"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens

    "github.com/iliyamo/picklepass/internal/booking"
)

// ErrInvalidAttemptToken is returned for tokens that are malformed, expired,
// signed with another key or bound to another profile.
var ErrInvalidAttemptToken = errors.New("invalid booking attempt token")

// AttemptClaims carries a booking attempt between HTTP calls.  The attempt
// rides in the token so the server keeps no per-attempt state; the subject
// binds it to the profile that started it.
type AttemptClaims struct {
    Attempt booking.Attempt `json:"attempt"`
    jwt.RegisteredClaims
}

// AttemptSigner signs and verifies attempt tokens with HS256.
type AttemptSigner struct {
    secret []byte
    ttl    time.Duration
    now    func() time.Time
}

// NewAttemptSigner returns a signer whose tokens live for ttl.
func NewAttemptSigner(secret string, ttl time.Duration) *AttemptSigner {
    if ttl <= 0 {
        ttl = 30 * time.Minute
    }
    return &AttemptSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign encodes a for profileID.  Every state change re-signs the attempt and
// restarts its lifetime.
func (s *AttemptSigner) Sign(profileID string, a *booking.Attempt) (string, error) {
    now := s.now().UTC()
    claims := AttemptClaims{
        Attempt: *a,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   profileID,
            ID:        a.BookingID,
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
        },
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString(s.secret)
    if err != nil {
        return "", fmt.Errorf("sign attempt: %w", err)
    }
    return signed, nil
}

// Parse verifies raw and returns the attempt it carries.  The token must
// have been issued to profileID.
func (s *AttemptSigner) Parse(profileID, raw string) (*booking.Attempt, error) {
    var claims AttemptClaims
    _, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
        return s.secret, nil
    },
        jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
        jwt.WithTimeFunc(s.now),
        jwt.WithExpirationRequired(),
    )
    if err != nil {
        return nil, fmt.Errorf("%w: %v", ErrInvalidAttemptToken, err)
    }
    if claims.Subject != profileID {
        return nil, fmt.Errorf("%w: issued to another profile", ErrInvalidAttemptToken)
    }
    a := claims.Attempt
    return &a, nil
}
