package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tasktrack/tasktrack/internal/rbac"
)

// DefaultTokenTTL is the fixed validity of issued bearer tokens.
const DefaultTokenTTL = 24 * time.Hour

var (
	// ErrTokenExpired is returned once the current time reaches the token expiry.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrTokenMalformed covers bad signatures, unparseable tokens and bad claims.
	ErrTokenMalformed = errors.New("auth: token malformed")
)

// Claims is the verified content of a bearer token.
type Claims struct {
	SubjectID string
	Role      rbac.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// tokenClaims is the wire shape: _id and role next to the registered iat/exp.
type tokenClaims struct {
	ID   string `json:"_id"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256 bearer tokens.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// CodecOption customises a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock overrides the codec clock.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// WithTTL overrides the token lifetime.
func WithTTL(ttl time.Duration) CodecOption {
	return func(c *TokenCodec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewTokenCodec builds a codec around the server signing secret.
func NewTokenCodec(secret []byte, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: signing secret must not be empty")
	}
	c := &TokenCodec{
		secret: append([]byte(nil), secret...),
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs a token for subjectID carrying role.
func (c *TokenCodec) Issue(subjectID string, role rbac.Role) (string, error) {
	if subjectID == "" {
		return "", errors.New("auth: subject id must not be empty")
	}
	if !role.Valid() {
		return "", fmt.Errorf("auth: issue: %w", rbac.ErrUnknownRole)
	}
	now := c.now().Truncate(time.Second)
	claims := tokenClaims{
		ID:   subjectID,
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of token. A token is valid while
// now < exp, compared in whole seconds with no leeway.
func (c *TokenCodec) Verify(token string) (Claims, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	if !parsed.Valid || claims.ExpiresAt == nil {
		return Claims{}, fmt.Errorf("%w: missing expiry", ErrTokenMalformed)
	}
	if c.now().Unix() >= claims.ExpiresAt.Unix() {
		return Claims{}, ErrTokenExpired
	}
	if claims.ID == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrTokenMalformed)
	}
	role, err := rbac.ParseRole(claims.Role)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	out := Claims{
		SubjectID: claims.ID,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
