package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrack/tasktrack/internal/rbac"
)

var testSecret = []byte("test-signing-secret")

func newTestCodec(t *testing.T, now *time.Time) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(testSecret, WithClock(fixedClock(now)))
	require.NoError(t, err)
	return codec
}

func TestNewTokenCodecRejectsEmptySecret(t *testing.T) {
	_, err := NewTokenCodec(nil)
	require.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 500, time.UTC)
	codec := newTestCodec(t, &now)

	token, err := codec.Issue("u-1", rbac.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.SubjectID)
	assert.Equal(t, rbac.RoleAdmin, claims.Role)
	assert.Equal(t, now.Truncate(time.Second).Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, now.Add(DefaultTokenTTL).Unix(), claims.ExpiresAt.Unix())
}

func TestTokenExpiryBoundary(t *testing.T) {
	issued := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	now := issued
	codec := newTestCodec(t, &now)

	token, err := codec.Issue("u-1", rbac.RoleUser)
	require.NoError(t, err)

	now = issued.Add(DefaultTokenTTL - time.Second)
	_, err = codec.Verify(token)
	require.NoError(t, err)

	now = issued.Add(DefaultTokenTTL)
	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	now = issued.Add(DefaultTokenTTL + time.Hour)
	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenCustomTTL(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	codec, err := NewTokenCodec(testSecret, WithClock(fixedClock(&now)), WithTTL(time.Minute))
	require.NoError(t, err)

	token, err := codec.Issue("u-1", rbac.RoleUser)
	require.NoError(t, err)
	now = now.Add(time.Minute)
	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenRejectsTampering(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, &now)
	token, err := codec.Issue("u-1", rbac.RoleUser)
	require.NoError(t, err)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"_id":  "u-1",
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	forgedParts := strings.Split(forged, ".")
	spliced := parts[0] + "." + forgedParts[1] + "." + parts[2]

	cases := map[string]string{
		"garbage":      "not-a-token",
		"empty":        "",
		"wrong secret": forged,
		"payload swap": spliced,
		"truncated":    parts[0] + "." + parts[1],
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Verify(raw)
			assert.ErrorIs(t, err, ErrTokenMalformed)
		})
	}
}

func TestTokenRejectsNoneAlgorithm(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, &now)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"_id":  "u-1",
		"role": "admin",
		"exp":  now.Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = codec.Verify(unsigned)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenRejectsBadClaims(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, &now)

	sign := func(claims jwt.MapClaims) string {
		out, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
		require.NoError(t, err)
		return out
	}
	exp := now.Add(time.Hour).Unix()

	cases := map[string]jwt.MapClaims{
		"missing expiry":  {"_id": "u-1", "role": "user"},
		"missing subject": {"role": "user", "exp": exp},
		"unknown role":    {"_id": "u-1", "role": "root", "exp": exp},
		"empty role":      {"_id": "u-1", "exp": exp},
	}
	for name, claims := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Verify(sign(claims))
			assert.ErrorIs(t, err, ErrTokenMalformed)
		})
	}
}

func TestIssueRejectsUnknownRole(t *testing.T) {
	now := time.Now()
	codec := newTestCodec(t, &now)

	_, err := codec.Issue("u-1", rbac.Role("root"))
	assert.ErrorIs(t, err, rbac.ErrUnknownRole)

	_, err = codec.Issue("", rbac.RoleUser)
	assert.Error(t, err)
}
