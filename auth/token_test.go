package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keep-notes/config"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTokenService(t *testing.T, alg string) *TokenService {
	t.Helper()
	svc, err := NewTokenService(&config.Config{SecretKey: "test-secret", Algorithm: alg})
	require.NoError(t, err)
	return svc.WithClock(fixedClock(t0))
}

func TestNewTokenService_RejectsNonHMAC(t *testing.T) {
	for _, alg := range []string{"RS256", "none", "bogus"} {
		_, err := NewTokenService(&config.Config{SecretKey: "k", Algorithm: alg})
		assert.Error(t, err, alg)
	}
}

func TestIssueValidate_RoundTrip(t *testing.T) {
	svc := newTokenService(t, "HS256")

	token, err := svc.Issue("user-1", 30*time.Minute)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, t0.Add(30*time.Minute), claims.ExpiresAt.Time.UTC())
	assert.Equal(t, t0, claims.IssuedAt.Time.UTC())
}

func TestIssue_DefaultTTL(t *testing.T) {
	svc := newTokenService(t, "HS256")

	token, err := svc.Issue("user-1", 0)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(DefaultTTL), claims.ExpiresAt.Time.UTC())
}

func TestIssue_UniqueTokenIDs(t *testing.T) {
	svc := newTokenService(t, "HS256")
	a, err := svc.Issue("user-1", time.Minute)
	require.NoError(t, err)
	b, err := svc.Issue("user-1", time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestValidate_ExpiryBoundary(t *testing.T) {
	svc := newTokenService(t, "HS256")
	ttl := 10 * time.Minute

	token, err := svc.Issue("user-1", ttl)
	require.NoError(t, err)

	_, err = svc.WithClock(fixedClock(t0.Add(ttl - time.Second))).Validate(token)
	assert.NoError(t, err, "token should be valid just before expiry")

	_, err = svc.WithClock(fixedClock(t0.Add(ttl + time.Second))).Validate(token)
	require.Error(t, err, "token should be invalid just after expiry")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidate_ExpiryBoundary_SubSecondIssue(t *testing.T) {
	issued := t0.Add(900 * time.Millisecond)
	svc := newTokenService(t, "HS256").WithClock(fixedClock(issued))
	ttl := 10 * time.Minute

	token, err := svc.Issue("user-1", ttl)
	require.NoError(t, err)

	claims, err := svc.WithClock(fixedClock(issued.Add(ttl - 500*time.Millisecond))).Validate(token)
	require.NoError(t, err, "token should be valid just before issue+ttl")
	assert.False(t, claims.ExpiresAt.Time.Before(issued.Add(ttl)))

	_, err = svc.WithClock(fixedClock(issued.Add(ttl + 2*time.Second))).Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidate_Rejections(t *testing.T) {
	svc := newTokenService(t, "HS256")
	valid, err := svc.Issue("user-1", time.Hour)
	require.NoError(t, err)

	otherSecret, err := NewTokenService(&config.Config{SecretKey: "other-secret", Algorithm: "HS256"})
	require.NoError(t, err)
	foreign, err := otherSecret.WithClock(fixedClock(t0)).Issue("user-1", time.Hour)
	require.NoError(t, err)

	hs512 := newTokenService(t, "HS512")
	wrongAlg, err := hs512.Issue("user-1", time.Hour)
	require.NoError(t, err)

	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(t0.Add(time.Hour)),
	}}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(t0.Add(time.Hour)),
	}}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: "user-1",
	}}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	tests := map[string]string{
		"garbage":          "not-a-token",
		"empty":            "",
		"wrong secret":     foreign,
		"wrong algorithm":  wrongAlg,
		"alg none":         unsigned,
		"missing subject":  noSubject,
		"missing expiry":   noExpiry,
		"tampered payload": tampered,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Validate(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
