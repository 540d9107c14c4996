package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestIssueProducesCompactJWT(t *testing.T) {
	svc := NewJWTService(testSecret, 24*time.Hour)

	token, err := svc.Issue(42, "jane@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parts := strings.Split(token, ".")
	assert.Len(t, parts, 3, "token must have header, claims and signature segments")
}

func TestVerifyRoundTrip(t *testing.T) {
	svc := NewJWTService(testSecret, 24*time.Hour)

	token, err := svc.Issue(42, "jane@x.com")
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "jane@x.com", claims.Email)
	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestVerifyTamperedSignature(t *testing.T) {
	svc := NewJWTService(testSecret, 24*time.Hour)

	token, err := svc.Issue(42, "jane@x.com")
	require.NoError(t, err)

	tampered := token[:len(token)-1]
	if strings.HasSuffix(token, "A") {
		tampered += "B"
	} else {
		tampered += "A"
	}

	_, err = svc.Verify(tampered)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewJWTService(testSecret, 24*time.Hour)
	verifier := NewJWTService([]byte("another-secret-another-secret-32"), 24*time.Hour)

	token, err := issuer.Issue(42, "jane@x.com")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestVerifyExpired(t *testing.T) {
	svc := NewJWTService(testSecret, -time.Second)

	token, err := svc.Issue(42, "jane@x.com")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyGarbage(t *testing.T) {
	svc := NewJWTService(testSecret, 24*time.Hour)

	for _, input := range []string{"", "not-a-token", "a.b", "a.b.c.d", "%%%.%%%.%%%"} {
		_, err := svc.Verify(input)
		assert.ErrorIs(t, err, ErrTokenMalformed, "input %q", input)
	}
}
