package client

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeToken builds a structurally valid token with the given payload. The
// signature segment is junk, which is fine: decoding never checks it.
func fakeToken(t *testing.T, claims Claims) string {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	return fmt.Sprintf("%s.%s.%s",
		header,
		base64.RawURLEncoding.EncodeToString(payload),
		base64.RawURLEncoding.EncodeToString([]byte("sig")))
}

func TestDecode(t *testing.T) {
	want := Claims{
		UserID:    42,
		Email:     "jane@example.com",
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
	}

	got := Decode(fakeToken(t, want))
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no dots", "abcdef"},
		{"two segments", "aaa.bbb"},
		{"four segments", "aaa.bbb.ccc.ddd"},
		{"payload not base64", "aaa.!!!.ccc"},
		{"payload not json", "aaa." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".ccc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, Decode(tt.token))
		})
	}
}

func TestDecodeToleratesPadding(t *testing.T) {
	payload := base64.URLEncoding.EncodeToString([]byte(`{"userId":7,"email":"a@x.com","iat":1,"exp":2}`))
	got := Decode("hdr." + payload + ".sig")
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.UserID)
}

func TestIsExpired(t *testing.T) {
	now := time.Now().Unix()

	assert.True(t, IsExpired(nil))
	assert.True(t, IsExpired(&Claims{ExpiresAt: 0}))
	assert.True(t, IsExpired(&Claims{ExpiresAt: now - 60}))
	assert.False(t, IsExpired(&Claims{ExpiresAt: now + 3600}))
}

func TestFileTokenStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	store := &FileTokenStore{path: path}

	// Missing file reads as no token, not an error.
	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save("some.jwt.token"))

	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "some.jwt.token", token)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear(), "clearing twice must not fail")

	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestSessionAuthenticatedClearsExpiredToken(t *testing.T) {
	store := &FileTokenStore{path: filepath.Join(t.TempDir(), "token")}
	session := NewSession(store)

	expired := fakeToken(t, Claims{
		UserID:    1,
		Email:     "jane@example.com",
		IssuedAt:  time.Now().Add(-25 * time.Hour).Unix(),
		ExpiresAt: time.Now().Add(-time.Hour).Unix(),
	})
	require.NoError(t, session.Store(expired))

	assert.Nil(t, session.Authenticated())
	assert.Empty(t, session.Token(), "expired token must be removed from storage")
}

func TestSessionAuthenticated(t *testing.T) {
	store := &FileTokenStore{path: filepath.Join(t.TempDir(), "token")}
	session := NewSession(store)

	assert.Nil(t, session.Authenticated(), "fresh session has no identity")

	valid := fakeToken(t, Claims{
		UserID:    9,
		Email:     "jane@example.com",
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
	})
	require.NoError(t, session.Store(valid))

	claims := session.Authenticated()
	require.NotNil(t, claims)
	assert.Equal(t, int64(9), claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)

	require.NoError(t, session.Logout())
	assert.Nil(t, session.Authenticated())
}
