package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// errorVerifier forces a specific verification result.
type errorVerifier struct {
	err error
}

func (v errorVerifier) Issue(int64, string) (string, error) { return "", nil }
func (v errorVerifier) Verify(string) (*Claims, error)      { return nil, v.err }

func okHandler(t *testing.T, gotIdentity *Identity) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		require.True(t, ok, "identity must be attached")
		*gotIdentity = identity
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(mw *Middleware, next http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/users/profile", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	mw.RequireAuth(next).ServeHTTP(rec, req)
	return rec
}

func TestRequireAuthMissingToken(t *testing.T) {
	store := newMemUserStore()
	mw := NewMiddleware(NewJWTService(testSecret, time.Hour), store)

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer "} {
		rec := doRequest(mw, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("handler must not run")
		}), header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		assert.Contains(t, rec.Body.String(), "Access token required")
	}
}

func TestRequireAuthExpiredToken(t *testing.T) {
	store := newMemUserStore()
	expired := NewJWTService(testSecret, -time.Second)
	mw := NewMiddleware(NewJWTService(testSecret, time.Hour), store)

	token, err := expired.Issue(1, "jane@x.com")
	require.NoError(t, err)

	rec := doRequest(mw, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}), "Bearer "+token)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token expired")
}

func TestRequireAuthInvalidToken(t *testing.T) {
	store := newMemUserStore()
	mw := NewMiddleware(NewJWTService(testSecret, time.Hour), store)

	rec := doRequest(mw, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}), "Bearer not.a.token")

	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Invalid token", body["message"])
}

func TestRequireAuthUserGone(t *testing.T) {
	store := newMemUserStore()
	tokens := NewJWTService(testSecret, time.Hour)
	mw := NewMiddleware(tokens, store)

	created, err := store.Create(context.Background(), "Jane", "jane@x.com", "hash")
	require.NoError(t, err)
	token, err := tokens.Issue(created.ID, created.Email)
	require.NoError(t, err)

	// The token outlives the account.
	store.delete(created.ID)

	rec := doRequest(mw, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}), "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "no longer exists")
}

func TestRequireAuthUnknownVerifierError(t *testing.T) {
	store := newMemUserStore()
	mw := NewMiddleware(errorVerifier{err: ErrTokenUnknown}, store)

	rec := doRequest(mw, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}), "Bearer whatever")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequireAuthAttachesIdentity(t *testing.T) {
	store := newMemUserStore()
	tokens := NewJWTService(testSecret, time.Hour)
	mw := NewMiddleware(tokens, store)

	created, err := store.Create(context.Background(), "Jane", "jane@x.com", "hash")
	require.NoError(t, err)
	token, err := tokens.Issue(created.ID, created.Email)
	require.NoError(t, err)

	var identity Identity
	rec := doRequest(mw, okHandler(t, &identity), "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, identity.UserID)
	assert.Equal(t, "jane@x.com", identity.Email)
	assert.Equal(t, "Jane", identity.Name)
}
