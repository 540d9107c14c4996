package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	return NewSession(&FileTokenStore{path: filepath.Join(t.TempDir(), "token")})
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *Session) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	session := newTestSession(t)
	cli, err := New(srv.URL, session)
	require.NoError(t, err)
	return cli, session
}

func validToken(t *testing.T) string {
	t.Helper()
	return fakeToken(t, Claims{
		UserID:    1,
		Email:     "jane@example.com",
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
	})
}

func TestTransportInjectsHeaders(t *testing.T) {
	var gotAuth, gotRequestID string
	cli, session := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "ok", "users": []User{}})
	}))

	token := validToken(t)
	require.NoError(t, session.Store(token))

	_, err := cli.Users(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer "+token, gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestTransportSkipsAuthHeaderWhenLoggedOut(t *testing.T) {
	var sawAuthHeader bool
	cli, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuthHeader = r.Header["Authorization"]
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "ok", "user": User{}})
	}))

	_, err := cli.Register(context.Background(), "Jane", "jane@example.com", "secret1")
	require.NoError(t, err)
	assert.False(t, sawAuthHeader)
}

func TestLoginStoresToken(t *testing.T) {
	token := validToken(t)
	cli, session := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": "Login successful",
			"token":   token,
			"user":    User{ID: 1, Name: "Jane", Email: "jane@example.com"},
		})
	}))

	claims, err := cli.Login(context.Background(), "jane@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, token, session.Token())
}

func TestRejectedCredentialClearsSession(t *testing.T) {
	cli, session := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"message": "Token expired",
			"error":   "Please login again",
		})
	}))

	require.NoError(t, session.Store(validToken(t)))

	_, err := cli.Profile(context.Background())
	require.Error(t, err)

	var apiErr APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "Token expired", apiErr.Message)

	assert.Empty(t, session.Token(), "rejected token must be dropped")
}

func TestDomainErrorKeepsSession(t *testing.T) {
	cli, session := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Student not found"})
	}))

	token := validToken(t)
	require.NoError(t, session.Store(token))

	_, err := cli.Students(context.Background())
	var apiErr APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	assert.Equal(t, token, session.Token(), "a 404 is not an auth failure")
}

func TestRequireAuthRunsLoginFirst(t *testing.T) {
	cli, session := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))

	var order []string
	err := cli.RequireAuth(context.Background(),
		func(context.Context) error {
			order = append(order, "login")
			return session.Store(validToken(t))
		},
		func(context.Context) error {
			order = append(order, "fn")
			return nil
		})

	require.NoError(t, err)
	assert.Equal(t, []string{"login", "fn"}, order)
}

func TestRequireAuthSkipsLoginWhenAuthenticated(t *testing.T) {
	cli, session := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))
	require.NoError(t, session.Store(validToken(t)))

	ran := false
	err := cli.RequireAuth(context.Background(),
		func(context.Context) error {
			t.Fatal("login must not run with a valid session")
			return nil
		},
		func(context.Context) error {
			ran = true
			return nil
		})

	require.NoError(t, err)
	assert.True(t, ran)
}

func TestRequireAuthWithoutLoginFlow(t *testing.T) {
	cli, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))

	err := cli.RequireAuth(context.Background(), nil, func(context.Context) error {
		t.Fatal("fn must not run unauthenticated")
		return nil
	})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestNewDefaultsBaseURL(t *testing.T) {
	cli, err := New("", newTestSession(t))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4000", cli.baseURL)

	cli, err = New("api.example.com/", newTestSession(t))
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.com", cli.baseURL)
}
