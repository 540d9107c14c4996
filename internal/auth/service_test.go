package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/schoolhub/school-api/internal/logging"
	"github.com/schoolhub/school-api/internal/user"
)

// memUserStore is an in-memory UserStore for tests.
type memUserStore struct {
	mu      sync.Mutex
	nextID  int64
	byEmail map[string]*user.User
	byID    map[int64]*user.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{
		byEmail: make(map[string]*user.User),
		byID:    make(map[int64]*user.User),
	}
}

func (m *memUserStore) Create(_ context.Context, name, email, passwordHash string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byEmail[email]; exists {
		return nil, user.ErrDuplicateEmail
	}

	m.nextID++
	u := &user.User{
		ID:           m.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.byEmail[email] = u
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUserStore) GetByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

func (m *memUserStore) GetByID(_ context.Context, id int64) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

func (m *memUserStore) delete(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		delete(m.byEmail, u.Email)
		delete(m.byID, id)
	}
}

func newTestService(store UserStore) *Service {
	tokens := NewJWTService(testSecret, 24*time.Hour)
	return NewService(store, tokens, logging.NewLogger(true))
}

func TestRegisterStoresHashedPassword(t *testing.T) {
	svc := newTestService(newMemUserStore())

	created, err := svc.Register(context.Background(), "Jane", "jane@x.com", "secret1")
	require.NoError(t, err)

	assert.Equal(t, "Jane", created.Name)
	assert.Equal(t, "jane@x.com", created.Email)
	assert.NotEqual(t, "secret1", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("secret1")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(newMemUserStore())

	_, err := svc.Register(context.Background(), "Jane", "jane@x.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Janet", "jane@x.com", "different2")
	assert.ErrorIs(t, err, user.ErrDuplicateEmail)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(newMemUserStore())

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		wantErr  error
	}{
		{"empty name", "", "a@x.com", "secret1", ErrNameRequired},
		{"name too short", "J", "a@x.com", "secret1", ErrNameLength},
		{"empty email", "Jane", "", "secret1", ErrEmailRequired},
		{"bad email", "Jane", "not-an-email", "secret1", ErrInvalidEmailFormat},
		{"empty password", "Jane", "a@x.com", "", ErrPasswordRequired},
		{"short password", "Jane", "a@x.com", "12345", ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.userName, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoginIssuesTokenForStoredUser(t *testing.T) {
	store := newMemUserStore()
	svc := newTestService(store)

	created, err := svc.Register(context.Background(), "Jane", "jane@x.com", "secret1")
	require.NoError(t, err)

	token, loggedIn, err := svc.Login(context.Background(), "jane@x.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, created.ID, loggedIn.ID)

	claims, err := NewJWTService(testSecret, 24*time.Hour).Verify(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, "jane@x.com", claims.Email)
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc := newTestService(newMemUserStore())

	_, err := svc.Register(context.Background(), "Jane", "jane@x.com", "secret1")
	require.NoError(t, err)

	// Wrong password and unknown email must be indistinguishable.
	_, _, err = svc.Login(context.Background(), "jane@x.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "nobody@x.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
