package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotAuthenticated means no usable session exists and no login flow was
// available to establish one.
var ErrNotAuthenticated = errors.New("not authenticated")

// Client provides typed access to the school API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
}

// Option customises client instantiation.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. Its transport is still
// wrapped so the auth header keeps being injected.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// New constructs a Client pointing at the provided API base URL. The auth
// interceptor is registered once here; callers never touch headers.
func New(base string, session *Session, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = "http://localhost:4000"
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}

	cli := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		session:    session,
	}
	for _, opt := range opts {
		opt(cli)
	}

	baseTransport := cli.httpClient.Transport
	if baseTransport == nil {
		baseTransport = http.DefaultTransport
	}
	cli.httpClient.Transport = &authTransport{session: session, base: baseTransport}

	return cli, nil
}

// Session exposes the client's session for direct token management.
func (c *Client) Session() *Session {
	return c.session
}

// authTransport injects the bearer token and a request ID into every
// outgoing request.
type authTransport struct {
	session *Session
	base    http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if token := t.session.Token(); token != "" {
		clone.Header.Set("Authorization", "Bearer "+token)
	}
	clone.Header.Set("X-Request-Id", uuid.NewString())
	return t.base.RoundTrip(clone)
}

// APIError represents an error response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api request failed (%d): %s", e.Status, e.Message)
}

// User is a user as the API exposes it.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Student mirrors the server's student resource.
type Student struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	EnrollmentDate time.Time `json:"enrollmentDate"`
}

// Teacher mirrors the server's teacher resource.
type Teacher struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// Course mirrors the server's course resource.
type Course struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Credits   int    `json:"credits"`
	TeacherID *int64 `json:"teacherId,omitempty"`
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var resp struct {
		Message string `json:"message"`
		User    User   `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Login authenticates and stores the returned token in the session.
func (c *Client) Login(ctx context.Context, email, password string) (*Claims, error) {
	body := map[string]string{"email": email, "password": password}
	var resp struct {
		Message string `json:"message"`
		Token   string `json:"token"`
		User    User   `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, err
	}

	claims := Decode(resp.Token)
	if claims == nil {
		return nil, fmt.Errorf("server returned an undecodable token")
	}
	if err := c.session.Store(resp.Token); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}

	return claims, nil
}

// Logout drops the stored session.
func (c *Client) Logout() error {
	return c.session.Logout()
}

// Profile fetches the authenticated user's own record.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var resp struct {
		Message string `json:"message"`
		User    User   `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/profile", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Users lists all users.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var resp struct {
		Message string `json:"message"`
		Users   []User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/users", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// Students lists all students.
func (c *Client) Students(ctx context.Context) ([]Student, error) {
	var students []Student
	if err := c.do(ctx, http.MethodGet, "/students", nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// Teachers lists all teachers.
func (c *Client) Teachers(ctx context.Context) ([]Teacher, error) {
	var teachers []Teacher
	if err := c.do(ctx, http.MethodGet, "/teachers", nil, &teachers); err != nil {
		return nil, err
	}
	return teachers, nil
}

// Courses lists all courses.
func (c *Client) Courses(ctx context.Context) ([]Course, error) {
	var courses []Course
	if err := c.do(ctx, http.MethodGet, "/courses", nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// RequireAuth gates fn behind an authentication check, the CLI analogue of a
// protected route: the check resolves first, and when no valid session
// exists the login flow runs before fn does.
func (c *Client) RequireAuth(ctx context.Context, login func(context.Context) error, fn func(context.Context) error) error {
	if c.session.Authenticated() == nil {
		if login == nil {
			return ErrNotAuthenticated
		}
		if err := login(ctx); err != nil {
			return err
		}
		if c.session.Authenticated() == nil {
			return ErrNotAuthenticated
		}
	}
	return fn(ctx)
}

func (c *Client) do(ctx context.Context, method, path string, body, v any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		// A rejected credential means the stored session is no longer
		// usable; degrade to unauthenticated rather than keeping it.
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			_ = c.session.Logout()
		}
		return APIError{Status: resp.StatusCode, Message: extractError(resp.Body)}
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func extractError(body io.Reader) string {
	var payload struct {
		Message string `json:"message"`
		Detail  string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Detail
}
