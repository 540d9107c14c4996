package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/schoolhub/school-api/internal/httputil"
	"github.com/schoolhub/school-api/internal/logging"
	"github.com/schoolhub/school-api/internal/user"
)

// invalidCredentialsMessage is returned verbatim for both unknown emails and
// wrong passwords; the two cases must not be distinguishable.
const invalidCredentialsMessage = "Invalid email or password"

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisteredUser is the public user shape returned from registration.
type RegisteredUser struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// RegisterResponse represents the registration response
type RegisterResponse struct {
	Message string         `json:"message"`
	User    RegisteredUser `json:"user"`
}

// LoginUser is the public user shape returned from login.
type LoginUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token"`
	User    LoginUser `json:"user"`
}

// Register handles user registration
// @Summary      Register a new user
// @Description  Create a new user account with name, email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration credentials"
// @Success      201 {object} RegisterResponse
// @Failure      400 {object} httputil.ErrorResponse "Email already taken or validation error"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	newUser, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			logger.Warn("registration failed: email already exists")
			httputil.RespondError(w, "User already exists with this email", http.StatusBadRequest)
			return
		}
		if isValidationError(err) {
			logger.Warn("registration failed: validation error", "error", err.Error())
			httputil.RespondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Error("registration failed: internal error", "error", err.Error())
		httputil.RespondError(w, "failed to register user", http.StatusInternalServerError)
		return
	}

	logger.Info("user registered successfully", "user_id", newUser.ID)

	httputil.RespondJSON(w, RegisterResponse{
		Message: "User registered successfully",
		User: RegisteredUser{
			ID:        newUser.ID,
			Name:      newUser.Name,
			Email:     newUser.Email,
			CreatedAt: newUser.CreatedAt,
		},
	}, http.StatusCreated)
}

// Login handles user login
// @Summary      User login
// @Description  Authenticate with email and password and receive an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} LoginResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid credentials or request body"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	token, loggedIn, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("login failed: invalid credentials")
			httputil.RespondError(w, invalidCredentialsMessage, http.StatusBadRequest)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		httputil.RespondError(w, "failed to login", http.StatusInternalServerError)
		return
	}

	logger.Info("user logged in successfully", "user_id", loggedIn.ID)

	httputil.RespondJSON(w, LoginResponse{
		Message: "Login successful",
		Token:   token,
		User: LoginUser{
			ID:    loggedIn.ID,
			Name:  loggedIn.Name,
			Email: loggedIn.Email,
		},
	}, http.StatusOK)
}

func isValidationError(err error) bool {
	return errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrNameLength) ||
		errors.Is(err, ErrEmailRequired) ||
		errors.Is(err, ErrInvalidEmailFormat) ||
		errors.Is(err, ErrPasswordRequired) ||
		errors.Is(err, ErrPasswordTooShort)
}
