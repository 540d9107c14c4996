package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/schoolhub/school-api/internal/auth"
	"github.com/schoolhub/school-api/internal/httputil"
	"github.com/schoolhub/school-api/internal/logging"
	"github.com/schoolhub/school-api/internal/user"
)

// UserHandler serves the protected /users routes. It lives in the http
// package because it joins the auth identity with the user repository.
type UserHandler struct {
	repo *user.Repository
}

func NewUserHandler(repo *user.Repository) *UserHandler {
	return &UserHandler{repo: repo}
}

// UserListResponse is the /users response body.
type UserListResponse struct {
	Message     string        `json:"message"`
	Users       []user.Public `json:"users"`
	RequestedBy string        `json:"requestedBy"`
}

// UserResponse wraps a single user.
type UserResponse struct {
	Message string      `json:"message"`
	User    user.Public `json:"user"`
}

// List returns all users, public fields only
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} UserListResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      403 {object} httputil.ErrorResponse
// @Router       /users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	users, err := h.repo.List(r.Context())
	if err != nil {
		logger.Error("failed to list users", "error", err.Error())
		httputil.RespondError(w, "failed to retrieve users", http.StatusInternalServerError)
		return
	}

	public := make([]user.Public, 0, len(users))
	for i := range users {
		public = append(public, users[i].ToPublic())
	}

	identity, _ := auth.IdentityFromContext(r.Context())

	httputil.RespondJSON(w, UserListResponse{
		Message:     "Users retrieved successfully",
		Users:       public,
		RequestedBy: identity.Email,
	}, http.StatusOK)
}

// Profile returns the authenticated user's own record
// @Summary      Current user profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} UserResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      403 {object} httputil.ErrorResponse
// @Router       /users/profile [get]
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "failed to retrieve profile", http.StatusInternalServerError)
		return
	}

	current, err := h.repo.GetByID(r.Context(), identity.UserID)
	if err != nil {
		logger.Error("failed to get profile", "error", err.Error())
		httputil.RespondError(w, "failed to retrieve profile", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, UserResponse{
		Message: "Profile retrieved successfully",
		User:    current.ToPublic(),
	}, http.StatusOK)
}

// Get returns a user by id
// @Summary      Get user by ID
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Success      200 {object} UserResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondError(w, "User not found", http.StatusNotFound)
		return
	}

	found, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			httputil.RespondError(w, "User not found", http.StatusNotFound)
			return
		}
		logger.Error("failed to get user", "error", err.Error())
		httputil.RespondError(w, "failed to retrieve user", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, UserResponse{
		Message: "User retrieved successfully",
		User:    found.ToPublic(),
	}, http.StatusOK)
}
