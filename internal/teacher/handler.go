package teacher

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/schoolhub/school-api/internal/httputil"
	"github.com/schoolhub/school-api/internal/logging"
)

// Handler serves the protected /teachers routes.
type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Routes mounts the teacher CRUD endpoints on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// List returns all teachers
// @Summary      List teachers
// @Tags         teachers
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} Teacher
// @Router       /teachers [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	teachers, err := h.repo.List(r.Context())
	if err != nil {
		logger.Error("failed to list teachers", "error", err.Error())
		httputil.RespondError(w, "failed to retrieve teachers", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, teachers, http.StatusOK)
}

// Create adds a new teacher
// @Summary      Create teacher
// @Tags         teachers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body Input true "Teacher fields"
// @Success      201 {object} Teacher
// @Failure      400 {object} httputil.ErrorResponse
// @Router       /teachers [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if msg, ok := validate(in); !ok {
		httputil.RespondError(w, msg, http.StatusBadRequest)
		return
	}

	created, err := h.repo.Create(r.Context(), in)
	if err != nil {
		logger.Error("failed to create teacher", "error", err.Error())
		httputil.RespondError(w, "failed to create teacher", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, created, http.StatusCreated)
}

// Get returns a teacher by id
// @Summary      Get teacher
// @Tags         teachers
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Teacher ID"
// @Success      200 {object} Teacher
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /teachers/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httputil.RespondError(w, "Teacher not found", http.StatusNotFound)
		return
	}

	found, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.respondRepoError(w, r, err, "failed to retrieve teacher")
		return
	}

	httputil.RespondJSON(w, found, http.StatusOK)
}

// Update modifies a teacher
// @Summary      Update teacher
// @Tags         teachers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Teacher ID"
// @Param        request body Input true "Teacher fields"
// @Success      200 {object} Teacher
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /teachers/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httputil.RespondError(w, "Teacher not found", http.StatusNotFound)
		return
	}

	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if msg, ok := validate(in); !ok {
		httputil.RespondError(w, msg, http.StatusBadRequest)
		return
	}

	updated, err := h.repo.Update(r.Context(), id, in)
	if err != nil {
		h.respondRepoError(w, r, err, "failed to update teacher")
		return
	}

	httputil.RespondJSON(w, updated, http.StatusOK)
}

// Delete removes a teacher
// @Summary      Delete teacher
// @Tags         teachers
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Teacher ID"
// @Success      200 {object} map[string]string
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /teachers/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httputil.RespondError(w, "Teacher not found", http.StatusNotFound)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.respondRepoError(w, r, err, "failed to delete teacher")
		return
	}

	httputil.RespondJSON(w, map[string]string{"message": "Teacher deleted successfully"}, http.StatusOK)
}

func (h *Handler) respondRepoError(w http.ResponseWriter, r *http.Request, err error, message string) {
	if errors.Is(err, ErrNotFound) {
		httputil.RespondError(w, "Teacher not found", http.StatusNotFound)
		return
	}
	logging.GetLoggerFromContext(r.Context()).Error(message, "error", err.Error())
	httputil.RespondError(w, message, http.StatusInternalServerError)
}

func validate(in Input) (string, bool) {
	if in.Name == "" {
		return "name is required", false
	}
	if in.Email == "" {
		return "email is required", false
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return "invalid email format", false
	}
	return "", true
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}
