package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/schoolhub/school-api/internal/auth"
	"github.com/schoolhub/school-api/internal/config"
	"github.com/schoolhub/school-api/internal/course"
	"github.com/schoolhub/school-api/internal/httputil"
	"github.com/schoolhub/school-api/internal/logging"
	"github.com/schoolhub/school-api/internal/student"
	"github.com/schoolhub/school-api/internal/teacher"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth     *auth.Handler
	Users    *UserHandler
	Students *student.Handler
	Teachers *teacher.Handler
	Courses  *course.Handler
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, h Handlers, authMiddleware *auth.Middleware, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first so the SPA frontend can talk to us
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	// Public routes
	r.Get("/health", handleHealth)

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	// Auth routes (public)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
	})

	// Protected routes (require a valid bearer token)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.Users.List)
			r.Get("/profile", h.Users.Profile)
			r.Get("/{id}", h.Users.Get)
		})
		r.Route("/students", h.Students.Routes)
		r.Route("/teachers", h.Teachers.Routes)
		r.Route("/courses", h.Courses.Routes)
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
