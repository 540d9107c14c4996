package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"

	_ "github.com/schoolhub/school-api/docs" // Swagger docs (generated)
	"github.com/schoolhub/school-api/internal/auth"
	"github.com/schoolhub/school-api/internal/config"
	"github.com/schoolhub/school-api/internal/course"
	"github.com/schoolhub/school-api/internal/database"
	httpServer "github.com/schoolhub/school-api/internal/http"
	"github.com/schoolhub/school-api/internal/logging"
	"github.com/schoolhub/school-api/internal/student"
	"github.com/schoolhub/school-api/internal/teacher"
	"github.com/schoolhub/school-api/internal/user"
)

// @title           School Management API
// @version         1.0
// @description     REST API for managing users, students, teachers and courses with JWT authentication.

// @host      localhost:4000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Repositories
	userRepo := user.NewRepository(db)
	studentRepo := student.NewRepository(db)
	teacherRepo := teacher.NewRepository(db)
	courseRepo := course.NewRepository(db)

	// Token + auth services
	tokenService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration)
	authService := auth.NewService(userRepo, tokenService, logger)
	authMiddleware := auth.NewMiddleware(tokenService, userRepo)

	// HTTP handlers
	handlers := httpServer.Handlers{
		Auth:     auth.NewHandler(authService, logger),
		Users:    httpServer.NewUserHandler(userRepo),
		Students: student.NewHandler(studentRepo),
		Teachers: teacher.NewHandler(teacherRepo),
		Courses:  course.NewHandler(courseRepo),
	}

	router := httpServer.NewRouter(cfg, handlers, authMiddleware, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received shutdown signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initDB opens the Postgres connection and wraps it with Bun.
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return database.NewBunDB(sqlDB), nil
}
