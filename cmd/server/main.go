package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"lyricclash/internal/config"
	"lyricclash/internal/database"
	"lyricclash/internal/draft"
	"lyricclash/internal/handlers"
	"lyricclash/internal/models"
	"lyricclash/internal/repository"
	"lyricclash/internal/security"
	"lyricclash/internal/service"

	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	draftRepo := repository.NewDraftRepository(db)

	// Initialize services
	tokenIssuer := security.NewTokenIssuer(cfg.TokenSecret, cfg.TokenDuration)
	rateLimiter := security.NewRateLimiter(10, time.Minute)

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	authService := service.NewAuthService(userRepo, tokenIssuer)

	// Seed the initial author account so the API has someone who can log in
	if cfg.SeedAuthorMail != "" && cfg.SeedAuthorCode != "" {
		name := cfg.SeedAuthorName
		if name == "" {
			name = "Author"
		}
		if _, err := authService.CreateUser(name, cfg.SeedAuthorMail, models.RoleAuthor, cfg.SeedAuthorCode); err != nil && !errors.Is(err, service.ErrEmailTaken) {
			log.Printf("Warning: Failed to seed author account: %v", err)
		}
	}
	lessonService := service.NewLessonService(lessonRepo, assignmentRepo)
	practiceService := service.NewPracticeService(
		lessonRepo,
		assignmentRepo,
		submissionRepo,
		userRepo,
		ledgerRepo,
		draft.NewMemStore(),
		draftRepo,
		emailService,
		cfg.DraftDebounce,
	)

	// Initialize handlers
	middleware := handlers.NewMiddleware(authService, rateLimiter)
	authHandler := handlers.NewAuthHandler(authService)
	lessonHandler := handlers.NewLessonHandler(lessonService, ledgerRepo)
	practiceHandler := handlers.NewPracticeHandler(practiceService)

	// Setup routes
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))

	// Author routes
	mux.HandleFunc("POST /api/users", middleware.RequireRole(models.RoleAuthor, authHandler.CreateUser))
	mux.HandleFunc("POST /api/lessons", middleware.RequireRole(models.RoleAuthor, lessonHandler.CreateLesson))
	mux.HandleFunc("POST /api/lessons/parse-timestamps", middleware.RequireRole(models.RoleAuthor, lessonHandler.ParseTimestamps))
	mux.HandleFunc("GET /api/lessons", middleware.RequireRole(models.RoleAuthor, lessonHandler.ListLessons))
	mux.HandleFunc("GET /api/lessons/{id}", middleware.RequireRole(models.RoleAuthor, lessonHandler.GetLesson))
	mux.HandleFunc("PUT /api/lessons/{id}", middleware.RequireRole(models.RoleAuthor, lessonHandler.UpdateLesson))
	mux.HandleFunc("DELETE /api/lessons/{id}", middleware.RequireRole(models.RoleAuthor, lessonHandler.DeleteLesson))
	mux.HandleFunc("POST /api/lessons/{id}/assign", middleware.RequireRole(models.RoleAuthor, lessonHandler.AssignLesson))
	mux.HandleFunc("POST /api/assignments/{id}/bonus", middleware.RequireRole(models.RoleAuthor, lessonHandler.GrantBonusSwitches))

	// Learner practice routes
	mux.HandleFunc("GET /api/assignments/{id}/practice", middleware.RequireAuth(practiceHandler.StartAttempt))
	mux.HandleFunc("PUT /api/assignments/{id}/draft", middleware.RequireAuth(practiceHandler.UpdateAnswer))
	mux.HandleFunc("POST /api/assignments/{id}/draft/flush", middleware.RequireAuth(practiceHandler.FlushDraft))
	mux.HandleFunc("POST /api/assignments/{id}/switch-read", middleware.RequireAuth(practiceHandler.SwitchToRead))
	mux.HandleFunc("POST /api/assignments/{id}/switch-fill", middleware.RequireAuth(practiceHandler.SwitchToFill))
	mux.HandleFunc("POST /api/assignments/{id}/tick", middleware.RequireAuth(practiceHandler.Tick))
	mux.HandleFunc("POST /api/assignments/{id}/preview", middleware.RequireAuth(practiceHandler.PreviewLine))
	mux.HandleFunc("POST /api/assignments/{id}/stop", middleware.RequireAuth(practiceHandler.StopPlayback))
	mux.HandleFunc("POST /api/assignments/{id}/submit", middleware.RequireAuth(practiceHandler.Submit))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Println("Server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		runMaintenance(ctx, practiceService, assignmentRepo)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// runMaintenance periodically expires overdue assignments and prunes cached
// drafts that have not been touched for a day
func runMaintenance(ctx context.Context, practiceService *service.PracticeService, assignmentRepo *repository.AssignmentRepository) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()

			expired, err := assignmentRepo.ExpireOverdue(now)
			if err != nil {
				log.Printf("Error expiring overdue assignments: %v", err)
			} else if expired > 0 {
				log.Printf("Expired %d overdue assignments", expired)
			}

			pruned := practiceService.LocalDrafts().PruneOlderThan(now.Add(-24 * time.Hour))
			if pruned > 0 {
				log.Printf("Pruned %d stale cached drafts", pruned)
			}
		}
	}
}
