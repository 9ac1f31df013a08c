package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lumora/learnhub-backend/internal/config"
	"github.com/lumora/learnhub-backend/internal/database"
	"github.com/lumora/learnhub-backend/internal/handler"
	"github.com/lumora/learnhub-backend/internal/logger"
	"github.com/lumora/learnhub-backend/internal/mailer"
	"github.com/lumora/learnhub-backend/internal/repository"
	"github.com/lumora/learnhub-backend/internal/router"
	"github.com/lumora/learnhub-backend/internal/service"
	"github.com/lumora/learnhub-backend/internal/validator"
	"github.com/lumora/learnhub-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting LearnHub Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	// ─── Initialize Mailer ─────────────────────────────────────────────
	var sender mailer.Sender
	if cfg.SendGridAPIKey != "" {
		sender = mailer.NewSendGridSender(cfg.SendGridAPIKey, cfg.EmailFromName, cfg.EmailFrom)
	} else {
		log.Warn().Msg("SENDGRID_API_KEY not set, emails go to the log")
		sender = mailer.NewConsoleSender(log)
	}

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	userService := service.NewUserService(userRepo, authService, log)
	categoryService := service.NewCategoryService(categoryRepo)
	courseCache := service.NewRedisCourseCache(rdb, cfg.ListCacheTTL)
	courseService := service.NewCourseService(courseRepo, enrollmentRepo, courseCache, cfg.TopCoursesLimit, log)
	publisher := service.NewRedisEventPublisher(rdb)
	enrollmentService := service.NewEnrollmentService(courseRepo, enrollmentRepo, userRepo, publisher, log)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, rdb, sender, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService, userService),
		Course:       handler.NewCourseHandler(courseService, enrollmentService, userService),
		Enrollment:   handler.NewEnrollmentHandler(enrollmentService, courseService, userService),
		Category:     handler.NewCategoryHandler(categoryService),
		Notification: handler.NewNotificationHandler(notificationService),
		WS:           handler.NewWSHandler(rdb, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	notificationWorker := worker.NewNotificationWorker(rdb, notificationService, log)
	go notificationWorker.Start(workerCtx)

	retentionWorker := worker.NewRetentionWorker(courseService, cfg.SweepSchedule, cfg.CourseRetentionDays, log)
	if err := retentionWorker.Start(workerCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start retention worker")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	retentionWorker.Stop()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
