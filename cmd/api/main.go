package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/joshwoodland/boredcertified/internal/ai"
	"github.com/joshwoodland/boredcertified/internal/config"
	"github.com/joshwoodland/boredcertified/internal/email"
	authHandler "github.com/joshwoodland/boredcertified/internal/handler/auth"
	healthHandler "github.com/joshwoodland/boredcertified/internal/handler/health"
	medicationHandler "github.com/joshwoodland/boredcertified/internal/handler/medication"
	noteHandler "github.com/joshwoodland/boredcertified/internal/handler/note"
	patientHandler "github.com/joshwoodland/boredcertified/internal/handler/patient"
	"github.com/joshwoodland/boredcertified/internal/middleware"
	"github.com/joshwoodland/boredcertified/internal/repository/postgres"
	"github.com/joshwoodland/boredcertified/internal/router"
	auditService "github.com/joshwoodland/boredcertified/internal/service/audit"
	authService "github.com/joshwoodland/boredcertified/internal/service/auth"
	medicationService "github.com/joshwoodland/boredcertified/internal/service/medication"
	noteService "github.com/joshwoodland/boredcertified/internal/service/note"
	patientService "github.com/joshwoodland/boredcertified/internal/service/patient"
	pkgauth "github.com/joshwoodland/boredcertified/pkg/auth"
	"github.com/joshwoodland/boredcertified/pkg/logger"
	"github.com/joshwoodland/boredcertified/pkg/metrics"
	"github.com/joshwoodland/boredcertified/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	m := metrics.NewMetrics("boredcertified")

	// Repositories
	patientRepo := postgres.NewPatientRepository(db)
	noteRepo := postgres.NewNoteRepository(db)
	medicationRepo := postgres.NewMedicationRepository(db)
	userRepo := postgres.NewUserRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	// Services
	auditor := auditService.NewService(auditRepo, appLogger)
	tokens := pkgauth.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	hasher := security.NewBcryptHasher(0)
	authSvc := authService.NewService(userRepo, hasher, tokens)
	patientSvc := patientService.NewService(patientRepo, auditor)
	generator := ai.NewClient(cfg.OpenAI, appLogger)
	noteSvc := noteService.NewService(noteRepo, generator, rdb, auditor, m)
	mailer := email.NewService(cfg.Email)
	medicationSvc := medicationService.NewService(medicationRepo, patientRepo, mailer, auditor, m)

	// Handlers
	authH := authHandler.NewHandler(authSvc)
	healthH := healthHandler.NewHandler(db, rdb)
	patientH := patientHandler.NewHandler(patientSvc)
	noteH := noteHandler.NewHandler(noteSvc)
	medicationH := medicationHandler.NewHandler(medicationSvc)

	authMW := middleware.NewAuthMiddleware(authSvc)

	r := router.NewRouter(authMW, authH, healthH,
		[]router.Handler{patientH, noteH, medicationH},
		router.Config{
			RateLimitRPS:   cfg.RateLimit.RequestsPerSecond,
			RateLimitBurst: cfg.RateLimit.Burst,
			CORS:           middleware.DefaultCORSConfig(),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
