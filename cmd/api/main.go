package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"medportal/internal/assistant"
	"medportal/internal/config"
	"medportal/internal/db"
	apihttp "medportal/internal/http"
	"medportal/internal/identity"
	"medportal/internal/repository"
	"medportal/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	accountRepo := repository.NewPgAccountRepository(pool)
	doctorRepo := repository.NewPgDoctorRepository(pool)
	appointmentRepo := repository.NewPgAppointmentRepository(pool)
	medicalRepo := repository.NewPgMedicalRecordRepository(pool)

	if cfg.SeedDoctors {
		if err := db.SeedDoctors(ctx, doctorRepo); err != nil {
			logger.Warn("seed doctors failed", zap.Error(err))
		}
	}

	var tokenStore service.SessionTokenStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			tokenStore = service.NewRedisSessionTokenStore(redisClient)
		}
		cancel()
	}

	verifier := identity.NewHTTPVerifier(cfg.IdentityBaseURL, cfg.IdentityAPIKey)
	assistantClient := assistant.NewHTTPClient(cfg.AssistantBaseURL, cfg.AssistantAPIKey, cfg.AssistantModel, logger)

	accountSvc := service.NewAccountService(logger, accountRepo, verifier)
	sessionSvc := service.NewSessionService(
		cfg.SessionSecret,
		time.Duration(cfg.SessionTTLHours)*time.Hour,
		time.Duration(cfg.RememberTTLHours)*time.Hour,
		tokenStore,
		accountRepo,
	)
	medicalSvc := service.NewMedicalRecordService(medicalRepo)
	appointmentSvc := service.NewAppointmentService(appointmentRepo, doctorRepo)

	authHandler := apihttp.NewAuthHandler(logger, accountSvc, sessionSvc)
	profileHandler := apihttp.NewProfileHandler(logger, accountSvc, sessionSvc, medicalSvc)
	careHandler := apihttp.NewCareHandler(logger, doctorRepo, appointmentSvc)
	assistantHandler := apihttp.NewAssistantHandler(logger, assistantClient)

	router := apihttp.NewRouter(logger, sessionSvc, authHandler, profileHandler, careHandler, assistantHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
