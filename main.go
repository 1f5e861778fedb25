package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/spincoach-ai/engine/pkg/auth"
	"github.com/spincoach-ai/engine/pkg/config"
	"github.com/spincoach-ai/engine/pkg/crypto"
	"github.com/spincoach-ai/engine/pkg/database"
	"github.com/spincoach-ai/engine/pkg/handlers"
	"github.com/spincoach-ai/engine/pkg/llm"
	"github.com/spincoach-ai/engine/pkg/logging"
	"github.com/spincoach-ai/engine/pkg/middleware"
	"github.com/spincoach-ai/engine/pkg/repositories"
	"github.com/spincoach-ai/engine/pkg/retry"
	"github.com/spincoach-ai/engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// .env is a local development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load(Version)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger := newLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("default_model", cfg.Scoring.DefaultModel),
		zap.Int("eval_max_concurrent", cfg.Evaluation.MaxConcurrent))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The database may still be coming up when the server starts.
	db, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (*database.DB, error) {
		return database.NewConnection(ctx, &database.Config{
			URL:            cfg.Database.ConnectionString(),
			MaxConnections: cfg.Database.MaxConnections,
		})
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	if err := database.RunMigrations(sqlDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("Failed to close migration connection", zap.Error(err))
	}

	encryptor, err := crypto.NewCredentialEncryptor(cfg.CredentialsKey)
	if err != nil {
		logger.Fatal("Failed to initialize credential encryption", zap.Error(err))
	}

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	hasher := auth.NewPasswordHasher()
	authMiddleware := auth.NewMiddleware(tokens, logger)

	// Repositories read their connection from the request-scoped tenant
	// context, so they carry no state of their own.
	orgRepo := repositories.NewOrganizationRepository()
	userRepo := repositories.NewUserRepository()
	repRepo := repositories.NewRepresentativeRepository()
	transcriptRepo := repositories.NewTranscriptRepository()
	assessmentRepo := repositories.NewAssessmentRepository()
	credentialRepo := repositories.NewCredentialRepository()
	templateRepo := repositories.NewTemplateRepository()
	datasetRepo := repositories.NewDatasetRepository()
	runRepo := repositories.NewRunRepository()

	clientFactory := llm.NewClientFactory(llm.FactoryConfig{
		OpenAIBaseURL: cfg.Scoring.OpenAIBaseURL,
		GoogleBaseURL: cfg.Scoring.GoogleBaseURL,
	}, logger)
	workerPool := llm.NewWorkerPool(llm.WorkerPoolConfig{
		MaxConcurrent: cfg.Evaluation.MaxConcurrent,
	}, logger)

	templateService := services.NewTemplateService(templateRepo, logger)
	orgService := services.NewOrganizationService(orgRepo, userRepo, templateService, hasher, logger)
	credentialService := services.NewCredentialService(credentialRepo, encryptor, logger)
	scoringService := services.NewScoringService(orgRepo, templateRepo, credentialService, clientFactory, cfg.Scoring.DefaultModel, logger)
	transcriptService := services.NewTranscriptService(transcriptRepo, assessmentRepo, scoringService, logger)
	evaluationService := services.NewEvaluationService(datasetRepo, runRepo, templateRepo, scoringService, workerPool, logger)

	tenantScope := handlers.TenantMiddleware(middleware.TenantScope(db, logger))
	publicScope := handlers.TenantMiddleware(middleware.PublicScope(db, logger))

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewAuthHandler(orgService, userRepo, hasher, tokens, logger).RegisterRoutes(mux, publicScope)
	handlers.NewOrganizationHandler(orgService, logger).RegisterRoutes(mux, authMiddleware, tenantScope)
	handlers.NewRepresentativeHandler(repRepo, logger).RegisterRoutes(mux, authMiddleware, tenantScope)
	handlers.NewTranscriptHandler(transcriptService, logger).RegisterRoutes(mux, authMiddleware, tenantScope)
	handlers.NewCredentialHandler(credentialService, logger).RegisterRoutes(mux, authMiddleware, tenantScope)
	handlers.NewTemplateHandler(templateService, logger).RegisterRoutes(mux, authMiddleware, tenantScope)
	handlers.NewEvaluationHandler(evaluationService, logger).RegisterRoutes(mux, authMiddleware, tenantScope)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting spincoach-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
		}
	}

	logger.Info("Server stopped")
}

func newLogger(env string) *zap.Logger {
	var logger *zap.Logger
	var err error
	if env == "local" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger
}
