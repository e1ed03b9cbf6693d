package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/fcihub/studauth/internal/app/controllers"
	appMigrations "github.com/fcihub/studauth/internal/app/migrations"
	appRepos "github.com/fcihub/studauth/internal/app/repositories"
	appRoutes "github.com/fcihub/studauth/internal/app/routes"
	appServices "github.com/fcihub/studauth/internal/app/services"
	"github.com/fcihub/studauth/internal/config"
	"github.com/fcihub/studauth/internal/db"
	appMiddleware "github.com/fcihub/studauth/internal/middleware"
	"github.com/fcihub/studauth/internal/pkg/filestorage"
	"github.com/fcihub/studauth/internal/pkg/logger"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	AccountService *appServices.AccountService
	PhotoService   *appServices.ProfilePhotoService
	AuthController *appControllers.AuthController
	UserController *appControllers.UserController
	AuthMiddleware *appMiddleware.AuthMiddleware
	FileStorage    filestorage.FileStorage
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")
	return database, nil
}

// setupFileStorage builds the configured blob storage backend.
func setupFileStorage(cfg *config.Config) (filestorage.FileStorage, error) {
	switch cfg.Storage.Driver {
	case "s3":
		return filestorage.NewS3Storage(filestorage.S3Config{
			Endpoint:  cfg.Storage.S3.Endpoint,
			Region:    cfg.Storage.S3.Region,
			AccessKey: cfg.Storage.S3.AccessKey,
			SecretKey: cfg.Storage.S3.SecretKey,
			Bucket:    cfg.Storage.S3.Bucket,
			UseSSL:    cfg.Storage.S3.UseSSL,
		})
	default:
		// Local blobs are served back through the /uploads static route.
		baseURL := "http://localhost:" + cfg.Server.Port + "/uploads"
		return filestorage.NewLocalStorage(cfg.Storage.LocalPath, baseURL)
	}
}

// BuildDependencies initializes repositories, services and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	storage, err := setupFileStorage(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	deps.FileStorage = storage

	deps.AccountService = appServices.NewAccountService(
		deps.Repos.UserRepository,
		deps.Repos.TokenRepository,
		cfg.TokenExpiration(),
		lgr,
	)
	deps.PhotoService = appServices.NewProfilePhotoService(
		deps.Repos.UserRepository,
		deps.FileStorage,
		lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.Repos.TokenRepository)

	deps.AuthController = appControllers.NewAuthController(deps.AccountService, lgr)
	deps.UserController = appControllers.NewUserController(deps.AccountService, deps.PhotoService, lgr)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(appMiddleware.Recovery())

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.UserController,
		deps.AuthMiddleware,
	)

	if cfg.Storage.Driver == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
		lgr.Info().Str("path", cfg.Storage.LocalPath).Msg("Static file serving configured for uploads directory")
	}

	return router
}

// StartTokenCleanup sweeps expired access tokens periodically until ctx
// is cancelled.
func StartTokenCleanup(ctx context.Context, tokenRepo *appRepos.TokenRepository, interval time.Duration, lgr zerolog.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := tokenRepo.CleanupExpired(ctx); err != nil {
					lgr.Error().Err(err).Msg("Token cleanup failed")
				}
			}
		}
	}()
}
