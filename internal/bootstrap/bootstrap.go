package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/placementcell/internal/app/controllers"
	appMigrations "github.com/yigit/placementcell/internal/app/migrations"
	appRepos "github.com/yigit/placementcell/internal/app/repositories"
	appRoutes "github.com/yigit/placementcell/internal/app/routes"
	appServices "github.com/yigit/placementcell/internal/app/services"
	"github.com/yigit/placementcell/internal/config"
	"github.com/yigit/placementcell/internal/db"
	appMiddleware "github.com/yigit/placementcell/internal/middleware"
	pkgAuth "github.com/yigit/placementcell/internal/pkg/auth"
	"github.com/yigit/placementcell/internal/pkg/email"
	"github.com/yigit/placementcell/internal/pkg/filestorage"
	"github.com/yigit/placementcell/internal/pkg/gradesheet"
	"github.com/yigit/placementcell/internal/pkg/helpers"
	"github.com/yigit/placementcell/internal/pkg/locks"
	"github.com/yigit/placementcell/internal/pkg/logger"
	"github.com/yigit/placementcell/internal/pkg/otp"
	"github.com/yigit/placementcell/internal/pkg/validation"
	"github.com/yigit/placementcell/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store          appRepos.Store
	Services       *appServices.Services
	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	JWTService     *pkgAuth.JWTService
	Redis          *redis.Client // nil when running on in-process fallbacks
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.EqualFold(cfg.Logging.Format, "text"),
	})

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
	lgr.Info().Msg("Database connection successfully established.")

	if !cfg.Server.AutoInitDB {
		lgr.Info().Msg("Automatic schema initialization disabled")
		return database, nil
	}

	migrationsDir := cfg.Server.MigrationDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("dir", migrationsDir).Msg("Running database migrations...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := appMigrations.NewMigrator(database.Pool).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// SetupRedis connects to Redis for OTP storage and import locks. Outside
// production an unreachable server falls back to in-process implementations
// and a nil client is returned.
func SetupRedis(cfg *config.Config, lgr zerolog.Logger) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		lgr.Warn().Msg("Redis address not configured, using in-process OTP store and locks")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if cfg.IsProduction() {
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		lgr.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unreachable, using in-process OTP store and locks")
		return nil, nil
	}

	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connection established")
	return client, nil
}

// BuildDependencies initializes repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, store appRepos.Store, pinger appControllers.Pinger, rdb *redis.Client, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Store: store, Redis: rdb, Logger: lgr}

	files, err := filestorage.NewLocalStorage(cfg.Server.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	var (
		otpStore otp.Store
		locker   locks.Locker
	)
	if rdb != nil {
		otpStore = otp.NewRedisStore(rdb)
		locker = locks.NewRedisLocker(rdb)
	} else {
		otpStore = otp.NewMemoryStore()
		locker = locks.NewLocalLocker()
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 12*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	otps := otp.NewManager(otpStore, helpers.ParseDuration(cfg.OTP.TTL, 10*time.Minute))

	sender := email.NewSMTPSender(email.SMTPConfig{
		Host:      cfg.Mail.Server,
		Port:      cfg.Mail.Port,
		Username:  cfg.Mail.Username,
		Password:  cfg.Mail.Password,
		FromEmail: cfg.Mail.From,
		UseTLS:    cfg.Mail.UseTLS,
		Timeout:   15 * time.Second,
	}, lgr)

	notifications := appServices.NewNotificationService(store, sender, MailSettings(cfg), lgr)
	authService := appServices.NewAuthService(store, otps, deps.JWTService, notifications, !cfg.IsProduction(), lgr)

	deps.Services = &appServices.Services{
		Auth:         authService,
		Student:      appServices.NewStudentService(store, lgr),
		Company:      appServices.NewCompanyService(store, lgr),
		Application:  appServices.NewApplicationService(store, notifications, lgr),
		Import:       appServices.NewImportService(store, files, gradesheet.NewPDFTextSource(cfg.Import.PDFToText), locker, lgr),
		Export:       appServices.NewExportService(store, lgr),
		Notification: notifications,
		Report:       appServices.NewReportService(store, lgr),
	}

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.Controllers = NewControllers(deps.Services, pinger, cfg.Server.MaxUploadMB)

	return deps, nil
}

// MailSettings reports which SMTP settings are loaded, without their values
func MailSettings(cfg *config.Config) appServices.MailSettings {
	return appServices.MailSettings{
		ServerLoaded:   cfg.Mail.Server != "",
		UsernameLoaded: cfg.Mail.Username != "",
		PasswordLoaded: cfg.Mail.Password != "",
		FromLoaded:     cfg.Mail.From != "",
		Port:           cfg.Mail.Port,
		UseTLS:         cfg.Mail.UseTLS,
	}
}

// NewControllers builds every HTTP controller over the services
func NewControllers(svc *appServices.Services, pinger appControllers.Pinger, maxUploadMB int) appRoutes.Controllers {
	return appRoutes.Controllers{
		Auth:        appControllers.NewAuthController(svc.Auth),
		Student:     appControllers.NewStudentController(svc.Student),
		Company:     appControllers.NewCompanyController(svc.Company, svc.Export),
		Application: appControllers.NewApplicationController(svc.Application),
		Import:      appControllers.NewImportController(svc.Import, maxUploadMB),
		Report:      appControllers.NewReportController(svc.Report, pinger),
		Admin:       appControllers.NewAdminController(svc.Auth, svc.Notification),
	}
}

// SeedAdmin creates the bootstrap admin account when none exists
func SeedAdmin(cfg *config.Config, store appRepos.Store, lgr zerolog.Logger) {
	account, ok := seed.ResolveAdmin(cfg.Admin.Email, cfg.Admin.Password, cfg.IsProduction())
	if !ok {
		lgr.Warn().Msg("No default admin configured, skipping admin seed")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := seed.CreateDefaultAdmin(ctx, store, account, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default admin, proceeding anyway...")
	}
}

// NewEngine creates a Gin engine with recovery, request logging and the
// custom validators registered.
func NewEngine(production bool, lgr zerolog.Logger) (*gin.Engine, error) {
	if production {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	if err := validation.RegisterWithGin(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(lgr))
	return router, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	router, err := NewEngine(cfg.IsProduction(), lgr)
	if err != nil {
		return nil, err
	}
	router.MaxMultipartMemory = int64(cfg.Server.MaxUploadMB) << 20

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)
	return router, nil
}
