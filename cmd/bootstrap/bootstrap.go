package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-console/config"
	deliveryHttp "clinic-console/internal/delivery/http"
	"clinic-console/internal/delivery/http/handler"
	"clinic-console/internal/delivery/http/middleware"
	"clinic-console/internal/infrastructure/backend"
	"clinic-console/internal/infrastructure/cache"
	"clinic-console/internal/infrastructure/database"
	"clinic-console/internal/metrics"
	"clinic-console/internal/repository"
	"clinic-console/internal/service"
	"clinic-console/internal/usecase"
	"clinic-console/pkg/jwt"
	"clinic-console/pkg/validator"

	"github.com/benbjohnson/clock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Sessions    *service.CalendarSessionService
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New(envFile string) (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	setupLogger(cfg.App.LogLevel)
	logrus.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env == "development")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	logrus.Info("Redis connected successfully")

	// Initialize all layers
	if err := app.initializeServer(); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// Migrate creates the appointment query tables and exits
func Migrate(envFile string) error {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	setupLogger(cfg.App.LogLevel)

	db, err := database.NewPostgresConnection(cfg.DB, true)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	return database.Migrate(db)
}

// setupLogger configures the logrus logger
func setupLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("Unknown LOG_LEVEL %q, using info", level)
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}

// initializeServer creates and configures the HTTP server
func (app *App) initializeServer() error {
	cfg := app.Config
	log := logrus.StandardLogger()

	loc, err := cfg.Calendar.Location()
	if err != nil {
		return err
	}

	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()

	var m *metrics.Metrics
	var observer service.SessionObserver
	if cfg.Metrics.Enabled {
		m = metrics.NewDefault()
		observer = m
	}

	// Initialize repositories
	appointmentRepo := repository.NewAppointmentRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(app.DB, log, auditLogRepo)
	backendClient := backend.NewClient(cfg.Backend, customValidator, log)
	app.Sessions = service.NewCalendarSessionService(backendClient, clock.New(), loc, cfg.Calendar, observer, auditService, log)

	// Initialize usecases
	searchUsecase := usecase.NewAppointmentSearchUsecase(app.DB, log, loc, appointmentRepo, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(app.DB, log, auditLogRepo)
	calendarUsecase := usecase.NewCalendarUsecase(app.Sessions, loc, log)

	// Initialize handlers
	appointmentHandler := handler.NewAppointmentHandler(searchUsecase, customValidator)
	calendarHandler := handler.NewCalendarHandler(calendarUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase, customValidator)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, cache.NewTokenRegistry(app.RedisClient))
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigin)

	// Initialize router
	router := deliveryHttp.NewRouter(calendarHandler, appointmentHandler, auditLogHandler, authMiddleware, corsMiddleware, m)

	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close stops calendar sessions and closes connections
func (app *App) Close() {
	if app.Sessions != nil {
		app.Sessions.Stop()
	}

	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
