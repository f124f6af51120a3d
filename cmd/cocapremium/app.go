package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/agamariel/cocapremium/internal/auth"
	"github.com/agamariel/cocapremium/internal/config"
	"github.com/agamariel/cocapremium/internal/events"
	"github.com/agamariel/cocapremium/internal/handlers"
	"github.com/agamariel/cocapremium/internal/logger"
	"github.com/agamariel/cocapremium/internal/metrics"
	"github.com/agamariel/cocapremium/internal/migrations"
	"github.com/agamariel/cocapremium/internal/services"
	"github.com/agamariel/cocapremium/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// App структура для управления приложением и его зависимостями.
type App struct {
	cfg       *config.Config
	log       *zap.Logger
	metrics   *metrics.Metrics
	dbPool    *pgxpool.Pool
	echo      *echo.Echo
	publisher *events.KafkaPublisher
	relay     *services.EventRelay

	handlers *handlers.Set
}

// NewApp создаёт и инициализирует новое приложение.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	app := &App{
		cfg:     cfg,
		log:     log,
		metrics: metrics.New(),
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initDependencies(); err != nil {
		return nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	app.initServer()

	return app, nil
}

// initDatabase выполняет миграции и подключается к базе данных.
func (app *App) initDatabase(ctx context.Context) error {
	if err := app.cfg.Validate(); err != nil {
		return err
	}

	app.log.Info("running database migrations")
	sqlDB, err := sql.Open("pgx", app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to open database connection: %w", err)
	}
	defer sqlDB.Close()

	applied, err := migrations.Run(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.log.Info("migrations completed", zap.Int64s("applied", applied))

	dbPool, err := pgxpool.New(ctx, app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return fmt.Errorf("unable to ping database: %w", err)
	}

	app.dbPool = dbPool
	app.log.Info("connected to database")

	return nil
}

// initDependencies собирает хранилища, сервисы и обработчики.
func (app *App) initDependencies() error {
	// Storage layer
	catalogStorage := storage.NewPostgresCatalogStorage(app.dbPool)
	orderStorage := storage.NewPostgresOrderStorage(app.dbPool)
	blobStorage := storage.NewPostgresBlobStorage(app.dbPool)
	outboxStorage := storage.NewPostgresOutboxStorage(app.dbPool)

	// Service layer
	catalogService := services.NewCatalogService(catalogStorage)
	orderService := services.NewOrderService(catalogStorage, orderStorage, app.cfg.PublicBaseURL, app.cfg.KafkaTopic, app.metrics, app.log.Named("orders"))
	uploadService := services.NewUploadService(blobStorage, app.cfg.PublicBaseURL, app.cfg.MaxUploadBytes, app.metrics, app.log.Named("uploads"))
	reportService := services.NewReportService(orderStorage)
	adminService := services.NewAdminService(app.cfg.AdminLogin, app.cfg.AdminPasswordHash, app.cfg.JWTSecret, app.cfg.TokenExpiration)

	// Handler layer
	app.handlers = &handlers.Set{
		Catalog: handlers.NewCatalogHandler(catalogService),
		Upload:  handlers.NewUploadHandler(uploadService, uploadService.MaxBytes()),
		Orders:  handlers.NewOrderHandler(orderService),
		Reports: handlers.NewReportHandler(reportService),
		Admin:   handlers.NewAdminHandler(adminService, app.cfg.TokenExpiration),
		Health:  handlers.NewHealthHandler(app.dbPool),
	}

	if app.cfg.AdminPasswordHash == "" {
		app.log.Warn("ADMIN_PASSWORD_HASH is not configured, admin login is disabled")
	}

	// События заказов копятся в outbox и без Kafka
	app.publisher = events.NewKafkaPublisher(app.cfg.KafkaBrokerList())
	if app.publisher.Enabled() {
		app.relay = services.NewEventRelay(outboxStorage, app.publisher, app.metrics, app.cfg.RelayInterval, app.log.Named("relay"))
		app.log.Info("event relay initialized",
			zap.Strings("brokers", app.cfg.KafkaBrokerList()), zap.String("topic", app.cfg.KafkaTopic))
	} else {
		app.log.Warn("KAFKA_BROKERS is not configured, order events stay in the outbox")
	}

	return nil
}

// initServer настраивает echo, middleware и маршруты.
func (app *App) initServer() {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.ErrorHandler(app.cfg.IsProduction(), app.log)

	// Middleware
	e.Use(middleware.Recover())
	e.Use(app.metrics.Middleware())
	e.Use(logger.RequestLogger(app.log.Named("http")))
	e.Use(middleware.Gzip())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, handlers.HeaderIdempotencyKey},
		ExposeHeaders: []string{echo.HeaderAuthorization},
	}))
	// запас над лимитом файла на заголовки multipart
	e.Use(middleware.BodyLimit(bodyLimit(app.cfg.MaxUploadBytes)))

	app.handlers.Register(e,
		auth.JWTMiddleware(app.cfg.JWTSecret, auth.RoleAdmin),
		auth.OptionalJWTMiddleware(app.cfg.JWTSecret, auth.RoleAdmin))
	e.GET("/metrics", echo.WrapHandler(app.metrics.Handler()))

	app.echo = e
}

// bodyLimit возвращает лимит тела запроса в формате BodyLimit, например "6M".
func bodyLimit(maxUpload int64) string {
	return strconv.FormatInt(maxUpload/(1024*1024)+1, 10) + "M"
}

// Start запускает фоновые воркеры и HTTP-сервер.
func (app *App) Start(ctx context.Context) error {
	if app.relay != nil {
		app.relay.Start(ctx)
		app.log.Info("event relay started", zap.Duration("interval", app.cfg.RelayInterval))
	}

	app.log.Info("starting server", zap.String("address", app.cfg.RunAddress))
	if err := app.echo.Start(app.cfg.RunAddress); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped: %w", err)
	}

	return nil
}

// Shutdown корректно завершает работу приложения.
func (app *App) Shutdown(ctx context.Context) error {
	app.log.Info("shutting down server")

	if err := app.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if app.publisher != nil {
		if err := app.publisher.Close(); err != nil {
			app.log.Warn("failed to close kafka writers", zap.Error(err))
		}
	}

	if app.dbPool != nil {
		app.dbPool.Close()
	}

	app.log.Info("server gracefully stopped")
	return nil
}
