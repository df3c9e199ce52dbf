package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"propertyhub.app/api"
	"propertyhub.app/cache"
	"propertyhub.app/config"
	"propertyhub.app/database"
	"propertyhub.app/pkg/logger"
	"propertyhub.app/providers"
	"propertyhub.app/queue"
	"propertyhub.app/repository"
	"propertyhub.app/service"
	"propertyhub.app/worker"
)

// Consumer concurrency per job type. Email sends are network-bound, so a
// small in-flight bound per process is enough.
const (
	authEmailConcurrency   = 5
	inviteEmailConcurrency = 2
)

// Application represents the main application with all its dependencies
type Application struct {
	config *config.Config
	log    *logger.Logger
	db     *gorm.DB

	store       *cache.Store
	reportCache *cache.ReportCache
	authCache   *cache.AuthCache

	broker      *queue.Broker
	registry    *queue.DashboardRegistry
	authQueue   *queue.Queue
	inviteQueue *queue.Queue

	inviteService *service.InviteService

	server *api.Server
}

// NewApplication creates and initializes a new application instance
func NewApplication() (*Application, error) {
	app := &Application{log: logger.New()}

	if err := app.loadConfiguration(); err != nil {
		return nil, err
	}

	if err := app.initializeDatabase(); err != nil {
		return nil, err
	}

	if err := app.initializeCaches(); err != nil {
		return nil, err
	}

	if err := app.initializeQueues(); err != nil {
		return nil, err
	}

	app.inviteService = service.NewInviteService(
		repository.NewInviteRepository(app.db),
		app.inviteQueue,
		app.config.AppBaseURL,
		app.log,
	)

	app.server = api.NewServer(app.config, app.registry, app.store)

	return app, nil
}

func (app *Application) loadConfiguration() error {
	app.log.Info("Loading configuration...")

	cfg, err := config.LoadConfig()
	if err != nil {
		app.log.Error("Failed to load configuration", "error", err)
		return fmt.Errorf("load application configuration: %w", err)
	}

	app.config = cfg
	app.log.Info("Configuration loaded successfully")
	return nil
}

func (app *Application) initializeDatabase() error {
	app.log.Info("Initializing database...")

	db, err := database.InitDB(app.config.Database)
	if err != nil {
		app.log.Error("Failed to initialize database", "error", err)
		return fmt.Errorf("initialize database connection: %w", err)
	}

	if err := database.RunMigrations(db); err != nil {
		app.log.Error("Failed to run database migrations", "error", err)
		return fmt.Errorf("run database migrations: %w", err)
	}

	app.db = db
	app.log.Info("Database initialized successfully")
	return nil
}

// initializeCaches builds the cache store and its facades. The store dials
// lazily, so an unreachable cache backend does not block startup; the
// first failing operation logs and the request path degrades to the
// primary store.
func (app *Application) initializeCaches() error {
	store, err := cache.NewStore(&app.config.Redis, &app.config.Cache, app.log)
	if err != nil {
		return fmt.Errorf("create cache store: %w", err)
	}

	app.store = store
	app.reportCache = cache.NewReportCache(store, &app.config.Cache, app.log)
	app.authCache = cache.NewAuthCache(store, &app.config.Cache, app.log)
	app.log.Info("Cache facades initialized")
	return nil
}

func (app *Application) initializeQueues() error {
	app.log.Info("Connecting to queue backend...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	broker, err := queue.Connect(ctx, &app.config.Queue, app.log)
	if err != nil {
		app.log.Error("Failed to connect to queue backend", "error", err)
		return fmt.Errorf("connect to queue backend: %w", err)
	}

	app.broker = broker
	app.registry = queue.NewDashboardRegistry()
	app.authQueue = queue.New(broker.JetStream(), broker.Config(), queue.AuthEmailQueue, app.registry, app.log)
	app.inviteQueue = queue.New(broker.JetStream(), broker.Config(), queue.InviteEmailQueue, app.registry, app.log)

	app.log.Info("Queues initialized", "count", app.registry.Len())
	return nil
}

// startConsumers binds the workers to their queues. Workers run in the same
// process here, but nothing in the wiring assumes co-location: any process
// holding a broker connection can consume.
func (app *Application) startConsumers(ctx context.Context) error {
	emailProvider := providers.NewSMTPEmailProvider(&app.config.Email)
	emailService := service.NewEmailService(emailProvider)
	inviteRepo := repository.NewInviteRepository(app.db)

	emailWorker := worker.NewEmailWorker(emailService, app.log)
	inviteWorker := worker.NewInviteEmailWorker(emailService, inviteRepo, app.log)

	if err := app.authQueue.RegisterConsumer(ctx, authEmailConcurrency, emailWorker.Execute); err != nil {
		return fmt.Errorf("register auth email consumer: %w", err)
	}
	if err := app.inviteQueue.RegisterConsumer(ctx, inviteEmailConcurrency, inviteWorker.Execute); err != nil {
		return fmt.Errorf("register invite email consumer: %w", err)
	}

	return nil
}

// Start starts the consumers and the admin HTTP server
func (app *Application) Start() error {
	app.log.Info("Starting application...")

	if err := app.startConsumers(context.Background()); err != nil {
		return err
	}

	app.log.Info("Starting admin HTTP server", "port", app.config.Server.Port)
	return app.server.Start()
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.log.Info("Shutting down application...")

	if app.authQueue != nil {
		app.authQueue.StopConsumer()
	}
	if app.inviteQueue != nil {
		app.inviteQueue.StopConsumer()
	}

	if app.broker != nil {
		if err := app.broker.Close(); err != nil {
			app.log.Warn("Error closing queue backend", "error", err)
		}
	}

	if app.store != nil {
		if err := app.store.Close(); err != nil {
			app.log.Warn("Error closing cache store", "error", err)
		}
	}

	if app.db != nil {
		if err := database.CloseDB(app.db); err != nil {
			app.log.Warn("Error closing database", "error", err)
		}
	}

	app.log.Info("Application shutdown complete")
	return nil
}

// Config returns the application configuration
func (app *Application) Config() *config.Config {
	return app.config
}

// ReportCache returns the report cache facade
func (app *Application) ReportCache() *cache.ReportCache {
	return app.reportCache
}

// AuthCache returns the auth cache facade
func (app *Application) AuthCache() *cache.AuthCache {
	return app.authCache
}

// AuthQueue returns the auth email queue
func (app *Application) AuthQueue() *queue.Queue {
	return app.authQueue
}

// InviteQueue returns the invite email queue
func (app *Application) InviteQueue() *queue.Queue {
	return app.inviteQueue
}

// InviteService returns the invite creation and dispatch service
func (app *Application) InviteService() *service.InviteService {
	return app.inviteService
}
