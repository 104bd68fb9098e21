package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/agency-portal/internal"
	"github.com/frahmantamala/agency-portal/internal/analytics"
	analyticspg "github.com/frahmantamala/agency-portal/internal/analytics/postgres"
	"github.com/frahmantamala/agency-portal/internal/auth"
	authpg "github.com/frahmantamala/agency-portal/internal/auth/postgres"
	"github.com/frahmantamala/agency-portal/internal/core/events"
	"github.com/frahmantamala/agency-portal/internal/lead"
	leadpg "github.com/frahmantamala/agency-portal/internal/lead/postgres"
	"github.com/frahmantamala/agency-portal/internal/messaging"
	messagingpg "github.com/frahmantamala/agency-portal/internal/messaging/postgres"
	"github.com/frahmantamala/agency-portal/internal/notification"
	"github.com/frahmantamala/agency-portal/internal/project"
	projectpg "github.com/frahmantamala/agency-portal/internal/project/postgres"
	"github.com/frahmantamala/agency-portal/internal/transport/rest"
	"github.com/frahmantamala/agency-portal/internal/user"
	userpg "github.com/frahmantamala/agency-portal/internal/user/postgres"
	"github.com/frahmantamala/agency-portal/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config     *internal.Config
	DB         *sqlx.DB
	Router     *chi.Mux
	Logger     *slog.Logger
	Bus        *events.Bus
	Dispatcher *notification.Dispatcher
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		// drain in-flight event handlers before the notification pool stops
		deps.Bus.Wait()
		deps.Dispatcher.Shutdown()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	appLogger := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// gorm shares the pgx pool instead of opening a second one
	gormDB, err := gorm.Open(gormpg.New(gormpg.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	bus := events.NewBus(appLogger)
	dispatcher := notification.NewDispatcher(notification.Config{
		MaxWorkers: config.Notification.MaxWorkers,
		QueueSize:  config.Notification.QueueSize,
	}, buildSenders(config.Notification, appLogger), appLogger)
	notification.RegisterSubscribers(bus, dispatcher)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)

	authService := auth.NewService(authpg.NewRepository(gormDB), tokenGen, config.Security.BCryptCost, appLogger)
	userService := user.NewService(userpg.NewRepository(gormDB), config.Security.BCryptCost, appLogger)
	projectService := project.NewService(projectpg.NewRepository(gormDB), appLogger)
	messagingService := messaging.NewService(messagingpg.NewRepository(gormDB), projectService, bus, appLogger)
	leadService := lead.NewService(leadpg.NewRepository(gormDB), config.LeadForm.RateLimit, config.LeadForm.RateLimitWindow, bus, appLogger)
	analyticsService := analytics.NewService(analyticspg.NewRepository(gormDB), appLogger)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, rest.Handlers{
		Auth:      auth.NewHandler(authService),
		User:      user.NewHandler(userService),
		Project:   project.NewHandler(projectService),
		Messaging: messaging.NewHandler(messagingService),
		Lead:      lead.NewHandler(leadService),
		Analytics: analytics.NewHandler(analyticsService),
	}, config.Server.AllowedOrigins, appLogger)

	return &Dependencies{
		Config:     config,
		DB:         db,
		Router:     router,
		Logger:     appLogger,
		Bus:        bus,
		Dispatcher: dispatcher,
	}, nil
}

func buildSenders(cfg internal.NotificationConfig, appLogger *slog.Logger) []notification.SenderAPI {
	var senders []notification.SenderAPI
	if cfg.SlackWebhookURL != "" {
		senders = append(senders, notification.NewSlackSender(cfg.SlackWebhookURL, cfg.SendTimeout, appLogger))
	}
	if cfg.SMTPHost != "" && cfg.NotifyAddress != "" {
		senders = append(senders, notification.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom, cfg.NotifyAddress, appLogger))
	}
	if len(senders) == 0 {
		appLogger.Warn("no notification channels configured, staff alerts will be dropped")
	}
	return senders
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
