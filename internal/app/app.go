package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"classledger/internal/attendance"
	"classledger/internal/clock"
	"classledger/internal/config"
	"classledger/internal/db"
	"classledger/internal/events"
	"classledger/internal/health"
	"classledger/internal/ledger"
	"classledger/internal/logger"
	"classledger/internal/metrics"
	"classledger/internal/middleware"
	"classledger/internal/notify"
	"classledger/internal/report"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
)

type App struct {
	config   *config.Config
	router   chi.Router
	server   *http.Server
	logger   *slog.Logger
	db       *bun.DB
	notifier *notify.NATSNotifier
	producer *events.Producer
	reports  report.Service

	stopReminders context.CancelFunc
}

func New() *App {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses JSON format
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: slogLogger,
	}

	database := db.New(cfg.Database)
	app.db = database

	ctx := context.Background()
	if err := db.RunMigrations(ctx, database,
		(*ledger.Student)(nil),
		(*ledger.Payment)(nil),
		(*attendance.Record)(nil),
	); err != nil {
		log.Fatal("failed to run migrations:", err)
	}

	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	healthHandler := health.NewHandler()
	healthHandler.RegisterRoutes(app.router)

	m, err := metrics.New(otel.Meter(ServiceName))
	if err != nil {
		log.Fatal("failed to init metrics:", err)
	}

	// Notifier is best-effort: fall back to a no-op when NATS is unavailable
	var notifier notify.Notifier = notify.Noop{}
	natsNotifier, err := notify.NewNATSNotifier(cfg.NATS.URL, cfg.NATS.Subject, slogLogger)
	if err != nil {
		slogLogger.Warn("failed to initialize NATS notifier, notifications disabled", "error", err)
	} else {
		notifier = natsNotifier
		app.notifier = natsNotifier
	}

	// Same pattern for the Kafka audit stream
	var publisher *events.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err = events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, slogLogger)
		if err != nil {
			slogLogger.Warn("failed to initialize kafka producer, events disabled", "error", err)
			publisher = nil
		}
	}
	app.producer = publisher

	var ledgerEvents ledger.EventPublisher
	var attendanceEvents attendance.EventPublisher
	if publisher != nil {
		ledgerEvents = publisher
		attendanceEvents = publisher
	}

	clk := clock.System{}

	ledgerRepo := ledger.NewRepository(database)
	ledgerService := ledger.NewService(ledgerRepo, clk, notifier, ledgerEvents, slogLogger)
	ledgerHandler := ledger.NewHandler(ledgerService, slogLogger, m)

	attendanceRepo := attendance.NewRepository(database)
	attendanceService := attendance.NewService(attendanceRepo, ledgerRepo, clk, attendanceEvents, slogLogger)
	attendanceHandler := attendance.NewHandler(attendanceService, slogLogger, m)

	reportRepo := report.NewRepository(database)
	reportService := report.NewService(reportRepo, clk, notifier, cfg.Reminder.WindowDays, slogLogger)
	reportHandler := report.NewHandler(reportService, slogLogger, m)
	app.reports = reportService

	app.router.Route("/api", func(r chi.Router) {
		ledgerHandler.RegisterRoutes(r)
		attendanceHandler.RegisterRoutes(r)
		reportHandler.RegisterRoutes(r)
	})

	slogLogger.Info("application initialized successfully")

	return app
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	if a.config.Reminder.Enabled {
		ctx, cancel := context.WithCancel(context.Background())
		a.stopReminders = cancel
		go a.runReminderLoop(ctx)
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	return a.server.ListenAndServe()
}

// runReminderLoop periodically sweeps for students with pending fees whose
// course is about to end and publishes reminder notifications.
func (a *App) runReminderLoop(ctx context.Context) {
	interval := time.Duration(a.config.Reminder.IntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.logger.Info("fee reminder loop started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("fee reminder loop stopped")
			return
		case <-ticker.C:
			if _, err := a.reports.SendFeeReminders(ctx); err != nil {
				a.logger.Error("fee reminder sweep failed", "error", err)
			}
		}
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	if a.stopReminders != nil {
		a.stopReminders()
	}
	if a.notifier != nil {
		a.notifier.Close()
	}
	if a.producer != nil {
		a.producer.Close()
	}

	err := a.server.Shutdown(ctx)
	db.Close(a.db)
	return err
}
