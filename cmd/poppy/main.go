package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Gobusters/ectologger"
	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Ramsey-B/poppy/config"
	"github.com/Ramsey-B/poppy/db"
	"github.com/Ramsey-B/poppy/internal/server"
	"github.com/Ramsey-B/poppy/pkg/database"
	"github.com/Ramsey-B/poppy/pkg/events"
	"github.com/Ramsey-B/poppy/pkg/health"
	"github.com/Ramsey-B/poppy/pkg/kafka"
	"github.com/Ramsey-B/poppy/pkg/startup"
	"github.com/Ramsey-B/poppy/pkg/tracing"
	"github.com/Ramsey-B/poppy/pkg/tracing/exporters"
	"github.com/Ramsey-B/poppy/pkg/views"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "poppy: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the party builder web server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}

	root := &cobra.Command{
		Use:           "poppy",
		Short:         "Pokémon party builder",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveCmd.RunE,
	}
	root.AddCommand(serveCmd, &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return migrateOnly(cmd.Context())
		},
	})
	return root
}

func newApplication() (*application, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, zapLogger, err := config.NewLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	app := &application{cfg: cfg, logger: logger, checker: health.NewChecker(cfg.Version)}
	return app, func() { _ = zapLogger.Sync() }, nil
}

// migrateOnly brings the schema up to date without serving
func migrateOnly(ctx context.Context) error {
	app, sync, err := newApplication()
	if err != nil {
		return err
	}
	defer sync()

	s := startup.NewStartup(app.logger, app.cfg.StartupMaxAttempts)
	app.registerStorage(s)

	startErr := s.Start(ctx)
	if startErr != nil {
		app.logger.WithError(startErr).Error("Failed to migrate database")
	}
	if err := stopDependencies(s, app.cfg, app.logger); err != nil && startErr == nil {
		return err
	}
	return startErr
}

func serve(ctx context.Context) error {
	app, sync, err := newApplication()
	if err != nil {
		return err
	}
	defer sync()

	cfg, logger := app.cfg, app.logger

	renderer, err := views.NewRenderer()
	if err != nil {
		logger.WithError(err).Error("Failed to load page templates")
		return err
	}

	s := startup.NewStartup(logger, cfg.StartupMaxAttempts)
	app.registerStorage(s)
	app.registerKafka(s)

	if err := s.Start(ctx); err != nil {
		logger.WithError(err).Error("Failed to start dependencies")
		_ = stopDependencies(s, cfg, logger)
		return err
	}

	e := server.New(server.Options{
		Config:     cfg,
		Logger:     logger,
		DataSource: database.NewDataSource(app.db, logger, cfg.DatabaseQueryTimeout),
		Renderer:   renderer,
		Emitter:    app.emitter(),
		Health:     app.checker,
	})
	srv := server.HTTPServer(cfg, e)

	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	app.checker.SetReady(true)

	var failure error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-serveErr:
		if err != nil {
			logger.WithError(err).Error("HTTP server failed")
			failure = err
		}
	}
	app.checker.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to drain HTTP server")
		failure = errors.Join(failure, err)
	}

	// the kafka dependency waits for events still being published
	if err := stopDependencies(s, cfg, logger); err != nil {
		failure = errors.Join(failure, err)
	}
	return failure
}

func stopDependencies(s *startup.Startup, cfg *config.Config, logger ectologger.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		logger.WithError(err).Error("Failed to stop dependencies")
		return err
	}
	return nil
}

// application holds what the startup dependencies produce
type application struct {
	cfg      *config.Config
	logger   ectologger.Logger
	checker  *health.Checker
	provider *tracing.Provider
	db       database.DB
	producer *kafka.Producer
	events   *events.PublishingEmitter
}

// registerStorage registers tracing, the database pool and the migrations
func (a *application) registerStorage(s *startup.Startup) {
	s.AddDependency(&startup.Dependency{
		Name:    "tracing",
		OnStart: a.startTracing,
		OnStop: func(ctx context.Context) error {
			if a.provider == nil {
				return nil
			}
			return a.provider.Shutdown(ctx)
		},
	})

	s.AddDependency(&startup.Dependency{
		Name:     "database",
		Requires: []string{"tracing"},
		OnStart:  a.startDatabase,
		OnStop: func(context.Context) error {
			if a.db == nil {
				return nil
			}
			return a.db.Close()
		},
	})

	s.AddDependency(&startup.Dependency{
		Name:     "migrations",
		Requires: []string{"database"},
		OnStart:  a.migrate,
	})
}

func (a *application) registerKafka(s *startup.Startup) {
	if !a.cfg.KafkaEnabled {
		return
	}
	s.AddDependency(&startup.Dependency{
		Name:     "kafka",
		Requires: []string{"tracing"},
		OnStart:  a.startKafka,
		OnStop: func(ctx context.Context) error {
			if a.producer == nil {
				return nil
			}
			if a.events != nil {
				if err := a.events.Close(ctx); err != nil {
					a.logger.WithError(err).Warn("Gave up waiting for events to publish")
				}
			}
			return a.producer.Close()
		},
	})
}

func (a *application) migrate(ctx context.Context) error {
	ms := database.NewMigrationService(a.logger, &database.MigrationConfig{
		Migrations:          db.Migrations(),
		MigrationFolderPath: a.cfg.DatabaseMigrationFolderPath,
		Version:             uint(a.cfg.DatabaseMigrationVersion),
		Force:               a.cfg.DatabaseMigrationForce,
		AutoRollback:        a.cfg.DatabaseMigrationAutoRollback,
	})
	return ms.MigrateDatabase(ctx, a.db, a.cfg.DatabaseName)
}

func (a *application) startTracing(ctx context.Context) error {
	if a.provider != nil {
		return nil
	}

	var exporter sdktrace.SpanExporter = exporters.NewConsoleExporter(a.logger)
	if a.cfg.OTLPEnabled {
		otlpExporter, err := exporters.NewOTLPExporter(ctx, exporters.OTLPConfig{
			Endpoint: a.cfg.OTLPEndpoint,
			Protocol: a.cfg.OTLPProtocol,
			Insecure: a.cfg.OTLPInsecure,
			Headers:  exporters.ParseHeaders(a.cfg.OTLPHeaders),
		})
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		exporter = otlpExporter
	}

	a.provider = tracing.NewProvider(a.cfg.AppName, exporter)
	return nil
}

func (a *application) startDatabase(ctx context.Context) error {
	conn, err := database.Connect(ctx, database.PoolConfig{
		DSN:             a.cfg.DatabaseDSN(),
		MaxOpenConns:    a.cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    a.cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: a.cfg.DatabaseConnMaxLifetime,
	}, a.logger)
	if err != nil {
		return err
	}

	a.db = conn
	a.checker.AddCheck("database", conn.PingContext)
	return nil
}

func (a *application) startKafka(ctx context.Context) error {
	producer, err := kafka.NewProducer(kafka.Config{
		Brokers:     a.cfg.KafkaBrokerList(),
		Topic:       a.cfg.KafkaPartyTopic,
		Compression: a.cfg.KafkaCompression,
	}, a.logger)
	if err != nil {
		return err
	}

	if err := producer.Ping(ctx); err != nil {
		_ = producer.Close()
		return fmt.Errorf("failed to reach kafka: %w", err)
	}

	a.producer = producer
	a.checker.AddOptionalCheck("kafka", producer.Ping)
	return nil
}

// emitter publishes to Kafka when it is enabled and drops events otherwise
func (a *application) emitter() events.Emitter {
	if a.producer == nil {
		return events.NewNoopEmitter()
	}
	a.events = events.NewEmitter(a.producer, a.logger, a.cfg.KafkaPublishTimeout)
	return a.events
}
