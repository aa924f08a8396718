package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/api"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/application"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/config"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/database"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/services"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/events"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/infrastructure"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/infrastructure/observability"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/repository"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/storage"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/storage/pgstore"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/storage/redisstore"

	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	ConfigureLogging(cfg)
	log.WithField("environment", cfg.Environment).Info("Starting clash-cash-arena...")

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// Initialize event bus
	eventBus := events.NewBus()
	eventBus.SubscribeAll(logEvent)

	// Initialize metrics
	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		log.WithError(err).Warn("Metrics disabled")
	}
	metrics.Subscribe(eventBus)

	natsClient, err := connectNATS(ctx, cfg, eventBus)
	if err != nil {
		return err
	}

	if err := startDiscordNotifier(cfg, eventBus, natsClient); err != nil {
		return err
	}

	// Initialize unit of work factory
	repos := repository.NewRepositories(store, cfg.MinEntryFee, repository.Options{
		MaxRetries: cfg.CASMaxRetries,
		OnConflict: metrics.RecordCASConflict,
	})
	uowFactory := repository.NewUnitOfWorkFactory(repos, eventBus)

	// Initialize services
	svcs := api.Services{
		Settlement:  services.NewSettlementService(uowFactory, cfg),
		Accounts:    services.NewAccountService(uowFactory, cfg),
		Leaderboard: services.NewLeaderboardService(uowFactory),
		Platform:    services.NewPlatformService(uowFactory),
	}

	reconciler := application.NewSettlementReconciler(svcs.Settlement, metrics, cfg.ReconcileInterval)
	stopReconciler, err := reconciler.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to start settlement reconciler: %w", err)
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(cfg, svcs),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			stopReconciler()
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server did not shut down cleanly")
	}
	stopReconciler()

	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.WithError(err).Error("Error closing NATS connection")
		}
	}
	if err := metrics.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down metrics")
	}

	log.Info("Shutdown completed")
	return nil
}

// ConfigureLogging applies the configured level and formatter
func ConfigureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, func(), error) {
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
			db.Close()
			return nil, nil, err
		}
		return pgstore.New(db), db.Close, nil

	case config.StorageRedis:
		client, err := redisstore.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redisstore.New(client), func() {
			if err := client.Close(); err != nil {
				log.WithError(err).Error("Error closing redis client")
			}
		}, nil

	default:
		log.Warn("Using in-memory storage; balances are lost on restart")
		return storage.NewMemoryStore(), func() {}, nil
	}
}

func connectNATS(ctx context.Context, cfg *config.Config, bus *events.Bus) (*infrastructure.NATSClient, error) {
	if cfg.NATSServers == "" {
		log.Info("NATS disabled")
		return nil, nil
	}

	client := infrastructure.NewNATSClient(cfg.NATSServers, cfg.OTelServiceName)
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Connect(connectCtx); err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	mapper := infrastructure.NewEventSubjectMapper()
	if err := client.EnsureStream(infrastructure.StreamName, mapper.StreamSubjects()); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ensure NATS stream: %w", err)
	}

	publisher := infrastructure.NewNATSEventPublisher(client, mapper, cfg.OTelServiceName)
	bus.SubscribeAll(publisher.Handle)
	return client, nil
}

func startDiscordNotifier(cfg *config.Config, bus *events.Bus, natsClient *infrastructure.NATSClient) error {
	if cfg.DiscordToken == "" || cfg.DiscordChannelID == "" {
		log.Info("Discord notifications disabled")
		return nil
	}

	session, err := infrastructure.NewDiscordSession(cfg.DiscordToken)
	if err != nil {
		return err
	}
	notifier := infrastructure.NewDiscordNotifier(session, cfg.DiscordChannelID)

	if natsClient != nil {
		if err := notifier.SubscribeNATS(natsClient); err != nil {
			return fmt.Errorf("failed to subscribe Discord notifier: %w", err)
		}
		return nil
	}
	notifier.Subscribe(bus)
	return nil
}

func logEvent(_ context.Context, event events.Event) {
	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"message":   event.Message(),
	}).Info("Event")
}
