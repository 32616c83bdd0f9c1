package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/divmrp/pkg/application/services/orchestration"
	"github.com/vsinha/divmrp/pkg/application/services/pricing"
	"github.com/vsinha/divmrp/pkg/config"
	"github.com/vsinha/divmrp/pkg/domain/repositories"
	"github.com/vsinha/divmrp/pkg/infrastructure/cache"
	"github.com/vsinha/divmrp/pkg/infrastructure/events"
	"github.com/vsinha/divmrp/pkg/infrastructure/logging"
	"github.com/vsinha/divmrp/pkg/infrastructure/messaging"
	csvloader "github.com/vsinha/divmrp/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/divmrp/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/divmrp/pkg/infrastructure/repositories/postgres"
	"github.com/vsinha/divmrp/pkg/infrastructure/reports"
	"github.com/vsinha/divmrp/pkg/interfaces/httpapi"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

const (
	// events kept by the in-process journal of the memory driver
	eventRetention = 10000
	// wait before reopening the receipts reader after a failure
	listenerBackoff = 5 * time.Second
)

// storage is the store chosen by the database driver
type storage struct {
	store repositories.Store
	tx    repositories.TxManager
	stock repositories.StockReader
	ready func(ctx context.Context) error
	close func() error
}

func main() {
	configDir := flag.String("config", "", "Directory containing config.yaml (default ./configs and .)")
	scenarioDir := flag.String("scenario", "", "CSV scenario directory to load at startup (memory driver only)")
	flag.Parse()

	var paths []string
	if *configDir != "" {
		paths = append(paths, *configDir)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting mrp-server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("database_driver", cfg.Database.Driver),
	)

	st, err := openStorage(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer st.close()

	deps := orchestration.Dependencies{
		Store:  st.store,
		Tx:     st.tx,
		Stock:  st.stock,
		Logger: logger,
	}

	if cfg.Redis.Addr != "" {
		rdb := cache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rdb.Close()
		var priceCache pricing.Cache = cache.NewPricingCache(rdb, cfg.Redis.TTL, logger.Named("cache"))
		deps.Cache = priceCache
		logger.Info("Pricing cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	var publishers events.FanOut
	var journal *events.InMemoryEventStore
	if cfg.Database.Driver == "memory" {
		journal = events.NewBoundedEventStore(eventRetention)
		publishers = append(publishers, journal)
	}
	if cfg.Kafka.Enabled() {
		kafkaPublisher := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic), logger.Named("events"))
		defer kafkaPublisher.Close()
		publishers = append(publishers, kafkaPublisher)
	}
	if len(publishers) > 0 {
		deps.Publisher = publishers
	}

	app := orchestration.NewApplication(deps)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *scenarioDir != "" {
		if cfg.Database.Driver != "memory" {
			logger.Fatal("A scenario can only be loaded into the memory store")
		}
		if err := loadScenario(ctx, *scenarioDir, st.tx, app, logger); err != nil {
			logger.Fatal("Failed to load scenario", zap.Error(err))
		}
	}

	if cfg.Kafka.Enabled() && cfg.Kafka.ReceiptsTopic != "" {
		open := func() messaging.MessageReader {
			return messaging.NewKafkaReader(cfg.Kafka.Brokers, cfg.Kafka.ReceiptsTopic, cfg.Kafka.GroupID)
		}
		go messaging.Supervise(ctx, open, app.Ledger, logger.Named("receipts"), listenerBackoff)
	}

	router := httpapi.NewRouter(httpapi.NewHandlers(app), httpapi.RouterConfig{
		Mode:      cfg.Server.Mode,
		JWTSecret: cfg.JWT.Secret,
		Ready:     st.ready,
	}, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	case err := <-serverErr:
		logger.Error("Server failed", zap.Error(err))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if journal != nil {
		logger.Info("Events published", zap.Int("count", journal.Position()))
	}
	logger.Info("Server exited")
}

func openStorage(cfg *config.Config, logger *zap.Logger) (*storage, error) {
	if cfg.Database.Driver == "memory" {
		store := memory.NewStore()
		logger.Warn("Using the in-memory store; data is lost on restart")
		return &storage{
			store: store,
			tx:    store,
			stock: store,
			close: func() error { return nil },
		}, nil
	}

	db, err := postgres.Open(postgres.Options{
		DSN:             cfg.Database.DSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		Debug:           cfg.Log.Level == "debug",
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("Database migration completed")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	store := postgres.NewStore(db)
	return &storage{
		store: store,
		tx:    store,
		stock: reports.NewStockReportFromSQL(sqlDB),
		ready: sqlDB.PingContext,
		close: sqlDB.Close,
	}, nil
}

// loadScenario writes the master data of dir and books its opening stock through the ledger
func loadScenario(ctx context.Context, dir string, tx repositories.TxManager, app *orchestration.Application, logger *zap.Logger) error {
	summary, err := csvloader.NewLoader(logger.Named("scenario")).LoadDir(ctx, dir, tx)
	if err != nil {
		return err
	}
	for i, req := range summary.OpeningStock {
		if _, err := app.Ledger.Adjust(ctx, req); err != nil {
			return fmt.Errorf("%s row %d: %w", csvloader.InventoryFile, i+2, err)
		}
	}
	return nil
}
