package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"pivot-trading-engine/config"
	"pivot-trading-engine/internal/api"
	"pivot-trading-engine/internal/circuit"
	"pivot-trading-engine/internal/database"
	"pivot-trading-engine/internal/engine"
	"pivot-trading-engine/internal/events"
	"pivot-trading-engine/internal/execution"
	"pivot-trading-engine/internal/hours"
	"pivot-trading-engine/internal/logging"
	"pivot-trading-engine/internal/marketdata"
	"pivot-trading-engine/internal/notification"
)

func main() {
	// .env file is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logger := logging.New(&logging.Config{
		Level:      cfg.LoggingConfig.Level,
		Output:     cfg.LoggingConfig.Output,
		JSONFormat: cfg.LoggingConfig.JSONFormat,
		Component:  "main",
	})
	logging.SetDefault(logger)
	logger.Info("Structured logging initialized")

	schedule, err := hours.NewSchedule(hours.Config{
		OpenTime:       cfg.MarketConfig.OpenTime,
		CloseTime:      cfg.MarketConfig.CloseTime,
		EODExitTime:    cfg.MarketConfig.EODExitTime,
		FirstCandleEnd: cfg.MarketConfig.FirstCandleEnd,
		Timezone:       cfg.MarketConfig.Timezone,
		Holidays:       cfg.MarketConfig.Holidays,
	})
	if err != nil {
		log.Fatalf("Invalid market schedule: %v", err)
	}

	eventBus := events.NewEventBus()

	// Notifications
	var notifyManager *notification.Manager
	if cfg.NotificationConfig.Enabled {
		notifyManager = notification.NewManager()
		if cfg.NotificationConfig.Telegram.Enabled {
			notifyManager.AddNotifier(notification.NewTelegramNotifier(notification.TelegramConfig{
				BotToken: cfg.NotificationConfig.Telegram.BotToken,
				ChatID:   cfg.NotificationConfig.Telegram.ChatID,
				Enabled:  cfg.NotificationConfig.Telegram.Enabled,
			}))
			logger.Info("Telegram notifications enabled")
		}
	}

	// Database is optional: without it the engine trades but nothing is
	// persisted and the history endpoints return 503
	var repo *database.Repository
	db, err := database.NewDB(database.Config{
		Host:     cfg.DatabaseConfig.Host,
		Port:     cfg.DatabaseConfig.Port,
		User:     cfg.DatabaseConfig.User,
		Password: cfg.DatabaseConfig.Password,
		Database: cfg.DatabaseConfig.Database,
		SSLMode:  cfg.DatabaseConfig.SSLMode,
	})
	if err != nil {
		logger.Warn("Database unavailable, running without persistence", "error", err)
	} else {
		defer db.Close()
		if err := db.RunMigrations(context.Background()); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		repo = database.NewRepository(db)
		logger.Info("Database connected", "host", cfg.DatabaseConfig.Host, "database", cfg.DatabaseConfig.Database)
	}

	// Session state store for mid-session restarts. Works memory-only
	// when Redis is disabled or unreachable.
	var redisClient *redis.Client
	if cfg.RedisConfig.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig.Address,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
			PoolSize: cfg.RedisConfig.PoolSize,
		})
	}
	sessionStore := database.NewRedisSessionStateRepository(redisClient)

	// Market data feed: simulated in dry-run, broker API otherwise
	var feed marketdata.Feed
	if cfg.TradingConfig.DryRun {
		feed = marketdata.NewSimFeed(time.Now().UnixNano())
		logger.Info("Dry run: using simulated market data")
	} else {
		apiKey := os.Getenv("BROKER_API_KEY")
		accessToken := os.Getenv("BROKER_ACCESS_TOKEN")
		if apiKey == "" || accessToken == "" {
			log.Fatal("BROKER_API_KEY and BROKER_ACCESS_TOKEN are required outside dry run")
		}
		feed = marketdata.NewGuardedFeed(
			marketdata.NewBrokerFeed(apiKey, accessToken, os.Getenv("BROKER_BASE_URL")),
			circuit.NewBreaker(circuit.DefaultConfig()))
	}

	sink := execution.NewPaperSink(zerolog.New(os.Stdout).With().Timestamp().Logger())

	var recorder engine.Recorder
	if repo != nil {
		recorder = repo
	}
	var alerter engine.Alerter
	if notifyManager != nil {
		alerter = notifyManager
	}

	tradingEngine, err := engine.New(engine.Config{
		Instrument:             cfg.TradingConfig.Instrument,
		LotSize:                cfg.TradingConfig.LotSize,
		StrikeInterval:         cfg.TradingConfig.StrikeInterval,
		StrikeRange:            cfg.TradingConfig.StrikeRange,
		MaxReEntries:           cfg.TradingConfig.MaxReEntries,
		CycleInterval:          time.Duration(cfg.EngineConfig.CycleIntervalSeconds) * time.Second,
		WindowSize:             cfg.EngineConfig.WindowSize,
		MinWindowSamples:       cfg.EngineConfig.MinWindowSamples,
		SignificancePercentile: cfg.EngineConfig.SignificancePercentile,
		StructureThreshold:     cfg.EngineConfig.StructureThreshold,
		TimeoutCandles:         cfg.EngineConfig.TimeoutCandles,
	}, schedule, feed, sink, recorder, sessionStore, alerter, eventBus)
	if err != nil {
		log.Fatalf("Failed to initialize engine: %v", err)
	}

	// Web server: status API and WebSocket event stream
	var server *api.Server
	if cfg.ServerConfig.Enabled {
		server = api.NewServer(api.ServerConfig{
			Host:           cfg.ServerConfig.Host,
			Port:           cfg.ServerConfig.Port,
			ProductionMode: true,
		}, repo, eventBus, tradingEngine)

		go func() {
			if err := server.Start(); err != nil {
				logger.Error("Web server stopped", "error", err)
			}
		}()
		logger.Info("Web interface started", "host", cfg.ServerConfig.Host, "port", cfg.ServerConfig.Port)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting pivot trading engine",
		"instrument", cfg.TradingConfig.Instrument,
		"dry_run", cfg.TradingConfig.DryRun,
		"max_re_entries", cfg.TradingConfig.MaxReEntries)

	if err := tradingEngine.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("Engine stopped", "error", err)
	}

	logger.Info("Shutting down")
	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.ServerConfig.ShutdownTimeout)*time.Second)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			logger.Error("Web server shutdown failed", "error", err)
		}
	}
}
