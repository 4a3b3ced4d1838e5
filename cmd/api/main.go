package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/kursadbilgin/slowmode-engine/internal/config"
	"github.com/kursadbilgin/slowmode-engine/internal/handler"
	"github.com/kursadbilgin/slowmode-engine/internal/infra/postgresql"
	"github.com/kursadbilgin/slowmode-engine/internal/infra/postgresql/migrations"
	infraredis "github.com/kursadbilgin/slowmode-engine/internal/infra/redis"
	"github.com/kursadbilgin/slowmode-engine/internal/observability"
	"github.com/kursadbilgin/slowmode-engine/internal/provider"
	"github.com/kursadbilgin/slowmode-engine/internal/queue"
	"github.com/kursadbilgin/slowmode-engine/internal/relay"
	"github.com/kursadbilgin/slowmode-engine/internal/repository"
	"github.com/kursadbilgin/slowmode-engine/internal/service"
	"github.com/kursadbilgin/slowmode-engine/internal/throttle"
	"github.com/kursadbilgin/slowmode-engine/internal/transport"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 10 * time.Second
	redisKeyPrefix  = "slowmode"
	amqpPrefetch    = 8
)

var _ relay.Dispatcher = (*queue.RabbitMQPublisher)(nil)

type stores struct {
	rooms      throttle.RoomRegistry
	timestamps throttle.TimestampStore
	settings   repository.SettingsRepository
	sqlDB      *sql.DB
}

// backgroundTask runs until ctx is done.
type backgroundTask func(ctx context.Context) error

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("slowmode-engine stopped with error", zap.Error(err))
	}
	logger.Info("slowmode-engine stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis initialization failed: %w", err)
	}
	defer rdb.Close()

	st, err := buildStores(cfg, rdb)
	if err != nil {
		return err
	}
	if st.sqlDB != nil {
		defer st.sqlDB.Close()
	}

	metrics := observability.NewMetrics()

	cooldown := throttle.NewCooldown(cfg.SlowModeDuration)
	settingsService, err := service.NewSettingsService(st.settings, cooldown, logger)
	if err != nil {
		return err
	}
	if err := settingsService.Load(ctx); err != nil {
		return err
	}
	secret, err := settingsService.EnsureSecret(ctx, cfg.RelaySecret)
	if err != nil {
		return err
	}

	platform, err := provider.NewChatClient(cfg.ChatAPIURL, cfg.ChatAPIToken)
	if err != nil {
		return fmt.Errorf("chat platform client init failed: %w", err)
	}

	noticeConsumer, err := relay.NewConsumer(secret, platform, cfg.BotUserID, logger)
	if err != nil {
		return err
	}
	noticeConsumer.SetMetrics(metrics)

	dispatcher, tasks, cleanup, err := buildRelay(cfg, noticeConsumer, metrics, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	producer, err := relay.NewProducer(secret, dispatcher, logger)
	if err != nil {
		return err
	}
	producer.SetMetrics(metrics)
	defer producer.Wait()

	evaluator, err := throttle.NewEvaluator(st.rooms, st.timestamps, cooldown)
	if err != nil {
		return err
	}
	guard, err := service.NewMessageGuard(evaluator, st.timestamps, producer, logger)
	if err != nil {
		return err
	}
	guard.SetMetrics(metrics)

	adminService, err := service.NewAdminService(st.rooms, st.timestamps, platform, cfg.BotUserID, logger)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          transport.ErrorHandler(logger),
		DisableStartupMessage: true,
	})
	app.Use(observability.RequestIDMiddleware())
	app.Use(metrics.HTTPMiddleware())
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	handler.RegisterHealthRoutes(app, st.sqlDB, rdb)
	if err := handler.RegisterSlowModeRoutes(app, handler.SlowModeServices{
		Guard:     guard,
		Deliverer: noticeConsumer,
		Admin:     adminService,
		Settings:  settingsService,
	}); err != nil {
		return err
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("slowmode-engine api started",
			zap.Int("port", cfg.APIPort),
			zap.String("store", cfg.StoreBackend),
			zap.String("relay", cfg.RelayTransport),
			zap.Int("cooldownSeconds", cooldown.Seconds()),
		)
		return app.Listen(fmt.Sprintf(":%d", cfg.APIPort))
	})
	g.Go(func() error {
		<-groupCtx.Done()
		return app.ShutdownWithTimeout(shutdownTimeout)
	})
	for _, task := range tasks {
		task := task
		g.Go(func() error { return task(groupCtx) })
	}

	return g.Wait()
}

func buildStores(cfg *config.Config, rdb *redis.Client) (*stores, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendRedis:
		rooms, err := infraredis.NewRoomRegistry(rdb, redisKeyPrefix)
		if err != nil {
			return nil, err
		}
		timestamps, err := infraredis.NewTimestampStore(rdb, redisKeyPrefix)
		if err != nil {
			return nil, err
		}
		settings, err := infraredis.NewSettingsStore(rdb, redisKeyPrefix)
		if err != nil {
			return nil, err
		}
		return &stores{rooms: rooms, timestamps: timestamps, settings: settings}, nil

	default:
		db, err := postgresql.NewPostgres(cfg.DatabaseDSN, postgresql.PoolOptions{})
		if err != nil {
			return nil, fmt.Errorf("postgres initialization failed: %w", err)
		}
		if err := migrations.Migrate(db); err != nil {
			return nil, fmt.Errorf("database migrations failed: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("postgres underlying db init failed: %w", err)
		}

		return &stores{
			rooms:      repository.NewGormRoomRegistry(db),
			timestamps: repository.NewGormTimestampStore(db),
			settings:   repository.NewGormSettingsRepo(db),
			sqlDB:      sqlDB,
		}, nil
	}
}

func buildRelay(
	cfg *config.Config,
	consumer *relay.Consumer,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (relay.Dispatcher, []backgroundTask, func(), error) {
	noop := func() {}

	switch cfg.RelayTransport {
	case config.RelayTransportMemory:
		channel := relay.NewChannel(cfg.RelayBuffer, logger)
		run := func(ctx context.Context) error {
			return channel.Run(ctx, consumer.Deliver)
		}
		return channel, []backgroundTask{run}, noop, nil

	case config.RelayTransportAMQP:
		mq, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return nil, nil, noop, fmt.Errorf("rabbitmq initialization failed: %w", err)
		}
		worker, err := service.NewNoticeWorker(
			queue.NewRabbitMQConsumer(mq, amqpPrefetch, logger),
			consumer,
			cfg.WorkerConcurrency,
			logger,
		)
		if err != nil {
			_ = mq.Close()
			return nil, nil, noop, err
		}
		worker.SetMetrics(metrics)

		cleanup := func() {
			if err := mq.Close(); err != nil {
				logger.Warn("failed to close rabbitmq connection", zap.Error(err))
			}
		}
		return queue.NewRabbitMQPublisher(mq), []backgroundTask{worker.Start}, cleanup, nil

	default:
		dispatcher, err := relay.NewHTTPDispatcher(cfg.SiteURL)
		if err != nil {
			return nil, nil, noop, err
		}
		return dispatcher, nil, noop, nil
	}
}
