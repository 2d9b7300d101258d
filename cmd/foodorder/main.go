package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"

	"github.com/slooze/foodorder/internal/app"
	"github.com/slooze/foodorder/internal/audit"
	audithttp "github.com/slooze/foodorder/internal/audit/http"
	"github.com/slooze/foodorder/internal/auth"
	"github.com/slooze/foodorder/internal/observability"
	"github.com/slooze/foodorder/internal/orders"
	"github.com/slooze/foodorder/internal/payments"
	"github.com/slooze/foodorder/internal/platform/db"
	"github.com/slooze/foodorder/internal/platform/kv"
	"github.com/slooze/foodorder/internal/platform/mq"
	"github.com/slooze/foodorder/internal/rbac"
	"github.com/slooze/foodorder/internal/restaurants"
	"github.com/slooze/foodorder/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("foodorder exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	if cfg.AutoMigrate {
		if err := db.Migrate(cfg.PGDSN); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	pool, err := db.New(ctx, db.PoolConfig{DSN: cfg.PGDSN, MaxConns: cfg.PGMaxConns, MaxConnLifetime: cfg.PGMaxConnLife})
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient, err := kv.New(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	guard := rbac.Middleware{Logger: logger, Observer: metrics}

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		return err
	}
	authService := auth.NewService(auth.NewRepository(pool), tokens, auth.NewRedisRevocations(redisClient), logger)

	restaurantRepo := restaurants.NewRepository(pool)
	restaurantService := restaurants.NewService(restaurantRepo, logger)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("asynq client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	notifiers := []orders.Notifier{jobClient}
	broker, err := mq.Connect(cfg.AMQPURL)
	if err != nil {
		logger.Warn("rabbitmq unavailable, order events will not be published", slog.Any("error", err))
	} else {
		defer func() {
			if err := broker.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
				logger.Warn("rabbitmq close", slog.Any("error", err))
			}
		}()
		publisher := mq.NewPublisher(broker.Channel, cfg.OrderExchange, amqp.ExchangeTopic)
		notifiers = append(notifiers, orders.NewEventPublisher(publisher))
	}

	orderService := orders.NewService(
		orders.NewRepository(pool),
		restaurantRepo,
		logger,
		orders.WithNotifiers(notifiers...),
		orders.WithObserver(metrics),
	)
	paymentService := payments.NewService(payments.NewRepository(pool), logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Verifier:          authService,
		AuthHandler:       auth.NewHandler(logger, authService),
		RestaurantHandler: restaurants.NewHandler(logger, restaurantService, guard),
		OrderHandler:      orders.NewHandler(logger, orderService, guard),
		PaymentHandler:    payments.NewHandler(logger, paymentService, guard),
		AuditHandler:      audithttp.NewHandler(logger, audit.NewService(audit.NewRepository(pool)), guard),
		JobHandler:        jobs.NewHandler(inspector, logger),
		RBACMiddleware:    guard,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
