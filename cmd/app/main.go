package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightpay/config"
	"github.com/Domenick1991/flightpay/internal/bootstrap"
	"github.com/Domenick1991/flightpay/internal/cache"
	"github.com/Domenick1991/flightpay/internal/chat"
	"github.com/Domenick1991/flightpay/internal/email"
	"github.com/Domenick1991/flightpay/internal/gateway"
	"github.com/Domenick1991/flightpay/internal/kafka"
	"github.com/Domenick1991/flightpay/internal/notify"
	"github.com/Domenick1991/flightpay/internal/repository"
	"github.com/Domenick1991/flightpay/internal/service/orders"
	"github.com/Domenick1991/flightpay/internal/service/sweeps"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis)
	defer redisCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	orderRepo := repository.NewOrderRepository(pool)
	notificationRepo := repository.NewNotificationLogRepository(pool)
	inappRepo := repository.NewUserNotificationRepository(pool)

	guard := notify.NewGuard(notificationRepo)
	emailSender := email.NewResendSender(cfg.Email, logger)
	chatSender := chat.NewWhatsAppSender(cfg.Chat)
	dispatcher := notify.NewDispatcher(guard, emailSender, chatSender, inappRepo, logger)

	verifier := gateway.NewVerifier(
		gateway.NewStripeAdapter(cfg.Stripe),
		gateway.NewFlutterwaveAdapter(cfg.Flutterwave),
	)

	orderService := orders.NewOrderService(
		orderRepo,
		verifier,
		dispatcher,
		tokenAuthorizer(cfg.Admin.Tokens),
		cfg.Email.AdminAddress,
		cfg.Chat.AdminPhone,
		cfg.Email.SiteURL,
		logger,
		orders.WithCache(redisCache),
		orders.WithProducer(producer, cfg.Kafka.OrderEventsTopic, cfg.Kafka.NotificationsTopic),
	)

	sweepService := sweeps.NewSweepService(orderRepo, dispatcher, redisCache, cfg.Sweep, cfg.Email.SiteURL, logger)

	if err := bootstrap.Run(ctx, cfg, orderService, sweepService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// tokenAuthorizer accepts any of the configured admin tokens. The core
// takes the predicate, not the token list.
func tokenAuthorizer(tokens []string) orders.Authorizer {
	allowed := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if t != "" {
			allowed[t] = struct{}{}
		}
	}
	return func(principal string) bool {
		_, ok := allowed[principal]
		return ok
	}
}
