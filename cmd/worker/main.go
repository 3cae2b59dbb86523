package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightpay/config"
	"github.com/Domenick1991/flightpay/internal/cache"
	"github.com/Domenick1991/flightpay/internal/chat"
	"github.com/Domenick1991/flightpay/internal/email"
	"github.com/Domenick1991/flightpay/internal/kafka"
	"github.com/Domenick1991/flightpay/internal/notify"
	"github.com/Domenick1991/flightpay/internal/repository"
	"github.com/Domenick1991/flightpay/internal/service/sweeps"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	kafkaGo "github.com/segmentio/kafka-go"
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

	orderRepo := repository.NewOrderRepository(pool)
	notificationRepo := repository.NewNotificationLogRepository(pool)
	inappRepo := repository.NewUserNotificationRepository(pool)

	guard := notify.NewGuard(notificationRepo)
	emailSender := email.NewResendSender(cfg.Email, logger)
	chatSender := chat.NewWhatsAppSender(cfg.Chat)
	dispatcher := notify.NewDispatcher(guard, emailSender, chatSender, inappRepo, logger)

	sweepService := sweeps.NewSweepService(orderRepo, dispatcher, redisCache, cfg.Sweep, cfg.Email.SiteURL, logger)

	// Chat alerts ride the notifications topic; the worker delivers them
	// so a slow relay never sits inside the payment request path.
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.OrderEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				logger.Error("decode notification event", "err", err)
				return nil
			}
			if event.Type != "admin_chat_alert" {
				return nil
			}
			text := "Order " + event.OrderNumber + " paid: " + event.Amount + " " + event.Currency + " via " + event.Provider
			dispatcher.SendChat(ctx, event.OrderID, cfg.Chat.AdminPhone, text)
			return nil
		}); err != nil && ctx.Err() == nil {
			logger.Error("consumer stopped", "err", err)
		}
	}()

	ticker := time.NewTicker(time.Duration(cfg.Worker.SweepIntervalMinutes) * time.Minute)
	defer ticker.Stop()

	logger.Info("worker started", "sweep_interval_minutes", cfg.Worker.SweepIntervalMinutes)

	for {
		select {
		case <-ticker.C:
			if sent, err := sweepService.RunReminderSweep(ctx); err != nil {
				logger.Error("reminder sweep failed", "err", err)
			} else if sent > 0 {
				logger.Info("reminders sent", "count", sent)
			}
			if sent, err := sweepService.RunSurveySweep(ctx); err != nil {
				logger.Error("survey sweep failed", "err", err)
			} else if sent > 0 {
				logger.Info("surveys sent", "count", sent)
			}
		case <-ctx.Done():
			logger.Info("worker shutting down")
			return
		}
	}
}
