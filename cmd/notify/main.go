package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"deskly/internal/notify"
	"deskly/pkg/config"
	"deskly/pkg/kafka"
	kafka_config "deskly/pkg/kafka/config"
)

const (
	ServiceName     = "notify"
	consumerGroupID = "deskly-notify"
)

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	notifier := &notify.LogNotifier{Log: cfg.Log}
	svc := notify.NewService(notifier, cfg.Log)

	consumer, err := kafka.NewConsumer(
		kafka_config.Load(),
		cfg.BookingEventsTopic,
		consumerGroupID,
		cfg.BookingEventsDLQ,
		svc.HandleMessage,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create booking events consumer", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-shutdown
		cfg.Log.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	cfg.Log.Info("Starting notification worker",
		"topic", cfg.BookingEventsTopic,
		"group_id", consumerGroupID,
	)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	cfg.Log.Info("Notification worker stopped")
}
