package main

import (
	"context"

	"deskly/internal/availability"
	"deskly/internal/bookings/events"
	bookingshandler "deskly/internal/bookings/handler"
	bookingsrepo "deskly/internal/bookings/repository"
	bookingsservice "deskly/internal/bookings/service"
	bookingsvalidator "deskly/internal/bookings/validator"
	usersrepo "deskly/internal/users/repository"
	workspaceshandler "deskly/internal/workspaces/handler"
	workspacesrepo "deskly/internal/workspaces/repository"
	workspacesservice "deskly/internal/workspaces/service"
	workspacesvalidator "deskly/internal/workspaces/validator"
	"deskly/pkg/app"
	"deskly/pkg/config"
	"deskly/pkg/contracts"
	"deskly/pkg/kafka"
	kafka_config "deskly/pkg/kafka/config"
)

const ServiceName = "deskly"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting deskly service")
	handlers := initServices(cfg)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handlers...)
	serverApp.Run()
}

func initServices(cfg *config.Config) []contracts.Handler {
	workspaceRepo := workspacesrepo.NewMongoWorkspaceRepository(cfg)
	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	lockRepo := bookingsrepo.NewMongoWorkspaceLockRepository(cfg)
	userRepo := usersrepo.NewMongoUserRepository(cfg)

	if err := lockRepo.EnsureIndexes(context.Background()); err != nil {
		cfg.Log.Fatal("Failed to ensure workspace lock indexes", "error", err)
	}

	engine := availability.NewIntervalEngine(workspaceRepo, bookingRepo)

	workspaceService := workspacesservice.NewWorkspaceService(
		workspaceRepo,
		engine,
		workspacesvalidator.NewWorkspaceValidator(cfg.Log),
		cfg,
	)

	publisher := initPublisher(cfg)
	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		lockRepo,
		workspaceRepo,
		userRepo,
		engine,
		bookingsvalidator.NewBookingValidator(cfg, cfg.Log),
		publisher,
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)
	return []contracts.Handler{
		workspaceshandler.NewWorkspaceHandler(workspaceService, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
	}
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.BookingEventsEnabled {
		cfg.Log.Info("Booking events disabled")
		return events.NopPublisher{}
	}

	producer, err := kafka.NewProducer(kafka_config.Load(), cfg.BookingEventsTopic, cfg.BookingEventsDLQ)
	if err != nil {
		cfg.Log.Fatal("Failed to create booking events producer", "error", err)
	}

	cfg.Log.Info("Booking events enabled", "topic", cfg.BookingEventsTopic)
	return events.NewKafkaPublisher(producer, cfg.Log)
}
