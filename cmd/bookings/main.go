package main

import (
	"fleetbook/internal/bookings/events"
	"fleetbook/internal/bookings/handler"
	"fleetbook/internal/bookings/repository"
	"fleetbook/internal/bookings/service"
	"fleetbook/internal/bookings/validator"
	vehiclesrepo "fleetbook/internal/vehicles/repository"
	"fleetbook/pkg/app"
	"fleetbook/pkg/clock"
	"fleetbook/pkg/config"
	"fleetbook/pkg/kafka"
	kafka_config "fleetbook/pkg/kafka/config"
	"fleetbook/pkg/scheduler"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Bookings service")

	clk := clock.System()
	publisher := initPublisher(cfg)
	bookingService, sweeper := initServices(cfg, clk, publisher)

	sweep := scheduler.NewDaily("expire-pending-bookings", cfg.SweepTime, sweeper.Task(), clk, cfg.Log)
	sweep.Start()

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(sweep.Stop)
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Warn("Failed to close event publisher", "error", err)
		}
	})
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.Run()
}

func initPublisher(cfg *config.Config) events.Publisher {
	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)
	if !kafkaCfg.Enabled {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return events.NoopPublisher{}
	}

	producer, err := kafka.NewProducer(kafkaCfg, events.Topic, events.DLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	return events.NewKafkaPublisher(producer)
}

func initServices(cfg *config.Config, clk clock.Clock, publisher events.Publisher) (service.BookingService, *service.Sweeper) {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewVehicleLockRepository(cfg)
	vehicleRepo := vehiclesrepo.NewMongoVehicleRepository(cfg)

	availability := service.NewAvailabilityService(vehicleRepo, bookingRepo)
	bookingService := service.NewBookingService(
		bookingRepo,
		lockRepo,
		availability,
		bookingValidator,
		publisher,
		clk,
		cfg,
	)
	sweeper := service.NewSweeper(bookingRepo, clk, cfg.Log)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService, sweeper
}
