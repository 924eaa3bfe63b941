package main

import (
	"homeshow/internal/availability/handler"
	"homeshow/internal/availability/repository"
	"homeshow/internal/availability/service"
	"homeshow/internal/availability/validator"
	"homeshow/pkg/app"
	"homeshow/pkg/config"
)

const ServiceName = "availability"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Availability service")
	availabilityService := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewAvailabilityHandler(availabilityService, cfg.Log),
		handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config) service.AvailabilityService {
	slotValidator := validator.NewSlotValidator(cfg.Log)
	slotRepo := repository.NewMongoSlotRepository(cfg)
	availabilityService := service.NewAvailabilityService(
		slotRepo,
		slotValidator,
		cfg,
	)

	cfg.Log.Info("Availability service initialized", "database", cfg.MongoDatabaseName)
	return availabilityService
}
