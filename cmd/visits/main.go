package main

import (
	"os"

	"homeshow/internal/visits/events"
	"homeshow/internal/visits/handler"
	"homeshow/internal/visits/repository"
	"homeshow/internal/visits/service"
	"homeshow/internal/visits/validator"
	"homeshow/pkg/app"
	"homeshow/pkg/config"
	"homeshow/pkg/kafka"
	kafka_config "homeshow/pkg/kafka/config"
)

const (
	ServiceName = "visits"

	visitEventsTopic = "visit-request-events"
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Visits service")
	visitService := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewVisitHandler(visitService, cfg.Log),
		handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config) service.VisitService {
	visitValidator := validator.NewVisitValidator(cfg.Log)
	visitRepo := repository.NewMongoVisitRepository(cfg)
	visitService := service.NewVisitService(
		visitRepo,
		visitValidator,
		initPublisher(cfg),
		cfg,
	)

	cfg.Log.Info("Visit service initialized", "database", cfg.MongoDatabaseName)
	return visitService
}

// initPublisher wires lifecycle events to Kafka when brokers are configured
// and falls back to a no-op publisher otherwise. Events are best-effort.
func initPublisher(cfg *config.Config) events.Publisher {
	if os.Getenv(kafka_config.EnvKafkaBrokers) == "" {
		cfg.Log.Info("Kafka brokers not configured, visit events disabled")
		return events.NewNoopPublisher()
	}

	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, visitEventsTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	cfg.Log.Info("Visit event publisher initialized", "topic", visitEventsTopic)
	return events.NewKafkaPublisher(producer, cfg.Log)
}
