package main

import (
	"fleetbook/internal/reports/handler"
	"fleetbook/internal/reports/repository"
	"fleetbook/internal/reports/service"
	"fleetbook/pkg/app"
	"fleetbook/pkg/clock"
	"fleetbook/pkg/config"
)

const ServiceName = "reports"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Reports service")
	reportService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewReportHandler(reportService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.ReportService {
	reportRepo := repository.NewMongoReportRepository(cfg)
	reportService := service.NewReportService(reportRepo, clock.System(), cfg)

	cfg.Log.Info("Report service initialized", "database", cfg.MongoDatabaseName)
	return reportService
}
