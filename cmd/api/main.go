package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/motorledger/motorledger-backend/api/routes"
	"github.com/motorledger/motorledger-backend/internal/auth"
	"github.com/motorledger/motorledger-backend/internal/expenses"
	"github.com/motorledger/motorledger-backend/internal/fuel"
	"github.com/motorledger/motorledger-backend/internal/receipts"
	"github.com/motorledger/motorledger-backend/internal/reports"
	"github.com/motorledger/motorledger-backend/internal/users"
	"github.com/motorledger/motorledger-backend/internal/vehicles"
	"github.com/motorledger/motorledger-backend/pkg/config"
	"github.com/motorledger/motorledger-backend/pkg/db"
	"github.com/motorledger/motorledger-backend/pkg/logger"
	"github.com/motorledger/motorledger-backend/pkg/metrics"
	"github.com/motorledger/motorledger-backend/pkg/migrate"
	"github.com/motorledger/motorledger-backend/pkg/storage"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	fileStore, err := storage.NewLocalStore(cfg.Uploads.Dir)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare upload storage", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	vehicleRepo := vehicles.NewRepository(dbClient.DB())
	expenseRepo := expenses.NewRepository(dbClient.DB())
	fuelRepo := fuel.NewRepository(dbClient.DB())
	receiptRepo := receipts.NewRepository(dbClient.DB())

	authService, err := auth.NewService(userRepo, cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	vehicleService, err := vehicles.NewService(vehicleRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create vehicles service", err)
		os.Exit(1)
	}
	expenseService, err := expenses.NewService(expenseRepo, vehicleRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create expenses service", err)
		os.Exit(1)
	}
	fuelService, err := fuel.NewService(fuelRepo, expenseRepo, vehicleRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create fuel service", err)
		os.Exit(1)
	}
	reportService, err := reports.NewService(vehicleRepo, expenseRepo, fuelRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create reports service", err)
		os.Exit(1)
	}
	receiptService, err := receipts.NewService(receiptRepo, vehicleRepo, expenseRepo, fileStore, receipts.NewStubParser(), dbClient, cfg.Uploads)
	if err != nil {
		logg.Error(context.Background(), "failed to create receipts service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, httpMetrics, routes.Services{
			Auth:     authService,
			Vehicles: vehicleService,
			Expenses: expenseService,
			Fuel:     fuelService,
			Reports:  reportService,
			Receipts: receiptService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
