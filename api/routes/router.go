package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/motorledger/motorledger-backend/api/controllers"
	"github.com/motorledger/motorledger-backend/api/middleware"
	"github.com/motorledger/motorledger-backend/internal/auth"
	"github.com/motorledger/motorledger-backend/internal/expenses"
	"github.com/motorledger/motorledger-backend/internal/fuel"
	"github.com/motorledger/motorledger-backend/internal/receipts"
	"github.com/motorledger/motorledger-backend/internal/reports"
	"github.com/motorledger/motorledger-backend/internal/vehicles"
	"github.com/motorledger/motorledger-backend/pkg/config"
	"github.com/motorledger/motorledger-backend/pkg/db"
	"github.com/motorledger/motorledger-backend/pkg/logger"
	"github.com/motorledger/motorledger-backend/pkg/metrics"
)

// Services bundles everything the router mounts.
type Services struct {
	Auth     auth.Service
	Vehicles vehicles.Service
	Expenses expenses.Service
	Fuel     fuel.Service
	Reports  reports.Service
	Receipts receipts.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	httpMetrics *metrics.HTTPMetrics,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})

	if httpMetrics != nil {
		r.Method(http.MethodGet, "/metrics", httpMetrics.Handler())
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(svcs.Auth, logg))
		r.Post("/login", controllers.AuthLogin(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/vehicles", func(r chi.Router) {
			r.Post("/", controllers.VehicleCreate(svcs.Vehicles, logg))
			r.Get("/", controllers.VehicleList(svcs.Vehicles, logg))

			r.Route("/{vehicleId}", func(r chi.Router) {
				r.Get("/", controllers.VehicleGet(svcs.Vehicles, logg))
				r.Patch("/", controllers.VehicleUpdate(svcs.Vehicles, logg))
				r.Delete("/", controllers.VehicleDelete(svcs.Vehicles, logg))

				r.Route("/expenses", func(r chi.Router) {
					r.Post("/", controllers.ExpenseCreate(svcs.Expenses, logg))
					r.Get("/", controllers.ExpenseList(svcs.Expenses, logg))
				})

				r.Route("/fuel", func(r chi.Router) {
					r.Post("/", controllers.FuelEntryCreate(svcs.Fuel, logg))
					r.Get("/", controllers.FuelEntryList(svcs.Fuel, logg))
				})

				r.Get("/efficiency", controllers.FuelEfficiency(svcs.Fuel, logg))

				r.Route("/reports", func(r chi.Router) {
					r.Get("/tco", controllers.ReportTCO(svcs.Reports, logg))
					r.Get("/breakdown", controllers.ReportCostBreakdown(svcs.Reports, logg))
					r.Get("/monthly", controllers.ReportMonthlyTrend(svcs.Reports, logg))
				})

				r.Route("/receipts", func(r chi.Router) {
					r.Post("/", controllers.ReceiptUpload(svcs.Receipts, cfg.Uploads.MaxUploadMB, logg))
					r.Post("/confirm", controllers.ReceiptConfirm(svcs.Receipts, logg))
					r.Get("/", controllers.ReceiptList(svcs.Receipts, logg))
				})
			})
		})

		r.Route("/expenses/{expenseId}", func(r chi.Router) {
			r.Get("/", controllers.ExpenseGet(svcs.Expenses, logg))
			r.Patch("/", controllers.ExpenseUpdate(svcs.Expenses, logg))
			r.Delete("/", controllers.ExpenseDelete(svcs.Expenses, logg))
		})

		r.Route("/fuel/{entryId}", func(r chi.Router) {
			r.Get("/", controllers.FuelEntryGet(svcs.Fuel, logg))
			r.Patch("/", controllers.FuelEntryUpdate(svcs.Fuel, logg))
			r.Delete("/", controllers.FuelEntryDelete(svcs.Fuel, logg))
		})

		r.Route("/receipts/{receiptId}", func(r chi.Router) {
			r.Get("/", controllers.ReceiptGet(svcs.Receipts, logg))
			r.Post("/attach", controllers.ReceiptAttach(svcs.Receipts, logg))
			r.Delete("/", controllers.ReceiptDelete(svcs.Receipts, logg))
		})

		r.Get("/reports/summary", controllers.ReportSummary(svcs.Reports, logg))
	})

	return r
}
