package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/schulbib/schulbib-backend/api/controllers"
	"github.com/schulbib/schulbib-backend/api/middleware"
	"github.com/schulbib/schulbib-backend/internal/catalog"
	"github.com/schulbib/schulbib-backend/internal/copies"
	"github.com/schulbib/schulbib-backend/internal/loans"
	"github.com/schulbib/schulbib-backend/pkg/config"
	"github.com/schulbib/schulbib-backend/pkg/db"
	"github.com/schulbib/schulbib-backend/pkg/enums"
	"github.com/schulbib/schulbib-backend/pkg/logger"
	pkgredis "github.com/schulbib/schulbib-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *pkgredis.Client
	Catalog        catalog.Service
	Copies         copies.Service
	Loans          loans.Service
	MetricRegistry *prometheus.Registry
}

// NewRouter assembles the full HTTP handler tree.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	logg := deps.Logger

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(logg, deps.DB, deps.Redis))
	})

	if deps.MetricRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricRegistry, promhttp.HandlerOpts{}))
	}

	var idempotencyStore pkgredis.IdempotencyStore
	if deps.Redis != nil {
		idempotencyStore = deps.Redis
	}

	staffOnly := middleware.RequireRoles(logg, enums.UserRoleLibrarian, enums.UserRoleAdmin)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(deps.Config.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/titles", func(r chi.Router) {
			r.Get("/", controllers.ListTitles(deps.Catalog, logg))
			r.Get("/{titleId}", controllers.GetTitle(deps.Catalog, logg))
			r.Get("/{titleId}/copies", controllers.ListCopies(deps.Copies, logg))

			r.Group(func(r chi.Router) {
				r.Use(staffOnly)
				r.Post("/", controllers.CreateTitle(deps.Catalog, logg))
				r.Patch("/{titleId}", controllers.UpdateTitle(deps.Catalog, logg))
				r.Post("/{titleId}/copies", controllers.AddCopy(deps.Copies, logg))
			})
		})

		r.Route("/copies", func(r chi.Router) {
			r.Get("/{copyId}", controllers.GetCopy(deps.Copies, logg))
			r.With(staffOnly).Patch("/{copyId}", controllers.PatchCopy(deps.Copies, logg))
		})

		r.Route("/loans", func(r chi.Router) {
			r.Get("/", controllers.ListLoans(deps.Loans, logg))
			r.Post("/", controllers.RequestLoan(deps.Loans, logg))
			r.Get("/{loanId}", controllers.GetLoan(deps.Loans, logg))

			r.Group(func(r chi.Router) {
				r.Use(staffOnly)
				r.Post("/{loanId}/approve", controllers.ApproveLoan(deps.Loans, logg))
				r.Post("/{loanId}/checkout", controllers.CheckoutLoan(deps.Loans, logg))
				r.Post("/{loanId}/return", controllers.ReturnLoan(deps.Loans, logg))
			})
		})
	})

	return r
}
