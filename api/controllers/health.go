package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/schulbib/schulbib-backend/api/responses"
	pkgerrors "github.com/schulbib/schulbib-backend/pkg/errors"
	"github.com/schulbib/schulbib-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthLive reports process liveness.
func HealthLive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the backing stores. Any failing dependency flips the
// endpoint to 503 so the scheduler stops routing traffic here.
func HealthReady(logg *logger.Logger, dbP, redisP pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		if dbP != nil {
			checks["database"] = "ok"
			if err := dbP.Ping(ctx); err != nil {
				checks["database"] = "unavailable"
				healthy = false
				if logg != nil {
					logg.Error(ctx, "readiness: database ping failed", err)
				}
			}
		}
		if redisP != nil {
			checks["redis"] = "ok"
			if err := redisP.Ping(ctx); err != nil {
				checks["redis"] = "unavailable"
				healthy = false
				if logg != nil {
					logg.Error(ctx, "readiness: redis ping failed", err)
				}
			}
		}

		if !healthy {
			responses.WriteError(r.Context(), nil, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
