package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/plantops/plantops-backend/api/responses"
	"github.com/plantops/plantops-backend/pkg/config"
	pkgerrors "github.com/plantops/plantops-backend/pkg/errors"
	"github.com/plantops/plantops-backend/pkg/logger"
	"github.com/plantops/plantops-backend/pkg/types"
)

const readinessTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PlantOps-Env", cfg.App.Env)
		responses.WriteSuccess(w, types.SuccessFields{"status": "live"})
	}
}

// HealthReady pings each dependency and answers 503 when any of them fails.
// A nil pinger is reported as disabled.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbPinger, redisPinger pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PlantOps-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true
		for name, p := range map[string]pinger{"database": dbPinger, "redis": redisPinger} {
			if p == nil {
				checks[name] = "disabled"
				continue
			}
			if err := p.Ping(ctx); err != nil {
				healthy = false
				checks[name] = "unavailable"
				if logg != nil {
					logg.Error(logg.WithField(r.Context(), "dependency", name), "health.dependency_failed", err)
				}
				continue
			}
			checks[name] = "ok"
		}

		if !healthy {
			responses.WriteJSON(w, http.StatusServiceUnavailable, types.ErrorEnvelope{
				Success: false,
				Message: "service unavailable",
				Code:    string(pkgerrors.CodeDependency),
				Details: checks,
			})
			return
		}
		responses.WriteSuccess(w, types.SuccessFields{"status": "ready", "checks": checks})
	}
}
