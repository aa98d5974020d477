package controllers

import (
	"context"
	"net/http"

	"github.com/droptide/droptide-backend/api/responses"
	"github.com/droptide/droptide-backend/pkg/config"
	pkgerrors "github.com/droptide/droptide-backend/pkg/errors"
	"github.com/droptide/droptide-backend/pkg/logger"
)

type pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Droptide-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when every wired dependency answers.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Droptide-Env", cfg.App.Env)

		checks := map[string]pinger{
			"db":    dbP,
			"redis": redisP,
		}
		status := map[string]string{}
		healthy := true
		for name, p := range checks {
			if p == nil {
				status[name] = "skipped"
				continue
			}
			if err := p.Ping(r.Context()); err != nil {
				status[name] = "down"
				healthy = false
				if logg != nil {
					logg.Warn(r.Context(), name+" readiness check failed: "+err.Error())
				}
				continue
			}
			status[name] = "up"
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "not ready").WithDetails(status))
			return
		}
		responses.WriteSuccess(w, status)
	}
}
