package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/jewelry-miniapp/api/responses"
	"github.com/angelmondragon/jewelry-miniapp/pkg/config"
	pkgerrors "github.com/angelmondragon/jewelry-miniapp/pkg/errors"
	"github.com/angelmondragon/jewelry-miniapp/pkg/logger"
)

const (
	envHeader        = "X-Jewelry-Env"
	readinessTimeout = 2 * time.Second
)

// Pinger is implemented by the storage backends.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every named dependency and reports which ones failed.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := make(map[string]string, len(deps))
		healthy := true
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				healthy = false
				checks[name] = "down"
				if logg != nil {
					logg.WarnErr(logg.WithField(ctx, "dependency", name), "readiness check failed", err)
				}
				continue
			}
			checks[name] = "up"
		}

		if !healthy {
			responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
