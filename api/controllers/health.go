package controllers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/amglow-storefront/api/responses"
	"github.com/angelmondragon/amglow-storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/amglow-storefront/pkg/errors"
	"github.com/angelmondragon/amglow-storefront/pkg/logger"
)

const (
	envHeader    = "X-Amglow-Env"
	readyTimeout = 2 * time.Second
)

// Pinger is any dependency that can report its reachability.
type Pinger interface {
	Ping(context.Context) error
}

// NamedPinger labels a dependency in readiness output.
type NamedPinger struct {
	Name   string
	Pinger Pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency and reports each one; any failure makes
// the whole check unavailable.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps ...NamedPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := make(map[string]string, len(deps))
		var errs error
		for _, dep := range deps {
			if dep.Pinger == nil {
				checks[dep.Name] = "skipped"
				continue
			}
			if err := dep.Pinger.Ping(ctx); err != nil {
				checks[dep.Name] = "down"
				errs = multierr.Append(errs, pkgerrors.Wrap(pkgerrors.CodeDependency, err, dep.Name))
				continue
			}
			checks[dep.Name] = "up"
		}

		if errs != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "readiness check failed").
				WithDetails(map[string]any{"checks": checks}))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
