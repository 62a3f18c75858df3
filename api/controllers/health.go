package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/shoptools/shoptools-go/api/responses"
	"github.com/shoptools/shoptools-go/pkg/config"
	pkgerrors "github.com/shoptools/shoptools-go/pkg/errors"
	"github.com/shoptools/shoptools-go/pkg/logger"
)

type pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Shoptools-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness of the backing stores. A nil pinger is
// treated as "not wired" and skipped, so tests can probe a partial stack.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP pinger) http.HandlerFunc {
	probes := []struct {
		name string
		dep  pinger
	}{
		{"database", dbP},
		{"redis", redisP},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Shoptools-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		for _, probe := range probes {
			if probe.dep == nil {
				continue
			}
			if err := probe.dep.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, probe.name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
