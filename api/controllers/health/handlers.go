package health

import (
	"context"
	"net/http"

	"github.com/atino-shop/atino-backend/api/responses"
	"github.com/atino-shop/atino-backend/pkg/config"
	"github.com/atino-shop/atino-backend/pkg/logger"
)

// Pinger is satisfied by the database and redis clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check reports service liveness plus the state of its two backing stores.
// A degraded dependency is reported in the payload but does not fail the
// endpoint; orchestrators that only care about liveness keep getting a 200.
func Check(cfg *config.Config, database, cache Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{
			"status":   "ok",
			"env":      cfg.App.Env,
			"database": "ok",
			"redis":    "ok",
		}

		if database != nil {
			if err := database.Ping(r.Context()); err != nil {
				payload["database"] = "unavailable"
				payload["status"] = "degraded"
				logg.Warn(r.Context(), "health.database_unreachable")
			}
		}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				payload["redis"] = "unavailable"
				payload["status"] = "degraded"
				logg.Warn(r.Context(), "health.redis_unreachable")
			}
		}

		responses.WriteSuccess(w, payload)
	}
}
