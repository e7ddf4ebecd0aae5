package controllers

import (
	"net/http"

	"go.uber.org/multierr"

	"github.com/mhs-fashion/storefront-backend/api/responses"
	"github.com/mhs-fashion/storefront-backend/pkg/config"
	pkgerrors "github.com/mhs-fashion/storefront-backend/pkg/errors"
	"github.com/mhs-fashion/storefront-backend/pkg/logger"
	"github.com/mhs-fashion/storefront-backend/pkg/mongodb"
	"github.com/mhs-fashion/storefront-backend/pkg/redis"
)

// Home answers the storefront's root liveness probe.
func Home() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"message": "MHS Fashion server is running"})
	}
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MHSFashion-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, mongoP mongodb.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MHSFashion-Env", cfg.App.Env)

		var err error
		if mongoP != nil {
			err = multierr.Append(err, mongoP.Ping(r.Context()))
		}
		if redisP != nil {
			err = multierr.Append(err, redisP.Ping(r.Context()))
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "readiness check failed"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
