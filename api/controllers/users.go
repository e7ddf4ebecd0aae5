package controllers

import (
	"net/http"

	"github.com/mhs-fashion/storefront-backend/api/responses"
	"github.com/mhs-fashion/storefront-backend/api/validators"
	userssvc "github.com/mhs-fashion/storefront-backend/internal/users"
	pkgerrors "github.com/mhs-fashion/storefront-backend/pkg/errors"
	"github.com/mhs-fashion/storefront-backend/pkg/logger"
)

// UserRegister stores a registration record submitted by the storefront.
func UserRegister(svc userssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		doc, err := validators.DecodeJSONDocument(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := svc.Register(r.Context(), doc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"insertedId": id})
	}
}
