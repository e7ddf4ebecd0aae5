package controllers

import (
	"net/http"

	"github.com/mhs-fashion/storefront-backend/api/responses"
	ratingsrepo "github.com/mhs-fashion/storefront-backend/internal/ratings"
	pkgerrors "github.com/mhs-fashion/storefront-backend/pkg/errors"
	"github.com/mhs-fashion/storefront-backend/pkg/logger"
)

// RatingsList serves every review record.
func RatingsList(repo ratingsrepo.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ratings repository unavailable"))
			return
		}

		records, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ratings"))
			return
		}

		responses.WriteSuccess(w, records)
	}
}
