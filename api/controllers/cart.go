package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mhs-fashion/storefront-backend/api/responses"
	"github.com/mhs-fashion/storefront-backend/api/validators"
	cartsvc "github.com/mhs-fashion/storefront-backend/internal/cart"
	pkgerrors "github.com/mhs-fashion/storefront-backend/pkg/errors"
	"github.com/mhs-fashion/storefront-backend/pkg/logger"
)

// CartList serves every cart document for one shopper.
func CartList(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		email, err := validators.RequireQuery(r, "email")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		documents, err := svc.ListCarts(r.Context(), email, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, documents)
	}
}

// CartFetch serves the cart document for one (shopper, product) pair.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		email, err := validators.RequireQuery(r, "email")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.RequireQuery(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		documents, err := svc.ListCarts(r.Context(), email, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, documents)
	}
}

// CartMenu resolves cart product ids to their display projection. Invalid
// ids are dropped; the result carries no ordering guarantee.
func CartMenu(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		raw := validators.OptionalQuery(r, "id")
		ids := []string{}
		if raw != "" {
			ids = strings.Split(raw, ",")
		}

		items, err := svc.ResolveDisplayLines(r.Context(), ids)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

// CartCreate stores a client-supplied cart document as-is.
func CartCreate(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		doc, err := validators.DecodeJSONDocument(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := svc.CreateDocument(r.Context(), doc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"insertedId": id})
	}
}

// CartUpsertLine merges or appends one cart line. The response does not
// reveal which branch fired.
func CartUpsertLine(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		email, err := validators.RequireQuery(r, "email")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.RequireQuery(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var line cartsvc.Line
		if err := validators.DecodeJSONBody(r, &line); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := cartsvc.UpsertLineInput{
			Email:     email,
			ProductID: productID,
			Size:      line.Size,
			Quantity:  line.Quantity,
			Meta:      line.Meta,
		}
		if err := svc.UpsertLine(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"success": true})
	}
}

// CartDelete removes one whole cart document by its identifier.
func CartDelete(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		count, err := svc.DeleteCart(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"deletedCount": count})
	}
}
