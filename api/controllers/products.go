package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/amglow-storefront/api/responses"
	"github.com/angelmondragon/amglow-storefront/api/validators"
	"github.com/angelmondragon/amglow-storefront/internal/catalog"
	pkgerrors "github.com/angelmondragon/amglow-storefront/pkg/errors"
	"github.com/angelmondragon/amglow-storefront/pkg/logger"
)

const (
	defaultProductLimit = 50
	maxProductLimit     = 200
)

// ProductList returns the storefront catalog ordered by name.
func ProductList(repo catalog.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultProductLimit, 1, maxProductLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := repo.List(r.Context(), int64(limit))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if products == nil {
			products = []catalog.Product{}
		}

		responses.WriteSuccess(w, products)
	}
}

// ProductDetail returns a single product, including its stock.
func ProductDetail(repo catalog.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		productID, err := validators.RequireID("productId", chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := repo.FindByID(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}
