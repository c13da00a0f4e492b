package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/jewelry-miniapp/api/responses"
	"github.com/angelmondragon/jewelry-miniapp/api/validators"
	catalogsvc "github.com/angelmondragon/jewelry-miniapp/internal/catalog"
	"github.com/angelmondragon/jewelry-miniapp/pkg/enums"
	pkgerrors "github.com/angelmondragon/jewelry-miniapp/pkg/errors"
	"github.com/angelmondragon/jewelry-miniapp/pkg/logger"
	"github.com/angelmondragon/jewelry-miniapp/pkg/storefront"
)

const (
	maxSearchLength = 100
	maxSlugLength   = 64
)

var allowedOrderings = map[string]struct{}{
	"price": {}, "-price": {}, "created_at": {}, "-created_at": {}, "name": {}, "-name": {},
}

// CatalogProducts lists products with the catalog page filters.
func CatalogProducts(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		filters, err := parseProductFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListProducts(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func parseProductFilters(r *http.Request) (storefront.ProductFilters, error) {
	q := r.URL.Query()
	filters := storefront.ProductFilters{
		Category: validators.SanitizeString(q.Get("category"), maxSlugLength),
		Search:   validators.SanitizeString(q.Get("search"), maxSearchLength),
	}

	if raw := q.Get("metal_type"); raw != "" {
		metal, err := enums.ParseMetalType(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid metal_type")
		}
		filters.MetalType = metal
	}
	if ordering := q.Get("ordering"); ordering != "" {
		if _, ok := allowedOrderings[ordering]; !ok {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid ordering").WithDetails(map[string]any{"field": "ordering"})
		}
		filters.Ordering = ordering
	}

	var err error
	if filters.MinPrice, err = validators.ParseQueryDecimal(r, "min_price"); err != nil {
		return filters, err
	}
	if filters.MaxPrice, err = validators.ParseQueryDecimal(r, "max_price"); err != nil {
		return filters, err
	}
	if filters.IsFeatured, err = validators.ParseQueryBool(r, "is_featured"); err != nil {
		return filters, err
	}
	if filters.InStock, err = validators.ParseQueryBool(r, "in_stock"); err != nil {
		return filters, err
	}
	return filters, nil
}

func CatalogProduct(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// CatalogHome bundles the home page sections in one round trip.
func CatalogHome(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		ctx := r.Context()

		banners, err := svc.Banners(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		categories, err := svc.Categories(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		featured, err := svc.Featured(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		arrivals, err := svc.NewArrivals(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"banners":      banners,
			"categories":   categories,
			"featured":     featured,
			"new_arrivals": arrivals,
		})
	}
}

func CatalogCategories(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		categories, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

// CatalogCategoryProducts lists the products of one category slug.
func CatalogCategoryProducts(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		slug := validators.SanitizeString(chi.URLParam(r, "slug"), maxSlugLength)
		page, err := svc.ProductsByCategory(r.Context(), slug, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func CatalogSearch(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query := validators.SanitizeString(r.URL.Query().Get("q"), maxSearchLength)
		page, err := svc.Search(r.Context(), query, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
