package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/jewelry-miniapp/api/responses"
	"github.com/angelmondragon/jewelry-miniapp/api/validators"
	pkgerrors "github.com/angelmondragon/jewelry-miniapp/pkg/errors"
	"github.com/angelmondragon/jewelry-miniapp/pkg/logger"
	"github.com/angelmondragon/jewelry-miniapp/pkg/types"
)

// Favorites is the slice of the favorites controller the bridge drives.
type Favorites interface {
	RemoveItem(productID int64)
	ToggleItem(product types.Product) bool
	IsFavorite(productID int64) bool
	ClearAll()
	Items() []types.Product
}

// ProductLookup resolves product snapshots by id.
type ProductLookup interface {
	GetProduct(ctx context.Context, id int64) (*types.Product, error)
}

type favoritesResponse struct {
	Items []types.Product `json:"items"`
	Count int             `json:"count"`
}

type favoriteToggleResponse struct {
	ProductID  int64 `json:"product_id"`
	IsFavorite bool  `json:"is_favorite"`
	Count      int   `json:"count"`
}

func newFavoritesResponse(fav Favorites) favoritesResponse {
	items := fav.Items()
	if items == nil {
		items = []types.Product{}
	}
	return favoritesResponse{Items: items, Count: len(items)}
}

func FavoritesList(fav Favorites, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if fav == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "favorites unavailable"))
			return
		}
		responses.WriteSuccess(w, newFavoritesResponse(fav))
	}
}

// FavoritesToggle flips membership of the product in the path (heart tap).
func FavoritesToggle(fav Favorites, products ProductLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if fav == nil || products == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "favorites unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// The catalog is only consulted for a product that is not stored yet;
		// removal needs nothing but the id.
		product := types.Product{ID: id}
		if !fav.IsFavorite(id) {
			found, err := products.GetProduct(r.Context(), id)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			product = *found
		}
		now := fav.ToggleItem(product)

		responses.WriteSuccess(w, favoriteToggleResponse{ProductID: id, IsFavorite: now, Count: len(fav.Items())})
	}
}

// FavoritesRemove drops a product; unknown ids are a no-op.
func FavoritesRemove(fav Favorites, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if fav == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "favorites unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fav.RemoveItem(id)
		responses.WriteSuccess(w, newFavoritesResponse(fav))
	}
}

func FavoritesClear(fav Favorites, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if fav == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "favorites unavailable"))
			return
		}
		fav.ClearAll()
		responses.WriteSuccess(w, newFavoritesResponse(fav))
	}
}
