package cart

import (
	"context"
	"net/http"

	cartdto "github.com/angelmondragon/jewelry-miniapp/api/controllers/cart/dto"
	"github.com/angelmondragon/jewelry-miniapp/api/responses"
	"github.com/angelmondragon/jewelry-miniapp/api/validators"
	cartsvc "github.com/angelmondragon/jewelry-miniapp/internal/cart"
	pkgerrors "github.com/angelmondragon/jewelry-miniapp/pkg/errors"
	"github.com/angelmondragon/jewelry-miniapp/pkg/logger"
	"github.com/angelmondragon/jewelry-miniapp/pkg/types"
)

const lineIDParam = "lineId"

// Controller is the slice of the cart controller the bridge drives.
type Controller interface {
	AddItem(product types.Product, quantity int, size string)
	RemoveItem(id types.LineID)
	UpdateQuantity(id types.LineID, quantity int)
	ClearCart()
	OpenCart()
	CloseCart()
	SyncWithBackend(ctx context.Context)
	Snapshot() cartsvc.Snapshot
}

// ProductLookup resolves the product snapshot stored on a new line.
type ProductLookup interface {
	GetProduct(ctx context.Context, id int64) (*types.Product, error)
}

// CartFetch returns the current cart state.
func CartFetch(c Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}
		responses.WriteSuccess(w, newCartResponse(c.Snapshot()))
	}
}

// CartAddItem adds a product to the cart. The backend call runs in the
// background; the response reflects the optimistic local state.
func CartAddItem(c Controller, products ProductLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c == nil || products == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}

		var payload cartdto.AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := products.GetProduct(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !product.InStock {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "product is out of stock"))
			return
		}

		quantity := 1
		if payload.Quantity != nil {
			quantity = *payload.Quantity
		}
		c.AddItem(*product, quantity, payload.Size)

		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(c.Snapshot()))
	}
}

// CartUpdateItem sets the quantity of a line; zero removes it.
func CartUpdateItem(c Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, lineIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartdto.UpdateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c.UpdateQuantity(types.LineID(id), payload.Quantity)
		responses.WriteSuccess(w, newCartResponse(c.Snapshot()))
	}
}

// CartRemoveItem drops a line. Unknown ids leave the cart unchanged.
func CartRemoveItem(c Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, lineIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c.RemoveItem(types.LineID(id))
		responses.WriteSuccess(w, newCartResponse(c.Snapshot()))
	}
}

func CartClear(c Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}
		c.ClearCart()
		responses.WriteSuccess(w, newCartResponse(c.Snapshot()))
	}
}

// CartVisibility toggles the cart panel.
func CartVisibility(c Controller, open bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}
		if open {
			c.OpenCart()
		} else {
			c.CloseCart()
		}
		responses.WriteSuccess(w, newCartResponse(c.Snapshot()))
	}
}

// CartSync forces a reconciliation pass against the backend, e.g. after the
// user pulls to refresh. It blocks until the pass finishes.
func CartSync(c Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}
		c.SyncWithBackend(r.Context())
		responses.WriteSuccess(w, newCartResponse(c.Snapshot()))
	}
}
