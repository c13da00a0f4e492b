package controllers

import (
	"net/http"

	"github.com/angelmondragon/jewelry-miniapp/api/responses"
	"github.com/angelmondragon/jewelry-miniapp/api/validators"
	checkoutsvc "github.com/angelmondragon/jewelry-miniapp/internal/checkout"
	pkgerrors "github.com/angelmondragon/jewelry-miniapp/pkg/errors"
	"github.com/angelmondragon/jewelry-miniapp/pkg/logger"
)

// CheckoutQuote prices the current cart including delivery.
func CheckoutQuote(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.QuoteCart())
	}
}

// Checkout places an order from the current cart.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutsvc.Input
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.PlaceOrder(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}
