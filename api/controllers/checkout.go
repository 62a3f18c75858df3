package controllers

import (
	"net/http"

	"github.com/shoptools/shoptools-go/api/middleware"
	"github.com/shoptools/shoptools-go/api/responses"
	"github.com/shoptools/shoptools-go/api/validators"
	"github.com/shoptools/shoptools-go/internal/cart"
	"github.com/shoptools/shoptools-go/internal/checkout"
	"github.com/shoptools/shoptools-go/pkg/logger"
	"github.com/shoptools/shoptools-go/pkg/metrics"
)

type checkoutRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
}

// Checkout materializes the session cart into a persisted order. The session
// cart is dropped afterwards so a refreshed page starts clean; the order
// stays editable through the same cart contract.
func Checkout(svc checkout.Service, store *cart.SessionStore, met *metrics.CartMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			met.IncCheckout("rejected")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		source, err := loadSessionCart(r, store)
		if err != nil {
			met.IncCheckout("error")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Checkout(r.Context(), source, checkout.CheckoutInput{
			SessionToken: middleware.SessionTokenFromContext(r.Context()),
			Email:        req.Email,
		})
		if err != nil {
			met.IncCheckout(outcomeFor(err))
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := store.Delete(r.Context(), source.Token()); err != nil {
			// The order is placed; a stale session cart is a cosmetic leak.
			logg.Error(logg.WithSessionToken(r.Context(), source.Token()), "deleting session cart after checkout", err)
		}

		out, err := serializeOrder(r.Context(), order)
		if err != nil {
			met.IncCheckout("error")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		met.IncCheckout("converted")
		logg.Info(logg.WithOrderID(r.Context(), order.Record().ID.String()), "checkout converted")
		responses.WriteSuccessStatus(w, http.StatusCreated, out)
	}
}
