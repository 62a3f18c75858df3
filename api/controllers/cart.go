package controllers

import (
	"net/http"

	"github.com/shoptools/shoptools-go/api/middleware"
	"github.com/shoptools/shoptools-go/api/responses"
	"github.com/shoptools/shoptools-go/api/validators"
	"github.com/shoptools/shoptools-go/internal/cart"
	"github.com/shoptools/shoptools-go/internal/catalogue"
	pkgerrors "github.com/shoptools/shoptools-go/pkg/errors"
	"github.com/shoptools/shoptools-go/pkg/logger"
	"github.com/shoptools/shoptools-go/pkg/metrics"
	"github.com/shoptools/shoptools-go/pkg/types"
)

type cartUpdateRequest struct {
	Type     string            `json:"type" validate:"required"`
	ID       string            `json:"id" validate:"required"`
	Quantity int               `json:"quantity"`
	Add      bool              `json:"add"`
	Options  map[string]string `json:"options"`
}

func (req cartUpdateRequest) ref() catalogue.ItemRef {
	return catalogue.ItemRef{Type: req.Type, ID: req.ID}
}

type shippingRequest struct {
	Options types.ShippingOptions `json:"options" validate:"required"`
}

type vouchersRequest struct {
	Codes []string `json:"codes" validate:"dive,max=64"`
}

func loadSessionCart(r *http.Request, store *cart.SessionStore) (*cart.SessionCart, error) {
	token := middleware.SessionTokenFromContext(r.Context())
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing session token")
	}
	return store.Load(r.Context(), token)
}

func CartFetch(store *cart.SessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := loadSessionCart(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload, err := cart.Serialize(r.Context(), c, nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payload)
	}
}

func CartUpdate(store *cart.SessionStore, met *metrics.CartMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cartUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			met.IncUpdate("rejected")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c, err := loadSessionCart(r, store)
		if err != nil {
			met.IncUpdate("error")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deleted, err := c.UpdateQuantity(r.Context(), req.ref(), req.Quantity, req.Add, req.Options)
		if err != nil {
			met.IncUpdate(outcomeFor(err))
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := store.Save(r.Context(), c); err != nil {
			met.IncUpdate("error")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload, err := cart.Serialize(r.Context(), c, nil)
		if err != nil {
			met.IncUpdate("error")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if deleted {
			met.IncUpdate("removed")
		} else {
			met.IncUpdate("updated")
		}
		logg.Info(logg.WithSessionToken(r.Context(), c.Token()), "cart updated")
		responses.WriteSuccess(w, payload)
	}
}

func CartShipping(store *cart.SessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req shippingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c, err := loadSessionCart(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := c.SetShippingOptions(r.Context(), req.Options); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := store.Save(r.Context(), c); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload, err := cart.Serialize(r.Context(), c, nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payload)
	}
}

func CartVouchers(store *cart.SessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req vouchersRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		codes := make([]string, 0, len(req.Codes))
		for _, code := range req.Codes {
			if clean := validators.SanitizeString(code, 64); clean != "" {
				codes = append(codes, clean)
			}
		}

		c, err := loadSessionCart(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c.SetVoucherCodes(codes)

		// Pricing the discounts surfaces an unknown or unusable code now,
		// while the customer can still fix it.
		if disc := c.Discounts(); disc != nil {
			if _, invalid, err := disc.CalculateDiscounts(r.Context(), c, codes, true); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			} else if invalid != "" {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "voucher cannot be applied").
						WithDetails([]string{invalid}))
				return
			}
		}

		if err := store.Save(r.Context(), c); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload, err := cart.Serialize(r.Context(), c, nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payload)
	}
}

func CartClear(store *cart.SessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := loadSessionCart(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := c.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		// Saving an empty cart drops the key.
		if err := store.Save(r.Context(), c); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		logg.Info(logg.WithSessionToken(r.Context(), c.Token()), "cart cleared")
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

func outcomeFor(err error) string {
	if coded := pkgerrors.As(err); coded != nil && coded.Code() == pkgerrors.CodeValidation {
		return "rejected"
	}
	return "error"
}
