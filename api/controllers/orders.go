package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoptools/shoptools-go/api/responses"
	"github.com/shoptools/shoptools-go/internal/cart"
	"github.com/shoptools/shoptools-go/internal/checkout"
	"github.com/shoptools/shoptools-go/internal/orders"
	pkgerrors "github.com/shoptools/shoptools-go/pkg/errors"
	"github.com/shoptools/shoptools-go/pkg/logger"
	"github.com/shoptools/shoptools-go/pkg/types"
)

type orderPayload struct {
	ID          string            `json:"id"`
	Status      string            `json:"status"`
	Email       string            `json:"email,omitempty"`
	ConvertedAt *time.Time        `json:"converted_at,omitempty"`
	Cart        *types.CartPayload `json:"cart"`
}

func serializeOrder(ctx context.Context, order *orders.Order) (*orderPayload, error) {
	payload, err := cart.Serialize(ctx, order, nil)
	if err != nil {
		return nil, err
	}
	record := order.Record()
	out := &orderPayload{
		ID:          record.ID.String(),
		Status:      string(record.Status),
		ConvertedAt: record.ConvertedAt,
		Cart:        payload,
	}
	if record.Email != nil {
		out.Email = *record.Email
	}
	return out, nil
}

func OrderDetail(svc checkout.Service, repo orders.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "invalid order id"))
			return
		}

		record, err := repo.FindByID(r.Context(), orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				err = pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out, err := serializeOrder(r.Context(), svc.Order(record))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}
