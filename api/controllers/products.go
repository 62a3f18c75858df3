package controllers

import (
	"net/http"

	"github.com/shoptools/shoptools-go/api/responses"
	"github.com/shoptools/shoptools-go/api/validators"
	"github.com/shoptools/shoptools-go/internal/catalogue"
	pkgerrors "github.com/shoptools/shoptools-go/pkg/errors"
	"github.com/shoptools/shoptools-go/pkg/db/models"
	"github.com/shoptools/shoptools-go/pkg/logger"
	"github.com/shoptools/shoptools-go/pkg/types"
)

type productPayload struct {
	Type    string              `json:"type"`
	ID      string              `json:"id"`
	Name    string              `json:"name"`
	Price   float64             `json:"price"`
	Options types.OptionsSchema `json:"options,omitempty"`
	Stock   *int                `json:"stock,omitempty"`
}

func toProductPayload(p models.Product) productPayload {
	return productPayload{
		Type:    catalogue.ProductType,
		ID:      p.ID.String(),
		Name:    p.Name,
		Price:   p.Price.InexactFloat64(),
		Options: p.Options,
		Stock:   p.Stock,
	}
}

// ProductList returns the purchasable catalogue, newest first. Each entry
// carries the type tag and id a cart update request needs verbatim.
func ProductList(repo *catalogue.ProductRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := repo.ListActive(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products"))
			return
		}
		if len(rows) > limit {
			rows = rows[:limit]
		}

		out := make([]productPayload, 0, len(rows))
		for _, row := range rows {
			out = append(out, toProductPayload(row))
		}
		responses.WriteSuccess(w, out)
	}
}
