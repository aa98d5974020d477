package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/droptide/droptide-backend/api/middleware"
	"github.com/droptide/droptide-backend/api/responses"
	"github.com/droptide/droptide-backend/api/validators"
	"github.com/droptide/droptide-backend/internal/stock"
	"github.com/droptide/droptide-backend/pkg/enums"
	pkgerrors "github.com/droptide/droptide-backend/pkg/errors"
	"github.com/droptide/droptide-backend/pkg/logger"
)

type setAllocationRequest struct {
	ManagerID string `json:"manager_id" validate:"required,uuid"`
	ProductID string `json:"product_id" validate:"required,uuid"`
	Country   string `json:"country" validate:"required"`
	Qty       int    `json:"qty" validate:"min=0"`
}

// SetStockAllocation replaces a manager's carve-out for one product/country.
// Owner and admin roles only.
func SetStockAllocation(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !actor.Role.IsPrivileged() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.NotAllowed("manage stock allocations"))
			return
		}

		var req setAllocationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		managerID, err := uuid.Parse(req.ManagerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid manager id"))
			return
		}
		productID, err := uuid.Parse(req.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		err = svc.SetAllocation(r.Context(), stock.SetAllocationInput{
			OwnerID:   actor.ID,
			ManagerID: managerID,
			ProductID: productID,
			Country:   enums.CanonicalCountry(req.Country),
			Qty:       req.Qty,
			ActorID:   actor.ID,
			ActorRole: actor.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"qty": req.Qty})
	}
}

// FreeStock reports the unallocated remainder of the owner's country stock,
// the number a manager-tier allocation may still grow by.
func FreeStock(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(strings.TrimSpace(r.URL.Query().Get("product_id")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}
		country := enums.CanonicalCountry(r.URL.Query().Get("country"))

		free, err := svc.FreeStock(r.Context(), actor.ID, productID, country)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"product_id": productID,
			"country":    country,
			"free":       free,
		})
	}
}
