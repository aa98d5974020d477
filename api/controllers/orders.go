package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/droptide/droptide-backend/api/middleware"
	"github.com/droptide/droptide-backend/api/responses"
	"github.com/droptide/droptide-backend/api/validators"
	"github.com/droptide/droptide-backend/internal/orders"
	"github.com/droptide/droptide-backend/pkg/enums"
	pkgerrors "github.com/droptide/droptide-backend/pkg/errors"
	"github.com/droptide/droptide-backend/pkg/logger"
)

type createOrderItem struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Qty       int    `json:"qty" validate:"required,gt=0"`
}

type createOrderRequest struct {
	OwnerID         string            `json:"owner_id" validate:"omitempty,uuid"`
	CustomerName    string            `json:"customer_name" validate:"required"`
	CustomerPhone   string            `json:"customer_phone" validate:"required"`
	CustomerAddress string            `json:"customer_address"`
	Country         string            `json:"country" validate:"required"`
	City            string            `json:"city"`
	Currency        string            `json:"currency"`
	Items           []createOrderItem `json:"items" validate:"required,min=1,dive"`

	Total            decimal.Decimal `json:"total"`
	Discount         decimal.Decimal `json:"discount"`
	ShippingFee      decimal.Decimal `json:"shipping_fee"`
	CODAmount        decimal.Decimal `json:"cod_amount"`
	DriverCommission decimal.Decimal `json:"driver_commission"`
}

// CreateOrder creates an order with synchronous stock reservation. A
// top-level user omits owner_id; sub-accounts name the workspace owner.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ownerID := actor.ID
		if req.OwnerID != "" {
			parsed, err := uuid.Parse(req.OwnerID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid owner id"))
				return
			}
			ownerID = parsed
		}

		items := make([]orders.ItemInput, 0, len(req.Items))
		for _, item := range req.Items {
			productID, err := uuid.Parse(item.ProductID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
				return
			}
			items = append(items, orders.ItemInput{ProductID: productID, Qty: item.Qty})
		}

		order, err := svc.Create(r.Context(), orders.CreateOrderInput{
			OwnerID:          ownerID,
			Actor:            actor,
			CustomerName:     req.CustomerName,
			CustomerPhone:    req.CustomerPhone,
			CustomerAddress:  req.CustomerAddress,
			Country:          req.Country,
			City:             req.City,
			Currency:         enums.Currency(req.Currency),
			Items:            items,
			Total:            req.Total,
			Discount:         req.Discount,
			ShippingFee:      req.ShippingFee,
			CODAmount:        req.CODAmount,
			DriverCommission: req.DriverCommission,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type transitionRequest struct {
	Target          string           `json:"target" validate:"required"`
	ReturnReason    *string          `json:"return_reason"`
	CollectedAmount *decimal.Decimal `json:"collected_amount"`
}

// TransitionOrder moves the order through the role-gated state machine.
func TransitionOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req transitionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseShipmentStatus(req.Target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target status"))
			return
		}

		order, err := svc.Transition(r.Context(), actor, orderID, orders.TransitionInput{
			Target:          target,
			ReturnReason:    req.ReturnReason,
			CollectedAmount: req.CollectedAmount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type confirmationRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed cancelled"`
}

func SetOrderConfirmation(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req confirmationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.SetConfirmation(r.Context(), actor, orderID, enums.ConfirmationStatus(req.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type assignRequest struct {
	AssigneeID string `json:"assignee_id" validate:"required,uuid"`
}

func AssignOrderDriver(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return assignHandler(svc, logg, enums.RoleDriver)
}

func AssignOrderManager(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return assignHandler(svc, logg, enums.RoleManager)
}

func assignHandler(svc orders.Service, logg *logger.Logger, wantRole enums.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req assignRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		assigneeID, err := uuid.Parse(req.AssigneeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid assignee id"))
			return
		}

		var order any
		if wantRole == enums.RoleDriver {
			order, err = svc.AssignDriver(r.Context(), actor, orderID, assigneeID)
		} else {
			order, err = svc.AssignManager(r.Context(), actor, orderID, assigneeID)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func DeleteOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), actor, orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "orderId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return id, nil
}
