package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/plantops/plantops-backend/api/middleware"
	"github.com/plantops/plantops-backend/api/responses"
	"github.com/plantops/plantops-backend/api/validators"
	"github.com/plantops/plantops-backend/internal/inventory"
	"github.com/plantops/plantops-backend/pkg/access"
	pkgerrors "github.com/plantops/plantops-backend/pkg/errors"
	"github.com/plantops/plantops-backend/pkg/logger"
	"github.com/plantops/plantops-backend/pkg/pagination"
	"github.com/plantops/plantops-backend/pkg/types"
)

const maxSearchLength = 100

type createItemRequest struct {
	Code            string          `json:"code" validate:"required,max=64"`
	Name            string          `json:"name" validate:"required,max=255"`
	Category        *string         `json:"category"`
	Unit            string          `json:"unit" validate:"required,max=32"`
	Section         int             `json:"section" validate:"required,min=1,max=3"`
	Quantity        decimal.Decimal `json:"quantity"`
	MinThreshold    decimal.Decimal `json:"min_threshold"`
	MaxThreshold    decimal.Decimal `json:"max_threshold"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	ExpiryDate      *string         `json:"expiry_date"`
	ManufactureDate *string         `json:"manufacture_date"`
	Status          string          `json:"status"`
}

type updateItemRequest struct {
	Name            *string          `json:"name"`
	Category        *string          `json:"category"`
	Unit            *string          `json:"unit"`
	Section         *int             `json:"section"`
	Quantity        *decimal.Decimal `json:"quantity"`
	MinThreshold    *decimal.Decimal `json:"min_threshold"`
	MaxThreshold    *decimal.Decimal `json:"max_threshold"`
	UnitCost        *decimal.Decimal `json:"unit_cost"`
	ExpiryDate      *string          `json:"expiry_date"`
	ManufactureDate *string          `json:"manufacture_date"`
	Status          *string          `json:"status"`
}

type adjustItemRequest struct {
	Delta  decimal.Decimal `json:"delta"`
	Reason string          `json:"reason" validate:"required,max=255"`
}

func InventoryList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return inventoryHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, viewer access.Viewer) error {
		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<20)
		if err != nil {
			return err
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			return err
		}
		section, err := validators.ParseQueryInt(r, "section", 0, 1, 3)
		if err != nil {
			return err
		}
		query := r.URL.Query()
		result, err := svc.List(r.Context(), viewer, inventory.ListItemsInput{
			Section:     section,
			Status:      query.Get("status"),
			AlertStatus: query.Get("alert_status"),
			Search:      validators.SanitizeString(query.Get("search"), maxSearchLength),
			Page:        page,
			Limit:       limit,
		})
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, types.SuccessFields{"items": result.Items, "pagination": result.Pagination})
		return nil
	})
}

func InventorySummary(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return inventoryHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, viewer access.Viewer) error {
		summary, err := svc.Summary(r.Context(), viewer)
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, types.SuccessFields{"summary": summary})
		return nil
	})
}

func InventoryGet(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return inventoryHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, viewer access.Viewer) error {
		id, err := validators.ParseID("itemId", chi.URLParam(r, "itemId"))
		if err != nil {
			return err
		}
		item, err := svc.Get(r.Context(), viewer, id)
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, types.SuccessFields{"item": item})
		return nil
	})
}

func InventoryMovements(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return inventoryHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, viewer access.Viewer) error {
		id, err := validators.ParseID("itemId", chi.URLParam(r, "itemId"))
		if err != nil {
			return err
		}
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			return err
		}
		movements, err := svc.Movements(r.Context(), viewer, id, limit)
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, types.SuccessFields{"movements": movements})
		return nil
	})
}

func InventoryCreate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return inventoryHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, viewer access.Viewer) error {
		var req createItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			return err
		}
		item, err := svc.Create(r.Context(), viewer, inventory.CreateItemInput{
			Code:            req.Code,
			Name:            req.Name,
			Category:        req.Category,
			Unit:            req.Unit,
			Section:         req.Section,
			Quantity:        req.Quantity,
			MinThreshold:    req.MinThreshold,
			MaxThreshold:    req.MaxThreshold,
			UnitCost:        req.UnitCost,
			ExpiryDate:      req.ExpiryDate,
			ManufactureDate: req.ManufactureDate,
			Status:          req.Status,
		})
		if err != nil {
			return err
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, types.SuccessFields{"item": item})
		return nil
	})
}

func InventoryUpdate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return inventoryHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, viewer access.Viewer) error {
		id, err := validators.ParseID("itemId", chi.URLParam(r, "itemId"))
		if err != nil {
			return err
		}
		var req updateItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			return err
		}
		item, err := svc.Update(r.Context(), viewer, id, inventory.UpdateItemInput{
			Name:            req.Name,
			Category:        req.Category,
			Unit:            req.Unit,
			Section:         req.Section,
			Quantity:        req.Quantity,
			MinThreshold:    req.MinThreshold,
			MaxThreshold:    req.MaxThreshold,
			UnitCost:        req.UnitCost,
			ExpiryDate:      req.ExpiryDate,
			ManufactureDate: req.ManufactureDate,
			Status:          req.Status,
		})
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, types.SuccessFields{"item": item})
		return nil
	})
}

func InventoryAdjust(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return inventoryHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, viewer access.Viewer) error {
		id, err := validators.ParseID("itemId", chi.URLParam(r, "itemId"))
		if err != nil {
			return err
		}
		var req adjustItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			return err
		}
		result, err := svc.Adjust(r.Context(), viewer, id, inventory.AdjustInput{Delta: req.Delta, Reason: req.Reason})
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, types.SuccessFields{
			"item":        result.Item,
			"movement_id": result.MovementID,
			"alert_from":  result.AlertFrom,
			"alert_to":    result.AlertTo,
			"notified":    result.Notified,
		})
		return nil
	})
}

type inventoryAction func(w http.ResponseWriter, r *http.Request, viewer access.Viewer) error

func inventoryHandler(svc inventory.Service, logg *logger.Logger, action inventoryAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}
		viewer, ok := middleware.ViewerFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "viewer missing"))
			return
		}
		if err := action(w, r, viewer); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
		}
	}
}
