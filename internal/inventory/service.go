// Package inventory stores per-section inventory records and routes every
// change through the alert emitter in the same transaction.
package inventory

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/plantops/plantops-backend/internal/alerts"
	"github.com/plantops/plantops-backend/pkg/access"
	"github.com/plantops/plantops-backend/pkg/db"
	"github.com/plantops/plantops-backend/pkg/db/models"
	"github.com/plantops/plantops-backend/pkg/enums"
	pkgerrors "github.com/plantops/plantops-backend/pkg/errors"
	"github.com/plantops/plantops-backend/pkg/logger"
	"github.com/plantops/plantops-backend/pkg/pagination"
)

const (
	reasonInitialStock = "initial stock"
	reasonManualEdit   = "manual edit"

	defaultMovementLimit = 50
	maxMovementLimit     = 200
)

// Service exposes inventory record operations scoped to a viewer.
type Service interface {
	List(ctx context.Context, viewer access.Viewer, input ListItemsInput) (*ListResult, error)
	Summary(ctx context.Context, viewer access.Viewer) ([]SectionSummary, error)
	Get(ctx context.Context, viewer access.Viewer, id int64) (*ItemDTO, error)
	Create(ctx context.Context, viewer access.Viewer, input CreateItemInput) (*ItemDTO, error)
	Update(ctx context.Context, viewer access.Viewer, id int64, input UpdateItemInput) (*ItemDTO, error)
	Adjust(ctx context.Context, viewer access.Viewer, id int64, input AdjustInput) (*AdjustResult, error)
	Movements(ctx context.Context, viewer access.Viewer, id int64, limit int) ([]MovementDTO, error)
	Reclassify(ctx context.Context, id int64) (alerts.Transition, error)
	ExpiryCandidates(ctx context.Context, afterID int64, limit int) ([]int64, error)
}

type alertEmitter interface {
	Apply(ctx context.Context, tx *gorm.DB, before, after models.InventoryItem) (alerts.Transition, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams wires the inventory service dependencies.
type ServiceParams struct {
	Repo    *Repository
	DB      txRunner
	Emitter alertEmitter
	Logger  *logger.Logger
}

type service struct {
	repo    *Repository
	db      txRunner
	emitter alertEmitter
	logg    *logger.Logger
}

// NewService constructs an inventory service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "inventory repository required")
	}
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db client required")
	}
	if params.Emitter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "alert emitter required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		repo:    params.Repo,
		db:      params.DB,
		emitter: params.Emitter,
		logg:    params.Logger,
	}, nil
}

func (s *service) List(ctx context.Context, viewer access.Viewer, input ListItemsInput) (*ListResult, error) {
	var requested []enums.Section
	if input.Section != 0 {
		section := enums.Section(input.Section)
		if !section.IsValid() {
			return nil, validation("section must be 1, 2 or 3")
		}
		requested = []enums.Section{section}
	}

	params := listItemsParams{Sections: viewer.SectionFilter(requested), Search: input.Search}
	if raw := strings.TrimSpace(input.Status); raw != "" {
		status, err := enums.ParseItemStatus(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		params.Status = status
	}
	if raw := strings.TrimSpace(input.AlertStatus); raw != "" {
		alertStatus, err := enums.ParseAlertStatus(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid alert_status")
		}
		params.AlertStatus = alertStatus
	}

	page := pagination.Params{Page: input.Page, Limit: input.Limit}.Normalize()
	if len(params.Sections) == 0 {
		return &ListResult{Items: []ItemDTO{}, Pagination: pagination.NewMeta(page, 0)}, nil
	}
	params.Offset = page.Offset()
	params.Limit = page.Limit

	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory items")
	}
	return &ListResult{Items: toDTOs(items), Pagination: pagination.NewMeta(page, total)}, nil
}

func (s *service) Summary(ctx context.Context, viewer access.Viewer) ([]SectionSummary, error) {
	sections := viewer.SectionFilter(nil)
	if len(sections) == 0 {
		return []SectionSummary{}, nil
	}
	rows, err := s.repo.Summary(ctx, sections)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summarize inventory")
	}
	return buildSummary(sections, rows), nil
}

func (s *service) Get(ctx context.Context, viewer access.Viewer, id int64) (*ItemDTO, error) {
	if id <= 0 {
		return nil, validation("item id required")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory item")
	}
	if item == nil || !viewer.CanSee(item.Section) {
		return nil, errItemNotFound()
	}
	dto := toDTO(*item)
	return &dto, nil
}

// Movements returns the item's stock history, newest first. Items outside
// the viewer's sections read as missing.
func (s *service) Movements(ctx context.Context, viewer access.Viewer, id int64, limit int) ([]MovementDTO, error) {
	if id <= 0 {
		return nil, validation("item id required")
	}
	if limit <= 0 {
		limit = defaultMovementLimit
	}
	if limit > maxMovementLimit {
		limit = maxMovementLimit
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory item")
	}
	if item == nil || !viewer.CanSee(item.Section) {
		return nil, errItemNotFound()
	}
	movements, err := s.repo.ListMovements(ctx, id, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock movements")
	}
	return toMovementDTOs(movements), nil
}

func (s *service) Create(ctx context.Context, viewer access.Viewer, input CreateItemInput) (*ItemDTO, error) {
	item, err := input.build()
	if err != nil {
		return nil, err
	}
	if !viewer.CanWrite(item.Section) {
		return nil, errSectionForbidden(item.Section)
	}
	actor := viewer.UserID
	item.CreatedBy = &actor
	item.UpdatedBy = &actor

	var stored models.InventoryItem
	if err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Create(ctx, item); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "item code already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert inventory item")
		}
		if item.Quantity.IsPositive() {
			if err := txRepo.RecordMovement(ctx, &models.StockMovement{
				ItemID:        item.ID,
				Delta:         item.Quantity,
				QuantityAfter: item.Quantity,
				Reason:        reasonInitialStock,
				ActorID:       &actor,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
			}
		}

		before := models.InventoryItem{ID: item.ID, AlertStatus: enums.AlertStatusNormal}
		transition, err := s.emitter.Apply(ctx, tx, before, *item)
		if err != nil {
			return err
		}
		stored = *item
		stored.AlertStatus = transition.To
		return nil
	}); err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithItemID(ctx, stored.ID), "inventory.created")
	dto := toDTO(stored)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, viewer access.Viewer, id int64, input UpdateItemInput) (*ItemDTO, error) {
	if id <= 0 {
		return nil, validation("item id required")
	}
	if input.empty() {
		return nil, validation("no updatable fields provided")
	}

	var stored models.InventoryItem
	if err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		current, err := s.lockWritable(ctx, txRepo, viewer, id)
		if err != nil {
			return err
		}
		before := *current
		next := *current
		if err := input.apply(&next); err != nil {
			return err
		}
		if next.Section != before.Section && !viewer.CanWrite(next.Section) {
			return errSectionForbidden(next.Section)
		}
		actor := viewer.UserID
		next.UpdatedBy = &actor

		if err := txRepo.Save(ctx, &next); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inventory item")
		}
		if !next.Quantity.Equal(before.Quantity) {
			if err := txRepo.RecordMovement(ctx, &models.StockMovement{
				ItemID:        next.ID,
				Delta:         next.Quantity.Sub(before.Quantity),
				QuantityAfter: next.Quantity,
				Reason:        reasonManualEdit,
				ActorID:       &actor,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
			}
		}

		transition, err := s.emitter.Apply(ctx, tx, before, next)
		if err != nil {
			return err
		}
		stored = next
		stored.AlertStatus = transition.To
		return nil
	}); err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithItemID(ctx, stored.ID), "inventory.updated")
	dto := toDTO(stored)
	return &dto, nil
}

func (s *service) Adjust(ctx context.Context, viewer access.Viewer, id int64, input AdjustInput) (*AdjustResult, error) {
	if id <= 0 {
		return nil, validation("item id required")
	}
	if input.Delta.IsZero() {
		return nil, validation("delta must not be zero")
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, validation("reason is required")
	}
	if len(reason) > maxReasonLength {
		return nil, validation("reason is too long")
	}

	var result AdjustResult
	if err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		current, err := s.lockWritable(ctx, txRepo, viewer, id)
		if err != nil {
			return err
		}
		before := *current
		next := *current
		next.Quantity = before.Quantity.Add(input.Delta)
		if next.Quantity.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock").WithDetails(map[string]any{
				"current_quantity": before.Quantity.String(),
				"delta":            input.Delta.String(),
			})
		}
		actor := viewer.UserID
		next.UpdatedBy = &actor

		if err := txRepo.Save(ctx, &next); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inventory quantity")
		}
		movement := &models.StockMovement{
			ItemID:        next.ID,
			Delta:         input.Delta,
			QuantityAfter: next.Quantity,
			Reason:        reason,
			ActorID:       &actor,
		}
		if err := txRepo.RecordMovement(ctx, movement); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
		}

		transition, err := s.emitter.Apply(ctx, tx, before, next)
		if err != nil {
			return err
		}
		next.AlertStatus = transition.To
		result = AdjustResult{
			Item:       toDTO(next),
			MovementID: movement.ID,
			AlertFrom:  string(transition.From),
			AlertTo:    string(transition.To),
			Notified:   transition.Notification != nil,
		}
		return nil
	}); err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(s.logg.WithItemID(ctx, id), map[string]any{
		"delta":  input.Delta.String(),
		"reason": reason,
	}), "inventory.adjusted")
	return &result, nil
}

// Reclassify re-evaluates an item without changing it, so time-based
// conditions surface even when nobody writes the record.
func (s *service) Reclassify(ctx context.Context, id int64) (alerts.Transition, error) {
	var transition alerts.Transition
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		item, err := s.repo.WithTx(tx).FindForUpdate(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock inventory item")
		}
		if item == nil {
			return errItemNotFound()
		}
		transition, err = s.emitter.Apply(ctx, tx, *item, *item)
		return err
	})
	return transition, err
}

func (s *service) ExpiryCandidates(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	ids, err := s.repo.ListExpiryCandidateIDs(ctx, afterID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expiry candidates")
	}
	return ids, nil
}

// lockWritable loads the item for update and checks the viewer may change it.
// Items outside the viewer's sections read as missing.
func (s *service) lockWritable(ctx context.Context, txRepo *Repository, viewer access.Viewer, id int64) (*models.InventoryItem, error) {
	item, err := txRepo.FindForUpdate(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock inventory item")
	}
	if item == nil || !viewer.CanSee(item.Section) {
		return nil, errItemNotFound()
	}
	if !viewer.CanWrite(item.Section) {
		return nil, errSectionForbidden(item.Section)
	}
	return item, nil
}

func errItemNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
}

func errSectionForbidden(section enums.Section) error {
	return pkgerrors.Newf(pkgerrors.CodeForbidden, "no write access to section %d", section)
}
