package inventory

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/plantops/plantops-backend/internal/repo"
	"github.com/plantops/plantops-backend/pkg/db/models"
	"github.com/plantops/plantops-backend/pkg/enums"
)

// Repository persists inventory items and their stock movements.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(tx)}
}

type listItemsParams struct {
	Sections    []enums.Section
	Status      enums.ItemStatus
	AlertStatus enums.AlertStatus
	Search      string
	Offset      int
	Limit       int
}

// SummaryRow is one (section, alert_status) bucket.
type SummaryRow struct {
	Section     enums.Section
	AlertStatus enums.AlertStatus
	ItemCount   int64
	TotalValue  decimal.Decimal
}

// FindByID returns nil without error when the item does not exist.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.InventoryItem, error) {
	return r.find(r.DB(ctx), id)
}

// FindForUpdate loads the item with a row lock held until the surrounding
// transaction ends.
func (r *Repository) FindForUpdate(ctx context.Context, id int64) (*models.InventoryItem, error) {
	return r.find(r.DB(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *Repository) find(query *gorm.DB, id int64) (*models.InventoryItem, error) {
	return repo.First[models.InventoryItem](query.Where("id = ?", id))
}

func (r *Repository) Create(ctx context.Context, item *models.InventoryItem) error {
	return r.DB(ctx).Create(item).Error
}

// Save writes every editable column of the item. alert_status is owned by
// the emitter and never written here.
func (r *Repository) Save(ctx context.Context, item *models.InventoryItem) error {
	return r.DB(ctx).
		Model(item).
		Select("name", "category", "unit", "section", "quantity", "min_threshold", "max_threshold",
			"unit_cost", "expiry_date", "manufacture_date", "status", "updated_by", "updated_at").
		Updates(item).Error
}

func (r *Repository) RecordMovement(ctx context.Context, movement *models.StockMovement) error {
	return r.DB(ctx).Create(movement).Error
}

// ListMovements returns the newest movements first.
func (r *Repository) ListMovements(ctx context.Context, itemID int64, limit int) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := r.DB(ctx).
		Where("item_id = ?", itemID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&movements).Error
	return movements, err
}

func (r *Repository) List(ctx context.Context, params listItemsParams) ([]models.InventoryItem, int64, error) {
	query := r.DB(ctx).Model(&models.InventoryItem{}).Where("section IN ?", params.Sections)
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.AlertStatus != "" {
		query = query.Where("alert_status = ?", params.AlertStatus)
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(code) LIKE ?)", pattern, pattern)
	}

	return repo.Page[models.InventoryItem](query, "section ASC, name ASC, id ASC", params.Offset, params.Limit)
}

// Summary aggregates item counts and stock value per section and alert status.
func (r *Repository) Summary(ctx context.Context, sections []enums.Section) ([]SummaryRow, error) {
	var rows []SummaryRow
	err := r.DB(ctx).
		Model(&models.InventoryItem{}).
		Select("section, alert_status, COUNT(*) AS item_count, COALESCE(SUM(quantity * unit_cost), 0) AS total_value").
		Where("section IN ?", sections).
		Group("section, alert_status").
		Order("section ASC, alert_status ASC").
		Scan(&rows).Error
	return rows, err
}

// ListExpiryCandidateIDs pages through active items that carry an expiry
// date, ordered by id. Pass the last id seen to continue.
func (r *Repository) ListExpiryCandidateIDs(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	var ids []int64
	err := r.DB(ctx).
		Model(&models.InventoryItem{}).
		Where("status = ? AND expiry_date IS NOT NULL AND id > ?", enums.ItemStatusActive, afterID).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}
