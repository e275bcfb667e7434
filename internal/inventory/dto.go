package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/plantops/plantops-backend/pkg/db/models"
	"github.com/plantops/plantops-backend/pkg/enums"
	"github.com/plantops/plantops-backend/pkg/pagination"
)

const dateLayout = "2006-01-02"

// ItemDTO is the inventory item payload returned to clients.
type ItemDTO struct {
	ID              int64           `json:"id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Category        *string         `json:"category"`
	Unit            string          `json:"unit"`
	Section         enums.Section   `json:"section"`
	SectionLabel    string          `json:"section_label"`
	Quantity        decimal.Decimal `json:"quantity"`
	MinThreshold    decimal.Decimal `json:"min_threshold"`
	MaxThreshold    decimal.Decimal `json:"max_threshold"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	TotalValue      decimal.Decimal `json:"total_value"`
	ExpiryDate      *string         `json:"expiry_date"`
	ManufactureDate *string         `json:"manufacture_date"`
	Status          string          `json:"status"`
	AlertStatus     string          `json:"alert_status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ListResult is one page of items.
type ListResult struct {
	Items      []ItemDTO       `json:"items"`
	Pagination pagination.Meta `json:"pagination"`
}

// SectionSummary aggregates one section's items.
type SectionSummary struct {
	Section    enums.Section    `json:"section"`
	Label      string           `json:"label"`
	TotalItems int64            `json:"total_items"`
	TotalValue decimal.Decimal  `json:"total_value"`
	Alerts     map[string]int64 `json:"alerts"`
}

// AdjustResult reports the stock movement and the alert transition it caused.
type AdjustResult struct {
	Item       ItemDTO `json:"item"`
	MovementID int64   `json:"movement_id"`
	AlertFrom  string  `json:"alert_from"`
	AlertTo    string  `json:"alert_to"`
	Notified   bool    `json:"notified"`
}

// MovementDTO is one entry of an item's stock history.
type MovementDTO struct {
	ID            int64           `json:"id"`
	ItemID        int64           `json:"item_id"`
	Delta         decimal.Decimal `json:"delta"`
	QuantityAfter decimal.Decimal `json:"quantity_after"`
	Reason        string          `json:"reason"`
	ActorID       *int64          `json:"actor_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toMovementDTOs(movements []models.StockMovement) []MovementDTO {
	out := make([]MovementDTO, 0, len(movements))
	for _, m := range movements {
		out = append(out, MovementDTO{
			ID:            m.ID,
			ItemID:        m.ItemID,
			Delta:         m.Delta,
			QuantityAfter: m.QuantityAfter,
			Reason:        m.Reason,
			ActorID:       m.ActorID,
			CreatedAt:     m.CreatedAt,
		})
	}
	return out
}

func toDTO(item models.InventoryItem) ItemDTO {
	alert := item.AlertStatus
	if alert == "" {
		alert = enums.AlertStatusNormal
	}
	return ItemDTO{
		ID:              item.ID,
		Code:            item.Code,
		Name:            item.Name,
		Category:        item.Category,
		Unit:            item.Unit,
		Section:         item.Section,
		SectionLabel:    item.Section.Label(),
		Quantity:        item.Quantity,
		MinThreshold:    item.MinThreshold,
		MaxThreshold:    item.MaxThreshold,
		UnitCost:        item.UnitCost,
		TotalValue:      item.TotalValue(),
		ExpiryDate:      formatDate(item.ExpiryDate),
		ManufactureDate: formatDate(item.ManufactureDate),
		Status:          string(item.Status),
		AlertStatus:     string(alert),
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}

func toDTOs(items []models.InventoryItem) []ItemDTO {
	out := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toDTO(item))
	}
	return out
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func buildSummary(sections []enums.Section, rows []SummaryRow) []SectionSummary {
	bySection := make(map[enums.Section]*SectionSummary, len(sections))
	out := make([]SectionSummary, len(sections))
	for i, section := range sections {
		alerts := make(map[string]int64, len(enums.AllAlertStatuses()))
		for _, status := range enums.AllAlertStatuses() {
			alerts[string(status)] = 0
		}
		out[i] = SectionSummary{
			Section:    section,
			Label:      section.Label(),
			TotalValue: decimal.Zero,
			Alerts:     alerts,
		}
		bySection[section] = &out[i]
	}
	for _, row := range rows {
		summary, ok := bySection[row.Section]
		if !ok {
			continue
		}
		summary.TotalItems += row.ItemCount
		summary.TotalValue = summary.TotalValue.Add(row.TotalValue)
		summary.Alerts[string(row.AlertStatus)] += row.ItemCount
	}
	return out
}
