package inventory

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/plantops/plantops-backend/pkg/db/models"
	"github.com/plantops/plantops-backend/pkg/enums"
	pkgerrors "github.com/plantops/plantops-backend/pkg/errors"
)

const (
	maxCodeLength   = 64
	maxNameLength   = 255
	maxReasonLength = 255
)

// CreateItemInput holds the payload to register a new item.
type CreateItemInput struct {
	Code            string
	Name            string
	Category        *string
	Unit            string
	Section         int
	Quantity        decimal.Decimal
	MinThreshold    decimal.Decimal
	MaxThreshold    decimal.Decimal
	UnitCost        decimal.Decimal
	ExpiryDate      *string
	ManufactureDate *string
	Status          string
}

// UpdateItemInput holds optional changes to an item. The code is immutable.
// An empty date string clears the date.
type UpdateItemInput struct {
	Name            *string
	Category        *string
	Unit            *string
	Section         *int
	Quantity        *decimal.Decimal
	MinThreshold    *decimal.Decimal
	MaxThreshold    *decimal.Decimal
	UnitCost        *decimal.Decimal
	ExpiryDate      *string
	ManufactureDate *string
	Status          *string
}

// AdjustInput is a signed stock movement.
type AdjustInput struct {
	Delta  decimal.Decimal
	Reason string
}

// ListItemsInput filters the item list. Zero values mean no filter.
type ListItemsInput struct {
	Section     int
	Status      string
	AlertStatus string
	Search      string
	Page        int
	Limit       int
}

func (in CreateItemInput) build() (*models.InventoryItem, error) {
	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)
	unit := strings.TrimSpace(in.Unit)
	switch {
	case code == "":
		return nil, validation("code is required")
	case len(code) > maxCodeLength:
		return nil, validation("code is too long")
	case name == "":
		return nil, validation("name is required")
	case unit == "":
		return nil, validation("unit is required")
	}

	section := enums.Section(in.Section)
	if !section.IsValid() {
		return nil, validation("section must be 1, 2 or 3")
	}

	status := enums.ItemStatusActive
	if raw := strings.TrimSpace(in.Status); raw != "" {
		parsed, err := enums.ParseItemStatus(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		status = parsed
	}

	item := &models.InventoryItem{
		Code:         code,
		Name:         name,
		Category:     trimmedOrNil(in.Category),
		Unit:         unit,
		Section:      section,
		Quantity:     in.Quantity,
		MinThreshold: in.MinThreshold,
		MaxThreshold: in.MaxThreshold,
		UnitCost:     in.UnitCost,
		Status:       status,
		AlertStatus:  enums.AlertStatusNormal,
	}

	var err error
	if item.ExpiryDate, err = parseDate("expiry_date", in.ExpiryDate); err != nil {
		return nil, err
	}
	if item.ManufactureDate, err = parseDate("manufacture_date", in.ManufactureDate); err != nil {
		return nil, err
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

// apply merges the changes into item and re-validates the result.
func (in UpdateItemInput) apply(item *models.InventoryItem) error {
	if in.Name != nil {
		item.Name = strings.TrimSpace(*in.Name)
		if item.Name == "" {
			return validation("name is required")
		}
	}
	if in.Category != nil {
		item.Category = trimmedOrNil(in.Category)
	}
	if in.Unit != nil {
		item.Unit = strings.TrimSpace(*in.Unit)
		if item.Unit == "" {
			return validation("unit is required")
		}
	}
	if in.Section != nil {
		section := enums.Section(*in.Section)
		if !section.IsValid() {
			return validation("section must be 1, 2 or 3")
		}
		item.Section = section
	}
	if in.Quantity != nil {
		item.Quantity = *in.Quantity
	}
	if in.MinThreshold != nil {
		item.MinThreshold = *in.MinThreshold
	}
	if in.MaxThreshold != nil {
		item.MaxThreshold = *in.MaxThreshold
	}
	if in.UnitCost != nil {
		item.UnitCost = *in.UnitCost
	}
	if in.Status != nil {
		status, err := enums.ParseItemStatus(strings.TrimSpace(*in.Status))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		item.Status = status
	}

	var err error
	if in.ExpiryDate != nil {
		if item.ExpiryDate, err = parseDate("expiry_date", in.ExpiryDate); err != nil {
			return err
		}
	}
	if in.ManufactureDate != nil {
		if item.ManufactureDate, err = parseDate("manufacture_date", in.ManufactureDate); err != nil {
			return err
		}
	}
	return validateItem(item)
}

func (in UpdateItemInput) empty() bool {
	return in.Name == nil && in.Category == nil && in.Unit == nil && in.Section == nil &&
		in.Quantity == nil && in.MinThreshold == nil && in.MaxThreshold == nil && in.UnitCost == nil &&
		in.ExpiryDate == nil && in.ManufactureDate == nil && in.Status == nil
}

func validateItem(item *models.InventoryItem) error {
	if len(item.Name) > maxNameLength {
		return validation("name is too long")
	}
	amounts := []struct {
		field string
		value decimal.Decimal
	}{
		{"quantity", item.Quantity},
		{"min_threshold", item.MinThreshold},
		{"max_threshold", item.MaxThreshold},
		{"unit_cost", item.UnitCost},
	}
	for _, amount := range amounts {
		if amount.value.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, amount.field+" must not be negative").
				WithDetails(map[string]any{"field": amount.field})
		}
	}
	if !item.MinThreshold.LessThan(item.MaxThreshold) {
		return validation("min_threshold must be less than max_threshold")
	}
	if item.ManufactureDate != nil && item.ExpiryDate != nil && item.ExpiryDate.Before(*item.ManufactureDate) {
		return validation("expiry_date must not be before manufacture_date")
	}
	return nil
}

// parseDate reads a YYYY-MM-DD calendar date. nil and "" both yield nil.
func parseDate(field string, raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, field+" must be YYYY-MM-DD").
			WithDetails(map[string]any{"field": field})
	}
	return &parsed, nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func validation(message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message)
}
