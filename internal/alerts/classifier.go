// Package alerts derives inventory alert states and turns state transitions
// into notifications.
package alerts

import (
	"time"

	"github.com/plantops/plantops-backend/pkg/db/models"
	"github.com/plantops/plantops-backend/pkg/enums"
)

// ExpiryWindowDays is how close an expiry date must be to raise expiring_soon.
const ExpiryWindowDays = 7

// Classify maps an item's current attributes to its alert status. Rules are
// evaluated in order and the first match wins:
//
//  1. status other than active is always normal
//  2. expiry on or before today is expired
//  3. expiry within the window is critical when stock is also at or below
//     min_threshold, expiring_soon otherwise
//  4. stock at or below min_threshold is low_stock
//  5. everything else is normal
//
// today is interpreted as a calendar date in its own location.
func Classify(item models.InventoryItem, today time.Time) enums.AlertStatus {
	if item.Status != enums.ItemStatusActive {
		return enums.AlertStatusNormal
	}

	lowStock := item.Quantity.LessThanOrEqual(item.MinThreshold)

	if item.ExpiryDate != nil {
		days := DaysUntil(today, *item.ExpiryDate)
		if days <= 0 {
			return enums.AlertStatusExpired
		}
		if days <= ExpiryWindowDays {
			if lowStock {
				return enums.AlertStatusCritical
			}
			return enums.AlertStatusExpiringSoon
		}
	}

	if lowStock {
		return enums.AlertStatusLowStock
	}
	return enums.AlertStatusNormal
}

// DaysUntil returns the number of calendar days from today to date. The
// expiry date is a plain date, so only its year/month/day are used.
func DaysUntil(today, date time.Time) int {
	from := civilDate(today)
	to := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
