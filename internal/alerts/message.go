package alerts

import (
	"fmt"

	"github.com/plantops/plantops-backend/pkg/db/models"
	"github.com/plantops/plantops-backend/pkg/enums"
)

const dateLayout = "2006-01-02"

func describe(item models.InventoryItem, status enums.AlertStatus) (string, string) {
	quantity := fmt.Sprintf("%s %s", item.Quantity.String(), item.Unit)
	threshold := fmt.Sprintf("%s %s", item.MinThreshold.String(), item.Unit)
	expiry := ""
	if item.ExpiryDate != nil {
		expiry = item.ExpiryDate.Format(dateLayout)
	}

	switch status {
	case enums.AlertStatusLowStock:
		return fmt.Sprintf("Low stock: %s", item.Name),
			fmt.Sprintf("%s (%s) is down to %s, at or below the minimum threshold of %s.", item.Name, item.Code, quantity, threshold)
	case enums.AlertStatusCritical:
		return fmt.Sprintf("Critical stock: %s", item.Name),
			fmt.Sprintf("%s (%s) is down to %s (minimum %s) and expires on %s.", item.Name, item.Code, quantity, threshold, expiry)
	case enums.AlertStatusExpiringSoon:
		return fmt.Sprintf("Expiring soon: %s", item.Name),
			fmt.Sprintf("%s (%s) expires on %s. Current stock: %s.", item.Name, item.Code, expiry, quantity)
	case enums.AlertStatusExpired:
		return fmt.Sprintf("Expired: %s", item.Name),
			fmt.Sprintf("%s (%s) expired on %s. Current stock: %s.", item.Name, item.Code, expiry, quantity)
	default:
		return item.Name, fmt.Sprintf("%s (%s) is back to normal at %s.", item.Name, item.Code, quantity)
	}
}
