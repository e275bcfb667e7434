package enums

import "fmt"

// ItemStatus is the lifecycle status of an inventory record.
type ItemStatus string

const (
	ItemStatusActive   ItemStatus = "active"
	ItemStatusInactive ItemStatus = "inactive"
	ItemStatusExpired  ItemStatus = "expired"
	ItemStatusDamaged  ItemStatus = "damaged"
	ItemStatusRecalled ItemStatus = "recalled"
)

var validItemStatuses = []ItemStatus{
	ItemStatusActive,
	ItemStatusInactive,
	ItemStatusExpired,
	ItemStatusDamaged,
	ItemStatusRecalled,
}

// IsValid checks whether the status matches the canonical enum.
func (s ItemStatus) IsValid() bool {
	for _, candidate := range validItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseItemStatus converts raw strings into ItemStatus.
func ParseItemStatus(value string) (ItemStatus, error) {
	for _, candidate := range validItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item status %q", value)
}
