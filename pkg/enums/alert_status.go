package enums

import "fmt"

// AlertStatus is the derived urgency classification of an inventory record.
type AlertStatus string

const (
	AlertStatusNormal       AlertStatus = "normal"
	AlertStatusLowStock     AlertStatus = "low_stock"
	AlertStatusCritical     AlertStatus = "critical"
	AlertStatusExpired      AlertStatus = "expired"
	AlertStatusExpiringSoon AlertStatus = "expiring_soon"
)

var validAlertStatuses = []AlertStatus{
	AlertStatusNormal,
	AlertStatusLowStock,
	AlertStatusCritical,
	AlertStatusExpired,
	AlertStatusExpiringSoon,
}

// AllAlertStatuses returns a copy of the canonical alert status list.
func AllAlertStatuses() []AlertStatus {
	out := make([]AlertStatus, len(validAlertStatuses))
	copy(out, validAlertStatuses)
	return out
}

// IsValid checks whether the alert status matches the canonical enum.
func (a AlertStatus) IsValid() bool {
	for _, candidate := range validAlertStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// IsExpiryCondition reports whether the status was raised by an expiry rule alone.
func (a AlertStatus) IsExpiryCondition() bool {
	return a == AlertStatusExpired || a == AlertStatusExpiringSoon
}

// ParseAlertStatus converts raw strings into AlertStatus.
func ParseAlertStatus(value string) (AlertStatus, error) {
	for _, candidate := range validAlertStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid alert status %q", value)
}
