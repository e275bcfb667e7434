package enums

import "fmt"

// NotificationType is the closed set of alert and system categories.
type NotificationType string

const (
	NotificationTypeInventoryAlert     NotificationType = "inventory_alert"
	NotificationTypeExpiryWarning      NotificationType = "expiry_warning"
	NotificationTypeProcessingUpdate   NotificationType = "processing_update"
	NotificationTypeQualityAlert       NotificationType = "quality_alert"
	NotificationTypeOrderUpdate        NotificationType = "order_update"
	NotificationTypeSystemAnnouncement NotificationType = "system_announcement"
	NotificationTypeMaintenance        NotificationType = "maintenance"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeInventoryAlert,
	NotificationTypeExpiryWarning,
	NotificationTypeProcessingUpdate,
	NotificationTypeQualityAlert,
	NotificationTypeOrderUpdate,
	NotificationTypeSystemAnnouncement,
	NotificationTypeMaintenance,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}

// NotificationPriority orders notifications by urgency.
type NotificationPriority string

const (
	NotificationPriorityLow      NotificationPriority = "low"
	NotificationPriorityMedium   NotificationPriority = "medium"
	NotificationPriorityHigh     NotificationPriority = "high"
	NotificationPriorityCritical NotificationPriority = "critical"
)

var validNotificationPriorities = []NotificationPriority{
	NotificationPriorityLow,
	NotificationPriorityMedium,
	NotificationPriorityHigh,
	NotificationPriorityCritical,
}

func (p NotificationPriority) IsValid() bool {
	for _, candidate := range validNotificationPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseNotificationPriority converts raw strings into NotificationPriority.
func ParseNotificationPriority(value string) (NotificationPriority, error) {
	for _, candidate := range validNotificationPriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification priority %q", value)
}

// NotificationFilter selects read-state buckets in list queries.
type NotificationFilter string

const (
	NotificationFilterAll      NotificationFilter = "all"
	NotificationFilterUnread   NotificationFilter = "unread"
	NotificationFilterRead     NotificationFilter = "read"
	NotificationFilterArchived NotificationFilter = "archived"
)

// ParseNotificationFilter converts raw strings into NotificationFilter.
// Empty input selects the default "all" bucket.
func ParseNotificationFilter(value string) (NotificationFilter, error) {
	switch NotificationFilter(value) {
	case "":
		return NotificationFilterAll, nil
	case NotificationFilterAll, NotificationFilterUnread, NotificationFilterRead, NotificationFilterArchived:
		return NotificationFilter(value), nil
	}
	return "", fmt.Errorf("invalid notification filter %q", value)
}
