package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/plantops/plantops-backend/pkg/enums"
)

// Notification is an in-app message. A nil UserID broadcasts to every user
// with access to Section (or to everyone when Section is nil).
// ItemID and AlertStatus are set on emitter-produced rows and used for
// deduplication only; they are not foreign keys.
type Notification struct {
	ID             int64                      `gorm:"primaryKey;autoIncrement"`
	Code           string                     `gorm:"type:text;not null;uniqueIndex"`
	UserID         *int64                     `gorm:"index"`
	Section        *enums.Section             `gorm:"index"`
	Type           enums.NotificationType     `gorm:"type:text;not null"`
	Priority       enums.NotificationPriority `gorm:"type:text;not null"`
	Category       *string                    `gorm:"type:text"`
	Title          string                     `gorm:"type:text;not null"`
	Message        string                     `gorm:"type:text;not null"`
	ActionRequired bool                       `gorm:"not null"`
	ActionURL      *string                    `gorm:"type:text"`
	Data           datatypes.JSONMap          `gorm:"type:jsonb"`
	ItemID         *int64                     `gorm:"index"`
	AlertStatus    *enums.AlertStatus         `gorm:"type:text"`
	IsRead         bool                       `gorm:"not null;index"`
	ReadAt         *time.Time
	IsArchived     bool `gorm:"not null;index"`
	ArchivedAt     *time.Time
	ExpiresAt      *time.Time
	CreatedBy      *int64
	CreatedAt      time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}
