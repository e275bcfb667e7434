package alerts

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/plantops/plantops-backend/internal/notifications"
	"github.com/plantops/plantops-backend/pkg/db/models"
	"github.com/plantops/plantops-backend/pkg/enums"
	pkgerrors "github.com/plantops/plantops-backend/pkg/errors"
	"github.com/plantops/plantops-backend/pkg/logger"
	"github.com/plantops/plantops-backend/pkg/metrics"
)

const alertCategory = "inventory"

type alertRecorder interface {
	IncTransition(from, to string)
	IncNotification(notificationType, priority string)
	IncDeduplicated(alertStatus string)
}

// EmitterParams wires the emitter dependencies.
type EmitterParams struct {
	Notifications notifications.Repository
	Metrics       alertRecorder
	Logger        *logger.Logger
	Location      *time.Location
	Clock         func() time.Time
}

// Emitter persists alert status transitions and creates the matching
// notification. Callers run it inside the same transaction as the write that
// changed the item.
type Emitter struct {
	notifications notifications.Repository
	metrics       alertRecorder
	logg          *logger.Logger
	loc           *time.Location
	clock         func() time.Time
}

// Transition describes what Apply did for one item.
type Transition struct {
	ItemID       int64
	From         enums.AlertStatus
	To           enums.AlertStatus
	Notification *models.Notification
	Deduplicated bool
}

// Changed reports whether the stored alert status moved.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// NewEmitter validates and builds an Emitter.
func NewEmitter(params EmitterParams) (*Emitter, error) {
	if params.Notifications == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	var recorder alertRecorder = params.Metrics
	if recorder == nil {
		recorder = metrics.NewAlertMetrics(nil)
	}
	return &Emitter{
		notifications: params.Notifications,
		metrics:       recorder,
		logg:          params.Logger,
		loc:           loc,
		clock:         clock,
	}, nil
}

// Apply classifies the post-write item and, when its alert status differs
// from the stored one, writes the new status and at most one notification
// through tx. Transitions into normal are silent. A notification is skipped
// when an unread, unarchived one already exists for the same item and status.
func (e *Emitter) Apply(ctx context.Context, tx *gorm.DB, before, after models.InventoryItem) (Transition, error) {
	if tx == nil {
		return Transition{}, pkgerrors.New(pkgerrors.CodeInternal, "alert emitter requires a transaction")
	}

	now := e.clock()
	stored := after.AlertStatus
	if stored == "" {
		stored = enums.AlertStatusNormal
	}
	next := Classify(after, now.In(e.loc))
	transition := Transition{ItemID: after.ID, From: stored, To: next}
	if !transition.Changed() {
		return transition, nil
	}

	ctx = e.logg.WithFields(e.logg.WithItemID(ctx, after.ID), map[string]any{
		"alert_from": string(stored),
		"alert_to":   string(next),
	})

	if err := tx.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ?", after.ID).
		UpdateColumn("alert_status", next).Error; err != nil {
		return Transition{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update alert status")
	}
	e.metrics.IncTransition(string(stored), string(next))
	e.logg.Info(ctx, "alerts.transition")

	if next == enums.AlertStatusNormal {
		return transition, nil
	}

	repo := e.notifications.WithTx(tx)
	open, err := repo.HasOpenAlert(ctx, after.ID, next)
	if err != nil {
		return Transition{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check open alert")
	}
	if open {
		transition.Deduplicated = true
		e.metrics.IncDeduplicated(string(next))
		e.logg.Info(ctx, "alerts.duplicate_skipped")
		return transition, nil
	}

	notification := buildNotification(before, after, next, now)
	if err := repo.Create(ctx, notification); err != nil {
		return Transition{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create alert notification")
	}
	e.metrics.IncNotification(string(notification.Type), string(notification.Priority))
	transition.Notification = notification
	return transition, nil
}

// TypeFor returns the notification type raised for an alert status.
func TypeFor(status enums.AlertStatus) enums.NotificationType {
	if status.IsExpiryCondition() {
		return enums.NotificationTypeExpiryWarning
	}
	return enums.NotificationTypeInventoryAlert
}

// PriorityFor returns the notification priority raised for an alert status.
func PriorityFor(status enums.AlertStatus) enums.NotificationPriority {
	switch status {
	case enums.AlertStatusCritical, enums.AlertStatusExpired:
		return enums.NotificationPriorityCritical
	case enums.AlertStatusLowStock, enums.AlertStatusExpiringSoon:
		return enums.NotificationPriorityHigh
	default:
		return enums.NotificationPriorityLow
	}
}

func buildNotification(before, after models.InventoryItem, status enums.AlertStatus, now time.Time) *models.Notification {
	notificationType := TypeFor(status)
	section := after.Section
	itemID := after.ID
	alertStatus := status
	category := alertCategory
	actionURL := fmt.Sprintf("/inventory/%d", after.ID)
	title, message := describe(after, status)

	data := datatypes.JSONMap{
		"item_id":               after.ID,
		"item_code":             after.Code,
		"current_quantity":      after.Quantity.String(),
		"unit":                  after.Unit,
		"alert_status":          string(status),
		"previous_alert_status": string(before.AlertStatus),
	}
	if !status.IsExpiryCondition() {
		data["min_threshold"] = after.MinThreshold.String()
	}
	if after.ExpiryDate != nil && status != enums.AlertStatusLowStock {
		data["expiry_date"] = after.ExpiryDate.Format(dateLayout)
	}

	return &models.Notification{
		Code:           notifications.NewCode(notificationType, now),
		Section:        &section,
		Type:           notificationType,
		Priority:       PriorityFor(status),
		Category:       &category,
		Title:          title,
		Message:        message,
		ActionRequired: true,
		ActionURL:      &actionURL,
		Data:           data,
		ItemID:         &itemID,
		AlertStatus:    &alertStatus,
	}
}
