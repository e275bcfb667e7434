package notifications

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/plantops/plantops-backend/internal/repo"
	"github.com/plantops/plantops-backend/pkg/db/models"
	"github.com/plantops/plantops-backend/pkg/enums"
)

// Repository exposes persistence helpers for notifications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) error
	FindByID(ctx context.Context, id int64) (*models.Notification, error)
	FindVisible(ctx context.Context, scope Scope, id int64) (*models.Notification, error)
	CountUnread(ctx context.Context, scope Scope, now time.Time) (int64, error)
	ListRecent(ctx context.Context, scope Scope, now time.Time, limit int) ([]models.Notification, error)
	List(ctx context.Context, params listNotificationsParams, now time.Time) ([]models.Notification, int64, error)
	MarkRead(ctx context.Context, scope Scope, id int64, now time.Time) (notificationMarkResult, error)
	MarkAllRead(ctx context.Context, scope Scope, now time.Time) (int64, error)
	Archive(ctx context.Context, scope Scope, id int64, now time.Time) (notificationMarkResult, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) (bool, error)
	HasOpenAlert(ctx context.Context, itemID int64, status enums.AlertStatus) (bool, error)
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scope is the visibility boundary for one caller: their own notifications
// plus broadcasts, limited to sections they can see.
type Scope struct {
	UserID   int64
	Sections []enums.Section
}

type repositoryImpl struct {
	repo.Base
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{Base: repo.NewBase(db)}
}

type listNotificationsParams struct {
	Scope    Scope
	Filter   enums.NotificationFilter
	Type     enums.NotificationType
	Priority enums.NotificationPriority
	Offset   int
	Limit    int
}

type notificationMarkResult struct {
	Updated bool
	Found   bool
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{Base: repo.NewBase(tx)}
}

func (r *repositoryImpl) Create(ctx context.Context, notification *models.Notification) error {
	return r.DB(ctx).Create(notification).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id int64) (*models.Notification, error) {
	return repo.First[models.Notification](r.DB(ctx).Where("id = ?", id))
}

func (r *repositoryImpl) FindVisible(ctx context.Context, scope Scope, id int64) (*models.Notification, error) {
	return repo.First[models.Notification](r.visible(ctx, scope).Where("id = ?", id))
}

func (r *repositoryImpl) CountUnread(ctx context.Context, scope Scope, now time.Time) (int64, error) {
	var count int64
	err := r.active(ctx, scope, now).
		Where("is_read = ? AND is_archived = ?", false, false).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) ListRecent(ctx context.Context, scope Scope, now time.Time, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.active(ctx, scope, now).
		Where("is_read = ? AND is_archived = ?", false, false).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *repositoryImpl) List(ctx context.Context, params listNotificationsParams, now time.Time) ([]models.Notification, int64, error) {
	query := r.active(ctx, params.Scope, now)
	switch params.Filter {
	case enums.NotificationFilterUnread:
		query = query.Where("is_read = ? AND is_archived = ?", false, false)
	case enums.NotificationFilterRead:
		query = query.Where("is_read = ? AND is_archived = ?", true, false)
	case enums.NotificationFilterArchived:
		query = query.Where("is_archived = ?", true)
	default:
		query = query.Where("is_archived = ?", false)
	}
	if params.Type != "" {
		query = query.Where("type = ?", params.Type)
	}
	if params.Priority != "" {
		query = query.Where("priority = ?", params.Priority)
	}

	return repo.Page[models.Notification](query, "created_at DESC, id DESC", params.Offset, params.Limit)
}

func (r *repositoryImpl) MarkRead(ctx context.Context, scope Scope, id int64, now time.Time) (notificationMarkResult, error) {
	result := r.visible(ctx, scope).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]any{"is_read": true, "read_at": now})
	if result.Error != nil {
		return notificationMarkResult{}, result.Error
	}
	return r.markResult(ctx, scope, id, result.RowsAffected)
}

func (r *repositoryImpl) MarkAllRead(ctx context.Context, scope Scope, now time.Time) (int64, error) {
	result := r.active(ctx, scope, now).
		Where("is_read = ? AND is_archived = ?", false, false).
		Updates(map[string]any{"is_read": true, "read_at": now})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repositoryImpl) Archive(ctx context.Context, scope Scope, id int64, now time.Time) (notificationMarkResult, error) {
	result := r.visible(ctx, scope).
		Where("id = ? AND is_archived = ?", id, false).
		Updates(map[string]any{"is_archived": true, "archived_at": now})
	if result.Error != nil {
		return notificationMarkResult{}, result.Error
	}
	return r.markResult(ctx, scope, id, result.RowsAffected)
}

func (r *repositoryImpl) Update(ctx context.Context, id int64, updates map[string]any) error {
	return r.DB(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id int64) (bool, error) {
	result := r.DB(ctx).Where("id = ?", id).Delete(&models.Notification{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// HasOpenAlert reports whether an unread, unarchived notification already
// exists for the item and alert status.
func (r *repositoryImpl) HasOpenAlert(ctx context.Context, itemID int64, status enums.AlertStatus) (bool, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.Notification{}).
		Where("item_id = ? AND alert_status = ? AND is_read = ? AND is_archived = ?", itemID, status, false, false).
		Count(&count).Error
	return count > 0, err
}

// DeleteStale removes notifications that expired or were archived before cutoff.
func (r *repositoryImpl) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.DB(ctx).
		Where("(expires_at IS NOT NULL AND expires_at < ?) OR (is_archived = ? AND archived_at < ?)", cutoff, true, cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repositoryImpl) markResult(ctx context.Context, scope Scope, id int64, affected int64) (notificationMarkResult, error) {
	mark := notificationMarkResult{Updated: affected > 0}
	if affected > 0 {
		mark.Found = true
		return mark, nil
	}

	var count int64
	if err := r.visible(ctx, scope).Where("id = ?", id).Count(&count).Error; err != nil {
		return notificationMarkResult{}, err
	}
	mark.Found = count > 0
	return mark, nil
}

// visible applies the ownership and section rules.
func (r *repositoryImpl) visible(ctx context.Context, scope Scope) *gorm.DB {
	query := r.DB(ctx).
		Model(&models.Notification{}).
		Where("(user_id = ? OR user_id IS NULL)", scope.UserID)
	if len(scope.Sections) == 0 {
		return query.Where("section IS NULL")
	}
	return query.Where("(section IS NULL OR section IN ?)", scope.Sections)
}

// active additionally hides expired notifications.
func (r *repositoryImpl) active(ctx context.Context, scope Scope, now time.Time) *gorm.DB {
	return r.visible(ctx, scope).Where("(expires_at IS NULL OR expires_at > ?)", now)
}
