package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/plantops/plantops-backend/pkg/access"
	"github.com/plantops/plantops-backend/pkg/db/models"
	"github.com/plantops/plantops-backend/pkg/enums"
	pkgerrors "github.com/plantops/plantops-backend/pkg/errors"
	"github.com/plantops/plantops-backend/pkg/logger"
	"github.com/plantops/plantops-backend/pkg/pagination"
)

const (
	defaultRecentLimit = 5
	maxRecentLimit     = 50
)

// Service answers what a viewer should see and mutates read state.
type Service interface {
	UnreadCount(ctx context.Context, viewer access.Viewer) (int64, error)
	Recent(ctx context.Context, viewer access.Viewer, limit int) ([]View, error)
	List(ctx context.Context, viewer access.Viewer, params ListParams) (*ListResult, error)
	Get(ctx context.Context, viewer access.Viewer, id int64) (*View, error)
	MarkRead(ctx context.Context, viewer access.Viewer, id int64) error
	MarkAllRead(ctx context.Context, viewer access.Viewer) (int64, error)
	Archive(ctx context.Context, viewer access.Viewer, id int64) error
	Create(ctx context.Context, viewer access.Viewer, input CreateInput) (*models.Notification, error)
	Update(ctx context.Context, viewer access.Viewer, id int64, input UpdateInput) error
	Delete(ctx context.Context, viewer access.Viewer, id int64) error
}

// ServiceParams wires the notifications service.
type ServiceParams struct {
	Repo        Repository
	Cache       CountCache
	Logger      *logger.Logger
	RecentLimit int
	Clock       func() time.Time
}

type service struct {
	repo        Repository
	cache       CountCache
	logg        *logger.Logger
	recentLimit int
	clock       func() time.Time
}

// ListParams holds raw list filters as received from the caller.
type ListParams struct {
	Filter   string
	Type     string
	Priority string
	Page     int
	Limit    int
}

// ListResult is one page of notifications.
type ListResult struct {
	Notifications []View          `json:"notifications"`
	Pagination    pagination.Meta `json:"pagination"`
}

// NewService wires notifications dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	recent := params.RecentLimit
	if recent <= 0 {
		recent = defaultRecentLimit
	}
	return &service{
		repo:        params.Repo,
		cache:       params.Cache,
		logg:        params.Logger,
		recentLimit: recent,
		clock:       clock,
	}, nil
}

func (s *service) now() time.Time {
	return s.clock().UTC()
}

func scopeFor(viewer access.Viewer) Scope {
	return Scope{UserID: viewer.UserID, Sections: viewer.Sections}
}

func (s *service) UnreadCount(ctx context.Context, viewer access.Viewer) (int64, error) {
	if s.cache != nil {
		count, ok, err := s.cache.Get(ctx, viewer)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "notifications.count_cache_get_failed")
		} else if ok {
			return count, nil
		}
	}

	count, err := s.repo.CountUnread(ctx, scopeFor(viewer), s.now())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, viewer, count); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "notifications.count_cache_set_failed")
		}
	}
	return count, nil
}

func (s *service) Recent(ctx context.Context, viewer access.Viewer, limit int) ([]View, error) {
	if limit <= 0 {
		limit = s.recentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	now := s.now()
	rows, err := s.repo.ListRecent(ctx, scopeFor(viewer), now, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recent notifications")
	}
	return toViews(rows, now), nil
}

func (s *service) List(ctx context.Context, viewer access.Viewer, params ListParams) (*ListResult, error) {
	filter, err := enums.ParseNotificationFilter(strings.TrimSpace(params.Filter))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid filter")
	}
	query := listNotificationsParams{Scope: scopeFor(viewer), Filter: filter}
	if raw := strings.TrimSpace(params.Type); raw != "" {
		typ, err := enums.ParseNotificationType(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid notification type")
		}
		query.Type = typ
	}
	if raw := strings.TrimSpace(params.Priority); raw != "" {
		priority, err := enums.ParseNotificationPriority(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid notification priority")
		}
		query.Priority = priority
	}

	page := pagination.Params{Page: params.Page, Limit: params.Limit}.Normalize()
	query.Offset = page.Offset()
	query.Limit = page.Limit

	now := s.now()
	rows, total, err := s.repo.List(ctx, query, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	return &ListResult{
		Notifications: toViews(rows, now),
		Pagination:    pagination.NewMeta(page, total),
	}, nil
}

func (s *service) Get(ctx context.Context, viewer access.Viewer, id int64) (*View, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	row, err := s.repo.FindVisible(ctx, scopeFor(viewer), id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notification")
	}
	if row == nil {
		return nil, errNotFound()
	}
	view := toView(*row, s.now())
	return &view, nil
}

func (s *service) MarkRead(ctx context.Context, viewer access.Viewer, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, scopeFor(viewer), id, s.now())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return errNotFound()
	}
	if result.Updated {
		s.invalidate(ctx, viewer)
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, viewer access.Viewer) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx, scopeFor(viewer), s.now())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	if count > 0 {
		s.invalidate(ctx, viewer)
	}
	return count, nil
}

func (s *service) Archive(ctx context.Context, viewer access.Viewer, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.Archive(ctx, scopeFor(viewer), id, s.now())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "archive notification")
	}
	if !result.Found {
		return errNotFound()
	}
	if result.Updated {
		s.invalidate(ctx, viewer)
	}
	return nil
}

func (s *service) Create(ctx context.Context, viewer access.Viewer, input CreateInput) (*models.Notification, error) {
	if !viewer.IsAdmin() {
		return nil, errAdminRequired()
	}

	now := s.now()
	notification, err := input.build(now)
	if err != nil {
		return nil, err
	}
	createdBy := viewer.UserID
	notification.CreatedBy = &createdBy

	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	s.logg.Info(s.logg.WithNotificationID(ctx, notification.ID), "notifications.created")
	return notification, nil
}

func (s *service) Update(ctx context.Context, viewer access.Viewer, id int64, input UpdateInput) error {
	if !viewer.IsAdmin() {
		return errAdminRequired()
	}
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	updates, err := input.updates()
	if err != nil {
		return err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notification")
	}
	if existing == nil {
		return errNotFound()
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update notification")
	}
	return nil
}

func (s *service) Delete(ctx context.Context, viewer access.Viewer, id int64) error {
	if !viewer.IsAdmin() {
		return errAdminRequired()
	}
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete notification")
	}
	if !deleted {
		return errNotFound()
	}
	s.logg.Info(s.logg.WithNotificationID(ctx, id), "notifications.deleted")
	return nil
}

func (s *service) invalidate(ctx context.Context, viewer access.Viewer) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, viewer); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "notifications.count_cache_invalidate_failed")
	}
}

// Missing and invisible notifications share one error.
func errNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
}

func errAdminRequired() error {
	return pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
}

func requiredField(name string) error {
	return pkgerrors.Newf(pkgerrors.CodeValidation, "Field '%s' is required", name).
		WithDetails(map[string]string{name: "required"})
}

// relativeTime renders created_at as "3 minutes ago".
func relativeTime(createdAt, now time.Time) string {
	return humanize.RelTime(createdAt, now, "ago", "from now")
}
