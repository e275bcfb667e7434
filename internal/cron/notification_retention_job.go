package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/plantops/plantops-backend/pkg/logger"
)

const defaultRetentionDays = 30

type NotificationRetentionJobParams struct {
	Logger        *logger.Logger
	Repository    staleNotificationsRepo
	RetentionDays int
	Clock         func() time.Time
}

type staleNotificationsRepo interface {
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewNotificationRetentionJob purges notifications that expired or were
// archived more than RetentionDays ago.
func NewNotificationRetentionJob(params NotificationRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = defaultRetentionDays
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &notificationRetentionJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: retention,
		now:       clock,
	}, nil
}

type notificationRetentionJob struct {
	logg      *logger.Logger
	repo      staleNotificationsRepo
	retention int
	now       func() time.Time
}

func (j *notificationRetentionJob) Name() string { return "notification-retention" }

func (j *notificationRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().AddDate(0, 0, -j.retention)
	deleted, err := j.repo.DeleteStale(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete stale notifications: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	}), "notification retention complete")
	return nil
}
