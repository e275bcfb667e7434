package cron

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/plantops/plantops-backend/internal/alerts"
	pkgerrors "github.com/plantops/plantops-backend/pkg/errors"
	"github.com/plantops/plantops-backend/pkg/logger"
)

const defaultSweepBatch = 200

type ExpirySweepJobParams struct {
	Logger    *logger.Logger
	Inventory expiryReclassifier
	BatchSize int
}

type expiryReclassifier interface {
	ExpiryCandidates(ctx context.Context, afterID int64, limit int) ([]int64, error)
	Reclassify(ctx context.Context, id int64) (alerts.Transition, error)
}

// NewExpirySweepJob re-evaluates every active item with an expiry date so
// date-driven alerts fire even when the item is not written to.
func NewExpirySweepJob(params ExpirySweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultSweepBatch
	}
	return &expirySweepJob{
		logg:      params.Logger,
		inventory: params.Inventory,
		batch:     batch,
	}, nil
}

type expirySweepJob struct {
	logg      *logger.Logger
	inventory expiryReclassifier
	batch     int
}

func (j *expirySweepJob) Name() string { return "expiry-sweep" }

func (j *expirySweepJob) Run(ctx context.Context) error {
	var (
		errs     error
		afterID  int64
		checked  int
		changed  int
		notified int
	)
	for {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		ids, err := j.inventory.ExpiryCandidates(ctx, afterID, j.batch)
		if err != nil {
			return multierr.Append(errs, fmt.Errorf("list expiry candidates after %d: %w", afterID, err))
		}
		for _, id := range ids {
			checked++
			transition, err := j.inventory.Reclassify(ctx, id)
			if err != nil {
				// Items removed between the listing and the lock are not failures.
				if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
					continue
				}
				errs = multierr.Append(errs, fmt.Errorf("reclassify item %d: %w", id, err))
				continue
			}
			if transition.Changed() {
				changed++
			}
			if transition.Notification != nil {
				notified++
			}
		}
		if len(ids) < j.batch {
			break
		}
		afterID = ids[len(ids)-1]
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"items_checked": checked,
		"items_changed": changed,
		"notifications": notified,
		"failures":      len(multierr.Errors(errs)),
	}), "expiry sweep complete")
	return errs
}
