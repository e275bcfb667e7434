package cron

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/plantops/plantops-backend/pkg/logger"
	"github.com/plantops/plantops-backend/pkg/metrics"
)

type fakeLock struct {
	held     bool
	released int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.held = false
	f.released++
	return nil
}

// lostLease renews successfully once and then reports the lease gone.
type lostLease struct {
	fakeLock
	refreshes atomic.Int32
}

func (l *lostLease) Refresh(context.Context) (bool, error) {
	return l.refreshes.Add(1) < 2, nil
}

func (l *lostLease) RenewEvery() time.Duration { return time.Millisecond }

// waitJob blocks until its context is cancelled or the wait runs out.
type waitJob struct {
	cancelled bool
}

func (w *waitJob) Name() string { return "wait" }

func (w *waitJob) Run(ctx context.Context) error {
	select {
	case <-ctx.Done():
		w.cancelled = true
		return ctx.Err()
	case <-time.After(2 * time.Second):
		return nil
	}
}

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func TestRunOnceRunsAllJobsEvenOnFailure(t *testing.T) {
	failing := &testJob{name: "fail", err: errors.New("boom")}
	succeeding := &testJob{name: "success"}
	registry, err := NewRegistry(failing, succeeding)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	reg := prometheus.NewRegistry()
	jobMetrics := metrics.NewCronJobMetrics(reg)
	lock := &fakeLock{}

	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: registry,
		Lock:     lock,
		Metrics:  jobMetrics,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if failing.runs != 1 || succeeding.runs != 1 {
		t.Fatalf("expected both jobs to run once, got fail=%d success=%d", failing.runs, succeeding.runs)
	}
	if lock.released != 1 {
		t.Fatalf("expected lock released once, got %d", lock.released)
	}
	if got := counterValue(t, reg, "fail", metrics.OutcomeFailure); got != 1 {
		t.Fatalf("expected one failure recorded, got %v", got)
	}
	if got := counterValue(t, reg, "success", metrics.OutcomeSuccess); got != 1 {
		t.Fatalf("expected one success recorded, got %v", got)
	}
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "expiry-sweep"}
	registry, err := NewRegistry(job)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: registry,
		Lock:     &fakeLock{held: true},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("expected job skipped, ran %d", job.runs)
	}
}

func TestRunOnceStopsWhenLeaseLost(t *testing.T) {
	blocking := &waitJob{}
	after := &testJob{name: "after"}
	registry, err := NewRegistry(blocking, after)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	lock := &lostLease{}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: registry,
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if !blocking.cancelled {
		t.Fatal("expected running job to see cancellation after lease loss")
	}
	if after.runs != 0 {
		t.Fatalf("expected remaining jobs skipped, ran %d", after.runs)
	}
	if lock.refreshes.Load() < 2 {
		t.Fatalf("expected at least two refreshes, got %d", lock.refreshes.Load())
	}
	if lock.released != 1 {
		t.Fatalf("expected release after lease loss, got %d", lock.released)
	}
}

func TestNewServiceDefaults(t *testing.T) {
	registry, _ := NewRegistry()
	service, err := NewService(ServiceParams{Logger: testLogger(), Registry: registry})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if service.interval != defaultInterval {
		t.Fatalf("expected default interval, got %s", service.interval)
	}
	if _, ok := service.lock.(localLock); !ok {
		t.Fatalf("expected local lock, got %T", service.lock)
	}

	if _, err := NewService(ServiceParams{Registry: registry}); err == nil {
		t.Fatal("expected logger error")
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, job, outcome string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != "plantops_cron_job_runs_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, label := range metric.GetLabel() {
				labels[label.GetName()] = label.GetValue()
			}
			if labels["job"] == job && labels["outcome"] == outcome {
				return metric.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("no run counter for job=%q outcome=%q", job, outcome)
	return 0
}
