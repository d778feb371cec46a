package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sellerops/wbsync/internal/metrics"
	"github.com/sellerops/wbsync/internal/model"
	"github.com/sellerops/wbsync/internal/repository"
	"github.com/sellerops/wbsync/internal/store"
)

// EventSink receives one record per finished task. Nil disables event
// logging.
type EventSink interface {
	Append(ctx context.Context, ev store.Event)
}

// Publisher pushes per-tenant run summaries downstream. Nil disables
// publishing.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// TaskOutcome is one task's result for one tenant, as published downstream.
type TaskOutcome struct {
	Kind     string `json:"kind"`
	Rows     int    `json:"rows"`
	Skipped  int    `json:"skipped"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

// TenantRun is the published summary of one tenant's sync.
type TenantRun struct {
	Tenant    string        `json:"tenant"`
	TenantID  int64         `json:"tenant_id"`
	StartedAt time.Time     `json:"started_at"`
	Outcomes  []TaskOutcome `json:"outcomes"`
	Failed    bool          `json:"failed"`
}

// Summary aggregates a whole orchestrated run.
type Summary struct {
	Tenants  int
	OK       int
	Failed   int
	Failures []string
}

// Orchestrator fans a set of tasks out over all active tenants with a bounded
// degree of parallelism. One tenant failing, or panicking, never touches the
// others.
type Orchestrator struct {
	maxTenants int
	tenants    repository.TenantsRepository
	events     EventSink
	publisher  Publisher
	log        *zap.Logger
}

func NewOrchestrator(
	maxTenants int,
	tenants repository.TenantsRepository,
	events EventSink,
	publisher Publisher,
	log *zap.Logger,
) *Orchestrator {
	if maxTenants <= 0 {
		maxTenants = 3
	}
	return &Orchestrator{
		maxTenants: maxTenants,
		tenants:    tenants,
		events:     events,
		publisher:  publisher,
		log:        log.Named("orchestrator"),
	}
}

// RunForAll runs every task for every active tenant and reports the
// aggregate. The error is non-nil only when the tenant list itself cannot be
// loaded; per-tenant failures live in the summary.
func (o *Orchestrator) RunForAll(ctx context.Context, tasks []Task) (Summary, error) {
	tenants, err := o.tenants.ListActive(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list tenants: %w", err)
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		sem     = make(chan struct{}, o.maxTenants)
		summary = Summary{Tenants: len(tenants)}
	)

	for _, t := range tenants {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return summary, ctx.Err()
		}

		wg.Add(1)
		go func(t model.Tenant) {
			defer wg.Done()
			defer func() { <-sem }()

			run := o.runTenant(ctx, t, tasks)

			mu.Lock()
			if run.Failed {
				summary.Failed++
				summary.Failures = append(summary.Failures, t.Name)
			} else {
				summary.OK++
			}
			mu.Unlock()

			if o.publisher != nil {
				if err := o.publisher.PublishJSON(ctx, t.Name, run); err != nil {
					o.log.Warn("publish run summary failed",
						zap.String("tenant", t.Name), zap.Error(err))
				}
			}
		}(t)
	}

	wg.Wait()
	o.log.Info("run finished",
		zap.Int("tenants", summary.Tenants),
		zap.Int("ok", summary.OK),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

// runTenant executes the tasks in order for one tenant. A panic in a task is
// converted into a task failure so the goroutine, and the run, survive.
func (o *Orchestrator) runTenant(ctx context.Context, t model.Tenant, tasks []Task) TenantRun {
	run := TenantRun{Tenant: t.Name, TenantID: t.ID, StartedAt: time.Now()}

	for _, task := range tasks {
		if ctx.Err() != nil {
			run.Failed = true
			run.Outcomes = append(run.Outcomes, TaskOutcome{Kind: task.Kind, Error: ctx.Err().Error()})
			break
		}

		started := time.Now()
		res, err := o.runTask(ctx, t, task)
		elapsed := time.Since(started)

		out := TaskOutcome{
			Kind:     task.Kind,
			Rows:     res.Rows,
			Skipped:  res.Skipped,
			Duration: elapsed.Round(time.Millisecond).String(),
		}
		outcome := "ok"
		if err != nil {
			out.Error = err.Error()
			outcome = "failed"
			run.Failed = true
			o.log.Error("task failed",
				zap.String("tenant", t.Name),
				zap.String("kind", task.Kind),
				zap.Error(err))
		} else {
			o.log.Info("task done",
				zap.String("tenant", t.Name),
				zap.String("kind", task.Kind),
				zap.Int("rows", res.Rows),
				zap.Duration("took", elapsed))
		}
		run.Outcomes = append(run.Outcomes, out)
		metrics.TenantRunsTotal.WithLabelValues(task.Kind, outcome).Inc()

		if o.events != nil {
			o.events.Append(ctx, store.Event{
				At:       started,
				TenantID: t.ID,
				Kind:     task.Kind,
				Outcome:  outcome,
				Rows:     res.Rows,
				Skipped:  res.Skipped,
				Duration: elapsed,
				Error:    out.Error,
			})
		}
	}
	return run
}

func (o *Orchestrator) runTask(ctx context.Context, t model.Tenant, task Task) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", task.Kind, r)
		}
	}()
	return task.Run(ctx, t)
}
