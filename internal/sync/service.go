package sync

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sellerops/wbsync/internal/config"
	"github.com/sellerops/wbsync/internal/model"
	"github.com/sellerops/wbsync/internal/report"
	"github.com/sellerops/wbsync/internal/store"
	"github.com/sellerops/wbsync/internal/wbapi"
)

// Result is what one task did for one tenant.
type Result struct {
	Rows    int
	Skipped int
}

// TaskFunc syncs one dataset for one tenant.
type TaskFunc func(ctx context.Context, t model.Tenant) (Result, error)

// Task is a named TaskFunc. The kind is the CLI argument, the cursor key and
// the metrics label.
type Task struct {
	Kind string
	Run  TaskFunc
}

// Service implements every sync task against the seller API and the store.
type Service struct {
	cfg     config.SyncConfig
	api     *wbapi.Client
	runner  *report.Runner
	writer  *store.Writer
	cursors *store.CursorStore
	log     *zap.Logger
}

func NewService(
	cfg config.SyncConfig,
	api *wbapi.Client,
	runner *report.Runner,
	writer *store.Writer,
	cursors *store.CursorStore,
	log *zap.Logger,
) *Service {
	return &Service{
		cfg:     cfg,
		api:     api,
		runner:  runner,
		writer:  writer,
		cursors: cursors,
		log:     log.Named("sync"),
	}
}

// Tasks lists every sync kind in run order. Cheap list feeds run before the
// heavy report-based ones so a poll-budget blowup cannot starve them.
func (s *Service) Tasks() []Task {
	return []Task{
		{Kind: "stocks", Run: s.SyncStocks},
		{Kind: "orders", Run: s.SyncOrders},
		{Kind: "supplies", Run: s.SyncSupplies},
		{Kind: "cards", Run: s.SyncCards},
		{Kind: "prices", Run: s.SyncPrices},
		{Kind: "region-sales", Run: s.SyncRegionSales},
		{Kind: "fin-report", Run: s.SyncFinReport},
		{Kind: "storage", Run: s.SyncStorage},
		{Kind: "card-stats", Run: s.SyncCardStats},
		{Kind: "stock-age", Run: s.SyncStockAge},
		{Kind: "adverts", Run: s.SyncAdverts},
	}
}

// Task finds one task by kind.
func (s *Service) Task(kind string) (Task, bool) {
	for _, t := range s.Tasks() {
		if t.Kind == kind {
			return t, true
		}
	}
	return Task{}, false
}

// Provider timestamps come in a few shapes. parseTime tries them in order and
// falls back to the zero time; a zero timestamp upserts fine and is easy to
// spot in the data.
func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func parseTimePtr(s string) *time.Time {
	if s == "" || s == "0001-01-01T00:00:00" {
		return nil
	}
	ts := parseTime(s)
	if ts.IsZero() {
		return nil
	}
	return &ts
}
