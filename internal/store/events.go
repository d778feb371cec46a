package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Event is one finished sync attempt, appended to the ClickHouse
// sync_events log for offline analysis.
type Event struct {
	At       time.Time     `db:"at"`
	TenantID int64         `db:"tenant_id"`
	Kind     string        `db:"kind"`
	Outcome  string        `db:"outcome"` // ok | failed
	Rows     int           `db:"rows"`
	Skipped  int           `db:"skipped"`
	Duration time.Duration `db:"duration_ms"`
	Error    string        `db:"error"`
}

// EventLog appends sync outcomes to ClickHouse. Logging failures are reported
// to the caller but should never abort a sync.
type EventLog struct {
	ch  *sqlx.DB
	log *zap.Logger
}

func NewEventLog(ch *sqlx.DB, log *zap.Logger) *EventLog {
	return &EventLog{ch: ch, log: log.Named("events")}
}

// Append writes one event. Best effort: the error is logged and swallowed so
// a reporting outage cannot fail the run it reports on.
func (e *EventLog) Append(ctx context.Context, ev Event) {
	const q = `
		INSERT INTO sync_events (at, tenant_id, kind, outcome, rows, skipped, duration_ms, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := e.ch.ExecContext(ctx, q,
		ev.At, ev.TenantID, ev.Kind, ev.Outcome, ev.Rows, ev.Skipped,
		ev.Duration.Milliseconds(), ev.Error,
	)
	if err != nil {
		e.log.Warn("append sync event failed", zap.String("kind", ev.Kind), zap.Error(err))
	}
}
