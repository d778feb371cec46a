package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sellerops/wbsync/internal/metrics"
)

// ChunkFailure records one chunk that did not commit, by row offsets into the
// original slice.
type ChunkFailure struct {
	Start int
	End   int
	Err   error
}

// WriteReport accounts for one Write call. Written counts only rows in
// committed chunks.
type WriteReport struct {
	Table   string
	Total   int
	Written int
	Failed  []ChunkFailure
}

// Err folds the chunk failures into a single error, nil when everything
// committed.
func (r WriteReport) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	first := r.Failed[0]
	return fmt.Errorf("upsert %s: %d of %d rows failed in %d chunks, first [%d:%d]: %w",
		r.Table, r.Total-r.Written, r.Total, len(r.Failed), first.Start, first.End, first.Err)
}

// Writer upserts typed rows in fixed-size chunks, one transaction per chunk.
// A failed chunk rolls back alone; later chunks still run.
type Writer struct {
	db        *sqlx.DB
	chunkSize int
	log       *zap.Logger
}

func NewWriter(db *sqlx.DB, chunkSize int, log *zap.Logger) *Writer {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	return &Writer{db: db, chunkSize: chunkSize, log: log.Named("store")}
}

// Write upserts rows into spec's table. Replaying the same rows is a no-op
// thanks to the ON DUPLICATE KEY clause. The returned report is always valid,
// even when err is non-nil.
func Write[T any](ctx context.Context, w *Writer, spec TableSpec, rows []T) (WriteReport, error) {
	report := WriteReport{Table: spec.Name, Total: len(rows)}
	if len(rows) == 0 {
		return report, nil
	}
	query := spec.UpsertSQL()

	for start := 0; start < len(rows); start += w.chunkSize {
		end := start + w.chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := w.writeChunk(ctx, query, rows[start:end]); err != nil {
			report.Failed = append(report.Failed, ChunkFailure{Start: start, End: end, Err: err})
			metrics.ChunksTotal.WithLabelValues(spec.Name, "failed").Inc()
			w.log.Error("chunk failed",
				zap.String("table", spec.Name),
				zap.Int("start", start),
				zap.Int("end", end),
				zap.Error(err))
			continue
		}
		report.Written += end - start
		metrics.ChunksTotal.WithLabelValues(spec.Name, "committed").Inc()
	}

	metrics.RowsWrittenTotal.WithLabelValues(spec.Name).Add(float64(report.Written))
	w.log.Info("rows written",
		zap.String("table", spec.Name),
		zap.Int("total", report.Total),
		zap.Int("written", report.Written),
		zap.Int("failed_chunks", len(report.Failed)))
	return report, report.Err()
}

func (w *Writer) writeChunk(ctx context.Context, query string, chunk any) error {
	tx, err := w.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.NamedExecContext(ctx, query, chunk); err != nil {
		return err
	}
	return tx.Commit()
}
