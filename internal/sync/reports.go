package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sellerops/wbsync/internal/model"
	"github.com/sellerops/wbsync/internal/report"
	"github.com/sellerops/wbsync/internal/store"
	"github.com/sellerops/wbsync/internal/wbapi"
)

const storageReportPeriod = 7 // days

// invalidIDMarker is the literal phrase the analytics download endpoint
// answers with while it has not registered the job id yet.
const invalidIDMarker = "check correctness of download id or supplier id"

var stockAgePeriods = [...]int{3, 7, 14, 30}

// storageItem mirrors one line of the paid-storage JSON artifact.
type storageItem struct {
	Date           string  `json:"date"`
	Warehouse      string  `json:"warehouse"`
	WarehouseCoef  float64 `json:"warehouseCoef"`
	GiID           int64   `json:"giId"`
	ChrtID         int64   `json:"chrtId"`
	Size           string  `json:"size"`
	Barcode        string  `json:"barcode"`
	Subject        string  `json:"subject"`
	Brand          string  `json:"brand"`
	VendorCode     string  `json:"vendorCode"`
	NmID           int64   `json:"nmId"`
	Volume         float64 `json:"volume"`
	CalcType       string  `json:"calcType"`
	WarehousePrice float64 `json:"warehousePrice"`
	BarcodesCount  int     `json:"barcodesCount"`
	PalletCount    float64 `json:"palletCount"`
}

// SyncStorage runs the paid-storage report for the last week: submit, poll,
// decode the JSON artifact, upsert.
func (s *Service) SyncStorage(ctx context.Context, t model.Tenant) (Result, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -storageReportPeriod)

	job := report.NewJob("storage")
	artifact, err := s.runner.Run(ctx, job, report.Phases{
		Submit: func(ctx context.Context) (string, error) {
			return s.api.CreateStorageReport(ctx, t.Token, from, to)
		},
		Fetch: func(ctx context.Context, remoteID string) (report.PollOutcome, error) {
			resp, err := s.api.FetchStorageReport(ctx, t.Token, remoteID)
			if err != nil {
				return report.PollOutcome{}, err
			}
			return storageOutcome(resp), nil
		},
	})
	if err != nil {
		return Result{}, err
	}

	var items []storageItem
	if err := json.Unmarshal(artifact, &items); err != nil {
		return Result{}, fmt.Errorf("decode storage report: %w", err)
	}

	rows := make([]model.StorageRow, 0, len(items))
	skipped := 0
	for _, it := range items {
		date := parseTime(it.Date)
		if date.IsZero() || it.NmID == 0 {
			skipped++
			continue
		}
		rows = append(rows, model.StorageRow{
			TenantID:       t.ID,
			ReportDate:     date,
			Warehouse:      it.Warehouse,
			WarehouseCoef:  it.WarehouseCoef,
			GiID:           it.GiID,
			ChrtID:         it.ChrtID,
			Size:           it.Size,
			Barcode:        it.Barcode,
			Subject:        it.Subject,
			Brand:          it.Brand,
			VendorCode:     it.VendorCode,
			NmID:           it.NmID,
			Volume:         it.Volume,
			CalcType:       it.CalcType,
			WarehousePrice: it.WarehousePrice,
			BarcodesCount:  it.BarcodesCount,
			PalletCount:    it.PalletCount,
		})
	}

	rep, err := store.Write(ctx, s.writer, store.StorageRows, rows)
	return Result{Rows: rep.Written, Skipped: skipped}, err
}

// storageOutcome reads the download body: a JSON array is the finished
// report, anything else means the server is still generating it.
func storageOutcome(resp *wbapi.Response) report.PollOutcome {
	if resp.NotFound {
		return report.PollOutcome{}
	}
	body := bytes.TrimSpace(resp.Body)
	if len(body) > 0 && body[0] == '[' {
		return report.PollOutcome{Ready: true, Artifact: resp.Body}
	}
	return report.PollOutcome{}
}

// reportWindow is one from/to span of a dated export request.
type reportWindow struct {
	from, to time.Time
}

// cardStatsWindows covers the last 15 days in two export requests; the
// funnel endpoint caps a single window at 8 days.
func cardStatsWindows(now time.Time) []reportWindow {
	return []reportWindow{
		{from: now.AddDate(0, 0, -7), to: now},
		{from: now.AddDate(0, 0, -15), to: now.AddDate(0, 0, -8)},
	}
}

// SyncCardStats generates the per-card funnel export, one report per window,
// and upserts the decoded rows. Rows are keyed by (nmid, date), so the two
// windows land without overlap.
func (s *Service) SyncCardStats(ctx context.Context, t model.Tenant) (Result, error) {
	var total Result
	for _, w := range cardStatsWindows(time.Now()) {
		artifact, err := s.runAnalyticsReport(ctx, t, "card-stats", wbapi.ReportDetailHistory, w.from, w.to)
		if err != nil {
			return total, err
		}

		rows, stats, err := report.DecodeCardStats(artifact, s.log)
		total.Skipped += stats.Skipped
		if err != nil {
			return total, err
		}

		rep, err := store.Write(ctx, s.writer, store.CardStats, rows)
		total.Rows += rep.Written
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// SyncStockAge generates one stock-history export per lookback period and
// upserts days-in-stock per warehouse.
func (s *Service) SyncStockAge(ctx context.Context, t model.Tenant) (Result, error) {
	var total Result
	to := time.Now()

	for _, period := range stockAgePeriods {
		from := to.AddDate(0, 0, -period)

		artifact, err := s.runAnalyticsReport(ctx, t, fmt.Sprintf("stock-age-%dd", period), wbapi.ReportStockHistory, from, to)
		if err != nil {
			return total, err
		}

		rows, stats, err := report.DecodeStockAge(artifact, period, s.log)
		if err != nil {
			return total, err
		}
		total.Skipped += stats.Skipped

		rep, err := store.Write(ctx, s.writer, store.StockAge, rows)
		total.Rows += rep.Written
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// runAnalyticsReport drives one CSV analytics export end to end and returns
// the ZIP artifact. The job id is generated locally and doubles as the
// download id.
func (s *Service) runAnalyticsReport(ctx context.Context, t model.Tenant, kind, reportType string, from, to time.Time) ([]byte, error) {
	job := report.NewJob(kind)
	s.log.Info("generating analytics report",
		zap.String("kind", kind),
		zap.Int64("tenant", t.ID),
		zap.String("job_id", job.ID))

	return s.runner.Run(ctx, job, report.Phases{
		Submit: func(ctx context.Context) (string, error) {
			if err := s.api.GenerateAnalyticsReport(ctx, t.Token, job.ID, reportType, from, to); err != nil {
				return "", err
			}
			return job.ID, nil
		},
		Fetch: func(ctx context.Context, remoteID string) (report.PollOutcome, error) {
			resp, err := s.api.FetchAnalyticsReport(ctx, t.Token, remoteID)
			if err != nil {
				return report.PollOutcome{}, err
			}
			return analyticsOutcome(resp), nil
		},
	})
}

// analyticsOutcome reads the download body. ZIP magic bytes mean the artifact
// is ready; the invalid-id phrase means the id has not propagated yet; any
// other JSON or text body means generation is still running.
func analyticsOutcome(resp *wbapi.Response) report.PollOutcome {
	if resp.NotFound {
		return report.PollOutcome{}
	}
	body := resp.Body
	if len(body) >= 2 && body[0] == 'P' && body[1] == 'K' {
		return report.PollOutcome{Ready: true, Artifact: body}
	}
	if bytes.Contains(body, []byte(invalidIDMarker)) {
		return report.PollOutcome{InvalidID: true}
	}
	return report.PollOutcome{}
}
