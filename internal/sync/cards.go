package sync

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sellerops/wbsync/internal/model"
	"github.com/sellerops/wbsync/internal/store"
	"github.com/sellerops/wbsync/internal/wbapi"
)

const (
	cardsPageSize   = 100
	finReportPeriod = 14 // days
	finPageSize     = 100000
)

// SyncCards walks the card list from the saved watermark to the end and
// upserts every page. The watermark advances only after all fetched pages
// landed, so an interrupted run re-reads rather than skips.
func (s *Service) SyncCards(ctx context.Context, t model.Tenant) (Result, error) {
	start, err := s.cursors.Load(ctx, t.ID, "cards")
	if err != nil {
		return Result{}, err
	}
	started := time.Now()

	var rows []model.Card
	next, err := wbapi.Paginate(ctx, cardsPageSize, start,
		func(ctx context.Context, cur wbapi.Cursor) (wbapi.Page[wbapi.CardItem], error) {
			return s.api.CardsPage(ctx, t.Token, cur, cardsPageSize)
		},
		func(items []wbapi.CardItem) error {
			for _, it := range items {
				rows = append(rows, model.Card{
					TenantID:    t.ID,
					NmID:        it.NmID,
					ImtID:       it.ImtID,
					NmUUID:      it.NmUUID,
					SubjectID:   it.SubjectID,
					SubjectName: it.SubjectName,
					VendorCode:  it.VendorCode,
					Brand:       it.Brand,
					Title:       it.Title,
					CreatedAt:   parseTime(it.CreatedAt),
					UpdatedAt:   parseTime(it.UpdatedAt),
					AddedAt:     started,
				})
			}
			return nil
		},
	)
	if err != nil {
		return Result{}, err
	}

	rep, err := store.Write(ctx, s.writer, store.Cards, rows)
	if err != nil {
		return Result{Rows: rep.Written}, err
	}
	if err := s.cursors.Save(ctx, t.ID, "cards", next); err != nil {
		s.log.Warn("save cards watermark failed", zap.Int64("tenant", t.ID), zap.Error(err))
	}
	return Result{Rows: rep.Written}, nil
}

// SyncFinReport pulls the realization report for the last two weeks, page by
// page
// on the rrd_id watermark. Each run restarts the watermark at zero; rows are
// keyed by rrd_id so overlap with previous runs upserts in place.
func (s *Service) SyncFinReport(ctx context.Context, t model.Tenant) (Result, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -finReportPeriod)

	var rows []model.FinRow
	_, err := wbapi.Paginate(ctx, finPageSize, wbapi.Cursor{},
		func(ctx context.Context, cur wbapi.Cursor) (wbapi.Page[wbapi.FinRow], error) {
			items, err := s.api.FinReportPage(ctx, t.Token, from, to, cur.LastID)
			if err != nil {
				return wbapi.Page[wbapi.FinRow]{}, err
			}
			page := wbapi.Page[wbapi.FinRow]{Items: items, Total: len(items)}
			if len(items) > 0 {
				page.Next = wbapi.Cursor{LastID: items[len(items)-1].RrdID}
			}
			return page, nil
		},
		func(items []wbapi.FinRow) error {
			for _, it := range items {
				rows = append(rows, model.FinRow{
					TenantID:         t.ID,
					RrdID:            it.RrdID,
					RrDate:           parseTime(it.RrDt),
					NmID:             it.NmID,
					OrderDate:        parseTime(it.OrderDt),
					SaleDate:         parseTime(it.SaleDt),
					ShkID:            it.ShkID,
					TsName:           it.TsName,
					SupplierOperName: it.SupplierOperName,
					RetailPrice:      it.RetailPrice,
					RetailAmount:     it.RetailAmount,
					PpvzForPay:       it.PpvzForPay,
					DeliveryRub:      it.DeliveryRub,
					StorageFee:       it.StorageFee,
					Deduction:        it.Deduction,
					Acceptance:       it.Acceptance,
				})
			}
			return nil
		},
	)
	if err != nil {
		return Result{}, err
	}

	rep, err := store.Write(ctx, s.writer, store.FinRows, rows)
	return Result{Rows: rep.Written}, err
}
