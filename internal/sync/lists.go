package sync

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/sellerops/wbsync/internal/model"
	"github.com/sellerops/wbsync/internal/store"
	"github.com/sellerops/wbsync/internal/wbapi"
)

const (
	suppliesDaysBack = 30
	// supplyAccepted is the only income status that counts as stock actually
	// taken in by the warehouse.
	supplyAccepted = "Принято"
)

// SyncStocks pulls the warehouse stock feed. The first run for a tenant looks
// back the configured number of days; later runs resume from the watermark
// saved after the previous success.
func (s *Service) SyncStocks(ctx context.Context, t model.Tenant) (Result, error) {
	cur, err := s.cursors.Load(ctx, t.ID, "stocks")
	if err != nil {
		return Result{}, err
	}
	from := time.Now().AddDate(0, 0, -s.cfg.StocksFirstRun)
	if cur.UpdatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, cur.UpdatedAt); err == nil {
			from = ts
		}
	}
	started := time.Now()

	items, err := s.api.Stocks(ctx, t.Token, from)
	if err != nil {
		return Result{}, err
	}

	rows := make([]model.Stock, 0, len(items))
	for _, it := range items {
		rows = append(rows, model.Stock{
			TenantID:        t.ID,
			LastChangeDate:  parseTime(it.LastChangeDate),
			WarehouseName:   model.NormalizeWarehouse(it.WarehouseName),
			SupplierArticle: it.SupplierArticle,
			NmID:            it.NmID,
			Barcode:         it.Barcode,
			Quantity:        it.Quantity,
			InWayToClient:   it.InWayToClient,
			InWayFromClient: it.InWayFromClient,
			QuantityFull:    it.QuantityFull,
			Category:        it.Category,
			TechSize:        it.TechSize,
			IsSupply:        it.IsSupply,
			IsRealization:   it.IsRealization,
			SCCode:          it.SCCode,
			AddedAt:         started,
		})
	}

	rep, err := store.Write(ctx, s.writer, store.Stocks, rows)
	if err != nil {
		return Result{Rows: rep.Written}, err
	}
	if err := s.cursors.Save(ctx, t.ID, "stocks", wbapi.Cursor{UpdatedAt: started.Format(time.RFC3339)}); err != nil {
		s.log.Warn("save stocks watermark failed", zap.Int64("tenant", t.ID), zap.Error(err))
	}
	return Result{Rows: rep.Written}, nil
}

// SyncOrders pulls the order feed for the configured lookback window.
// Cancelled orders arrive as updated rows and overwrite in place.
func (s *Service) SyncOrders(ctx context.Context, t model.Tenant) (Result, error) {
	from := time.Now().AddDate(0, 0, -s.cfg.OrdersDaysBack)

	items, err := s.api.Orders(ctx, t.Token, from, 0)
	if err != nil {
		return Result{}, err
	}

	rows := make([]model.Order, 0, len(items))
	for _, it := range items {
		rows = append(rows, model.Order{
			TenantID:        t.ID,
			Date:            parseTime(it.Date),
			LastChangeDate:  parseTime(it.LastChangeDate),
			WarehouseName:   model.NormalizeWarehouse(it.WarehouseName),
			WarehouseType:   it.WarehouseType,
			CountryName:     it.CountryName,
			OblastOkrugName: it.OblastOkrugName,
			RegionName:      it.RegionName,
			SupplierArticle: it.SupplierArticle,
			NmID:            it.NmID,
			Barcode:         it.Barcode,
			Category:        it.Category,
			Subject:         it.Subject,
			Brand:           it.Brand,
			TechSize:        it.TechSize,
			IncomeID:        it.IncomeID,
			IsSupply:        it.IsSupply,
			IsRealization:   it.IsRealization,
			TotalPrice:      it.TotalPrice,
			DiscountPercent: it.DiscountPercent,
			Spp:             it.Spp,
			FinishedPrice:   it.FinishedPrice,
			PriceWithDisc:   it.PriceWithDisc,
			IsCancel:        it.IsCancel,
			CancelDate:      parseTimePtr(it.CancelDate),
			Sticker:         it.Sticker,
			GNumber:         it.GNumber,
			Srid:            it.Srid,
		})
	}

	rep, err := store.Write(ctx, s.writer, store.Orders, rows)
	return Result{Rows: rep.Written}, err
}

// SyncSupplies pulls accepted inbound deliveries for the last month.
func (s *Service) SyncSupplies(ctx context.Context, t model.Tenant) (Result, error) {
	from := time.Now().AddDate(0, 0, -suppliesDaysBack)

	items, err := s.api.Incomes(ctx, t.Token, from)
	if err != nil {
		return Result{}, err
	}

	rows := make([]model.Supply, 0, len(items))
	skipped := 0
	for _, it := range items {
		if it.Status != supplyAccepted {
			skipped++
			continue
		}
		rows = append(rows, model.Supply{
			NmID:            it.NmID,
			IncomeID:        it.IncomeID,
			Number:          it.Number,
			Date:            parseTime(it.Date),
			LastChangeDate:  parseTime(it.LastChangeDate),
			SupplierArticle: it.SupplierArticle,
			TechSize:        it.TechSize,
			Barcode:         it.Barcode,
			Quantity:        it.Quantity,
			TotalPrice:      it.TotalPrice,
			DateClose:       parseTimePtr(it.DateClose),
			WarehouseName:   it.WarehouseName,
			Status:          it.Status,
		})
	}

	rep, err := store.Write(ctx, s.writer, store.Supplies, rows)
	return Result{Rows: rep.Written, Skipped: skipped}, err
}

// SyncPrices snapshots the current price list. Size breakdowns are kept as
// raw JSON; nothing downstream needs them relational yet.
func (s *Service) SyncPrices(ctx context.Context, t model.Tenant) (Result, error) {
	items, err := s.api.GoodsPrices(ctx, t.Token, 1000)
	if err != nil {
		return Result{}, err
	}

	now := time.Now()
	rows := make([]model.Price, 0, len(items))
	skipped := 0
	for _, it := range items {
		sizes, err := json.Marshal(it.Sizes)
		if err != nil {
			skipped++
			continue
		}
		rows = append(rows, model.Price{
			TenantID:          t.ID,
			NmID:              it.NmID,
			VendorCode:        it.VendorCode,
			Sizes:             string(sizes),
			Discount:          it.Discount,
			ClubDiscount:      it.ClubDiscount,
			EditableSizePrice: it.EditableSizePrice,
			UpdatedAt:         now,
		})
	}

	rep, err := store.Write(ctx, s.writer, store.Prices, rows)
	return Result{Rows: rep.Written, Skipped: skipped}, err
}

const (
	regionSalesDaysBack     = 2
	regionSalesBackfillDays = 15
)

// regionSalesDays lists the days to request, newest first. The provider
// finalizes a day's figures overnight, so today is never in the list.
func regionSalesDays(now time.Time, firstRun bool) []time.Time {
	back := regionSalesDaysBack
	if firstRun {
		back = regionSalesBackfillDays
	}
	days := make([]time.Time, 0, back)
	for d := 1; d <= back; d++ {
		days = append(days, now.AddDate(0, 0, -d).Truncate(24*time.Hour))
	}
	return days
}

// SyncRegionSales pulls the per-region sales breakdown day by day. A tenant
// with no watermark yet gets a two-week backfill; after that each run covers
// the last two finalized days so a missed run still closes the gap.
func (s *Service) SyncRegionSales(ctx context.Context, t model.Tenant) (Result, error) {
	cur, err := s.cursors.Load(ctx, t.ID, "region-sales")
	if err != nil {
		return Result{}, err
	}
	days := regionSalesDays(time.Now(), cur.UpdatedAt == "")

	var total Result
	for _, day := range days {
		items, err := s.api.RegionSales(ctx, t.Token, day)
		if err != nil {
			return total, err
		}

		rows := make([]model.RegionSale, 0, len(items))
		for _, it := range items {
			rows = append(rows, model.RegionSale{
				TenantID:            t.ID,
				SaleDate:            day,
				NmID:                it.NmID,
				CityName:            it.CityName,
				CountryName:         it.CountryName,
				FoName:              it.FoName,
				RegionName:          it.RegionName,
				Article:             it.Article,
				SaleInvoiceCost:     it.SaleInvoiceCostPrice,
				SaleInvoiceCostPerc: it.SaleInvoiceCostPricePerc,
				SaleItemInvoiceQty:  it.SaleItemInvoiceQty,
			})
		}

		rep, err := store.Write(ctx, s.writer, store.RegionSales, rows)
		total.Rows += rep.Written
		if err != nil {
			return total, err
		}
	}

	if err := s.cursors.Save(ctx, t.ID, "region-sales", wbapi.Cursor{UpdatedAt: days[0].Format(time.RFC3339)}); err != nil {
		s.log.Warn("save region-sales watermark failed", zap.Int64("tenant", t.ID), zap.Error(err))
	}
	return total, nil
}
