package report

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sellerops/wbsync/internal/model"
)

// DecodeCardStats turns the analytics detail-history artifact into per-day
// funnel rows. Rows with a bad nm id or date are skipped.
func DecodeCardStats(artifact []byte, log *zap.Logger) ([]model.CardStat, Stats, error) {
	var out []model.CardStat
	stats, err := ForEachRow(artifact, log, func(r Row) error {
		nmid, err := r.Int("nmID")
		if err != nil {
			return err
		}
		dt, ok := r.Get("dt")
		if !ok {
			return fmt.Errorf("column %q missing", "dt")
		}
		statDate, err := time.Parse("2006-01-02", dt)
		if err != nil {
			return fmt.Errorf("parse dt %q: %w", dt, err)
		}

		row := model.CardStat{NmID: int64(nmid), StatDate: statDate}
		for _, f := range []struct {
			col string
			dst *int
		}{
			{"openCardCount", &row.OpenCardCount},
			{"addToCartCount", &row.AddToCartCount},
			{"ordersCount", &row.OrdersCount},
			{"ordersSumRub", &row.OrdersSumRub},
			{"buyoutsCount", &row.BuyoutsCount},
			{"buyoutsSumRub", &row.BuyoutsSumRub},
			{"cancelCount", &row.CancelCount},
			{"cancelSumRub", &row.CancelSumRub},
			{"addToCartConversion", &row.AddToCartConversion},
			{"cartToOrderConversion", &row.CartToOrderConversion},
			{"buyoutPercent", &row.BuyoutPercent},
		} {
			v, err := r.Int(f.col)
			if err != nil {
				return err
			}
			*f.dst = v
		}
		out = append(out, row)
		return nil
	})
	return out, stats, err
}

// DecodeStockAge turns the stock-history artifact for one lookback period
// into days-in-stock rows. OfficeMissingTime counts the hours an item was
// absent from the warehouse; negative values are provider markers meaning
// "never present", which decode to zero days. Rows without a warehouse name
// are aggregates and are dropped.
func DecodeStockAge(artifact []byte, periodDays int, log *zap.Logger) ([]model.StockAge, Stats, error) {
	var out []model.StockAge
	stats, err := ForEachRow(artifact, log, func(r Row) error {
		office, ok := r.Get("OfficeName")
		if !ok || office == "" {
			return fmt.Errorf("empty office name")
		}
		nmid, err := r.Int("NmID")
		if err != nil {
			return err
		}
		missing, err := r.Int("OfficeMissingTime")
		if err != nil {
			return err
		}
		days := 0
		if missing >= 0 {
			days = (periodDays*24 - missing) / 24
			if days < 0 {
				days = 0
			}
		}
		out = append(out, model.StockAge{
			NmID:          int64(nmid),
			WarehouseName: model.NormalizeWarehouse(office),
			PeriodDays:    periodDays,
			DaysInStock:   days,
		})
		return nil
	})
	return out, stats, err
}
