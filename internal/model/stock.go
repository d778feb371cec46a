package model

import (
	"strings"
	"time"
)

// Stock is one warehouse stock line, keyed by
// (tenant_id, nmid, supplier_article, warehouse_name).
type Stock struct {
	TenantID        int64     `db:"tenant_id"`
	LastChangeDate  time.Time `db:"last_change_date"`
	WarehouseName   string    `db:"warehouse_name"`
	SupplierArticle string    `db:"supplier_article"`
	NmID            int64     `db:"nmid"`
	Barcode         string    `db:"barcode"`
	Quantity        int       `db:"quantity"`
	InWayToClient   int       `db:"in_way_to_client"`
	InWayFromClient int       `db:"in_way_from_client"`
	QuantityFull    int       `db:"quantity_full"`
	Category        string    `db:"category"`
	TechSize        string    `db:"tech_size"`
	IsSupply        bool      `db:"is_supply"`
	IsRealization   bool      `db:"is_realization"`
	SCCode          string    `db:"sc_code"`
	AddedAt         time.Time `db:"added_at"`
}

// warehouseReplacer folds the name variants the provider uses across feeds
// into one spelling. Replacements never produce text another pair matches,
// so a single pass is equivalent to chaining them.
var warehouseReplacer = strings.NewReplacer(
	"Виртуальный ", "",
	"СЦ ", "",
	" WB", "",
	", Молодежненское", " (Молодежненское)",
	" Сталелитейная", "",
)

// NormalizeWarehouse strips the decorations the provider sometimes adds so
// warehouse names match across the stock feed and the history reports.
func NormalizeWarehouse(s string) string {
	return warehouseReplacer.Replace(s)
}

// StockAge is how many of the last period_days days an item spent in stock at
// one warehouse, decoded from the stock-history CSV report.
type StockAge struct {
	NmID          int64  `db:"nmid"`
	WarehouseName string `db:"warehouse_name"`
	PeriodDays    int    `db:"period_days"`
	DaysInStock   int    `db:"days_in_stock"`
}
