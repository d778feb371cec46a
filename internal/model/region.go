package model

import "time"

// RegionSale is one per-day per-region sales line, keyed by
// (sale_date, nmid, article, city_name, region_name).
type RegionSale struct {
	TenantID            int64     `db:"tenant_id"`
	SaleDate            time.Time `db:"sale_date"`
	NmID                int64     `db:"nmid"`
	CityName            string    `db:"city_name"`
	CountryName         string    `db:"country_name"`
	FoName              string    `db:"fo_name"`
	RegionName          string    `db:"region_name"`
	Article             string    `db:"article"`
	SaleInvoiceCost     float64   `db:"sale_invoice_cost"`
	SaleInvoiceCostPerc float64   `db:"sale_invoice_cost_perc"`
	SaleItemInvoiceQty  int       `db:"sale_item_invoice_qty"`
}
