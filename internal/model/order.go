package model

import "time"

// Order is one marketplace order line, keyed by (tenant_id, nmid, srid).
type Order struct {
	TenantID        int64      `db:"tenant_id"`
	Date            time.Time  `db:"date"`
	LastChangeDate  time.Time  `db:"last_change_date"`
	WarehouseName   string     `db:"warehouse_name"`
	WarehouseType   string     `db:"warehouse_type"`
	CountryName     string     `db:"country_name"`
	OblastOkrugName string     `db:"oblast_okrug_name"`
	RegionName      string     `db:"region_name"`
	SupplierArticle string     `db:"supplier_article"`
	NmID            int64      `db:"nmid"`
	Barcode         string     `db:"barcode"`
	Category        string     `db:"category"`
	Subject         string     `db:"subject"`
	Brand           string     `db:"brand"`
	TechSize        string     `db:"tech_size"`
	IncomeID        int64      `db:"income_id"`
	IsSupply        bool       `db:"is_supply"`
	IsRealization   bool       `db:"is_realization"`
	TotalPrice      float64    `db:"total_price"`
	DiscountPercent int        `db:"discount_percent"`
	Spp             float64    `db:"spp"`
	FinishedPrice   float64    `db:"finished_price"`
	PriceWithDisc   float64    `db:"price_with_disc"`
	IsCancel        bool       `db:"is_cancel"`
	CancelDate      *time.Time `db:"cancel_date"`
	Sticker         string     `db:"sticker"`
	GNumber         string     `db:"g_number"`
	Srid            string     `db:"srid"`
}
