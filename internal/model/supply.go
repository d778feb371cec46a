package model

import "time"

// Supply is one accepted inbound delivery line, keyed by (nmid, income_id).
type Supply struct {
	NmID            int64      `db:"nmid"`
	IncomeID        int64      `db:"income_id"`
	Number          string     `db:"number"`
	Date            time.Time  `db:"date"`
	LastChangeDate  time.Time  `db:"last_change_date"`
	SupplierArticle string     `db:"supplier_article"`
	TechSize        string     `db:"tech_size"`
	Barcode         string     `db:"barcode"`
	Quantity        int        `db:"quantity"`
	TotalPrice      float64    `db:"total_price"`
	DateClose       *time.Time `db:"date_close"`
	WarehouseName   string     `db:"warehouse_name"`
	Status          string     `db:"status"`
}
