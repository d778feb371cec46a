package model

import "time"

// StorageRow is one paid-storage report line, keyed by
// (report_date, nmid, calc_type, size).
type StorageRow struct {
	TenantID       int64     `db:"tenant_id"`
	ReportDate     time.Time `db:"report_date"`
	Warehouse      string    `db:"warehouse"`
	WarehouseCoef  float64   `db:"warehouse_coef"`
	GiID           int64     `db:"gi_id"`
	ChrtID         int64     `db:"chrt_id"`
	Size           string    `db:"size"`
	Barcode        string    `db:"barcode"`
	Subject        string    `db:"subject"`
	Brand          string    `db:"brand"`
	VendorCode     string    `db:"vendor_code"`
	NmID           int64     `db:"nmid"`
	Volume         float64   `db:"volume"`
	CalcType       string    `db:"calc_type"`
	WarehousePrice float64   `db:"warehouse_price"`
	BarcodesCount  int       `db:"barcodes_count"`
	PalletCount    float64   `db:"pallet_count"`
}
