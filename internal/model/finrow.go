package model

import "time"

// FinRow is one realization-report line, keyed by rrd_id alone (the provider
// guarantees its uniqueness across tenants).
type FinRow struct {
	TenantID         int64     `db:"tenant_id"`
	RrdID            int64     `db:"rrd_id"`
	RrDate           time.Time `db:"rr_date"`
	NmID             int64     `db:"nmid"`
	OrderDate        time.Time `db:"order_date"`
	SaleDate         time.Time `db:"sale_date"`
	ShkID            int64     `db:"shk_id"`
	TsName           string    `db:"ts_name"`
	SupplierOperName string    `db:"supplier_oper_name"`
	RetailPrice      float64   `db:"retail_price"`
	RetailAmount     float64   `db:"retail_amount"`
	PpvzForPay       float64   `db:"ppvz_for_pay"`
	DeliveryRub      float64   `db:"delivery_rub"`
	StorageFee       float64   `db:"storage_fee"`
	Deduction        float64   `db:"deduction"`
	Acceptance       float64   `db:"acceptance"`
}
