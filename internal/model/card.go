package model

import "time"

// Card is one product card, keyed by (tenant_id, nmid).
type Card struct {
	TenantID    int64     `db:"tenant_id"`
	NmID        int64     `db:"nmid"`
	ImtID       int64     `db:"imtid"`
	NmUUID      string    `db:"nm_uuid"`
	SubjectID   int64     `db:"subject_id"`
	SubjectName string    `db:"subject_name"`
	VendorCode  string    `db:"vendor_code"`
	Brand       string    `db:"brand"`
	Title       string    `db:"title"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	AddedAt     time.Time `db:"added_at"`
}

// CardStat is one per-day funnel row for a card, keyed by (nmid, stat_date).
type CardStat struct {
	NmID                  int64     `db:"nmid"`
	StatDate              time.Time `db:"stat_date"`
	OpenCardCount         int       `db:"open_card_count"`
	AddToCartCount        int       `db:"add_to_cart_count"`
	OrdersCount           int       `db:"orders_count"`
	OrdersSumRub          int       `db:"orders_sum_rub"`
	BuyoutsCount          int       `db:"buyouts_count"`
	BuyoutsSumRub         int       `db:"buyouts_sum_rub"`
	CancelCount           int       `db:"cancel_count"`
	CancelSumRub          int       `db:"cancel_sum_rub"`
	AddToCartConversion   int       `db:"add_to_cart_conversion"`
	CartToOrderConversion int       `db:"cart_to_order_conversion"`
	BuyoutPercent         int       `db:"buyout_percent"`
}
