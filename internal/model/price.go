package model

import "time"

// Price is the current pricing state of one card, keyed by (tenant_id, nmid).
type Price struct {
	TenantID          int64     `db:"tenant_id"`
	NmID              int64     `db:"nmid"`
	VendorCode        string    `db:"vendor_code"`
	Sizes             string    `db:"sizes"` // raw JSON from the provider
	Discount          int       `db:"discount"`
	ClubDiscount      int       `db:"club_discount"`
	EditableSizePrice bool      `db:"editable_size_price"`
	UpdatedAt         time.Time `db:"updated_at"`
}
