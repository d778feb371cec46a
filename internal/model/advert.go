package model

import "time"

// Advert campaign statuses the stats sync cares about.
const (
	AdvertStatusFinished = 7
	AdvertStatusActive   = 9
	AdvertStatusPaused   = 11
)

// Advert is one advertising campaign, keyed by advert_id.
type Advert struct {
	TenantID   int64     `db:"tenant_id"`
	AdvertID   int64     `db:"advert_id"`
	Status     int       `db:"status"`
	Type       int       `db:"type"`
	ChangeTime time.Time `db:"change_time"`
}

// AdvertStat is one per-day per-placement advertising stat line, keyed by
// (nmid, stat_date, app_type, advert_id).
type AdvertStat struct {
	AdvertID int64     `db:"advert_id"`
	StatDate time.Time `db:"stat_date"`
	AppType  int       `db:"app_type"`
	NmID     int64     `db:"nmid"`
	Orders   int       `db:"orders"`
	Atbs     int       `db:"atbs"`
	Canceled int       `db:"canceled"`
	Clicks   int       `db:"clicks"`
	Cpc      float64   `db:"cpc"`
	Cr       float64   `db:"cr"`
	Ctr      float64   `db:"ctr"`
	Shks     int       `db:"shks"`
	SumCost  float64   `db:"sum_cost"`
	SumPrice float64   `db:"sum_price"`
	Views    int       `db:"views"`
}
