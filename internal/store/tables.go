package store

import (
	"fmt"
	"strings"
)

// TableSpec describes one upsert target: its columns in insert order and the
// subset forming the natural key. The key columns must be covered by a unique
// index so ON DUPLICATE KEY UPDATE converges on the same row.
type TableSpec struct {
	Name    string
	Columns []string
	Key     []string
}

// UpsertSQL renders a named-parameter insert that updates every non-key
// column on conflict. Replays of the same payload are therefore idempotent.
func (t TableSpec) UpsertSQL() string {
	cols := strings.Join(t.Columns, ", ")
	params := ":" + strings.Join(t.Columns, ", :")

	key := make(map[string]bool, len(t.Key))
	for _, k := range t.Key {
		key[k] = true
	}
	var updates []string
	for _, c := range t.Columns {
		if key[c] {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = VALUES(%s)", c, c))
	}
	if len(updates) == 0 {
		// all-key tables still need a no-op assignment for valid syntax
		k := t.Key[0]
		updates = append(updates, fmt.Sprintf("%s = %s", k, k))
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON DUPLICATE KEY UPDATE %s",
		t.Name, cols, params, strings.Join(updates, ", "),
	)
}

// Upsert targets, one per synced dataset. Column lists mirror the db tags of
// the corresponding model structs.
var (
	Stocks = TableSpec{
		Name: "stocks",
		Columns: []string{
			"tenant_id", "last_change_date", "warehouse_name", "supplier_article",
			"nmid", "barcode", "quantity", "in_way_to_client", "in_way_from_client",
			"quantity_full", "category", "tech_size", "is_supply", "is_realization",
			"sc_code", "added_at",
		},
		Key: []string{"tenant_id", "nmid", "supplier_article", "warehouse_name"},
	}

	StockAge = TableSpec{
		Name:    "stock_age",
		Columns: []string{"nmid", "warehouse_name", "period_days", "days_in_stock"},
		Key:     []string{"nmid", "warehouse_name", "period_days"},
	}

	Orders = TableSpec{
		Name: "orders",
		Columns: []string{
			"tenant_id", "date", "last_change_date", "warehouse_name", "warehouse_type",
			"country_name", "oblast_okrug_name", "region_name", "supplier_article",
			"nmid", "barcode", "category", "subject", "brand", "tech_size", "income_id",
			"is_supply", "is_realization", "total_price", "discount_percent", "spp",
			"finished_price", "price_with_disc", "is_cancel", "cancel_date", "sticker",
			"g_number", "srid",
		},
		Key: []string{"tenant_id", "nmid", "srid"},
	}

	Supplies = TableSpec{
		Name: "supplies",
		Columns: []string{
			"nmid", "income_id", "number", "date", "last_change_date",
			"supplier_article", "tech_size", "barcode", "quantity", "total_price",
			"date_close", "warehouse_name", "status",
		},
		Key: []string{"nmid", "income_id"},
	}

	Cards = TableSpec{
		Name: "cards",
		Columns: []string{
			"tenant_id", "nmid", "imtid", "nm_uuid", "subject_id", "subject_name",
			"vendor_code", "brand", "title", "created_at", "updated_at", "added_at",
		},
		Key: []string{"tenant_id", "nmid"},
	}

	CardStats = TableSpec{
		Name: "card_stats",
		Columns: []string{
			"nmid", "stat_date", "open_card_count", "add_to_cart_count",
			"orders_count", "orders_sum_rub", "buyouts_count", "buyouts_sum_rub",
			"cancel_count", "cancel_sum_rub", "add_to_cart_conversion",
			"cart_to_order_conversion", "buyout_percent",
		},
		Key: []string{"nmid", "stat_date"},
	}

	Prices = TableSpec{
		Name: "prices",
		Columns: []string{
			"tenant_id", "nmid", "vendor_code", "sizes", "discount",
			"club_discount", "editable_size_price", "updated_at",
		},
		Key: []string{"tenant_id", "nmid"},
	}

	FinRows = TableSpec{
		Name: "fin_rows",
		Columns: []string{
			"tenant_id", "rrd_id", "rr_date", "nmid", "order_date", "sale_date",
			"shk_id", "ts_name", "supplier_oper_name", "retail_price",
			"retail_amount", "ppvz_for_pay", "delivery_rub", "storage_fee",
			"deduction", "acceptance",
		},
		Key: []string{"rrd_id"},
	}

	StorageRows = TableSpec{
		Name: "storage_rows",
		Columns: []string{
			"tenant_id", "report_date", "warehouse", "warehouse_coef", "gi_id",
			"chrt_id", "size", "barcode", "subject", "brand", "vendor_code",
			"nmid", "volume", "calc_type", "warehouse_price", "barcodes_count",
			"pallet_count",
		},
		Key: []string{"report_date", "nmid", "calc_type", "size"},
	}

	Adverts = TableSpec{
		Name:    "adverts",
		Columns: []string{"tenant_id", "advert_id", "status", "type", "change_time"},
		Key:     []string{"advert_id"},
	}

	AdvertStats = TableSpec{
		Name: "advert_stats",
		Columns: []string{
			"advert_id", "stat_date", "app_type", "nmid", "orders", "atbs",
			"canceled", "clicks", "cpc", "cr", "ctr", "shks", "sum_cost",
			"sum_price", "views",
		},
		Key: []string{"nmid", "stat_date", "app_type", "advert_id"},
	}

	RegionSales = TableSpec{
		Name: "region_sales",
		Columns: []string{
			"tenant_id", "sale_date", "nmid", "city_name", "country_name",
			"fo_name", "region_name", "article", "sale_invoice_cost",
			"sale_invoice_cost_perc", "sale_item_invoice_qty",
		},
		Key: []string{"sale_date", "nmid", "article", "city_name", "region_name"},
	}
)
