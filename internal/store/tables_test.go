package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpsertSQLUpdatesOnlyNonKeyColumns(t *testing.T) {
	spec := TableSpec{
		Name:    "things",
		Columns: []string{"a", "b", "c"},
		Key:     []string{"a"},
	}

	q := spec.UpsertSQL()

	assert.Equal(t,
		"INSERT INTO things (a, b, c) VALUES (:a, :b, :c) "+
			"ON DUPLICATE KEY UPDATE b = VALUES(b), c = VALUES(c)",
		q)
}

func TestUpsertSQLAllKeyColumns(t *testing.T) {
	spec := TableSpec{
		Name:    "links",
		Columns: []string{"x", "y"},
		Key:     []string{"x", "y"},
	}

	q := spec.UpsertSQL()
	assert.Contains(t, q, "ON DUPLICATE KEY UPDATE x = x", "needs a no-op assignment to stay valid SQL")
}

func TestTableSpecsAreConsistent(t *testing.T) {
	specs := []TableSpec{
		Stocks, StockAge, Orders, Supplies, Cards, CardStats,
		Prices, FinRows, StorageRows, Adverts, AdvertStats, RegionSales,
	}

	for _, spec := range specs {
		t.Run(spec.Name, func(t *testing.T) {
			cols := map[string]bool{}
			for _, c := range spec.Columns {
				assert.False(t, cols[c], "duplicate column %q", c)
				cols[c] = true
			}
			for _, k := range spec.Key {
				assert.True(t, cols[k], "key column %q missing from columns", k)
			}
			q := spec.UpsertSQL()
			assert.True(t, strings.HasPrefix(q, "INSERT INTO "+spec.Name+" ("))
			assert.Contains(t, q, "ON DUPLICATE KEY UPDATE")
		})
	}
}
