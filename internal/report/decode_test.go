package report

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func zipArtifact(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := zw.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestForEachRowResolvesColumnsByName(t *testing.T) {
	artifact := zipArtifact(t, map[string]string{
		"report.csv": "b,a\n2,1\n20,10\n",
	})

	var as, bs []int
	stats, err := ForEachRow(artifact, zap.NewNop(), func(r Row) error {
		a, err := r.Int("a")
		if err != nil {
			return err
		}
		b, err := r.Int("b")
		if err != nil {
			return err
		}
		as = append(as, a)
		bs = append(bs, b)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 10}, as, "columns found by header name, not position")
	assert.Equal(t, []int{2, 20}, bs)
	assert.Equal(t, Stats{Parsed: 2}, stats)
}

func TestForEachRowSkipsBadRows(t *testing.T) {
	artifact := zipArtifact(t, map[string]string{
		"report.csv": "n\n1\nnot-a-number\n3\n",
	})

	var got []int
	stats, err := ForEachRow(artifact, zap.NewNop(), func(r Row) error {
		n, err := r.Int("n")
		if err != nil {
			return err
		}
		got = append(got, n)
		return nil
	})

	require.NoError(t, err, "bad rows are skipped, never fatal")
	assert.Equal(t, []int{1, 3}, got)
	assert.Equal(t, Stats{Parsed: 2, Skipped: 1}, stats)
}

func TestForEachRowEmptyReport(t *testing.T) {
	artifact := zipArtifact(t, map[string]string{
		"report.csv": "a,b\n",
	})

	stats, err := ForEachRow(artifact, zap.NewNop(), func(Row) error {
		t.Fatal("no data rows expected")
		return nil
	})

	require.NoError(t, err, "a header-only report is valid")
	assert.Equal(t, Stats{}, stats)
}

func TestForEachRowRejectsGarbage(t *testing.T) {
	_, err := ForEachRow([]byte("this is not a zip"), zap.NewNop(), func(Row) error { return nil })
	require.ErrorIs(t, err, ErrBadArchive)
}

func TestDecodeCardStats(t *testing.T) {
	artifact := zipArtifact(t, map[string]string{
		"stats.csv": "nmID,dt,openCardCount,addToCartCount,ordersCount,ordersSumRub,buyoutsCount,buyoutsSumRub,cancelCount,cancelSumRub,addToCartConversion,cartToOrderConversion,buyoutPercent\n" +
			"101,2026-08-30,50,10,4,4000,3,3000,1,1000,20,40,75\n" +
			"102,bad-date,1,1,1,1,1,1,1,1,1,1,1\n",
	})

	rows, stats, err := DecodeCardStats(artifact, zap.NewNop())

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(101), rows[0].NmID)
	assert.Equal(t, "2026-08-30", rows[0].StatDate.Format("2006-01-02"))
	assert.Equal(t, 50, rows[0].OpenCardCount)
	assert.Equal(t, 75, rows[0].BuyoutPercent)
	assert.Equal(t, 1, stats.Skipped)
}

func TestDecodeStockAge(t *testing.T) {
	artifact := zipArtifact(t, map[string]string{
		"history.csv": "NmID,OfficeName,OfficeMissingTime\n" +
			"201,Коледино,24\n" + // absent one day of seven
			"202,Виртуальный Тула,-1\n" + // never-present marker
			"203,,5\n", // aggregate row, no warehouse
	})

	rows, stats, err := DecodeStockAge(artifact, 7, zap.NewNop())

	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, int64(201), rows[0].NmID)
	assert.Equal(t, "Коледино", rows[0].WarehouseName)
	assert.Equal(t, 7, rows[0].PeriodDays)
	assert.Equal(t, 6, rows[0].DaysInStock)

	assert.Equal(t, "Тула", rows[1].WarehouseName, "virtual prefix stripped")
	assert.Equal(t, 0, rows[1].DaysInStock)

	assert.Equal(t, 1, stats.Skipped)
}
