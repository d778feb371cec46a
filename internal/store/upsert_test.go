package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sellerops/wbsync/internal/model"
)

func mockWriter(t *testing.T, chunkSize int) (*Writer, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	dbx := sqlx.NewDb(mockDB, "mysql")
	return NewWriter(dbx, chunkSize, zap.NewNop()), mock
}

func ageRows(n int) []model.StockAge {
	rows := make([]model.StockAge, n)
	for i := range rows {
		rows[i] = model.StockAge{NmID: int64(i + 1), WarehouseName: "W", PeriodDays: 7, DaysInStock: i}
	}
	return rows
}

func TestWriteCommitsPerChunk(t *testing.T) {
	w, mock := mockWriter(t, 2)

	for i := 0; i < 3; i++ {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO stock_age").WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()
	}

	rep, err := Write(context.Background(), w, StockAge, ageRows(5))

	require.NoError(t, err)
	assert.Equal(t, 5, rep.Written)
	assert.Empty(t, rep.Failed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteIsolatesFailedChunk(t *testing.T) {
	w, mock := mockWriter(t, 2)
	boom := errors.New("deadlock")

	// chunk 1 commits
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO stock_age").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()
	// chunk 2 fails and rolls back
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO stock_age").WillReturnError(boom)
	mock.ExpectRollback()
	// chunk 3 still runs and commits
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO stock_age").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rep, err := Write(context.Background(), w, StockAge, ageRows(5))

	require.Error(t, err)
	assert.Equal(t, 3, rep.Written, "chunks around the failure still land")
	require.Len(t, rep.Failed, 1)
	assert.Equal(t, 2, rep.Failed[0].Start)
	assert.Equal(t, 4, rep.Failed[0].End)
	assert.ErrorIs(t, rep.Failed[0].Err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteEmptyInput(t *testing.T) {
	w, mock := mockWriter(t, 2)

	rep, err := Write(context.Background(), w, StockAge, []model.StockAge(nil))

	require.NoError(t, err)
	assert.Zero(t, rep.Total)
	require.NoError(t, mock.ExpectationsWereMet(), "no statements for an empty slice")
}

func TestWriteReportErr(t *testing.T) {
	rep := WriteReport{Table: "stocks", Total: 10, Written: 10}
	assert.NoError(t, rep.Err())

	rep = WriteReport{
		Table:   "stocks",
		Total:   10,
		Written: 8,
		Failed:  []ChunkFailure{{Start: 4, End: 6, Err: errors.New("broken pipe")}},
	}
	err := rep.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stocks")
	assert.Contains(t, err.Error(), "[4:6]")
}
