package wbapi

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginateWalksToLastPage(t *testing.T) {
	pages := []Page[int]{
		{Items: []int{1, 2, 3}, Next: Cursor{UpdatedAt: "a", LastID: 3}, Total: 3},
		{Items: []int{4, 5, 6}, Next: Cursor{UpdatedAt: "b", LastID: 6}, Total: 3},
		{Items: []int{7}, Next: Cursor{UpdatedAt: "c", LastID: 7}, Total: 1},
	}
	var fetched []Cursor
	var got []int

	final, err := Paginate(context.Background(), 3, Cursor{},
		func(_ context.Context, cur Cursor) (Page[int], error) {
			fetched = append(fetched, cur)
			return pages[len(fetched)-1], nil
		},
		func(items []int) error {
			got = append(got, items...)
			return nil
		},
	)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, got)
	assert.Equal(t, Cursor{UpdatedAt: "c", LastID: 7}, final, "final cursor is the watermark")
	require.Len(t, fetched, 3)
	assert.Equal(t, Cursor{UpdatedAt: "a", LastID: 3}, fetched[1], "second fetch resumes from first page cursor")
}

func TestPaginateEmptyFirstPage(t *testing.T) {
	calls := 0
	final, err := Paginate(context.Background(), 100, Cursor{UpdatedAt: "w"},
		func(_ context.Context, cur Cursor) (Page[int], error) {
			calls++
			return Page[int]{}, nil
		},
		func([]int) error {
			t.Fatal("consume must not run for an empty result")
			return nil
		},
	)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, Cursor{UpdatedAt: "w"}, final, "start cursor survives an empty run")
}

func TestPaginateStopsOnItemlessPage(t *testing.T) {
	calls := 0
	final, err := Paginate(context.Background(), 100, Cursor{UpdatedAt: "w"},
		func(_ context.Context, cur Cursor) (Page[int], error) {
			calls++
			// inconsistent provider response: a count but no rows
			return Page[int]{Total: 100}, nil
		},
		func([]int) error {
			t.Fatal("consume must not run for an item-less page")
			return nil
		},
	)

	require.NoError(t, err)
	assert.Equal(t, 1, calls, "a page that cannot advance the cursor must not be refetched")
	assert.Equal(t, Cursor{UpdatedAt: "w"}, final)
}

func TestPaginateStopsOnFetchError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0

	_, err := Paginate(context.Background(), 2, Cursor{},
		func(_ context.Context, cur Cursor) (Page[int], error) {
			calls++
			if calls == 2 {
				return Page[int]{}, boom
			}
			return Page[int]{Items: []int{1, 2}, Next: Cursor{LastID: 2}, Total: 2}, nil
		},
		func([]int) error { return nil },
	)

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestPaginateConsumeErrorKeepsCursor(t *testing.T) {
	boom := errors.New("sink full")

	cur, err := Paginate(context.Background(), 2, Cursor{UpdatedAt: "start"},
		func(_ context.Context, c Cursor) (Page[int], error) {
			return Page[int]{Items: []int{1, 2}, Next: Cursor{LastID: 2}, Total: 2}, nil
		},
		func([]int) error { return boom },
	)

	require.ErrorIs(t, err, boom)
	assert.Equal(t, Cursor{UpdatedAt: "start"}, cur, "failed page is not acknowledged")
}
