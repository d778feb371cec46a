package wbapi

import (
	"context"
)

// Cursor is the resumption point for cursor-paginated list endpoints: the
// provider's watermark timestamp plus the last-seen id. The zero value means
// "from the beginning".
type Cursor struct {
	UpdatedAt string `json:"updated_at"`
	LastID    int64  `json:"last_id"`
}

// Page is one fetched slice of a paginated result set. Total is the
// provider-reported count for this page; a value below the page size marks
// the last page.
type Page[T any] struct {
	Items []T
	Next  Cursor
	Total int
}

// Paginate drives a cursor-based list endpoint to exhaustion, feeding each
// page to consume in cursor order. It returns the cursor after the last
// consumed page so the caller can persist it as a watermark.
//
// A page without items terminates cleanly no matter what Total claims; the
// cursor only advances on consumed items, so looping on an item-less page
// would refetch the same cursor forever. The sequence is not restartable
// mid-stream; resuming requires a fresh call with a saved cursor.
func Paginate[T any](
	ctx context.Context,
	pageSize int,
	start Cursor,
	fetch func(context.Context, Cursor) (Page[T], error),
	consume func([]T) error,
) (Cursor, error) {
	cur := start
	for {
		if err := ctx.Err(); err != nil {
			return cur, err
		}

		page, err := fetch(ctx, cur)
		if err != nil {
			return cur, err
		}
		if len(page.Items) == 0 {
			return cur, nil
		}

		if err := consume(page.Items); err != nil {
			return cur, err
		}
		cur = page.Next

		if page.Total < pageSize {
			return cur, nil
		}
	}
}
