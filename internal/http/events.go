package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
)

type eventRow struct {
	At         time.Time `db:"at" json:"at"`
	TenantID   int64     `db:"tenant_id" json:"tenant_id"`
	Kind       string    `db:"kind" json:"kind"`
	Outcome    string    `db:"outcome" json:"outcome"`
	Rows       int       `db:"rows" json:"rows"`
	Skipped    int       `db:"skipped" json:"skipped"`
	DurationMs int64     `db:"duration_ms" json:"duration_ms"`
	Error      string    `db:"error" json:"error,omitempty"`
}

// listEventsHandler returns the most recent sync events, newest first.
// Optional query params: limit (default 100, max 1000), kind.
func listEventsHandler(ch *sqlx.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := 100
		if raw := c.QueryParam("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
			}
			if n > 1000 {
				n = 1000
			}
			limit = n
		}

		q := `
			SELECT at, tenant_id, kind, outcome, rows, skipped, duration_ms, error
			FROM sync_events
		`
		args := []any{}
		if kind := c.QueryParam("kind"); kind != "" {
			q += " WHERE kind = ?"
			args = append(args, kind)
		}
		q += " ORDER BY at DESC LIMIT ?"
		args = append(args, limit)

		var rows []eventRow
		if err := ch.SelectContext(c.Request().Context(), &rows, q, args...); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, rows)
	}
}
