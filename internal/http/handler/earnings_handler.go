package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ecaro09/tasko-sub000/internal/domain"
	"github.com/ecaro09/tasko-sub000/internal/store"
)

// EarningsHandler exposes admin reporting over the ledger and the rollup
// summaries.
type EarningsHandler struct {
	store store.Store
}

func NewEarningsHandler(st store.Store) *EarningsHandler {
	return &EarningsHandler{store: st}
}

// Ledger lists entries in a [from, to) range, default the last 24 hours.
func (h *EarningsHandler) Ledger(c echo.Context) error {
	to := time.Now()
	from := to.AddDate(0, 0, -1)
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be RFC3339"})
		}
		from = t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be RFC3339"})
		}
		to = t
	}

	entries, err := h.store.ListEntriesInRange(c.Request().Context(), from, to)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"entries": entries, "from": from, "to": to})
}

// Summary returns one earnings summary, e.g. ?type=daily&period=2026-08-30.
func (h *EarningsHandler) Summary(c echo.Context) error {
	typ := c.QueryParam("type")
	period := c.QueryParam("period")
	if (typ != string(domain.PeriodDaily) && typ != string(domain.PeriodMonthly)) || period == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type (daily|monthly) and period are required"})
	}
	s, err := h.store.GetSummary(c.Request().Context(), domain.SummaryID(domain.SummaryPeriod(typ), period))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, s)
}
