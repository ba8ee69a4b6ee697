// Package calendar resolves trading-day questions against the exchange
// trade-date calendar and computes analysis timeframes.
package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/seenimoa/asharemcp/pkg/models"
)

const dateLayout = "2006-01-02"

// TradeDatesProvider supplies the trade-date calendar. The returned
// table has a calendar_date column and an is_trading_day column holding
// '1' for trading days and '0' otherwise.
type TradeDatesProvider interface {
	GetTradeDates(ctx context.Context, startDate, endDate string) (*models.Table, error)
}

// Resolver answers trading-day queries. It keeps no state beyond the
// provider; every call queries a fresh window.
type Resolver struct {
	provider TradeDatesProvider
}

// NewResolver creates a Resolver backed by the given provider.
func NewResolver(provider TradeDatesProvider) *Resolver {
	return &Resolver{provider: provider}
}

// tradingDays extracts the trading dates out of a trade-dates table.
func tradingDays(t *models.Table) []string {
	if t == nil {
		return nil
	}
	var days []string
	for i := range t.Rows {
		flag, _ := t.Cell(i, "is_trading_day").(string)
		day, _ := t.Cell(i, "calendar_date").(string)
		if flag == "1" && day != "" {
			days = append(days, day)
		}
	}
	return days
}

// LatestTradingDate returns the most recent trading date not after
// today. The lookup is bounded to the current month; if nothing is
// found, or the provider fails, today's date is returned. The method
// never errors.
func (r *Resolver) LatestTradingDate(ctx context.Context, today time.Time) string {
	todayStr := today.Format(dateLayout)
	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	end := time.Date(today.Year(), today.Month(), 28, 0, 0, 0, 0, today.Location())

	t, err := r.provider.GetTradeDates(ctx, start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return todayStr
	}

	latest := ""
	for _, day := range tradingDays(t) {
		if day <= todayStr && day > latest {
			latest = day
		}
	}
	if latest == "" {
		return todayStr
	}
	return latest
}

// IsTradingDay reports whether date (YYYY-MM-DD) is a trading day.
func (r *Resolver) IsTradingDay(ctx context.Context, date string) (bool, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return false, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}
	t, err := r.provider.GetTradeDates(ctx, date, date)
	if err != nil {
		return false, err
	}
	if t == nil || t.Empty() {
		return false, nil
	}
	flag, _ := t.Cell(0, "is_trading_day").(string)
	return flag == "1", nil
}

// PreviousTradingDay returns the latest trading day strictly before
// date, searching a 30-day window. When no trading day is found the
// input date is returned with found=false.
func (r *Resolver) PreviousTradingDay(ctx context.Context, date string) (string, bool, error) {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", false, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}
	start := d.AddDate(0, 0, -30).Format(dateLayout)

	t, err := r.provider.GetTradeDates(ctx, start, date)
	if err != nil {
		return "", false, err
	}

	best := ""
	for _, day := range tradingDays(t) {
		if day < date && day > best {
			best = day
		}
	}
	if best == "" {
		return date, false, nil
	}
	return best, true, nil
}

// NextTradingDay returns the earliest trading day strictly after date,
// searching a 30-day window. When no trading day is found the input
// date is returned with found=false.
func (r *Resolver) NextTradingDay(ctx context.Context, date string) (string, bool, error) {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", false, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}
	end := d.AddDate(0, 0, 30).Format(dateLayout)

	t, err := r.provider.GetTradeDates(ctx, date, end)
	if err != nil {
		return "", false, err
	}

	best := ""
	for _, day := range tradingDays(t) {
		if day > date && (best == "" || day < best) {
			best = day
		}
	}
	if best == "" {
		return date, false, nil
	}
	return best, true, nil
}

// Timeframe is an analysis window with a human-readable Chinese label.
type Timeframe struct {
	Start string // ISO start date (first of month)
	End   string // ISO end date (clamped to today)
	Label string // e.g. "2025年1月-3月"
}

// String renders the timeframe the way the tools report it.
func (tf Timeframe) String() string {
	return fmt.Sprintf("%s (ISO: %s to %s)", tf.Label, tf.Start, tf.End)
}

type yearMonth struct {
	year  int
	month int
}

func ym(year, month int) yearMonth {
	// normalize month overflow/underflow into the year
	for month > 12 {
		month -= 12
		year++
	}
	for month < 1 {
		month += 12
		year--
	}
	return yearMonth{year: year, month: month}
}

func daysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AnalysisTimeframe computes the window for a named analysis period
// relative to today. Supported periods are recent, quarter, half_year
// and year; anything else falls back to the previous month.
func AnalysisTimeframe(period string, today time.Time) Timeframe {
	year, month, day := today.Year(), int(today.Month()), today.Day()

	var start, middle yearMonth
	switch period {
	case "recent":
		if day < 15 {
			switch month {
			case 1:
				start = ym(year-1, 11)
				middle = ym(year-1, 12)
			case 2:
				start = ym(year, 1)
				middle = start
			default:
				start = ym(year, month-2)
				middle = ym(year, month-1)
			}
		} else {
			if month == 1 {
				start = ym(year-1, 12)
			} else {
				start = ym(year, month-1)
			}
			middle = start
		}
	case "quarter":
		start = ym(year, month-3)
		middle = start
	case "half_year":
		start = ym(year, month-6)
		middle = ym(start.year, start.month+3)
	case "year":
		start = ym(year-1, month)
		middle = ym(start.year, start.month+6)
	default:
		start = ym(year, month-1)
		middle = start
	}

	endDay := day
	if last := daysInMonth(year, month); endDay > last {
		endDay = last
	}

	var label string
	switch {
	case start.year != year:
		label = fmt.Sprintf("%d年%d月-%d年%d月", start.year, start.month, year, month)
	case middle.month != start.month && middle.month != month:
		label = fmt.Sprintf("%d年%d月-%d月-%d月", start.year, start.month, middle.month, month)
	case start.month != month:
		label = fmt.Sprintf("%d年%d月-%d月", start.year, start.month, month)
	default:
		label = fmt.Sprintf("%d年%d月", start.year, start.month)
	}

	return Timeframe{
		Start: fmt.Sprintf("%04d-%02d-01", start.year, start.month),
		End:   fmt.Sprintf("%04d-%02d-%02d", year, month, endDay),
		Label: label,
	}
}
