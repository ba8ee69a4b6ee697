package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/seenimoa/asharemcp/pkg/models"
)

// fakeProvider serves a fixed trading-day set. Weekends in the set are
// non-trading unless listed.
type fakeProvider struct {
	tradingDays map[string]bool
	err         error
	calls       int
}

func (f *fakeProvider) GetTradeDates(_ context.Context, startDate, endDate string) (*models.Table, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, err
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, err
	}

	t := models.NewTable("calendar_date", "is_trading_day")
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := d.Format("2006-01-02")
		flag := "0"
		if f.tradingDays[day] {
			flag = "1"
		}
		t.AppendRow(day, flag)
	}
	return t, nil
}

// weekdayProvider marks every Monday-Friday as trading.
func weekdayProvider() *fakeProvider {
	p := &fakeProvider{tradingDays: map[string]bool{}}
	for d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC); d.Year() < 2026; d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			p.tradingDays[d.Format("2006-01-02")] = true
		}
	}
	return p
}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestLatestTradingDate(t *testing.T) {
	r := NewResolver(weekdayProvider())

	// Saturday resolves to the preceding Friday.
	if got := r.LatestTradingDate(context.Background(), date("2025-01-11")); got != "2025-01-10" {
		t.Errorf("LatestTradingDate(Sat) = %s, want 2025-01-10", got)
	}
	// A trading day resolves to itself.
	if got := r.LatestTradingDate(context.Background(), date("2025-01-10")); got != "2025-01-10" {
		t.Errorf("LatestTradingDate(Fri) = %s, want 2025-01-10", got)
	}
}

func TestLatestTradingDateProviderFailure(t *testing.T) {
	r := NewResolver(&fakeProvider{err: errors.New("upstream down")})
	// Degrades to today's date, never errors.
	if got := r.LatestTradingDate(context.Background(), date("2025-03-05")); got != "2025-03-05" {
		t.Errorf("LatestTradingDate on failure = %s, want 2025-03-05", got)
	}
}

func TestIsTradingDay(t *testing.T) {
	r := NewResolver(weekdayProvider())

	trading, err := r.IsTradingDay(context.Background(), "2025-01-10")
	if err != nil || !trading {
		t.Errorf("IsTradingDay(Fri) = %v, %v, want true", trading, err)
	}
	trading, err = r.IsTradingDay(context.Background(), "2025-01-11")
	if err != nil || trading {
		t.Errorf("IsTradingDay(Sat) = %v, %v, want false", trading, err)
	}
	if _, err := r.IsTradingDay(context.Background(), "2025/01/10"); err == nil {
		t.Error("IsTradingDay accepted malformed date")
	}
}

func TestPreviousTradingDay(t *testing.T) {
	r := NewResolver(weekdayProvider())

	// Monday's previous trading day is Friday.
	day, found, err := r.PreviousTradingDay(context.Background(), "2025-01-13")
	if err != nil || !found || day != "2025-01-10" {
		t.Errorf("PreviousTradingDay(Mon) = %s, %v, %v, want 2025-01-10", day, found, err)
	}

	// No trading day in the window: the input comes back unchanged.
	empty := NewResolver(&fakeProvider{tradingDays: map[string]bool{}})
	day, found, err = empty.PreviousTradingDay(context.Background(), "2025-01-13")
	if err != nil || found || day != "2025-01-13" {
		t.Errorf("PreviousTradingDay(no data) = %s, %v, %v, want input back", day, found, err)
	}
}

func TestNextTradingDay(t *testing.T) {
	r := NewResolver(weekdayProvider())

	// Friday's next trading day is Monday.
	day, found, err := r.NextTradingDay(context.Background(), "2025-01-10")
	if err != nil || !found || day != "2025-01-13" {
		t.Errorf("NextTradingDay(Fri) = %s, %v, %v, want 2025-01-13", day, found, err)
	}

	empty := NewResolver(&fakeProvider{tradingDays: map[string]bool{}})
	day, found, err = empty.NextTradingDay(context.Background(), "2025-01-10")
	if err != nil || found || day != "2025-01-10" {
		t.Errorf("NextTradingDay(no data) = %s, %v, %v, want input back", day, found, err)
	}
}

func TestAnalysisTimeframe(t *testing.T) {
	tests := []struct {
		name      string
		period    string
		today     string
		wantStart string
		wantEnd   string
		wantLabel string
	}{
		{
			name: "recent early in month", period: "recent", today: "2025-03-10",
			wantStart: "2025-01-01", wantEnd: "2025-03-10", wantLabel: "2025年1月-2月-3月",
		},
		{
			name: "recent late in month", period: "recent", today: "2025-03-20",
			wantStart: "2025-02-01", wantEnd: "2025-03-20", wantLabel: "2025年2月-3月",
		},
		{
			name: "recent early january spans years", period: "recent", today: "2025-01-10",
			wantStart: "2024-11-01", wantEnd: "2025-01-10", wantLabel: "2024年11月-2025年1月",
		},
		{
			name: "recent early february", period: "recent", today: "2025-02-10",
			wantStart: "2025-01-01", wantEnd: "2025-02-10", wantLabel: "2025年1月-2月",
		},
		{
			name: "recent late january", period: "recent", today: "2025-01-20",
			wantStart: "2024-12-01", wantEnd: "2025-01-20", wantLabel: "2024年12月-2025年1月",
		},
		{
			name: "quarter", period: "quarter", today: "2025-05-08",
			wantStart: "2025-02-01", wantEnd: "2025-05-08", wantLabel: "2025年2月-5月",
		},
		{
			name: "quarter wraps year", period: "quarter", today: "2025-02-08",
			wantStart: "2024-11-01", wantEnd: "2025-02-08", wantLabel: "2024年11月-2025年2月",
		},
		{
			name: "half year", period: "half_year", today: "2025-09-15",
			wantStart: "2025-03-01", wantEnd: "2025-09-15", wantLabel: "2025年3月-6月-9月",
		},
		{
			name: "year", period: "year", today: "2025-06-15",
			wantStart: "2024-06-01", wantEnd: "2025-06-15", wantLabel: "2024年6月-2025年6月",
		},
		{
			name: "unknown period falls back to previous month", period: "weird", today: "2025-06-15",
			wantStart: "2025-05-01", wantEnd: "2025-06-15", wantLabel: "2025年5月-6月",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tf := AnalysisTimeframe(tt.period, date(tt.today))
			if tf.Start != tt.wantStart {
				t.Errorf("Start = %s, want %s", tf.Start, tt.wantStart)
			}
			if tf.End != tt.wantEnd {
				t.Errorf("End = %s, want %s", tf.End, tt.wantEnd)
			}
			if tf.Label != tt.wantLabel {
				t.Errorf("Label = %q, want %q", tf.Label, tt.wantLabel)
			}
		})
	}
}

func TestTimeframeString(t *testing.T) {
	tf := Timeframe{Start: "2025-02-01", End: "2025-03-20", Label: "2025年2月-3月"}
	want := "2025年2月-3月 (ISO: 2025-02-01 to 2025-03-20)"
	if got := tf.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
