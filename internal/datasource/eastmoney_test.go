package datasource

import (
	"testing"

	"github.com/seenimoa/asharemcp/pkg/models"
)

func TestSecID(t *testing.T) {
	tests := []struct {
		code    string
		want    string
		wantErr bool
	}{
		{code: "sh.600000", want: "1.600000"},
		{code: "sz.000001", want: "0.000001"},
		{code: "600000", want: "1.600000"},
		{code: "000001.SZ", want: "0.000001"},
		{code: "garbage", wantErr: true},
	}
	for _, tt := range tests {
		got, err := secID(tt.code)
		if tt.wantErr {
			if err == nil {
				t.Errorf("secID(%q) = %q, want error", tt.code, got)
			} else if kind, _ := KindOf(err); kind != KindInvalidInput {
				t.Errorf("secID(%q) kind = %v, want InvalidInput", tt.code, kind)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("secID(%q) = %q, %v, want %q", tt.code, got, err, tt.want)
		}
	}
}

func TestSecuCode(t *testing.T) {
	got, err := secuCode("sh.600000")
	if err != nil || got != "600000.SH" {
		t.Errorf("secuCode = %q, %v, want 600000.SH", got, err)
	}
	got, err = secuCode("sz.000001")
	if err != nil || got != "000001.SZ" {
		t.Errorf("secuCode = %q, %v, want 000001.SZ", got, err)
	}
}

func TestIsoToCompact(t *testing.T) {
	got, err := isoToCompact("2025-03-20")
	if err != nil || got != "20250320" {
		t.Errorf("isoToCompact = %q, %v", got, err)
	}
	if _, err := isoToCompact("2025/03/20"); err == nil {
		t.Error("isoToCompact accepted slashes")
	}
	if _, err := isoToCompact("20250320"); err == nil {
		t.Error("isoToCompact accepted compact input")
	}
}

func TestQuarterEndDate(t *testing.T) {
	tests := []struct {
		year    string
		quarter int
		want    string
		wantErr bool
	}{
		{year: "2024", quarter: 1, want: "2024-03-31"},
		{year: "2024", quarter: 2, want: "2024-06-30"},
		{year: "2024", quarter: 3, want: "2024-09-30"},
		{year: "2024", quarter: 4, want: "2024-12-31"},
		{year: "2024", quarter: 5, wantErr: true},
		{year: "2024", quarter: 0, wantErr: true},
		{year: "24", quarter: 1, wantErr: true},
		{year: "abcd", quarter: 1, wantErr: true},
	}
	for _, tt := range tests {
		got, err := quarterEndDate(tt.year, tt.quarter)
		if tt.wantErr {
			if err == nil {
				t.Errorf("quarterEndDate(%q, %d) = %q, want error", tt.year, tt.quarter, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("quarterEndDate(%q, %d) = %q, %v, want %q", tt.year, tt.quarter, got, err, tt.want)
		}
	}
}

func TestKlineFrequencyTables(t *testing.T) {
	for _, freq := range []string{"d", "w", "m", "5", "15", "30", "60"} {
		if _, ok := klineFrequencies[freq]; !ok {
			t.Errorf("missing kline frequency %q", freq)
		}
	}
	// unadjusted maps to the upstream's 0
	if klineAdjusts["3"] != "0" {
		t.Errorf(`klineAdjusts["3"] = %q, want "0"`, klineAdjusts["3"])
	}
}

func TestSortRowsByFirstColumn(t *testing.T) {
	tab := models.NewTable("date", "v")
	tab.AppendRow("2025-03-20", 3.0)
	tab.AppendRow("2025-01-02", 1.0)
	tab.AppendRow("2025-02-10", 2.0)

	sortRowsByFirstColumn(tab)

	want := []string{"2025-01-02", "2025-02-10", "2025-03-20"}
	for i, w := range want {
		if got := tab.Cell(i, "date"); got != w {
			t.Errorf("row %d date = %v, want %s", i, got, w)
		}
	}
}

func TestETFSecID(t *testing.T) {
	if got := etfSecID("510300"); got != "1.510300" {
		t.Errorf("etfSecID(510300) = %q, want 1.510300", got)
	}
	if got := etfSecID("159919"); got != "0.159919" {
		t.Errorf("etfSecID(159919) = %q, want 0.159919", got)
	}
}

func TestValidateETFCode(t *testing.T) {
	if got, err := validateETFCode(" 510300 "); err != nil || got != "510300" {
		t.Errorf("validateETFCode = %q, %v", got, err)
	}
	for _, bad := range []string{"", "51030", "5103000", "sh.510300", "51030a"} {
		if _, err := validateETFCode(bad); err == nil {
			t.Errorf("validateETFCode(%q) accepted", bad)
		} else if kind, _ := KindOf(err); kind != KindInvalidInput {
			t.Errorf("validateETFCode(%q) kind = %v, want InvalidInput", bad, kind)
		}
	}
}

func TestExtractJSContent(t *testing.T) {
	js := `var apidata={ content:"<table><tr><td>x</td></tr></table>",arryear:[2025],curyear:2025};`
	html, err := extractJSContent(js)
	if err != nil {
		t.Fatalf("extractJSContent: %v", err)
	}
	if html != "<table><tr><td>x</td></tr></table>" {
		t.Errorf("content = %q", html)
	}

	if _, err := extractJSContent("var apidata={};"); err == nil {
		t.Error("extractJSContent accepted payload without content field")
	}
	if _, err := extractJSContent(`var apidata={ content:"unterminated`); err == nil {
		t.Error("extractJSContent accepted unterminated content")
	}
}

func TestParseFloat(t *testing.T) {
	if got := parseFloat("3.95"); got != 3.95 {
		t.Errorf("parseFloat(3.95) = %v", got)
	}
	if got := parseFloat("-"); got != nil {
		t.Errorf("parseFloat(-) = %v, want nil", got)
	}
	if got := parseFloat(""); got != nil {
		t.Errorf("parseFloat() = %v, want nil", got)
	}
}
