package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/seenimoa/asharemcp/internal/datasource"
	"github.com/seenimoa/asharemcp/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Fakes
// ════════════════════════════════════════════════════════════════════

// fakeStock counts calls and answers from canned tables. Unset
// operations answer NotFound.
type fakeStock struct {
	calls  map[string]int
	tables map[string]*models.Table
	errs   map[string]error
}

func newFakeStock() *fakeStock {
	return &fakeStock{
		calls:  map[string]int{},
		tables: map[string]*models.Table{},
		errs:   map[string]error{},
	}
}

func (f *fakeStock) answer(op string) (*models.Table, error) {
	f.calls[op]++
	if err := f.errs[op]; err != nil {
		return nil, err
	}
	if t := f.tables[op]; t != nil {
		return t, nil
	}
	return nil, datasource.NotFound("no data for %s", op)
}

func (f *fakeStock) GetHistoricalKData(ctx context.Context, code, startDate, endDate, frequency, adjustFlag string) (*models.Table, error) {
	return f.answer("GetHistoricalKData")
}
func (f *fakeStock) GetStockBasicInfo(ctx context.Context, code string) (*models.Table, error) {
	return f.answer("GetStockBasicInfo")
}
func (f *fakeStock) GetDividendData(ctx context.Context, code, year, yearType string) (*models.Table, error) {
	return f.answer("GetDividendData")
}
func (f *fakeStock) GetProfitData(ctx context.Context, code, year string, quarter int) (*models.Table, error) {
	return f.answer("GetProfitData")
}
func (f *fakeStock) GetOperationData(ctx context.Context, code, year string, quarter int) (*models.Table, error) {
	return f.answer("GetOperationData")
}
func (f *fakeStock) GetGrowthData(ctx context.Context, code, year string, quarter int) (*models.Table, error) {
	return f.answer("GetGrowthData")
}
func (f *fakeStock) GetBalanceData(ctx context.Context, code, year string, quarter int) (*models.Table, error) {
	return f.answer("GetBalanceData")
}
func (f *fakeStock) GetCashFlowData(ctx context.Context, code, year string, quarter int) (*models.Table, error) {
	return f.answer("GetCashFlowData")
}
func (f *fakeStock) GetDupontData(ctx context.Context, code, year string, quarter int) (*models.Table, error) {
	return f.answer("GetDupontData")
}
func (f *fakeStock) GetTradeDates(ctx context.Context, startDate, endDate string) (*models.Table, error) {
	return f.answer("GetTradeDates")
}
func (f *fakeStock) GetAllStock(ctx context.Context, date string) (*models.Table, error) {
	return f.answer("GetAllStock")
}
func (f *fakeStock) GetStockIndustry(ctx context.Context, code, date string) (*models.Table, error) {
	return f.answer("GetStockIndustry")
}
func (f *fakeStock) GetSZ50Stocks(ctx context.Context, date string) (*models.Table, error) {
	return f.answer("GetSZ50Stocks")
}
func (f *fakeStock) GetHS300Stocks(ctx context.Context, date string) (*models.Table, error) {
	return f.answer("GetHS300Stocks")
}
func (f *fakeStock) GetZZ500Stocks(ctx context.Context, date string) (*models.Table, error) {
	return f.answer("GetZZ500Stocks")
}
func (f *fakeStock) GetDepositRateData(ctx context.Context, startDate, endDate string) (*models.Table, error) {
	return f.answer("GetDepositRateData")
}
func (f *fakeStock) GetLoanRateData(ctx context.Context, startDate, endDate string) (*models.Table, error) {
	return f.answer("GetLoanRateData")
}
func (f *fakeStock) GetRequiredReserveRatioData(ctx context.Context, startDate, endDate string) (*models.Table, error) {
	return f.answer("GetRequiredReserveRatioData")
}
func (f *fakeStock) GetMoneySupplyDataMonth(ctx context.Context, startDate, endDate string) (*models.Table, error) {
	return f.answer("GetMoneySupplyDataMonth")
}

// fakeETF mirrors fakeStock for the ETF interface.
type fakeETF struct {
	calls   map[string]int
	tables  map[string]*models.Table
	errs    map[string]error
	bundle  *datasource.ETFAnalysisBundle
	bundErr error
}

func newFakeETF() *fakeETF {
	return &fakeETF{
		calls:  map[string]int{},
		tables: map[string]*models.Table{},
		errs:   map[string]error{},
	}
}

func (f *fakeETF) answer(op string) (*models.Table, error) {
	f.calls[op]++
	if err := f.errs[op]; err != nil {
		return nil, err
	}
	if t := f.tables[op]; t != nil {
		return t, nil
	}
	return nil, datasource.NotFound("no data for %s", op)
}

func (f *fakeETF) GetETFBasicInfo(ctx context.Context, etfCode string) (*models.Table, error) {
	return f.answer("GetETFBasicInfo")
}
func (f *fakeETF) GetETFHistoricalData(ctx context.Context, etfCode, startDate, endDate, frequency string) (*models.Table, error) {
	return f.answer("GetETFHistoricalData")
}
func (f *fakeETF) GetETFHoldings(ctx context.Context, etfCode, date string) (*models.Table, error) {
	return f.answer("GetETFHoldings")
}
func (f *fakeETF) GetETFList(ctx context.Context, market string) (*models.Table, error) {
	return f.answer("GetETFList")
}
func (f *fakeETF) GetETFNetValue(ctx context.Context, etfCode, startDate, endDate string) (*models.Table, error) {
	return f.answer("GetETFNetValue")
}
func (f *fakeETF) GetETFAnalysis(ctx context.Context, etfCode string) (*datasource.ETFAnalysisBundle, error) {
	f.calls["GetETFAnalysis"]++
	if f.bundErr != nil {
		return nil, f.bundErr
	}
	return f.bundle, nil
}

func testRegistry(stock *fakeStock, etf *fakeETF) *Registry {
	return NewRegistry(Options{
		Stock: stock,
		ETF:   etf,
		Log:   zerolog.Nop(),
		Now:   func() time.Time { return time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC) },
	})
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := mcp.AsTextContent(res.Content[0])
	if !ok {
		t.Fatalf("result content is %T, want text", res.Content[0])
	}
	return text.Text
}

// ════════════════════════════════════════════════════════════════════
// Pipeline behavior
// ════════════════════════════════════════════════════════════════════

func TestErrorTextVocabulary(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", datasource.NotFound("no data for X"), "Error: no data for X"},
		{"auth", datasource.AuthFailure("session expired"), "Error: Could not connect to data source. session expired"},
		{"invalid input", datasource.InvalidInput("bad code"), "Error: Invalid input parameter. bad code"},
		{"source failure", datasource.SourceFailure("http 502"), "Error: An error occurred while fetching data. http 502"},
		{"unclassified", errors.New("boom"), "Error: An unexpected error occurred: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorText(tt.err); got != tt.want {
				t.Errorf("errorText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunTableToolRejectsFormatBeforeFetch(t *testing.T) {
	stock := newFakeStock()
	r := testRegistry(stock, newFakeETF())

	res, err := r.runTableTool(context.Background(), "test_tool", nil, 0, "xml", func(ctx context.Context) (*models.Table, error) {
		return stock.GetAllStock(ctx, "")
	})
	if err != nil {
		t.Fatalf("pipeline returned transport error: %v", err)
	}
	text := resultText(t, res)
	if !strings.HasPrefix(text, "Error: Invalid input parameter.") {
		t.Errorf("result = %q, want invalid-input error", text)
	}
	if stock.calls["GetAllStock"] != 0 {
		t.Errorf("fetch ran %d times despite bad format", stock.calls["GetAllStock"])
	}
}

func TestRunTableToolRecoversPanic(t *testing.T) {
	r := testRegistry(newFakeStock(), newFakeETF())

	res, err := r.runTableTool(context.Background(), "test_tool", nil, 0, "markdown", func(ctx context.Context) (*models.Table, error) {
		panic("kaboom")
	})
	if err != nil {
		t.Fatalf("pipeline returned transport error: %v", err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "An unexpected error occurred") || !strings.Contains(text, "kaboom") {
		t.Errorf("result = %q, want recovered panic message", text)
	}
}

func TestRunTableToolRendersTable(t *testing.T) {
	tab := models.NewTable("date", "close")
	tab.AppendRow("2025-01-02", 10.5)
	r := testRegistry(newFakeStock(), newFakeETF())

	res, err := r.runTableTool(context.Background(), "test_tool", map[string]string{"code": "sh.600000"}, 0, "markdown", func(ctx context.Context) (*models.Table, error) {
		return tab, nil
	})
	if err != nil {
		t.Fatalf("pipeline returned transport error: %v", err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "10.5") || !strings.Contains(text, "Query: code=sh.600000") {
		t.Errorf("rendered result = %q", text)
	}
}

func TestValidateYearQuarter(t *testing.T) {
	tests := []struct {
		year    string
		quarter int
		wantErr bool
	}{
		{"2024", 1, false},
		{"2024", 4, false},
		{"2024", 0, true},
		{"2024", 5, true},
		{"24", 1, true},
		{"twenty", 1, true},
		{"20245", 2, true},
	}
	for _, tt := range tests {
		err := validateYearQuarter(tt.year, tt.quarter)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateYearQuarter(%q, %d) err = %v, wantErr %v", tt.year, tt.quarter, err, tt.wantErr)
		}
		if err != nil {
			if kind, _ := datasource.KindOf(err); kind != datasource.KindInvalidInput {
				t.Errorf("validateYearQuarter(%q, %d) kind = %v, want InvalidInput", tt.year, tt.quarter, kind)
			}
		}
	}
}

// ════════════════════════════════════════════════════════════════════
// Derived table operations
// ════════════════════════════════════════════════════════════════════

func stockListTable() *models.Table {
	t := models.NewTable("code", "tradeStatus", "code_name")
	t.AppendRow("sh.600000", "1", "浦发银行")
	t.AppendRow("sz.000001", "1", "平安银行")
	t.AppendRow("sz.300750", "0", "宁德时代")
	return t
}

func TestSearchStocks(t *testing.T) {
	stock := newFakeStock()
	stock.tables["GetAllStock"] = stockListTable()
	r := testRegistry(stock, newFakeETF())

	got, err := r.searchStocks(context.Background(), "银行")
	if err != nil {
		t.Fatalf("searchStocks: %v", err)
	}
	if got.NumRows() != 2 {
		t.Errorf("searchStocks rows = %d, want 2", got.NumRows())
	}

	got, err = r.searchStocks(context.Background(), "600000")
	if err != nil || got.NumRows() != 1 {
		t.Errorf("searchStocks by code rows = %d, err = %v, want 1 row", got.NumRows(), err)
	}

	if _, err := r.searchStocks(context.Background(), "nothing-matches"); err == nil {
		t.Error("searchStocks matched nothing but returned no error")
	}
}

func TestSuspendedStocks(t *testing.T) {
	stock := newFakeStock()
	stock.tables["GetAllStock"] = stockListTable()
	r := testRegistry(stock, newFakeETF())

	got, err := r.suspendedStocks(context.Background(), "")
	if err != nil {
		t.Fatalf("suspendedStocks: %v", err)
	}
	if got.NumRows() != 1 || got.Cell(0, "code") != "sz.300750" {
		t.Errorf("suspendedStocks = %v", got.Rows)
	}
}

func TestListIndustriesAndMembers(t *testing.T) {
	stock := newFakeStock()
	industry := models.NewTable("code", "code_name", "industry")
	industry.AppendRow("sh.600000", "浦发银行", "银行")
	industry.AppendRow("sz.000001", "平安银行", "银行")
	industry.AppendRow("sz.300750", "宁德时代", "电池")
	stock.tables["GetStockIndustry"] = industry
	r := testRegistry(stock, newFakeETF())

	list, err := r.listIndustries(context.Background(), "")
	if err != nil {
		t.Fatalf("listIndustries: %v", err)
	}
	if list.NumRows() != 2 {
		t.Fatalf("listIndustries rows = %d, want 2", list.NumRows())
	}
	if list.Cell(0, "industry") != "银行" || list.Cell(0, "stock_count") != 2.0 {
		t.Errorf("listIndustries first row = %v", list.Rows[0])
	}

	members, err := r.industryMembers(context.Background(), "电池", "")
	if err != nil {
		t.Fatalf("industryMembers: %v", err)
	}
	if members.NumRows() != 1 || members.Cell(0, "code") != "sz.300750" {
		t.Errorf("industryMembers = %v", members.Rows)
	}

	if _, err := r.industryMembers(context.Background(), "航运", ""); err == nil {
		t.Error("industryMembers for unknown industry returned no error")
	}
}

func TestTopHoldings(t *testing.T) {
	etf := newFakeETF()
	holdings := models.NewTable("序号", "股票代码", "股票名称", "占净值比例", "持股数", "持仓市值", "季度")
	holdings.AppendRow("1", "600519", "贵州茅台", "4.50", "10", "100", "2025Q2")
	holdings.AppendRow("2", "300750", "宁德时代", "6.20", "20", "200", "2025Q2")
	holdings.AppendRow("3", "600000", "浦发银行", "1.10", "30", "300", "2025Q2")
	etf.tables["GetETFHoldings"] = holdings
	r := testRegistry(newFakeStock(), etf)

	got, err := r.topHoldings(context.Background(), "510300", 2)
	if err != nil {
		t.Fatalf("topHoldings: %v", err)
	}
	if got.NumRows() != 2 {
		t.Fatalf("topHoldings rows = %d, want 2", got.NumRows())
	}
	if got.Cell(0, "股票名称") != "宁德时代" || got.Cell(1, "股票名称") != "贵州茅台" {
		t.Errorf("topHoldings order = %v", got.Rows)
	}

	if _, err := r.topHoldings(context.Background(), "510300", 0); err == nil {
		t.Error("topHoldings accepted non-positive top_n")
	}
}

func TestRealtimeQuoteProbesETFFirst(t *testing.T) {
	stock := newFakeStock()
	etf := newFakeETF()
	etfTable := models.NewTable("代码", "名称")
	etfTable.AppendRow("510300", "沪深300ETF")
	etf.tables["GetETFBasicInfo"] = etfTable
	r := testRegistry(stock, etf)

	got, err := r.realtimeQuote(context.Background(), "510300")
	if err != nil {
		t.Fatalf("realtimeQuote: %v", err)
	}
	if got.Cell(0, "名称") != "沪深300ETF" {
		t.Errorf("realtimeQuote = %v", got.Rows)
	}
	if stock.calls["GetStockBasicInfo"] != 0 {
		t.Error("stock source queried although the ETF probe hit")
	}
}

func TestRealtimeQuoteFallsBackToStock(t *testing.T) {
	stock := newFakeStock()
	stockTable := models.NewTable("代码", "名称")
	stockTable.AppendRow("600000", "浦发银行")
	stock.tables["GetStockBasicInfo"] = stockTable
	etf := newFakeETF() // answers NotFound
	r := testRegistry(stock, etf)

	got, err := r.realtimeQuote(context.Background(), "600000")
	if err != nil {
		t.Fatalf("realtimeQuote: %v", err)
	}
	if got.Cell(0, "名称") != "浦发银行" {
		t.Errorf("realtimeQuote = %v", got.Rows)
	}
	if etf.calls["GetETFBasicInfo"] != 1 {
		t.Errorf("ETF probe ran %d times, want 1", etf.calls["GetETFBasicInfo"])
	}
}

func TestRealtimeQuoteSkipsETFForPrefixedCode(t *testing.T) {
	stock := newFakeStock()
	stockTable := models.NewTable("代码", "名称")
	stockTable.AppendRow("600000", "浦发银行")
	stock.tables["GetStockBasicInfo"] = stockTable
	etf := newFakeETF()
	r := testRegistry(stock, etf)

	if _, err := r.realtimeQuote(context.Background(), "sh.600000"); err != nil {
		t.Fatalf("realtimeQuote: %v", err)
	}
	if etf.calls["GetETFBasicInfo"] != 0 {
		t.Error("ETF probe ran for a prefixed stock code")
	}
}

// ════════════════════════════════════════════════════════════════════
// Analysis reports
// ════════════════════════════════════════════════════════════════════

func analysisBundle() *datasource.ETFAnalysisBundle {
	basic := models.NewTable("代码", "名称", "最新价", "涨跌幅", "成交量")
	basic.AppendRow("510300", "沪深300ETF", 3.95, 0.51, 1000000.0)

	perf := models.NewTable("日期", "收盘")
	perf.AppendRow("2025-02-20", 3.80)
	perf.AppendRow("2025-03-10", 3.90)
	perf.AppendRow("2025-03-20", 3.95)

	holdings := models.NewTable("序号", "股票代码", "股票名称", "占净值比例", "持股数", "持仓市值", "季度")
	holdings.AppendRow("1", "600519", "贵州茅台", "4.50", "10", "100", "2025Q2")
	holdings.AppendRow("2", "300750", "宁德时代", "6.20", "20", "200", "2025Q2")

	return &datasource.ETFAnalysisBundle{BasicInfo: basic, RecentPerformance: perf, Holdings: holdings}
}

func TestETFAnalysisReport(t *testing.T) {
	etf := newFakeETF()
	etf.bundle = analysisBundle()
	r := testRegistry(newFakeStock(), etf)

	report, err := r.etfAnalysisReport(context.Background(), "510300", "comprehensive")
	if err != nil {
		t.Fatalf("etfAnalysisReport: %v", err)
	}
	for _, want := range []string{"# ETF分析报告", "沪深300ETF", "近期表现分析", "持仓分析", "宁德时代", "免责声明"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q", want)
		}
	}

	// basic scope drops performance and holdings sections
	report, err = r.etfAnalysisReport(context.Background(), "510300", "basic")
	if err != nil {
		t.Fatalf("etfAnalysisReport basic: %v", err)
	}
	if strings.Contains(report, "近期表现分析") || strings.Contains(report, "持仓分析") {
		t.Errorf("basic report contains extra sections: %q", report)
	}

	if _, err := r.etfAnalysisReport(context.Background(), "510300", "everything"); err == nil {
		t.Error("etfAnalysisReport accepted unknown analysis_type")
	}
}

func TestETFAnalysisBundleFailure(t *testing.T) {
	etf := newFakeETF()
	etf.bundErr = datasource.WrapSource(datasource.NotFound("no holdings"), "fetch analysis bundle for ETF 510300: holdings")
	r := testRegistry(newFakeStock(), etf)

	_, err := r.etfAnalysisReport(context.Background(), "510300", "comprehensive")
	if err == nil {
		t.Fatal("etfAnalysisReport succeeded despite bundle failure")
	}
	if kind, _ := datasource.KindOf(err); kind != datasource.KindSourceFailure {
		t.Errorf("bundle failure kind = %v, want SourceFailure", kind)
	}
}

func TestCompareETFs(t *testing.T) {
	etf := newFakeETF()
	basic := models.NewTable("代码", "名称", "最新价", "涨跌幅", "成交量")
	basic.AppendRow("510300", "沪深300ETF", 3.95, 0.51, 1000000.0)
	etf.tables["GetETFBasicInfo"] = basic
	r := testRegistry(newFakeStock(), etf)

	report, err := r.compareETFsReport(context.Background(), "510300, 159919", "performance")
	if err != nil {
		t.Fatalf("compareETFsReport: %v", err)
	}
	if !strings.Contains(report, "基本信息比较") || !strings.Contains(report, "510300") {
		t.Errorf("comparison report = %q", report)
	}

	if _, err := r.compareETFsReport(context.Background(), "510300", "performance"); err == nil {
		t.Error("compareETFsReport accepted a single code")
	}
	if _, err := r.compareETFsReport(context.Background(), "510300,159919", "speed"); err == nil {
		t.Error("compareETFsReport accepted unknown comparison_type")
	}
}

func TestAnnualizedVolatility(t *testing.T) {
	if _, ok := annualizedVolatility([]float64{1, 2}); ok {
		t.Error("volatility computed from two closes")
	}
	vol, ok := annualizedVolatility([]float64{100, 101, 99, 102, 100})
	if !ok || vol <= 0 {
		t.Errorf("volatility = %v, %v, want positive", vol, ok)
	}
	// Constant prices mean zero volatility.
	vol, ok = annualizedVolatility([]float64{100, 100, 100})
	if !ok || vol != 0 {
		t.Errorf("constant-price volatility = %v, %v, want 0", vol, ok)
	}
}

func TestAdjustFlagConstants(t *testing.T) {
	// The advertised vocabulary must match the data-source contract:
	// 1 is forward-adjusted, 2 is backward-adjusted, 3 is raw.
	want := []string{"1 (forward-adjusted)", "2 (backward-adjusted)", "3 (unadjusted)"}
	got := toolConstants["adjust_flag"]
	if len(got) != len(want) {
		t.Fatalf("adjust_flag constants = %v", got)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("adjust_flag[%d] = %q, want %q", i, got[i], w)
		}
	}

	out := formatConstants("adjust_flag", got)
	if !strings.Contains(out, "1 (forward-adjusted)") {
		t.Errorf("formatConstants output = %q", out)
	}
}
