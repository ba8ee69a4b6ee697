package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/asharemcp/pkg/codes"
	"github.com/seenimoa/asharemcp/pkg/models"
)

// Eastmoney endpoint roots. push2 serves live quote lists, push2his
// historical K-lines, datacenter-web tabular reports.
const (
	push2Base      = "https://push2.eastmoney.com/api/qt"
	push2HisBase   = "https://push2his.eastmoney.com/api/qt"
	datacenterBase = "https://datacenter-web.eastmoney.com/api/data/v1/get"
)

// Market selectors for quote lists.
const (
	fsAShares = "m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23"
	fsIndexes = "m:1+s:2,m:0+t:5"
	fsETFs    = "b:MK0021,b:MK0022,b:MK0023,b:MK0024"
)

const (
	spotPageSize    = 200
	maxSpotFetchers = 4
)

// Eastmoney implements FinancialDataSource over the Eastmoney public
// HTTP endpoints (the same upstreams the common Python data wrappers use).
type Eastmoney struct {
	hc *httpClient
}

// NewEastmoney creates the equity/index data source. A non-positive
// timeout selects DefaultTimeout.
func NewEastmoney(timeout time.Duration) *Eastmoney {
	return &Eastmoney{hc: newHTTPClient(timeout)}
}

var _ FinancialDataSource = (*Eastmoney)(nil)

// --- K-line data ---

var klineFrequencies = map[string]string{
	"d": "101", "w": "102", "m": "103",
	"5": "5", "15": "15", "30": "30", "60": "60",
}

var klineAdjusts = map[string]string{
	"1": "1", // forward adjusted
	"2": "2", // backward adjusted
	"3": "0", // unadjusted
}

// secID converts a stock code to the Eastmoney security id
// ('sh.600000' -> '1.600000', 'sz.000001' -> '0.000001').
func secID(code string) (string, error) {
	exchange, number, err := codes.Split(code)
	if err != nil {
		return "", InvalidInput("invalid stock code: %v", err)
	}
	if exchange == "sh" {
		return "1." + number, nil
	}
	return "0." + number, nil
}

func isoToCompact(date string) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", InvalidInput("invalid date %q, expected YYYY-MM-DD", date)
	}
	return t.Format("20060102"), nil
}

type klineResponse struct {
	Data *struct {
		Code   string   `json:"code"`
		Name   string   `json:"name"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

// fetchKlines returns the raw K-line rows for a security id. Each entry is
// a comma-joined record: date,open,close,high,low,volume,amount,amplitude,
// pctChg,chg,turnover.
func (s *Eastmoney) fetchKlines(ctx context.Context, secid, klt, fqt, beg, end string) ([]string, error) {
	q := url.Values{}
	q.Set("secid", secid)
	q.Set("klt", klt)
	q.Set("fqt", fqt)
	q.Set("beg", beg)
	q.Set("end", end)
	q.Set("fields1", "f1,f2,f3,f4,f5,f6")
	q.Set("fields2", "f51,f52,f53,f54,f55,f56,f57,f58,f59,f60,f61")

	var resp klineResponse
	if err := s.hc.getJSON(ctx, push2HisBase+"/stock/kline/get?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, NotFound("no K-line data for security %s", secid)
	}
	return resp.Data.Klines, nil
}

// GetHistoricalKData implements FinancialDataSource.
func (s *Eastmoney) GetHistoricalKData(ctx context.Context, code, startDate, endDate, frequency, adjustFlag string) (*models.Table, error) {
	klt, ok := klineFrequencies[frequency]
	if !ok {
		return nil, InvalidInput("unsupported frequency %q; valid: d, w, m, 5, 15, 30, 60", frequency)
	}
	fqt, ok := klineAdjusts[adjustFlag]
	if !ok {
		return nil, InvalidInput("unsupported adjust flag %q; valid: 1, 2, 3", adjustFlag)
	}
	sec, err := secID(code)
	if err != nil {
		return nil, err
	}
	norm, _ := codes.Normalize(code)
	beg, err := isoToCompact(startDate)
	if err != nil {
		return nil, err
	}
	end, err := isoToCompact(endDate)
	if err != nil {
		return nil, err
	}

	klines, err := s.fetchKlines(ctx, sec, klt, fqt, beg, end)
	if err != nil {
		return nil, err
	}
	if len(klines) == 0 {
		return nil, NotFound("no historical data for %s in %s..%s", norm, startDate, endDate)
	}

	t := models.NewTable("date", "code", "open", "high", "low", "close", "volume", "amount", "turn", "pctChg")
	for _, line := range klines {
		f := strings.Split(line, ",")
		if len(f) < 11 {
			continue
		}
		t.AppendRow(f[0], norm, parseFloat(f[1]), parseFloat(f[3]), parseFloat(f[4]),
			parseFloat(f[2]), parseFloat(f[5]), parseFloat(f[6]), parseFloat(f[10]), parseFloat(f[8]))
	}
	return t, nil
}

func parseFloat(s string) any {
	if s == "" || s == "-" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return f
}

// --- Quote lists ---

type quoteListResponse struct {
	Data *struct {
		Total int                          `json:"total"`
		Diff  []map[string]json.RawMessage `json:"diff"`
	} `json:"data"`
}

func (s *Eastmoney) fetchQuotePage(ctx context.Context, fs, fields string, page int) ([]map[string]json.RawMessage, int, error) {
	q := url.Values{}
	q.Set("pn", strconv.Itoa(page))
	q.Set("pz", strconv.Itoa(spotPageSize))
	q.Set("po", "0")
	q.Set("np", "1")
	q.Set("fltt", "2")
	q.Set("invt", "2")
	q.Set("fid", "f12")
	q.Set("fs", fs)
	q.Set("fields", fields)

	var resp quoteListResponse
	if err := s.hc.getJSON(ctx, push2Base+"/clist/get?"+q.Encode(), nil, &resp); err != nil {
		return nil, 0, err
	}
	if resp.Data == nil {
		return nil, 0, nil
	}
	return resp.Data.Diff, resp.Data.Total, nil
}

// fetchQuoteList pulls every page of a quote list. The first page reveals
// the total; the remaining pages are fetched concurrently. Only the page
// fetches run in parallel, tool invocations themselves stay sequential.
func (s *Eastmoney) fetchQuoteList(ctx context.Context, fs, fields string) ([]map[string]json.RawMessage, error) {
	first, total, err := s.fetchQuotePage(ctx, fs, fields, 1)
	if err != nil {
		return nil, err
	}
	pages := (total + spotPageSize - 1) / spotPageSize
	if pages <= 1 {
		return first, nil
	}

	rest := make([][]map[string]json.RawMessage, pages-1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxSpotFetchers)
	for p := 2; p <= pages; p++ {
		g.Go(func() error {
			rows, _, err := s.fetchQuotePage(gctx, fs, fields, p)
			if err != nil {
				return err
			}
			rest[p-2] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := first
	for _, rows := range rest {
		all = append(all, rows...)
	}
	return all, nil
}

const spotFields = "f12,f13,f14,f2,f3,f4,f5,f6,f15,f16,f17,f18"

var spotColumns = []string{"代码", "名称", "最新价", "涨跌幅", "涨跌额", "成交量", "成交额", "最高", "最低", "今开", "昨收"}

func stringCell(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}

func spotRow(d map[string]json.RawMessage) []any {
	return []any{
		stringCell(d["f12"]), stringCell(d["f14"]),
		numericCell(d["f2"]), numericCell(d["f3"]), numericCell(d["f4"]),
		numericCell(d["f5"]), numericCell(d["f6"]),
		numericCell(d["f15"]), numericCell(d["f16"]), numericCell(d["f17"]), numericCell(d["f18"]),
	}
}

// spotTable builds the akshare-compatible spot quote table for a market
// selector.
func (s *Eastmoney) spotTable(ctx context.Context, fs string) (*models.Table, error) {
	rows, err := s.fetchQuoteList(ctx, fs, spotFields)
	if err != nil {
		return nil, err
	}
	t := models.NewTable(spotColumns...)
	for _, d := range rows {
		t.AppendRow(spotRow(d)...)
	}
	return t, nil
}

// GetStockBasicInfo implements FinancialDataSource.
func (s *Eastmoney) GetStockBasicInfo(ctx context.Context, code string) (*models.Table, error) {
	_, number, err := codes.Split(code)
	if err != nil {
		return nil, InvalidInput("invalid stock code: %v", err)
	}
	full, err := s.spotTable(ctx, fsAShares)
	if err != nil {
		return nil, err
	}
	t := models.NewTable(full.Columns...)
	for i := range full.Rows {
		if full.Cell(i, "代码") == number {
			t.AppendRow(full.Rows[i]...)
			break
		}
	}
	if t.Empty() {
		return nil, NotFound("no basic info for stock %s", code)
	}
	return t, nil
}

// GetAllStock implements FinancialDataSource. The date argument selects
// the as-of day in metadata only; the upstream list always reflects the
// current session. tradeStatus is '0' when the instrument shows no quote
// (suspended), '1' otherwise.
func (s *Eastmoney) GetAllStock(ctx context.Context, date string) (*models.Table, error) {
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, InvalidInput("invalid date %q, expected YYYY-MM-DD", date)
		}
	}
	rows, err := s.fetchQuoteList(ctx, fsAShares+","+fsIndexes, "f12,f13,f14,f2")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, NotFound("no stock list available")
	}

	t := models.NewTable("code", "tradeStatus", "code_name")
	for _, d := range rows {
		status := "1"
		if numericCell(d["f2"]) == nil {
			status = "0"
		}
		t.AppendRow(prefixedCode(d), status, stringCell(d["f14"]))
	}
	return t, nil
}

// prefixedCode joins the market flag (f13: 1=Shanghai, 0=Shenzhen) with
// the bare code into canonical 'sh.600000' form.
func prefixedCode(d map[string]json.RawMessage) string {
	number := stringCell(d["f12"])
	if stringCell(d["f13"]) == "1" {
		return "sh." + number
	}
	return "sz." + number
}

// GetStockIndustry implements FinancialDataSource. An empty code returns
// the classification for every A-share; the date is informational (the
// upstream publishes the current classification).
func (s *Eastmoney) GetStockIndustry(ctx context.Context, code, date string) (*models.Table, error) {
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, InvalidInput("invalid date %q, expected YYYY-MM-DD", date)
		}
	}
	var wanted string
	if code != "" {
		norm, err := codes.Normalize(code)
		if err != nil {
			return nil, InvalidInput("invalid stock code: %v", err)
		}
		wanted = norm
	}

	rows, err := s.fetchQuoteList(ctx, fsAShares, "f12,f13,f14,f100")
	if err != nil {
		return nil, err
	}

	t := models.NewTable("code", "code_name", "industry")
	for _, d := range rows {
		full := prefixedCode(d)
		if wanted != "" && full != wanted {
			continue
		}
		t.AppendRow(full, stringCell(d["f14"]), stringCell(d["f100"]))
	}
	if t.Empty() {
		if wanted != "" {
			return nil, NotFound("no industry classification for %s", wanted)
		}
		return nil, NotFound("no industry classification available")
	}
	return t, nil
}

// --- Datacenter reports ---

type reportColumn struct {
	field  string // upstream JSON field
	column string // output column name
}

type datacenterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Result  *struct {
		Pages int              `json:"pages"`
		Count int              `json:"count"`
		Data  []map[string]any `json:"data"`
	} `json:"result"`
}

func (s *Eastmoney) fetchReport(ctx context.Context, reportName, filter, sortColumns string, cols []reportColumn) (*models.Table, error) {
	fields := make([]string, len(cols))
	for i, c := range cols {
		fields[i] = c.field
	}
	q := url.Values{}
	q.Set("reportName", reportName)
	q.Set("columns", strings.Join(fields, ","))
	q.Set("pageNumber", "1")
	q.Set("pageSize", "500")
	if filter != "" {
		q.Set("filter", filter)
	}
	if sortColumns != "" {
		q.Set("sortColumns", sortColumns)
		q.Set("sortTypes", "1")
	}

	var resp datacenterResponse
	if err := s.hc.getJSON(ctx, datacenterBase+"?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success && resp.Result == nil {
		// The datacenter reports "success": false with an empty result
		// both for genuine faults and for zero-row queries; only a
		// message indicates a fault.
		if resp.Message != "" && resp.Message != "未找到数据" {
			return nil, SourceFailure("datacenter report %s: %s", reportName, resp.Message)
		}
	}
	if resp.Result == nil || len(resp.Result.Data) == 0 {
		return nil, NotFound("report %s returned no rows", reportName)
	}

	t := models.NewTable(columnNames(cols)...)
	for _, row := range resp.Result.Data {
		values := make([]any, len(cols))
		for i, c := range cols {
			values[i] = row[c.field]
		}
		t.AppendRow(values...)
	}
	return t, nil
}

func columnNames(cols []reportColumn) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.column
	}
	return names
}

// secuCode converts a canonical code to the datacenter's '600000.SH' form.
func secuCode(code string) (string, error) {
	exchange, number, err := codes.Split(code)
	if err != nil {
		return "", InvalidInput("invalid stock code: %v", err)
	}
	return number + "." + strings.ToUpper(exchange), nil
}

func quarterEndDate(year string, quarter int) (string, error) {
	if len(year) != 4 {
		return "", InvalidInput("invalid year %q, expected 4 digits", year)
	}
	if _, err := strconv.Atoi(year); err != nil {
		return "", InvalidInput("invalid year %q, expected 4 digits", year)
	}
	ends := map[int]string{1: "03-31", 2: "06-30", 3: "09-30", 4: "12-31"}
	end, ok := ends[quarter]
	if !ok {
		return "", InvalidInput("invalid quarter %d, must be 1..4", quarter)
	}
	return year + "-" + end, nil
}

// --- Financial statement figures ---
//
// All six datasets are column views over the F10 main financial
// indicator report, keyed by security and report date.

const financeReport = "RPT_F10_FINANCE_MAINFINADATA"

var (
	profitColumns = []reportColumn{
		{"SECUCODE", "code"}, {"REPORT_DATE", "statDate"},
		{"EPSJB", "epsTTM"}, {"ROEJQ", "roeAvg"}, {"XSJLL", "npMargin"},
		{"XSMLL", "gpMargin"}, {"TOTALOPERATEREVE", "totalRevenue"},
		{"PARENTNETPROFIT", "netProfit"},
	}
	operationColumns = []reportColumn{
		{"SECUCODE", "code"}, {"REPORT_DATE", "statDate"},
		{"YSZKZZL", "NRTurnRatio"}, {"YSZKZZTS", "NRTurnDays"},
		{"CHZZL", "INVTurnRatio"}, {"CHZZTS", "INVTurnDays"},
		{"TOAZZL", "AssetTurnRatio"},
	}
	growthColumns = []reportColumn{
		{"SECUCODE", "code"}, {"REPORT_DATE", "statDate"},
		{"TOTALOPERATEREVETZ", "YOYRevenue"}, {"PARENTNETPROFITTZ", "YOYNetProfit"},
		{"KCFJCXSYJLRTZ", "YOYDeductNetProfit"},
	}
	balanceColumns = []reportColumn{
		{"SECUCODE", "code"}, {"REPORT_DATE", "statDate"},
		{"LD", "currentRatio"}, {"SD", "quickRatio"},
		{"ZCFZL", "liabilityToAsset"}, {"QYCS", "assetToEquity"},
	}
	cashFlowColumns = []reportColumn{
		{"SECUCODE", "code"}, {"REPORT_DATE", "statDate"},
		{"MGJYXJJE", "CFOPsTTM"}, {"JYXJLYYSR", "CFOToOR"},
		{"XSJXLYYSR", "CashToOR"},
	}
	dupontColumns = []reportColumn{
		{"SECUCODE", "code"}, {"REPORT_DATE", "statDate"},
		{"ROEJQ", "dupontROE"}, {"XSJLL", "dupontNetMargin"},
		{"ZZCJLL", "dupontROA"}, {"QYCS", "dupontEquityMultiplier"},
	}
)

func (s *Eastmoney) financeData(ctx context.Context, code, year string, quarter int, cols []reportColumn) (*models.Table, error) {
	secu, err := secuCode(code)
	if err != nil {
		return nil, err
	}
	reportDate, err := quarterEndDate(year, quarter)
	if err != nil {
		return nil, err
	}
	filter := fmt.Sprintf(`(SECUCODE="%s")(REPORT_DATE='%s')`, secu, reportDate)
	return s.fetchReport(ctx, financeReport, filter, "REPORT_DATE", cols)
}

// GetProfitData implements FinancialDataSource.
func (s *Eastmoney) GetProfitData(ctx context.Context, code, year string, quarter int) (*models.Table, error) {
	return s.financeData(ctx, code, year, quarter, profitColumns)
}

// GetOperationData implements FinancialDataSource.
func (s *Eastmoney) GetOperationData(ctx context.Context, code, year string, quarter int) (*models.Table, error) {
	return s.financeData(ctx, code, year, quarter, operationColumns)
}

// GetGrowthData implements FinancialDataSource.
func (s *Eastmoney) GetGrowthData(ctx context.Context, code, year string, quarter int) (*models.Table, error) {
	return s.financeData(ctx, code, year, quarter, growthColumns)
}

// GetBalanceData implements FinancialDataSource.
func (s *Eastmoney) GetBalanceData(ctx context.Context, code, year string, quarter int) (*models.Table, error) {
	return s.financeData(ctx, code, year, quarter, balanceColumns)
}

// GetCashFlowData implements FinancialDataSource.
func (s *Eastmoney) GetCashFlowData(ctx context.Context, code, year string, quarter int) (*models.Table, error) {
	return s.financeData(ctx, code, year, quarter, cashFlowColumns)
}

// GetDupontData implements FinancialDataSource.
func (s *Eastmoney) GetDupontData(ctx context.Context, code, year string, quarter int) (*models.Table, error) {
	return s.financeData(ctx, code, year, quarter, dupontColumns)
}

// --- Dividends ---

var dividendColumns = []reportColumn{
	{"SECUCODE", "code"}, {"REPORT_DATE", "statDate"},
	{"IMPL_PLAN_PROFILE", "plan"}, {"PRETAX_BONUS_RMB", "dividCashPsBeforeTax"},
	{"EQUITY_RECORD_DATE", "dividRegistDate"}, {"EX_DIVIDEND_DATE", "dividOperateDate"},
	{"PAY_CASH_DATE", "dividPayDate"},
}

// GetDividendData implements FinancialDataSource.
func (s *Eastmoney) GetDividendData(ctx context.Context, code, year, yearType string) (*models.Table, error) {
	secu, err := secuCode(code)
	if err != nil {
		return nil, err
	}
	if len(year) != 4 {
		return nil, InvalidInput("invalid year %q, expected 4 digits", year)
	}
	var dateField string
	switch yearType {
	case "report":
		dateField = "REPORT_DATE"
	case "operate":
		dateField = "EX_DIVIDEND_DATE"
	default:
		return nil, InvalidInput("unsupported year type %q; valid: report, operate", yearType)
	}
	filter := fmt.Sprintf(`(SECUCODE="%s")(%s>='%s-01-01')(%s<='%s-12-31')`,
		secu, dateField, year, dateField, year)
	return s.fetchReport(ctx, "RPT_SHAREBONUS_DET", filter, "REPORT_DATE", dividendColumns)
}

// --- Index constituents ---

var indexCodes = map[string]string{
	"sz50":  "000016",
	"hs300": "000300",
	"zz500": "000905",
}

var constituentColumns = []reportColumn{
	{"SECUCODE", "code"}, {"SECURITY_NAME_ABBR", "code_name"}, {"WEIGHT", "weight"},
}

// indexConstituents returns the latest published composition of a major
// index. The upstream does not expose historical snapshots; a requested
// date is validated and recorded by the caller's metadata only.
func (s *Eastmoney) indexConstituents(ctx context.Context, index, date string) (*models.Table, error) {
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, InvalidInput("invalid date %q, expected YYYY-MM-DD", date)
		}
	}
	indexCode, ok := indexCodes[index]
	if !ok {
		return nil, InvalidInput("unsupported index %q; valid: hs300, sz50, zz500", index)
	}
	filter := fmt.Sprintf(`(INDEX_CODE="%s")`, indexCode)
	t, err := s.fetchReport(ctx, "RPT_INDEX_TS_COMPONENT", filter, "SECURITY_CODE", constituentColumns)
	if err != nil {
		return nil, err
	}
	// Rewrite '600000.SH' style codes into canonical form.
	idx := t.ColumnIndex("code")
	for _, row := range t.Rows {
		if s, ok := row[idx].(string); ok {
			if norm, err := codes.Normalize(s); err == nil {
				row[idx] = norm
			}
		}
	}
	return t, nil
}

// GetSZ50Stocks implements FinancialDataSource.
func (s *Eastmoney) GetSZ50Stocks(ctx context.Context, date string) (*models.Table, error) {
	return s.indexConstituents(ctx, "sz50", date)
}

// GetHS300Stocks implements FinancialDataSource.
func (s *Eastmoney) GetHS300Stocks(ctx context.Context, date string) (*models.Table, error) {
	return s.indexConstituents(ctx, "hs300", date)
}

// GetZZ500Stocks implements FinancialDataSource.
func (s *Eastmoney) GetZZ500Stocks(ctx context.Context, date string) (*models.Table, error) {
	return s.indexConstituents(ctx, "zz500", date)
}

// --- Macroeconomic series ---

func macroDateFilter(startDate, endDate string) (string, error) {
	var parts []string
	if startDate != "" {
		if _, err := time.Parse("2006-01-02", startDate); err != nil {
			return "", InvalidInput("invalid start date %q, expected YYYY-MM-DD", startDate)
		}
		parts = append(parts, fmt.Sprintf(`(REPORT_DATE>='%s')`, startDate))
	}
	if endDate != "" {
		if _, err := time.Parse("2006-01-02", endDate); err != nil {
			return "", InvalidInput("invalid end date %q, expected YYYY-MM-DD", endDate)
		}
		parts = append(parts, fmt.Sprintf(`(REPORT_DATE<='%s')`, endDate))
	}
	return strings.Join(parts, ""), nil
}

func (s *Eastmoney) macroReport(ctx context.Context, reportName, startDate, endDate string, cols []reportColumn) (*models.Table, error) {
	filter, err := macroDateFilter(startDate, endDate)
	if err != nil {
		return nil, err
	}
	return s.fetchReport(ctx, reportName, filter, "REPORT_DATE", cols)
}

// GetDepositRateData implements FinancialDataSource.
func (s *Eastmoney) GetDepositRateData(ctx context.Context, startDate, endDate string) (*models.Table, error) {
	return s.macroReport(ctx, "RPT_ECONOMY_DEPOSIT_RATE", startDate, endDate, []reportColumn{
		{"REPORT_DATE", "pubDate"}, {"PUBLISH_DATE", "effectiveDate"},
		{"DEPOSIT_RATE_BB", "demandDepositRate"}, {"DEPOSIT_RATE_BA", "fixedDepositRate"},
	})
}

// GetLoanRateData implements FinancialDataSource.
func (s *Eastmoney) GetLoanRateData(ctx context.Context, startDate, endDate string) (*models.Table, error) {
	return s.macroReport(ctx, "RPT_ECONOMY_LOAN_RATE", startDate, endDate, []reportColumn{
		{"REPORT_DATE", "pubDate"}, {"PUBLISH_DATE", "effectiveDate"},
		{"LOAN_RATE_SQ", "loanRateShortTerm"}, {"LOAN_RATE_SH", "loanRateLongTerm"},
	})
}

// GetRequiredReserveRatioData implements FinancialDataSource.
func (s *Eastmoney) GetRequiredReserveRatioData(ctx context.Context, startDate, endDate string) (*models.Table, error) {
	return s.macroReport(ctx, "RPT_ECONOMY_RESERVE_RATIO", startDate, endDate, []reportColumn{
		{"REPORT_DATE", "pubDate"}, {"PUBLISH_DATE", "effectiveDate"},
		{"RESERVE_RATIO_BIG", "bigBanksRatio"}, {"RESERVE_RATIO_SMALL", "mediumSmallBanksRatio"},
		{"CHANGE_REASON", "comment"},
	})
}

// GetMoneySupplyDataMonth implements FinancialDataSource.
func (s *Eastmoney) GetMoneySupplyDataMonth(ctx context.Context, startDate, endDate string) (*models.Table, error) {
	return s.macroReport(ctx, "RPT_ECONOMY_CURRENCY_SUPPLY", startDate, endDate, []reportColumn{
		{"REPORT_DATE", "statMonth"},
		{"BASIC_CURRENCY", "m2"}, {"BASIC_CURRENCY_SAME", "m2YOY"},
		{"CURRENCY", "m1"}, {"CURRENCY_SAME", "m1YOY"},
		{"FREE_CASH", "m0"}, {"FREE_CASH_SAME", "m0YOY"},
	})
}

// --- Trading calendar ---

const (
	tradeDatesDefaultStart = "2015-01-01"
	// Security id of the SSE Composite; its daily bars define the
	// trading calendar (bar present on a date <=> trading day).
	calendarSecID = "1.000001"
)

// GetTradeDates implements FinancialDataSource.
func (s *Eastmoney) GetTradeDates(ctx context.Context, startDate, endDate string) (*models.Table, error) {
	if startDate == "" {
		startDate = tradeDatesDefaultStart
	}
	if endDate == "" {
		endDate = time.Now().Format("2006-01-02")
	}
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, InvalidInput("invalid start date %q, expected YYYY-MM-DD", startDate)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, InvalidInput("invalid end date %q, expected YYYY-MM-DD", endDate)
	}
	if end.Before(start) {
		return nil, InvalidInput("end date %s precedes start date %s", endDate, startDate)
	}

	klines, err := s.fetchKlines(ctx, calendarSecID, "101", "0", start.Format("20060102"), end.Format("20060102"))
	if err != nil {
		return nil, err
	}
	trading := make(map[string]bool, len(klines))
	for _, line := range klines {
		if i := strings.IndexByte(line, ','); i > 0 {
			trading[line[:i]] = true
		}
	}

	t := models.NewTable("calendar_date", "is_trading_day")
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		iso := d.Format("2006-01-02")
		flag := "0"
		if trading[iso] {
			flag = "1"
		}
		t.AppendRow(iso, flag)
	}
	return t, nil
}

// sortRowsByFirstColumn orders rows lexicographically on their first
// column; used by adapters whose upstream returns unsorted data.
func sortRowsByFirstColumn(t *models.Table) {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		a, _ := t.Rows[i][0].(string)
		b, _ := t.Rows[j][0].(string)
		return a < b
	})
}
