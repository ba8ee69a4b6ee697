package datasource

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/asharemcp/pkg/models"
)

// Fund endpoints. The F10 archive serves holdings as an HTML fragment
// wrapped in a JS variable; the fund API serves net value history.
const (
	fundF10Base = "https://fundf10.eastmoney.com"
	fundAPIBase = "https://api.fund.eastmoney.com"
)

var etfCodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// EastmoneyETF implements ETFDataSource over the Eastmoney fund endpoints.
type EastmoneyETF struct {
	hc *httpClient
}

// NewEastmoneyETF creates the ETF data source. A non-positive timeout
// selects DefaultTimeout.
func NewEastmoneyETF(timeout time.Duration) *EastmoneyETF {
	return &EastmoneyETF{hc: newHTTPClient(timeout)}
}

var _ ETFDataSource = (*EastmoneyETF)(nil)

func validateETFCode(etfCode string) (string, error) {
	code := strings.TrimSpace(etfCode)
	if !etfCodePattern.MatchString(code) {
		return "", InvalidInput("invalid ETF code %q, expected six digits like '159919' or '510300'", etfCode)
	}
	return code, nil
}

// etfSecID maps an ETF code to the Eastmoney security id. Shanghai-listed
// ETFs start with '5', Shenzhen-listed with '1'.
func etfSecID(code string) string {
	if strings.HasPrefix(code, "5") {
		return "1." + code
	}
	return "0." + code
}

// --- Spot data ---

// etfSpot is shared by basic info and list: the full ETF spot table.
func (s *EastmoneyETF) etfSpot(ctx context.Context) (*models.Table, error) {
	em := Eastmoney{hc: s.hc}
	return em.spotTable(ctx, fsETFs)
}

// GetETFBasicInfo implements ETFDataSource.
func (s *EastmoneyETF) GetETFBasicInfo(ctx context.Context, etfCode string) (*models.Table, error) {
	code, err := validateETFCode(etfCode)
	if err != nil {
		return nil, err
	}
	full, err := s.etfSpot(ctx)
	if err != nil {
		return nil, err
	}
	t := models.NewTable(full.Columns...)
	for i := range full.Rows {
		if full.Cell(i, "代码") == code {
			t.AppendRow(full.Rows[i]...)
			break
		}
	}
	if t.Empty() {
		return nil, NotFound("no basic info for ETF %s", code)
	}
	return t, nil
}

// GetETFList implements ETFDataSource. Market filters follow the listing
// convention: Shanghai ETF codes start with '51', Shenzhen with '15'.
func (s *EastmoneyETF) GetETFList(ctx context.Context, market string) (*models.Table, error) {
	var prefix string
	switch market {
	case "all":
	case "sh":
		prefix = "51"
	case "sz":
		prefix = "15"
	default:
		return nil, InvalidInput("unsupported market %q; valid: all, sh, sz", market)
	}

	full, err := s.etfSpot(ctx)
	if err != nil {
		return nil, err
	}
	if prefix == "" {
		if full.Empty() {
			return nil, NotFound("no ETFs listed")
		}
		return full, nil
	}

	t := models.NewTable(full.Columns...)
	for i := range full.Rows {
		if code, _ := full.Cell(i, "代码").(string); strings.HasPrefix(code, prefix) {
			t.AppendRow(full.Rows[i]...)
		}
	}
	if t.Empty() {
		return nil, NotFound("no ETFs listed for market %s", market)
	}
	return t, nil
}

// --- Historical data ---

var etfHistColumns = []string{"日期", "开盘", "收盘", "最高", "最低", "成交量", "成交额", "涨跌幅", "换手率"}

// GetETFHistoricalData implements ETFDataSource.
func (s *EastmoneyETF) GetETFHistoricalData(ctx context.Context, etfCode, startDate, endDate, frequency string) (*models.Table, error) {
	code, err := validateETFCode(etfCode)
	if err != nil {
		return nil, err
	}
	if frequency != "d" && frequency != "w" && frequency != "m" {
		return nil, InvalidInput("unsupported frequency %q; valid: d, w, m", frequency)
	}
	klt := klineFrequencies[frequency]
	beg, err := isoToCompact(startDate)
	if err != nil {
		return nil, err
	}
	end, err := isoToCompact(endDate)
	if err != nil {
		return nil, err
	}

	em := Eastmoney{hc: s.hc}
	klines, err := em.fetchKlines(ctx, etfSecID(code), klt, "0", beg, end)
	if err != nil {
		return nil, err
	}
	if len(klines) == 0 {
		return nil, NotFound("no historical data for ETF %s in %s..%s", code, startDate, endDate)
	}

	t := models.NewTable(etfHistColumns...)
	for _, line := range klines {
		f := strings.Split(line, ",")
		if len(f) < 11 {
			continue
		}
		t.AppendRow(f[0], parseFloat(f[1]), parseFloat(f[2]), parseFloat(f[3]), parseFloat(f[4]),
			parseFloat(f[5]), parseFloat(f[6]), parseFloat(f[8]), parseFloat(f[10]))
	}
	return t, nil
}

// --- Holdings ---

// GetETFHoldings implements ETFDataSource. The F10 archive endpoint
// returns a JS assignment whose content field is an HTML table; the rows
// are extracted with goquery. An empty date selects the latest disclosed
// quarter, otherwise the disclosure year of the given date is requested.
func (s *EastmoneyETF) GetETFHoldings(ctx context.Context, etfCode, date string) (*models.Table, error) {
	code, err := validateETFCode(etfCode)
	if err != nil {
		return nil, err
	}
	year := ""
	if date != "" {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, InvalidInput("invalid date %q, expected YYYY-MM-DD", date)
		}
		year = fmt.Sprintf("%d", d.Year())
	}

	q := url.Values{}
	q.Set("type", "jjcc")
	q.Set("code", code)
	q.Set("topline", "200")
	q.Set("year", year)
	q.Set("month", "")
	headers := map[string]string{"Referer": fundF10Base + "/ccmx_" + code + ".html"}

	body, err := s.hc.get(ctx, fundF10Base+"/FundArchivesDatas.aspx?"+q.Encode(), headers)
	if err != nil {
		return nil, err
	}
	html, err := extractJSContent(string(body))
	if err != nil {
		return nil, WrapSource(err, "parse holdings payload for ETF %s", code)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, WrapSource(err, "parse holdings HTML for ETF %s", code)
	}

	t := models.NewTable("序号", "股票代码", "股票名称", "占净值比例", "持股数", "持仓市值", "季度")
	quarter := strings.TrimSpace(doc.Find("h4 label.left").First().Text())
	doc.Find("table").First().Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td").Map(func(_ int, td *goquery.Selection) string {
			return strings.TrimSpace(td.Text())
		})
		// 序号, 代码, 名称, (links...), 占净值比例, 持股数, 持仓市值
		if len(cells) < 6 {
			return
		}
		n := len(cells)
		t.AppendRow(cells[0], cells[1], cells[2],
			strings.TrimSuffix(cells[n-3], "%"), cells[n-2], cells[n-1], quarter)
	})
	if t.Empty() {
		return nil, NotFound("no holdings disclosed for ETF %s", code)
	}
	return t, nil
}

// extractJSContent pulls the HTML string out of the F10 endpoint's
// `var apidata={ content:"..." ,...}` response.
func extractJSContent(js string) (string, error) {
	const marker = `content:"`
	start := strings.Index(js, marker)
	if start < 0 {
		return "", fmt.Errorf("content field not found in response")
	}
	rest := js[start+len(marker):]
	end := strings.Index(rest, `",`)
	if end < 0 {
		return "", fmt.Errorf("unterminated content field in response")
	}
	return rest[:end], nil
}

// --- Net value ---

type netValueResponse struct {
	Data *struct {
		LSJZList []struct {
			FSRQ  string `json:"FSRQ"`  // date
			DWJZ  string `json:"DWJZ"`  // unit NAV
			LJJZ  string `json:"LJJZ"`  // accumulated NAV
			JZZZL string `json:"JZZZL"` // daily growth %
		} `json:"LSJZList"`
	} `json:"Data"`
	ErrCode int    `json:"ErrCode"`
	ErrMsg  string `json:"ErrMsg"`
}

// GetETFNetValue implements ETFDataSource.
func (s *EastmoneyETF) GetETFNetValue(ctx context.Context, etfCode, startDate, endDate string) (*models.Table, error) {
	code, err := validateETFCode(etfCode)
	if err != nil {
		return nil, err
	}
	for _, d := range []string{startDate, endDate} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return nil, InvalidInput("invalid date %q, expected YYYY-MM-DD", d)
		}
	}

	q := url.Values{}
	q.Set("fundCode", code)
	q.Set("pageIndex", "1")
	q.Set("pageSize", "500")
	q.Set("startDate", startDate)
	q.Set("endDate", endDate)
	headers := map[string]string{"Referer": fundF10Base + "/"}

	var resp netValueResponse
	if err := s.hc.getJSON(ctx, fundAPIBase+"/f10/lsjz?"+q.Encode(), headers, &resp); err != nil {
		return nil, err
	}
	if resp.ErrCode != 0 {
		return nil, SourceFailure("fund API error %d: %s", resp.ErrCode, resp.ErrMsg)
	}
	if resp.Data == nil || len(resp.Data.LSJZList) == 0 {
		return nil, NotFound("no net value data for ETF %s in %s..%s", code, startDate, endDate)
	}

	t := models.NewTable("净值日期", "单位净值", "累计净值", "日增长率")
	for _, row := range resp.Data.LSJZList {
		t.AppendRow(row.FSRQ, parseFloat(row.DWJZ), parseFloat(row.LJJZ), parseFloat(row.JZZZL))
	}
	sortRowsByFirstColumn(t)
	return t, nil
}

// --- Composite analysis ---

// GetETFAnalysis implements ETFDataSource. The three sub-fetches run
// sequentially; the first failure aborts the bundle and surfaces as a
// single SourceFailure wrapping the original error.
func (s *EastmoneyETF) GetETFAnalysis(ctx context.Context, etfCode string) (*ETFAnalysisBundle, error) {
	code, err := validateETFCode(etfCode)
	if err != nil {
		return nil, err
	}

	basic, err := s.GetETFBasicInfo(ctx, code)
	if err != nil {
		return nil, WrapSource(err, "fetch analysis bundle for ETF %s: basic info", code)
	}

	end := time.Now()
	start := end.AddDate(0, 0, -30)
	recent, err := s.GetETFHistoricalData(ctx, code, start.Format("2006-01-02"), end.Format("2006-01-02"), "d")
	if err != nil {
		return nil, WrapSource(err, "fetch analysis bundle for ETF %s: recent performance", code)
	}

	holdings, err := s.GetETFHoldings(ctx, code, "")
	if err != nil {
		return nil, WrapSource(err, "fetch analysis bundle for ETF %s: holdings", code)
	}

	return &ETFAnalysisBundle{
		BasicInfo:         basic,
		RecentPerformance: recent,
		Holdings:          holdings,
	}, nil
}
