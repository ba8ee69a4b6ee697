package tools

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/seenimoa/asharemcp/internal/datasource"
	"github.com/seenimoa/asharemcp/pkg/models"
)

const analysisDisclaimer = "## 免责声明\n本报告基于公开数据生成，仅供参考，不构成投资建议。\n\n"

func (r *Registry) registerAnalysisTools(s *server.MCPServer) {
	r.add(s, mcp.NewTool("get_etf_analysis",
		mcp.WithDescription("Generate a markdown analysis report for an ETF: quote snapshot, 30-day performance and top holdings."),
		mcp.WithString("etf_code", mcp.Required(), mcp.Description("6-digit ETF code, e.g. '510300'.")),
		mcp.WithString("analysis_type",
			mcp.Description("Report scope: basic, performance or comprehensive (default)."),
			mcp.DefaultString("comprehensive"),
			mcp.Enum("basic", "performance", "comprehensive")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		etfCode, err := req.RequireString("etf_code")
		if err != nil {
			return textResult("Error: Invalid input parameter. etf_code is required"), nil
		}
		analysisType := req.GetString("analysis_type", "comprehensive")

		meta := map[string]string{"etf_code": etfCode, "analysis_type": analysisType}
		return r.runTextTool(ctx, "get_etf_analysis", meta, func(ctx context.Context) (string, error) {
			return r.etfAnalysisReport(ctx, etfCode, analysisType)
		})
	})

	r.add(s, mcp.NewTool("compare_etfs",
		mcp.WithDescription("Compare two or more ETFs side by side on their latest quotes."),
		mcp.WithString("etf_codes", mcp.Required(), mcp.Description("Comma-separated ETF codes, e.g. '159919,510300'.")),
		mcp.WithString("comparison_type",
			mcp.Description("Comparison scope: performance (default), holdings or comprehensive."),
			mcp.DefaultString("performance"),
			mcp.Enum("performance", "holdings", "comprehensive")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		etfCodes, err := req.RequireString("etf_codes")
		if err != nil {
			return textResult("Error: Invalid input parameter. etf_codes is required"), nil
		}
		comparisonType := req.GetString("comparison_type", "performance")

		meta := map[string]string{"etf_codes": etfCodes, "comparison_type": comparisonType}
		return r.runTextTool(ctx, "compare_etfs", meta, func(ctx context.Context) (string, error) {
			return r.compareETFsReport(ctx, etfCodes, comparisonType)
		})
	})
}

// etfAnalysisReport renders the analysis bundle as a Chinese markdown
// report. The basic section always appears; performance and holdings
// follow the requested scope.
func (r *Registry) etfAnalysisReport(ctx context.Context, etfCode, analysisType string) (string, error) {
	switch analysisType {
	case "basic", "performance", "comprehensive":
	default:
		return "", datasource.InvalidInput("unsupported analysis_type %q; valid: basic, performance, comprehensive", analysisType)
	}

	bundle, err := r.etf.GetETFAnalysis(ctx, etfCode)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("# ETF分析报告\n\n")
	b.WriteString(analysisDisclaimer)

	basic := bundle.BasicInfo
	if !basic.Empty() {
		b.WriteString("## 基本信息\n")
		fmt.Fprintf(&b, "- ETF名称: %s\n", cellString(basic, 0, "名称"))
		fmt.Fprintf(&b, "- ETF代码: %s\n", cellString(basic, 0, "代码"))
		fmt.Fprintf(&b, "- 最新价: %s\n", cellString(basic, 0, "最新价"))
		fmt.Fprintf(&b, "- 涨跌幅: %s%%\n", cellString(basic, 0, "涨跌幅"))
		fmt.Fprintf(&b, "- 成交量: %s\n", cellString(basic, 0, "成交量"))
		b.WriteString("\n")
	}

	if analysisType != "basic" {
		if closes := closeSeries(bundle.RecentPerformance, "收盘"); len(closes) > 0 {
			b.WriteString("## 近期表现分析\n")
			latest := closes[len(closes)-1]
			fmt.Fprintf(&b, "- 最新收盘价: %s\n", trimFloat(latest))
			if first := closes[0]; first != 0 {
				change := (latest/first - 1) * 100
				fmt.Fprintf(&b, "- 30日涨跌幅: %.2f%%\n", change)
			}
			if vol, ok := annualizedVolatility(closes); ok {
				fmt.Fprintf(&b, "- 年化波动率: %.2f%%\n", vol)
			}
			b.WriteString("\n")
		}
	}

	if analysisType == "comprehensive" {
		holdings := bundle.Holdings
		if !holdings.Empty() {
			b.WriteString("## 持仓分析\n")
			fmt.Fprintf(&b, "- 成分股数量: %d\n", holdings.NumRows())
			b.WriteString("\n### 前5大持仓\n")
			for _, i := range topHoldingIndexes(holdings, 5) {
				fmt.Fprintf(&b, "- %s: %s%%\n", cellString(holdings, i, "股票名称"), cellString(holdings, i, "占净值比例"))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("## 数据解读建议\n")
	b.WriteString("- 以上数据仅供参考，建议结合市场环境和投资目标进行综合分析\n")
	b.WriteString("- ETF表现受跟踪指数和成分股影响，历史数据不代表未来表现\n")
	b.WriteString("- 投资决策应基于个人风险承受能力和投资目标\n")
	return b.String(), nil
}

// compareETFsReport fetches the quote snapshot for each code and lays
// them out in one comparison table. A failed fetch becomes a marked row
// rather than failing the whole comparison.
func (r *Registry) compareETFsReport(ctx context.Context, etfCodes, comparisonType string) (string, error) {
	switch comparisonType {
	case "performance", "holdings", "comprehensive":
	default:
		return "", datasource.InvalidInput("unsupported comparison_type %q; valid: performance, holdings, comprehensive", comparisonType)
	}

	var codes []string
	for _, code := range strings.Split(etfCodes, ",") {
		if code = strings.TrimSpace(code); code != "" {
			codes = append(codes, code)
		}
	}
	if len(codes) < 2 {
		return "", datasource.InvalidInput("at least 2 ETF codes are required for comparison, got %d", len(codes))
	}

	var b strings.Builder
	b.WriteString("# ETF比较分析\n\n")
	b.WriteString(analysisDisclaimer)

	b.WriteString("## 基本信息比较\n")
	b.WriteString("| ETF代码 | 名称 | 最新价 | 涨跌幅 | 成交量 |\n")
	b.WriteString("|---------|------|--------|--------|--------|\n")
	for _, code := range codes {
		basic, err := r.etf.GetETFBasicInfo(ctx, code)
		if err != nil || basic.Empty() {
			r.log.Warn().Err(err).Str("etf_code", code).Msg("comparison fetch failed")
			fmt.Fprintf(&b, "| %s | 数据获取失败 | N/A | N/A | N/A |\n", code)
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s%% | %s |\n",
			code, cellString(basic, 0, "名称"), cellString(basic, 0, "最新价"),
			cellString(basic, 0, "涨跌幅"), cellString(basic, 0, "成交量"))
	}

	if comparisonType != "performance" {
		b.WriteString("\n## 持仓重合度\n")
		overlap := r.holdingsOverlap(ctx, codes)
		if overlap == "" {
			b.WriteString("- 持仓数据不足，无法比较\n")
		} else {
			b.WriteString(overlap)
		}
	}

	b.WriteString("\n## 比较结论\n")
	b.WriteString("- 以上数据仅供参考，建议结合具体投资需求进行选择\n")
	b.WriteString("- 不同ETF的跟踪指数和投资策略可能存在差异\n")
	b.WriteString("- 投资决策应基于个人风险承受能力和投资目标\n")
	return b.String(), nil
}

// holdingsOverlap lists the stocks held by more than one of the
// compared ETFs. Codes whose holdings cannot be fetched are skipped.
func (r *Registry) holdingsOverlap(ctx context.Context, etfCodes []string) string {
	held := map[string][]string{} // stock name -> holding ETFs
	fetched := 0
	for _, code := range etfCodes {
		holdings, err := r.etf.GetETFHoldings(ctx, code, "")
		if err != nil {
			r.log.Warn().Err(err).Str("etf_code", code).Msg("holdings fetch failed")
			continue
		}
		fetched++
		for i := range holdings.Rows {
			name := cellString(holdings, i, "股票名称")
			if name != "" {
				held[name] = append(held[name], code)
			}
		}
	}
	if fetched < 2 {
		return ""
	}

	var shared []string
	for name, owners := range held {
		if len(owners) > 1 {
			shared = append(shared, fmt.Sprintf("- %s (%s)\n", name, strings.Join(owners, ", ")))
		}
	}
	if len(shared) == 0 {
		return "- 披露持仓中无重合个股\n"
	}
	sort.Strings(shared)
	return strings.Join(shared, "")
}

// cellString reads a cell as display text regardless of its dynamic
// type.
func cellString(t *models.Table, row int, column string) string {
	switch v := t.Cell(row, column).(type) {
	case nil:
		return "N/A"
	case string:
		return v
	case float64:
		return trimFloat(v)
	default:
		return fmt.Sprint(v)
	}
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// closeSeries extracts a float column preserving row order.
func closeSeries(t *models.Table, column string) []float64 {
	if t == nil {
		return nil
	}
	var out []float64
	for i := range t.Rows {
		if v, ok := t.Cell(i, column).(float64); ok {
			out = append(out, v)
		}
	}
	return out
}

// annualizedVolatility computes the annualized standard deviation of
// daily returns, in percent. Needs at least three closes.
func annualizedVolatility(closes []float64) (float64, bool) {
	if len(closes) < 3 {
		return 0, false
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			return 0, false
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance) * math.Sqrt(252) * 100, true
}

// topHoldingIndexes ranks holdings by net-value share and returns the
// row indexes of the largest n.
func topHoldingIndexes(t *models.Table, n int) []int {
	type ranked struct {
		index int
		share float64
	}
	items := make([]ranked, 0, t.NumRows())
	for i := range t.Rows {
		share := 0.0
		if raw, ok := t.Cell(i, "占净值比例").(string); ok {
			if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
				share = v
			}
		}
		items = append(items, ranked{index: i, share: share})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].share > items[j].share })
	if len(items) > n {
		items = items[:n]
	}
	out := make([]int, len(items))
	for i, item := range items {
		out[i] = item.index
	}
	return out
}
