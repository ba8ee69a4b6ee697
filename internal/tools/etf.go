package tools

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/seenimoa/asharemcp/internal/datasource"
	"github.com/seenimoa/asharemcp/pkg/models"
)

func (r *Registry) registerETFTools(s *server.MCPServer) {
	r.add(s, mcp.NewTool("get_etf_basic_info",
		mcp.WithDescription("Fetch the latest quote snapshot for an ETF: name, price, change, volume and day range."),
		mcp.WithString("etf_code", mcp.Required(), mcp.Description("6-digit ETF code, e.g. '510300' or '159919'.")),
		formatOption(),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		etfCode, err := req.RequireString("etf_code")
		if err != nil {
			return textResult("Error: Invalid input parameter. etf_code is required"), nil
		}
		format := req.GetString("format", "markdown")

		meta := map[string]string{"etf_code": etfCode}
		return r.runTableTool(ctx, "get_etf_basic_info", meta, 0, format, func(ctx context.Context) (*models.Table, error) {
			return r.etf.GetETFBasicInfo(ctx, etfCode)
		})
	})

	r.add(s, mcp.NewTool("get_etf_historical_data",
		mcp.WithDescription("Fetch historical OHLCV data for an ETF."),
		mcp.WithString("etf_code", mcp.Required(), mcp.Description("6-digit ETF code, e.g. '510300'.")),
		mcp.WithString("start_date", mcp.Required(), mcp.Description("Start date, YYYY-MM-DD.")),
		mcp.WithString("end_date", mcp.Required(), mcp.Description("End date, YYYY-MM-DD.")),
		mcp.WithString("frequency",
			mcp.Description("Bar frequency: d (daily), w (weekly) or m (monthly)."),
			mcp.DefaultString("d"),
			mcp.Enum("d", "w", "m")),
		limitOption(),
		formatOption(),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		etfCode, err := req.RequireString("etf_code")
		if err != nil {
			return textResult("Error: Invalid input parameter. etf_code is required"), nil
		}
		startDate, _ := req.RequireString("start_date")
		endDate, _ := req.RequireString("end_date")
		frequency := req.GetString("frequency", "d")
		limit := req.GetInt("limit", 0)
		format := req.GetString("format", "markdown")

		meta := map[string]string{
			"etf_code": etfCode, "start_date": startDate, "end_date": endDate, "frequency": frequency,
		}
		return r.runTableTool(ctx, "get_etf_historical_data", meta, limit, format, func(ctx context.Context) (*models.Table, error) {
			return r.etf.GetETFHistoricalData(ctx, etfCode, startDate, endDate, frequency)
		})
	})

	r.add(s, mcp.NewTool("get_etf_list",
		mcp.WithDescription("List ETFs traded on the Chinese exchanges with their latest quotes."),
		mcp.WithString("market",
			mcp.Description("Market filter: all (default), sh (Shanghai) or sz (Shenzhen)."),
			mcp.DefaultString("all"),
			mcp.Enum("all", "sh", "sz")),
		limitOption(),
		formatOption(),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		market := req.GetString("market", "all")
		limit := req.GetInt("limit", 0)
		format := req.GetString("format", "markdown")

		meta := map[string]string{"market": market}
		return r.runTableTool(ctx, "get_etf_list", meta, limit, format, func(ctx context.Context) (*models.Table, error) {
			return r.etf.GetETFList(ctx, market)
		})
	})

	r.add(s, mcp.NewTool("get_etf_net_value",
		mcp.WithDescription("Fetch the net asset value history for an ETF: unit NAV, accumulated NAV and daily growth."),
		mcp.WithString("etf_code", mcp.Required(), mcp.Description("6-digit ETF code, e.g. '510300'.")),
		mcp.WithString("start_date", mcp.Required(), mcp.Description("Start date, YYYY-MM-DD.")),
		mcp.WithString("end_date", mcp.Required(), mcp.Description("End date, YYYY-MM-DD.")),
		limitOption(),
		formatOption(),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		etfCode, err := req.RequireString("etf_code")
		if err != nil {
			return textResult("Error: Invalid input parameter. etf_code is required"), nil
		}
		startDate, _ := req.RequireString("start_date")
		endDate, _ := req.RequireString("end_date")
		limit := req.GetInt("limit", 0)
		format := req.GetString("format", "markdown")

		meta := map[string]string{"etf_code": etfCode, "start_date": startDate, "end_date": endDate}
		return r.runTableTool(ctx, "get_etf_net_value", meta, limit, format, func(ctx context.Context) (*models.Table, error) {
			return r.etf.GetETFNetValue(ctx, etfCode, startDate, endDate)
		})
	})

	r.add(s, mcp.NewTool("get_etf_holdings",
		mcp.WithDescription("Fetch the disclosed stock holdings of an ETF for the latest quarter, or the disclosure year of a given date."),
		mcp.WithString("etf_code", mcp.Required(), mcp.Description("6-digit ETF code, e.g. '510300'.")),
		mcp.WithString("date", mcp.Description("Disclosure date, YYYY-MM-DD. Empty selects the latest quarter.")),
		limitOption(),
		formatOption(),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		etfCode, err := req.RequireString("etf_code")
		if err != nil {
			return textResult("Error: Invalid input parameter. etf_code is required"), nil
		}
		date := req.GetString("date", "")
		limit := req.GetInt("limit", 0)
		format := req.GetString("format", "markdown")

		meta := map[string]string{"etf_code": etfCode, "date": date}
		return r.runTableTool(ctx, "get_etf_holdings", meta, limit, format, func(ctx context.Context) (*models.Table, error) {
			return r.etf.GetETFHoldings(ctx, etfCode, date)
		})
	})

	r.add(s, mcp.NewTool("get_etf_top_holdings",
		mcp.WithDescription("Fetch the largest disclosed holdings of an ETF, ranked by share of net value."),
		mcp.WithString("etf_code", mcp.Required(), mcp.Description("6-digit ETF code, e.g. '510300'.")),
		mcp.WithNumber("top_n",
			mcp.Description("Number of holdings to return (default 10)."),
			mcp.DefaultNumber(10)),
		formatOption(),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		etfCode, err := req.RequireString("etf_code")
		if err != nil {
			return textResult("Error: Invalid input parameter. etf_code is required"), nil
		}
		topN := req.GetInt("top_n", 10)
		format := req.GetString("format", "markdown")

		meta := map[string]string{"etf_code": etfCode, "top_n": strconv.Itoa(topN)}
		return r.runTableTool(ctx, "get_etf_top_holdings", meta, 0, format, func(ctx context.Context) (*models.Table, error) {
			return r.topHoldings(ctx, etfCode, topN)
		})
	})
}

// topHoldings sorts the disclosed holdings by net-value share and keeps
// the top n.
func (r *Registry) topHoldings(ctx context.Context, etfCode string, topN int) (*models.Table, error) {
	if topN <= 0 {
		return nil, datasource.InvalidInput("top_n must be positive, got %d", topN)
	}
	holdings, err := r.etf.GetETFHoldings(ctx, etfCode, "")
	if err != nil {
		return nil, err
	}

	type ranked struct {
		share float64
		row   []any
	}
	items := make([]ranked, 0, holdings.NumRows())
	for i := range holdings.Rows {
		share := 0.0
		if raw, ok := holdings.Cell(i, "占净值比例").(string); ok {
			if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
				share = v
			}
		}
		items = append(items, ranked{share: share, row: holdings.Rows[i]})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].share > items[j].share })
	if len(items) > topN {
		items = items[:topN]
	}

	t := models.NewTable(holdings.Columns...)
	for _, item := range items {
		t.AppendRow(item.row...)
	}
	return t, nil
}
