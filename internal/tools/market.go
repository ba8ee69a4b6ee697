package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/seenimoa/asharemcp/internal/datasource"
	"github.com/seenimoa/asharemcp/pkg/codes"
	"github.com/seenimoa/asharemcp/pkg/models"
)

// formatOption is the shared output-format argument.
func formatOption() mcp.ToolOption {
	return mcp.WithString("format",
		mcp.Description("Output format: markdown (default), json or csv."),
		mcp.DefaultString("markdown"),
		mcp.Enum("markdown", "json", "csv"),
	)
}

// limitOption is the shared row-cap argument.
func limitOption() mcp.ToolOption {
	return mcp.WithNumber("limit",
		mcp.Description("Maximum number of rows to return (default 250)."),
		mcp.DefaultNumber(250),
	)
}

// normalizeCode folds a code-format failure into the invalid-input kind
// so the pipeline reports it with the right prefix.
func normalizeCode(code string) (string, error) {
	norm, err := codes.Normalize(code)
	if err != nil {
		return "", datasource.InvalidInput("%v", err)
	}
	return norm, nil
}

func (r *Registry) registerMarketTools(s *server.MCPServer) {
	r.add(s, mcp.NewTool("get_historical_k_data",
		mcp.WithDescription("Fetch historical K-line (OHLCV) data for a Chinese A-share stock. Codes like 'sh.600000' or '000001' are accepted."),
		mcp.WithString("code", mcp.Required(), mcp.Description("Stock code, e.g. 'sh.600000', 'sz.000001' or bare '600000'.")),
		mcp.WithString("start_date", mcp.Required(), mcp.Description("Start date, YYYY-MM-DD.")),
		mcp.WithString("end_date", mcp.Required(), mcp.Description("End date, YYYY-MM-DD.")),
		mcp.WithString("frequency",
			mcp.Description("Bar frequency: d (daily), w (weekly), m (monthly), or intraday minutes 5/15/30/60."),
			mcp.DefaultString("d"),
			mcp.Enum("d", "w", "m", "5", "15", "30", "60")),
		mcp.WithString("adjust_flag",
			mcp.Description("Price adjustment: 1 forward-adjusted, 2 backward-adjusted, 3 unadjusted."),
			mcp.DefaultString("3"),
			mcp.Enum("1", "2", "3")),
		limitOption(),
		formatOption(),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rawCode, err := req.RequireString("code")
		if err != nil {
			return textResult("Error: Invalid input parameter. code is required"), nil
		}
		startDate, _ := req.RequireString("start_date")
		endDate, _ := req.RequireString("end_date")
		frequency := req.GetString("frequency", "d")
		adjustFlag := req.GetString("adjust_flag", "3")
		limit := req.GetInt("limit", 0)
		format := req.GetString("format", "markdown")

		meta := map[string]string{
			"code": rawCode, "start_date": startDate, "end_date": endDate,
			"frequency": frequency, "adjust_flag": adjustFlag,
		}
		return r.runTableTool(ctx, "get_historical_k_data", meta, limit, format, func(ctx context.Context) (*models.Table, error) {
			code, err := normalizeCode(rawCode)
			if err != nil {
				return nil, err
			}
			meta["code"] = code
			return r.stock.GetHistoricalKData(ctx, code, startDate, endDate, frequency, adjustFlag)
		})
	})

	r.add(s, mcp.NewTool("get_stock_basic_info",
		mcp.WithDescription("Fetch the latest quote snapshot for a single A-share stock: name, price, change, volume, turnover and day range."),
		mcp.WithString("code", mcp.Required(), mcp.Description("Stock code, e.g. 'sh.600000'.")),
		formatOption(),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rawCode, err := req.RequireString("code")
		if err != nil {
			return textResult("Error: Invalid input parameter. code is required"), nil
		}
		format := req.GetString("format", "markdown")

		meta := map[string]string{"code": rawCode}
		return r.runTableTool(ctx, "get_stock_basic_info", meta, 0, format, func(ctx context.Context) (*models.Table, error) {
			code, err := normalizeCode(rawCode)
			if err != nil {
				return nil, err
			}
			meta["code"] = code
			return r.stock.GetStockBasicInfo(ctx, code)
		})
	})

	r.add(s, mcp.NewTool("get_dividend_data",
		mcp.WithDescription("Fetch dividend and bonus share records for a stock in a given year."),
		mcp.WithString("code", mcp.Required(), mcp.Description("Stock code, e.g. 'sh.600000'.")),
		mcp.WithString("year", mcp.Required(), mcp.Description("4-digit year, e.g. '2024'.")),
		mcp.WithString("year_type",
			mcp.Description("Year dimension: 'report' (announcement year) or 'operate' (ex-dividend year)."),
			mcp.DefaultString("report"),
			mcp.Enum("report", "operate")),
		limitOption(),
		formatOption(),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rawCode, err := req.RequireString("code")
		if err != nil {
			return textResult("Error: Invalid input parameter. code is required"), nil
		}
		year, _ := req.RequireString("year")
		yearType := req.GetString("year_type", "report")
		limit := req.GetInt("limit", 0)
		format := req.GetString("format", "markdown")

		meta := map[string]string{"code": rawCode, "year": year, "year_type": yearType}
		return r.runTableTool(ctx, "get_dividend_data", meta, limit, format, func(ctx context.Context) (*models.Table, error) {
			code, err := normalizeCode(rawCode)
			if err != nil {
				return nil, err
			}
			meta["code"] = code
			return r.stock.GetDividendData(ctx, code, year, yearType)
		})
	})

	r.add(s, mcp.NewTool("get_trade_dates",
		mcp.WithDescription("Fetch the exchange trading calendar: one row per calendar day with an is_trading_day flag ('1' trading, '0' closed)."),
		mcp.WithString("start_date", mcp.Description("Start date, YYYY-MM-DD. Defaults to 2015-01-01.")),
		mcp.WithString("end_date", mcp.Description("End date, YYYY-MM-DD. Defaults to today.")),
		limitOption(),
		formatOption(),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		startDate := req.GetString("start_date", "")
		endDate := req.GetString("end_date", "")
		limit := req.GetInt("limit", 0)
		format := req.GetString("format", "markdown")

		meta := map[string]string{"start_date": startDate, "end_date": endDate}
		return r.runTableTool(ctx, "get_trade_dates", meta, limit, format, func(ctx context.Context) (*models.Table, error) {
			return r.stock.GetTradeDates(ctx, startDate, endDate)
		})
	})

	r.add(s, mcp.NewTool("get_all_stock",
		mcp.WithDescription("List all A-share stocks and key indexes with their codes, names and trading status."),
		mcp.WithString("date", mcp.Description("As-of date, YYYY-MM-DD. Defaults to the current session.")),
		limitOption(),
		formatOption(),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date := req.GetString("date", "")
		limit := req.GetInt("limit", 0)
		format := req.GetString("format", "markdown")

		meta := map[string]string{"date": date}
		return r.runTableTool(ctx, "get_all_stock", meta, limit, format, func(ctx context.Context) (*models.Table, error) {
			return r.stock.GetAllStock(ctx, date)
		})
	})

	r.add(s, mcp.NewTool("search_stocks",
		mcp.WithDescription("Search stocks by name or code substring across the full A-share list."),
		mcp.WithString("keyword", mcp.Required(), mcp.Description("Substring matched against code and name, e.g. '银行' or '600'.")),
		limitOption(),
		formatOption(),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		keyword, err := req.RequireString("keyword")
		if err != nil || strings.TrimSpace(keyword) == "" {
			return textResult("Error: Invalid input parameter. keyword is required"), nil
		}
		limit := req.GetInt("limit", 0)
		format := req.GetString("format", "markdown")

		meta := map[string]string{"keyword": keyword}
		return r.runTableTool(ctx, "search_stocks", meta, limit, format, func(ctx context.Context) (*models.Table, error) {
			return r.searchStocks(ctx, keyword)
		})
	})

	r.add(s, mcp.NewTool("get_suspensions",
		mcp.WithDescription("List stocks that are currently suspended from trading."),
		mcp.WithString("date", mcp.Description("As-of date, YYYY-MM-DD. Defaults to the current session.")),
		limitOption(),
		formatOption(),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date := req.GetString("date", "")
		limit := req.GetInt("limit", 0)
		format := req.GetString("format", "markdown")

		meta := map[string]string{"date": date}
		return r.runTableTool(ctx, "get_suspensions", meta, limit, format, func(ctx context.Context) (*models.Table, error) {
			return r.suspendedStocks(ctx, date)
		})
	})

	r.add(s, mcp.NewTool("get_stock_industry",
		mcp.WithDescription("Fetch the industry classification for one stock, or for every A-share when no code is given."),
		mcp.WithString("code", mcp.Description("Stock code, e.g. 'sh.600000'. Empty returns all stocks.")),
		mcp.WithString("date", mcp.Description("As-of date, YYYY-MM-DD. The current classification is served.")),
		limitOption(),
		formatOption(),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		code := req.GetString("code", "")
		date := req.GetString("date", "")
		limit := req.GetInt("limit", 0)
		format := req.GetString("format", "markdown")

		meta := map[string]string{"code": code, "date": date}
		return r.runTableTool(ctx, "get_stock_industry", meta, limit, format, func(ctx context.Context) (*models.Table, error) {
			return r.stock.GetStockIndustry(ctx, code, date)
		})
	})

	r.add(s, mcp.NewTool("list_industries",
		mcp.WithDescription("List the distinct industry names in the current classification."),
		mcp.WithString("date", mcp.Description("As-of date, YYYY-MM-DD. The current classification is served.")),
		formatOption(),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date := req.GetString("date", "")
		format := req.GetString("format", "markdown")

		meta := map[string]string{"date": date}
		return r.runTableTool(ctx, "list_industries", meta, 0, format, func(ctx context.Context) (*models.Table, error) {
			return r.listIndustries(ctx, date)
		})
	})

	r.add(s, mcp.NewTool("get_industry_members",
		mcp.WithDescription("List the stocks classified under a given industry name."),
		mcp.WithString("industry", mcp.Required(), mcp.Description("Industry name as returned by list_industries, e.g. '银行'.")),
		mcp.WithString("date", mcp.Description("As-of date, YYYY-MM-DD. The current classification is served.")),
		limitOption(),
		formatOption(),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		industry, err := req.RequireString("industry")
		if err != nil || strings.TrimSpace(industry) == "" {
			return textResult("Error: Invalid input parameter. industry is required"), nil
		}
		date := req.GetString("date", "")
		limit := req.GetInt("limit", 0)
		format := req.GetString("format", "markdown")

		meta := map[string]string{"industry": industry, "date": date}
		return r.runTableTool(ctx, "get_industry_members", meta, limit, format, func(ctx context.Context) (*models.Table, error) {
			return r.industryMembers(ctx, industry, date)
		})
	})
}

// searchStocks filters the full stock list by a code or name substring.
func (r *Registry) searchStocks(ctx context.Context, keyword string) (*models.Table, error) {
	keyword = strings.TrimSpace(keyword)
	all, err := r.stock.GetAllStock(ctx, "")
	if err != nil {
		return nil, err
	}

	t := models.NewTable(all.Columns...)
	lower := strings.ToLower(keyword)
	for i := range all.Rows {
		code, _ := all.Cell(i, "code").(string)
		name, _ := all.Cell(i, "code_name").(string)
		if strings.Contains(strings.ToLower(code), lower) || strings.Contains(name, keyword) {
			t.AppendRow(all.Rows[i]...)
		}
	}
	if t.Empty() {
		return nil, datasource.NotFound("no stocks matching %q", keyword)
	}
	return t, nil
}

// suspendedStocks filters the full stock list to rows with a '0'
// trading status.
func (r *Registry) suspendedStocks(ctx context.Context, date string) (*models.Table, error) {
	all, err := r.stock.GetAllStock(ctx, date)
	if err != nil {
		return nil, err
	}

	t := models.NewTable(all.Columns...)
	for i := range all.Rows {
		if status, _ := all.Cell(i, "tradeStatus").(string); status == "0" {
			t.AppendRow(all.Rows[i]...)
		}
	}
	if t.Empty() {
		return nil, datasource.NotFound("no suspended stocks")
	}
	return t, nil
}

// listIndustries dedupes the industry column of the full classification
// and counts the members per industry.
func (r *Registry) listIndustries(ctx context.Context, date string) (*models.Table, error) {
	full, err := r.stock.GetStockIndustry(ctx, "", date)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	var order []string
	for i := range full.Rows {
		industry, _ := full.Cell(i, "industry").(string)
		if industry == "" {
			continue
		}
		if _, seen := counts[industry]; !seen {
			order = append(order, industry)
		}
		counts[industry]++
	}
	if len(order) == 0 {
		return nil, datasource.NotFound("no industry classification available")
	}

	t := models.NewTable("industry", "stock_count")
	for _, industry := range order {
		t.AppendRow(industry, float64(counts[industry]))
	}
	return t, nil
}

// industryMembers filters the full classification to one industry.
func (r *Registry) industryMembers(ctx context.Context, industry, date string) (*models.Table, error) {
	full, err := r.stock.GetStockIndustry(ctx, "", date)
	if err != nil {
		return nil, err
	}

	t := models.NewTable(full.Columns...)
	for i := range full.Rows {
		if got, _ := full.Cell(i, "industry").(string); got == industry {
			t.AppendRow(full.Rows[i]...)
		}
	}
	if t.Empty() {
		return nil, datasource.NotFound("no stocks classified under industry %q", industry)
	}
	return t, nil
}
