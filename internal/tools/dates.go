package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/seenimoa/asharemcp/internal/calendar"
	"github.com/seenimoa/asharemcp/internal/datasource"
)

// registerDateTools registers the trading-calendar convenience tools.
// They answer with short strings rather than tables.
func (r *Registry) registerDateTools(s *server.MCPServer) {
	r.add(s, mcp.NewTool("get_latest_trading_date",
		mcp.WithDescription("Get the most recent trading date up to today, YYYY-MM-DD."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return r.runTextTool(ctx, "get_latest_trading_date", nil, func(ctx context.Context) (string, error) {
			return r.cal.LatestTradingDate(ctx, r.now()), nil
		})
	})

	r.add(s, mcp.NewTool("get_market_analysis_timeframe",
		mcp.WithDescription("Get a market analysis timeframe label tuned for the current calendar context, with its ISO date range."),
		mcp.WithString("period",
			mcp.Description("Analysis period: recent (default), quarter, half_year or year."),
			mcp.DefaultString("recent"),
			mcp.Enum("recent", "quarter", "half_year", "year")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		period := req.GetString("period", "recent")
		meta := map[string]string{"period": period}
		return r.runTextTool(ctx, "get_market_analysis_timeframe", meta, func(ctx context.Context) (string, error) {
			return calendar.AnalysisTimeframe(period, r.now()).String(), nil
		})
	})

	r.add(s, mcp.NewTool("is_trading_day",
		mcp.WithDescription("Check whether a given date is a trading day. Answers 'Yes' or 'No'."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Date to check, YYYY-MM-DD.")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date, err := req.RequireString("date")
		if err != nil {
			return textResult("Error: Invalid input parameter. date is required"), nil
		}
		meta := map[string]string{"date": date}
		return r.runTextTool(ctx, "is_trading_day", meta, func(ctx context.Context) (string, error) {
			trading, err := r.cal.IsTradingDay(ctx, date)
			if err != nil {
				return "", wrapCalendarErr(err)
			}
			if trading {
				return "Yes", nil
			}
			return "No", nil
		})
	})

	r.add(s, mcp.NewTool("previous_trading_day",
		mcp.WithDescription("Get the previous trading day before a given date. Returns the input date when none is found within 30 days."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Reference date, YYYY-MM-DD.")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date, err := req.RequireString("date")
		if err != nil {
			return textResult("Error: Invalid input parameter. date is required"), nil
		}
		meta := map[string]string{"date": date}
		return r.runTextTool(ctx, "previous_trading_day", meta, func(ctx context.Context) (string, error) {
			day, _, err := r.cal.PreviousTradingDay(ctx, date)
			if err != nil {
				return "", wrapCalendarErr(err)
			}
			return day, nil
		})
	})

	r.add(s, mcp.NewTool("next_trading_day",
		mcp.WithDescription("Get the next trading day after a given date. Returns the input date when none is found within 30 days."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Reference date, YYYY-MM-DD.")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date, err := req.RequireString("date")
		if err != nil {
			return textResult("Error: Invalid input parameter. date is required"), nil
		}
		meta := map[string]string{"date": date}
		return r.runTextTool(ctx, "next_trading_day", meta, func(ctx context.Context) (string, error) {
			day, _, err := r.cal.NextTradingDay(ctx, date)
			if err != nil {
				return "", wrapCalendarErr(err)
			}
			return day, nil
		})
	})
}

// wrapCalendarErr keeps kinded provider failures as-is and tags date
// parse failures as invalid input.
func wrapCalendarErr(err error) error {
	if _, ok := datasource.KindOf(err); ok {
		return err
	}
	return datasource.InvalidInput("%v", err)
}
