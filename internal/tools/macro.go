package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/seenimoa/asharemcp/pkg/models"
)

type macroMethod func(ctx context.Context, startDate, endDate string) (*models.Table, error)

// registerMacroTools registers the macroeconomic series tools. All four
// share the optional date-range argument shape.
func (r *Registry) registerMacroTools(s *server.MCPServer) {
	series := []struct {
		name        string
		description string
		method      macroMethod
	}{
		{"get_deposit_rate_data", "Fetch benchmark deposit rate adjustments published by the People's Bank of China.",
			func(ctx context.Context, startDate, endDate string) (*models.Table, error) {
				return r.stock.GetDepositRateData(ctx, startDate, endDate)
			}},
		{"get_loan_rate_data", "Fetch benchmark loan rate adjustments published by the People's Bank of China.",
			func(ctx context.Context, startDate, endDate string) (*models.Table, error) {
				return r.stock.GetLoanRateData(ctx, startDate, endDate)
			}},
		{"get_required_reserve_ratio_data", "Fetch required reserve ratio adjustments for Chinese banks.",
			func(ctx context.Context, startDate, endDate string) (*models.Table, error) {
				return r.stock.GetRequiredReserveRatioData(ctx, startDate, endDate)
			}},
		{"get_money_supply_data_month", "Fetch monthly money supply data (M0, M1, M2) with year-on-year growth.",
			func(ctx context.Context, startDate, endDate string) (*models.Table, error) {
				return r.stock.GetMoneySupplyDataMonth(ctx, startDate, endDate)
			}},
	}

	for _, entry := range series {
		name, method := entry.name, entry.method
		r.add(s, mcp.NewTool(name,
			mcp.WithDescription(entry.description),
			mcp.WithString("start_date", mcp.Description("Start date, YYYY-MM-DD. Optional.")),
			mcp.WithString("end_date", mcp.Description("End date, YYYY-MM-DD. Optional.")),
			limitOption(),
			formatOption(),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			startDate := req.GetString("start_date", "")
			endDate := req.GetString("end_date", "")
			limit := req.GetInt("limit", 0)
			format := req.GetString("format", "markdown")

			meta := map[string]string{"start_date": startDate, "end_date": endDate}
			return r.runTableTool(ctx, name, meta, limit, format, func(ctx context.Context) (*models.Table, error) {
				return method(ctx, startDate, endDate)
			})
		})
	}
}
