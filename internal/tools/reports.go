package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/seenimoa/asharemcp/pkg/models"
)

// reportMethod is one quarterly financial report fetch on the data
// source.
type reportMethod func(ctx context.Context, code, year string, quarter int) (*models.Table, error)

// registerReportTools registers the six quarterly report tools. They
// share one argument shape and one pipeline; only the dataset differs.
func (r *Registry) registerReportTools(s *server.MCPServer) {
	reports := []struct {
		name        string
		description string
		method      reportMethod
	}{
		{"get_profit_data", "Fetch quarterly profitability data for a stock: EPS, ROE, net margin, gross margin.",
			func(ctx context.Context, code, year string, quarter int) (*models.Table, error) {
				return r.stock.GetProfitData(ctx, code, year, quarter)
			}},
		{"get_operation_data", "Fetch quarterly operating capability data for a stock: receivable, inventory and asset turnover.",
			func(ctx context.Context, code, year string, quarter int) (*models.Table, error) {
				return r.stock.GetOperationData(ctx, code, year, quarter)
			}},
		{"get_growth_data", "Fetch quarterly growth data for a stock: year-on-year revenue, profit and asset growth.",
			func(ctx context.Context, code, year string, quarter int) (*models.Table, error) {
				return r.stock.GetGrowthData(ctx, code, year, quarter)
			}},
		{"get_balance_data", "Fetch quarterly balance sheet ratios for a stock: current ratio, quick ratio, liability to assets.",
			func(ctx context.Context, code, year string, quarter int) (*models.Table, error) {
				return r.stock.GetBalanceData(ctx, code, year, quarter)
			}},
		{"get_cash_flow_data", "Fetch quarterly cash flow ratios for a stock: operating cash flow against revenue and profit.",
			func(ctx context.Context, code, year string, quarter int) (*models.Table, error) {
				return r.stock.GetCashFlowData(ctx, code, year, quarter)
			}},
		{"get_dupont_data", "Fetch quarterly DuPont analysis data for a stock: ROE decomposition into margin, turnover and leverage.",
			func(ctx context.Context, code, year string, quarter int) (*models.Table, error) {
				return r.stock.GetDupontData(ctx, code, year, quarter)
			}},
	}

	for _, report := range reports {
		name, method := report.name, report.method
		r.add(s, mcp.NewTool(name,
			mcp.WithDescription(report.description),
			mcp.WithString("code", mcp.Required(), mcp.Description("Stock code, e.g. 'sh.600000'.")),
			mcp.WithString("year", mcp.Required(), mcp.Description("4-digit year, e.g. '2024'.")),
			mcp.WithNumber("quarter", mcp.Required(), mcp.Description("Quarter 1-4.")),
			limitOption(),
			formatOption(),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			rawCode, err := req.RequireString("code")
			if err != nil {
				return textResult("Error: Invalid input parameter. code is required"), nil
			}
			year, _ := req.RequireString("year")
			quarter := req.GetInt("quarter", 0)
			limit := req.GetInt("limit", 0)
			format := req.GetString("format", "markdown")

			meta := map[string]string{"code": rawCode, "year": year, "quarter": fmt.Sprintf("%d", quarter)}
			return r.runTableTool(ctx, name, meta, limit, format, func(ctx context.Context) (*models.Table, error) {
				if err := validateYearQuarter(year, quarter); err != nil {
					return nil, err
				}
				code, err := normalizeCode(rawCode)
				if err != nil {
					return nil, err
				}
				meta["code"] = code
				return method(ctx, code, year, quarter)
			})
		})
	}
}
