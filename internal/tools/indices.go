package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/seenimoa/asharemcp/internal/datasource"
	"github.com/seenimoa/asharemcp/pkg/models"
)

type indexMethod func(ctx context.Context, date string) (*models.Table, error)

// registerIndexTools registers the index constituent tools: one tool
// per index plus a generic dispatcher.
func (r *Registry) registerIndexTools(s *server.MCPServer) {
	indexes := []struct {
		name        string
		key         string
		description string
		method      indexMethod
	}{
		{"get_sz50_stocks", "sz50", "List the constituent stocks of the SSE 50 index.",
			func(ctx context.Context, date string) (*models.Table, error) { return r.stock.GetSZ50Stocks(ctx, date) }},
		{"get_hs300_stocks", "hs300", "List the constituent stocks of the CSI 300 index.",
			func(ctx context.Context, date string) (*models.Table, error) { return r.stock.GetHS300Stocks(ctx, date) }},
		{"get_zz500_stocks", "zz500", "List the constituent stocks of the CSI 500 index.",
			func(ctx context.Context, date string) (*models.Table, error) { return r.stock.GetZZ500Stocks(ctx, date) }},
	}

	dispatch := map[string]indexMethod{}
	for _, index := range indexes {
		name, method := index.name, index.method
		dispatch[index.key] = method
		r.add(s, mcp.NewTool(name,
			mcp.WithDescription(index.description),
			mcp.WithString("date", mcp.Description("As-of date, YYYY-MM-DD. The current constituents are served.")),
			limitOption(),
			formatOption(),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			date := req.GetString("date", "")
			limit := req.GetInt("limit", 0)
			format := req.GetString("format", "markdown")

			meta := map[string]string{"date": date}
			return r.runTableTool(ctx, name, meta, limit, format, func(ctx context.Context) (*models.Table, error) {
				return method(ctx, date)
			})
		})
	}

	r.add(s, mcp.NewTool("get_index_constituents",
		mcp.WithDescription("List the constituent stocks of a major index selected by name."),
		mcp.WithString("index", mcp.Required(),
			mcp.Description("Index key: sz50 (SSE 50), hs300 (CSI 300) or zz500 (CSI 500)."),
			mcp.Enum("sz50", "hs300", "zz500")),
		mcp.WithString("date", mcp.Description("As-of date, YYYY-MM-DD. The current constituents are served.")),
		limitOption(),
		formatOption(),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		index, err := req.RequireString("index")
		if err != nil {
			return textResult("Error: Invalid input parameter. index is required"), nil
		}
		date := req.GetString("date", "")
		limit := req.GetInt("limit", 0)
		format := req.GetString("format", "markdown")

		meta := map[string]string{"index": index, "date": date}
		return r.runTableTool(ctx, "get_index_constituents", meta, limit, format, func(ctx context.Context) (*models.Table, error) {
			method, ok := dispatch[index]
			if !ok {
				return nil, datasource.InvalidInput("unsupported index %q; valid: sz50, hs300, zz500", index)
			}
			return method(ctx, date)
		})
	})
}
