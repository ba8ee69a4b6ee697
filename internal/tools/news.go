package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/seenimoa/asharemcp/pkg/models"
)

func (r *Registry) registerNewsTools(s *server.MCPServer) {
	r.add(s, mcp.NewTool("get_market_news",
		mcp.WithDescription("Fetch the latest Chinese market news headlines from financial RSS feeds, newest first."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of headlines (default 20)."),
			mcp.DefaultNumber(20)),
		formatOption(),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", 20)
		format := req.GetString("format", "markdown")

		return r.runTableTool(ctx, "get_market_news", nil, limit, format, func(ctx context.Context) (*models.Table, error) {
			return r.news.GetMarketNews(ctx, limit)
		})
	})
}
