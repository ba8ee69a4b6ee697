package tools

import (
	"context"
	"regexp"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/seenimoa/asharemcp/internal/datasource"
	"github.com/seenimoa/asharemcp/pkg/models"
)

var bareSixDigits = regexp.MustCompile(`^[0-9]{6}$`)

func (r *Registry) registerRealtimeTools(s *server.MCPServer) {
	r.add(s, mcp.NewTool("get_realtime_quote",
		mcp.WithDescription("Fetch the current quote for an instrument. Bare 6-digit codes are probed against the ETF list first, then the A-share list."),
		mcp.WithString("code", mcp.Required(), mcp.Description("Instrument code: '510300', '600000' or 'sh.600000'.")),
		formatOption(),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		code, err := req.RequireString("code")
		if err != nil {
			return textResult("Error: Invalid input parameter. code is required"), nil
		}
		format := req.GetString("format", "markdown")

		meta := map[string]string{"code": code}
		return r.runTableTool(ctx, "get_realtime_quote", meta, 0, format, func(ctx context.Context) (*models.Table, error) {
			return r.realtimeQuote(ctx, code)
		})
	})
}

// realtimeQuote resolves an ambiguous code. ETFs and stocks share the
// 6-digit space, so a bare code is tried as an ETF before falling back
// to the stock list. Prefixed codes skip the ETF probe.
func (r *Registry) realtimeQuote(ctx context.Context, code string) (*models.Table, error) {
	if bareSixDigits.MatchString(code) {
		t, err := r.etf.GetETFBasicInfo(ctx, code)
		if err == nil {
			return t, nil
		}
		if kind, ok := datasource.KindOf(err); !ok || kind != datasource.KindNotFound {
			return nil, err
		}
	}

	norm, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	return r.stock.GetStockBasicInfo(ctx, norm)
}
