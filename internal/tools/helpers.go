package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/seenimoa/asharemcp/internal/datasource"
)

// toolConstants documents the enumerated argument values accepted by
// the data tools, keyed by constant kind.
var toolConstants = map[string][]string{
	"frequency":   {"d (daily)", "w (weekly)", "m (monthly)", "5 (5-minute)", "15 (15-minute)", "30 (30-minute)", "60 (60-minute)"},
	"adjust_flag": {"1 (forward-adjusted)", "2 (backward-adjusted)", "3 (unadjusted)"},
	"year_type":   {"report (announcement year)", "operate (ex-dividend year)"},
	"index":       {"sz50 (SSE 50)", "hs300 (CSI 300)", "zz500 (CSI 500)"},
}

// registerHelperTools registers small utility tools that involve no
// upstream data source.
func (r *Registry) registerHelperTools(s *server.MCPServer) {
	r.add(s, mcp.NewTool("normalize_stock_code",
		mcp.WithDescription("Normalize a stock code to the canonical 'sh.600000' / 'sz.000001' form. Accepts prefixed, suffixed and bare 6-digit codes."),
		mcp.WithString("code", mcp.Required(), mcp.Description("Raw stock code, e.g. '600000', '000001.SZ' or 'sh600000'.")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		code, err := req.RequireString("code")
		if err != nil {
			return textResult("Error: Invalid input parameter. code is required"), nil
		}
		meta := map[string]string{"code": code}
		return r.runTextTool(ctx, "normalize_stock_code", meta, func(ctx context.Context) (string, error) {
			return normalizeCode(code)
		})
	})

	r.add(s, mcp.NewTool("list_tool_constants",
		mcp.WithDescription("List the enumerated argument values accepted by the data tools: frequency, adjust_flag, year_type and index keys."),
		mcp.WithString("kind",
			mcp.Description("Restrict to one constant kind. Empty lists all."),
			mcp.Enum("frequency", "adjust_flag", "year_type", "index")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind := req.GetString("kind", "")
		meta := map[string]string{"kind": kind}
		return r.runTextTool(ctx, "list_tool_constants", meta, func(ctx context.Context) (string, error) {
			if kind != "" {
				values, ok := toolConstants[kind]
				if !ok {
					return "", datasource.InvalidInput("unknown constant kind %q; valid: frequency, adjust_flag, year_type, index", kind)
				}
				return formatConstants(kind, values), nil
			}
			var b strings.Builder
			for _, k := range []string{"frequency", "adjust_flag", "year_type", "index"} {
				if b.Len() > 0 {
					b.WriteString("\n")
				}
				b.WriteString(formatConstants(k, toolConstants[k]))
			}
			return b.String(), nil
		})
	})
}

func formatConstants(kind string, values []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", kind)
	for _, v := range values {
		fmt.Fprintf(&b, "  - %s\n", v)
	}
	return strings.TrimRight(b.String(), "\n")
}
