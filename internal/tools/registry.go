package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/seenimoa/asharemcp/internal/calendar"
	"github.com/seenimoa/asharemcp/internal/datasource"
	"github.com/seenimoa/asharemcp/internal/render"
	"github.com/seenimoa/asharemcp/pkg/models"
)

// newsProvider is the slice of the news source the tools need.
type newsProvider interface {
	GetMarketNews(ctx context.Context, limit int) (*models.Table, error)
}

// Registry wires the tool handlers to their data sources and registers
// them on an MCP server.
type Registry struct {
	stock datasource.FinancialDataSource
	etf   datasource.ETFDataSource
	news  newsProvider
	cal   *calendar.Resolver

	log          zerolog.Logger
	defaultLimit int
	now          func() time.Time

	names []string
}

// Options configures a Registry.
type Options struct {
	Stock datasource.FinancialDataSource
	ETF   datasource.ETFDataSource
	News  newsProvider
	Log   zerolog.Logger

	// DefaultLimit is the row cap applied when a tool call does not set
	// one. Non-positive selects render.DefaultMaxRows.
	DefaultLimit int

	// Now overrides the clock, for tests. Nil selects time.Now.
	Now func() time.Time
}

// NewRegistry creates a Registry. The trading calendar resolver is
// derived from the stock source's trade-date feed.
func NewRegistry(opts Options) *Registry {
	limit := opts.DefaultLimit
	if limit <= 0 {
		limit = render.DefaultMaxRows
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Registry{
		stock:        opts.Stock,
		etf:          opts.ETF,
		news:         opts.News,
		cal:          calendar.NewResolver(opts.Stock),
		log:          opts.Log,
		defaultLimit: limit,
		now:          now,
	}
}

// add registers one tool and records its name for ToolNames.
func (r *Registry) add(s *server.MCPServer, tool mcp.Tool, handler server.ToolHandlerFunc) {
	r.names = append(r.names, tool.Name)
	s.AddTool(tool, handler)
}

// ToolNames returns the registered tool names in registration order.
func (r *Registry) ToolNames() []string {
	return append([]string(nil), r.names...)
}

// RegisterAll registers every tool on the server.
func (r *Registry) RegisterAll(s *server.MCPServer) {
	r.registerMarketTools(s)
	r.registerReportTools(s)
	r.registerIndexTools(s)
	r.registerMacroTools(s)
	r.registerDateTools(s)
	r.registerHelperTools(s)
	r.registerETFTools(s)
	r.registerAnalysisTools(s)
	r.registerNewsTools(s)
	r.registerRealtimeTools(s)
}
