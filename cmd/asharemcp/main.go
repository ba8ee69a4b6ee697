// asharemcp: A-share market data MCP server
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/seenimoa/asharemcp/internal/config"
	"github.com/seenimoa/asharemcp/internal/datasource"
	"github.com/seenimoa/asharemcp/internal/tools"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "asharemcp",
	Short: "Chinese A-share market data MCP server",
	Long: `asharemcp exposes Chinese A-share equity, index, ETF and
macroeconomic data as MCP tools. Historical K-lines, quote snapshots,
financial reports, index constituents, the trading calendar and ETF
holdings are served as markdown, JSON or CSV tables over stdio or
streamable HTTP.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(toolsCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("asharemcp %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long:  "Run the MCP server over stdio (default) or streamable HTTP.",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger(cfg.Logging)

		transport := cfg.Server.Transport
		if flag, _ := cmd.Flags().GetString("transport"); flag != "" {
			transport = flag
		}
		addr := cfg.Server.HTTPAddr
		if flag, _ := cmd.Flags().GetString("addr"); flag != "" {
			addr = flag
		}

		srv, _ := buildServer(log)
		switch transport {
		case "stdio":
			log.Info().Str("transport", "stdio").Msg("starting MCP server")
			return server.ServeStdio(srv)
		case "http":
			log.Info().Str("transport", "http").Str("addr", addr).Msg("starting MCP server")
			httpServer := server.NewStreamableHTTPServer(srv)
			return httpServer.Start(addr)
		default:
			return fmt.Errorf("unsupported transport %q (valid: stdio, http)", transport)
		}
	},
}

func init() {
	serveCmd.Flags().String("transport", "", "transport override (stdio, http)")
	serveCmd.Flags().String("addr", "", "listen address for the http transport")
}

// --- Tools Command ---

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the registered MCP tools",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := zerolog.Nop()
		_, registry := buildServer(log)
		for _, name := range registry.ToolNames() {
			fmt.Println(name)
		}
		return nil
	},
}

// serverInstructions steers MCP clients toward the calendar tools
// instead of stale date assumptions, the way the upstream data demands.
func serverInstructions() string {
	currentDate := time.Now().Format("2006-01-02")
	return fmt.Sprintf(`今天是%s。提供中国A股市场数据分析和ETF查询工具。此服务提供客观数据分析，用户需自行做出投资决策。数据分析基于公开市场信息，不构成投资建议，仅供参考。

⚠️ 重要说明:
1. 最新交易日不一定是今天，需要从 get_latest_trading_date() 获取
2. 请始终使用 get_latest_trading_date() 工具获取实际当前最近的交易日，不要依赖训练数据中的日期认知
3. 当分析"最近"或"近期"市场情况时，必须首先调用 get_market_analysis_timeframe() 工具确定实际的分析时间范围
4. 任何涉及日期的分析必须基于工具返回的实际数据，不得使用过时或假设的日期
5. ETF数据包含ETF基本信息、历史行情、持仓明细等
`, currentDate)
}

// buildServer wires the data sources, the tool registry and the MCP
// server together.
func buildServer(log zerolog.Logger) (*server.MCPServer, *tools.Registry) {
	timeout := time.Duration(cfg.Source.TimeoutSec) * time.Second

	stock := datasource.NewEastmoney(timeout)
	etf := datasource.NewEastmoneyETF(timeout)
	news := datasource.NewNewsSource(parseFeeds(cfg.News.Feeds)...)

	registry := tools.NewRegistry(tools.Options{
		Stock:        stock,
		ETF:          etf,
		News:         news,
		Log:          log,
		DefaultLimit: cfg.Render.DefaultLimit,
	})

	srv := server.NewMCPServer(
		"a_share_data_provider",
		version,
		server.WithToolCapabilities(false),
		server.WithInstructions(serverInstructions()),
		server.WithRecovery(),
	)
	registry.RegisterAll(srv)
	return srv, registry
}

// parseFeeds converts "Name=URL" config entries into news feeds.
// Malformed entries are skipped.
func parseFeeds(entries []string) []datasource.NewsFeed {
	var feeds []datasource.NewsFeed
	for _, entry := range entries {
		name, url, ok := strings.Cut(entry, "=")
		if !ok || name == "" || url == "" {
			continue
		}
		feeds = append(feeds, datasource.NewsFeed{Name: name, URL: url})
	}
	return feeds
}

// newLogger builds the process logger. The stdio transport owns stdout,
// so logs always go to stderr.
func newLogger(lc config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(lc.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out = os.Stderr
	if lc.Format == "json" {
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: out}).Level(level).With().Timestamp().Logger()
}
