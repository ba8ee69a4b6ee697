package datasource

import (
	"context"

	"github.com/seenimoa/asharemcp/pkg/models"
)

// ETFDataSource is the operation set an ETF data provider must expose.
// It shares the four-kind error taxonomy with FinancialDataSource.
type ETFDataSource interface {
	// GetETFBasicInfo returns the latest snapshot for an ETF code
	// (bare six digits, e.g. '159919', '510300').
	GetETFBasicInfo(ctx context.Context, etfCode string) (*models.Table, error)

	// GetETFHistoricalData returns price history between start and end
	// ('YYYY-MM-DD'). frequency: 'd', 'w', 'm'.
	GetETFHistoricalData(ctx context.Context, etfCode, startDate, endDate, frequency string) (*models.Table, error)

	// GetETFHoldings returns constituent stocks. Empty date means the
	// latest disclosed holdings.
	GetETFHoldings(ctx context.Context, etfCode, date string) (*models.Table, error)

	// GetETFList lists ETFs for a market: 'all', 'sh', or 'sz'.
	GetETFList(ctx context.Context, market string) (*models.Table, error)

	// GetETFNetValue returns net asset value history for a date range.
	GetETFNetValue(ctx context.Context, etfCode, startDate, endDate string) (*models.Table, error)

	// GetETFAnalysis fetches the composite analysis bundle: basic info,
	// trailing 30-calendar-day history, and current holdings. Any
	// sub-fetch failure aborts the whole bundle with a SourceFailure
	// wrapping the original error; partial bundles are never returned.
	GetETFAnalysis(ctx context.Context, etfCode string) (*ETFAnalysisBundle, error)
}

// ETFAnalysisBundle is the result of the composite ETF analysis fetch.
type ETFAnalysisBundle struct {
	BasicInfo         *models.Table
	RecentPerformance *models.Table
	Holdings          *models.Table
}
