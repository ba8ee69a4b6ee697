// Package datasource defines the capability contracts that market-data
// providers must satisfy, the error taxonomy every provider maps its
// failures onto, and the concrete Eastmoney-backed implementations.
//
// Callers bind to the FinancialDataSource and ETFDataSource interfaces and
// never branch on provider identity; a new provider is added by
// implementing the interface, not by changing call sites.
package datasource

import (
	"context"
	"errors"
	"fmt"

	"github.com/seenimoa/asharemcp/pkg/models"
)

// FinancialDataSource is the operation set an A-share equity/index data
// provider must expose. Every method returns a models.Table with
// provider-defined columns, or an *Error carrying one of the four kinds.
type FinancialDataSource interface {
	// GetHistoricalKData returns K-line data for a stock code
	// ('sh.600000' form) between start and end ('YYYY-MM-DD').
	// frequency: 'd', 'w', 'm', '5', '15', '30', '60'.
	// adjustFlag: '1' forward-adjusted, '2' backward-adjusted, '3' raw.
	GetHistoricalKData(ctx context.Context, code, startDate, endDate, frequency, adjustFlag string) (*models.Table, error)

	// GetStockBasicInfo returns the latest snapshot (name, price, change,
	// volume) for a single stock code.
	GetStockBasicInfo(ctx context.Context, code string) (*models.Table, error)

	// GetDividendData returns dividend records for a stock in a year.
	// yearType: 'report' (announcement year) or 'operate' (ex-dividend year).
	GetDividendData(ctx context.Context, code, year, yearType string) (*models.Table, error)

	// Financial statement figures for a stock at year/quarter granularity.
	GetProfitData(ctx context.Context, code, year string, quarter int) (*models.Table, error)
	GetOperationData(ctx context.Context, code, year string, quarter int) (*models.Table, error)
	GetGrowthData(ctx context.Context, code, year string, quarter int) (*models.Table, error)
	GetBalanceData(ctx context.Context, code, year string, quarter int) (*models.Table, error)
	GetCashFlowData(ctx context.Context, code, year string, quarter int) (*models.Table, error)
	GetDupontData(ctx context.Context, code, year string, quarter int) (*models.Table, error)

	// GetTradeDates returns the trading calendar for a date range as a
	// two-column table: calendar_date, is_trading_day ('1'/'0'), ascending.
	// Empty start defaults to 2015-01-01, empty end to today.
	GetTradeDates(ctx context.Context, startDate, endDate string) (*models.Table, error)

	// GetAllStock lists stock codes and their trading status on a date.
	GetAllStock(ctx context.Context, date string) (*models.Table, error)

	// GetStockIndustry returns industry classification for one stock, or
	// for all stocks when code is empty.
	GetStockIndustry(ctx context.Context, code, date string) (*models.Table, error)

	// Index constituents as of a date (empty date = latest published).
	GetSZ50Stocks(ctx context.Context, date string) (*models.Table, error)
	GetHS300Stocks(ctx context.Context, date string) (*models.Table, error)
	GetZZ500Stocks(ctx context.Context, date string) (*models.Table, error)

	// Macroeconomic series. Empty dates use provider defaults.
	GetDepositRateData(ctx context.Context, startDate, endDate string) (*models.Table, error)
	GetLoanRateData(ctx context.Context, startDate, endDate string) (*models.Table, error)
	GetRequiredReserveRatioData(ctx context.Context, startDate, endDate string) (*models.Table, error)
	GetMoneySupplyDataMonth(ctx context.Context, startDate, endDate string) (*models.Table, error)
}

// --- Error taxonomy ---

// Kind classifies a data-source failure. The four kinds are exhaustive:
// every provider implementation must map its failures onto exactly one.
type Kind int

const (
	// KindInvalidInput marks a malformed or unsupported argument.
	// Caller-fixable.
	KindInvalidInput Kind = iota + 1
	// KindAuthFailure marks a rejected credential or session.
	// Operator-fixable, not caller-fixable.
	KindAuthFailure
	// KindNotFound marks a well-formed query that matched zero rows.
	KindNotFound
	// KindSourceFailure marks any other provider-side fault: network,
	// malformed response, unexpected upstream behavior.
	KindSourceFailure
)

// String returns the taxonomy name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindAuthFailure:
		return "auth_failure"
	case KindNotFound:
		return "not_found"
	case KindSourceFailure:
		return "source_failure"
	default:
		return "unknown"
	}
}

// Error is a classified data-source failure. It is terminal: the caller
// never retries automatically.
type Error struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// InvalidInput creates an InvalidInput-kind error.
func InvalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// AuthFailure creates an AuthFailure-kind error.
func AuthFailure(format string, args ...any) *Error {
	return &Error{Kind: KindAuthFailure, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a NotFound-kind error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// SourceFailure creates a SourceFailure-kind error.
func SourceFailure(format string, args ...any) *Error {
	return &Error{Kind: KindSourceFailure, Message: fmt.Sprintf(format, args...)}
}

// WrapSource wraps err as a SourceFailure with context. Used where any
// lower-level failure, classified or not, must surface as a source fault
// (e.g. the composite ETF analysis bundle).
func WrapSource(err error, format string, args ...any) *Error {
	return &Error{Kind: KindSourceFailure, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the taxonomy kind from an error chain.
// Returns false for unclassified errors.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
