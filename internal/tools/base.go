// Package tools registers the MCP tool set and runs every invocation
// through a shared pipeline: validate input, fetch from the data source,
// render the table, and fold failures into "Error: ..." strings. Errors
// never propagate to the transport layer.
package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/seenimoa/asharemcp/internal/datasource"
	"github.com/seenimoa/asharemcp/internal/render"
	"github.com/seenimoa/asharemcp/pkg/models"
)

func textResult(text string) *mcp.CallToolResult {
	return mcp.NewToolResultText(text)
}

// errorText folds a pipeline failure into the stable error vocabulary.
// The prefix depends on the error kind so callers can distinguish bad
// input from upstream trouble without parsing stack traces.
func errorText(err error) string {
	kind, ok := datasource.KindOf(err)
	if !ok {
		return fmt.Sprintf("Error: An unexpected error occurred: %v", err)
	}
	switch kind {
	case datasource.KindNotFound:
		return fmt.Sprintf("Error: %v", err)
	case datasource.KindAuthFailure:
		return fmt.Sprintf("Error: Could not connect to data source. %v", err)
	case datasource.KindInvalidInput:
		return fmt.Sprintf("Error: Invalid input parameter. %v", err)
	default:
		return fmt.Sprintf("Error: An error occurred while fetching data. %v", err)
	}
}

// tableFetch produces the table for one invocation.
type tableFetch func(ctx context.Context) (*models.Table, error)

// runTableTool is the shared invocation pipeline for every tool that
// returns tabular data. The format token is validated before the fetch
// so a bad format never costs an upstream round trip, and a panic in
// the fetch is folded into the unexpected-error string.
func (r *Registry) runTableTool(ctx context.Context, name string, meta map[string]string, limit int, format string, fetch tableFetch) (out *mcp.CallToolResult, retErr error) {
	log := r.log.With().Str("tool", name).Logger()
	log.Info().Fields(metaFields(meta)).Msg("tool called")

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("tool panicked")
			out = textResult(fmt.Sprintf("Error: An unexpected error occurred: %v", rec))
			retErr = nil
		}
	}()

	if _, err := render.ParseFormat(format); err != nil {
		log.Warn().Str("format", format).Msg("unsupported format requested")
		return textResult(errorText(err)), nil
	}
	if limit <= 0 {
		limit = r.defaultLimit
	}

	t, err := fetch(ctx)
	if err != nil {
		logFetchError(log, err)
		return textResult(errorText(err)), nil
	}

	text, err := render.Table(t, render.Options{Format: format, MaxRows: limit, Meta: meta})
	if err != nil {
		log.Error().Err(err).Msg("render failed")
		return textResult(errorText(err)), nil
	}
	log.Info().Int("rows", t.NumRows()).Msg("tool finished")
	return textResult(text), nil
}

// runTextTool wraps tools whose output is prose rather than a table.
// The same panic and error folding applies.
func (r *Registry) runTextTool(ctx context.Context, name string, meta map[string]string, fn func(ctx context.Context) (string, error)) (out *mcp.CallToolResult, retErr error) {
	log := r.log.With().Str("tool", name).Logger()
	log.Info().Fields(metaFields(meta)).Msg("tool called")

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("tool panicked")
			out = textResult(fmt.Sprintf("Error: An unexpected error occurred: %v", rec))
			retErr = nil
		}
	}()

	text, err := fn(ctx)
	if err != nil {
		logFetchError(log, err)
		return textResult(errorText(err)), nil
	}
	log.Info().Msg("tool finished")
	return textResult(text), nil
}

func logFetchError(log zerolog.Logger, err error) {
	kind, ok := datasource.KindOf(err)
	switch {
	case !ok:
		log.Error().Err(err).Msg("unexpected failure")
	case kind == datasource.KindNotFound || kind == datasource.KindInvalidInput:
		log.Warn().Err(err).Msg("request rejected")
	default:
		log.Error().Err(err).Msg("fetch failed")
	}
}

func metaFields(meta map[string]string) map[string]any {
	fields := make(map[string]any, len(meta))
	for k, v := range meta {
		fields[k] = v
	}
	return fields
}

// validateYearQuarter checks the shared year/quarter arguments of the
// financial report tools before any upstream call is made.
func validateYearQuarter(year string, quarter int) error {
	if len(year) != 4 {
		return datasource.InvalidInput("invalid year %q, expected a 4-digit year", year)
	}
	for _, c := range year {
		if c < '0' || c > '9' {
			return datasource.InvalidInput("invalid year %q, expected a 4-digit year", year)
		}
	}
	if quarter < 1 || quarter > 4 {
		return datasource.InvalidInput("invalid quarter %d, must be between 1 and 4", quarter)
	}
	return nil
}
