// Package render encodes tabular results into the caller-selectable
// output formats, enforcing the row cap and attaching query metadata.
package render

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/seenimoa/asharemcp/internal/datasource"
	"github.com/seenimoa/asharemcp/pkg/models"
)

// Supported output format tokens.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatCSV      = "csv"
)

// DefaultMaxRows is the uniform row cap applied when the caller does not
// set a limit.
const DefaultMaxRows = 250

// EmptySentinel replaces an empty table in markdown and CSV output.
const EmptySentinel = "(No data available to display)"

// Options controls one rendering.
type Options struct {
	Format  string            // markdown | json | csv; empty means markdown
	MaxRows int               // row cap; <=0 means DefaultMaxRows
	Meta    map[string]string // query metadata attached for traceability
}

// ParseFormat normalizes a format token. Unknown tokens fail with an
// InvalidInput-kind error.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatMarkdown:
		return FormatMarkdown, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", datasource.InvalidInput("unsupported format %q; valid: markdown, json, csv", s)
	}
}

// Table renders a tabular result. Results longer than the row cap are
// truncated to the first MaxRows rows and the output states the true
// total; rows are never dropped silently.
func Table(t *models.Table, opts Options) (string, error) {
	format, err := ParseFormat(opts.Format)
	if err != nil {
		return "", err
	}
	maxRows := opts.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	if t == nil {
		t = models.NewTable()
	}

	total := t.NumRows()
	shown := t.Head(maxRows)

	switch format {
	case FormatJSON:
		return renderJSON(shown, total, opts.Meta)
	case FormatCSV:
		return renderCSV(shown, total, opts.Meta)
	default:
		return renderMarkdown(shown, total, opts.Meta)
	}
}

func renderMarkdown(t *models.Table, total int, meta map[string]string) (string, error) {
	var b strings.Builder
	if line := metaLine(meta); line != "" {
		b.WriteString(line)
		b.WriteString("\n\n")
	}
	if t.Empty() {
		b.WriteString(EmptySentinel)
		return b.String(), nil
	}

	w := table.NewWriter()
	w.AppendHeader(headerRow(t))
	for _, row := range t.Rows {
		w.AppendRow(dataRow(t, row))
	}
	b.WriteString(w.RenderMarkdown())

	if total > t.NumRows() {
		b.WriteString("\n")
		b.WriteString(truncationNote(t.NumRows(), total))
	}
	return b.String(), nil
}

func renderCSV(t *models.Table, total int, meta map[string]string) (string, error) {
	var b strings.Builder
	if line := metaLine(meta); line != "" {
		// Comment line keeps the CSV body machine-parseable.
		b.WriteString("# ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	if t.Empty() {
		b.WriteString(EmptySentinel)
		return b.String(), nil
	}

	w := table.NewWriter()
	w.AppendHeader(headerRow(t))
	for _, row := range t.Rows {
		w.AppendRow(dataRow(t, row))
	}
	b.WriteString(w.RenderCSV())

	if total > t.NumRows() {
		b.WriteString("\n# ")
		b.WriteString(truncationNote(t.NumRows(), total))
	}
	return b.String(), nil
}

// jsonPayload is the JSON encoding: metadata plus a lossless row array.
// total_rows vs returned_rows makes truncation explicit.
type jsonPayload struct {
	Meta         map[string]string `json:"meta,omitempty"`
	TotalRows    int               `json:"total_rows"`
	ReturnedRows int               `json:"returned_rows"`
	Columns      []string          `json:"columns"`
	Rows         []map[string]any  `json:"rows"`
}

func renderJSON(t *models.Table, total int, meta map[string]string) (string, error) {
	rows := make([]map[string]any, 0, t.NumRows())
	for _, row := range t.Rows {
		obj := make(map[string]any, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(row) {
				obj[col] = row[i]
			}
		}
		rows = append(rows, obj)
	}

	out, err := json.MarshalIndent(jsonPayload{
		Meta:         meta,
		TotalRows:    total,
		ReturnedRows: t.NumRows(),
		Columns:      t.Columns,
		Rows:         rows,
	}, "", "  ")
	if err != nil {
		return "", datasource.WrapSource(err, "encode result as JSON")
	}
	return string(out), nil
}

func headerRow(t *models.Table) table.Row {
	row := make(table.Row, len(t.Columns))
	for i, c := range t.Columns {
		row[i] = c
	}
	return row
}

func dataRow(t *models.Table, values []any) table.Row {
	row := make(table.Row, len(t.Columns))
	for i := range t.Columns {
		if i < len(values) {
			row[i] = formatCell(values[i])
		} else {
			row[i] = ""
		}
	}
	return row
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return fmt.Sprint(x)
	}
}

func metaLine(meta map[string]string) string {
	if len(meta) == 0 {
		return ""
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + meta[k]
	}
	return "Query: " + strings.Join(parts, " | ")
}

func truncationNote(shown, total int) string {
	return fmt.Sprintf("Note: showing first %d of %d rows.", shown, total)
}
