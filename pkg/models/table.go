// Package models defines the data structures shared between data sources,
// the renderer, and the tool layer.
package models

// Table is an ordered tabular result returned by a data-source call.
// Columns preserve the order the provider returned them in; every row has
// one value per column. Cell values are scalars: string, numeric, or nil.
//
// A Table carries its own schema: different operations return different
// column sets, and no global schema is assumed.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// NewTable creates an empty table with the given column order.
func NewTable(columns ...string) *Table {
	return &Table{Columns: columns}
}

// AppendRow adds a row. The caller must pass one value per column.
func (t *Table) AppendRow(values ...any) {
	t.Rows = append(t.Rows, values)
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no data rows.
func (t *Table) Empty() bool { return t.NumRows() == 0 }

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at (row, column name), or nil if out of range or
// the column does not exist.
func (t *Table) Cell(row int, column string) any {
	if t == nil || row < 0 || row >= len(t.Rows) {
		return nil
	}
	i := t.ColumnIndex(column)
	if i < 0 || i >= len(t.Rows[row]) {
		return nil
	}
	return t.Rows[row][i]
}

// Head returns a copy of the table truncated to at most n rows.
// The backing row slices are shared, not copied.
func (t *Table) Head(n int) *Table {
	if t == nil {
		return nil
	}
	if n < 0 || n >= len(t.Rows) {
		n = len(t.Rows)
	}
	return &Table{Columns: t.Columns, Rows: t.Rows[:n]}
}
