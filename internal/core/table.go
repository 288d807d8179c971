package core

import "strconv"

// RawTable is a parsed export: an ordered header and rows of raw cells.
// It is immutable once built; accessors hand out copies.
type RawTable struct {
	columns []string
	index   map[string]int
	rows    [][]Cell
}

// NewRawTable builds a table from a header and rows. Duplicate column names
// are renamed "name.1", "name.2", ... and empty ones "Unnamed: <i>".
// Short rows are padded with empty cells and long rows truncated.
func NewRawTable(columns []string, rows [][]Cell) *RawTable {
	cols := uniqueColumns(columns)
	t := &RawTable{
		columns: cols,
		index:   make(map[string]int, len(cols)),
		rows:    make([][]Cell, 0, len(rows)),
	}
	for i, c := range cols {
		t.index[c] = i
	}
	for _, r := range rows {
		row := make([]Cell, len(cols))
		copy(row, r)
		t.rows = append(t.rows, row)
	}
	return t
}

// Columns returns the header in file order.
func (t *RawTable) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether the table has a column with this exact name.
func (t *RawTable) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of data rows.
func (t *RawTable) Len() int {
	return len(t.rows)
}

// Cell returns the value of column in row i. Unknown columns yield an
// empty cell.
func (t *RawTable) Cell(i int, column string) Cell {
	idx, ok := t.index[column]
	if !ok || i < 0 || i >= len(t.rows) {
		return Cell{}
	}
	return t.rows[i][idx]
}

func uniqueColumns(columns []string) []string {
	out := make([]string, len(columns))
	used := make(map[string]bool, len(columns))
	suffix := make(map[string]int)
	for i, c := range columns {
		if c == "" {
			c = "Unnamed: " + strconv.Itoa(i)
		}
		name := c
		for used[name] {
			suffix[c]++
			name = c + "." + strconv.Itoa(suffix[c])
		}
		used[name] = true
		out[i] = name
	}
	return out
}
