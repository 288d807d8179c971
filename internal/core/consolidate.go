package core

import (
	"strconv"
	"strings"
)

// Consolidate merges several exports of the same kind (e.g. one per month)
// into one table. Columns are the union of all headers in first-seen order;
// rows keep their order across tables. A row identical to an earlier row in
// every column is dropped, which absorbs overlapping re-uploads. Rows that
// differ in any cell, even by a cent, are kept.
//
// Deduplication compares raw cell text, before any normalization.
// Nil tables are skipped.
func Consolidate(tables ...*RawTable) *RawTable {
	var columns []string
	seenCol := make(map[string]bool)
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.columns {
			if !seenCol[c] {
				seenCol[c] = true
				columns = append(columns, c)
			}
		}
	}

	var rows [][]Cell
	seenRow := make(map[string]bool)
	for _, t := range tables {
		if t == nil {
			continue
		}
		for i := range t.rows {
			row := make([]Cell, len(columns))
			for j, c := range columns {
				row[j] = t.Cell(i, c)
			}
			key := rowKey(row)
			if seenRow[key] {
				continue
			}
			seenRow[key] = true
			rows = append(rows, row)
		}
	}

	return NewRawTable(columns, rows)
}

// rowKey length-prefixes each raw cell value so no two distinct rows share
// a key.
func rowKey(row []Cell) string {
	var b strings.Builder
	for _, c := range row {
		b.WriteString(strconv.Itoa(len(c.Text)))
		b.WriteByte(':')
		b.WriteString(c.Text)
	}
	return b.String()
}
