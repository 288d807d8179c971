// Package session keeps the per-browser working set between requests: the
// last reconciliation result and which customers are selected for sending.
//
// The core pipeline holds no state. Everything that must survive from one
// request to the next lives here and is owned by the web layer.
package session

import "github.com/WawaAlencar/sistema-cashback-cliente/internal/core"

// Row is one balance with its send flag.
type Row struct {
	core.Balance
	Selected bool `json:"selected"`
}

// Selection is the working set of one reconciliation result.
// It is not safe for concurrent use; Store serializes access.
type Selection struct {
	rows []Row
}

// NewSelection returns a selection with every balance selected.
func NewSelection(balances []core.Balance) *Selection {
	s := &Selection{}
	s.reset(balances)
	return s
}

func (s *Selection) reset(balances []core.Balance) {
	s.rows = make([]Row, len(balances))
	for i, b := range balances {
		s.rows[i] = Row{Balance: b, Selected: true}
	}
}

// Refresh replaces the balances after a new run. When the row count is
// unchanged each customer keeps its flag, matched by name and phone;
// customers not seen before are selected. A different row count resets
// everything to selected.
func (s *Selection) Refresh(balances []core.Balance) {
	if len(balances) != len(s.rows) {
		s.reset(balances)
		return
	}

	flags := make(map[string]bool, len(s.rows))
	for _, r := range s.rows {
		flags[r.Identity()] = r.Selected
	}
	for i, b := range balances {
		selected, ok := flags[b.Identity()]
		if !ok {
			selected = true
		}
		s.rows[i] = Row{Balance: b, Selected: selected}
	}
}

// SelectAll marks every row.
func (s *Selection) SelectAll() {
	for i := range s.rows {
		s.rows[i].Selected = true
	}
}

// DeselectAll clears every row.
func (s *Selection) DeselectAll() {
	for i := range s.rows {
		s.rows[i].Selected = false
	}
}

// Toggle flips row i and reports whether i was in range.
func (s *Selection) Toggle(i int) bool {
	if i < 0 || i >= len(s.rows) {
		return false
	}
	s.rows[i].Selected = !s.rows[i].Selected
	return true
}

// Rows returns a copy of all rows in display order.
func (s *Selection) Rows() []Row {
	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out
}

// Selected returns the selected balances in display order.
func (s *Selection) Selected() []core.Balance {
	var out []core.Balance
	for _, r := range s.rows {
		if r.Selected {
			out = append(out, r.Balance)
		}
	}
	return out
}

// Len returns the number of rows.
func (s *Selection) Len() int {
	return len(s.rows)
}
