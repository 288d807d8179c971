package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidSort is returned for an unknown sort column or direction.
var ErrInvalidSort = errors.New("invalid sort")

// rewardUnitsPlaces is the precision of Balance.RewardUnits.
const rewardUnitsPlaces = 4

// Reconcile joins sales rows to registry rows on their normalized key and
// aggregates cashback per (display name, phone).
//
// Policy:
//   - Inner join: rows without a counterpart on the other side are dropped.
//     Empty keys never match.
//   - A sale whose key is shared by several registry rows joins to each of
//     them, so totals double count. This mirrors the historical behavior.
//   - Bad cells never fail the run: they normalize to an empty key or a zero
//     amount.
//   - Groups whose cashback is not strictly positive are dropped.
//
// Only a missing table or a column absent from its table is an error. An
// empty result is not.
func Reconcile(sales, registry *RawTable, cols Columns, opts Options) ([]Balance, error) {
	if sales == nil || registry == nil {
		return nil, ErrTableUnavailable
	}
	if err := checkColumns(sales, registry, cols); err != nil {
		return nil, err
	}
	spec, err := normalizeSort(opts.Sort)
	if err != nil {
		return nil, err
	}

	customers := customerIndex(registry, cols)

	groups := make(map[string]*Balance)
	var order []string
	for i := 0; i < sales.Len(); i++ {
		buyer := sales.Cell(i, cols.SaleKey)
		if buyer.Empty() {
			continue
		}
		sale := SaleRecord{
			MatchKey: NormalizeText(buyer),
			Amount:   ParseMoney(sales.Cell(i, cols.SaleAmount)),
		}
		if sale.MatchKey == "" {
			continue
		}
		cashback := sale.Amount.Mul(opts.Rate)
		for _, c := range customers[sale.MatchKey] {
			id := Balance{DisplayName: c.DisplayName, Phone: c.Phone}.Identity()
			g, ok := groups[id]
			if !ok {
				g = &Balance{DisplayName: c.DisplayName, Phone: c.Phone}
				groups[id] = g
				order = append(order, id)
			}
			g.TotalSpent = g.TotalSpent.Add(sale.Amount)
			g.Cashback = g.Cashback.Add(cashback)
			g.Purchases++
		}
	}

	result := make([]Balance, 0, len(order))
	for _, id := range order {
		g := groups[id]
		if !g.Cashback.IsPositive() {
			continue
		}
		if opts.UnitPrice.IsPositive() {
			g.RewardUnits = g.Cashback.DivRound(opts.UnitPrice, rewardUnitsPlaces)
		}
		result = append(result, *g)
	}

	SortBalances(result, spec)
	return result, nil
}

// customerIndex normalizes the registry and groups it by match key.
func customerIndex(registry *RawTable, cols Columns) map[NormalizedKey][]CustomerRecord {
	index := make(map[NormalizedKey][]CustomerRecord, registry.Len())
	for i := 0; i < registry.Len(); i++ {
		name := registry.Cell(i, cols.RegistryName)
		if name.Empty() {
			continue
		}
		rec := CustomerRecord{
			MatchKey:    NormalizeText(name),
			DisplayName: name.String(),
		}
		if cols.RegistryPhone != "" {
			rec.Phone = FormatPhone(registry.Cell(i, cols.RegistryPhone))
		}
		if rec.MatchKey == "" {
			continue
		}
		index[rec.MatchKey] = append(index[rec.MatchKey], rec)
	}
	return index
}

func checkColumns(sales, registry *RawTable, cols Columns) error {
	check := []struct {
		table    *RawTable
		source   string
		semantic string
		column   string
	}{
		{sales, SourceSales, SemanticBuyer, cols.SaleKey},
		{sales, SourceSales, SemanticAmount, cols.SaleAmount},
		{registry, SourceRegistry, SemanticName, cols.RegistryName},
	}
	for _, c := range check {
		if c.column == "" || !c.table.HasColumn(c.column) {
			return &ColumnError{Source: c.source, Semantic: c.semantic, Candidates: nonEmpty(c.column)}
		}
	}
	if cols.RegistryPhone != "" && !registry.HasColumn(cols.RegistryPhone) {
		return &ColumnError{Source: SourceRegistry, Semantic: SemanticPhone, Candidates: []string{cols.RegistryPhone}}
	}
	return nil
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

// ParseSort validates a sort column and direction taken from user input.
// Empty values fall back to DefaultSort.
func ParseSort(column, dir string) (SortSpec, error) {
	return normalizeSort(SortSpec{Column: column, Dir: dir})
}

func normalizeSort(s SortSpec) (SortSpec, error) {
	s.Column = strings.ToLower(strings.TrimSpace(s.Column))
	s.Dir = strings.ToLower(strings.TrimSpace(s.Dir))
	if s.Column == "" {
		s.Column = DefaultSort.Column
	}
	if s.Dir == "" {
		s.Dir = "desc"
		if s.Column == SortByName {
			s.Dir = "asc"
		}
	}
	switch s.Column {
	case SortByCashback, SortByTotalSpent, SortByName:
	default:
		return SortSpec{}, fmt.Errorf("%w: unknown column %q", ErrInvalidSort, s.Column)
	}
	if s.Dir != "asc" && s.Dir != "desc" {
		return SortSpec{}, fmt.Errorf("%w: unknown direction %q", ErrInvalidSort, s.Dir)
	}
	return s, nil
}

// SortBalances orders balances by spec. Ties are broken by cashback
// (descending), total spent (descending), display name and phone, so the
// order is fully deterministic.
func SortBalances(b []Balance, spec SortSpec) {
	sort.SliceStable(b, func(i, j int) bool {
		c := compareBy(b[i], b[j], spec.Column)
		if spec.Dir == "desc" {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return tieBreak(b[i], b[j]) < 0
	})
}

func compareBy(a, b Balance, column string) int {
	switch column {
	case SortByTotalSpent:
		return a.TotalSpent.Cmp(b.TotalSpent)
	case SortByName:
		return strings.Compare(a.DisplayName, b.DisplayName)
	default:
		return a.Cashback.Cmp(b.Cashback)
	}
}

func tieBreak(a, b Balance) int {
	if c := b.Cashback.Cmp(a.Cashback); c != 0 {
		return c
	}
	if c := b.TotalSpent.Cmp(a.TotalSpent); c != 0 {
		return c
	}
	if c := strings.Compare(a.DisplayName, b.DisplayName); c != 0 {
		return c
	}
	return strings.Compare(string(a.Phone), string(b.Phone))
}

// TotalCashback sums the cashback of balances.
func TotalCashback(b []Balance) decimal.Decimal {
	total := decimal.Zero
	for _, x := range b {
		total = total.Add(x.Cashback)
	}
	return total
}
