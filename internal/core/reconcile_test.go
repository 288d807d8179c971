package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

var testCols = Columns{
	SaleKey:       "Usuário",
	SaleAmount:    "Total Venda",
	RegistryName:  "Nome",
	RegistryPhone: "Telefone",
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func salesTable(rows ...[]string) *RawTable {
	return NewRawTable([]string{"Usuário", "Total Venda"}, textRows(rows...))
}

func registryTable(rows ...[]string) *RawTable {
	return NewRawTable([]string{"Nome", "Telefone"}, textRows(rows...))
}

func TestReconcile_SingleCustomer(t *testing.T) {
	sales := salesTable(
		[]string{"João Silva", "R$ 100,00"},
		[]string{"joao silva", "R$ 50,00"},
	)
	registry := registryTable([]string{"JOÃO SILVA", "(11) 98765-4321"})

	got, err := Reconcile(sales, registry, testCols, Options{Rate: dec("0.10")})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	b := got[0]
	if b.DisplayName != "JOÃO SILVA" {
		t.Errorf("DisplayName = %q, want the registry text", b.DisplayName)
	}
	if b.Phone != "5511987654321" {
		t.Errorf("Phone = %q", b.Phone)
	}
	if !b.TotalSpent.Equal(dec("150")) || !b.Cashback.Equal(dec("15")) {
		t.Errorf("TotalSpent = %s, Cashback = %s, want 150 and 15", b.TotalSpent, b.Cashback)
	}
	if b.Purchases != 2 {
		t.Errorf("Purchases = %d, want 2", b.Purchases)
	}
	if !b.RewardUnits.IsZero() {
		t.Errorf("RewardUnits = %s, want 0 without a unit price", b.RewardUnits)
	}
}

func TestReconcile_InnerJoinAndFilters(t *testing.T) {
	sales := salesTable(
		[]string{"Ana", "100,00"},
		[]string{"Bia", "abc"},
		[]string{"Caio", "-20,00"},
		[]string{"Sem Cadastro", "500,00"},
		[]string{"", "80,00"},
	)
	registry := registryTable(
		[]string{"Ana", "11911112222"},
		[]string{"Bia", "11933334444"},
		[]string{"Caio", "11955556666"},
		[]string{"Dora", "11977778888"},
		[]string{"", "11900000000"},
	)

	got, err := Reconcile(sales, registry, testCols, Options{Rate: dec("0.1")})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(got) != 1 || got[0].DisplayName != "Ana" {
		t.Fatalf("got %+v, want only Ana", got)
	}
}

func TestReconcile_DuplicateRegistryKeyDoubleCounts(t *testing.T) {
	sales := salesTable([]string{"Ana", "100"})
	registry := registryTable(
		[]string{"Ana", "11911112222"},
		[]string{"ANA", "11911112222"},
		[]string{"Ana", "11911112222"},
	)

	got, err := Reconcile(sales, registry, testCols, Options{Rate: dec("0.1")})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 groups (Ana and ANA)", len(got))
	}
	for _, b := range got {
		switch b.DisplayName {
		case "Ana":
			if !b.TotalSpent.Equal(dec("200")) || b.Purchases != 2 {
				t.Errorf("Ana = %s over %d purchases, want 200 over 2", b.TotalSpent, b.Purchases)
			}
		case "ANA":
			if !b.TotalSpent.Equal(dec("100")) {
				t.Errorf("ANA = %s, want 100", b.TotalSpent)
			}
		default:
			t.Errorf("unexpected group %q", b.DisplayName)
		}
	}
}

func TestReconcile_WithoutPhoneColumn(t *testing.T) {
	cols := testCols
	cols.RegistryPhone = ""
	registry := NewRawTable([]string{"Nome"}, textRows([]string{"Ana"}))

	got, err := Reconcile(salesTable([]string{"Ana", "10"}), registry, cols, Options{Rate: dec("0.5")})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(got) != 1 || got[0].Phone != "" || !got[0].Cashback.Equal(dec("5")) {
		t.Errorf("got %+v", got)
	}
}

func TestReconcile_RewardUnits(t *testing.T) {
	got, err := Reconcile(
		salesTable([]string{"Ana", "100"}),
		registryTable([]string{"Ana", "1"}),
		testCols,
		Options{Rate: dec("0.10"), UnitPrice: dec("3")},
	)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if want := dec("3.3333"); !got[0].RewardUnits.Equal(want) {
		t.Errorf("RewardUnits = %s, want %s", got[0].RewardUnits, want)
	}
}

func TestReconcile_Sorting(t *testing.T) {
	sales := salesTable(
		[]string{"Caio", "50"},
		[]string{"Ana", "300"},
		[]string{"Bia", "100"},
	)
	registry := registryTable(
		[]string{"Ana", "1"},
		[]string{"Bia", "2"},
		[]string{"Caio", "3"},
	)

	tests := []struct {
		name string
		sort SortSpec
		want []string
	}{
		{"default is cashback desc", SortSpec{}, []string{"Ana", "Bia", "Caio"}},
		{"cashback asc", SortSpec{Column: SortByCashback, Dir: "asc"}, []string{"Caio", "Bia", "Ana"}},
		{"total spent desc", SortSpec{Column: SortByTotalSpent}, []string{"Ana", "Bia", "Caio"}},
		{"name defaults to asc", SortSpec{Column: SortByName}, []string{"Ana", "Bia", "Caio"}},
		{"name desc", SortSpec{Column: "NAME", Dir: "DESC"}, []string{"Caio", "Bia", "Ana"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reconcile(sales, registry, testCols, Options{Rate: dec("0.1"), Sort: tt.sort})
			if err != nil {
				t.Fatalf("Reconcile: %v", err)
			}
			for i, name := range tt.want {
				if got[i].DisplayName != name {
					t.Fatalf("order = %v, want %v", names(got), tt.want)
				}
			}
		})
	}
}

func TestReconcile_TiesAreDeterministic(t *testing.T) {
	sales := salesTable([]string{"Bia", "10"}, []string{"Ana", "10"})
	registry := registryTable([]string{"Bia", "2"}, []string{"Ana", "1"})

	got, err := Reconcile(sales, registry, testCols, Options{Rate: dec("0.1")})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if names(got)[0] != "Ana" {
		t.Errorf("order = %v, want equal cashback broken by name", names(got))
	}
}

func TestReconcile_Errors(t *testing.T) {
	sales := salesTable([]string{"Ana", "1"})
	registry := registryTable([]string{"Ana", "1"})

	tests := []struct {
		name     string
		sales    *RawTable
		registry *RawTable
		cols     Columns
		opts     Options
		check    func(error) bool
	}{
		{
			name:     "nil sales",
			registry: registry,
			cols:     testCols,
			check:    func(err error) bool { return errors.Is(err, ErrTableUnavailable) },
		},
		{
			name:     "amount column absent",
			sales:    sales,
			registry: registry,
			cols:     Columns{SaleKey: "Usuário", SaleAmount: "Valor", RegistryName: "Nome"},
			check: func(err error) bool {
				var ce *ColumnError
				return errors.As(err, &ce) && ce.Semantic == SemanticAmount
			},
		},
		{
			name:     "phone column absent",
			sales:    sales,
			registry: registry,
			cols:     Columns{SaleKey: "Usuário", SaleAmount: "Total Venda", RegistryName: "Nome", RegistryPhone: "Celular"},
			check: func(err error) bool {
				var ce *ColumnError
				return errors.As(err, &ce) && ce.Semantic == SemanticPhone
			},
		},
		{
			name:     "bad sort",
			sales:    sales,
			registry: registry,
			cols:     testCols,
			opts:     Options{Sort: SortSpec{Column: "cpf"}},
			check:    func(err error) bool { return errors.Is(err, ErrInvalidSort) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reconcile(tt.sales, tt.registry, tt.cols, tt.opts)
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestReconcile_EmptyResultIsNotAnError(t *testing.T) {
	got, err := Reconcile(salesTable(), registryTable(), testCols, Options{Rate: dec("0.1")})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		column, dir string
		want        SortSpec
		wantErr     bool
	}{
		{"", "", DefaultSort, false},
		{"total_spent", "", SortSpec{SortByTotalSpent, "desc"}, false},
		{"name", "", SortSpec{SortByName, "asc"}, false},
		{" Cashback ", "ASC", SortSpec{SortByCashback, "asc"}, false},
		{"phone", "", SortSpec{}, true},
		{"name", "sideways", SortSpec{}, true},
	}
	for _, tt := range tests {
		got, err := ParseSort(tt.column, tt.dir)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSort(%q, %q) error = %v", tt.column, tt.dir, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSort(%q, %q) = %+v, want %+v", tt.column, tt.dir, got, tt.want)
		}
	}
}

func TestTotalCashback(t *testing.T) {
	b := []Balance{{Cashback: dec("1.5")}, {Cashback: dec("2.25")}}
	if got := TotalCashback(b); !got.Equal(dec("3.75")) {
		t.Errorf("TotalCashback = %s, want 3.75", got)
	}
}

func names(b []Balance) []string {
	out := make([]string, len(b))
	for i, x := range b {
		out[i] = x.DisplayName
	}
	return out
}
