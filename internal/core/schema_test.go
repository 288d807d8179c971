package core

import (
	"errors"
	"testing"
)

var (
	testSales = SourceDefinition{
		Key:     SourceSales,
		Markers: []string{"Pagamento", "Total Venda", "Matricula"},
		Columns: []ColumnRule{
			{Semantic: SemanticBuyer, Candidates: []string{"Usuário", "Usuario"}, Required: true},
			{Semantic: SemanticAmount, Candidates: []string{"Total Venda", "Venda R$"}, Required: true},
		},
	}
	testRegistry = SourceDefinition{
		Key:     SourceRegistry,
		Markers: []string{"CPF", "Data de Nascimento"},
		Columns: []ColumnRule{
			{Semantic: SemanticName, Candidates: []string{"Nome"}, Required: true},
			{Semantic: SemanticPhone, Candidates: []string{"Telefone", "Celular"}},
		},
	}
)

func TestResolveColumn(t *testing.T) {
	tests := []struct {
		name       string
		columns    []string
		candidates []string
		want       string
		wantOK     bool
	}{
		{"exact", []string{"CPF", "Nome"}, []string{"Nome"}, "Nome", true},
		{"substring", []string{"Nome Completo"}, []string{"Nome"}, "Nome Completo", true},
		{"leftmost wins", []string{"Nome Social", "Nome"}, []string{"Nome"}, "Nome Social", true},
		{"column order beats candidate order", []string{"Venda R$", "Total Venda"}, []string{"Total Venda", "Venda R$"}, "Venda R$", true},
		{"case sensitive", []string{"NOME"}, []string{"Nome"}, "", false},
		{"accent variant", []string{"Usuario"}, []string{"Usuário", "Usuario"}, "Usuario", true},
		{"none", []string{"CPF"}, []string{"Nome"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveColumn(tt.columns, tt.candidates)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ResolveColumn() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestResolveColumns(t *testing.T) {
	sales := NewRawTable([]string{"Matricula", "Usuário", "Total Venda"}, nil)
	registry := NewRawTable([]string{"Nome", "CPF", "Telefone Celular"}, nil)

	cols, err := ResolveColumns(sales, registry, testSales, testRegistry)
	if err != nil {
		t.Fatalf("ResolveColumns: %v", err)
	}
	want := Columns{SaleKey: "Usuário", SaleAmount: "Total Venda", RegistryName: "Nome", RegistryPhone: "Telefone Celular"}
	if cols != want {
		t.Errorf("ResolveColumns() = %+v, want %+v", cols, want)
	}
}

func TestResolveColumns_OptionalPhone(t *testing.T) {
	sales := NewRawTable([]string{"Usuario", "Venda R$"}, nil)
	registry := NewRawTable([]string{"Nome", "CPF"}, nil)

	cols, err := ResolveColumns(sales, registry, testSales, testRegistry)
	if err != nil {
		t.Fatalf("ResolveColumns: %v", err)
	}
	if cols.RegistryPhone != "" {
		t.Errorf("RegistryPhone = %q, want empty", cols.RegistryPhone)
	}
}

func TestResolveColumns_Missing(t *testing.T) {
	tests := []struct {
		name         string
		sales        []string
		registry     []string
		wantSource   string
		wantSemantic string
	}{
		{"no buyer", []string{"Total Venda"}, []string{"Nome"}, SourceSales, SemanticBuyer},
		{"no amount", []string{"Usuario", "Pagamento"}, []string{"Nome"}, SourceSales, SemanticAmount},
		{"no name", []string{"Usuario", "Total Venda"}, []string{"CPF"}, SourceRegistry, SemanticName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveColumns(NewRawTable(tt.sales, nil), NewRawTable(tt.registry, nil), testSales, testRegistry)
			var colErr *ColumnError
			if !errors.As(err, &colErr) {
				t.Fatalf("error = %v, want *ColumnError", err)
			}
			if colErr.Source != tt.wantSource || colErr.Semantic != tt.wantSemantic {
				t.Errorf("ColumnError = %+v, want %s/%s", colErr, tt.wantSource, tt.wantSemantic)
			}
		})
	}
}

func TestResolveColumns_NilTable(t *testing.T) {
	_, err := ResolveColumns(nil, NewRawTable([]string{"Nome"}, nil), testSales, testRegistry)
	if !errors.Is(err, ErrTableUnavailable) {
		t.Errorf("error = %v, want ErrTableUnavailable", err)
	}
}
