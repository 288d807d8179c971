// Package sources registers the export formats understood by the pipeline.
// Import it for side effects:
//
//	import _ "github.com/WawaAlencar/sistema-cashback-cliente/internal/core/sources"
package sources

import "github.com/WawaAlencar/sistema-cashback-cliente/internal/core"

func init() {
	core.Register(Sales)
	core.Register(Registry)
}

// Sales is the point-of-sale transaction report.
var Sales = core.SourceDefinition{
	Key:     core.SourceSales,
	Label:   "Relatório de Vendas",
	Markers: []string{"Pagamento", "Total Venda", "Matricula"},
	Columns: []core.ColumnRule{
		{Semantic: core.SemanticBuyer, Candidates: []string{"Usuário", "Usuario"}, Required: true},
		{Semantic: core.SemanticAmount, Candidates: []string{"Total Venda", "Venda R$"}, Required: true},
	},
}

// Registry is the customer registration report.
var Registry = core.SourceDefinition{
	Key:     core.SourceRegistry,
	Label:   "Relatório de Cadastro",
	Markers: []string{"CPF", "Data de Nascimento"},
	Columns: []core.ColumnRule{
		{Semantic: core.SemanticName, Candidates: []string{"Nome"}, Required: true},
		{Semantic: core.SemanticPhone, Candidates: []string{"Telefone", "Celular"}},
	},
}
