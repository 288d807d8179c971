package core

import "strings"

// Semantic column names used in ColumnRule and ColumnError.
const (
	SemanticBuyer  = "buyer identifier"
	SemanticAmount = "amount"
	SemanticName   = "customer name"
	SemanticPhone  = "phone"
)

// ResolveColumn returns the first column, left to right, containing any of
// the candidate substrings. Matching is case-sensitive, so accent variants
// ("Usuário", "Usuario") are listed separately.
func ResolveColumn(columns []string, candidates []string) (string, bool) {
	for _, col := range columns {
		for _, c := range candidates {
			if c != "" && strings.Contains(col, c) {
				return col, true
			}
		}
	}
	return "", false
}

// ResolveColumns locates the semantic columns of both tables.
// A missing required column yields a *ColumnError; a missing optional phone
// column leaves Columns.RegistryPhone empty.
func ResolveColumns(sales, registry *RawTable, salesDef, registryDef SourceDefinition) (Columns, error) {
	var cols Columns
	if sales == nil || registry == nil {
		return cols, ErrTableUnavailable
	}

	var err error
	if cols.SaleKey, err = resolveRule(sales, salesDef, SemanticBuyer); err != nil {
		return Columns{}, err
	}
	if cols.SaleAmount, err = resolveRule(sales, salesDef, SemanticAmount); err != nil {
		return Columns{}, err
	}
	if cols.RegistryName, err = resolveRule(registry, registryDef, SemanticName); err != nil {
		return Columns{}, err
	}
	if cols.RegistryPhone, err = resolveRule(registry, registryDef, SemanticPhone); err != nil {
		return Columns{}, err
	}
	return cols, nil
}

// resolveRule resolves one semantic column of def against t. Semantics the
// definition does not declare resolve to "".
func resolveRule(t *RawTable, def SourceDefinition, semantic string) (string, error) {
	rule, ok := def.Rule(semantic)
	if !ok {
		return "", nil
	}
	col, found := ResolveColumn(t.Columns(), rule.Candidates)
	if !found && rule.Required {
		return "", &ColumnError{Source: def.Key, Semantic: semantic, Candidates: rule.Candidates}
	}
	return col, nil
}
