package core

import (
	"fmt"
	"sort"
	"sync"
)

// Source keys.
const (
	SourceSales    = "sales"
	SourceRegistry = "registry"
)

// ColumnRule describes how to find one semantic column by header name.
type ColumnRule struct {
	Semantic   string   // SemanticBuyer, SemanticAmount, ...
	Candidates []string // Header substrings, case-sensitive
	Required   bool     // Missing required columns block the run
}

// SourceDefinition describes one kind of export.
type SourceDefinition struct {
	Key     string       // "sales" or "registry"
	Label   string       // Display name: "Relatório de Vendas"
	Markers []string     // Header row keywords
	Columns []ColumnRule // Semantic columns to resolve
}

// Rule returns the column rule for a semantic name.
func (d SourceDefinition) Rule(semantic string) (ColumnRule, bool) {
	for _, r := range d.Columns {
		if r.Semantic == semantic {
			return r, true
		}
	}
	return ColumnRule{}, false
}

var (
	registry   = make(map[string]SourceDefinition)
	registryMu sync.RWMutex
)

// Register adds a source definition.
// Panics if a source with the same key is already registered.
func Register(def SourceDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Key]; exists {
		panic(fmt.Sprintf("source already registered: %s", def.Key))
	}
	registry[def.Key] = def
}

// Get returns a source definition by key.
func Get(key string) (SourceDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// All returns every registered source sorted by key.
func All() []SourceDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]SourceDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result
}

// Clear removes all registered sources.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]SourceDefinition)
}
