package core

import "testing"

func TestRegistry(t *testing.T) {
	Clear()
	defer Clear()

	Register(testSales)
	Register(testRegistry)

	def, ok := Get(SourceSales)
	if !ok || def.Key != SourceSales {
		t.Fatalf("Get(%q) = %+v, %v", SourceSales, def, ok)
	}
	if _, ok := Get("unknown"); ok {
		t.Error("Get should miss unknown keys")
	}

	all := All()
	if len(all) != 2 || all[0].Key != SourceRegistry || all[1].Key != SourceSales {
		t.Errorf("All() not sorted by key: %+v", all)
	}

	if rule, ok := def.Rule(SemanticAmount); !ok || !rule.Required {
		t.Errorf("Rule(amount) = %+v, %v", rule, ok)
	}
	if _, ok := def.Rule(SemanticPhone); ok {
		t.Error("sales source declares no phone rule")
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	Clear()
	defer Clear()

	Register(testSales)
	defer func() {
		if recover() == nil {
			t.Error("registering the same key twice should panic")
		}
	}()
	Register(testSales)
}
