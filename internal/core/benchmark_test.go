package core

import (
	"fmt"
	"strings"
	"testing"
)

// ============================================================================
// Normalization Benchmarks
// ============================================================================

// BenchmarkParseMoney covers the amount shapes seen in sales exports.
// Every sales row goes through it once per run.
func BenchmarkParseMoney(b *testing.B) {
	testCases := []any{
		"R$ 1.234,56",
		"R$ 100,00",
		"  99,9  ",
		"1234.5",
		"",
		float64(42.5),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			ParseMoney(tc)
		}
	}
}

// BenchmarkNormalizeText is the join key path for both tables.
func BenchmarkNormalizeText(b *testing.B) {
	testCases := []any{
		"João da Silva",
		"  MARIA   CONCEIÇÃO ",
		"ana lima",
		float64(12345),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			NormalizeText(tc)
		}
	}
}

func BenchmarkFormatPhone(b *testing.B) {
	testCases := []any{
		"(11) 98765-4321",
		"5511987654321",
		"21 3456-7890",
		float64(11987654321),
		"",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			FormatPhone(tc)
		}
	}
}

// ============================================================================
// Pipeline Benchmarks
// ============================================================================

func BenchmarkLoad(b *testing.B) {
	raw := generateSalesCSV(1000, 200)
	b.SetBytes(int64(len(raw)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Load(raw, salesMarkers); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkLoad_Large simulates a year of monthly exports in one file.
func BenchmarkLoad_Large(b *testing.B) {
	raw := generateSalesCSV(50000, 2000)
	b.SetBytes(int64(len(raw)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Load(raw, salesMarkers); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkConsolidate(b *testing.B) {
	jan, err := Load(generateSalesCSV(5000, 500), salesMarkers)
	if err != nil {
		b.Fatal(err)
	}
	feb, err := Load(generateSalesCSV(5000, 500), salesMarkers)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Consolidate(jan, feb)
	}
}

func BenchmarkReconcile(b *testing.B) {
	sales, err := Load(generateSalesCSV(20000, 1000), salesMarkers)
	if err != nil {
		b.Fatal(err)
	}
	people := make([][]string, 0, 1000)
	for c := 0; c < 1000; c++ {
		people = append(people, []string{
			fmt.Sprintf("CLIENTE %04d", c),
			fmt.Sprintf("(11) 9%04d-%04d", c, c),
		})
	}
	registry := registryTable(people...)
	cols := Columns{SaleKey: "Usuário", SaleAmount: "Total Venda", RegistryName: "Nome", RegistryPhone: "Telefone"}
	opts := Options{Rate: dec("0.10"), UnitPrice: dec("80")}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Reconcile(sales, registry, cols, opts); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkNormalizeTextParallel checks that normalization has no shared
// state that would serialize concurrent runs.
func BenchmarkNormalizeTextParallel(b *testing.B) {
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			NormalizeText("João da Silva")
		}
	})
}

// ============================================================================
// Helper Functions
// ============================================================================

// generateSalesCSV builds a Latin-1 sales export with a banner line and
// rows spread over the given number of customers.
func generateSalesCSV(rows, customers int) []byte {
	var sb strings.Builder
	sb.WriteString("Relatório de vendas\n")
	sb.WriteString("Matricula;Usuário;Pagamento;Total Venda\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&sb, "%d;Cliente %04d;Pix;R$ %d,%02d\n", i, i%customers, 10+i%500, i%100)
	}
	return latin1(sb.String())
}
