// Package core provides the reconciliation pipeline behind the cashback
// report.
//
// This package holds all domain logic independent of any UI or transport
// layer. It can be used by web handlers, the CLI or tests without
// modification, and it keeps no state between calls.
//
// # Pipeline
//
//  1. [Load] decodes an export as Latin-1, finds the header row by marker
//     keywords, votes the delimiter and returns a [RawTable].
//  2. [Consolidate] merges monthly sales exports and drops exact duplicates.
//  3. [ResolveColumns] finds the buyer, amount, name and phone columns by
//     header substrings declared in each [SourceDefinition].
//  4. [Reconcile] joins sales to the registry on a [NormalizedKey], applies
//     the cashback rate and aggregates one [Balance] per customer.
//
// [Service.Run] chains the four steps for a set of uploads.
//
// # Source Registry
//
// Export formats are registered at init time using [Register]:
//
//	core.Register(core.SourceDefinition{
//	    Key:     "registry",
//	    Markers: []string{"CPF", "Data de Nascimento"},
//	    Columns: []core.ColumnRule{
//	        {Semantic: core.SemanticName, Candidates: []string{"Nome"}, Required: true},
//	    },
//	})
//
// # Error Handling
//
// Two failure classes are kept apart:
//
//   - Cell values never fail. [NormalizeText], [ParseMoney] and [FormatPhone]
//     degrade to an empty key, zero or bare digits.
//   - Tables and columns do. A file that cannot be ingested yields an
//     [*IngestError]; a required column that cannot be found yields a
//     [*ColumnError]. Either blocks the run.
//
// Technical errors are mapped to user-friendly messages using [MapError].
package core
