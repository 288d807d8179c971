package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/WawaAlencar/sistema-cashback-cliente/internal/logging"
)

// MaxFileSize is the default limit for a single uploaded export (20MB).
var MaxFileSize int64 = 20 * 1024 * 1024

// Service runs the full pipeline for a set of uploads. It holds only
// configuration: every Run works on its own tables and returns a fresh
// Result that the service does not keep.
type Service struct {
	sales       SourceDefinition
	registry    SourceDefinition
	maxFileSize int64
}

// NewService creates a Service from the registered "sales" and "registry"
// sources. maxFileSize <= 0 uses MaxFileSize.
func NewService(maxFileSize int64) (*Service, error) {
	sales, ok := Get(SourceSales)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, SourceSales)
	}
	registry, ok := Get(SourceRegistry)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, SourceRegistry)
	}
	return NewServiceWith(sales, registry, maxFileSize), nil
}

// NewServiceWith creates a Service from explicit source definitions.
func NewServiceWith(sales, registry SourceDefinition, maxFileSize int64) *Service {
	if maxFileSize <= 0 {
		maxFileSize = MaxFileSize
	}
	return &Service{sales: sales, registry: registry, maxFileSize: maxFileSize}
}

// Sources returns the sales and registry definitions in use.
func (s *Service) Sources() (sales, registry SourceDefinition) {
	return s.sales, s.registry
}

// Run loads every upload, merges the sales files, resolves the semantic
// columns and reconciles. The first file that cannot be ingested blocks the
// whole run.
func (s *Service) Run(ctx context.Context, in RunInput) (*Result, error) {
	start := time.Now()
	runID := uuid.New().String()
	logger := logging.WithFields(ctx, "run_id", runID)

	if len(in.Sales) == 0 {
		return nil, ErrNoSalesFiles
	}

	salesTables := make([]*RawTable, 0, len(in.Sales))
	salesRows := 0
	for _, up := range in.Sales {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := s.load(s.sales, up)
		if err != nil {
			logger.Warn("sales file rejected", "file", up.Name, "error", err)
			return nil, err
		}
		salesRows += t.Len()
		salesTables = append(salesTables, t)
	}

	registry, err := s.load(s.registry, in.Registry)
	if err != nil {
		logger.Warn("registry file rejected", "file", in.Registry.Name, "error", err)
		return nil, err
	}

	sales := Consolidate(salesTables...)

	cols, err := ResolveColumns(sales, registry, s.sales, s.registry)
	if err != nil {
		logger.Warn("column resolution failed", "error", err)
		return nil, err
	}

	balances, err := Reconcile(sales, registry, cols, in.Options)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:    runID,
		Columns:  cols,
		Balances: balances,
		Stats: RunStats{
			SalesFiles:        len(in.Sales),
			SalesRows:         sales.Len(),
			DuplicatesRemoved: salesRows - sales.Len(),
			RegistryRows:      registry.Len(),
			Customers:         len(balances),
		},
		Duration: time.Since(start),
	}

	logger.Info("reconciliation completed",
		"sales_files", result.Stats.SalesFiles,
		"sales_rows", result.Stats.SalesRows,
		"duplicates_removed", result.Stats.DuplicatesRemoved,
		"registry_rows", result.Stats.RegistryRows,
		"customers", result.Stats.Customers,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// load ingests one upload for a source, wrapping failures in *IngestError.
func (s *Service) load(def SourceDefinition, up Upload) (*RawTable, error) {
	if len(up.Data) == 0 {
		return nil, &IngestError{Source: def.Key, File: up.Name, Err: ErrEmptyFile}
	}
	if int64(len(up.Data)) > s.maxFileSize {
		return nil, &IngestError{
			Source: def.Key,
			File:   up.Name,
			Err:    fmt.Errorf("file too large: %d bytes exceeds %dMB limit", len(up.Data), s.maxFileSize/(1024*1024)),
		}
	}
	t, err := Load(up.Data, def.Markers)
	if err != nil {
		return nil, &IngestError{Source: def.Key, File: up.Name, Err: err}
	}
	return t, nil
}
