package core

import (
	"errors"
	"fmt"
	"strings"
)

// Ingestion failures. A loader error means "this file could not be
// ingested"; callers must not attempt a partial run.
var (
	ErrEmptyFile        = errors.New("empty file")
	ErrHeaderNotFound   = errors.New("header not found")
	ErrMalformedFile    = errors.New("invalid csv")
	ErrTableUnavailable = errors.New("table unavailable")
	ErrNoSalesFiles     = errors.New("no file provided for sales")
	ErrUnknownSource    = errors.New("unknown source")
)

// ColumnError reports a required semantic column that could not be located.
// It is a configuration/input error: reconciliation must not proceed.
type ColumnError struct {
	Source     string   // "sales" or "registry"
	Semantic   string   // e.g. "buyer identifier"
	Candidates []string // substrings that were searched for
}

func (e *ColumnError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("missing required column: %s %s", e.Source, e.Semantic)
	}
	return fmt.Sprintf("missing required column: %s %s (looked for %q)",
		e.Source, e.Semantic, strings.Join(e.Candidates, `", "`))
}

// IngestError wraps a loader failure with the file it came from.
type IngestError struct {
	Source string
	File   string
	Err    error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("could not ingest %s file %q: %v", e.Source, e.File, e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}
