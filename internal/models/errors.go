package models

import (
	"errors"
	"fmt"
)

// Failure classes. Wrap with fmt.Errorf("...: %w") and test with errors.Is.
var (
	// ErrSourceUnavailable is a network or parse failure of one data tier.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrSourceEmpty means the tier answered but with too few valid rows.
	ErrSourceEmpty = errors.New("source returned too few rows")
	// ErrRowParse marks a single malformed row; the batch continues.
	ErrRowParse = errors.New("row parse error")
	// ErrPersistenceRead is a failed table load. Callers treat it as empty.
	ErrPersistenceRead = errors.New("persistence read failed")
	// ErrPersistenceWrite is a failed table save and must reach the caller.
	ErrPersistenceWrite = errors.New("persistence write failed")
	// ErrResolutionMiss means the identifier is not in the directory.
	ErrResolutionMiss = errors.New("identifier not in directory")
	// ErrTableNotFound is returned by backends for a missing table.
	ErrTableNotFound = errors.New("table not found")
)

// SourceError is a classified failure of one named data source.
type SourceError struct {
	Source string
	Kind   error
	Err    error
}

func (e *SourceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Source, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Source, e.Kind, e.Err)
}

// Unwrap exposes both the class and the cause to errors.Is.
func (e *SourceError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Unavailable builds an ErrSourceUnavailable failure for source.
func Unavailable(source string, err error) error {
	return &SourceError{Source: source, Kind: ErrSourceUnavailable, Err: err}
}

// Empty builds an ErrSourceEmpty failure for source.
func Empty(source string, rows int) error {
	return &SourceError{Source: source, Kind: ErrSourceEmpty, Err: fmt.Errorf("%d valid rows", rows)}
}
