// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package database

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a StoreError.
type ErrorKind string

const (
	KindNotFound   ErrorKind = "not_found"
	KindForeignKey ErrorKind = "foreign_key"
	KindConstraint ErrorKind = "constraint"
	KindConflict   ErrorKind = "conflict"
)

// Store errors
var (
	ErrNotFound      = errors.New("not found")
	ErrMatchNotFound = fmt.Errorf("match %w", ErrNotFound)
	ErrAlreadySynced = errors.New("event already synced")
)

// StoreError is returned by store operations that fail for a reason the
// caller can act on: a missing row, a missing parent match, a violated
// constraint or a write conflict.
type StoreError struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the StoreError in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

func newStoreError(op string, kind ErrorKind, err error) *StoreError {
	return &StoreError{Op: op, Kind: kind, Err: err}
}

// classify wraps a driver error. Constraint and conflict errors become
// StoreErrors; anything else is returned wrapped with op.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isUniqueConstraintError(err):
		return newStoreError(op, KindConflict, err)
	case isConstraintError(err):
		return newStoreError(op, KindConstraint, err)
	case isTransactionConflict(err):
		return newStoreError(op, KindConflict, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// DuckDB unique constraint error messages contain "UNIQUE constraint" or "Duplicate key"
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "unique constraint") || strings.Contains(errMsg, "duplicate key")
}

func isConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "constraint error") || strings.Contains(errMsg, "check constraint")
}

// isTransactionConflict checks if an error is a DuckDB transaction conflict
func isTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Transaction conflict") ||
		strings.Contains(errStr, "Conflict on update")
}
