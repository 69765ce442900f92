// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package fogis

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an IntegrationError.
type ErrorKind string

const (
	// KindUnreachable: network failure, timeout or open circuit.
	KindUnreachable ErrorKind = "unreachable"
	// KindAuth: credentials rejected, including after one re-authentication.
	KindAuth ErrorKind = "auth"
	// KindTransient: rate limited or a server-side failure.
	KindTransient ErrorKind = "transient"
	// KindRejected: the external system refused the payload. Retrying the
	// same request cannot succeed.
	KindRejected ErrorKind = "rejected"
)

// IntegrationError is returned by every Client operation that fails.
type IntegrationError struct {
	Op         string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *IntegrationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fogis %s: %s (status %d): %v", e.Op, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fogis %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *IntegrationError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the same call may succeed if repeated.
func (e *IntegrationError) Retryable() bool {
	return e.Kind == KindUnreachable || e.Kind == KindTransient
}

// Permanent reports whether the failure excludes the request from
// automatic retries.
func (e *IntegrationError) Permanent() bool {
	return e.Kind == KindRejected
}

// IsPermanent reports whether err carries a permanent IntegrationError.
func IsPermanent(err error) bool {
	var ie *IntegrationError
	return errors.As(err, &ie) && ie.Permanent()
}

// IsRetryable reports whether err carries a retryable IntegrationError.
func IsRetryable(err error) bool {
	var ie *IntegrationError
	return errors.As(err, &ie) && ie.Retryable()
}

// KindOf returns the kind of the IntegrationError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var ie *IntegrationError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return ""
}

func newError(op string, kind ErrorKind, status int, err error) *IntegrationError {
	return &IntegrationError{Op: op, Kind: kind, StatusCode: status, Err: err}
}

// kindForStatus maps a non-success HTTP status to an error kind.
func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests || status == http.StatusRequestTimeout:
		return KindTransient
	case status >= 500:
		return KindTransient
	case status >= 400:
		return KindRejected
	default:
		return KindTransient
	}
}
