// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error taxonomy for the harvester.

It bridges low-level transport and storage failures and the decisions the
scan loop has to make about them.

Architecture:

  - AppError: A struct carrying a [Kind], a machine-readable code and a cause.
  - Fatality: Errors flagged Fatal stop the process (e.g. credentials that
    can no longer be refreshed); every other error only aborts the current sweep.
  - Mapping: [HTTPStatus] translates a kind into a status for the operator surface.

Every error that leaves the catalog client, the session service or the record
store is wrapped as an [AppError] so the scan loop can classify it.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an [AppError].
type Kind string

const (
	// KindTransport is any failed call to the remote catalog.
	KindTransport Kind = "transport"
	// KindAuth is an expired or rejected credential.
	KindAuth Kind = "auth"
	// KindAssembly is a failure while collecting nested pages for one item.
	KindAssembly Kind = "assembly"
	// KindStore is a failed read or write against the record store.
	KindStore Kind = "store"
	// KindValidation is invalid configuration or operator input.
	KindValidation Kind = "validation"
	// KindNotFound is a missing resource.
	KindNotFound Kind = "not_found"
	// KindConflict is a duplicate or unique-constraint violation.
	KindConflict Kind = "conflict"
	// KindInternal is anything unexpected.
	KindInternal Kind = "internal"
)

// AppError is the canonical error type of the harvester.
type AppError struct {
	// Kind drives classification in the scan loop.
	Kind Kind `json:"kind"`
	// Code is a machine-readable error identifier (e.g. "REMOTE_STATUS").
	Code string `json:"code"`
	// Message is a human-readable description.
	Message string `json:"error"`
	// Fatal marks errors after which the process must not keep running.
	Fatal bool `json:"-"`
	// Cause is the underlying error.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the configuration key or flag that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Remote Catalog Errors

// Transport wraps a failed remote call (network error, decode error, timeout).
func Transport(operation string, cause error) *AppError {
	return &AppError{
		Kind:    KindTransport,
		Code:    "TRANSPORT_ERROR",
		Message: operation + " failed",
		Cause:   cause,
	}
}

// RemoteStatus reports a non-success HTTP status returned by the remote catalog.
func RemoteStatus(operation string, status int, body string) *AppError {
	return &AppError{
		Kind:    KindTransport,
		Code:    "REMOTE_STATUS",
		Message: fmt.Sprintf("%s returned status %d", operation, status),
		Cause:   errors.New(body),
	}
}

// Unauthorized reports an expired or invalid credential. It is recoverable by
// refreshing the credential and retrying the same request once.
func Unauthorized(operation string) *AppError {
	return &AppError{
		Kind:    KindAuth,
		Code:    "UNAUTHORIZED",
		Message: operation + " rejected the session credential",
	}
}

// AuthFailed reports that a credential could not be obtained or refreshed.
// There is no point continuing without credentials, so it is fatal.
func AuthFailed(cause error) *AppError {
	return &AppError{
		Kind:    KindAuth,
		Code:    "AUTH_FAILED",
		Message: "session credential could not be refreshed",
		Fatal:   true,
		Cause:   cause,
	}
}

// # Pipeline Errors

// Assembly reports a failure while collecting one item's nested pages.
func Assembly(itemID string, cause error) *AppError {
	return &AppError{
		Kind:    KindAssembly,
		Code:    "ASSEMBLY_FAILED",
		Message: "assembling item " + itemID,
		Fatal:   IsFatal(cause),
		Cause:   cause,
	}
}

// Store reports a failed read or write against the record store.
func Store(operation string, cause error) *AppError {
	return &AppError{
		Kind:    KindStore,
		Code:    "STORE_FAILED",
		Message: operation,
		Cause:   cause,
	}
}

// # Generic Errors

// NotFound creates a not-found [AppError] for a named resource.
func NotFound(resource string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Code:    "NOT_FOUND",
		Message: resource + " not found",
	}
}

// Conflict creates an [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string, cause error) *AppError {
	return &AppError{
		Kind:    KindConflict,
		Code:    "CONFLICT",
		Message: msg,
		Cause:   cause,
	}
}

// ValidationError creates a validation [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Code:    "VALIDATION_ERROR",
		Message: msg,
		Details: details,
	}
}

// Internal wraps an unexpected error.
func Internal(cause error) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Code:    "INTERNAL_ERROR",
		Message: "an unexpected error occurred",
		Cause:   cause,
	}
}

// # Helpers

// As extracts the outermost [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// KindOf returns the kind of the outermost [*AppError] in err's chain,
// or [KindInternal] when err carries none.
func KindOf(err error) Kind {
	if ae := As(err); ae != nil {
		return ae.Kind
	}
	return KindInternal
}

// IsFatal reports whether any [*AppError] in err's chain is fatal.
func IsFatal(err error) bool {
	for err != nil {
		var ae *AppError
		if !errors.As(err, &ae) {
			return false
		}
		if ae.Fatal {
			return true
		}
		err = ae.Cause
	}
	return false
}

// HTTPStatus maps err onto a status code for the operator surface.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTransport, KindAuth:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
