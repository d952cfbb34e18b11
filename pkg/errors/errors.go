// Copyright (C) 2026 Ioannis Torakis <john.torakis@gmail.com>
// SPDX-License-Identifier: Elastic-2.0
//
// Licensed under the Elastic License 2.0.
// You may obtain a copy of the license at:
// https://www.elastic.co/licensing/elastic-license
//
// Use, modification, and redistribution permitted under the terms of the license,
// except for providing this software as a commercial service or product.

package errors

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Sentinel errors for common cases - these can be checked with errors.Is()
var (
	ErrUnauthorized       = errors.New("session is not authenticated")
	ErrForbidden          = errors.New("not authorized to access this resource")
	ErrServer             = errors.New("service is unavailable")
	ErrRequestNotFound    = errors.New("access request not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrInvalidTransition  = errors.New("status transition not allowed")
	ErrNotAuthenticated   = errors.New("no credentials configured")
	ErrConfigurationError = errors.New("configuration error")
)

// APIError provides structured error information for backend operations
type APIError struct {
	Operation string   // The operation that failed (e.g., "list requests", "update status")
	Resource  string   // The request id or role uuid involved, if any
	Status    int      // HTTP status code, 0 when the failure came from a 2xx error envelope
	Details   []string // detail strings from the errors envelope
	Err       error    // The underlying error
}

// Error implements the error interface
func (e *APIError) Error() string {
	msg := e.Message()
	if e.Resource != "" {
		return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, msg)
	}
	return fmt.Sprintf("failed to %s: %s", e.Operation, msg)
}

// Message returns the server-provided detail, or the underlying error when there is none
func (e *APIError) Message() string {
	if len(e.Details) > 0 {
		return strings.Join(e.Details, ", ")
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Status != 0 {
		return http.StatusText(e.Status)
	}
	return "unknown error"
}

// Unwrap returns the underlying error for error wrapping/unwrapping
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches a target error (for sentinel error checking)
func (e *APIError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewAPIError creates an APIError, deriving the sentinel from the HTTP status
func NewAPIError(operation, resource string, status int, details []string) *APIError {
	return &APIError{
		Operation: operation,
		Resource:  resource,
		Status:    status,
		Details:   details,
		Err:       sentinelForStatus(status),
	}
}

// WrapAPIError wraps a transport error with operation context
func WrapAPIError(operation, resource string, err error) error {
	if err == nil {
		return nil
	}

	// If it's already an APIError, don't double-wrap
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return err
	}

	return &APIError{Operation: operation, Resource: resource, Err: err}
}

func sentinelForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrRequestNotFound
	case status >= http.StatusInternalServerError:
		return ErrServer
	}
	return nil
}

// StatusCode extracts the HTTP status of an APIError, or 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

var accountMissing = regexp.MustCompile(`Account .*does not exist`)

// IsAccountNotExist reports whether the backend rejected a request because the
// target account is unknown. The match is case-sensitive against the detail text.
func IsAccountNotExist(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		for _, d := range apiErr.Details {
			if accountMissing.MatchString(d) {
				return true
			}
		}
	}
	return accountMissing.MatchString(err.Error())
}

// Is and As re-export the standard helpers so callers need a single errors import
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

func New(text string) error { return errors.New(text) }
