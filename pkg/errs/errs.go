// Package errs provides the typed error taxonomy shared across the service.
// Each error type pairs a sentinel (for errors.Is classification at the HTTP
// boundary) with a struct carrying the details that are logged internally.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks caller errors: malformed or missing request
	// fields. No state was changed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrObjectNotFound marks lookups that matched nothing.
	ErrObjectNotFound = errors.New("object not found")

	// ErrPersistence marks store or transaction failures. The transaction
	// was rolled back; no partial writes are visible.
	ErrPersistence = errors.New("persistence failure")

	// ErrInvariantViolation marks workflow branch logic that found no
	// matching rule. This is a programming defect, not a caller error.
	ErrInvariantViolation = errors.New("workflow invariant violation")

	// ErrExternalServiceDegraded marks directory or notification trouble.
	// It never blocks a workflow transition.
	ErrExternalServiceDegraded = errors.New("external service degraded")
)

// InvalidInputError reports a malformed or missing request field.
type InvalidInputError struct {
	ParamName string
	Message   string
}

// NewInvalidInputError creates an InvalidInputError for the given field.
func NewInvalidInputError(paramName, message string) *InvalidInputError {
	return &InvalidInputError{ParamName: paramName, Message: message}
}

func (e *InvalidInputError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("invalid input: %s", e.ParamName)
	}
	return fmt.Sprintf("invalid input: %s: %s", e.ParamName, e.Message)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// ObjectNotFoundError reports that no object matched the given identifier.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
}

// NewObjectNotFoundError creates an ObjectNotFoundError for the given lookup.
func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

func (e *ObjectNotFoundError) Error() string {
	return fmt.Sprintf("object not found: %s %v", e.ParamName, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// PersistenceError wraps a store failure with the operation that hit it.
type PersistenceError struct {
	Op    string
	Cause error
}

// NewPersistenceError creates a PersistenceError for op with its cause.
func NewPersistenceError(op string, cause error) *PersistenceError {
	return &PersistenceError{Op: op, Cause: cause}
}

func (e *PersistenceError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("persistence failure: %s", e.Op)
	}
	return fmt.Sprintf("persistence failure: %s (cause: %s)", e.Op, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return ErrPersistence
}

// InvariantViolationError reports that the workflow branch table produced no
// final status for a transition that passed validation.
type InvariantViolationError struct {
	Detail string
}

// NewInvariantViolationError creates an InvariantViolationError.
func NewInvariantViolationError(detail string) *InvariantViolationError {
	return &InvariantViolationError{Detail: detail}
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("workflow invariant violation: %s", e.Detail)
}

func (e *InvariantViolationError) Unwrap() error {
	return ErrInvariantViolation
}

// ExternalServiceDegradedError reports a failed call to a collaborator that
// the workflow degrades around (directory, notification channel).
type ExternalServiceDegradedError struct {
	Service string
	Cause   error
}

// NewExternalServiceDegradedError creates an ExternalServiceDegradedError.
func NewExternalServiceDegradedError(service string, cause error) *ExternalServiceDegradedError {
	return &ExternalServiceDegradedError{Service: service, Cause: cause}
}

func (e *ExternalServiceDegradedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("external service degraded: %s", e.Service)
	}
	return fmt.Sprintf("external service degraded: %s (cause: %s)", e.Service, e.Cause)
}

func (e *ExternalServiceDegradedError) Unwrap() error {
	return ErrExternalServiceDegraded
}
