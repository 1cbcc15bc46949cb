// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Ledger error categories. Every error returned by the store or the ledger
// for one of these reasons matches the sentinel with errors.Is.
var (
	ErrValidation  = errors.New("validation failed")
	ErrReferential = errors.New("referenced entity does not exist")
	ErrStorage     = errors.New("storage failure")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidationError reports a missing, empty, or out-of-range input field.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ReferentialError reports a reference to a row that does not exist.
type ReferentialError struct {
	Entity string
	ID     string
}

// NewReferentialError creates a ReferentialError for entity id.
func NewReferentialError(entity, id string) error {
	return &ReferentialError{Entity: entity, ID: id}
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("%s: %s %q", ErrReferential, e.Entity, e.ID)
}

// Is matches ErrReferential.
func (e *ReferentialError) Is(target error) bool {
	return target == ErrReferential
}

// StorageError wraps a failure of the underlying database.
type StorageError struct {
	Err error
	Op  string
}

// NewStorageError wraps err as a StorageError for operation op.
func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage, e.Op, e.Err)
}

// Is matches ErrStorage.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
