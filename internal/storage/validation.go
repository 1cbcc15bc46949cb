// Package storage provides the data persistence layer for the ledger.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// Validation errors.
var (
	ErrNilContext  = errors.New("context cannot be nil")
	ErrEmptyString = errors.New("string parameter cannot be empty")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// required reports an empty field as a validation error.
func required(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return common.NewValidationError(field, "is required")
	}
	return nil
}

func validatePersonInput(input model.PersonInput) error {
	return required(input.Name, "name")
}

func validateAccountInput(input model.AccountInput) error {
	if err := required(input.Name, "name"); err != nil {
		return err
	}
	if !input.Type.IsValid() {
		return common.NewValidationError("type", fmt.Sprintf("must be checking, savings, credit or debit, got %q", input.Type))
	}
	return nil
}

func validateCategoryInput(input model.CategoryInput) error {
	if err := required(input.Name, "name"); err != nil {
		return err
	}
	if err := required(input.Icon, "icon"); err != nil {
		return err
	}
	if err := required(input.Color, "color"); err != nil {
		return err
	}
	if !input.Type.IsValid() {
		return common.NewValidationError("type", fmt.Sprintf("must be income or expense, got %q", input.Type))
	}
	return nil
}

// validateTransactionInput checks every field that can be judged without
// touching the database.
func validateTransactionInput(input model.TransactionInput) error {
	if err := required(input.Description, "description"); err != nil {
		return err
	}
	if !input.Amount.IsPositive() {
		return common.NewValidationError("amount", "must be greater than zero")
	}
	if !input.Type.IsValid() {
		return common.NewValidationError("type", fmt.Sprintf("must be income or expense, got %q", input.Type))
	}
	if err := required(input.CategoryID, "category"); err != nil {
		return err
	}
	if err := required(input.AccountID, "account"); err != nil {
		return err
	}
	if err := required(input.AssignedToPersonID, "assigned to person"); err != nil {
		return err
	}
	if err := required(input.PaidByPersonID, "paid by person"); err != nil {
		return err
	}
	if !input.RecurringFrequency.IsValid() {
		return common.NewValidationError("recurring frequency", fmt.Sprintf("unknown value %q", input.RecurringFrequency))
	}
	if input.IsRecurring && input.RecurringFrequency == model.FrequencyNone {
		return common.NewValidationError("recurring frequency", "is required for recurring transactions")
	}
	return nil
}
