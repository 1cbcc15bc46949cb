package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestValidateContext(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{name: "valid context", ctx: context.Background()},
		{name: "nil context", ctx: nil, wantErr: true},
		{name: "canceled context still valid", ctx: canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNilContext)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	assert.NoError(t, validateString("books.db", "dbPath"))
	assert.ErrorIs(t, validateString("", "dbPath"), ErrEmptyString)
	assert.ErrorIs(t, validateString("   ", "dbPath"), ErrEmptyString)
}

func TestValidateCategoryInput(t *testing.T) {
	valid := model.CategoryInput{Name: "Pets", Icon: "🐶", Color: "#123456", Type: model.CategoryTypeExpense}
	assert.NoError(t, validateCategoryInput(valid))

	tests := []struct {
		mutate func(*model.CategoryInput)
		name   string
	}{
		{name: "name", mutate: func(in *model.CategoryInput) { in.Name = "" }},
		{name: "icon", mutate: func(in *model.CategoryInput) { in.Icon = "" }},
		{name: "color", mutate: func(in *model.CategoryInput) { in.Color = "" }},
		{name: "type", mutate: func(in *model.CategoryInput) { in.Type = "transfer" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid
			tt.mutate(&input)
			assert.ErrorIs(t, validateCategoryInput(input), common.ErrValidation)
		})
	}
}

func TestValidateTransactionInput_Recurring(t *testing.T) {
	input := expenseInput("10")
	input.IsRecurring = true
	input.RecurringFrequency = model.FrequencyWeekly
	assert.NoError(t, validateTransactionInput(input))

	// A frequency on a one-off transaction is allowed and ignored by the ledger.
	input.IsRecurring = false
	assert.NoError(t, validateTransactionInput(input))
}
