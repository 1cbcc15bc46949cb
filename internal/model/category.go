package model

// CategoryType indicates whether a category is for income or expense.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "expense"
)

// IsValid reports whether c is a known category type.
func (c CategoryType) IsValid() bool {
	return c == CategoryTypeIncome || c == CategoryTypeExpense
}

// Matches reports whether a transaction of type t may use this category type.
func (c CategoryType) Matches(t TransactionType) bool {
	return string(c) == string(t)
}

// Category groups transactions of one type. ParentID links a subcategory to
// its parent; it is not used for rollups.
type Category struct {
	ID       string
	Name     string
	Icon     string
	Color    string
	Type     CategoryType
	ParentID string
	IsActive bool
}

// CategoryInput carries the caller-supplied fields of a new category.
type CategoryInput struct {
	Name     string
	Icon     string
	Color    string
	Type     CategoryType
	ParentID string
}
