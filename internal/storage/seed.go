package storage

import "github.com/Veraticus/the-books-must-balance/internal/model"

// SeedOwner is the person created on first run.
var SeedOwner = model.Person{
	ID:      model.OwnerPersonID,
	Name:    "You",
	IsOwner: true,
}

// SeedAccount is the account created on first run.
var SeedAccount = model.Account{
	ID:       model.DefaultAccountID,
	Name:     "Main Account",
	Type:     model.AccountTypeChecking,
	Currency: model.DefaultCurrency,
	IsActive: true,
}

// DefaultCategories is the category catalog created on first run: seven
// expense categories followed by four income categories.
var DefaultCategories = []model.Category{
	{ID: "food", Name: "Food", Icon: "🍽️", Color: "#FF6B6B", Type: model.CategoryTypeExpense, IsActive: true},
	{ID: "transport", Name: "Transport", Icon: "🚗", Color: "#4ECDC4", Type: model.CategoryTypeExpense, IsActive: true},
	{ID: "health", Name: "Health", Icon: "🏥", Color: "#45B7D1", Type: model.CategoryTypeExpense, IsActive: true},
	{ID: "education", Name: "Education", Icon: "📚", Color: "#96CEB4", Type: model.CategoryTypeExpense, IsActive: true},
	{ID: "entertainment", Name: "Entertainment", Icon: "🎬", Color: "#FFEAA7", Type: model.CategoryTypeExpense, IsActive: true},
	{ID: "shopping", Name: "Shopping", Icon: "🛒", Color: "#DDA0DD", Type: model.CategoryTypeExpense, IsActive: true},
	{ID: "bills", Name: "Bills", Icon: "📋", Color: "#74B9FF", Type: model.CategoryTypeExpense, IsActive: true},

	{ID: "salary", Name: "Salary", Icon: "💼", Color: "#00B894", Type: model.CategoryTypeIncome, IsActive: true},
	{ID: "freelance", Name: "Freelance", Icon: "💻", Color: "#FDCB6E", Type: model.CategoryTypeIncome, IsActive: true},
	{ID: "investment", Name: "Investments", Icon: "📈", Color: "#6C5CE7", Type: model.CategoryTypeIncome, IsActive: true},
	{ID: "gift", Name: "Gift", Icon: "🎁", Color: "#FD79A8", Type: model.CategoryTypeIncome, IsActive: true},
}
