// Package cli provides styled terminal output for the books command.
package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#6C5CE7")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#00B894")
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#FDCB6E")
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#FF6B6B")
	// InfoColor indicates informational messages.
	InfoColor = lipgloss.Color("#74B9FF")
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666")

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().Foreground(ErrorColor)

	// InfoStyle formats informational messages.
	InfoStyle = lipgloss.NewStyle().Foreground(InfoColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().Foreground(SubtleColor)

	// BoldStyle makes text bold.
	BoldStyle = lipgloss.NewStyle().Bold(true)

	// BoxStyle is used for bordered content boxes.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)

	// TableHeaderStyle is used for table headers.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(PrimaryColor)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	BooksIcon   = "📒"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the books icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(BooksIcon + " " + title)
}

// RenderBox renders content in a styled box.
func RenderBox(title, content string) string {
	boxTitle := TitleStyle.UnsetMargins().Render(title)
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, boxTitle, content))
}

// FormatMoney renders an amount with two decimals and its currency code.
func FormatMoney(amount decimal.Decimal, currency string) string {
	if currency == "" {
		return amount.StringFixed(2)
	}
	return currency + " " + amount.StringFixed(2)
}

// FormatSigned renders a balance-affecting amount, green when positive and
// red when negative.
func FormatSigned(amount decimal.Decimal, currency string) string {
	text := FormatMoney(amount, currency)
	switch {
	case amount.IsPositive():
		return SuccessStyle.Render("+" + text)
	case amount.IsNegative():
		return ErrorStyle.Render(text)
	default:
		return text
	}
}
