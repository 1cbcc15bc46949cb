package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/ledger"
	"github.com/Veraticus/the-books-must-balance/internal/storage"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// openStorage opens the configured database without migrating it.
func (a *app) openStorage() (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(a.cfg.Database.Path)
	if err != nil {
		return nil, common.NewUserError("could not open the ledger database", err)
	}
	return store, nil
}

// openLedger opens the database and initializes a ledger over it. The
// caller closes the returned storage.
func (a *app) openLedger(ctx context.Context) (*ledger.Ledger, *storage.SQLiteStorage, error) {
	store, err := a.openStorage()
	if err != nil {
		return nil, nil, err
	}

	l := ledger.New(store, ledger.WithPersonTransactionLimit(a.cfg.Ledger.PersonTransactionLimit))
	if err := l.Init(ctx); err != nil {
		_ = store.Close()
		return nil, nil, common.NewUserError("could not load the ledger", err)
	}
	return l, store, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, common.NewValidationError("amount", fmt.Sprintf("%q is not a number", s))
	}
	return amount, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	date, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, common.NewValidationError("date", fmt.Sprintf("%q is not YYYY-MM-DD", s))
	}
	return date, nil
}

func formatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// newTable returns a tabwriter with the header row and rule already written.
func newTable(out io.Writer, columns ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	headers := make([]string, len(columns))
	rules := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = cli.TableHeaderStyle.Render(c)
		rules[i] = strings.Repeat("-", max(len(c), 4))
	}
	_, _ = fmt.Fprintln(w, strings.Join(headers, "\t"))
	_, _ = fmt.Fprintln(w, strings.Join(rules, "\t"))
	return w
}

func row(w io.Writer, cells ...string) {
	_, _ = fmt.Fprintln(w, strings.Join(cells, "\t"))
}
