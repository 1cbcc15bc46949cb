// Package ofx reads OFX/QFX bank and credit card statements and maps their
// lines onto ledger transaction inputs.
package ofx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

// TagPrefix marks the tag that records a statement line's FITID.
const TagPrefix = "ofx:"

// ErrZeroAmount is returned by Entry.ToInput for lines that move no money.
var ErrZeroAmount = errors.New("statement line has a zero amount")

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Entry is one statement line. Amount is signed: negative lines are debits.
type Entry struct {
	Date      time.Time
	Amount    decimal.Decimal
	FITID     string
	Name      string
	Memo      string
	AccountID string
	TrnType   string
	CheckNum  string
}

// Defaults supplies the ledger references that statements do not carry.
type Defaults struct {
	ExpenseCategoryID string
	IncomeCategoryID  string
	AccountID         string
	PersonID          string
}

// Tag returns the dedup tag recorded on the imported transaction. FITIDs are
// only unique within one statement account, so the account is part of the
// tag. Lines without a FITID have no tag.
func (e Entry) Tag() string {
	if e.FITID == "" {
		return ""
	}
	return TagPrefix + e.AccountID + ":" + e.FITID
}

// ToInput maps the entry to a transaction input. Debits become expenses and
// credits become income; the amount is the magnitude.
func (e Entry) ToInput(d Defaults) (model.TransactionInput, error) {
	if e.Amount.IsZero() {
		return model.TransactionInput{}, fmt.Errorf("%w: %s", ErrZeroAmount, e.FITID)
	}

	txnType := model.TransactionTypeIncome
	categoryID := d.IncomeCategoryID
	if e.Amount.IsNegative() {
		txnType = model.TransactionTypeExpense
		categoryID = d.ExpenseCategoryID
	}

	description := e.Name
	if description == "" {
		description = e.TrnType
	}

	var notes []string
	if e.Memo != "" && e.Memo != e.Name {
		notes = append(notes, e.Memo)
	}
	if e.CheckNum != "" {
		notes = append(notes, "check #"+e.CheckNum)
	}

	var tags []string
	if tag := e.Tag(); tag != "" {
		tags = []string{tag}
	}

	return model.TransactionInput{
		Date:               e.Date,
		Amount:             e.Amount.Abs(),
		Description:        description,
		Type:               txnType,
		CategoryID:         categoryID,
		AccountID:          d.AccountID,
		AssignedToPersonID: d.PersonID,
		PaidByPersonID:     d.PersonID,
		Notes:              strings.Join(notes, "; "),
		Tags:               tags,
	}, nil
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Some SGML exports drop the closing bracket of a bare opening tag.
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseFile parses an OFX/QFX file and returns its statement lines ordered
// by posting date.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]Entry, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var (
		entries          []Entry
		bankStmts, cards int
	)

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		entries = append(entries, p.convertAll(stmt.BankTranList.Transactions, string(stmt.BankAcctFrom.AcctID))...)
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		cards++
		entries = append(entries, p.convertAll(stmt.BankTranList.Transactions, string(stmt.CCAcctFrom.AcctID))...)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return a.Date.Compare(b.Date)
	})

	slog.Info("Parsed OFX file",
		"entries", len(entries),
		"bank_statements", bankStmts,
		"cc_statements", cards)

	return entries, nil
}

func (p *Parser) convertAll(txns []ofxgo.Transaction, accountID string) []Entry {
	entries := make([]Entry, 0, len(txns))
	for _, ofxTx := range txns {
		entry, err := p.convertTransaction(ofxTx, accountID)
		if err != nil {
			slog.Warn("Skipping unreadable statement line",
				"fitid", string(ofxTx.FiTID),
				"error", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID string) (Entry, error) {
	amount, err := decimal.NewFromString(ofxTx.TrnAmt.FloatString(6))
	if err != nil {
		return Entry{}, fmt.Errorf("invalid amount: %w", err)
	}

	return Entry{
		FITID:     string(ofxTx.FiTID),
		Date:      ofxTx.DtPosted.Time.UTC(),
		Name:      p.extractMerchantName(ofxTx),
		Memo:      strings.TrimSpace(string(ofxTx.Memo)),
		Amount:    amount,
		AccountID: accountID,
		TrnType:   ofxTx.TrnType.String(),
		CheckNum:  string(ofxTx.CheckNum),
	}, nil
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"COMPRA CARTAO ",
		"PIX ENVIADO ",
		"PIX RECEBIDO ",
		"ACH DEBIT ",
		"CHECK CARD ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " or "DD/MM " dates.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE", "PIX":
		return true
	default:
		return false
	}
}
