package ofx

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const checkingStatement = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240301090000[-3:BRT]
<LANGUAGE>POR
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>BRL
<BANKACCTFROM>
<BANKID>0341
<ACCTID>55501-2
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240201000000[-3:BRT]
<DTEND>20240229000000[-3:BRT]
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240205120000[-3:BRT]
<TRNAMT>5000.00
<FITID>FEB-SAL-01
<NAME>PIX RECEBIDO ACME LTDA
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240203120000[-3:BRT]
<TRNAMT>-87.35
<FITID>FEB-MKT-01
<NAME>COMPRA CARTAO PAO DE ACUCAR
<MEMO>supermercado
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240210120000[-3:BRT]
<TRNAMT>-1200.00
<FITID>FEB-CHK-77
<CHECKNUM>77
<NAME>CHEQUE 77
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>3712.65
<DTASOF>20240229000000[-3:BRT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const cardStatement = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240301090000[-3:BRT]
<LANGUAGE>POR
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>BRL
<CCACCTFROM>
<ACCTID>5234000011112222
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240201000000[-3:BRT]
<DTEND>20240229000000[-3:BRT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240214120000[-3:BRT]
<TRNAMT>-39.90
<FITID>CC-0214-01
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseFile(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantCount int
		wantErr   bool
	}{
		{name: "checking statement", data: checkingStatement, wantCount: 3},
		{name: "credit card statement", data: cardStatement, wantCount: 1},
		{name: "leading blank lines", data: "\n\n  " + cardStatement, wantCount: 1},
		{name: "not ofx", data: "date,amount\n2024-01-01,10", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := NewParser().ParseFile(context.Background(), strings.NewReader(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, entries, tt.wantCount)
		})
	}
}

func TestParseFile_Entries(t *testing.T) {
	entries, err := NewParser().ParseFile(context.Background(), strings.NewReader(checkingStatement))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Sorted by posting date.
	market, salary, check := entries[0], entries[1], entries[2]

	assert.Equal(t, "FEB-MKT-01", market.FITID)
	assert.Equal(t, "PAO DE ACUCAR", market.Name)
	assert.Equal(t, "supermercado", market.Memo)
	assert.True(t, decimal.RequireFromString("-87.35").Equal(market.Amount))
	assert.Equal(t, "55501-2", market.AccountID)
	assert.Equal(t, time.Date(2024, 2, 3, 15, 0, 0, 0, time.UTC), market.Date)

	assert.Equal(t, "ACME LTDA", salary.Name)
	assert.True(t, decimal.NewFromInt(5000).Equal(salary.Amount))

	assert.Equal(t, "77", check.CheckNum)
	assert.Equal(t, "CHECK", check.TrnType)
}

func TestEntry_ToInput(t *testing.T) {
	defaults := Defaults{
		ExpenseCategoryID: "shopping",
		IncomeCategoryID:  "salary",
		AccountID:         model.DefaultAccountID,
		PersonID:          model.OwnerPersonID,
	}
	date := time.Date(2024, 2, 3, 15, 0, 0, 0, time.UTC)

	debit := Entry{FITID: "A1", AccountID: "55501-2", Date: date, Name: "Mercado", Memo: "feira", Amount: decimal.RequireFromString("-10.50"), CheckNum: "9"}
	input, err := debit.ToInput(defaults)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionTypeExpense, input.Type)
	assert.Equal(t, "shopping", input.CategoryID)
	assert.True(t, decimal.RequireFromString("10.50").Equal(input.Amount))
	assert.Equal(t, []string{"ofx:55501-2:A1"}, input.Tags)
	assert.Equal(t, "feira; check #9", input.Notes)
	assert.Equal(t, date, input.Date)
	assert.Equal(t, model.OwnerPersonID, input.PaidByPersonID)

	credit := Entry{FITID: "B2", Name: "", TrnType: "CREDIT", Amount: decimal.NewFromInt(300)}
	input, err = credit.ToInput(defaults)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionTypeIncome, input.Type)
	assert.Equal(t, "salary", input.CategoryID)
	assert.Equal(t, "CREDIT", input.Description)

	_, err = Entry{FITID: "Z"}.ToInput(defaults)
	assert.True(t, errors.Is(err, ErrZeroAmount))
}

func TestExtractMerchantName(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name     string
		tx       ofxgo.Transaction
		expected string
	}{
		{name: "card prefix", tx: ofxgo.Transaction{Name: "COMPRA CARTAO PADARIA"}, expected: "PADARIA"},
		{name: "pos prefix", tx: ofxgo.Transaction{Name: "POS PURCHASE STARBUCKS"}, expected: "STARBUCKS"},
		{name: "leading date", tx: ofxgo.Transaction{Name: "02/14 UBER TRIP"}, expected: "UBER TRIP"},
		{name: "clean name", tx: ofxgo.Transaction{Name: "NETFLIX.COM"}, expected: "NETFLIX.COM"},
		{name: "generic name uses memo", tx: ofxgo.Transaction{Name: "PIX", Memo: "Maria Silva"}, expected: "Maria Silva"},
		{name: "payee wins", tx: ofxgo.Transaction{Name: "DEBIT", Payee: &ofxgo.Payee{Name: "Farmacia"}}, expected: "Farmacia"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parser.extractMerchantName(tt.tx))
		})
	}
}

func TestEntry_Tag(t *testing.T) {
	checking := Entry{FITID: "FEB-SAL-01", AccountID: "55501-2"}
	savings := Entry{FITID: "FEB-SAL-01", AccountID: "99999-9"}

	assert.Equal(t, "ofx:55501-2:FEB-SAL-01", checking.Tag())
	assert.NotEqual(t, checking.Tag(), savings.Tag(), "same FITID in another account is a different line")

	untagged := Entry{AccountID: "55501-2", Name: "TARIFA", Amount: decimal.NewFromInt(-5)}
	assert.Empty(t, untagged.Tag())

	input, err := untagged.ToInput(Defaults{ExpenseCategoryID: "bills"})
	require.NoError(t, err)
	assert.Empty(t, input.Tags)
}
