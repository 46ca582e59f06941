package parser

import (
	"testing"
	"time"

	"github.com/ledgerdesk/statement-parser/internal/docext"
	"github.com/ledgerdesk/statement-parser/internal/models"
)

// checkingPage lays out a minimal TD checking table:
//
//	Description            Withdrawals  Deposits  Date   Balance
//	MONTHLY PLAN FEE       50.00                  JAN15  950.00
//	PAYROLL DEPOSIT                     1,200.00  JAN16  2,150.00
//	DAILY CLOSING BALANCE                         JAN16  2,150.00
func checkingPage() []docext.Word {
	return []docext.Word{
		// header row
		w("Description", 40, 100), w("Withdrawals", 200, 100), w("Deposits", 260, 100),
		w("Date", 330, 100), w("Balance", 400, 100),
		// withdrawal row
		w("MONTHLY", 40, 120), w("PLAN", 90, 120), w("FEE", 125, 120),
		w("50.00", 200, 120), w("JAN15", 330, 120), w("950.00", 400, 120),
		// deposit row
		w("PAYROLL", 40, 140), w("DEPOSIT", 95, 140),
		w("1,200.00", 260, 140), w("JAN16", 330, 140), w("2,150.00", 400, 140),
		// summary row, skipped by label
		w("DAILY", 40, 160), w("CLOSING", 80, 160), w("BALANCE", 130, 160),
		w("JAN16", 330, 160), w("2,150.00", 400, 160),
		// dateless row, skipped
		w("PENDING", 40, 180), w("25.00", 200, 180),
	}
}

func TestTDParser_Checking(t *testing.T) {
	doc := &fakeDoc{words: [][]docext.Word{checkingPage()}}

	p := &TDParser{}
	txns, err := p.Parse(doc, "TD_ALL_INCLUSIVE_jan_31_2024.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("transactions: got %d, want 2", len(txns))
	}

	if txns[0].Date != "2024-01-15" {
		t.Errorf("txn[0].Date: got %q, want %q", txns[0].Date, "2024-01-15")
	}
	if txns[0].Description != "MONTHLY PLAN FEE" {
		t.Errorf("txn[0].Description: got %q", txns[0].Description)
	}
	if got := txns[0].Amount.StringFixed(2); got != "-50.00" {
		t.Errorf("txn[0].Amount: got %s, want -50.00", got)
	}

	if txns[1].Description != "PAYROLL DEPOSIT" {
		t.Errorf("txn[1].Description: got %q", txns[1].Description)
	}
	if got := txns[1].Amount.StringFixed(2); got != "1200.00" {
		t.Errorf("txn[1].Amount: got %s, want 1200.00", got)
	}
}

// creditCardPage lays out a minimal TD credit card table, including a
// wrapped description line and the TOTAL NEW BALANCE stop row.
func creditCardPage() []docext.Word {
	return []docext.Word{
		// header row
		w("TRANSACTION", 40, 50), w("DATE", 95, 50),
		w("POSTING", 130, 50), w("DATE", 170, 50),
		w("ACTIVITY", 210, 50), w("AMOUNT($)", 480, 50),
		// purchase with wrapped description
		w("JAN", 40, 80), w("5", 75, 80), w("JAN", 120, 80), w("6", 155, 80),
		w("NETFLIX.COM", 210, 80), w("AMSTERDAM", 300, 80), w("16.99", 480, 80),
		w("866-716-0414", 210, 100),
		// payment (leading minus = credit)
		w("JAN", 40, 120), w("9", 75, 120), w("JAN", 120, 120), w("10", 155, 120),
		w("PAYMENT", 210, 120), w("-", 280, 120), w("THANK", 300, 120), w("YOU", 350, 120),
		w("-84.50", 480, 120),
		// skipped summary rows
		w("PREVIOUS", 210, 140), w("STATEMENT", 270, 140), w("BALANCE", 340, 140),
		w("1,000.00", 480, 140),
		// stop marker: nothing after this row counts
		w("TOTAL", 210, 160), w("NEW", 260, 160), w("BALANCE", 300, 160),
		w("901.49", 480, 160),
		w("JAN", 40, 180), w("10", 75, 180), w("IGNORED", 210, 180), w("9.99", 480, 180),
		// issuer footer, also the table-end fallback
		w("TD", 40, 200),
	}
}

func TestTDParser_CreditCard(t *testing.T) {
	doc := &fakeDoc{words: [][]docext.Word{creditCardPage()}}

	p := &TDParser{}
	txns, err := p.Parse(doc, "td_visa_feb_10_2024.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("transactions: got %d, want 2", len(txns))
	}

	// Wrapped description folded into the preceding transaction.
	if txns[0].Description != "NETFLIX.COM AMSTERDAM 866-716-0414" {
		t.Errorf("txn[0].Description: got %q", txns[0].Description)
	}
	if txns[0].Date != "2024-01-05" {
		t.Errorf("txn[0].Date: got %q, want %q", txns[0].Date, "2024-01-05")
	}
	if got := txns[0].Amount.StringFixed(2); got != "-16.99" {
		t.Errorf("txn[0].Amount: got %s, want -16.99", got)
	}

	// Leading minus on the raw amount means credit: positive result.
	if txns[1].Description != "PAYMENT - THANK YOU" {
		t.Errorf("txn[1].Description: got %q", txns[1].Description)
	}
	if got := txns[1].Amount.StringFixed(2); got != "84.50" {
		t.Errorf("txn[1].Amount: got %s, want 84.50", got)
	}
}

func TestTDParser_CreditCardSkipsMaskedCardRows(t *testing.T) {
	words := []docext.Word{
		w("TRANSACTION", 40, 50), w("POSTING", 130, 50),
		w("ACTIVITY", 210, 50), w("AMOUNT($)", 480, 50),
		w("JAN", 40, 80), w("5", 75, 80),
		w("COFFEE", 210, 80), w("BAR", 280, 80), w("4.50", 480, 80),
		// card separator row between cardholders
		w("4520", 210, 100), w("12XX", 250, 100), w("XXXX", 290, 100),
		w("TOTAL", 210, 200),
	}
	doc := &fakeDoc{words: [][]docext.Word{words}}

	p := &TDParser{}
	txns, err := p.Parse(doc, "td_visa_feb_10_2024.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("transactions: got %d, want 1", len(txns))
	}
	if txns[0].Description != "COFFEE BAR" {
		t.Errorf("got %q, want COFFEE BAR", txns[0].Description)
	}
}

func TestTDParser_CreditCardStopsAtTotalNewBalance(t *testing.T) {
	// With a CONTINUED marker bounding the table, the TOTAL NEW BALANCE
	// summary row sits inside it and must terminate the page itself.
	words := []docext.Word{
		w("TRANSACTION", 40, 50), w("POSTING", 130, 50),
		w("ACTIVITY", 210, 50), w("AMOUNT($)", 480, 50),
		w("JAN", 40, 80), w("5", 75, 80),
		w("COFFEE", 210, 80), w("BAR", 280, 80), w("4.50", 480, 80),
		w("TOTAL", 210, 100), w("NEW", 260, 100), w("BALANCE", 300, 100),
		w("901.49", 480, 100),
		w("JAN", 40, 120), w("6", 75, 120), w("IGNORED", 210, 120), w("9.99", 480, 120),
		w("CONTINUED", 210, 150),
	}
	doc := &fakeDoc{words: [][]docext.Word{words}}

	p := &TDParser{}
	txns, err := p.Parse(doc, "td_visa_feb_10_2024.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("transactions: got %d, want 1", len(txns))
	}
	if txns[0].Description != "COFFEE BAR" {
		t.Errorf("got %q, want COFFEE BAR", txns[0].Description)
	}
}

func TestTDParser_CreditCardAmountColumnOrder(t *testing.T) {
	// A currency marker in the amount column can sit a point higher than
	// the amount itself; the leftmost word in the column still wins.
	words := []docext.Word{
		w("TRANSACTION", 40, 50), w("POSTING", 130, 50),
		w("ACTIVITY", 210, 50), w("AMOUNT($)", 480, 50),
		w("USD", 520, 80),
		w("JAN", 40, 82), w("5", 75, 82), w("FEE", 210, 82), w("16.99", 480, 82),
		w("TOTAL", 210, 200),
	}
	doc := &fakeDoc{words: [][]docext.Word{words}}

	p := &TDParser{}
	txns, err := p.Parse(doc, "td_visa_feb_10_2024.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("transactions: got %d, want 1", len(txns))
	}
	if got := txns[0].Amount.StringFixed(2); got != "-16.99" {
		t.Errorf("amount: got %s, want -16.99", got)
	}
}

func TestTDParser_CheckingWithoutDateAndBalanceHeaders(t *testing.T) {
	// Some checking pages omit the Date/Balance header labels; column
	// boundaries then fall back to fixed offsets from the deposits column.
	words := []docext.Word{
		w("Description", 40, 100), w("Withdrawals", 200, 100), w("Deposits", 260, 100),
		w("MONTHLY", 40, 120), w("PLAN", 90, 120), w("FEE", 125, 120),
		w("50.00", 200, 120), w("JAN15", 350, 120),
		w("PAYROLL", 40, 140), w("DEPOSIT", 95, 140),
		w("1,200.00", 300, 140), w("JAN16", 350, 140),
	}
	doc := &fakeDoc{words: [][]docext.Word{words}}

	p := &TDParser{}
	txns, err := p.Parse(doc, "TD_ALL_INCLUSIVE_jan_31_2024.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("transactions: got %d, want 2", len(txns))
	}
	if txns[0].Date != "2024-01-15" {
		t.Errorf("txn[0].Date: got %q, want %q", txns[0].Date, "2024-01-15")
	}
	if got := txns[0].Amount.StringFixed(2); got != "-50.00" {
		t.Errorf("txn[0].Amount: got %s, want -50.00", got)
	}
	if txns[1].Date != "2024-01-16" {
		t.Errorf("txn[1].Date: got %q, want %q", txns[1].Date, "2024-01-16")
	}
	if got := txns[1].Amount.StringFixed(2); got != "1200.00" {
		t.Errorf("txn[1].Amount: got %s, want 1200.00", got)
	}
}

func TestFindCCDescColumn(t *testing.T) {
	// No ACTIVITY/DESCRIPTION label: the rightmost header word left of the
	// amount column marks the description start.
	header := []docext.Word{
		w("TRANSACTION", 40, 50), w("POSTING", 130, 50), w("AMOUNT($)", 480, 50),
	}
	if got := findCCDescColumn(header, 50, 480); got != 130 {
		t.Errorf("got %v, want 130", got)
	}

	// Bare amount header: constant fallback.
	bare := []docext.Word{w("AMOUNT($)", 480, 50)}
	if got := findCCDescColumn(bare, 50, 480); got != 140 {
		t.Errorf("got %v, want 140", got)
	}
}

func TestTDParser_LayoutClassification(t *testing.T) {
	p := &TDParser{}

	cc := &fakeDoc{words: [][]docext.Word{creditCardPage()}}
	got, err := p.isCreditCard(cc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Error("credit card page classified as checking")
	}

	chk := &fakeDoc{words: [][]docext.Word{checkingPage()}}
	got, err = p.isCreditCard(chk)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("checking page classified as credit card")
	}
}

func TestGroupLines(t *testing.T) {
	words := []docext.Word{
		w("a", 10, 100), w("b", 50, 102), w("c", 90, 103),
		w("d", 10, 120), w("e", 50, 121),
		w("f", 10, 200),
	}
	lines := groupLines(words, 4)
	if len(lines) != 3 {
		t.Fatalf("lines: got %d, want 3", len(lines))
	}
	if len(lines[0]) != 3 || len(lines[1]) != 2 || len(lines[2]) != 1 {
		t.Errorf("line sizes: got %d/%d/%d, want 3/2/1", len(lines[0]), len(lines[1]), len(lines[2]))
	}
	if lines[0][1].Text != "b" {
		t.Errorf("horizontal order not preserved: got %q", lines[0][1].Text)
	}
}

func TestTDPeriod(t *testing.T) {
	tests := []struct {
		filename string
		month    time.Month
		year     int
	}{
		{"TD_ALL_INCLUSIVE_jan_31_2024.pdf", time.January, 2024},
		{"td_visa_feb_10-2024.pdf", time.February, 2024},
		{"TD Statement_Aug_5-2023.pdf", time.August, 2023},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			p := tdPeriod(tt.filename)
			if p.Month != tt.month || p.Year != tt.year {
				t.Errorf("got %v %d, want %v %d", p.Month, p.Year, tt.month, tt.year)
			}
		})
	}

	now := time.Now()
	p := tdPeriod("statement.pdf")
	if p.Month != now.Month() || p.Year != now.Year() {
		t.Errorf("fallback: got %v %d, want current period", p.Month, p.Year)
	}
}

func TestTDDateFallsBackToRawToken(t *testing.T) {
	anchor := models.Period{Month: time.February, Year: 2024}
	if got := tdDate("FEB", 30, anchor); got != "FEB30" {
		t.Errorf("got %q, want FEB30", got)
	}
}
