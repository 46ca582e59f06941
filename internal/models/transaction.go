package models

import "time"

// Transaction represents a single statement transaction.
type Transaction struct {
	Date        string `json:"date"` // YYYY-MM-DD
	Description string `json:"description"`
	Amount      Amount `json:"amount"`
}

// Identity names a known account/statement format.
type Identity string

const (
	BMOCADCreditCard Identity = "BMO CAD Credit Card"
	BMOUSCreditCard  Identity = "BMO US Credit Card"
	TDCADCreditCard  Identity = "TD CAD Credit Card"
	TDCADChecking    Identity = "TD CAD Checking"
)

// Issuer returns the bank family an identity belongs to ("BMO" or "TD").
func (id Identity) Issuer() string {
	switch id {
	case BMOCADCreditCard, BMOUSCreditCard:
		return "BMO"
	case TDCADCreditCard, TDCADChecking:
		return "TD"
	}
	return ""
}

// Period is the statement anchor month/year, used to resolve month-day
// transaction dates that carry no year of their own.
type Period struct {
	Month time.Month
	Year  int
}

// CurrentPeriod is the fallback anchor when the filename names no date.
func CurrentPeriod() Period {
	now := time.Now()
	return Period{Month: now.Month(), Year: now.Year()}
}

// ParseResult is the single structured output of one invocation.
type ParseResult struct {
	Account      *Identity     `json:"account"`
	Filename     string        `json:"filename"`
	Transactions []Transaction `json:"transactions"`
	Count        int           `json:"count"`
	Error        *string       `json:"error"`
}
