// Package parser turns statement documents into transaction lists. Each
// issuer has its own parser because statement layouts are irregular and
// undocumented: BMO statements are single-column text lines, TD statements
// are multi-column tables that must be reconstructed from word positions.
package parser

import (
	"fmt"

	"github.com/ledgerdesk/statement-parser/internal/docext"
	"github.com/ledgerdesk/statement-parser/internal/models"
)

// Parser extracts transactions from a single statement document. The
// filename is part of the contract: it carries the statement anchor
// month/year used to resolve dates that appear without a year.
type Parser interface {
	Parse(doc docext.Document, filename string) ([]models.Transaction, error)
	// Issuer returns the bank family this parser handles.
	Issuer() string
}

// ForIssuer returns the parser for the given bank family.
func ForIssuer(issuer string) (Parser, error) {
	switch issuer {
	case "BMO":
		return &BMOParser{}, nil
	case "TD":
		return &TDParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported issuer: %q", issuer)
	}
}

// FallbackOrder lists the parsers tried when account detection is
// inconclusive, most distinctive structural pattern first.
func FallbackOrder() []Parser {
	return []Parser{&BMOParser{}, &TDParser{}}
}
