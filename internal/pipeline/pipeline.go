// Package pipeline orchestrates one statement conversion: detect the
// account, pick the parser, fall back when detection is inconclusive, and
// wrap everything into a single ParseResult.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/ledgerdesk/statement-parser/internal/account"
	"github.com/ledgerdesk/statement-parser/internal/docext"
	"github.com/ledgerdesk/statement-parser/internal/models"
	"github.com/ledgerdesk/statement-parser/internal/parser"
)

// Processor runs statement conversions. Open is injectable so tests can
// substitute fabricated documents for real PDFs.
type Processor struct {
	Open func(path string) (docext.Document, error)
	Log  zerolog.Logger
}

// New returns a Processor backed by the PDF document layer.
func New(log zerolog.Logger) *Processor {
	return &Processor{Open: docext.Open, Log: log}
}

// Process converts one statement. It never panics or returns an error:
// every failure is reported through the result's error field. A result
// with zero transactions and no error is a valid outcome (document matched
// neither format).
func (p *Processor) Process(path, hint string) (result models.ParseResult) {
	filename := filepath.Base(path)

	defer func() {
		if r := recover(); r != nil {
			p.Log.Error().Str("file", filename).Interface("panic", r).Msg("parse crashed")
			result = errorResult(filename, fmt.Sprintf("unexpected failure: %v", r))
		}
	}()

	if _, err := os.Stat(path); err != nil {
		return errorResult(filename, fmt.Sprintf("File not found: %s", path))
	}

	acct := account.Detect(path, hint)
	if acct != nil {
		p.Log.Debug().Str("file", filename).Str("account", string(*acct)).Msg("account detected")
	}

	txns, acct, err := p.parse(path, filename, acct)
	if err != nil {
		p.Log.Error().Str("file", filename).Err(err).Msg("parse failed")
		return errorResult(filename, err.Error())
	}
	if txns == nil {
		txns = []models.Transaction{}
	}

	return models.ParseResult{
		Account:      acct,
		Filename:     filename,
		Transactions: txns,
		Count:        len(txns),
	}
}

// parse opens the document and runs the issuer's parser. When the account
// is unresolved it tries the BMO parser first (its structural line pattern
// is the more distinctive), falling back to TD on error or empty output,
// and defaults the account from whichever parser produced rows.
func (p *Processor) parse(path, filename string, acct *models.Identity) ([]models.Transaction, *models.Identity, error) {
	doc, err := p.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer doc.Close()

	if acct != nil {
		pr, err := parser.ForIssuer(acct.Issuer())
		if err != nil {
			return nil, nil, err
		}
		txns, err := pr.Parse(doc, filename)
		return txns, acct, err
	}

	candidates := parser.FallbackOrder()
	bmo, td := candidates[0], candidates[1]

	txns, err := bmo.Parse(doc, filename)
	if err != nil {
		// A BMO failure on a TD document is expected; try the other format.
		p.Log.Warn().Str("file", filename).Err(err).Msg("BMO attempt failed, trying TD")
		txns, err = td.Parse(doc, filename)
		return txns, acct, err
	}
	if len(txns) == 0 {
		txns, err = td.Parse(doc, filename)
		if err != nil {
			return nil, acct, err
		}
		if len(txns) > 0 && acct == nil {
			acct = identityPtr(models.TDCADChecking)
		}
		return txns, acct, nil
	}
	if acct == nil {
		acct = identityPtr(models.BMOCADCreditCard)
	}
	return txns, acct, nil
}

func errorResult(filename, msg string) models.ParseResult {
	return models.ParseResult{
		Filename:     filename,
		Transactions: []models.Transaction{},
		Error:        &msg,
	}
}

func identityPtr(id models.Identity) *models.Identity {
	return &id
}
