package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ledgerdesk/statement-parser/internal/docext"
	"github.com/ledgerdesk/statement-parser/internal/models"
)

// BMOParser handles BMO credit card statements (CAD and US).
//
// These are single-column, line-oriented statements:
//
//	POSTING_DATE  TRANSACTION_DATE  DESCRIPTION  AMOUNT[CR]
//
// Date tokens are abbreviated month + day ("Jan 5" or "Jan. 5"); a trailing
// CR marker flags a credit. Two sub-formats exist: the legacy one carries a
// trailing reference number per row and runs description words together
// without spaces, the modern one has plain descriptions. The variant is
// sniffed from page-one text.
type BMOParser struct{}

func (p *BMOParser) Issuer() string {
	return "BMO"
}

var (
	// Long-form date in the filename ("January 5, 2024") anchors the
	// statement month/year.
	bmoFilenameDate = regexp.MustCompile(`(?i)([a-zA-Z]+)\s+\d{1,2},\s+(\d{4})`)

	// Structural transaction line pattern.
	bmoTxnLine = regexp.MustCompile(
		`(?i)^([A-Za-z]{3}\.?\s?\d{1,2})\s+([A-Za-z]{3}\.?\s?\d{1,2})\s+(.*?)\s+(-?[\d,]+\.\d{2}(?:\s?CR)?)\b`)

	bmoDateToken = regexp.MustCompile(`^([A-Za-z]{3})\s*(\d{1,2})$`)

	// Legacy reference numbers: a long digit run or dash-grouped digits.
	// Extraction sometimes glues the reference onto the description word,
	// so a trailing attached digit run is also recognized.
	bmoRefNumeric  = regexp.MustCompile(`^\d{8,}$`)
	bmoRefDashed   = regexp.MustCompile(`^\d{2,}-[\d-]{4,}$`)
	bmoRefAttached = regexp.MustCompile(`\d{8,}$`)

	// Boundaries where legacy run-together descriptions get respaced.
	lowerUpperBoundary  = regexp.MustCompile(`([a-z])([A-Z])`)
	letterDigitBoundary = regexp.MustCompile(`([A-Za-z])(\d)`)
	digitLetterBoundary = regexp.MustCompile(`(\d)([A-Za-z])`)
)

func (p *BMOParser) Parse(doc docext.Document, filename string) ([]models.Transaction, error) {
	anchor := bmoPeriod(filename)
	legacy := p.isLegacy(doc)

	var txns []models.Transaction
	for n := 1; n <= doc.NumPages(); n++ {
		text, err := doc.PageText(n)
		if err != nil {
			return nil, err
		}
		for _, line := range strings.Split(text, "\n") {
			m := bmoTxnLine.FindStringSubmatch(strings.TrimSpace(line))
			if m == nil {
				continue
			}
			desc := strings.TrimSpace(m[3])
			if legacy {
				desc = stripReference(desc)
				desc = respace(desc)
			}
			amt, ok := bmoAmount(m[4])
			if !ok || amt.IsZero() {
				continue
			}
			txns = append(txns, models.Transaction{
				Date:        bmoDate(m[1], anchor),
				Description: desc,
				Amount:      amt,
			})
		}
	}
	return txns, nil
}

// isLegacy sniffs the statement sub-format from page one: legacy layouts
// carry a "Reference No." column header. The page text is upper-cased and
// space-stripped first because extraction splits the header unpredictably.
func (p *BMOParser) isLegacy(doc docext.Document) bool {
	text, err := doc.PageText(1)
	if err != nil {
		return false
	}
	t := strings.ReplaceAll(strings.ToUpper(text), " ", "")
	return strings.Contains(t, "REFERENCENO")
}

// bmoPeriod pulls the statement anchor out of the filename's long-form
// date, defaulting to the current month/year.
func bmoPeriod(filename string) models.Period {
	m := bmoFilenameDate.FindStringSubmatch(filename)
	if m == nil {
		return models.CurrentPeriod()
	}
	month, ok := monthFromAbbrev(m[1])
	if !ok {
		month = 1
	}
	year, err := strconv.Atoi(m[2])
	if err != nil {
		return models.CurrentPeriod()
	}
	return models.Period{Month: month, Year: year}
}

// bmoDate resolves a "Jan 5" / "Jan.5" token against the anchor. Tokens
// that don't resolve to a calendar date are passed through verbatim.
func bmoDate(token string, anchor models.Period) string {
	clean := strings.ReplaceAll(strings.TrimSpace(token), ".", "")
	m := bmoDateToken.FindStringSubmatch(clean)
	if m == nil {
		return token
	}
	month, ok := monthFromAbbrev(m[1])
	if !ok {
		return token
	}
	day, err := strconv.Atoi(m[2])
	if err != nil {
		return token
	}
	iso, ok := resolveDate(month, day, anchor)
	if !ok {
		return token
	}
	return iso
}

// bmoAmount parses the amount column. A trailing CR marker (any case)
// means credit, so the value stays positive; everything else is a charge
// and is negated.
func bmoAmount(s string) (models.Amount, bool) {
	up := strings.ToUpper(strings.TrimSpace(s))
	credit := strings.Contains(up, "CR")
	up = strings.TrimSpace(strings.ReplaceAll(up, "CR", ""))
	a, err := models.ParseAmount(up)
	if err != nil {
		return models.Amount{}, false
	}
	if credit {
		return a, true
	}
	return a.Neg(), true
}

// stripReference drops a trailing legacy reference-number token.
func stripReference(desc string) string {
	parts := strings.Fields(desc)
	if len(parts) == 0 {
		return desc
	}
	last := parts[len(parts)-1]
	if bmoRefNumeric.MatchString(last) || bmoRefDashed.MatchString(last) {
		return strings.TrimSpace(strings.Join(parts[:len(parts)-1], " "))
	}
	if loc := bmoRefAttached.FindStringIndex(last); loc != nil && loc[0] > 0 {
		parts[len(parts)-1] = last[:loc[0]]
		return strings.TrimSpace(strings.Join(parts, " "))
	}
	return desc
}

// respace re-inserts spacing into a run-together legacy description by
// splitting at lower→upper and letter↔digit transitions. Best effort:
// legitimate embedded digits (store numbers) get split too.
func respace(desc string) string {
	desc = lowerUpperBoundary.ReplaceAllString(desc, "$1 $2")
	desc = letterDigitBoundary.ReplaceAllString(desc, "$1 $2")
	desc = digitLetterBoundary.ReplaceAllString(desc, "$1 $2")
	return normalizeSpace(desc)
}
