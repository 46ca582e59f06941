package parser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerdesk/statement-parser/internal/docext"
	"github.com/ledgerdesk/statement-parser/internal/models"
)

// TDParser handles TD statements. There is no single layout: checking
// statements are a five-column table (description, withdrawal, deposit,
// date, balance) and credit card statements a three-column table with
// wrapped description lines. Neither can be read from plain text, so rows
// are rebuilt from word positions.
type TDParser struct{}

func (p *TDParser) Issuer() string {
	return "TD"
}

const (
	// extract-words clustering tolerances
	tdWordXTol   = 2
	tdCCWordXTol = 1 // credit card columns sit closer together
	tdWordYTol   = 2

	// row grouping and header matching
	tdLineYTol   = 4
	tdCCLineYTol = 5
	tdHeaderYTol = 5
	tdColumnGap  = 5
)

var (
	// Anchor month/year from the filename, two observed naming schemes.
	tdFilenameDates = []*regexp.Regexp{
		regexp.MustCompile(`(?i)[-_]([a-zA-Z]{3})_\d{1,2}[_-](\d{4})\.pdf$`),
		regexp.MustCompile(`(?i)_([a-zA-Z]{3})_\d{1,2}-(\d{4})\.pdf$`),
	}

	tdMonthDay = regexp.MustCompile(
		`(JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC)\s*(\d{1,2})`)

	// Masked card numbers printed between transaction groups, e.g. "4520 12XX".
	maskedCardPattern = regexp.MustCompile(`\d{4}\s*\d{2}XX`)
)

var tdChkSkipLabels = []string{
	"BALANCE FORWARD", "OPENING BALANCE", "CLOSING BALANCE",
	"TOTAL", "DAILY CLOSING",
}

var (
	tdCCStopLabels = []string{"TOTAL NEW", "TD MESSAGE"}
	tdCCSkipLabels = []string{"PREVIOUS STATEMENT", "STARTING BALANCE", "NET AMOUNT"}
)

func (p *TDParser) Parse(doc docext.Document, filename string) ([]models.Transaction, error) {
	anchor := tdPeriod(filename)
	cc, err := p.isCreditCard(doc)
	if err != nil {
		return nil, err
	}
	if cc {
		return p.parseCreditCard(doc, anchor)
	}
	return p.parseChecking(doc, anchor)
}

// isCreditCard classifies the layout from page-one vocabulary: credit card
// statements head their table with TRANSACTION DATE / POSTING DATE columns.
func (p *TDParser) isCreditCard(doc docext.Document) (bool, error) {
	words, err := uprightWords(doc, 1, tdWordXTol)
	if err != nil {
		return false, err
	}
	hasTransaction, hasPosting := false, false
	for _, w := range words {
		up := strings.ToUpper(w.Text)
		if strings.Contains(up, "TRANSACTION") {
			hasTransaction = true
		}
		if strings.Contains(up, "POSTING") {
			hasPosting = true
		}
	}
	return hasTransaction && hasPosting, nil
}

// uprightWords returns a page's upright words; rotated marginalia is noise.
func uprightWords(doc docext.Document, page int, xTol float64) ([]docext.Word, error) {
	words, err := doc.PageWords(page, xTol, tdWordYTol)
	if err != nil {
		return nil, err
	}
	upright := make([]docext.Word, 0, len(words))
	for _, w := range words {
		if w.Upright {
			upright = append(upright, w)
		}
	}
	return upright, nil
}

// groupLines buckets words into visual lines: a word joins the current
// line while its vertical position is within yTol of the line's anchor
// (the first word's position). Input order is vertical-then-horizontal,
// which PageWords guarantees.
func groupLines(words []docext.Word, yTol float64) [][]docext.Word {
	var lines [][]docext.Word
	var cur []docext.Word
	anchor := 0.0
	for _, w := range words {
		if cur == nil {
			cur, anchor = []docext.Word{w}, w.Top
			continue
		}
		if absf(w.Top-anchor) <= yTol {
			cur = append(cur, w)
		} else {
			lines = append(lines, cur)
			cur, anchor = []docext.Word{w}, w.Top
		}
	}
	if cur != nil {
		lines = append(lines, cur)
	}
	return lines
}

// parseChecking reads the five-column checking table. Column boundaries
// come from the header row: each column label's horizontal start, minus a
// small gap, is the right edge of the column to its left.
func (p *TDParser) parseChecking(doc docext.Document, anchor models.Period) ([]models.Transaction, error) {
	var txns []models.Transaction
	for n := 1; n <= doc.NumPages(); n++ {
		words, err := uprightWords(doc, n, tdWordXTol)
		if err != nil {
			return nil, err
		}
		if len(words) == 0 {
			continue
		}

		headerTop, ok := findCheckingHeader(words)
		if !ok {
			continue
		}
		cols := map[string]float64{}
		for _, w := range words {
			if absf(w.Top-headerTop) > tdHeaderYTol {
				continue
			}
			label := strings.TrimSuffix(strings.TrimSpace(strings.ToLower(w.Text)), ":")
			switch {
			case strings.HasPrefix(label, "desc"):
				cols["desc"] = w.X0
			case strings.HasPrefix(label, "with"):
				cols["with"] = w.X0
			case strings.HasPrefix(label, "dep"):
				cols["dep"] = w.X0
			case strings.HasPrefix(label, "date"):
				cols["date"] = w.X0
			case strings.HasPrefix(label, "bal"):
				cols["bal"] = w.X0
			}
		}
		withX, haveWith := cols["with"]
		depX, haveDep := cols["dep"]
		if !haveWith || !haveDep {
			continue
		}

		descEnd := withX - tdColumnGap
		withEnd := depX - tdColumnGap
		depEnd := colOr(cols, "date", depX+80) - tdColumnGap
		dateEnd := colOr(cols, "bal", depEnd+65) - tdColumnGap

		var body []docext.Word
		for _, w := range words {
			if w.Top > headerTop+tdHeaderYTol {
				body = append(body, w)
			}
		}

		for _, line := range groupLines(body, tdLineYTol) {
			var descParts, withParts, depParts, dateParts []string
			for _, w := range line {
				switch {
				case w.X0 < descEnd:
					descParts = append(descParts, w.Text)
				case w.X0 < withEnd:
					withParts = append(withParts, w.Text)
				case w.X0 < depEnd:
					depParts = append(depParts, w.Text)
				case w.X0 < dateEnd:
					dateParts = append(dateParts, w.Text)
				}
			}

			desc := strings.TrimSpace(strings.Join(descParts, " "))
			if desc == "" || containsAny(strings.ToUpper(desc), tdChkSkipLabels) {
				continue
			}

			dateStr := strings.ToUpper(strings.Join(dateParts, ""))
			dm := tdMonthDay.FindStringSubmatch(dateStr)
			if dm == nil {
				continue
			}

			withdrawal := strings.TrimSpace(strings.Join(withParts, ""))
			deposit := strings.TrimSpace(strings.Join(depParts, ""))
			var amt decimal.Decimal
			switch {
			case withdrawal != "":
				amt = firstAmountIn(withdrawal).Neg()
			case deposit != "":
				amt = firstAmountIn(deposit)
			default:
				continue
			}
			if amt.IsZero() {
				continue
			}

			day, _ := strconv.Atoi(dm[2])
			txns = append(txns, models.Transaction{
				Date:        tdDate(dm[1], day, anchor),
				Description: normalizeSpace(desc),
				Amount:      models.NewAmount(amt),
			})
		}
	}
	return txns, nil
}

// findCheckingHeader locates the header row via its "Withdrawals" label.
func findCheckingHeader(words []docext.Word) (float64, bool) {
	for _, w := range words {
		if strings.HasPrefix(strings.ToLower(w.Text), "withdrawal") {
			return w.Top, true
		}
	}
	return 0, false
}

// ccLine is a credit-card row still carrying its unresolved date.
type ccLine struct {
	mon  string
	day  int
	desc string
	amt  decimal.Decimal
}

// parseCreditCard reads the credit card table. The amount column start
// comes from the "AMOUNT ($)" header; the description column from the
// ACTIVITY/DESCRIPTION label. Wrapped description lines carry no date or
// amount of their own and are folded into the preceding transaction.
func (p *TDParser) parseCreditCard(doc docext.Document, anchor models.Period) ([]models.Transaction, error) {
	var rows []ccLine
	for n := 1; n <= doc.NumPages(); n++ {
		words, err := uprightWords(doc, n, tdCCWordXTol)
		if err != nil {
			return nil, err
		}
		if len(words) == 0 {
			continue
		}

		headerTop, amountX, ok := findCCHeader(words)
		if !ok {
			continue
		}
		descX := findCCDescColumn(words, headerTop, amountX)
		dateMid := descX / 2

		// The table ends at the first CONTINUED marker below the header,
		// falling back to the first TOTAL or issuer-name word.
		tableEnd := findCCTableEnd(words, headerTop)

		var table []docext.Word
		for _, w := range words {
			if w.Top > headerTop+tdHeaderYTol && w.Top < tableEnd {
				table = append(table, w)
			}
		}

	lines:
		for _, line := range groupLines(table, tdCCLineYTol) {
			var dateParts, descParts []string
			var amountWords []docext.Word
			for _, w := range line {
				switch {
				case w.X0 >= amountX:
					amountWords = append(amountWords, w)
				case w.X0 >= descX:
					descParts = append(descParts, w.Text)
				case w.X0 < dateMid:
					dateParts = append(dateParts, w.Text)
				}
			}

			desc := strings.TrimSpace(strings.Join(descParts, " "))
			descUpper := strings.ToUpper(desc)
			dateStr := strings.ToUpper(strings.Join(dateParts, ""))
			rawAmount := ""
			if len(amountWords) > 0 {
				// Line order is (top, x0); re-sort so the leftmost word in
				// the column is the amount even when the row wobbles.
				sort.Slice(amountWords, func(i, j int) bool {
					return amountWords[i].X0 < amountWords[j].X0
				})
				rawAmount = amountWords[0].Text
			}

			if startsWithAny(descUpper, tdCCStopLabels) {
				break lines
			}
			if desc == "" || startsWithAny(descUpper, tdCCSkipLabels) {
				continue
			}
			if strings.TrimSpace(descUpper) == "ACTIVITY" {
				continue
			}
			if maskedCardPattern.MatchString(desc) {
				continue
			}

			dm := tdMonthDay.FindStringSubmatch(dateStr)
			credit := strings.HasPrefix(strings.TrimSpace(rawAmount), "-")
			amt := firstAmountIn(rawAmount)

			if dm != nil && amt.IsPositive() {
				day, _ := strconv.Atoi(dm[2])
				if !credit {
					amt = amt.Neg()
				}
				rows = append(rows, ccLine{mon: dm[1], day: day, desc: desc, amt: amt})
			} else if len(rows) > 0 {
				// Continuation of the previous transaction's description.
				last := &rows[len(rows)-1]
				last.desc += " " + desc
			}
		}
	}

	txns := make([]models.Transaction, 0, len(rows))
	for _, r := range rows {
		txns = append(txns, models.Transaction{
			Date:        tdDate(r.mon, r.day, anchor),
			Description: normalizeSpace(r.desc),
			Amount:      models.NewAmount(r.amt),
		})
	}
	return txns, nil
}

// findCCHeader locates the header row by the AMOUNT ($) column label and
// returns its vertical position and the amount column's horizontal start.
func findCCHeader(words []docext.Word) (top, x0 float64, ok bool) {
	for _, w := range words {
		if strings.Contains(strings.ToUpper(w.Text), "AMOUNT") && strings.Contains(w.Text, "$") {
			return w.Top, w.X0, true
		}
	}
	return 0, 0, false
}

// findCCDescColumn resolves where the description column starts. Preferred:
// the ACTIVITY/DESCRIPTION header label. Fallback: the largest horizontal
// start among header-row words left of the amount column, or a constant
// when the header row carries nothing else.
func findCCDescColumn(words []docext.Word, headerTop, amountX float64) float64 {
	for _, w := range words {
		if absf(w.Top-headerTop) > tdHeaderYTol {
			continue
		}
		up := strings.ToUpper(w.Text)
		if strings.Contains(up, "ACTIVITY") || strings.Contains(up, "DESCRIPTION") {
			return w.X0
		}
	}
	best := 140.0
	found := false
	for _, w := range words {
		if absf(w.Top-headerTop) <= tdHeaderYTol && w.X0 < amountX {
			if !found || w.X0 > best {
				best = w.X0
				found = true
			}
		}
	}
	if !found {
		return 140.0
	}
	return best
}

func findCCTableEnd(words []docext.Word, headerTop float64) float64 {
	const inf = 1e18
	for _, w := range words {
		if w.Top > headerTop+tdHeaderYTol && strings.ToUpper(w.Text) == "CONTINUED" {
			return w.Top
		}
	}
	for _, w := range words {
		if w.Top <= headerTop+tdHeaderYTol {
			continue
		}
		up := strings.ToUpper(w.Text)
		if up == "TOTAL" || up == "TD" {
			return w.Top
		}
	}
	return inf
}

// tdPeriod pulls the statement anchor out of the filename, trying the two
// observed naming schemes; defaults to the current month/year.
func tdPeriod(filename string) models.Period {
	for _, pat := range tdFilenameDates {
		m := pat.FindStringSubmatch(filename)
		if m == nil {
			continue
		}
		month, ok := monthFromAbbrev(m[1])
		if !ok {
			continue
		}
		year, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		return models.Period{Month: month, Year: year}
	}
	return models.CurrentPeriod()
}

// tdDate resolves a month/day against the anchor; tokens that make no
// calendar date pass through as they appeared on the page.
func tdDate(mon string, day int, anchor models.Period) string {
	month, ok := monthFromAbbrev(mon)
	if !ok {
		return rawMonthDay(mon, day)
	}
	iso, ok := resolveDate(month, day, anchor)
	if !ok {
		return rawMonthDay(mon, day)
	}
	return iso
}

func colOr(cols map[string]float64, key string, fallback float64) float64 {
	if v, ok := cols[key]; ok {
		return v
	}
	return fallback
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
