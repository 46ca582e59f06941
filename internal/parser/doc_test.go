package parser

import "github.com/ledgerdesk/statement-parser/internal/docext"

// fakeDoc is a test double for the document layer: per-page text for the
// line-oriented parser, per-page word lists for the position-based one.
// Word lists must be given in vertical-then-horizontal order, matching the
// PageWords contract.
type fakeDoc struct {
	pages []string
	words [][]docext.Word
}

func (d *fakeDoc) NumPages() int {
	if len(d.pages) > len(d.words) {
		return len(d.pages)
	}
	return len(d.words)
}

func (d *fakeDoc) PageText(n int) (string, error) {
	if n-1 < len(d.pages) {
		return d.pages[n-1], nil
	}
	return "", nil
}

func (d *fakeDoc) PageWords(n int, xTol, yTol float64) ([]docext.Word, error) {
	if n-1 < len(d.words) {
		return d.words[n-1], nil
	}
	return nil, nil
}

func (d *fakeDoc) Close() error { return nil }

// w builds an upright word.
func w(text string, x0, top float64) docext.Word {
	return docext.Word{Text: text, X0: x0, Top: top, Upright: true}
}
