// Package docext provides page-level access to statement PDFs: whole-page
// text in reading order, and positioned words for column-oriented layouts.
package docext

// Word is a single token on a page with its layout position.
// X0 is the horizontal start, Top the vertical position measured from the
// top of the page (smaller = higher). Rotated text carries Upright=false
// and is ignored by the parsers.
type Word struct {
	Text    string
	X0      float64
	Top     float64
	Upright bool
}

// Document is the read-only view of an opened statement PDF.
// Pages are numbered from 1.
type Document interface {
	// NumPages returns the page count.
	NumPages() int
	// PageText returns the plain text of a page in reading order.
	PageText(n int) (string, error)
	// PageWords returns the upright-aware word list of a page, ordered by
	// vertical-then-horizontal position. Tokens closer than xTol on the
	// same visual row (within yTol) are merged into one word.
	PageWords(n int, xTol, yTol float64) ([]Word, error)
	// Close releases the underlying file.
	Close() error
}
