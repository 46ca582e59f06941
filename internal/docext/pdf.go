package docext

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// letterHeight is the fallback page height (US Letter, points) used when a
// page carries no resolvable MediaBox.
const letterHeight = 792.0

type pdfDocument struct {
	f *os.File
	r *pdf.Reader
}

// Open reads a PDF file and returns a Document over its pages.
func Open(path string) (Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %q: %w", path, err)
	}
	if r.NumPage() == 0 {
		f.Close()
		return nil, fmt.Errorf("pdf %q has no pages", path)
	}
	return &pdfDocument{f: f, r: r}, nil
}

func (d *pdfDocument) NumPages() int {
	return d.r.NumPage()
}

func (d *pdfDocument) Close() error {
	return d.f.Close()
}

// PageText extracts a page's text row by row. If the row extraction yields
// garbage (custom font encodings), it falls back to the library's
// font-mapped plain text path.
func (d *pdfDocument) PageText(n int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf text extraction crashed on page %d: %v", n, r)
		}
	}()

	page := d.r.Page(n)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d not found", n)
	}

	if rows, rowErr := page.GetTextByRow(); rowErr == nil {
		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			line := strings.TrimSpace(strings.Join(parts, " "))
			if line != "" {
				lines = append(lines, line)
			}
		}
		text = strings.Join(lines, "\n")
		if isReadable(text) {
			return text, nil
		}
	}

	// Row extraction failed or produced unreadable output; try the
	// font-mapped plain text path.
	fonts := make(map[string]*pdf.Font)
	for _, name := range page.Fonts() {
		f := page.Font(name)
		fonts[name] = &f
	}
	plain, plainErr := page.GetPlainText(fonts)
	if plainErr == nil && isReadable(plain) {
		return strings.TrimSpace(plain), nil
	}

	// Neither path produced readable text; return whatever the row pass
	// gave us so regex parsers can still skip it line by line.
	return text, nil
}

// PageWords reconstructs the page's word list from positioned text objects.
func (d *pdfDocument) PageWords(n int, xTol, yTol float64) (words []Word, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf word extraction crashed on page %d: %v", n, r)
		}
	}()

	page := d.r.Page(n)
	if page.V.IsNull() {
		return nil, fmt.Errorf("page %d not found", n)
	}

	content := page.Content()
	height := pageHeight(page)
	return assembleWords(content.Text, height, xTol, yTol), nil
}

// pageHeight resolves the page's MediaBox height, walking up the page tree
// for inherited boxes.
func pageHeight(page pdf.Page) float64 {
	v := page.V
	for !v.IsNull() {
		box := v.Key("MediaBox")
		if !box.IsNull() && box.Len() == 4 {
			h := box.Index(3).Float64() - box.Index(1).Float64()
			if h > 0 {
				return h
			}
		}
		v = v.Key("Parent")
	}
	return letterHeight
}

// fragment is an intermediate whitespace-free token with its span.
type fragment struct {
	text string
	x0   float64
	x1   float64
	top  float64
}

// assembleWords converts raw positioned text objects into words. PDF show
// operators can emit anything from single glyphs to whole phrases, so each
// object is first split at whitespace (positions interpolated by glyph
// width), then fragments on the same visual row are merged when their
// horizontal gap is within xTol.
func assembleWords(items []pdf.Text, height, xTol, yTol float64) []Word {
	var frags []fragment
	for _, t := range items {
		frags = append(frags, explode(t, height)...)
	}
	if len(frags) == 0 {
		return nil
	}

	sort.Slice(frags, func(i, j int) bool {
		if frags[i].top != frags[j].top {
			return frags[i].top < frags[j].top
		}
		return frags[i].x0 < frags[j].x0
	})

	// Group fragments into visual rows anchored at the first fragment's top.
	var rows [][]fragment
	cur := []fragment{frags[0]}
	anchor := frags[0].top
	for _, f := range frags[1:] {
		if abs(f.top-anchor) <= yTol {
			cur = append(cur, f)
		} else {
			rows = append(rows, cur)
			cur = []fragment{f}
			anchor = f.top
		}
	}
	rows = append(rows, cur)

	var words []Word
	for _, row := range rows {
		sort.Slice(row, func(i, j int) bool { return row[i].x0 < row[j].x0 })
		w := Word{Text: row[0].text, X0: row[0].x0, Top: row[0].top, Upright: true}
		x1 := row[0].x1
		for _, f := range row[1:] {
			if f.x0-x1 <= xTol {
				w.Text += f.text
			} else {
				words = append(words, w)
				w = Word{Text: f.text, X0: f.x0, Top: f.top, Upright: true}
			}
			x1 = f.x1
		}
		words = append(words, w)
	}
	return words
}

// explode splits one text object at whitespace, interpolating fragment
// positions by average glyph width.
func explode(t pdf.Text, height float64) []fragment {
	runes := []rune(t.S)
	if len(runes) == 0 {
		return nil
	}
	cw := t.W / float64(len(runes))
	top := height - t.Y

	var frags []fragment
	start := -1
	for i := 0; i <= len(runes); i++ {
		atEnd := i == len(runes)
		if !atEnd && !unicode.IsSpace(runes[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			frags = append(frags, fragment{
				text: string(runes[start:i]),
				x0:   t.X + cw*float64(start),
				x1:   t.X + cw*float64(i),
				top:  top,
			})
			start = -1
		}
	}
	return frags
}

// isReadable reports whether extracted text is plausibly decoded statement
// text rather than garbage from an identity-encoded font. It requires a
// minimum length and a high ratio of plain ASCII characters; accented
// letters are deliberately not counted because broken font maps tend to
// produce exactly those.
func isReadable(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 20 {
		return false
	}
	total, readable := 0, 0
	for _, r := range trimmed {
		total++
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
			strings.ContainsRune(".,-/:;()'\"$%&@#!?+=*", r) {
			readable++
		}
	}
	return float64(readable)/float64(total) > 0.6
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
