package document

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page is the extracted text of one page, numbered from 1.
type Page struct {
	Number int
	Text   string
}

// Parser turns raw document bytes into ordered page text.
type Parser interface {
	Parse(data []byte) ([]Page, error)
}

// ParseError reports bytes that could not be read as a document.
type ParseError struct {
	Page int // 0 when the failure is not tied to a page
	Err  error
}

func (e *ParseError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("parse document page %d: %v", e.Page, e.Err)
	}
	return fmt.Sprintf("parse document: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ErrEmptyDocument is returned for zero-length input.
var ErrEmptyDocument = errors.New("document is empty")

// PDFParser extracts plain text from PDF files.
type PDFParser struct{}

func NewPDFParser() *PDFParser { return &PDFParser{} }

// Parse reads every page in order. Any page failure aborts the whole document.
func (p *PDFParser) Parse(data []byte) (pages []Page, err error) {
	if len(data) == 0 {
		return nil, &ParseError{Err: ErrEmptyDocument}
	}
	current := 0
	// ledongthuc/pdf panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			pages = nil
			err = &ParseError{Page: current, Err: fmt.Errorf("malformed pdf: %v", rec)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	n := reader.NumPage()
	pages = make([]Page, 0, n)
	for i := 1; i <= n; i++ {
		current = i
		page := reader.Page(i)
		if page.V.IsNull() {
			return nil, &ParseError{Page: i, Err: errors.New("missing page object")}
		}
		// A page without a content stream is blank, not broken.
		if page.V.Key("Contents").Kind() == pdf.Null {
			pages = append(pages, Page{Number: i})
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, &ParseError{Page: i, Err: err}
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	return pages, nil
}

// ExtractText concatenates page text in page order with nothing between
// pages, so the last word of one page can run into the first word of the next.
func ExtractText(p Parser, data []byte) (string, error) {
	pages, err := p.Parse(data)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			return "", err
		}
		return "", &ParseError{Err: err}
	}
	var b strings.Builder
	for _, page := range pages {
		b.WriteString(page.Text)
	}
	return b.String(), nil
}
