package docfill

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf/v2"
)

const (
	textFont     = "Helvetica"
	textFontSize = 10.0
	checkFont    = "ZapfDingbats"
	checkSize    = 12.0
	checkGlyph   = "4" // check mark in ZapfDingbats
)

// Fetcher returns the raw bytes of a stored template
type Fetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// PDFLoader loads PDF templates through a Fetcher
type PDFLoader struct {
	fetcher Fetcher
}

func NewPDFLoader(f Fetcher) *PDFLoader {
	return &PDFLoader{fetcher: f}
}

// Load fetches the template once and opens it; there is no retry
func (l *PDFLoader) Load(ctx context.Context, key string) (Document, error) {
	data, err := l.fetcher.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	return OpenPDF(data)
}

type pageSize struct {
	w, h float64
}

// PDFDocument re-creates every page of a template as an imported background and
// draws on top of it with gofpdf.
type PDFDocument struct {
	pdf   *gofpdf.Fpdf
	pages []pageSize
	tr    func(string) string
}

// OpenPDF imports all pages of a PDF template
func OpenPDF(data []byte) (doc *PDFDocument, err error) {
	if len(data) == 0 {
		return nil, errors.New("empty template document")
	}
	defer func() {
		// gofpdi panics on documents it cannot parse
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("open template: %v", r)
		}
	}()

	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt"})
	pdf.SetAutoPageBreak(false, 0)
	imp := newImporter()

	var rs io.ReadSeeker = bytes.NewReader(data)
	first := imp.importPage(pdf, &rs, 1, "/MediaBox")
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}

	sizes := imp.pageSizes()
	if len(sizes) == 0 {
		return nil, errors.New("open template: document has no pages")
	}

	doc = &PDFDocument{pdf: pdf, pages: make([]pageSize, len(sizes))}
	for n := 1; n <= len(sizes); n++ {
		box := sizes[n]["/MediaBox"]
		size := pageSize{w: box["w"], h: box["h"]}
		doc.pages[n-1] = size

		tpl := first
		if n > 1 {
			tpl = imp.importPage(pdf, &rs, n, "/MediaBox")
		}
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: size.w, Ht: size.h})
		imp.useTemplate(pdf, tpl, 0, 0, size.w, size.h)
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}

	doc.tr = pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont(textFont, "", textFontSize)
	return doc, nil
}

func (d *PDFDocument) PageCount() int {
	return len(d.pages)
}

func (d *PDFDocument) PageHeight(page int) float64 {
	return d.pages[ClampPage(page, len(d.pages))-1].h
}

// DrawText writes text with its baseline at (x, y), bottom-left origin
func (d *PDFDocument) DrawText(page int, x, y float64, text string) {
	page = ClampPage(page, len(d.pages))
	d.pdf.SetPage(page)
	d.pdf.SetFont(textFont, "", textFontSize)
	d.pdf.Text(x, d.toTop(page, y), d.tr(text))
}

// DrawCheck writes a check mark with its baseline at (x, y), bottom-left origin
func (d *PDFDocument) DrawCheck(page int, x, y float64) {
	page = ClampPage(page, len(d.pages))
	d.pdf.SetPage(page)
	d.pdf.SetFont(checkFont, "", checkSize)
	d.pdf.Text(x, d.toTop(page, y), checkGlyph)
	d.pdf.SetFont(textFont, "", textFontSize)
}

func (d *PDFDocument) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// toTop converts a bottom-left y into gofpdf's top-left space
func (d *PDFDocument) toTop(page int, y float64) float64 {
	return d.pages[page-1].h - y
}
