package docfill

import (
	"io"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/phpdave11/gofpdi"
)

// importer copies pages of an existing PDF into a gofpdf document as templates.
// gofpdi parses the source; gofpdf receives the imported objects through its
// ImportObjects, ImportObjPos and ImportTemplates hooks.
type importer struct {
	fpdi *gofpdi.Importer
}

func newImporter() *importer {
	return &importer{fpdi: gofpdi.NewImporter()}
}

// importPage imports page pageno (1-based) of rs and returns its template id
func (i *importer) importPage(pdf *gofpdf.Fpdf, rs *io.ReadSeeker, pageno int, box string) int {
	i.fpdi.SetSourceStream(rs)
	tpl := i.fpdi.ImportPage(pageno, box)

	// Objects come back keyed by hash; gofpdf swaps the hashes for its own object numbers
	pdf.ImportTemplates(i.fpdi.PutFormXobjectsUnordered())
	pdf.ImportObjects(i.fpdi.GetImportedObjectsUnordered())
	pdf.ImportObjPos(i.fpdi.GetImportedObjHashPos())
	return tpl
}

// useTemplate draws an imported page at (x, y) with size w x h, top-left origin
func (i *importer) useTemplate(pdf *gofpdf.Fpdf, tpl int, x, y, w, h float64) {
	name, scaleX, scaleY, tx, ty := i.fpdi.UseTemplate(tpl, x, y, w, h)
	pdf.UseImportedTemplate(name, scaleX, scaleY, tx, ty)
}

// pageSizes returns the boxes of every page of the last source, keyed by page number
func (i *importer) pageSizes() map[int]map[string]map[string]float64 {
	return i.fpdi.GetPageSizes()
}
