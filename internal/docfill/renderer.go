// Package docfill draws field values onto fixed positions of a PDF template.
//
// Field definitions store coordinates with a top-left origin, as placed in the
// template editor. Documents receive drawing calls with a bottom-left origin, the
// native PDF space, so every placement goes through the page height.
package docfill

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/polarisid/smartos-sub000/internal/models"
)

const (
	// TextBaselineOffset moves text down from the stored point so the glyphs sit
	// inside the box drawn in the editor.
	TextBaselineOffset = 10.0

	// CheckOffsetX and CheckOffsetY place the check glyph inside a checkbox whose
	// top-left corner is the stored point.
	CheckOffsetX = 2.0
	CheckOffsetY = 12.0
)

// ErrTemplateFetch is returned when the template document cannot be loaded.
var ErrTemplateFetch = errors.New("template fetch failed")

// Document is a loaded template that accepts drawing calls.
// Pages are 1-based; x and y use a bottom-left origin.
type Document interface {
	PageCount() int
	PageHeight(page int) float64
	DrawText(page int, x, y float64, text string)
	DrawCheck(page int, x, y float64)
	Bytes() ([]byte, error)
}

// Loader fetches and opens the template stored under key
type Loader interface {
	Load(ctx context.Context, key string) (Document, error)
}

// Variables holds computed values by variable key
type Variables map[models.VariableKey]string

// FillContext carries the values drawn onto a template.
// Values holds manual entries keyed by field id.
type FillContext struct {
	Values    map[string]string
	Variables Variables
}

// PlacementReport summarizes one placement pass
type PlacementReport struct {
	Drawn      int
	Skipped    int
	Unresolved []models.VariableKey
}

// Placeholder is drawn for a variable binding with no value in the context
func Placeholder(key models.VariableKey) string {
	return "<<" + string(key) + ">>"
}

// Renderer fills templates loaded through a Loader
type Renderer struct {
	loader Loader
	log    *logrus.Entry
}

func NewRenderer(loader Loader) *Renderer {
	return &Renderer{
		loader: loader,
		log:    logrus.WithField("component", "docfill"),
	}
}

// Render loads the template, draws fields and returns the resulting document.
// A load failure ends the call with ErrTemplateFetch and no bytes. Unresolved
// bindings do not fail the call; they show up as placeholders and in the report.
func (r *Renderer) Render(ctx context.Context, tpl models.DocumentTemplate, fields []models.FieldDefinition, fill FillContext) ([]byte, PlacementReport, error) {
	doc, err := r.loader.Load(ctx, tpl.FileKey)
	if err != nil {
		return nil, PlacementReport{}, fmt.Errorf("%w: %s: %w", ErrTemplateFetch, tpl.FileKey, err)
	}

	report := Place(doc, fields, fill)
	if len(report.Unresolved) > 0 {
		r.log.WithFields(logrus.Fields{
			"template_id": tpl.ID,
			"unresolved":  report.Unresolved,
		}).Warn("Unresolved variable bindings")
	}

	out, err := doc.Bytes()
	if err != nil {
		return nil, report, fmt.Errorf("render template %d: %w", tpl.ID, err)
	}
	return out, report, nil
}

// Place draws every field onto doc in a single pass. Neither fields nor fill are modified.
func Place(doc Document, fields []models.FieldDefinition, fill FillContext) PlacementReport {
	var report PlacementReport
	pages := doc.PageCount()

	for _, f := range fields {
		value, ok, resolved := fieldValue(f, fill)
		if !ok {
			report.Skipped++
			continue
		}

		page := ClampPage(f.Page, pages)
		height := doc.PageHeight(page)

		if !resolved {
			report.Unresolved = append(report.Unresolved, f.VariableKey)
			doc.DrawText(page, f.X, height-f.Y-TextBaselineOffset, value)
			report.Drawn++
			continue
		}

		switch f.Type {
		case models.FieldTypeCheckbox:
			if !Checked(value) {
				report.Skipped++
				continue
			}
			doc.DrawCheck(page, f.X+CheckOffsetX, height-f.Y-CheckOffsetY)
		default:
			if value == "" {
				report.Skipped++
				continue
			}
			doc.DrawText(page, f.X, height-f.Y-TextBaselineOffset, value)
		}
		report.Drawn++
	}
	return report
}

// fieldValue picks the value of f. ok is false when a manual field has no value;
// resolved is false when a bound field fell back to its placeholder.
func fieldValue(f models.FieldDefinition, fill FillContext) (value string, ok, resolved bool) {
	if f.Bound() {
		if v, found := fill.Variables[f.VariableKey]; found && f.VariableKey.Valid() {
			return v, true, true
		}
		return Placeholder(f.VariableKey), true, false
	}
	v, found := fill.Values[f.ID]
	return v, found, true
}

// ClampPage maps page numbers outside 1..pages to the first page
func ClampPage(page, pages int) int {
	if page < 1 || page > pages {
		return 1
	}
	return page
}

// Checked reports whether a checkbox value means "ticked"
func Checked(value string) bool {
	if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
		return b
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "x", "sim", "s", "yes", "y", "on", "checked":
		return true
	}
	return false
}
