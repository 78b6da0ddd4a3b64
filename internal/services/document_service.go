package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/polarisid/smartos-sub000/internal/completion"
	"github.com/polarisid/smartos-sub000/internal/docfill"
	"github.com/polarisid/smartos-sub000/internal/metrics"
	"github.com/polarisid/smartos-sub000/internal/models"
	"github.com/polarisid/smartos-sub000/internal/repositories"
	"github.com/polarisid/smartos-sub000/internal/timeutil"
)

var (
	ErrTemplateNotFound = errors.New("document template not found")
	ErrUnknownVariable  = errors.New("unknown variable key")
	ErrInvalidField     = errors.New("invalid field definition")
	ErrInvalidTemplate  = errors.New("invalid template document")
)

// TemplateStore persists templates and their field layouts
type TemplateStore interface {
	Create(ctx context.Context, t *models.DocumentTemplate) error
	Get(ctx context.Context, id int) (*models.DocumentTemplate, error)
	List(ctx context.Context) ([]*models.DocumentTemplate, error)
	ListFields(ctx context.Context, templateID int) ([]models.FieldDefinition, error)
	ReplaceFields(ctx context.Context, templateID int, fields []models.FieldDefinition) error
}

// ObjectStore keeps template files
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
}

// DocumentRenderer fills a template with values
type DocumentRenderer interface {
	Render(ctx context.Context, tpl models.DocumentTemplate, fields []models.FieldDefinition, fill docfill.FillContext) ([]byte, docfill.PlacementReport, error)
}

type DocumentService struct {
	Templates TemplateStore
	Objects   ObjectStore
	Renderer  DocumentRenderer
	Routes    *RouteService

	// OpenTemplate checks an uploaded file before it is stored
	OpenTemplate func([]byte) (docfill.Document, error)
	Now          func() time.Time

	log *logrus.Entry
}

func NewDocumentService(templates TemplateStore, objects ObjectStore, renderer DocumentRenderer, routes *RouteService) *DocumentService {
	return &DocumentService{
		Templates: templates,
		Objects:   objects,
		Renderer:  renderer,
		Routes:    routes,
		OpenTemplate: func(data []byte) (docfill.Document, error) {
			return docfill.OpenPDF(data)
		},
		Now: timeutil.Now,
		log: logrus.WithField("component", "document_service"),
	}
}

func (s *DocumentService) ListTemplates(ctx context.Context) ([]*models.DocumentTemplate, error) {
	return s.Templates.List(ctx)
}

func (s *DocumentService) GetTemplate(ctx context.Context, id int) (*models.DocumentTemplate, error) {
	tpl, err := s.Templates.Get(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrTemplateNotFound
	}
	return tpl, err
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// UploadTemplate stores a PDF template after checking that it opens
func (s *DocumentService) UploadTemplate(ctx context.Context, name string, data []byte) (*models.DocumentTemplate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidTemplate)
	}
	doc, err := s.OpenTemplate(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	slug := strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(name), "-"), "-")
	key := fmt.Sprintf("templates/%d-%s.pdf", s.Now().UnixNano(), slug)
	if err := s.Objects.Put(ctx, key, "application/pdf", data); err != nil {
		return nil, fmt.Errorf("store template: %w", err)
	}

	tpl := &models.DocumentTemplate{Name: name, FileKey: key}
	if err := s.Templates.Create(ctx, tpl); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"template_id": tpl.ID,
		"pages":       doc.PageCount(),
	}).Info("Template uploaded")
	return tpl, nil
}

func (s *DocumentService) Fields(ctx context.Context, templateID int) ([]models.FieldDefinition, error) {
	if _, err := s.GetTemplate(ctx, templateID); err != nil {
		return nil, err
	}
	return s.Templates.ListFields(ctx, templateID)
}

// SaveFields validates and replaces the layout of a template
func (s *DocumentService) SaveFields(ctx context.Context, templateID int, fields []models.FieldDefinition) ([]models.FieldDefinition, error) {
	if _, err := s.GetTemplate(ctx, templateID); err != nil {
		return nil, err
	}
	if err := ValidateFields(fields); err != nil {
		return nil, err
	}

	saved := make([]models.FieldDefinition, len(fields))
	for i, f := range fields {
		f.TemplateID = templateID
		saved[i] = f
	}
	if err := s.Templates.ReplaceFields(ctx, templateID, saved); err != nil {
		return nil, fmt.Errorf("save fields: %w", err)
	}
	return saved, nil
}

// ValidateFields checks a layout: unique ids, known types, pages from 1,
// non-negative coordinates and bindings from the variable set.
func ValidateFields(fields []models.FieldDefinition) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		switch {
		case strings.TrimSpace(f.ID) == "":
			return fmt.Errorf("%w: field %q has no id", ErrInvalidField, f.Name)
		case seen[f.ID]:
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidField, f.ID)
		case f.Type != models.FieldTypeText && f.Type != models.FieldTypeCheckbox:
			return fmt.Errorf("%w: field %q has type %q", ErrInvalidField, f.ID, f.Type)
		case f.Page < 1:
			return fmt.Errorf("%w: field %q is on page %d", ErrInvalidField, f.ID, f.Page)
		case f.X < 0 || f.Y < 0:
			return fmt.Errorf("%w: field %q has negative coordinates", ErrInvalidField, f.ID)
		case f.Bound() && !f.VariableKey.Valid():
			return fmt.Errorf("%w: %q on field %q", ErrUnknownVariable, f.VariableKey, f.ID)
		}
		seen[f.ID] = true
	}
	return nil
}

// FillDocument renders a template for one stop of a route
func (s *DocumentService) FillDocument(ctx context.Context, templateID int, req *models.FillDocumentRequest) ([]byte, error) {
	tpl, err := s.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	fields, err := s.Templates.ListFields(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("load fields: %w", err)
	}

	route, err := s.Routes.GetRoute(ctx, req.RouteID)
	if err != nil {
		return nil, err
	}
	stop := route.FindStop(req.OrderID)
	if stop == nil {
		return nil, ErrStopNotFound
	}

	order, err := s.Routes.Orders.LatestSince(ctx, req.OrderID, route.CreatedAt)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("load service order: %w", err)
	}
	if order != nil && !completion.CompletedAfter(order.CompletedAt, route.CreatedAt) {
		order = nil
	}

	fill := docfill.FillContext{
		Values:    req.Values,
		Variables: docfill.BuildVariables(route, stop, order, s.Now()),
	}

	out, report, err := s.Renderer.Render(ctx, *tpl, fields, fill)
	if err != nil {
		metrics.DocumentsRendered.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.DocumentsRendered.WithLabelValues("ok").Inc()
	for _, key := range report.Unresolved {
		metrics.UnresolvedBindings.WithLabelValues(string(key)).Inc()
	}

	s.log.WithFields(logrus.Fields{
		"template_id": templateID,
		"route_id":    req.RouteID,
		"order_id":    req.OrderID,
		"drawn":       report.Drawn,
		"skipped":     report.Skipped,
	}).Info("Document filled")
	return out, nil
}
