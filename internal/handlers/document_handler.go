package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/polarisid/smartos-sub000/internal/models"
	"github.com/polarisid/smartos-sub000/internal/services"
	"github.com/polarisid/smartos-sub000/pkg/utils"
)

// maxTemplateSize bounds uploaded template files
const maxTemplateSize = 10 << 20

// DocumentHandler handles document templates, their field layouts and filling
type DocumentHandler struct {
	service *services.DocumentService
}

func NewDocumentHandler(service *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// ListTemplates handles GET /api/templates
func (h *DocumentHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.service.ListTemplates(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if templates == nil {
		templates = []*models.DocumentTemplate{}
	}
	utils.JSON(w, http.StatusOK, templates)
}

// GetTemplate handles GET /api/templates/{id}
func (h *DocumentHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid template ID")
		return
	}

	tpl, err := h.service.GetTemplate(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, tpl)
}

// UploadTemplate handles POST /api/templates (multipart: name, file)
func (h *DocumentHandler) UploadTemplate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxTemplateSize+1<<20)
	if err := r.ParseMultipartForm(maxTemplateSize); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid upload")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Template file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxTemplateSize+1))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Could not read template file")
		return
	}
	if len(data) > maxTemplateSize {
		utils.Error(w, http.StatusRequestEntityTooLarge, "Template file is too large")
		return
	}

	tpl, err := h.service.UploadTemplate(r.Context(), r.FormValue("name"), data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, tpl)
}

// GetFields handles GET /api/templates/{id}/fields
func (h *DocumentHandler) GetFields(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid template ID")
		return
	}

	fields, err := h.service.Fields(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if fields == nil {
		fields = []models.FieldDefinition{}
	}
	utils.JSON(w, http.StatusOK, fields)
}

// SaveFields handles PUT /api/templates/{id}/fields
func (h *DocumentHandler) SaveFields(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid template ID")
		return
	}

	var req models.SaveFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields, err := h.service.SaveFields(r.Context(), id, req.Fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, fields)
}

// ListVariables handles GET /api/templates/variables
func (h *DocumentHandler) ListVariables(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, models.VariableKeys)
}

// FillDocument handles POST /api/templates/{id}/fill and returns the filled PDF
func (h *DocumentHandler) FillDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid template ID")
		return
	}

	var req models.FillDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.RouteID <= 0 || req.OrderID == "" {
		utils.Error(w, http.StatusBadRequest, "route_id and order_id are required")
		return
	}

	pdf, err := h.service.FillDocument(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="os-%s.pdf"`, safeFilename(req.OrderID)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

func safeFilename(s string) string {
	out := make([]rune, 0, len(s))
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
