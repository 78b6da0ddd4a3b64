package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/polarisid/smartos-sub000/internal/models"
	"github.com/polarisid/smartos-sub000/internal/services"
	"github.com/polarisid/smartos-sub000/pkg/utils"
)

// RouteHandler handles route import and editing requests
type RouteHandler struct {
	service *services.RouteService
}

func NewRouteHandler(service *services.RouteService) *RouteHandler {
	return &RouteHandler{service: service}
}

// Preview handles POST /api/routes/preview
func (h *RouteHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req models.ImportPreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	utils.JSON(w, http.StatusOK, h.service.Preview(req.Text))
}

// CreateRoute handles POST /api/routes
func (h *RouteHandler) CreateRoute(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	route, err := h.service.CreateRoute(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, route)
}

// ListRoutes handles GET /api/routes?active=true|false
func (h *RouteHandler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	var active *bool
	if v := r.URL.Query().Get("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid active filter")
			return
		}
		active = &b
	}

	routes, err := h.service.ListRoutes(r.Context(), active)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if routes == nil {
		routes = []*models.Route{}
	}
	utils.JSON(w, http.StatusOK, routes)
}

// GetRoute handles GET /api/routes/{id}
func (h *RouteHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid route ID")
		return
	}

	route, err := h.service.GetRoute(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, route)
}

// UpdateRoute handles PUT /api/routes/{id}
func (h *RouteHandler) UpdateRoute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid route ID")
		return
	}

	var req models.UpdateRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	route, err := h.service.UpdateRoute(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, route)
}

// EditText handles GET /api/routes/{id}/text
func (h *RouteHandler) EditText(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid route ID")
		return
	}

	text, err := h.service.EditText(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"text": text})
}

// SetTrackingCode handles PUT /api/routes/{id}/stops/{order_id}/parts/{code}/tracking
func (h *RouteHandler) SetTrackingCode(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid route ID")
		return
	}

	var req models.TrackingCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	vars := mux.Vars(r)
	route, err := h.service.SetTrackingCode(r.Context(), id, vars["order_id"], vars["code"], req.TrackingCode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, route)
}

// SetStopTag handles PUT /api/routes/{id}/stops/{order_id}/tag
func (h *RouteHandler) SetStopTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid route ID")
		return
	}

	var req models.StopTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	route, err := h.service.SetStopTag(r.Context(), id, mux.Vars(r)["order_id"], req.Tag)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, route)
}

// FinalizeRoute handles POST /api/routes/{id}/finalize
func (h *RouteHandler) FinalizeRoute(w http.ResponseWriter, r *http.Request) {
	h.changeState(w, r, h.service.FinalizeRoute)
}

// ReopenRoute handles POST /api/routes/{id}/reopen
func (h *RouteHandler) ReopenRoute(w http.ResponseWriter, r *http.Request) {
	h.changeState(w, r, h.service.ReopenRoute)
}

// DeleteRoute handles DELETE /api/routes/{id}
func (h *RouteHandler) DeleteRoute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid route ID")
		return
	}
	if err := h.service.DeleteRoute(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RouteHandler) changeState(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int) error) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid route ID")
		return
	}
	if err := fn(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	route, err := h.service.GetRoute(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, route)
}

// Progress handles GET /api/routes/{id}/progress
func (h *RouteHandler) Progress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid route ID")
		return
	}

	progress, err := h.service.Progress(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, progress)
}
