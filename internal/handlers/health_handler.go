package handlers

import (
	"net/http"

	"github.com/polarisid/smartos-sub000/internal/health"
	"github.com/polarisid/smartos-sub000/pkg/utils"
)

type HealthHandler struct {
	checker *health.HealthChecker
}

func NewHealthHandler(checker *health.HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// BasicHealth - liveness probe
func (h *HealthHandler) BasicHealth(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadinessHealth - readiness probe, fails while postgres is unreachable
func (h *HealthHandler) ReadinessHealth(w http.ResponseWriter, r *http.Request) {
	status := h.checker.CheckBasic()
	if status.Status == "healthy" {
		utils.JSON(w, http.StatusOK, status)
		return
	}
	utils.JSON(w, http.StatusServiceUnavailable, status)
}

// DetailedHealth - dependencies plus host stats
func (h *HealthHandler) DetailedHealth(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, h.checker.CheckDetailed())
}
