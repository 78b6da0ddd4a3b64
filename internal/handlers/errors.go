package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/polarisid/smartos-sub000/internal/docfill"
	"github.com/polarisid/smartos-sub000/internal/services"
	"github.com/polarisid/smartos-sub000/pkg/utils"
)

// writeError maps service errors to HTTP status codes
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrRouteNotFound),
		errors.Is(err, services.ErrStopNotFound),
		errors.Is(err, services.ErrPartNotFound),
		errors.Is(err, services.ErrTemplateNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrNoStops),
		errors.Is(err, services.ErrDuplicateOrder),
		errors.Is(err, services.ErrInvalidRouteType),
		errors.Is(err, services.ErrInvalidTag),
		errors.Is(err, services.ErrInvalidRoute),
		errors.Is(err, services.ErrUnknownVariable),
		errors.Is(err, services.ErrInvalidField),
		errors.Is(err, services.ErrInvalidTemplate):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrRouteBusy):
		status = http.StatusConflict
	case errors.Is(err, docfill.ErrTemplateFetch):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("Request failed")
		if status == http.StatusInternalServerError {
			utils.Error(w, status, "Internal server error")
			return
		}
	}
	utils.Error(w, status, err.Error())
}

func pathID(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	return id, err == nil && id > 0
}
