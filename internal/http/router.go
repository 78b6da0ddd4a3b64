package http

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/polarisid/smartos-sub000/internal/handlers"
	"github.com/polarisid/smartos-sub000/internal/middleware"
)

func NewRouter(
	routeHandler *handlers.RouteHandler,
	documentHandler *handlers.DocumentHandler,
	healthHandler *handlers.HealthHandler,
) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware)

	// Health and metrics
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Routes
	routesAPI := r.PathPrefix("/api/routes").Subrouter()
	routesAPI.HandleFunc("", routeHandler.ListRoutes).Methods("GET")
	routesAPI.HandleFunc("", routeHandler.CreateRoute).Methods("POST")
	routesAPI.HandleFunc("/preview", routeHandler.Preview).Methods("POST")
	routesAPI.HandleFunc("/{id:[0-9]+}", routeHandler.GetRoute).Methods("GET")
	routesAPI.HandleFunc("/{id:[0-9]+}", routeHandler.UpdateRoute).Methods("PUT")
	routesAPI.HandleFunc("/{id:[0-9]+}", routeHandler.DeleteRoute).Methods("DELETE")
	routesAPI.HandleFunc("/{id:[0-9]+}/text", routeHandler.EditText).Methods("GET")
	routesAPI.HandleFunc("/{id:[0-9]+}/progress", routeHandler.Progress).Methods("GET")
	routesAPI.HandleFunc("/{id:[0-9]+}/finalize", routeHandler.FinalizeRoute).Methods("POST")
	routesAPI.HandleFunc("/{id:[0-9]+}/reopen", routeHandler.ReopenRoute).Methods("POST")
	routesAPI.HandleFunc("/{id:[0-9]+}/stops/{order_id}/tag", routeHandler.SetStopTag).Methods("PUT")
	routesAPI.HandleFunc("/{id:[0-9]+}/stops/{order_id}/parts/{code}/tracking", routeHandler.SetTrackingCode).Methods("PUT")

	// Document templates
	templatesAPI := r.PathPrefix("/api/templates").Subrouter()
	templatesAPI.HandleFunc("", documentHandler.ListTemplates).Methods("GET")
	templatesAPI.HandleFunc("", documentHandler.UploadTemplate).Methods("POST")
	templatesAPI.HandleFunc("/variables", documentHandler.ListVariables).Methods("GET")
	templatesAPI.HandleFunc("/{id:[0-9]+}", documentHandler.GetTemplate).Methods("GET")
	templatesAPI.HandleFunc("/{id:[0-9]+}/fields", documentHandler.GetFields).Methods("GET")
	templatesAPI.HandleFunc("/{id:[0-9]+}/fields", documentHandler.SaveFields).Methods("PUT")
	templatesAPI.HandleFunc("/{id:[0-9]+}/fill", documentHandler.FillDocument).Methods("POST")

	return r
}
