package http

import (
	"net/http"

	"clinic-console/internal/delivery/http/handler"
	"clinic-console/internal/delivery/http/middleware"
	"clinic-console/internal/domain/entity"
	"clinic-console/internal/metrics"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	calendarHandler    *handler.CalendarHandler
	appointmentHandler *handler.AppointmentHandler
	auditLogHandler    *handler.AuditLogHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
	metrics            *metrics.Metrics
}

// NewRouter wires the console routes. metrics may be nil to disable
// instrumentation and the /metrics endpoint.
func NewRouter(
	calendarHandler *handler.CalendarHandler,
	appointmentHandler *handler.AppointmentHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	metrics *metrics.Metrics,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		calendarHandler:    calendarHandler,
		appointmentHandler: appointmentHandler,
		auditLogHandler:    auditLogHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
		metrics:            metrics,
	}
}

func (r *Router) Setup() *mux.Router {
	if r.metrics != nil {
		r.router.Handle("/metrics", r.metrics.Handler()).Methods(http.MethodGet)
		r.router.Use(r.metrics.Middleware)
	}

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Appointment query endpoint (protected)
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(r.authMiddleware.Authenticate)
	appointments.HandleFunc("/search", r.appointmentHandler.Search).Methods(http.MethodPost)
	appointments.HandleFunc("/{code}", r.appointmentHandler.GetByCode).Methods(http.MethodGet)

	// Calendar console (protected, one session per user)
	cal := api.PathPrefix("/calendar").Subrouter()
	cal.Use(r.authMiddleware.Authenticate)
	cal.Use(middleware.RequireConsoleRole)
	cal.HandleFunc("/range", r.calendarHandler.SetRange).Methods(http.MethodPost)
	cal.HandleFunc("/navigate", r.calendarHandler.Navigate).Methods(http.MethodPost)
	cal.HandleFunc("/view", r.calendarHandler.SwitchView).Methods(http.MethodPost)
	cal.HandleFunc("/refresh", r.calendarHandler.Refresh).Methods(http.MethodPost)
	cal.HandleFunc("/search", r.calendarHandler.Search).Methods(http.MethodPut)
	cal.HandleFunc("/filter", r.calendarHandler.ApplyFilter).Methods(http.MethodPut)
	cal.HandleFunc("/filter", r.calendarHandler.ResetFilter).Methods(http.MethodDelete)
	cal.HandleFunc("/events", r.calendarHandler.GetEvents).Methods(http.MethodGet)
	cal.HandleFunc("/events/{id}", r.calendarHandler.GetEvent).Methods(http.MethodGet)

	// Appointment access trail (admin only)
	audit := api.PathPrefix("/audit-logs").Subrouter()
	audit.Use(r.authMiddleware.Authenticate)
	audit.Use(middleware.RequireRole(entity.RoleAdmin))
	audit.HandleFunc("", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	audit.HandleFunc("/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
