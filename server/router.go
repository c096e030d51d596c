package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// AvailabilityRoutes serves the availability API.
type AvailabilityRoutes interface {
	GetAvailability(w http.ResponseWriter, r *http.Request)
	ProbeAvailability(w http.ResponseWriter, r *http.Request)
	GetBootstrap(w http.ResponseWriter, r *http.Request)
	GetCalendarChart(w http.ResponseWriter, r *http.Request)
}

// GoldCardRoutes serves gold card lookups.
type GoldCardRoutes interface {
	GetGoldCard(w http.ResponseWriter, r *http.Request)
}

// HealthRoutes serves the liveness probe.
type HealthRoutes interface {
	Ping(w http.ResponseWriter, r *http.Request)
}

type Router struct {
	availabilityHandler AvailabilityRoutes
	goldCardHandler     GoldCardRoutes
	healthHandler       HealthRoutes
	router              *mux.Router
	logger              *zap.Logger
	maxRequestsPerMin   int
}

// NewRouter creates a router with the app’s routes.
func NewRouter(
	availabilityHandler AvailabilityRoutes,
	goldCardHandler GoldCardRoutes,
	healthHandler HealthRoutes,
	router *mux.Router,
	logger *zap.Logger,
	maxRequestsPerMin int) *Router {
	return &Router{
		availabilityHandler: availabilityHandler,
		goldCardHandler:     goldCardHandler,
		healthHandler:       healthHandler,
		router:              router,
		logger:              logger,
		maxRequestsPerMin:   maxRequestsPerMin,
	}
}

func (r *Router) RegisterRoutes() {
	r.router.Use(
		RequestIDMiddleware(),
		RecoveryMiddleware(r.logger),
		LoggingMiddleware(r.logger),
	)

	r.router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	// one limiter store shared by every /api route
	limited := RateLimitMiddleware(r.maxRequestsPerMin, r.logger)
	api := func(path string, handler http.HandlerFunc, method string) {
		r.router.Handle("/api"+path, limited(handler)).Methods(method)
	}

	// expects ?date=YYYY-MM-DD&month=YYYY-MM&activityIds=[...]&guestCounts={...}
	api("/availability", r.availabilityHandler.GetAvailability, http.MethodGet)
	api("/availability/probe", r.availabilityHandler.ProbeAvailability, http.MethodPost)
	api("/bootstrap", r.availabilityHandler.GetBootstrap, http.MethodGet)
	// expects ?number={card number}&supplier={slug}
	api("/goldcard", r.goldCardHandler.GetGoldCard, http.MethodGet)

	r.router.HandleFunc("/debug/availability/chart", r.availabilityHandler.GetCalendarChart).Methods("GET")
	r.router.HandleFunc("/ping", r.healthHandler.Ping).Methods("GET")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	json.NewEncoder(w).Encode(map[string]string{"message": "Method " + r.Method + " not allowed"})
}
