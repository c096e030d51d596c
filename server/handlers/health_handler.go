package handlers

import (
	"net/http"

	"booking-server/db"
)

type HealthHandler struct {
	redisClient db.RedisClient
}

func NewHealthHandler(redisClient db.RedisClient) *HealthHandler {
	return &HealthHandler{redisClient: redisClient}
}

// Ping answers pong, or 503 when the cache is unreachable.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	if h.redisClient != nil {
		if err := h.redisClient.Ping(); err != nil {
			JSONError(w, http.StatusServiceUnavailable, "Cache unavailable", err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "pong"})
}
