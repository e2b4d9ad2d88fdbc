package handler

import "net/http"

// HealthHandler обрабатывает health check запросы
type HealthHandler struct{}

// NewHealthHandler создает новый health handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Check обрабатывает GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
