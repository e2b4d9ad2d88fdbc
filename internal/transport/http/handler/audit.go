package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/geocell/team-service/internal/domain/entity"
	"github.com/geocell/team-service/internal/transport/http/dto"
	"github.com/geocell/team-service/internal/usecase"
)

// AuditHandler обрабатывает запросы к журналу аудита
type AuditHandler struct {
	auditUseCase *usecase.AuditUseCase
}

// NewAuditHandler создает новый handler журнала аудита
func NewAuditHandler(auditUseCase *usecase.AuditUseCase) *AuditHandler {
	return &AuditHandler{
		auditUseCase: auditUseCase,
	}
}

// Query обрабатывает GET /audit.
// Поддерживаются параметры user_id, action_type, resource_type, resource_id,
// ip_address, success, from, to (RFC3339); условия комбинируются через AND.
func (h *AuditHandler) Query(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := entity.AuditFilter{
		UserID:       q.Get("user_id"),
		ActionType:   entity.ActionType(q.Get("action_type")),
		ResourceType: entity.ResourceType(q.Get("resource_type")),
		ResourceID:   q.Get("resource_id"),
		IPAddress:    q.Get("ip_address"),
	}

	if raw := q.Get("success"); raw != "" {
		success := raw == "true"
		filter.Success = &success
	}

	if raw := q.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_INPUT", "from must be RFC3339")
			return
		}
		filter.From = &from
	}

	if raw := q.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_INPUT", "to must be RFC3339")
			return
		}
		filter.To = &to
	}

	entries, err := h.auditUseCase.Query(r.Context(), filter)
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToAuditLogDTOs(entries))
}

// Count обрабатывает GET /audit/count.
// Ровно один из параметров user_id, action_type, resource_type обязателен.
func (h *AuditHandler) Count(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var count int64
	var err error
	switch {
	case q.Get("user_id") != "":
		count, err = h.auditUseCase.CountByUser(r.Context(), q.Get("user_id"))
	case q.Get("action_type") != "":
		count, err = h.auditUseCase.CountByActionType(r.Context(), entity.ActionType(q.Get("action_type")))
	case q.Get("resource_type") != "":
		count, err = h.auditUseCase.CountByResourceType(r.Context(), entity.ResourceType(q.Get("resource_type")))
	default:
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "user_id, action_type or resource_type is required")
		return
	}

	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.CountResponse{Count: count})
}

// Purge обрабатывает POST /audit/purge (только с админским токеном)
func (h *AuditHandler) Purge(w http.ResponseWriter, r *http.Request) {
	var req dto.PurgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body")
		return
	}

	cutoff, err := time.Parse(time.RFC3339, req.Before)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "before must be RFC3339")
		return
	}

	deleted, err := h.auditUseCase.Purge(r.Context(), cutoff)
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.PurgeResponse{Deleted: deleted})
}
