package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/geocell/team-service/internal/domain/entity"
	"github.com/geocell/team-service/internal/transport/http/dto"
	"github.com/geocell/team-service/internal/usecase"
)

// MemberHandler обрабатывает запросы членства в командах
type MemberHandler struct {
	memberUseCase *usecase.MemberUseCase
}

// NewMemberHandler создает новый handler членства
func NewMemberHandler(memberUseCase *usecase.MemberUseCase) *MemberHandler {
	return &MemberHandler{
		memberUseCase: memberUseCase,
	}
}

// AddMember обрабатывает POST /teams/{teamID}/members
func (h *MemberHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body")
		return
	}

	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "user_id is required")
		return
	}

	member, err := h.memberUseCase.AddMember(r.Context(), actor, chi.URLParam(r, "teamID"), dto.ToMemberEntity(&req))
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToMemberDTO(member))
}

// ListMembers обрабатывает GET /teams/{teamID}/members.
// Параметр active=true сужает выборку до активных участников.
func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")

	var members []*entity.TeamMember
	var err error
	if r.URL.Query().Get("active") == "true" {
		members, err = h.memberUseCase.ListActiveMembers(r.Context(), teamID)
	} else {
		members, err = h.memberUseCase.ListMembers(r.Context(), teamID)
	}
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToMemberDTOs(members))
}

// GetMember обрабатывает GET /teams/{teamID}/members/{userID}
func (h *MemberHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	member, err := h.memberUseCase.GetMember(r.Context(), chi.URLParam(r, "teamID"), chi.URLParam(r, "userID"))
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToMemberDTO(member))
}

// RemoveMember обрабатывает DELETE /teams/{teamID}/members/{userID}
func (h *MemberHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	err := h.memberUseCase.RemoveMember(r.Context(), actor, chi.URLParam(r, "teamID"), chi.URLParam(r, "userID"))
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateRole обрабатывает PUT /teams/{teamID}/members/{userID}/role
func (h *MemberHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body")
		return
	}

	member, err := h.memberUseCase.UpdateRole(r.Context(), actor,
		chi.URLParam(r, "teamID"), chi.URLParam(r, "userID"), entity.Role(req.Role))
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToMemberDTO(member))
}

// AddAdditionalRole обрабатывает POST /teams/{teamID}/members/{userID}/roles
func (h *MemberHandler) AddAdditionalRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body")
		return
	}

	member, err := h.memberUseCase.AddAdditionalRole(r.Context(), actor,
		chi.URLParam(r, "teamID"), chi.URLParam(r, "userID"), entity.Role(req.Role))
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToMemberDTO(member))
}

// RemoveAdditionalRole обрабатывает DELETE /teams/{teamID}/members/{userID}/roles/{role}
func (h *MemberHandler) RemoveAdditionalRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	member, err := h.memberUseCase.RemoveAdditionalRole(r.Context(), actor,
		chi.URLParam(r, "teamID"), chi.URLParam(r, "userID"), entity.Role(chi.URLParam(r, "role")))
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToMemberDTO(member))
}

// AddPermission обрабатывает POST /teams/{teamID}/members/{userID}/permissions
func (h *MemberHandler) AddPermission(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.PermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body")
		return
	}

	member, err := h.memberUseCase.AddPermission(r.Context(), actor,
		chi.URLParam(r, "teamID"), chi.URLParam(r, "userID"), req.Permission)
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToMemberDTO(member))
}

// RemovePermission обрабатывает DELETE /teams/{teamID}/members/{userID}/permissions/{permission}
func (h *MemberHandler) RemovePermission(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	member, err := h.memberUseCase.RemovePermission(r.Context(), actor,
		chi.URLParam(r, "teamID"), chi.URLParam(r, "userID"), chi.URLParam(r, "permission"))
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToMemberDTO(member))
}

// ActivateMember обрабатывает POST /teams/{teamID}/members/{userID}/activate
func (h *MemberHandler) ActivateMember(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// DeactivateMember обрабатывает POST /teams/{teamID}/members/{userID}/deactivate
func (h *MemberHandler) DeactivateMember(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *MemberHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	teamID := chi.URLParam(r, "teamID")
	userID := chi.URLParam(r, "userID")

	var member *entity.TeamMember
	var err error
	if active {
		member, err = h.memberUseCase.ActivateMember(r.Context(), actor, teamID, userID)
	} else {
		member, err = h.memberUseCase.DeactivateMember(r.Context(), actor, teamID, userID)
	}
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToMemberDTO(member))
}

// TransferOwnership обрабатывает POST /teams/{teamID}/ownership/transfer
func (h *MemberHandler) TransferOwnership(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.TransferOwnershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body")
		return
	}

	if req.CurrentOwnerID == "" || req.NewOwnerID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "current_owner_id and new_owner_id are required")
		return
	}

	err := h.memberUseCase.TransferOwnership(r.Context(), actor,
		chi.URLParam(r, "teamID"), req.CurrentOwnerID, req.NewOwnerID)
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CheckAdmin обрабатывает GET /teams/{teamID}/members/{userID}/is-admin
func (h *MemberHandler) CheckAdmin(w http.ResponseWriter, r *http.Request) {
	h.check(w, r, h.memberUseCase.IsTeamAdmin)
}

// CheckMember обрабатывает GET /teams/{teamID}/members/{userID}/is-member
func (h *MemberHandler) CheckMember(w http.ResponseWriter, r *http.Request) {
	h.check(w, r, h.memberUseCase.IsTeamMember)
}

func (h *MemberHandler) check(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, teamID, userID string) (bool, error),
) {
	teamID := chi.URLParam(r, "teamID")
	userID := chi.URLParam(r, "userID")

	result, err := fn(r.Context(), teamID, userID)
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.MembershipCheckResponse{
		TeamID: teamID,
		UserID: userID,
		Result: result,
	})
}

// SearchMembers обрабатывает GET /members?email=
func (h *MemberHandler) SearchMembers(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "email query parameter is required")
		return
	}

	members, err := h.memberUseCase.SearchMembersByEmail(r.Context(), email)
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToMemberDTOs(members))
}

// RecordLogin обрабатывает POST /members/{userID}/login
func (h *MemberHandler) RecordLogin(w http.ResponseWriter, r *http.Request) {
	if err := h.memberUseCase.UpdateLastLogin(r.Context(), chi.URLParam(r, "userID")); err != nil {
		handleUseCaseError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
