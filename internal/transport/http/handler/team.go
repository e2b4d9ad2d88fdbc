package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/geocell/team-service/internal/transport/http/dto"
	"github.com/geocell/team-service/internal/usecase"
)

// TeamHandler обрабатывает запросы для команд
type TeamHandler struct {
	teamUseCase *usecase.TeamUseCase
}

// NewTeamHandler создает новый handler для команд
func NewTeamHandler(teamUseCase *usecase.TeamUseCase) *TeamHandler {
	return &TeamHandler{
		teamUseCase: teamUseCase,
	}
}

// CreateTeam обрабатывает POST /teams
func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "name is required")
		return
	}

	team, err := h.teamUseCase.CreateTeam(r.Context(), actor, req.Name, req.Description, req.Settings)
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToTeamDTO(team))
}

// ListTeams обрабатывает GET /teams.
// Параметры name (точное совпадение), search (подстрока) и created_by
// сужают выборку.
func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("name"); name != "" {
		team, err := h.teamUseCase.GetTeamByName(r.Context(), name)
		if err != nil {
			handleUseCaseError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, []dto.TeamDTO{dto.ToTeamDTO(team)})
		return
	}

	if pattern := r.URL.Query().Get("search"); pattern != "" {
		teams, err := h.teamUseCase.SearchTeamsByName(r.Context(), pattern)
		if err != nil {
			handleUseCaseError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, dto.ToTeamDTOs(teams))
		return
	}

	if creator := r.URL.Query().Get("created_by"); creator != "" {
		teams, err := h.teamUseCase.GetTeamsCreatedBy(r.Context(), creator)
		if err != nil {
			handleUseCaseError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, dto.ToTeamDTOs(teams))
		return
	}

	teams, err := h.teamUseCase.ListTeams(r.Context())
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTeamDTOs(teams))
}

// GetTeam обрабатывает GET /teams/{teamID}
func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")

	team, err := h.teamUseCase.GetTeam(r.Context(), teamID)
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTeamDTO(team))
}

// UpdateTeam обрабатывает PATCH /teams/{teamID}
func (h *TeamHandler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.UpdateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body")
		return
	}

	team, err := h.teamUseCase.UpdateTeam(r.Context(), actor, chi.URLParam(r, "teamID"), req.Description)
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTeamDTO(team))
}

// DeleteTeam обрабатывает DELETE /teams/{teamID}
func (h *TeamHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.teamUseCase.DeleteTeam(r.Context(), actor, chi.URLParam(r, "teamID")); err != nil {
		handleUseCaseError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetTeamSettings обрабатывает GET /teams/{teamID}/settings
func (h *TeamHandler) GetTeamSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.teamUseCase.GetTeamSettings(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, settings)
}

// UpdateTeamSettings обрабатывает PUT /teams/{teamID}/settings
func (h *TeamHandler) UpdateTeamSettings(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.UpdateTeamSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body")
		return
	}

	team, err := h.teamUseCase.UpdateTeamSettings(r.Context(), actor, chi.URLParam(r, "teamID"), req.Settings)
	if err != nil {
		handleUseCaseError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTeamDTO(team))
}
