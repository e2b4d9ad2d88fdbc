package dto

import (
	"time"

	"github.com/geocell/team-service/internal/domain/entity"
)

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail содержит детали ошибки
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TeamDTO представляет команду
type TeamDTO struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Settings    map[string]string `json:"settings"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`
	CreatedBy   string            `json:"created_by"`
	UpdatedBy   string            `json:"updated_by"`
	Version     int64             `json:"version"`
}

// TeamMemberDTO представляет участника команды
type TeamMemberDTO struct {
	ID              string   `json:"id"`
	UserID          string   `json:"user_id"`
	Email           string   `json:"email"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name,omitempty"`
	TeamID          string   `json:"team_id"`
	PrimaryRole     string   `json:"primary_role"`
	AdditionalRoles []string `json:"additional_roles"`
	Permissions     []string `json:"permissions"`
	IsActive        bool     `json:"is_active"`
	LastLogin       *string  `json:"last_login,omitempty"`
	Version         int64    `json:"version"`
}

// AuditLogDTO представляет запись журнала аудита
type AuditLogDTO struct {
	ID           string            `json:"id"`
	UserID       string            `json:"user_id"`
	ActionType   string            `json:"action_type"`
	ResourceType string            `json:"resource_type"`
	ResourceID   string            `json:"resource_id"`
	Description  string            `json:"description,omitempty"`
	Details      map[string]string `json:"details"`
	IPAddress    string            `json:"ip_address,omitempty"`
	UserAgent    string            `json:"user_agent,omitempty"`
	Success      bool              `json:"success"`
	Timestamp    string            `json:"timestamp"`
}

// CreateTeamRequest запрос на создание команды
type CreateTeamRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Settings    map[string]string `json:"settings"`
}

// UpdateTeamRequest запрос на обновление команды
type UpdateTeamRequest struct {
	Description string `json:"description"`
}

// UpdateTeamSettingsRequest запрос на замену настроек команды
type UpdateTeamSettingsRequest struct {
	Settings map[string]string `json:"settings"`
}

// AddMemberRequest запрос на добавление участника
type AddMemberRequest struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PrimaryRole string `json:"primary_role"`
}

// UpdateRoleRequest запрос на смену основной роли
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// PermissionRequest запрос на выдачу или отзыв разрешения
type PermissionRequest struct {
	Permission string `json:"permission"`
}

// TransferOwnershipRequest запрос на передачу владения командой
type TransferOwnershipRequest struct {
	CurrentOwnerID string `json:"current_owner_id"`
	NewOwnerID     string `json:"new_owner_id"`
}

// MembershipCheckResponse ответ на проверку членства или прав
type MembershipCheckResponse struct {
	TeamID string `json:"team_id"`
	UserID string `json:"user_id"`
	Result bool   `json:"result"`
}

// CountResponse ответ с числом записей
type CountResponse struct {
	Count int64 `json:"count"`
}

// PurgeRequest запрос на очистку журнала аудита
type PurgeRequest struct {
	Before string `json:"before"`
}

// PurgeResponse ответ на очистку журнала аудита
type PurgeResponse struct {
	Deleted int64 `json:"deleted"`
}

// ToTeamDTO преобразует entity в DTO
func ToTeamDTO(team *entity.Team) TeamDTO {
	settings := team.Settings
	if settings == nil {
		settings = map[string]string{}
	}

	return TeamDTO{
		ID:          team.ID,
		Name:        team.Name,
		Description: team.Description,
		Settings:    settings,
		CreatedAt:   team.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   team.UpdatedAt.Format(time.RFC3339),
		CreatedBy:   team.CreatedBy,
		UpdatedBy:   team.UpdatedBy,
		Version:     team.Version,
	}
}

// ToTeamDTOs преобразует список команд в список DTO
func ToTeamDTOs(teams []*entity.Team) []TeamDTO {
	dtos := make([]TeamDTO, 0, len(teams))
	for _, team := range teams {
		dtos = append(dtos, ToTeamDTO(team))
	}
	return dtos
}

// ToMemberDTO преобразует entity в DTO
func ToMemberDTO(member *entity.TeamMember) TeamMemberDTO {
	roles := make([]string, 0, len(member.AdditionalRoles))
	for _, role := range member.AdditionalRoles {
		roles = append(roles, string(role))
	}

	permissions := member.Permissions
	if permissions == nil {
		permissions = []string{}
	}

	dto := TeamMemberDTO{
		ID:              member.ID,
		UserID:          member.UserID,
		Email:           member.Email,
		FirstName:       member.FirstName,
		LastName:        member.LastName,
		TeamID:          member.TeamID,
		PrimaryRole:     string(member.PrimaryRole),
		AdditionalRoles: roles,
		Permissions:     permissions,
		IsActive:        member.IsActive,
		Version:         member.Version,
	}

	if member.LastLogin != nil && !member.LastLogin.IsZero() {
		lastLogin := member.LastLogin.Format(time.RFC3339)
		dto.LastLogin = &lastLogin
	}

	return dto
}

// ToMemberDTOs преобразует список участников в список DTO
func ToMemberDTOs(members []*entity.TeamMember) []TeamMemberDTO {
	dtos := make([]TeamMemberDTO, 0, len(members))
	for _, member := range members {
		dtos = append(dtos, ToMemberDTO(member))
	}
	return dtos
}

// ToMemberEntity преобразует запрос на добавление в entity
func ToMemberEntity(req *AddMemberRequest) *entity.TeamMember {
	return &entity.TeamMember{
		UserID:      req.UserID,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PrimaryRole: entity.Role(req.PrimaryRole),
	}
}

// ToAuditLogDTO преобразует entity в DTO
func ToAuditLogDTO(entry *entity.AuditLog) AuditLogDTO {
	details := entry.Details
	if details == nil {
		details = map[string]string{}
	}

	return AuditLogDTO{
		ID:           entry.ID,
		UserID:       entry.UserID,
		ActionType:   string(entry.ActionType),
		ResourceType: string(entry.ResourceType),
		ResourceID:   entry.ResourceID,
		Description:  entry.Description,
		Details:      details,
		IPAddress:    entry.IPAddress,
		UserAgent:    entry.UserAgent,
		Success:      entry.Success,
		Timestamp:    entry.Timestamp.Format(time.RFC3339),
	}
}

// ToAuditLogDTOs преобразует список записей журнала в список DTO
func ToAuditLogDTOs(entries []*entity.AuditLog) []AuditLogDTO {
	dtos := make([]AuditLogDTO, 0, len(entries))
	for _, entry := range entries {
		dtos = append(dtos, ToAuditLogDTO(entry))
	}
	return dtos
}
