package entity

import "time"

// ActionType тип действия в журнале аудита
type ActionType string

const (
	ActionCreate           ActionType = "CREATE"
	ActionUpdate           ActionType = "UPDATE"
	ActionDelete           ActionType = "DELETE"
	ActionLogin            ActionType = "LOGIN"
	ActionLogout           ActionType = "LOGOUT"
	ActionPermissionChange ActionType = "PERMISSION_CHANGE"
	ActionRoleChange       ActionType = "ROLE_CHANGE"
)

// ResourceType тип ресурса в журнале аудита
type ResourceType string

const (
	ResourceTeam       ResourceType = "TEAM"
	ResourceTeamMember ResourceType = "TEAM_MEMBER"
	ResourceUser       ResourceType = "USER"
	ResourceRole       ResourceType = "ROLE"
	ResourcePermission ResourceType = "PERMISSION"
)

// AuditLog представляет запись журнала аудита.
// Запись создается один раз на каждую попытку действия и далее не изменяется;
// ссылка на ресурс не является внешним ключом, журнал переживает удаление
// команд и участников.
type AuditLog struct {
	ID           string
	UserID       string
	ActionType   ActionType
	ResourceType ResourceType
	ResourceID   string
	Description  string
	Details      map[string]string
	IPAddress    string
	UserAgent    string
	Success      bool
	Timestamp    time.Time
}

// AuditFilter фильтр запросов к журналу аудита.
// Пустые поля не участвуют в фильтрации, условия комбинируются через AND.
type AuditFilter struct {
	UserID       string
	ActionType   ActionType
	ResourceType ResourceType
	ResourceID   string
	IPAddress    string
	Success      *bool
	From         *time.Time
	To           *time.Time
}
