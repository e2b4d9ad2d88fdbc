package entity

import "time"

// Role роль участника команды
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleEditor Role = "EDITOR"
	RoleMember Role = "MEMBER"
	RoleViewer Role = "VIEWER"
)

// Valid проверяет, что роль известна
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleEditor, RoleMember, RoleViewer:
		return true
	}
	return false
}

// TeamMember представляет участника команды
type TeamMember struct {
	ID              string
	UserID          string
	Email           string
	FirstName       string
	LastName        string
	TeamID          string
	PrimaryRole     Role
	AdditionalRoles []Role
	Permissions     []string
	IsActive        bool
	LastLogin       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CreatedBy       string
	UpdatedBy       string
	Version         int64
}

// HasAdditionalRole проверяет наличие дополнительной роли
func (m *TeamMember) HasAdditionalRole(role Role) bool {
	for _, r := range m.AdditionalRoles {
		if r == role {
			return true
		}
	}
	return false
}

// HasPermission проверяет наличие разрешения
func (m *TeamMember) HasPermission(permission string) bool {
	for _, p := range m.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}
