// Package access содержит чистую модель ролей и разрешений: проверки над
// снимком участника без побочных эффектов и без обращений к хранилищу.
package access

import "github.com/geocell/team-service/internal/domain/entity"

// roleRank порядок ролей для сравнения "роль или выше"
var roleRank = map[entity.Role]int{
	entity.RoleViewer: 1,
	entity.RoleMember: 2,
	entity.RoleEditor: 3,
	entity.RoleAdmin:  4,
	entity.RoleOwner:  5,
}

// AtLeast возвращает true, если роль role не ниже роли min в иерархии
// OWNER > ADMIN > EDITOR > MEMBER > VIEWER.
func AtLeast(role, min entity.Role) bool {
	return roleRank[role] >= roleRank[min]
}

// HasRole проверяет, обладает ли участник ролью. Совпадение строгое:
// либо основная роль, либо роль из набора дополнительных, без учета
// иерархии. Неактивный участник не обладает ни одной ролью.
func HasRole(m *entity.TeamMember, role entity.Role) bool {
	if m == nil || !m.IsActive {
		return false
	}
	return m.PrimaryRole == role || m.HasAdditionalRole(role)
}

// HasPermission проверяет наличие разрешения у участника. Роли не дают
// разрешений неявно: ADMIN без токена разрешения получит false.
func HasPermission(m *entity.TeamMember, permission string) bool {
	if m == nil || !m.IsActive {
		return false
	}
	return m.HasPermission(permission)
}

// IsAdmin возвращает true для активного участника с ролью ADMIN или OWNER
func IsAdmin(m *entity.TeamMember) bool {
	return HasRole(m, entity.RoleAdmin) || HasRole(m, entity.RoleOwner)
}
